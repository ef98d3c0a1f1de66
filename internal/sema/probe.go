package sema

import (
	"fmt"

	"fortio.org/safecast"

	"docsema/internal/decl"
)

// ParamDesc is one function parameter as seen by \param resolution.
type ParamDesc struct {
	Name  string
	Index uint32
}

// TParamDesc is one template parameter after flattening nested lists.
// Path holds the position at every depth, outermost first.
type TParamDesc struct {
	Name  string
	Depth uint32
	Index uint32
	Path  []uint32
}

// DeclProbe answers questions about the attached declaration. Facts are
// computed on first access and dropped by the next Attach.
type DeclProbe struct {
	decl      decl.Decl
	inspected bool

	kind           decl.Kind
	callable       bool
	template       bool
	specialization bool
	void           bool
	params         []ParamDesc
	tparams        []TParamDesc
}

// Attach replaces the declaration; nil detaches.
func (p *DeclProbe) Attach(d decl.Decl) {
	*p = DeclProbe{decl: d}
}

// Attached reports whether a declaration is present.
func (p *DeclProbe) Attached() bool {
	return p.decl != nil
}

func (p *DeclProbe) Decl() decl.Decl {
	return p.decl
}

func (p *DeclProbe) Kind() decl.Kind {
	p.inspect()
	return p.kind
}

func (p *DeclProbe) IsCallable() bool {
	p.inspect()
	return p.callable
}

func (p *DeclProbe) IsTemplateOrSpecialization() bool {
	p.inspect()
	return p.template || p.specialization
}

func (p *DeclProbe) IsTemplate() bool {
	p.inspect()
	return p.template
}

func (p *DeclProbe) IsSpecialization() bool {
	p.inspect()
	return p.specialization
}

// ReturnsVoid is true for callables without a result, including
// constructors and destructors.
func (p *DeclProbe) ReturnsVoid() bool {
	p.inspect()
	return p.void
}

func (p *DeclProbe) Parameters() []ParamDesc {
	p.inspect()
	return p.params
}

func (p *DeclProbe) TemplateParameters() []TParamDesc {
	p.inspect()
	return p.tparams
}

func (p *DeclProbe) inspect() {
	if p.inspected {
		return
	}
	p.inspected = true
	if p.decl == nil {
		return
	}

	p.kind = p.decl.Kind()
	ownTParams := false
	switch p.kind {
	case decl.KindFunction, decl.KindMethod, decl.KindConstructor, decl.KindDestructor:
		p.callable = true
	case decl.KindFunctionTemplate:
		p.callable, p.template, ownTParams = true, true, true
	case decl.KindClassTemplate, decl.KindAliasTemplate:
		p.template, ownTParams = true, true
	case decl.KindPartialSpecialization:
		p.template, p.specialization, ownTParams = true, true, true
	case decl.KindSpecialization:
		p.specialization = true
	case decl.KindFunctionSpecialization:
		p.callable, p.specialization = true, true
	case decl.KindVariable, decl.KindTypedef:
		p.callable = p.decl.HasFunctionType()
	}

	if p.callable {
		switch p.kind {
		case decl.KindConstructor, decl.KindDestructor:
			p.void = true
		default:
			p.void = p.decl.ReturnsVoid()
		}
		for i, param := range p.decl.Params() {
			p.params = append(p.params, ParamDesc{Name: param.Name, Index: toU32(i)})
		}
	}
	if ownTParams {
		p.tparams = flattenTParams(p.decl.TemplateParams(), 0, nil, nil)
	}
}

// flattenTParams walks nested template-template lists depth-first.
func flattenTParams(list *decl.TemplateParamList, depth uint32, prefix []uint32, out []TParamDesc) []TParamDesc {
	if list == nil {
		return out
	}
	for i, tp := range list.Params {
		path := make([]uint32, len(prefix)+1)
		copy(path, prefix)
		path[len(prefix)] = toU32(i)
		out = append(out, TParamDesc{Name: tp.Name, Depth: depth, Index: toU32(i), Path: path})
		if tp.Kind == decl.TemplateTemplate {
			out = flattenTParams(tp.Params, depth+1, path, out)
		}
	}
	return out
}

func toU32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("index overflow: %w", err))
	}
	return v
}
