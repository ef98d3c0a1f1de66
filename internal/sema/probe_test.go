package sema

import (
	"slices"
	"testing"

	"docsema/internal/decl"
)

func nestedTParams() *decl.TemplateParamList {
	return &decl.TemplateParamList{Params: []decl.TemplateParam{
		{Name: "T"},
		{Name: "C", Kind: decl.TemplateTemplate, Params: &decl.TemplateParamList{Params: []decl.TemplateParam{
			{Name: "U"}, {Name: "V"},
		}}},
		{Name: "W"},
	}}
}

func TestDeclProbeShapes(t *testing.T) {
	tps := &decl.TemplateParamList{Params: []decl.TemplateParam{{Name: "T"}}}
	ps := []decl.Param{{Name: "a"}, {Name: "b"}}
	tests := []struct {
		kind     decl.Kind
		funcType bool
		callable bool
		tmplOrSp bool
		params   int
		tparams  int
	}{
		{decl.KindFunction, false, true, false, 2, 0},
		{decl.KindMethod, false, true, false, 2, 0},
		{decl.KindFunctionTemplate, false, true, true, 2, 1},
		{decl.KindClassTemplate, false, false, true, 0, 1},
		{decl.KindAliasTemplate, false, false, true, 0, 1},
		{decl.KindPartialSpecialization, false, false, true, 0, 1},
		{decl.KindSpecialization, false, false, true, 0, 0},
		{decl.KindFunctionSpecialization, false, true, true, 2, 0},
		{decl.KindVariable, true, true, false, 2, 0},
		{decl.KindVariable, false, false, false, 0, 0},
		{decl.KindTypedef, true, true, false, 2, 0},
		{decl.KindRecord, false, false, false, 0, 0},
		{decl.KindNamespace, false, false, false, 0, 0},
	}
	for _, tt := range tests {
		var p DeclProbe
		p.Attach(&decl.Node{DeclKind: tt.kind, ParamList: ps, TParams: tps, FuncType: tt.funcType})
		if p.IsCallable() != tt.callable || p.IsTemplateOrSpecialization() != tt.tmplOrSp {
			t.Errorf("%s: callable=%v tmplOrSpec=%v", tt.kind, p.IsCallable(), p.IsTemplateOrSpecialization())
		}
		if len(p.Parameters()) != tt.params || len(p.TemplateParameters()) != tt.tparams {
			t.Errorf("%s: params=%d tparams=%d", tt.kind, len(p.Parameters()), len(p.TemplateParameters()))
		}
	}
}

func TestDeclProbeDetached(t *testing.T) {
	var p DeclProbe
	if p.Attached() || p.IsCallable() || p.IsTemplateOrSpecialization() || p.ReturnsVoid() {
		t.Fatalf("detached probe must be empty")
	}
	if p.Parameters() != nil || p.TemplateParameters() != nil || p.Kind() != decl.KindNone {
		t.Fatalf("detached probe must have no parameters")
	}
}

func TestDeclProbeReturnsVoid(t *testing.T) {
	tests := []struct {
		kind decl.Kind
		void bool
		want bool
	}{
		{decl.KindFunction, true, true},
		{decl.KindFunction, false, false},
		{decl.KindConstructor, false, true},
		{decl.KindDestructor, false, true},
		{decl.KindRecord, true, false},
	}
	for _, tt := range tests {
		var p DeclProbe
		p.Attach(&decl.Node{DeclKind: tt.kind, Void: tt.void})
		if got := p.ReturnsVoid(); got != tt.want {
			t.Errorf("%s void=%v: ReturnsVoid = %v", tt.kind, tt.void, got)
		}
	}
}

func TestDeclProbeFlattensNestedTemplateParams(t *testing.T) {
	var p DeclProbe
	p.Attach(&decl.Node{DeclKind: decl.KindClassTemplate, TParams: nestedTParams()})
	got := p.TemplateParameters()
	want := []TParamDesc{
		{Name: "T", Depth: 0, Index: 0, Path: []uint32{0}},
		{Name: "C", Depth: 0, Index: 1, Path: []uint32{1}},
		{Name: "U", Depth: 1, Index: 0, Path: []uint32{1, 0}},
		{Name: "V", Depth: 1, Index: 1, Path: []uint32{1, 1}},
		{Name: "W", Depth: 0, Index: 2, Path: []uint32{2}},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d descriptors, want %d", len(got), len(want))
	}
	for i := range want {
		g, w := got[i], want[i]
		if g.Name != w.Name || g.Depth != w.Depth || g.Index != w.Index || !slices.Equal(g.Path, w.Path) {
			t.Errorf("descriptor %d = %+v, want %+v", i, g, w)
		}
	}
}

func TestDeclProbeReattachDropsCache(t *testing.T) {
	var p DeclProbe
	p.Attach(&decl.Node{DeclKind: decl.KindFunction, ParamList: []decl.Param{{Name: "x"}}})
	if len(p.Parameters()) != 1 {
		t.Fatalf("expected one parameter")
	}
	p.Attach(&decl.Node{DeclKind: decl.KindRecord})
	if p.IsCallable() || len(p.Parameters()) != 0 {
		t.Fatalf("stale facts after re-attach")
	}
}
