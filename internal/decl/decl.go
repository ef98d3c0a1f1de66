// Package decl models the declaration a comment is attached to.
package decl

import (
	"fmt"
	"strings"

	"docsema/internal/source"
)

type Kind uint8

const (
	KindNone Kind = iota
	KindFunction
	KindMethod
	KindConstructor
	KindDestructor
	KindFunctionTemplate
	KindClassTemplate
	KindAliasTemplate
	KindPartialSpecialization
	KindSpecialization
	KindFunctionSpecialization
	KindRecord
	KindVariable
	KindTypedef
	KindEnum
	KindNamespace
)

var kindNames = [...]string{
	KindNone:                   "none",
	KindFunction:               "function",
	KindMethod:                 "method",
	KindConstructor:            "constructor",
	KindDestructor:             "destructor",
	KindFunctionTemplate:       "function-template",
	KindClassTemplate:          "class-template",
	KindAliasTemplate:          "alias-template",
	KindPartialSpecialization:  "partial-specialization",
	KindSpecialization:         "specialization",
	KindFunctionSpecialization: "function-specialization",
	KindRecord:                 "record",
	KindVariable:               "variable",
	KindTypedef:                "typedef",
	KindEnum:                   "enum",
	KindNamespace:              "namespace",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(s)
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return KindNone, fmt.Errorf("unknown declaration kind %q", s)
}

// KindNames lists every kind name in declaration order.
func KindNames() []string {
	return append([]string(nil), kindNames[:]...)
}

type Param struct {
	Name string
	Span source.Span
}

type TemplateParamKind uint8

const (
	TemplateType TemplateParamKind = iota
	TemplateNonType
	TemplateTemplate // has its own nested parameter list
)

type TemplateParam struct {
	Name   string
	Span   source.Span
	Kind   TemplateParamKind
	Params *TemplateParamList // only for TemplateTemplate
}

type TemplateParamList struct {
	Params []TemplateParam
}

func (l *TemplateParamList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Params)
}

// Decl is what the comment analyzer needs to know about a declaration.
type Decl interface {
	Kind() Kind
	Name() string
	Params() []Param
	TemplateParams() *TemplateParamList
	ReturnsVoid() bool
	// HasFunctionType is true for variables and typedefs of function
	// (pointer) type; they take \param like functions do.
	HasFunctionType() bool
}

// Node is the in-memory Decl used by the script driver and tests.
type Node struct {
	DeclKind  Kind
	DeclName  string
	ParamList []Param
	TParams   *TemplateParamList
	Void      bool
	FuncType  bool
	Span      source.Span
}

func (n *Node) Kind() Kind                         { return n.DeclKind }
func (n *Node) Name() string                       { return n.DeclName }
func (n *Node) Params() []Param                    { return n.ParamList }
func (n *Node) TemplateParams() *TemplateParamList { return n.TParams }
func (n *Node) ReturnsVoid() bool                  { return n.Void }
func (n *Node) HasFunctionType() bool              { return n.FuncType }
