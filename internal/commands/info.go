package commands

import (
	"fmt"
	"strings"

	"docsema/internal/comment"
)

// Kind is the closed classification of documentation commands.
type Kind uint8

const (
	KindBlock Kind = iota + 1
	KindInline
	KindVerbatimBlock
	KindVerbatimLine
)

func (k Kind) String() string {
	switch k {
	case KindBlock:
		return "block"
	case KindInline:
		return "inline"
	case KindVerbatimBlock:
		return "verbatim"
	case KindVerbatimLine:
		return "verbatim-line"
	}
	return "unknown"
}

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "block", "":
		return KindBlock, nil
	case "inline":
		return KindInline, nil
	case "verbatim", "verbatim-block":
		return KindVerbatimBlock, nil
	case "verbatim-line":
		return KindVerbatimLine, nil
	}
	return 0, fmt.Errorf("unknown command kind %q", s)
}

// Singleton groups commands that may appear at most once per comment.
type Singleton uint8

const (
	SingletonNone Singleton = iota
	SingletonBrief
	SingletonReturns
)

func (s Singleton) String() string {
	switch s {
	case SingletonBrief:
		return "brief"
	case SingletonReturns:
		return "returns"
	}
	return ""
}

func ParseSingleton(s string) (Singleton, error) {
	switch strings.ToLower(s) {
	case "":
		return SingletonNone, nil
	case "brief":
		return SingletonBrief, nil
	case "returns":
		return SingletonReturns, nil
	}
	return 0, fmt.Errorf("unknown singleton group %q", s)
}

// Requirement is a bit set of declaration properties a command needs.
type Requirement uint8

const (
	RequiresCallable Requirement = 1 << iota
	RequiresNonVoid
	RequiresTemplate
)

func (r Requirement) Has(flag Requirement) bool {
	return r&flag != 0
}

func (r Requirement) String() string {
	var parts []string
	if r.Has(RequiresCallable) {
		parts = append(parts, "callable")
	}
	if r.Has(RequiresNonVoid) {
		parts = append(parts, "non-void")
	}
	if r.Has(RequiresTemplate) {
		parts = append(parts, "template")
	}
	return strings.Join(parts, ",")
}

func ParseRequirement(s string) (Requirement, error) {
	switch strings.ToLower(s) {
	case "callable":
		return RequiresCallable, nil
	case "non-void":
		return RequiresNonVoid, nil
	case "template":
		return RequiresTemplate, nil
	}
	return 0, fmt.Errorf("unknown requirement %q", s)
}

func ParseRender(s string) (comment.RenderKind, error) {
	switch strings.ToLower(s) {
	case "", "normal":
		return comment.RenderNormal, nil
	case "bold":
		return comment.RenderBold, nil
	case "monospaced":
		return comment.RenderMonospaced, nil
	case "emphasized":
		return comment.RenderEmphasized, nil
	}
	return 0, fmt.Errorf("unknown render kind %q", s)
}

// Info is the static metadata of one command name.
type Info struct {
	Name         string
	Kind         Kind
	Render       comment.RenderKind // inline only
	Singleton    Singleton
	NumArgs      int
	IsParam      bool
	IsTParam     bool
	EmptyAllowed bool   // body may be empty (\deprecated)
	EndName      string // closing command of a verbatim block
	Requires     Requirement
	Builtin      bool
}

// Table is the read-only command lookup the analyzer depends on.
type Table interface {
	Lookup(name string) (*Info, bool)
	Names() []string
}
