package script

import (
	"docsema/internal/decl"
	"docsema/internal/source"
)

// Op is one replayable semantic action.
type Op uint8

const (
	OpInvalid Op = iota
	OpComment
	OpPara
	OpEndPara
	OpText
	OpInline
	OpUnknown
	OpHTML
	OpHTMLEnd
	OpBlock
	OpParam
	OpDirection
	OpName
	OpTParam
	OpFinish
	OpVerbatim
	OpLine
	OpEndVerbatim
	OpVerbatimLine
	OpEnd
)

var opNames = [...]string{
	OpInvalid:      "invalid",
	OpComment:      "comment",
	OpPara:         "para",
	OpEndPara:      "endpara",
	OpText:         "text",
	OpInline:       "inline",
	OpUnknown:      "unknown",
	OpHTML:         "html",
	OpHTMLEnd:      "html-end",
	OpBlock:        "block",
	OpParam:        "param",
	OpDirection:    "direction",
	OpName:         "name",
	OpTParam:       "tparam",
	OpFinish:       "finish",
	OpVerbatim:     "verbatim",
	OpLine:         "line",
	OpEndVerbatim:  "endverbatim",
	OpVerbatimLine: "verbatim-line",
	OpEnd:          "end",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "invalid"
}

var opByName = func() map[string]Op {
	m := make(map[string]Op, len(opNames))
	for op, name := range opNames {
		if Op(op) != OpInvalid {
			m[name] = Op(op)
		}
	}
	return m
}()

// LookupOp maps an action keyword to its Op.
func LookupOp(word string) (Op, bool) {
	op, ok := opByName[word]
	return op, ok
}

// OpNames lists the action keywords in declaration order.
func OpNames() []string {
	out := make([]string, 0, len(opNames)-1)
	for _, name := range opNames[1:] {
		out = append(out, name)
	}
	return out
}

// Arg is an action argument with its location in the script.
type Arg struct {
	Text string
	Span source.Span
}

// Attr is an HTML attribute of an `html` action.
type Attr struct {
	Name     Arg
	Value    Arg
	HasValue bool
}

// Step is one parsed action line.
type Step struct {
	Op          Op
	Span        source.Span // the whole line
	Name        Arg         // command or tag name, when the action has one
	Args        []Arg
	Attrs       []Attr
	SelfClosing bool
}

// Arg0 returns the first argument, if any.
func (s *Step) Arg0() (Arg, bool) {
	if len(s.Args) == 0 {
		return Arg{}, false
	}
	return s.Args[0], true
}

// Unit groups the actions that follow one `decl` header. Steps before the
// first header form a unit with a nil Decl.
type Unit struct {
	Decl  *decl.Node
	Steps []Step
}

// File is a parsed action script.
type File struct {
	Source *source.File
	Units  []Unit
	End    source.Span // empty span at the end of the script
}

// Steps counts the actions across all units.
func (f *File) Steps() int {
	n := 0
	for i := range f.Units {
		n += len(f.Units[i].Steps)
	}
	return n
}
