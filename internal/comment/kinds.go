package comment

type NodeKind uint8

const (
	KindText NodeKind = iota + 1
	KindParagraph
	KindBlockCommand
	KindParamCommand
	KindTParamCommand
	KindInlineCommand
	KindUnknownCommand
	KindVerbatimBlock
	KindVerbatimBlockLine
	KindVerbatimLine
	KindHTMLStartTag
	KindHTMLEndTag
	KindFullComment
)

var kindNames = [...]string{
	KindText:              "Text",
	KindParagraph:         "Paragraph",
	KindBlockCommand:      "BlockCommand",
	KindParamCommand:      "ParamCommand",
	KindTParamCommand:     "TParamCommand",
	KindInlineCommand:     "InlineCommand",
	KindUnknownCommand:    "UnknownCommand",
	KindVerbatimBlock:     "VerbatimBlock",
	KindVerbatimBlockLine: "VerbatimBlockLine",
	KindVerbatimLine:      "VerbatimLine",
	KindHTMLStartTag:      "HTMLStartTag",
	KindHTMLEndTag:        "HTMLEndTag",
	KindFullComment:       "FullComment",
}

func (k NodeKind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Invalid"
}

// IsInline reports whether nodes of this kind live inside a paragraph.
func (k NodeKind) IsInline() bool {
	switch k {
	case KindText, KindInlineCommand, KindUnknownCommand, KindHTMLStartTag, KindHTMLEndTag:
		return true
	}
	return false
}

// IsBlockCommand covers the three command kinds that own a body paragraph.
func (k NodeKind) IsBlockCommand() bool {
	return k == KindBlockCommand || k == KindParamCommand || k == KindTParamCommand
}

// RenderKind tells a renderer how to typeset an inline command's argument.
type RenderKind uint8

const (
	RenderNormal RenderKind = iota
	RenderBold
	RenderMonospaced
	RenderEmphasized
)

func (r RenderKind) String() string {
	switch r {
	case RenderBold:
		return "bold"
	case RenderMonospaced:
		return "monospaced"
	case RenderEmphasized:
		return "emphasized"
	}
	return "normal"
}

// Direction is the documented passing direction of a function parameter.
type Direction uint8

const (
	DirIn Direction = iota
	DirOut
	DirInOut
)

func (d Direction) String() string {
	switch d {
	case DirOut:
		return "[out]"
	case DirInOut:
		return "[in,out]"
	}
	return "[in]"
}
