package comment

import "docsema/internal/source"

// VerbatimBlock is \code ... \endcode and friends; Lines are VerbatimBlockLine nodes.
type VerbatimBlock struct {
	Name      source.StringID
	NameSpan  source.Span
	CloseName source.StringID // NoStringID when the block was never closed
	CloseSpan source.Span
	Lines     []NodeID
	Closed    bool
}

// VerbatimLine is a command whose argument is the rest of the line (\fn, \defgroup).
type VerbatimLine struct {
	Name     source.StringID
	NameSpan source.Span
	Text     string
	TextSpan source.Span
}

func (n *Nodes) NewVerbatimBlock(span, nameSpan source.Span, name source.StringID) NodeID {
	payload := PayloadID(n.Verbatims.Allocate(VerbatimBlock{Name: name, NameSpan: nameSpan}))
	return n.New(KindVerbatimBlock, span, payload)
}

func (n *Nodes) VerbatimBlock(id NodeID) (*VerbatimBlock, bool) {
	idx, ok := n.payload(id, KindVerbatimBlock)
	if !ok {
		return nil, false
	}
	return n.Verbatims.Get(idx), true
}

// NewVerbatimBlockLine reuses the Text payload arena: a line is raw text.
func (n *Nodes) NewVerbatimBlockLine(span source.Span, text string) NodeID {
	payload := PayloadID(n.Texts.Allocate(Text{Text: text}))
	return n.New(KindVerbatimBlockLine, span, payload)
}

func (n *Nodes) VerbatimBlockLine(id NodeID) (*Text, bool) {
	idx, ok := n.payload(id, KindVerbatimBlockLine)
	if !ok {
		return nil, false
	}
	return n.Texts.Get(idx), true
}

func (n *Nodes) NewVerbatimLine(span, nameSpan source.Span, name source.StringID, text string, textSpan source.Span) NodeID {
	payload := PayloadID(n.VerbatimLines.Allocate(VerbatimLine{
		Name:     name,
		NameSpan: nameSpan,
		Text:     text,
		TextSpan: textSpan,
	}))
	return n.New(KindVerbatimLine, span, payload)
}

func (n *Nodes) VerbatimLine(id NodeID) (*VerbatimLine, bool) {
	idx, ok := n.payload(id, KindVerbatimLine)
	if !ok {
		return nil, false
	}
	return n.VerbatimLines.Get(idx), true
}
