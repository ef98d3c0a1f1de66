package comment

import (
	"strings"

	"docsema/internal/source"
)

// Text is a run of plain comment text, stored verbatim.
type Text struct {
	Text string
}

type Paragraph struct {
	Children []NodeID
}

func (n *Nodes) NewText(span source.Span, text string) NodeID {
	payload := PayloadID(n.Texts.Allocate(Text{Text: text}))
	return n.New(KindText, span, payload)
}

func (n *Nodes) Text(id NodeID) (*Text, bool) {
	idx, ok := n.payload(id, KindText)
	if !ok {
		return nil, false
	}
	return n.Texts.Get(idx), true
}

// NewParagraph copies children into the node.
func (n *Nodes) NewParagraph(span source.Span, children []NodeID) NodeID {
	payload := PayloadID(n.Paragraphs.Allocate(Paragraph{
		Children: append([]NodeID(nil), children...),
	}))
	return n.New(KindParagraph, span, payload)
}

func (n *Nodes) Paragraph(id NodeID) (*Paragraph, bool) {
	idx, ok := n.payload(id, KindParagraph)
	if !ok {
		return nil, false
	}
	return n.Paragraphs.Get(idx), true
}

// IsWhitespace reports whether the paragraph holds nothing but blank text.
// An invalid id counts as whitespace.
func (n *Nodes) IsWhitespace(id NodeID) bool {
	p, ok := n.Paragraph(id)
	if !ok {
		return true
	}
	for _, child := range p.Children {
		t, ok := n.Text(child)
		if !ok || strings.TrimSpace(t.Text) != "" {
			return false
		}
	}
	return true
}

// PlainText concatenates the Text children of a paragraph.
func (n *Nodes) PlainText(id NodeID) string {
	p, ok := n.Paragraph(id)
	if !ok {
		return ""
	}
	var b strings.Builder
	for _, child := range p.Children {
		if t, ok := n.Text(child); ok {
			b.WriteString(t.Text)
		}
	}
	return b.String()
}
