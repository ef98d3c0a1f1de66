package comment

import (
	"docsema/internal/source"
)

// Node is the common header of every comment AST node; Payload indexes the
// per-kind arena selected by Kind.
type Node struct {
	Kind    NodeKind
	Span    source.Span
	Payload PayloadID
}

// Nodes owns all arenas of one or more comment trees.
type Nodes struct {
	Arena         *Arena[Node]
	Texts         *Arena[Text]
	Paragraphs    *Arena[Paragraph]
	Blocks        *Arena[BlockCommand]
	Params        *Arena[ParamCommand]
	TParams       *Arena[TParamCommand]
	Inlines       *Arena[InlineCommand]
	Unknowns      *Arena[UnknownCommand]
	Verbatims     *Arena[VerbatimBlock]
	VerbatimLines *Arena[VerbatimLine]
	StartTags     *Arena[HTMLStartTag]
	EndTags       *Arena[HTMLEndTag]
	Comments      *Arena[FullComment]
	Args          *Arena[Argument]
	Attrs         *Arena[HTMLAttr]
	Strings       *source.Interner
}

// NewNodes creates empty arenas; capHint 0 picks a small default.
func NewNodes(capHint uint) *Nodes {
	if capHint == 0 {
		capHint = 1 << 6
	}
	small := max(capHint/4, 4)
	return &Nodes{
		Arena:         NewArena[Node](capHint),
		Texts:         NewArena[Text](capHint),
		Paragraphs:    NewArena[Paragraph](small),
		Blocks:        NewArena[BlockCommand](small),
		Params:        NewArena[ParamCommand](small),
		TParams:       NewArena[TParamCommand](small),
		Inlines:       NewArena[InlineCommand](small),
		Unknowns:      NewArena[UnknownCommand](small),
		Verbatims:     NewArena[VerbatimBlock](small),
		VerbatimLines: NewArena[VerbatimLine](small),
		StartTags:     NewArena[HTMLStartTag](small),
		EndTags:       NewArena[HTMLEndTag](small),
		Comments:      NewArena[FullComment](4),
		Args:          NewArena[Argument](small),
		Attrs:         NewArena[HTMLAttr](small),
		Strings:       source.NewInterner(),
	}
}

func (n *Nodes) New(kind NodeKind, span source.Span, payload PayloadID) NodeID {
	return NodeID(n.Arena.Allocate(Node{Kind: kind, Span: span, Payload: payload}))
}

func (n *Nodes) Get(id NodeID) *Node {
	return n.Arena.Get(uint32(id))
}

// Kind returns the node kind, or 0 for an invalid id.
func (n *Nodes) Kind(id NodeID) NodeKind {
	if node := n.Get(id); node != nil {
		return node.Kind
	}
	return 0
}

// Name resolves an interned name.
func (n *Nodes) Name(id source.StringID) string {
	s, _ := n.Strings.Lookup(id)
	return s
}

func (n *Nodes) payload(id NodeID, kind NodeKind) (uint32, bool) {
	node := n.Get(id)
	if node == nil || node.Kind != kind || !node.Payload.IsValid() {
		return 0, false
	}
	return uint32(node.Payload), true
}

// Children lists the direct children of id in document order.
func (n *Nodes) Children(id NodeID) []NodeID {
	node := n.Get(id)
	if node == nil {
		return nil
	}
	switch node.Kind {
	case KindParagraph:
		p, _ := n.Paragraph(id)
		return p.Children
	case KindBlockCommand, KindParamCommand, KindTParamCommand:
		if b := n.BlockOf(id); b != nil && b.Body.IsValid() {
			return []NodeID{b.Body}
		}
	case KindVerbatimBlock:
		v, _ := n.VerbatimBlock(id)
		return v.Lines
	case KindFullComment:
		c, _ := n.FullComment(id)
		return c.Blocks
	}
	return nil
}

// Walk visits id and its descendants depth-first, pre-order. Returning false
// from visit skips the node's children.
func (n *Nodes) Walk(id NodeID, visit func(id NodeID, depth int) bool) {
	n.walk(id, 0, visit)
}

func (n *Nodes) walk(id NodeID, depth int, visit func(NodeID, int) bool) {
	if !id.IsValid() || !visit(id, depth) {
		return
	}
	for _, child := range n.Children(id) {
		n.walk(child, depth+1, visit)
	}
}
