package comment

import "docsema/internal/source"

// FullComment is the root: top-level blocks in document order.
type FullComment struct {
	Blocks []NodeID
}

func (n *Nodes) NewFullComment(span source.Span, blocks []NodeID) NodeID {
	payload := PayloadID(n.Comments.Allocate(FullComment{
		Blocks: append([]NodeID(nil), blocks...),
	}))
	return n.New(KindFullComment, span, payload)
}

func (n *Nodes) FullComment(id NodeID) (*FullComment, bool) {
	idx, ok := n.payload(id, KindFullComment)
	if !ok {
		return nil, false
	}
	return n.Comments.Get(idx), true
}
