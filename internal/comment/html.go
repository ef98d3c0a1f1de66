package comment

import (
	"fmt"

	"fortio.org/safecast"

	"docsema/internal/source"
)

type HTMLAttr struct {
	Name      string
	NameSpan  source.Span
	Value     string
	ValueSpan source.Span
	HasValue  bool
}

type HTMLStartTag struct {
	Name        string // as written
	NameSpan    source.Span
	AttrStart   AttrID
	AttrCount   uint32
	SelfClosing bool
	Finished    bool
	Malformed   bool // never closed, or closed by a different end tag
	GreaterSpan source.Span
}

type HTMLEndTag struct {
	Name      string
	NameSpan  source.Span
	Malformed bool
}

func (n *Nodes) NewHTMLStartTag(span, nameSpan source.Span, name string) NodeID {
	payload := PayloadID(n.StartTags.Allocate(HTMLStartTag{Name: name, NameSpan: nameSpan}))
	return n.New(KindHTMLStartTag, span, payload)
}

func (n *Nodes) HTMLStartTag(id NodeID) (*HTMLStartTag, bool) {
	idx, ok := n.payload(id, KindHTMLStartTag)
	if !ok {
		return nil, false
	}
	return n.StartTags.Get(idx), true
}

func (n *Nodes) NewHTMLEndTag(span, nameSpan source.Span, name string) NodeID {
	payload := PayloadID(n.EndTags.Allocate(HTMLEndTag{Name: name, NameSpan: nameSpan}))
	return n.New(KindHTMLEndTag, span, payload)
}

func (n *Nodes) HTMLEndTag(id NodeID) (*HTMLEndTag, bool) {
	idx, ok := n.payload(id, KindHTMLEndTag)
	if !ok {
		return nil, false
	}
	return n.EndTags.Get(idx), true
}

// CopyAttrs stores attributes contiguously and returns the range.
func (n *Nodes) CopyAttrs(attrs []HTMLAttr) (start AttrID, count uint32) {
	if len(attrs) == 0 {
		return NoAttrID, 0
	}
	for idx, a := range attrs {
		id := AttrID(n.Attrs.Allocate(a))
		if idx == 0 {
			start = id
		}
	}
	var err error
	count, err = safecast.Conv[uint32](len(attrs))
	if err != nil {
		panic(fmt.Errorf("attrs overflow: %w", err))
	}
	return start, count
}

func (n *Nodes) CollectAttrs(start AttrID, count uint32) []HTMLAttr {
	if !start.IsValid() || count == 0 {
		return nil
	}
	out := make([]HTMLAttr, 0, count)
	for off := range count {
		if a := n.Attrs.Get(uint32(start) + off); a != nil {
			out = append(out, *a)
		}
	}
	return out
}
