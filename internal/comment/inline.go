package comment

import "docsema/internal/source"

type InlineCommand struct {
	Name     source.StringID
	NameSpan source.Span
	Render   RenderKind
	ArgStart ArgID
	ArgCount uint32
}

// UnknownCommand keeps a command name that is not in the command table.
type UnknownCommand struct {
	Name     source.StringID
	NameSpan source.Span
}

func (n *Nodes) NewInlineCommand(span, nameSpan source.Span, name source.StringID, render RenderKind, args []Argument) NodeID {
	start, count := n.CopyArgs(args)
	payload := PayloadID(n.Inlines.Allocate(InlineCommand{
		Name:     name,
		NameSpan: nameSpan,
		Render:   render,
		ArgStart: start,
		ArgCount: count,
	}))
	return n.New(KindInlineCommand, span, payload)
}

func (n *Nodes) InlineCommand(id NodeID) (*InlineCommand, bool) {
	idx, ok := n.payload(id, KindInlineCommand)
	if !ok {
		return nil, false
	}
	return n.Inlines.Get(idx), true
}

func (n *Nodes) NewUnknownCommand(span, nameSpan source.Span, name source.StringID) NodeID {
	payload := PayloadID(n.Unknowns.Allocate(UnknownCommand{Name: name, NameSpan: nameSpan}))
	return n.New(KindUnknownCommand, span, payload)
}

func (n *Nodes) UnknownCommand(id NodeID) (*UnknownCommand, bool) {
	idx, ok := n.payload(id, KindUnknownCommand)
	if !ok {
		return nil, false
	}
	return n.Unknowns.Get(idx), true
}
