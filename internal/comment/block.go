package comment

import (
	"fmt"

	"fortio.org/safecast"

	"docsema/internal/source"
)

// NoParamIndex marks a ParamCommand whose name did not resolve.
const NoParamIndex = ^uint32(0)

// Argument is one word-like argument of a command.
type Argument struct {
	Text string
	Span source.Span
}

// BlockCommand is a command that starts a block (\brief, \returns, \note ...).
type BlockCommand struct {
	Name     source.StringID
	NameSpan source.Span
	ArgStart ArgID
	ArgCount uint32
	Body     NodeID // Paragraph or NoNodeID
	Closed   bool
}

type ParamCommand struct {
	BlockCommand
	Direction         Direction
	DirectionExplicit bool
	DirectionSpan     source.Span
	Param             string // written parameter name
	ParamSpan         source.Span
	HasParam          bool
	Index             uint32 // position in the declaration or NoParamIndex
}

// IsResolved reports whether the name matched a declared parameter.
func (p *ParamCommand) IsResolved() bool {
	return p.Index != NoParamIndex
}

type TParamCommand struct {
	BlockCommand
	Param     string
	ParamSpan source.Span
	HasParam  bool
	Position  []uint32 // path through nested template parameter lists; nil when unresolved
}

func (t *TParamCommand) IsResolved() bool {
	return t.Position != nil
}

func (n *Nodes) NewBlockCommand(span, nameSpan source.Span, name source.StringID) NodeID {
	payload := PayloadID(n.Blocks.Allocate(BlockCommand{Name: name, NameSpan: nameSpan}))
	return n.New(KindBlockCommand, span, payload)
}

func (n *Nodes) NewParamCommand(span, nameSpan source.Span, name source.StringID) NodeID {
	payload := PayloadID(n.Params.Allocate(ParamCommand{
		BlockCommand: BlockCommand{Name: name, NameSpan: nameSpan},
		Index:        NoParamIndex,
	}))
	return n.New(KindParamCommand, span, payload)
}

func (n *Nodes) NewTParamCommand(span, nameSpan source.Span, name source.StringID) NodeID {
	payload := PayloadID(n.TParams.Allocate(TParamCommand{
		BlockCommand: BlockCommand{Name: name, NameSpan: nameSpan},
	}))
	return n.New(KindTParamCommand, span, payload)
}

func (n *Nodes) BlockCommand(id NodeID) (*BlockCommand, bool) {
	idx, ok := n.payload(id, KindBlockCommand)
	if !ok {
		return nil, false
	}
	return n.Blocks.Get(idx), true
}

func (n *Nodes) ParamCommand(id NodeID) (*ParamCommand, bool) {
	idx, ok := n.payload(id, KindParamCommand)
	if !ok {
		return nil, false
	}
	return n.Params.Get(idx), true
}

func (n *Nodes) TParamCommand(id NodeID) (*TParamCommand, bool) {
	idx, ok := n.payload(id, KindTParamCommand)
	if !ok {
		return nil, false
	}
	return n.TParams.Get(idx), true
}

// BlockOf returns the shared block part of any block-like command, or nil.
func (n *Nodes) BlockOf(id NodeID) *BlockCommand {
	if b, ok := n.BlockCommand(id); ok {
		return b
	}
	if p, ok := n.ParamCommand(id); ok {
		return &p.BlockCommand
	}
	if t, ok := n.TParamCommand(id); ok {
		return &t.BlockCommand
	}
	return nil
}

// CopyArgs stores args contiguously and returns the range.
func (n *Nodes) CopyArgs(args []Argument) (start ArgID, count uint32) {
	if len(args) == 0 {
		return NoArgID, 0
	}
	for idx, a := range args {
		id := ArgID(n.Args.Allocate(a))
		if idx == 0 {
			start = id
		}
	}
	var err error
	count, err = safecast.Conv[uint32](len(args))
	if err != nil {
		panic(fmt.Errorf("args overflow: %w", err))
	}
	return start, count
}

// CollectArgs returns a copy of the argument range.
func (n *Nodes) CollectArgs(start ArgID, count uint32) []Argument {
	if !start.IsValid() || count == 0 {
		return nil
	}
	out := make([]Argument, 0, count)
	for off := range count {
		if a := n.Args.Get(uint32(start) + off); a != nil {
			out = append(out, *a)
		}
	}
	return out
}
