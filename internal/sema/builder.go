package sema

import (
	"fmt"

	"docsema/internal/commands"
	"docsema/internal/comment"
	"docsema/internal/decl"
	"docsema/internal/diag"
	"docsema/internal/source"
)

// TreeBuilder receives one call per construct recognized by a comment parser
// and assembles the comment tree, reporting problems as it goes.
//
// Calls must follow document order. A second Begin without FinishComment,
// finishing a node that is not the open one, or any action outside a comment
// panics: those are bugs in the caller.
type TreeBuilder struct {
	nodes    *comment.Nodes
	files    *source.FileSet
	reporter diag.Reporter
	table    commands.Table

	probe     DeclProbe
	validator CommandValidator
	tags      *TagStack

	open    bool
	span    source.Span
	blocks  []comment.NodeID
	para    *openParagraph
	block   comment.NodeID // open block-like command or verbatim block
	body    comment.NodeID // first paragraph finished while block was open
	tag     comment.NodeID // started HTML tag waiting for FinishHTMLTag
	params  map[uint32]comment.NodeID
	tparams map[string]comment.NodeID
}

type openParagraph struct {
	span     source.Span
	children []comment.NodeID
	started  bool
}

// NewTreeBuilder wires a builder to its arena, command table and sink.
// files may be nil; it is only used to compare line numbers.
func NewTreeBuilder(nodes *comment.Nodes, files *source.FileSet, reporter diag.Reporter, table commands.Table) *TreeBuilder {
	if nodes == nil || table == nil {
		panic("sema: TreeBuilder needs nodes and a command table")
	}
	return &TreeBuilder{
		nodes:    nodes,
		files:    files,
		reporter: reporter,
		table:    table,
		tags:     NewTagStack(),
	}
}

// Attach sets the declaration documented by the following comments.
func (b *TreeBuilder) Attach(d decl.Decl) {
	b.probe.Attach(d)
}

func (b *TreeBuilder) Probe() *DeclProbe {
	return &b.probe
}

func (b *TreeBuilder) Nodes() *comment.Nodes {
	return b.nodes
}

func (b *TreeBuilder) Table() commands.Table {
	return b.table
}

// InComment reports whether Begin was called and the root is not built yet.
func (b *TreeBuilder) InComment() bool {
	return b.open
}

// OpenBlock returns the open block-like command or verbatim block.
func (b *TreeBuilder) OpenBlock() comment.NodeID {
	return b.block
}

// InParagraph reports whether a paragraph (explicit or implicit) is open.
func (b *TreeBuilder) InParagraph() bool {
	return b.para != nil
}

// ExplicitParagraph reports whether the open paragraph came from
// StartParagraph rather than from inline content.
func (b *TreeBuilder) ExplicitParagraph() bool {
	return b.para != nil && b.para.started
}

// PendingTag returns the HTML start tag still waiting for FinishHTMLTag.
func (b *TreeBuilder) PendingTag() comment.NodeID {
	return b.tag
}

// Begin opens a new comment starting at span.
func (b *TreeBuilder) Begin(span source.Span) {
	if b.open {
		panic("sema: Begin while a comment is open")
	}
	b.open = true
	b.span = span
	b.blocks = b.blocks[:0]
	b.para = nil
	b.block, b.body, b.tag = comment.NoNodeID, comment.NoNodeID, comment.NoNodeID
	b.params = make(map[uint32]comment.NodeID)
	b.tparams = make(map[string]comment.NodeID)
	b.validator.Reset()
	b.tags.Drain()
}

// FinishComment closes whatever is still open, reports unclosed HTML tags and
// returns the FullComment root.
func (b *TreeBuilder) FinishComment() comment.NodeID {
	b.requireOpen("FinishComment")
	b.settleTag()
	b.closeParagraph()
	b.closeBlock()

	for _, id := range b.tags.Drain() {
		tag, _ := b.nodes.HTMLStartTag(id)
		if IsEndTagOptional(tag.Name) {
			continue
		}
		tag.Malformed = true
		diag.ReportWarning(b.reporter, diag.HtmUnclosedTag, b.nodes.Get(id).Span,
			fmt.Sprintf("HTML start tag '<%s>' is never closed", tag.Name)).Emit()
	}

	span := b.span
	for _, id := range b.blocks {
		span = span.Cover(b.nodes.Get(id).Span)
	}
	root := b.nodes.NewFullComment(span, b.blocks)
	b.open = false
	b.blocks = b.blocks[:0]
	return root
}

// StartParagraph opens a paragraph explicitly. An implicitly opened one is
// finished first.
func (b *TreeBuilder) StartParagraph(span source.Span) {
	b.requireOpen("StartParagraph")
	if b.para != nil {
		if b.para.started {
			panic("sema: StartParagraph inside an open paragraph")
		}
		b.closeParagraph()
	}
	b.para = &openParagraph{span: span, started: true}
}

// FinishParagraph closes the open paragraph. While a block-like command is
// open, its first finished paragraph becomes the command body; every other
// paragraph is a top-level block.
func (b *TreeBuilder) FinishParagraph() comment.NodeID {
	b.requireOpen("FinishParagraph")
	if b.para == nil {
		panic("sema: FinishParagraph without an open paragraph")
	}
	return b.closeParagraph()
}

// Text appends raw text to the current paragraph.
func (b *TreeBuilder) Text(span source.Span, text string) comment.NodeID {
	b.requireOpen("Text")
	b.settleTag()
	id := b.nodes.NewText(span, text)
	b.appendInline(id, span)
	return id
}

// InlineCommand appends an inline command such as \c or \em. Names missing
// from the table become UnknownCommand nodes.
func (b *TreeBuilder) InlineCommand(span, nameSpan source.Span, name string, arg *comment.Argument) comment.NodeID {
	b.requireOpen("InlineCommand")
	info, ok := b.table.Lookup(name)
	if !ok {
		return b.UnknownCommand(span, nameSpan, name)
	}
	if info.Kind != commands.KindInline {
		panic(fmt.Sprintf("sema: InlineCommand for %s command %q", info.Kind, name))
	}
	b.settleTag()

	var args []comment.Argument
	if arg != nil {
		args = []comment.Argument{*arg}
		span = span.Cover(arg.Span)
	} else if info.NumArgs > 0 {
		diag.ReportWarning(b.reporter, diag.DocInlineMissingArg, nameSpan,
			fmt.Sprintf("'\\%s' command does not have a valid word argument", name)).Emit()
	}
	id := b.nodes.NewInlineCommand(span, nameSpan, b.nodes.Strings.Intern(name), info.Render, args)
	b.appendInline(id, span)
	return id
}

// UnknownCommand appends a command name absent from the table.
func (b *TreeBuilder) UnknownCommand(span, nameSpan source.Span, name string) comment.NodeID {
	b.requireOpen("UnknownCommand")
	b.settleTag()
	id := b.nodes.NewUnknownCommand(span, nameSpan, b.nodes.Strings.Intern(name))
	b.appendInline(id, span)
	b.reportUnknownCommand(nameSpan, name)
	return id
}

// RenderKind looks up how an inline command's argument is typeset.
func (b *TreeBuilder) RenderKind(name string) comment.RenderKind {
	if info, ok := b.table.Lookup(name); ok && info.Kind == commands.KindInline {
		return info.Render
	}
	return comment.RenderNormal
}

func (b *TreeBuilder) requireOpen(action string) {
	if !b.open {
		panic("sema: " + action + " outside of a comment")
	}
}

// appendInline adds an inline node, opening a paragraph when none is open.
func (b *TreeBuilder) appendInline(id comment.NodeID, span source.Span) {
	if b.para == nil {
		b.para = &openParagraph{span: span}
	}
	b.para.children = append(b.para.children, id)
}

// closeParagraph finishes the open paragraph, if any.
func (b *TreeBuilder) closeParagraph() comment.NodeID {
	if b.para == nil {
		return comment.NoNodeID
	}
	b.settleTag()
	p := b.para
	b.para = nil
	span := p.span
	for _, child := range p.children {
		span = span.Cover(b.nodes.Get(child).Span)
	}
	id := b.nodes.NewParagraph(span, p.children)
	if b.block.IsValid() && b.nodes.Kind(b.block).IsBlockCommand() && !b.body.IsValid() {
		b.body = id
	} else {
		b.blocks = append(b.blocks, id)
	}
	return id
}

// closeBlock finishes the open block-like construct with what it has.
func (b *TreeBuilder) closeBlock() {
	if !b.block.IsValid() {
		return
	}
	if b.nodes.Kind(b.block) == comment.KindVerbatimBlock {
		b.finishVerbatim(b.block, b.nodes.Get(b.block).Span.EndPoint(), "")
		return
	}
	b.finishBlockLike(b.block, comment.NoNodeID)
}

// beginBlockContent prepares for a new top-level construct.
func (b *TreeBuilder) beginBlockContent() {
	b.closeParagraph()
	b.closeBlock()
}

func (b *TreeBuilder) lookup(name string, kind commands.Kind) *commands.Info {
	info, ok := b.table.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("sema: unknown command %q", name))
	}
	if info.Kind != kind {
		panic(fmt.Sprintf("sema: %q is a %s command, not %s", name, info.Kind, kind))
	}
	return info
}

// sameLine reports whether both spans start on the same line. Without a file
// set the answer is unknown and treated as true.
func (b *TreeBuilder) sameLine(a, c source.Span) bool {
	if b.files == nil || a.File != c.File || int(a.File) >= b.files.Len() {
		return true
	}
	la, _ := b.files.Resolve(a)
	lc, _ := b.files.Resolve(c)
	return la.Line == lc.Line
}
