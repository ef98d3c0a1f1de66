package sema

import (
	"fmt"

	"docsema/internal/commands"
	"docsema/internal/comment"
	"docsema/internal/diag"
	"docsema/internal/source"
)

// StartVerbatimBlock opens \code, \verbatim and similar blocks.
func (b *TreeBuilder) StartVerbatimBlock(span, nameSpan source.Span, name string) comment.NodeID {
	b.requireOpen("StartVerbatimBlock")
	b.lookup(name, commands.KindVerbatimBlock)
	b.beginBlockContent()
	id := b.nodes.NewVerbatimBlock(span, nameSpan, b.nodes.Strings.Intern(name))
	b.openBlock(id)
	return id
}

// VerbatimBlockLine appends one raw line to the open verbatim block.
func (b *TreeBuilder) VerbatimBlockLine(block comment.NodeID, span source.Span, text string) comment.NodeID {
	b.requireVerbatim(block, "VerbatimBlockLine")
	line := b.nodes.NewVerbatimBlockLine(span, text)
	vb, _ := b.nodes.VerbatimBlock(block)
	vb.Lines = append(vb.Lines, line)
	b.extend(block, span)
	return line
}

// FinishVerbatimBlock closes the block with the close command as written;
// an empty closeName means the block ran to the end of the comment.
func (b *TreeBuilder) FinishVerbatimBlock(block comment.NodeID, closeSpan source.Span, closeName string) {
	b.requireVerbatim(block, "FinishVerbatimBlock")
	b.finishVerbatim(block, closeSpan, closeName)
}

func (b *TreeBuilder) finishVerbatim(block comment.NodeID, closeSpan source.Span, closeName string) {
	b.block = comment.NoNodeID
	vb, _ := b.nodes.VerbatimBlock(block)
	name := b.nodes.Name(vb.Name)
	info, _ := b.table.Lookup(name)

	vb.Closed = true
	vb.CloseSpan = closeSpan
	switch {
	case closeName == "":
		diag.ReportWarning(b.reporter, diag.DocVerbatimUnterminated, vb.NameSpan,
			fmt.Sprintf("'\\%s' block is not terminated by '\\%s'", name, info.EndName)).Emit()
	case closeName != info.EndName:
		vb.CloseName = b.nodes.Strings.Intern(closeName)
		diag.ReportWarning(b.reporter, diag.DocVerbatimCloseMismatch, closeSpan,
			fmt.Sprintf("'\\%s' block closed by '\\%s', expected '\\%s'", name, closeName, info.EndName)).
			WithNote(vb.NameSpan, "block opened here").
			WithFix(fmt.Sprintf("replace with '\\%s'", info.EndName), diag.FixEdit{Span: closeSpan, NewText: "\\" + info.EndName}).
			Emit()
	default:
		vb.CloseName = b.nodes.Strings.Intern(closeName)
	}
	b.extend(block, closeSpan)
}

func (b *TreeBuilder) requireVerbatim(block comment.NodeID, action string) {
	b.requireOpen(action)
	if !block.IsValid() || block != b.block || b.nodes.Kind(block) != comment.KindVerbatimBlock {
		panic(fmt.Sprintf("sema: %s on block %d, open block is %d", action, block, b.block))
	}
}

// VerbatimLine adds a command whose argument is the rest of the line (\fn).
func (b *TreeBuilder) VerbatimLine(span, nameSpan source.Span, name, text string, textSpan source.Span) comment.NodeID {
	b.requireOpen("VerbatimLine")
	b.lookup(name, commands.KindVerbatimLine)
	b.beginBlockContent()
	id := b.nodes.NewVerbatimLine(span.Cover(textSpan), nameSpan, b.nodes.Strings.Intern(name), text, textSpan)
	b.blocks = append(b.blocks, id)
	return id
}
