package sema

import (
	"fmt"

	"docsema/internal/comment"
	"docsema/internal/diag"
	"docsema/internal/source"
)

// StartHTMLTag appends "<name" to the current paragraph. Attributes arrive
// with FinishHTMLTag.
func (b *TreeBuilder) StartHTMLTag(span, nameSpan source.Span, name string) comment.NodeID {
	b.requireOpen("StartHTMLTag")
	b.settleTag()
	id := b.nodes.NewHTMLStartTag(span, nameSpan, name)
	b.appendInline(id, span)
	b.tag = id
	return id
}

// FinishHTMLTag completes the tag started last. Tags that are neither
// self-closing nor void wait for their end tag.
func (b *TreeBuilder) FinishHTMLTag(tag comment.NodeID, attrs []comment.HTMLAttr, greaterSpan source.Span, selfClosing bool) {
	b.requireOpen("FinishHTMLTag")
	if !tag.IsValid() || tag != b.tag {
		panic(fmt.Sprintf("sema: FinishHTMLTag on tag %d, pending tag is %d", tag, b.tag))
	}
	st, _ := b.nodes.HTMLStartTag(tag)
	st.AttrStart, st.AttrCount = b.nodes.CopyAttrs(attrs)
	st.GreaterSpan = greaterSpan
	st.SelfClosing = selfClosing
	b.extend(tag, greaterSpan)
	b.completeTag()
}

// settleTag finishes a start tag that never got FinishHTMLTag.
func (b *TreeBuilder) settleTag() {
	if b.tag.IsValid() {
		b.completeTag()
	}
}

func (b *TreeBuilder) completeTag() {
	tag := b.tag
	b.tag = comment.NoNodeID
	st, _ := b.nodes.HTMLStartTag(tag)
	st.Finished = true
	if !st.SelfClosing && !IsEndTagForbidden(st.Name) {
		b.tags.Push(tag, st.Name)
	}
}

// HTMLEndTag appends "</name>" and matches it against the open tags.
func (b *TreeBuilder) HTMLEndTag(span, nameSpan source.Span, name string) comment.NodeID {
	b.requireOpen("HTMLEndTag")
	b.settleTag()
	id := b.nodes.NewHTMLEndTag(span, nameSpan, name)
	b.appendInline(id, span)
	et, _ := b.nodes.HTMLEndTag(id)

	if IsEndTagForbidden(name) {
		et.Malformed = true
		diag.ReportWarning(b.reporter, diag.HtmEndForbidden, span,
			fmt.Sprintf("HTML end tag '</%s>' is forbidden", name)).Emit()
		return id
	}
	m := b.tags.MatchEnd(name)
	if !m.Found {
		et.Malformed = true
		diag.ReportWarning(b.reporter, diag.HtmEndUnbalanced, span,
			fmt.Sprintf("HTML end tag '</%s>' does not match any start tag", name)).Emit()
		return id
	}
	for _, open := range m.Unterminated {
		st, _ := b.nodes.HTMLStartTag(open)
		if IsEndTagOptional(st.Name) {
			continue
		}
		st.Malformed = true
		openSpan := b.nodes.Get(open).Span
		rb := diag.ReportWarning(b.reporter, diag.HtmStartEndMismatch, openSpan,
			fmt.Sprintf("HTML start tag '<%s>' closed by '</%s>'", st.Name, name))
		if !b.sameLine(openSpan, span) {
			rb.WithNote(span, "end tag")
		}
		rb.Emit()
	}
	return id
}
