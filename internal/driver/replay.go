package driver

import (
	"fmt"
	"strings"

	"docsema/internal/commands"
	"docsema/internal/comment"
	"docsema/internal/decl"
	"docsema/internal/diag"
	"docsema/internal/script"
	"docsema/internal/sema"
	"docsema/internal/source"
)

// Comment is one replayed comment and the declaration it documents.
type Comment struct {
	Root comment.NodeID
	Decl *decl.Node
	Span source.Span
}

// replayer переводит шаги скрипта в вызовы TreeBuilder. Порядок проверяется
// здесь: TreeBuilder паникует на нарушениях, скрипт получает SCR диагностику.
type replayer struct {
	b        *sema.TreeBuilder
	reporter diag.Reporter
	decl     *decl.Node
	out      []Comment
}

// Replay feeds every step of f into b and returns the finished comments.
// A comment left open at the end of the script is finished there.
func Replay(f *script.File, b *sema.TreeBuilder, reporter diag.Reporter) []Comment {
	r := &replayer{b: b, reporter: reporter}
	for i := range f.Units {
		r.unit(&f.Units[i])
	}
	if b.InComment() {
		r.orderErr(f.End, "comment is not finished with 'end'")
		r.finish()
	}
	return r.out
}

func (r *replayer) unit(u *script.Unit) {
	if u.Decl != nil && r.b.InComment() {
		r.orderErr(u.Decl.Span, "declaration header inside an open comment")
		r.finish()
	}
	r.decl = u.Decl
	if u.Decl == nil {
		r.b.Attach(nil)
	} else {
		r.b.Attach(u.Decl)
	}
	for i := range u.Steps {
		r.step(&u.Steps[i])
	}
}

func (r *replayer) orderErr(sp source.Span, msg string) {
	diag.ReportError(r.reporter, diag.ScrActionOrder, sp, msg).Emit()
}

func (r *replayer) finish() {
	root := r.b.FinishComment()
	r.out = append(r.out, Comment{Root: root, Decl: r.decl, Span: r.b.Nodes().Get(root).Span})
}

func (r *replayer) step(s *script.Step) {
	b := r.b
	if s.Op == script.OpComment {
		if b.InComment() {
			r.orderErr(s.Span, "'comment' inside an open comment")
			return
		}
		b.Begin(s.Span)
		return
	}
	if !b.InComment() {
		r.orderErr(s.Span, fmt.Sprintf("'%s' outside of a comment", s.Op))
		return
	}

	switch s.Op {
	case script.OpEnd:
		r.finish()

	case script.OpPara:
		if r.inVerbatim(s) {
			return
		}
		if b.ExplicitParagraph() {
			r.orderErr(s.Span, "'para' while a paragraph is open")
			return
		}
		b.StartParagraph(s.Span)

	case script.OpEndPara:
		if !b.InParagraph() {
			r.orderErr(s.Span, "'endpara' without an open paragraph")
			return
		}
		b.FinishParagraph()

	case script.OpText:
		if r.inVerbatim(s) {
			return
		}
		arg, _ := s.Arg0()
		b.Text(arg.Span, arg.Text)

	case script.OpInline:
		if r.inVerbatim(s) {
			return
		}
		if _, ok := r.lookup(s, commands.KindInline); !ok {
			return
		}
		var arg *comment.Argument
		if a, ok := s.Arg0(); ok {
			arg = &comment.Argument{Text: a.Text, Span: a.Span}
		}
		b.InlineCommand(s.Name.Span, s.Name.Span, s.Name.Text, arg)

	case script.OpUnknown:
		if r.inVerbatim(s) {
			return
		}
		b.UnknownCommand(s.Name.Span, s.Name.Span, s.Name.Text)

	case script.OpHTML:
		if r.inVerbatim(s) {
			return
		}
		tag := b.StartHTMLTag(s.Span, s.Name.Span, s.Name.Text)
		attrs := make([]comment.HTMLAttr, 0, len(s.Attrs))
		for _, a := range s.Attrs {
			attrs = append(attrs, comment.HTMLAttr{
				Name: a.Name.Text, NameSpan: a.Name.Span,
				Value: a.Value.Text, ValueSpan: a.Value.Span,
				HasValue: a.HasValue,
			})
		}
		b.FinishHTMLTag(tag, attrs, s.Span.EndPoint(), s.SelfClosing)

	case script.OpHTMLEnd:
		if r.inVerbatim(s) {
			return
		}
		b.HTMLEndTag(s.Span, s.Name.Span, s.Name.Text)

	case script.OpBlock:
		r.startBlock(s)

	case script.OpParam:
		if info, ok := r.lookup(s, commands.KindBlock); ok {
			if !info.IsParam {
				r.kindErr(s, "a parameter command")
				return
			}
			b.StartParamCommand(s.Span, s.Name.Span, s.Name.Text)
		}

	case script.OpTParam:
		if info, ok := r.lookup(s, commands.KindBlock); ok {
			if !info.IsTParam {
				r.kindErr(s, "a template parameter command")
				return
			}
			b.StartTParamCommand(s.Span, s.Name.Span, s.Name.Text)
		}

	case script.OpDirection:
		open := b.OpenBlock()
		if b.Nodes().Kind(open) != comment.KindParamCommand {
			r.orderErr(s.Span, "'direction' without an open parameter command")
			return
		}
		arg, _ := s.Arg0()
		b.ParamDirection(open, arg.Text, arg.Span)

	case script.OpName:
		arg, _ := s.Arg0()
		switch open := b.OpenBlock(); b.Nodes().Kind(open) {
		case comment.KindParamCommand:
			b.ParamName(open, arg.Text, arg.Span)
		case comment.KindTParamCommand:
			b.TParamName(open, arg.Text, arg.Span)
		default:
			r.orderErr(s.Span, "'name' without an open parameter command")
		}

	case script.OpFinish:
		switch open := b.OpenBlock(); b.Nodes().Kind(open) {
		case comment.KindBlockCommand:
			b.FinishBlockCommand(open, comment.NoNodeID)
		case comment.KindParamCommand:
			b.FinishParamCommand(open, comment.NoNodeID)
		case comment.KindTParamCommand:
			b.FinishTParamCommand(open, comment.NoNodeID)
		default:
			r.orderErr(s.Span, "'finish' without an open block command")
		}

	case script.OpVerbatim:
		if _, ok := r.lookup(s, commands.KindVerbatimBlock); ok {
			b.StartVerbatimBlock(s.Span, s.Name.Span, s.Name.Text)
		}

	case script.OpLine:
		open := b.OpenBlock()
		if b.Nodes().Kind(open) != comment.KindVerbatimBlock {
			r.orderErr(s.Span, "'line' without an open verbatim block")
			return
		}
		arg, _ := s.Arg0()
		b.VerbatimBlockLine(open, arg.Span, arg.Text)

	case script.OpEndVerbatim:
		open := b.OpenBlock()
		vb, ok := b.Nodes().VerbatimBlock(open)
		if !ok {
			r.orderErr(s.Span, "'endverbatim' without an open verbatim block")
			return
		}
		closeName, closeSpan := "", s.Span
		if arg, has := s.Arg0(); has {
			closeName, closeSpan = strings.TrimPrefix(arg.Text, "\\"), arg.Span
		} else if info, found := b.Table().Lookup(b.Nodes().Name(vb.Name)); found {
			closeName = info.EndName
		}
		b.FinishVerbatimBlock(open, closeSpan, closeName)

	case script.OpVerbatimLine:
		if _, ok := r.lookup(s, commands.KindVerbatimLine); ok {
			arg, _ := s.Arg0()
			b.VerbatimLine(s.Span, s.Name.Span, s.Name.Text, arg.Text, arg.Span)
		}
	}
}

func (r *replayer) startBlock(s *script.Step) {
	info, ok := r.lookup(s, commands.KindBlock)
	if !ok {
		return
	}
	if info.IsParam || info.IsTParam {
		r.kindErr(s, "a plain block command")
		return
	}
	cmd := r.b.StartBlockCommand(s.Span, s.Name.Span, s.Name.Text)
	if len(s.Args) == 0 {
		return
	}
	args := make([]comment.Argument, 0, len(s.Args))
	for _, a := range s.Args {
		args = append(args, comment.Argument{Text: a.Text, Span: a.Span})
	}
	r.b.BlockCommandArgs(cmd, args)
}

// lookup проверяет класс команды. Неизвестное имя уходит в TreeBuilder как
// UnknownCommand и диагностируется там.
func (r *replayer) lookup(s *script.Step, kind commands.Kind) (*commands.Info, bool) {
	info, ok := r.b.Table().Lookup(s.Name.Text)
	if !ok {
		r.b.UnknownCommand(s.Name.Span, s.Name.Span, s.Name.Text)
		return nil, false
	}
	if info.Kind != kind {
		r.kindErr(s, fmt.Sprintf("a %s command", kind))
		return nil, false
	}
	return info, true
}

func (r *replayer) kindErr(s *script.Step, want string) {
	got := "unknown"
	if info, ok := r.b.Table().Lookup(s.Name.Text); ok {
		got = info.Kind.String()
	}
	diag.ReportError(r.reporter, diag.ScrCommandKind, s.Name.Span,
		fmt.Sprintf("'%s' needs %s, '\\%s' is a %s command", s.Op, want, s.Name.Text, got)).Emit()
}

func (r *replayer) inVerbatim(s *script.Step) bool {
	if r.b.Nodes().Kind(r.b.OpenBlock()) != comment.KindVerbatimBlock {
		return false
	}
	r.orderErr(s.Span, fmt.Sprintf("'%s' inside a verbatim block; use 'line'", s.Op))
	return true
}
