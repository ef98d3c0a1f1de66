package sema

import (
	"fmt"
	"strings"
	"unicode"

	"docsema/internal/commands"
	"docsema/internal/comment"
	"docsema/internal/decl"
	"docsema/internal/diag"
	"docsema/internal/source"
)

// StartBlockCommand opens a block command (\brief, \returns, \note ...).
func (b *TreeBuilder) StartBlockCommand(span, nameSpan source.Span, name string) comment.NodeID {
	b.requireOpen("StartBlockCommand")
	info := b.lookup(name, commands.KindBlock)
	if info.IsParam || info.IsTParam {
		panic(fmt.Sprintf("sema: %q must be started as a parameter command", name))
	}
	b.beginBlockContent()
	id := b.nodes.NewBlockCommand(span, nameSpan, b.nodes.Strings.Intern(name))
	b.openBlock(id)
	return id
}

// BlockCommandArgs attaches the word arguments of the open block command.
func (b *TreeBuilder) BlockCommandArgs(cmd comment.NodeID, args []comment.Argument) {
	b.requireBlock(cmd, "BlockCommandArgs")
	blk := b.nodes.BlockOf(cmd)
	blk.ArgStart, blk.ArgCount = b.nodes.CopyArgs(args)
	node := b.nodes.Get(cmd)
	for _, a := range args {
		node.Span = node.Span.Cover(a.Span)
	}
}

// FinishBlockCommand closes cmd. para is the paragraph returned by
// FinishParagraph for its body, or NoNodeID to take the paragraph finished
// since the command started, if any.
func (b *TreeBuilder) FinishBlockCommand(cmd comment.NodeID, para comment.NodeID) {
	b.requireBlock(cmd, "FinishBlockCommand")
	b.finishBlockLike(cmd, para)
}

// StartParamCommand opens a \param command.
func (b *TreeBuilder) StartParamCommand(span, nameSpan source.Span, name string) comment.NodeID {
	b.requireOpen("StartParamCommand")
	info := b.lookup(name, commands.KindBlock)
	if !info.IsParam {
		panic(fmt.Sprintf("sema: %q is not a param command", name))
	}
	b.beginBlockContent()
	id := b.nodes.NewParamCommand(span, nameSpan, b.nodes.Strings.Intern(name))
	b.openBlock(id)
	b.checkApplicable(info, id)
	return id
}

// ParamDirection records an explicit passing direction such as "[in,out]".
func (b *TreeBuilder) ParamDirection(cmd comment.NodeID, arg string, span source.Span) {
	b.requireBlock(cmd, "ParamDirection")
	pc, ok := b.nodes.ParamCommand(cmd)
	if !ok {
		panic("sema: ParamDirection on a non-param command")
	}
	dir, ok := parseDirection(strings.ToLower(arg))
	if !ok {
		squeezed := strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, strings.ToLower(arg))
		if dir, ok = parseDirection(squeezed); ok {
			diag.ReportWarning(b.reporter, diag.DocDirectionWhitespace, span,
				"whitespace is not allowed in parameter passing direction").
				WithFix("remove whitespace", diag.FixEdit{Span: span, NewText: dir.String()}).
				Emit()
		} else {
			diag.ReportWarning(b.reporter, diag.DocInvalidDirection, span,
				fmt.Sprintf("unrecognized parameter passing direction %q, valid directions are '[in]', '[out]' and '[in,out]'", arg)).
				Emit()
			dir = comment.DirIn
		}
	}
	pc.Direction = dir
	pc.DirectionExplicit = true
	pc.DirectionSpan = span
	b.extend(cmd, span)
}

func parseDirection(s string) (comment.Direction, bool) {
	switch s {
	case "[in]":
		return comment.DirIn, true
	case "[out]":
		return comment.DirOut, true
	case "[in,out]", "[out,in]":
		return comment.DirInOut, true
	}
	return comment.DirIn, false
}

// ParamName records and resolves the parameter name argument.
func (b *TreeBuilder) ParamName(cmd comment.NodeID, arg string, span source.Span) {
	b.requireBlock(cmd, "ParamName")
	pc, ok := b.nodes.ParamCommand(cmd)
	if !ok {
		panic("sema: ParamName on a non-param command")
	}
	pc.Param, pc.ParamSpan, pc.HasParam = arg, span, true
	b.extend(cmd, span)

	if !b.probe.Attached() || !b.probe.IsCallable() {
		return
	}
	params := b.probe.Parameters()
	if idx, found := ResolveParam(arg, params); found {
		pc.Index = idx
		if prev, dup := b.params[idx]; dup {
			prevPC, _ := b.nodes.ParamCommand(prev)
			diag.ReportWarning(b.reporter, diag.RefParamDuplicate, span,
				fmt.Sprintf("parameter '%s' is already documented", arg)).
				WithNote(prevPC.ParamSpan, "previous documentation").
				Emit()
			return
		}
		b.params[idx] = cmd
		return
	}

	fix, hasFix := SuggestParam(arg, params)
	b.reportNotFound(diag.RefParamNotFound, span, arg, fix, hasFix,
		fmt.Sprintf("parameter '%s' not found in the function declaration", arg))
}

// FinishParamCommand closes a \param command.
func (b *TreeBuilder) FinishParamCommand(cmd comment.NodeID, para comment.NodeID) {
	b.requireBlock(cmd, "FinishParamCommand")
	b.finishBlockLike(cmd, para)
}

// StartTParamCommand opens a \tparam command.
func (b *TreeBuilder) StartTParamCommand(span, nameSpan source.Span, name string) comment.NodeID {
	b.requireOpen("StartTParamCommand")
	info := b.lookup(name, commands.KindBlock)
	if !info.IsTParam {
		panic(fmt.Sprintf("sema: %q is not a tparam command", name))
	}
	b.beginBlockContent()
	id := b.nodes.NewTParamCommand(span, nameSpan, b.nodes.Strings.Intern(name))
	b.openBlock(id)
	b.checkApplicable(info, id)
	return id
}

// TParamName records and resolves the template parameter name argument.
func (b *TreeBuilder) TParamName(cmd comment.NodeID, arg string, span source.Span) {
	b.requireBlock(cmd, "TParamName")
	tc, ok := b.nodes.TParamCommand(cmd)
	if !ok {
		panic("sema: TParamName on a non-tparam command")
	}
	tc.Param, tc.ParamSpan, tc.HasParam = arg, span, true
	b.extend(cmd, span)

	if !b.probe.Attached() || !b.probe.IsTemplateOrSpecialization() {
		return
	}
	tparams := b.probe.TemplateParameters()
	if path, found := ResolveTParam(arg, tparams); found {
		tc.Position = path
		key := pathKey(path)
		if prev, dup := b.tparams[key]; dup {
			prevTC, _ := b.nodes.TParamCommand(prev)
			diag.ReportWarning(b.reporter, diag.RefTParamDuplicate, span,
				fmt.Sprintf("template parameter '%s' is already documented", arg)).
				WithNote(prevTC.ParamSpan, "previous documentation").
				Emit()
			return
		}
		b.tparams[key] = cmd
		return
	}

	fix, hasFix := SuggestTParam(arg, tparams)
	b.reportNotFound(diag.RefTParamNotFound, span, arg, fix, hasFix,
		fmt.Sprintf("template parameter '%s' not found in the template declaration", arg))
}

// reportNotFound emits an unresolved reference, with the suggested name in
// the message and as a fix when there is one.
func (b *TreeBuilder) reportNotFound(code diag.Code, span source.Span, arg, fix string, hasFix bool, msg string) {
	if !hasFix {
		diag.ReportWarning(b.reporter, code, span, msg).Emit()
		return
	}
	diag.ReportWarning(b.reporter, code, span, fmt.Sprintf("%s; did you mean '%s'?", msg, fix)).
		WithFix(fmt.Sprintf("replace '%s' with '%s'", arg, fix), diag.FixEdit{Span: span, NewText: fix}).
		Emit()
}

// FinishTParamCommand closes a \tparam command.
func (b *TreeBuilder) FinishTParamCommand(cmd comment.NodeID, para comment.NodeID) {
	b.requireBlock(cmd, "FinishTParamCommand")
	b.finishBlockLike(cmd, para)
}

func pathKey(path []uint32) string {
	var sb strings.Builder
	for i, p := range path {
		if i > 0 {
			sb.WriteByte('.')
		}
		fmt.Fprintf(&sb, "%d", p)
	}
	return sb.String()
}

func (b *TreeBuilder) openBlock(id comment.NodeID) {
	b.blocks = append(b.blocks, id)
	b.block = id
	b.body = comment.NoNodeID
}

func (b *TreeBuilder) requireBlock(cmd comment.NodeID, action string) {
	b.requireOpen(action)
	if !cmd.IsValid() || cmd != b.block {
		panic(fmt.Sprintf("sema: %s on command %d, open command is %d", action, cmd, b.block))
	}
}

func (b *TreeBuilder) extend(id comment.NodeID, span source.Span) {
	node := b.nodes.Get(id)
	node.Span = node.Span.Cover(span)
}

// finishBlockLike attaches the body and runs the closing checks.
func (b *TreeBuilder) finishBlockLike(cmd comment.NodeID, para comment.NodeID) {
	b.closeParagraph()
	body := b.body
	if para.IsValid() && para != body {
		panic(fmt.Sprintf("sema: paragraph %d is not the body of command %d", para, cmd))
	}
	b.block, b.body = comment.NoNodeID, comment.NoNodeID

	blk := b.nodes.BlockOf(cmd)
	blk.Body = body
	blk.Closed = true
	if body.IsValid() {
		b.extend(cmd, b.nodes.Get(body).Span)
	}

	name := b.nodes.Name(blk.Name)
	info, _ := b.table.Lookup(name)

	if !info.EmptyAllowed && !CheckNonEmptyBody(b.nodes, cmd) {
		diag.ReportWarning(b.reporter, diag.DocEmptyParagraph, b.argsEnd(cmd),
			fmt.Sprintf("empty paragraph passed to '\\%s' command", name)).Emit()
	}
	b.checkDuplicate(info, cmd)

	switch kind := b.nodes.Kind(cmd); kind {
	case comment.KindParamCommand:
		if pc, _ := b.nodes.ParamCommand(cmd); !pc.HasParam {
			diag.ReportWarning(b.reporter, diag.RefParamMissingName, blk.NameSpan,
				fmt.Sprintf("'\\%s' command has no parameter name", name)).Emit()
		}
	case comment.KindTParamCommand:
		if tc, _ := b.nodes.TParamCommand(cmd); !tc.HasParam {
			diag.ReportWarning(b.reporter, diag.RefTParamMissingName, blk.NameSpan,
				fmt.Sprintf("'\\%s' command has no template parameter name", name)).Emit()
		}
	default:
		if n := int(blk.ArgCount); n < info.NumArgs {
			diag.ReportWarning(b.reporter, diag.DocBlockMissingArgs, blk.NameSpan,
				fmt.Sprintf("'\\%s' command expects %d argument(s), got %d", name, info.NumArgs, n)).Emit()
		}
		b.checkApplicable(info, cmd)
	}
}

// argsEnd is where an empty-body warning points: after the last argument,
// or after the command name.
func (b *TreeBuilder) argsEnd(cmd comment.NodeID) source.Span {
	if pc, ok := b.nodes.ParamCommand(cmd); ok && pc.HasParam {
		return pc.ParamSpan.EndPoint()
	}
	if tc, ok := b.nodes.TParamCommand(cmd); ok && tc.HasParam {
		return tc.ParamSpan.EndPoint()
	}
	blk := b.nodes.BlockOf(cmd)
	if args := b.nodes.CollectArgs(blk.ArgStart, blk.ArgCount); len(args) > 0 {
		return args[len(args)-1].Span.EndPoint()
	}
	return blk.NameSpan.EndPoint()
}

func (b *TreeBuilder) checkDuplicate(info *commands.Info, cmd comment.NodeID) {
	prev, dup := b.validator.CheckDuplicateSingleton(info, cmd)
	if !dup {
		return
	}
	cur := b.nodes.BlockOf(cmd)
	old := b.nodes.BlockOf(prev)
	name, prevName := b.nodes.Name(cur.Name), b.nodes.Name(old.Name)
	note := fmt.Sprintf("previous command '\\%s' here", prevName)
	if name != prevName {
		note = fmt.Sprintf("previous command '\\%s' (an alias of '\\%s') here", prevName, name)
	}
	diag.ReportWarning(b.reporter, diag.DocDuplicateCommand, cur.NameSpan,
		fmt.Sprintf("duplicated command '\\%s'", name)).
		WithNote(old.NameSpan, note).
		Emit()
}

func (b *TreeBuilder) checkApplicable(info *commands.Info, cmd comment.NodeID) {
	blk := b.nodes.BlockOf(cmd)
	name := b.nodes.Name(blk.Name)
	span := b.nodes.Get(cmd).Span
	switch CheckApplicable(info, &b.probe) {
	case NotCallable:
		diag.ReportWarning(b.reporter, diag.DocNotCallable, span,
			fmt.Sprintf("'\\%s' command used in a comment that is not attached to a function declaration", name)).Emit()
	case NotTemplate:
		diag.ReportWarning(b.reporter, diag.DocNotTemplate, span,
			fmt.Sprintf("'\\%s' command used in a comment that is not attached to a template declaration", name)).Emit()
	case VoidResult:
		diag.ReportWarning(b.reporter, diag.DocVoidResult, span,
			fmt.Sprintf("'\\%s' command used in a comment that is attached to a %s", name, b.voidShape())).Emit()
	}
}

func (b *TreeBuilder) voidShape() string {
	switch b.probe.Kind() {
	case decl.KindConstructor:
		return "constructor"
	case decl.KindDestructor:
		return "destructor"
	case decl.KindMethod:
		return "method returning void"
	}
	return "function returning void"
}
