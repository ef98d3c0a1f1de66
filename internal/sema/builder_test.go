package sema

import (
	"strings"
	"testing"

	"docsema/internal/commands"
	"docsema/internal/comment"
	"docsema/internal/decl"
	"docsema/internal/diag"
	"docsema/internal/source"
)

type fixture struct {
	t     *testing.T
	file  source.FileID
	bag   *diag.Bag
	nodes *comment.Nodes
	b     *TreeBuilder
}

// newFixture backs spans by a virtual file of 20-byte lines, so offset 20
// starts line 2.
func newFixture(t *testing.T, d decl.Decl) *fixture {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.AddVirtual("comment.dact", []byte(strings.Repeat(strings.Repeat("x", 19)+"\n", 20)))
	bag := diag.NewBag(0)
	nodes := comment.NewNodes(0)
	b := NewTreeBuilder(nodes, fs, diag.BagReporter{Bag: bag}, commands.NewRegistry())
	b.Attach(d)
	return &fixture{t: t, file: file, bag: bag, nodes: nodes, b: b}
}

func (f *fixture) sp(start, end uint32) source.Span {
	return source.Span{File: f.file, Start: start, End: end}
}

func (f *fixture) codes() []diag.Code {
	out := make([]diag.Code, 0, f.bag.Len())
	for _, d := range f.bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func (f *fixture) expectCodes(want ...diag.Code) {
	f.t.Helper()
	got := f.codes()
	if len(got) != len(want) {
		f.t.Fatalf("diagnostics = %v, want %v\n%+v", got, want, f.bag.Items())
	}
	for i := range want {
		if got[i] != want[i] {
			f.t.Fatalf("diagnostic %d = %s, want %s", i, got[i].ID(), want[i].ID())
		}
	}
}

// paragraph emits an explicit paragraph holding one text node.
func (f *fixture) paragraph(start uint32, text string) comment.NodeID {
	end := start + uint32(len(text))
	f.b.StartParagraph(f.sp(start, start))
	f.b.Text(f.sp(start, end), text)
	return f.b.FinishParagraph()
}

func (f *fixture) blocks(root comment.NodeID) []comment.NodeID {
	fc, ok := f.nodes.FullComment(root)
	if !ok {
		f.t.Fatalf("node %d is not a FullComment", root)
	}
	return fc.Blocks
}

func function(params ...string) *decl.Node {
	n := &decl.Node{DeclKind: decl.KindFunction, DeclName: "fn"}
	for _, p := range params {
		n.ParamList = append(n.ParamList, decl.Param{Name: p})
	}
	return n
}

func TestDuplicateBriefKeepsBoth(t *testing.T) {
	f := newFixture(t, nil)
	f.b.Begin(f.sp(0, 3))
	first := f.b.StartBlockCommand(f.sp(0, 6), f.sp(1, 6), "brief")
	f.b.FinishBlockCommand(first, f.paragraph(7, "first"))
	second := f.b.StartBlockCommand(f.sp(20, 26), f.sp(21, 26), "short")
	f.b.FinishBlockCommand(second, f.paragraph(27, "second"))
	root := f.b.FinishComment()

	f.expectCodes(diag.DocDuplicateCommand)
	d := f.bag.Items()[0]
	if d.Primary != f.sp(21, 26) {
		t.Fatalf("duplicate reported at %v", d.Primary)
	}
	if len(d.Notes) != 1 || d.Notes[0].Span != f.sp(1, 6) {
		t.Fatalf("expected a note at the first command, got %+v", d.Notes)
	}
	if !strings.Contains(d.Notes[0].Msg, "an alias of") {
		t.Fatalf("alias note expected, got %q", d.Notes[0].Msg)
	}
	blocks := f.blocks(root)
	if len(blocks) != 2 || blocks[0] != first || blocks[1] != second {
		t.Fatalf("root blocks = %v, want [%d %d]", blocks, first, second)
	}
	if f.nodes.PlainText(f.nodes.BlockOf(second).Body) != "second" {
		t.Fatalf("second command lost its body")
	}
}

func TestDuplicateSameNameNote(t *testing.T) {
	f := newFixture(t, function())
	f.b.Begin(f.sp(0, 1))
	for _, at := range []uint32{0, 40} {
		cmd := f.b.StartBlockCommand(f.sp(at, at+8), f.sp(at+1, at+8), "returns")
		f.b.FinishBlockCommand(cmd, f.paragraph(at+9, "value"))
	}
	f.b.FinishComment()

	f.expectCodes(diag.DocDuplicateCommand)
	if note := f.bag.Items()[0].Notes[0].Msg; note != "previous command '\\returns' here" {
		t.Fatalf("note = %q", note)
	}
}

func TestReturnsOnNonCallable(t *testing.T) {
	f := newFixture(t, &decl.Node{DeclKind: decl.KindRecord, DeclName: "S"})
	f.b.Begin(f.sp(0, 1))
	cmd := f.b.StartBlockCommand(f.sp(0, 8), f.sp(1, 8), "returns")
	f.b.FinishBlockCommand(cmd, f.paragraph(9, "the value"))
	root := f.b.FinishComment()

	f.expectCodes(diag.DocNotCallable)
	if len(f.blocks(root)) != 1 {
		t.Fatalf("inapplicable command must stay in the tree")
	}
}

func TestReturnsOnVoidShapes(t *testing.T) {
	tests := []struct {
		kind decl.Kind
		want string
	}{
		{decl.KindFunction, "function returning void"},
		{decl.KindConstructor, "constructor"},
		{decl.KindDestructor, "destructor"},
		{decl.KindMethod, "method returning void"},
	}
	for _, tt := range tests {
		f := newFixture(t, &decl.Node{DeclKind: tt.kind, Void: true})
		f.b.Begin(f.sp(0, 1))
		cmd := f.b.StartBlockCommand(f.sp(0, 7), f.sp(1, 7), "return")
		f.b.FinishBlockCommand(cmd, f.paragraph(8, "nothing"))
		f.b.FinishComment()

		f.expectCodes(diag.DocVoidResult)
		if msg := f.bag.Items()[0].Message; !strings.HasSuffix(msg, "attached to a "+tt.want) {
			t.Errorf("%s: message %q", tt.kind, msg)
		}
	}
}

func TestParamTypoEndToEnd(t *testing.T) {
	f := newFixture(t, function("count"))
	f.b.Begin(f.sp(0, 1))
	pc := f.b.StartParamCommand(f.sp(0, 6), f.sp(1, 6), "param")
	f.b.ParamName(pc, "cnt", f.sp(7, 10))
	body := f.paragraph(11, "element count")
	f.b.FinishParamCommand(pc, body)
	root := f.b.FinishComment()

	f.expectCodes(diag.RefParamNotFound)
	d := f.bag.Items()[0]
	if !strings.Contains(d.Message, "'count'") {
		t.Fatalf("suggestion missing from %q", d.Message)
	}
	if len(d.Fixes) != 1 || d.Fixes[0].Edits[0].NewText != "count" || d.Fixes[0].Edits[0].Span != f.sp(7, 10) {
		t.Fatalf("unexpected fix %+v", d.Fixes)
	}

	p, _ := f.nodes.ParamCommand(pc)
	if p.IsResolved() {
		t.Fatalf("misspelled parameter must stay unresolved")
	}
	if p.Param != "cnt" || p.Direction != comment.DirIn || p.DirectionExplicit {
		t.Fatalf("unexpected param payload %+v", p)
	}
	if got := f.nodes.PlainText(p.Body); got != "element count" {
		t.Fatalf("body = %q", got)
	}
	if blocks := f.blocks(root); len(blocks) != 1 || blocks[0] != pc {
		t.Fatalf("root blocks = %v", blocks)
	}
}

func TestParamResolutionFirstWins(t *testing.T) {
	f := newFixture(t, function("count", "buffer", "flags"))
	f.b.Begin(f.sp(0, 1))
	var cmds []comment.NodeID
	for i, name := range []string{"buffer", "buffer", "coutn", "xyz123"} {
		at := uint32(i * 20)
		pc := f.b.StartParamCommand(f.sp(at, at+6), f.sp(at+1, at+6), "param")
		f.b.ParamName(pc, name, f.sp(at+7, at+7+uint32(len(name))))
		f.b.FinishParamCommand(pc, f.paragraph(at+14, "doc"))
		cmds = append(cmds, pc)
	}
	f.b.FinishComment()

	f.expectCodes(diag.RefParamDuplicate, diag.RefParamNotFound, diag.RefParamNotFound)
	items := f.bag.Items()
	if items[0].Notes[0].Span != f.sp(7, 13) {
		t.Fatalf("duplicate note must point at the first \\param, got %v", items[0].Notes[0].Span)
	}
	if !strings.Contains(items[1].Message, "did you mean 'count'") {
		t.Fatalf("coutn: %q", items[1].Message)
	}
	if strings.Contains(items[2].Message, "did you mean") {
		t.Fatalf("xyz123 must have no suggestion: %q", items[2].Message)
	}
	first, _ := f.nodes.ParamCommand(cmds[0])
	dup, _ := f.nodes.ParamCommand(cmds[1])
	if first.Index != 1 || dup.Index != 1 {
		t.Fatalf("indexes = %d, %d", first.Index, dup.Index)
	}
	if f.b.params[1] != cmds[0] {
		t.Fatalf("first \\param must own the parameter")
	}
}

func TestParamDirection(t *testing.T) {
	tests := []struct {
		arg   string
		want  comment.Direction
		codes []diag.Code
	}{
		{"[in]", comment.DirIn, nil},
		{"[OUT]", comment.DirOut, nil},
		{"[out,in]", comment.DirInOut, nil},
		{"[in, out]", comment.DirInOut, []diag.Code{diag.DocDirectionWhitespace}},
		{"[sideways]", comment.DirIn, []diag.Code{diag.DocInvalidDirection}},
	}
	for _, tt := range tests {
		f := newFixture(t, function("x"))
		f.b.Begin(f.sp(0, 1))
		pc := f.b.StartParamCommand(f.sp(0, 6), f.sp(1, 6), "param")
		f.b.ParamDirection(pc, tt.arg, f.sp(6, 6+uint32(len(tt.arg))))
		f.b.ParamName(pc, "x", f.sp(17, 18))
		f.b.FinishParamCommand(pc, f.paragraph(19, "v"))
		f.b.FinishComment()

		f.expectCodes(tt.codes...)
		p, _ := f.nodes.ParamCommand(pc)
		if p.Direction != tt.want || !p.DirectionExplicit || !p.IsResolved() {
			t.Errorf("%q: direction=%s explicit=%v resolved=%v", tt.arg, p.Direction, p.DirectionExplicit, p.IsResolved())
		}
		if len(tt.codes) == 1 && tt.codes[0] == diag.DocDirectionWhitespace {
			if fix := f.bag.Items()[0].Fixes; len(fix) != 1 || fix[0].Edits[0].NewText != "[in,out]" {
				t.Errorf("whitespace fix = %+v", fix)
			}
		}
	}
}

func TestParamOnNonFunction(t *testing.T) {
	f := newFixture(t, &decl.Node{DeclKind: decl.KindVariable})
	f.b.Begin(f.sp(0, 1))
	pc := f.b.StartParamCommand(f.sp(0, 6), f.sp(1, 6), "param")
	f.b.ParamName(pc, "x", f.sp(7, 8))
	f.b.FinishParamCommand(pc, f.paragraph(9, "doc"))
	f.b.FinishComment()

	// имя не разрешается, второго предупреждения нет
	f.expectCodes(diag.DocNotCallable)
}

func TestParamWithoutDeclaration(t *testing.T) {
	f := newFixture(t, nil)
	f.b.Begin(f.sp(0, 1))
	pc := f.b.StartParamCommand(f.sp(0, 6), f.sp(1, 6), "param")
	f.b.ParamName(pc, "x", f.sp(7, 8))
	f.b.FinishParamCommand(pc, f.paragraph(9, "doc"))
	f.b.FinishComment()
	f.expectCodes()
}

func TestParamMissingNameAndEmptyBody(t *testing.T) {
	f := newFixture(t, function("x"))
	f.b.Begin(f.sp(0, 1))
	pc := f.b.StartParamCommand(f.sp(0, 6), f.sp(1, 6), "param")
	f.b.FinishParamCommand(pc, comment.NoNodeID)
	f.b.FinishComment()
	f.expectCodes(diag.DocEmptyParagraph, diag.RefParamMissingName)
	if got := f.bag.Items()[0].Primary; got != f.sp(6, 6) {
		t.Fatalf("empty paragraph reported at %v, want end of name", got)
	}
}

func TestEmptyParagraphChecks(t *testing.T) {
	f := newFixture(t, nil)
	f.b.Begin(f.sp(0, 1))
	brief := f.b.StartBlockCommand(f.sp(0, 6), f.sp(1, 6), "brief")
	f.b.FinishBlockCommand(brief, f.paragraph(7, "   "))
	dep := f.b.StartBlockCommand(f.sp(20, 31), f.sp(21, 31), "deprecated")
	f.b.FinishBlockCommand(dep, comment.NoNodeID)
	f.b.FinishComment()
	f.expectCodes(diag.DocEmptyParagraph)
}

func TestTParamResolution(t *testing.T) {
	f := newFixture(t, &decl.Node{DeclKind: decl.KindClassTemplate, TParams: nestedTParams()})
	f.b.Begin(f.sp(0, 1))
	var cmds []comment.NodeID
	for i, name := range []string{"V", "T", "T", "Ww"} {
		at := uint32(i * 20)
		tc := f.b.StartTParamCommand(f.sp(at, at+7), f.sp(at+1, at+7), "tparam")
		f.b.TParamName(tc, name, f.sp(at+8, at+8+uint32(len(name))))
		f.b.FinishTParamCommand(tc, f.paragraph(at+11, "doc"))
		cmds = append(cmds, tc)
	}
	f.b.FinishComment()

	f.expectCodes(diag.RefTParamDuplicate, diag.RefTParamNotFound)
	v, _ := f.nodes.TParamCommand(cmds[0])
	if len(v.Position) != 2 || v.Position[0] != 1 || v.Position[1] != 1 {
		t.Fatalf("V position = %v", v.Position)
	}
	if !strings.Contains(f.bag.Items()[1].Message, "did you mean 'W'") {
		t.Fatalf("message = %q", f.bag.Items()[1].Message)
	}
	if ww, _ := f.nodes.TParamCommand(cmds[3]); ww.IsResolved() {
		t.Fatalf("Ww must stay unresolved")
	}
}

func TestTParamOnNonTemplate(t *testing.T) {
	f := newFixture(t, function())
	f.b.Begin(f.sp(0, 1))
	tc := f.b.StartTParamCommand(f.sp(0, 7), f.sp(1, 7), "tparam")
	f.b.TParamName(tc, "T", f.sp(8, 9))
	f.b.FinishTParamCommand(tc, f.paragraph(10, "type"))
	f.b.FinishComment()
	f.expectCodes(diag.DocNotTemplate)
}

func TestUnfinishedConstructsSurvive(t *testing.T) {
	f := newFixture(t, function())
	f.b.Begin(f.sp(0, 1))
	note := f.b.StartBlockCommand(f.sp(0, 5), f.sp(1, 5), "note")
	f.b.StartParagraph(f.sp(6, 6))
	f.b.Text(f.sp(6, 14), "dangling")
	root := f.b.FinishComment()

	f.expectCodes()
	if blocks := f.blocks(root); len(blocks) != 1 || blocks[0] != note {
		t.Fatalf("root blocks = %v", blocks)
	}
	blk := f.nodes.BlockOf(note)
	if !blk.Closed || f.nodes.PlainText(blk.Body) != "dangling" {
		t.Fatalf("open command not closed with its body: %+v", blk)
	}

	f.b.Begin(f.sp(40, 41))
	code := f.b.StartVerbatimBlock(f.sp(40, 45), f.sp(41, 45), "code")
	f.b.VerbatimBlockLine(code, f.sp(60, 65), "x = 1")
	f.b.StartHTMLTag(f.sp(80, 82), f.sp(81, 82), "b")
	f.b.Text(f.sp(83, 87), "bold")
	root = f.b.FinishComment()

	f.expectCodes(diag.DocVerbatimUnterminated, diag.HtmUnclosedTag)
	blocks := f.blocks(root)
	if len(blocks) != 2 || blocks[0] != code || f.nodes.Kind(blocks[1]) != comment.KindParagraph {
		t.Fatalf("root blocks = %v", blocks)
	}
	vb, _ := f.nodes.VerbatimBlock(code)
	if len(vb.Lines) != 1 || vb.CloseName != source.NoStringID {
		t.Fatalf("verbatim block = %+v", vb)
	}
	para, _ := f.nodes.Paragraph(blocks[1])
	st, ok := f.nodes.HTMLStartTag(para.Children[0])
	if !ok || !st.Finished || !st.Malformed {
		t.Fatalf("start tag = %+v", st)
	}
}

func TestBlockStartClosesPrevious(t *testing.T) {
	f := newFixture(t, nil)
	f.b.Begin(f.sp(0, 1))
	intro := f.paragraph(0, "intro")
	first := f.b.StartBlockCommand(f.sp(20, 25), f.sp(21, 25), "note")
	body := f.paragraph(26, "one")
	extra := f.paragraph(40, "two")
	second := f.b.StartBlockCommand(f.sp(60, 66), f.sp(61, 66), "since")
	f.b.FinishBlockCommand(second, f.paragraph(67, "1.0"))
	root := f.b.FinishComment()

	want := []comment.NodeID{intro, first, extra, second}
	got := f.blocks(root)
	if len(got) != len(want) {
		t.Fatalf("root blocks = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("root blocks = %v, want %v", got, want)
		}
	}
	if f.nodes.BlockOf(first).Body != body {
		t.Fatalf("first paragraph after the command must be its body")
	}
}

func TestHTMLTagMatching(t *testing.T) {
	f := newFixture(t, nil)
	f.b.Begin(f.sp(0, 1))
	f.b.StartParagraph(f.sp(0, 0))
	for _, tag := range []struct {
		name string
		at   uint32
	}{{"b", 0}, {"i", 3}, {"li", 6}, {"br", 10}} {
		id := f.b.StartHTMLTag(f.sp(tag.at, tag.at+2), f.sp(tag.at+1, tag.at+2), tag.name)
		f.b.FinishHTMLTag(id, nil, f.sp(tag.at+2, tag.at+3), false)
	}
	f.b.HTMLEndTag(f.sp(20, 24), f.sp(22, 23), "B")
	f.b.HTMLEndTag(f.sp(25, 30), f.sp(27, 29), "br")
	f.b.HTMLEndTag(f.sp(31, 35), f.sp(33, 34), "u")
	f.b.FinishParagraph()
	f.b.FinishComment()

	f.expectCodes(diag.HtmStartEndMismatch, diag.HtmEndForbidden, diag.HtmEndUnbalanced)
	mismatch := f.bag.Items()[0]
	if !strings.Contains(mismatch.Message, "'<i>'") {
		t.Fatalf("mismatch message = %q", mismatch.Message)
	}
	if len(mismatch.Notes) != 1 || mismatch.Notes[0].Span != f.sp(20, 24) {
		t.Fatalf("end tag on another line needs a note: %+v", mismatch.Notes)
	}
}

func TestHTMLMismatchSameLineHasNoNote(t *testing.T) {
	f := newFixture(t, nil)
	f.b.Begin(f.sp(0, 1))
	b := f.b.StartHTMLTag(f.sp(0, 2), f.sp(1, 2), "b")
	f.b.FinishHTMLTag(b, nil, f.sp(2, 3), false)
	i := f.b.StartHTMLTag(f.sp(3, 5), f.sp(4, 5), "i")
	f.b.FinishHTMLTag(i, []comment.HTMLAttr{{Name: "class", Value: "x", HasValue: true}}, f.sp(5, 6), false)
	f.b.HTMLEndTag(f.sp(7, 11), f.sp(9, 10), "b")
	f.b.FinishComment()

	f.expectCodes(diag.HtmStartEndMismatch)
	if len(f.bag.Items()[0].Notes) != 0 {
		t.Fatalf("same-line mismatch must not carry a note")
	}
	st, _ := f.nodes.HTMLStartTag(i)
	if st.AttrCount != 1 || !st.Malformed {
		t.Fatalf("start tag = %+v", st)
	}
}

func TestUnclosedTagsAtFinish(t *testing.T) {
	f := newFixture(t, nil)
	f.b.Begin(f.sp(0, 1))
	for i, name := range []string{"em", "p", "img", "code"} {
		at := uint32(i * 5)
		id := f.b.StartHTMLTag(f.sp(at, at+3), f.sp(at+1, at+3), name)
		f.b.FinishHTMLTag(id, nil, f.sp(at+3, at+4), name == "code")
	}
	f.b.FinishComment()

	// p необязателен, img пустой, code самозакрывающийся
	f.expectCodes(diag.HtmUnclosedTag)
	if !strings.Contains(f.bag.Items()[0].Message, "'<em>'") {
		t.Fatalf("message = %q", f.bag.Items()[0].Message)
	}
}

func TestInlineAndUnknownCommands(t *testing.T) {
	f := newFixture(t, nil)
	f.b.Begin(f.sp(0, 1))
	c := f.b.InlineCommand(f.sp(0, 2), f.sp(1, 2), "c", &comment.Argument{Text: "nil", Span: f.sp(3, 6)})
	em := f.b.InlineCommand(f.sp(7, 10), f.sp(8, 10), "em", nil)
	unk := f.b.UnknownCommand(f.sp(11, 16), f.sp(12, 16), "brif")
	viaInline := f.b.InlineCommand(f.sp(17, 19), f.sp(18, 19), "zq", nil)
	root := f.b.FinishComment()

	f.expectCodes(diag.DocInlineMissingArg, diag.DocUnknownCommand, diag.DocUnknownCommand)
	if !strings.Contains(f.bag.Items()[1].Message, "did you mean 'brief'") {
		t.Fatalf("unknown command message = %q", f.bag.Items()[1].Message)
	}
	ic, _ := f.nodes.InlineCommand(c)
	args := f.nodes.CollectArgs(ic.ArgStart, ic.ArgCount)
	if ic.Render != comment.RenderMonospaced || len(args) != 1 || args[0].Text != "nil" {
		t.Fatalf("inline \\c = %+v %+v", ic, args)
	}
	if f.b.RenderKind("em") != comment.RenderEmphasized || f.b.RenderKind("b") != comment.RenderBold || f.b.RenderKind("brief") != comment.RenderNormal {
		t.Fatalf("RenderKind lookup broken")
	}
	if f.nodes.Kind(unk) != comment.KindUnknownCommand || f.nodes.Kind(viaInline) != comment.KindUnknownCommand {
		t.Fatalf("unknown names must become UnknownCommand nodes")
	}

	// всё inline-содержимое попадает в один неявный абзац
	blocks := f.blocks(root)
	para, ok := f.nodes.Paragraph(blocks[0])
	if len(blocks) != 1 || !ok || len(para.Children) != 4 || para.Children[1] != em {
		t.Fatalf("implicit paragraph = %+v", para)
	}
}

func TestVerbatimBlocks(t *testing.T) {
	f := newFixture(t, nil)
	f.b.Begin(f.sp(0, 1))
	good := f.b.StartVerbatimBlock(f.sp(0, 5), f.sp(1, 5), "code")
	f.b.VerbatimBlockLine(good, f.sp(20, 25), "int x;")
	f.b.FinishVerbatimBlock(good, f.sp(40, 48), "endcode")
	bad := f.b.StartVerbatimBlock(f.sp(60, 69), f.sp(61, 69), "verbatim")
	f.b.FinishVerbatimBlock(bad, f.sp(80, 88), "endcode")
	line := f.b.VerbatimLine(f.sp(100, 103), f.sp(101, 103), "fn", "void f(int)", f.sp(104, 115))
	root := f.b.FinishComment()

	f.expectCodes(diag.DocVerbatimCloseMismatch)
	d := f.bag.Items()[0]
	if len(d.Fixes) != 1 || d.Fixes[0].Edits[0].NewText != "\\endverbatim" {
		t.Fatalf("close fix = %+v", d.Fixes)
	}
	vb, _ := f.nodes.VerbatimBlock(good)
	if f.nodes.Name(vb.CloseName) != "endcode" || !vb.Closed {
		t.Fatalf("verbatim = %+v", vb)
	}
	vl, _ := f.nodes.VerbatimLine(line)
	if vl.Text != "void f(int)" {
		t.Fatalf("verbatim line = %+v", vl)
	}
	if blocks := f.blocks(root); len(blocks) != 3 {
		t.Fatalf("root blocks = %v", blocks)
	}
}

func TestBlockCommandArgs(t *testing.T) {
	f := newFixture(t, nil)
	f.b.Begin(f.sp(0, 1))
	thr := f.b.StartBlockCommand(f.sp(0, 7), f.sp(1, 7), "throws")
	f.b.BlockCommandArgs(thr, []comment.Argument{{Text: "Error", Span: f.sp(8, 13)}})
	f.b.FinishBlockCommand(thr, f.paragraph(14, "on failure"))
	retval := f.b.StartBlockCommand(f.sp(20, 27), f.sp(21, 27), "retval")
	f.b.FinishBlockCommand(retval, f.paragraph(28, "zero"))
	f.b.FinishComment()

	f.expectCodes(diag.DocBlockMissingArgs)
	if f.nodes.Get(thr).Span.End != 24 {
		t.Fatalf("command span must cover its body, got %v", f.nodes.Get(thr).Span)
	}
}

func TestCommentLifecycle(t *testing.T) {
	f := newFixture(t, function("a"))
	expectPanic(t, "action outside comment", func() { f.b.Text(f.sp(0, 1), "x") })

	f.b.Begin(f.sp(0, 1))
	expectPanic(t, "nested Begin", func() { f.b.Begin(f.sp(0, 1)) })
	expectPanic(t, "finish without paragraph", func() { f.b.FinishParagraph() })
	cmd := f.b.StartBlockCommand(f.sp(0, 5), f.sp(1, 5), "note")
	expectPanic(t, "wrong handle", func() { f.b.FinishBlockCommand(cmd+100, comment.NoNodeID) })
	expectPanic(t, "block via wrong action", func() { f.b.StartBlockCommand(f.sp(0, 6), f.sp(1, 6), "param") })
	f.b.FinishBlockCommand(cmd, f.paragraph(6, "text"))
	first := f.b.FinishComment()

	// состояние не переживает комментарий
	f.b.Begin(f.sp(20, 21))
	pc := f.b.StartParamCommand(f.sp(20, 26), f.sp(21, 26), "param")
	f.b.ParamName(pc, "a", f.sp(27, 28))
	f.b.FinishParamCommand(pc, f.paragraph(29, "doc"))
	second := f.b.FinishComment()

	f.expectCodes()
	if first == second || f.b.InComment() {
		t.Fatalf("each comment gets its own root")
	}
}

func expectPanic(t *testing.T, what string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", what)
		}
	}()
	fn()
}
