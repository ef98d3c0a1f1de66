package script

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"docsema/internal/decl"
	"docsema/internal/diag"
	"docsema/internal/source"
)

type Options struct {
	Reporter  diag.Reporter
	MaxErrors uint // 0 = без ограничения
}

// Parser holds the state for one script file.
type Parser struct {
	lx     *Lexer
	file   *source.File
	opts   Options
	errors uint
	out    *File
}

// Parse reads a whole action script. Malformed lines are reported and
// skipped; the result always holds what could be parsed.
func Parse(file *source.File, opts Options) *File {
	p := &Parser{file: file, opts: opts, out: &File{Source: file}}
	p.lx = NewLexer(file, &countingReporter{next: opts.Reporter, count: &p.errors})
	p.parseLines()
	return p.out
}

// countingReporter считает ошибки лексера вместе с ошибками парсера.
type countingReporter struct {
	next  diag.Reporter
	count *uint
}

func (r *countingReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note, fixes []diag.Fix) {
	if sev == diag.SevError && r.count != nil {
		*r.count++
	}
	if r.next != nil {
		r.next.Report(code, sev, primary, msg, notes, fixes)
	}
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (p *Parser) Enough() bool {
	return p.opts.MaxErrors != 0 && p.errors >= p.opts.MaxErrors
}

func (p *Parser) parseLines() {
	for {
		line, eof := p.readLine()
		if len(line) > 0 && !p.Enough() {
			p.parseLine(line)
		}
		if eof {
			end := u32(len(p.file.Content))
			p.out.End = source.Span{File: p.file.ID, Start: end, End: end}
			return
		}
	}
}

// readLine собирает токены до перевода строки. Строки с Invalid токенами
// уже диагностированы лексером и отбрасываются целиком.
func (p *Parser) readLine() ([]Token, bool) {
	var line []Token
	bad := false
	for {
		tok := p.lx.Next()
		switch tok.Kind {
		case EOF:
			if bad {
				return nil, true
			}
			return line, true
		case Newline:
			if bad {
				return nil, false
			}
			return line, false
		case Invalid:
			bad = true
		default:
			line = append(line, tok)
		}
	}
}

func (p *Parser) err(code diag.Code, sp source.Span, msg string) {
	p.errors++
	diag.ReportError(p.opts.Reporter, code, sp, msg).Emit()
}

func lineSpan(line []Token) source.Span {
	return line[0].Span.Cover(line[len(line)-1].Span)
}

func (p *Parser) unit() *Unit {
	if len(p.out.Units) == 0 {
		p.out.Units = append(p.out.Units, Unit{})
	}
	return &p.out.Units[len(p.out.Units)-1]
}

func (p *Parser) parseLine(line []Token) {
	head := line[0]
	if head.Kind != Word {
		p.err(diag.ScrUnexpectedToken, head.Span, fmt.Sprintf("expected an action, got %s", head.Kind))
		return
	}
	if head.Text == "decl" {
		if d, ok := p.parseDecl(line); ok {
			p.out.Units = append(p.out.Units, Unit{Decl: d})
		}
		return
	}
	op, ok := LookupOp(head.Text)
	if !ok {
		p.err(diag.ScrUnknownAction, head.Span, fmt.Sprintf("unknown action '%s'", head.Text))
		return
	}
	step := Step{Op: op, Span: lineSpan(line)}
	if !p.parseStep(&step, head, line[1:]) {
		return
	}
	u := p.unit()
	u.Steps = append(u.Steps, step)
}

// parseStep раскладывает аргументы по форме действия.
func (p *Parser) parseStep(step *Step, head Token, rest []Token) bool {
	switch step.Op {
	case OpComment, OpPara, OpEndPara, OpFinish, OpEnd:
		return p.expectArgs(head, rest, 0, 0, step)

	case OpText, OpDirection, OpName, OpLine:
		return p.expectArgs(head, rest, 1, 1, step)

	case OpEndVerbatim:
		return p.expectArgs(head, rest, 0, 1, step)

	case OpParam, OpTParam:
		// имя команды можно опустить: `param` значит \param
		if len(rest) == 0 {
			step.Name = Arg{Text: head.Text, Span: head.Span}
			return true
		}
		return p.takeName(step, head, rest) && p.expectArgs(head, rest[1:], 0, 0, step)

	case OpUnknown, OpHTMLEnd, OpVerbatim:
		return p.takeName(step, head, rest) && p.expectArgs(head, rest[1:], 0, 0, step)

	case OpInline:
		return p.takeName(step, head, rest) && p.expectArgs(head, rest[1:], 0, 1, step)

	case OpVerbatimLine:
		return p.takeName(step, head, rest) && p.expectArgs(head, rest[1:], 1, 1, step)

	case OpBlock:
		return p.takeName(step, head, rest) && p.expectArgs(head, rest[1:], 0, -1, step)

	case OpHTML:
		return p.takeName(step, head, rest) && p.parseAttrs(step, rest[1:])
	}
	return false
}

func (p *Parser) takeName(step *Step, head Token, rest []Token) bool {
	if len(rest) == 0 {
		p.err(diag.ScrMissingArgument, head.Span, fmt.Sprintf("'%s' needs a name", head.Text))
		return false
	}
	if rest[0].Kind != Word {
		p.err(diag.ScrUnexpectedToken, rest[0].Span, fmt.Sprintf("expected a name after '%s', got %s", head.Text, rest[0].Kind))
		return false
	}
	name := Arg{Text: rest[0].Text, Span: rest[0].Span}
	// `block \brief` и `block brief` равнозначны
	if len(name.Text) > 1 && name.Text[0] == '\\' {
		name.Text = name.Text[1:]
		name.Span.Start++
	}
	step.Name = name
	return true
}

// expectArgs принимает от lo до hi аргументов (hi < 0: без ограничения).
func (p *Parser) expectArgs(head Token, rest []Token, lo, hi int, step *Step) bool {
	for _, tok := range rest {
		if !tok.IsArg() {
			p.err(diag.ScrUnexpectedToken, tok.Span, fmt.Sprintf("unexpected %s in '%s'", tok.Kind, head.Text))
			return false
		}
	}
	if len(rest) < lo {
		p.err(diag.ScrMissingArgument, head.Span, fmt.Sprintf("'%s' expects %d argument(s)", head.Text, lo))
		return false
	}
	if hi >= 0 && len(rest) > hi {
		p.err(diag.ScrUnexpectedToken, rest[hi].Span, fmt.Sprintf("too many arguments for '%s'", head.Text))
		return false
	}
	for _, tok := range rest {
		step.Args = append(step.Args, Arg{Text: tok.Arg(), Span: tok.Span})
	}
	return true
}

// parseAttrs: name[=value]... [/]
func (p *Parser) parseAttrs(step *Step, rest []Token) bool {
	for i := 0; i < len(rest); i++ {
		tok := rest[i]
		if tok.Kind == Word && tok.Text == "/" && i == len(rest)-1 {
			step.SelfClosing = true
			return true
		}
		if tok.Kind != Word {
			p.err(diag.ScrUnexpectedToken, tok.Span, fmt.Sprintf("expected an attribute name, got %s", tok.Kind))
			return false
		}
		attr := Attr{Name: Arg{Text: tok.Text, Span: tok.Span}}
		if i+1 < len(rest) && rest[i+1].Kind == Assign {
			if i+2 >= len(rest) || !rest[i+2].IsArg() {
				p.err(diag.ScrMissingArgument, rest[i+1].Span, fmt.Sprintf("attribute '%s' has no value", tok.Text))
				return false
			}
			val := rest[i+2]
			attr.Value = Arg{Text: val.Arg(), Span: val.Span}
			attr.HasValue = true
			i += 2
		}
		step.Attrs = append(step.Attrs, attr)
	}
	return true
}

// parseDecl: decl <kind> [name=..] [params=..] [tparams=..] [returns=..] [functype=..]
func (p *Parser) parseDecl(line []Token) (*decl.Node, bool) {
	head := line[0]
	if len(line) < 2 || line[1].Kind != Word {
		p.err(diag.ScrBadDecl, head.Span, "'decl' needs a declaration kind")
		return nil, false
	}
	kind, err := decl.ParseKind(line[1].Text)
	if err != nil {
		p.err(diag.ScrBadDecl, line[1].Span, fmt.Sprintf("%v; known kinds: %s", err, strings.Join(decl.KindNames(), ", ")))
		return nil, false
	}
	d := &decl.Node{DeclKind: kind, Span: lineSpan(line)}

	rest := line[2:]
	for len(rest) > 0 {
		if len(rest) < 3 || rest[0].Kind != Word || rest[1].Kind != Assign || !rest[2].IsArg() {
			p.err(diag.ScrBadDecl, rest[0].Span, "expected key=value in declaration header")
			return nil, false
		}
		key, val := rest[0], rest[2]
		rest = rest[3:]
		switch key.Text {
		case "name":
			d.DeclName = val.Arg()
		case "params":
			d.ParamList = splitParams(val)
		case "tparams":
			list, perr := parseTParams(val)
			if perr != nil {
				p.err(diag.ScrBadDecl, val.Span, perr.Error())
				return nil, false
			}
			d.TParams = list
		case "returns":
			d.Void = val.Arg() == "void"
		case "functype":
			switch strings.ToLower(val.Arg()) {
			case "true", "yes", "1":
				d.FuncType = true
			case "false", "no", "0":
				d.FuncType = false
			default:
				p.err(diag.ScrBadDecl, val.Span, fmt.Sprintf("functype expects true or false, got '%s'", val.Arg()))
				return nil, false
			}
		default:
			p.err(diag.ScrBadDecl, key.Span, fmt.Sprintf("unknown declaration attribute '%s'", key.Text))
			return nil, false
		}
	}
	return d, true
}

// subSpan указывает внутрь слова; для строк в кавычках смещения после
// escape не совпадают с исходником, поэтому берётся весь токен.
func subSpan(tok Token, start, end int) source.Span {
	if tok.Kind != Word {
		return tok.Span
	}
	return source.Span{File: tok.Span.File, Start: tok.Span.Start + u32(start), End: tok.Span.Start + u32(end)}
}

func u32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("script offset overflow: %w", err))
	}
	return v
}

func splitParams(tok Token) []decl.Param {
	text := tok.Arg()
	if text == "" {
		return nil
	}
	var out []decl.Param
	off := 0
	for _, part := range strings.Split(text, ",") {
		trimmed := strings.TrimSpace(part)
		lead := strings.Index(part, trimmed)
		out = append(out, decl.Param{
			Name: trimmed,
			Span: subSpan(tok, off+lead, off+lead+len(trimmed)),
		})
		off += len(part) + 1
	}
	return out
}

// tparamReader разбирает список вида T,C<U,V>,N:int.
type tparamReader struct {
	tok  Token
	text string
	pos  int
}

func parseTParams(tok Token) (*decl.TemplateParamList, error) {
	r := &tparamReader{tok: tok, text: tok.Arg()}
	if strings.TrimSpace(r.text) == "" {
		return &decl.TemplateParamList{}, nil
	}
	list, err := r.list()
	if err != nil {
		return nil, err
	}
	if r.pos != len(r.text) {
		return nil, fmt.Errorf("unexpected '%c' in template parameter list", r.text[r.pos])
	}
	return list, nil
}

func (r *tparamReader) list() (*decl.TemplateParamList, error) {
	list := &decl.TemplateParamList{}
	for {
		tp, err := r.item()
		if err != nil {
			return nil, err
		}
		list.Params = append(list.Params, tp)
		if r.pos < len(r.text) && r.text[r.pos] == ',' {
			r.pos++
			continue
		}
		return list, nil
	}
}

func (r *tparamReader) item() (decl.TemplateParam, error) {
	r.skipSpaces()
	start := r.pos
	for r.pos < len(r.text) && !strings.ContainsRune(",<>: ", rune(r.text[r.pos])) {
		r.pos++
	}
	if r.pos == start {
		return decl.TemplateParam{}, fmt.Errorf("empty template parameter name at offset %d", start)
	}
	tp := decl.TemplateParam{Name: r.text[start:r.pos], Span: subSpan(r.tok, start, r.pos)}
	r.skipSpaces()
	if r.pos < len(r.text) {
		switch r.text[r.pos] {
		case '<':
			r.pos++
			inner, err := r.list()
			if err != nil {
				return decl.TemplateParam{}, err
			}
			if r.pos >= len(r.text) || r.text[r.pos] != '>' {
				return decl.TemplateParam{}, fmt.Errorf("missing '>' after template parameter '%s'", tp.Name)
			}
			r.pos++
			tp.Kind = decl.TemplateTemplate
			tp.Params = inner
		case ':':
			// N:int: параметр-значение, тип не нужен
			r.pos++
			for r.pos < len(r.text) && !strings.ContainsRune(",<>", rune(r.text[r.pos])) {
				r.pos++
			}
			tp.Kind = decl.TemplateNonType
		}
	}
	r.skipSpaces()
	return tp, nil
}

func (r *tparamReader) skipSpaces() {
	for r.pos < len(r.text) && r.text[r.pos] == ' ' {
		r.pos++
	}
}
