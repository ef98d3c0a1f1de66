package script

import (
	"fmt"
	"strings"

	"docsema/internal/diag"
	"docsema/internal/source"
)

// Lexer splits an action script into tokens. Problems are reported as SCR
// diagnostics and lexing continues.
type Lexer struct {
	file     *source.File
	cursor   Cursor
	reporter diag.Reporter
	look     *Token // 1 элементный буфер для токена
}

// NewLexer creates a lexer over file. reporter may be nil.
func NewLexer(file *source.File, reporter diag.Reporter) *Lexer {
	return &Lexer{
		file:     file,
		cursor:   NewCursor(file),
		reporter: reporter,
	}
}

// Next возвращает следующий токен. После EOF всегда возвращает EOF.
func (lx *Lexer) Next() Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	lx.skipBlanks()
	if lx.cursor.EOF() {
		return Token{Kind: EOF, Span: lx.emptySpan()}
	}

	start := lx.cursor.Mark()
	switch ch := lx.cursor.Peek(); {
	case ch == '\n':
		lx.cursor.Bump()
		return lx.token(Newline, start)
	case ch == '=':
		lx.cursor.Bump()
		return lx.token(Assign, start)
	case ch == '"':
		return lx.scanString()
	case isControl(ch):
		lx.cursor.Bump()
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.ScrUnknownChar, sp, fmt.Sprintf("unexpected character 0x%02x", ch))
		return lx.token(Invalid, start)
	default:
		return lx.scanWord()
	}
}

// Peek возвращает следующий токен, не потребляя его.
func (lx *Lexer) Peek() Token {
	t := lx.Next()
	lx.look = &t
	return t
}

// skipBlanks съедает пробелы, табы, \r и комментарии до конца строки.
func (lx *Lexer) skipBlanks() {
	for !lx.cursor.EOF() {
		switch lx.cursor.Peek() {
		case ' ', '\t', '\r':
			lx.cursor.Bump()
		case '#':
			for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
				lx.cursor.Bump()
			}
		default:
			return
		}
	}
}

func (lx *Lexer) scanWord() Token {
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if isBlank(b) || b == '"' || b == '=' || isControl(b) {
			break
		}
		lx.cursor.Bump()
	}
	return lx.token(Word, start)
}

// scanString читает "..." с escape \" \\ \n \t.
func (lx *Lexer) scanString() Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening '"'
	var sb strings.Builder
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch b {
		case '"':
			lx.cursor.Bump()
			tok := lx.token(String, start)
			tok.Value = sb.String()
			return tok
		case '\n':
			sp := lx.cursor.SpanFrom(start)
			lx.errLex(diag.ScrUnterminatedString, sp, "newline in string literal")
			return lx.token(Invalid, start)
		case '\\':
			esc := lx.cursor.Mark()
			lx.cursor.Bump()
			if lx.cursor.EOF() {
				continue
			}
			switch e := lx.cursor.Peek(); e {
			case '"', '\\':
				sb.WriteByte(e)
				lx.cursor.Bump()
			case 'n':
				sb.WriteByte('\n')
				lx.cursor.Bump()
			case 't':
				sb.WriteByte('\t')
				lx.cursor.Bump()
			case '\n':
				// разрыв строки разберёт ветка выше
			default:
				lx.cursor.Bump()
				lx.errLex(diag.ScrBadEscape, lx.cursor.SpanFrom(esc), fmt.Sprintf("unknown escape sequence '\\%c'", e))
				sb.WriteByte('\\')
				sb.WriteByte(e)
			}
		default:
			sb.WriteByte(lx.cursor.Bump())
		}
	}
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.ScrUnterminatedString, sp, "unterminated string literal")
	return lx.token(Invalid, start)
}

func (lx *Lexer) token(kind Kind, start Mark) Token {
	sp := lx.cursor.SpanFrom(start)
	return Token{Kind: kind, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

func (lx *Lexer) errLex(code diag.Code, sp source.Span, msg string) {
	diag.ReportError(lx.reporter, code, sp, msg).Emit()
}

func isBlank(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

func isControl(b byte) bool {
	return (b < 0x20 && !isBlank(b)) || b == 0x7f
}
