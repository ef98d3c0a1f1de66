package script

import "docsema/internal/source"

// Kind represents the category of a script token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the script.
	EOF
	// Newline ends an action line.
	Newline
	// Word is a bare run of non-blank characters.
	Word
	// String is a double-quoted literal; Value holds the unescaped text.
	String
	// Assign is '=' between a key and its value.
	Assign
)

var kindNames = [...]string{
	Invalid: "invalid",
	EOF:     "end of file",
	Newline: "newline",
	Word:    "word",
	String:  "string",
	Assign:  "'='",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Token is a single script token. Text is the raw source slice.
type Token struct {
	Kind  Kind
	Span  source.Span
	Text  string
	Value string
}

// IsArg reports whether the token can be an action argument.
func (t Token) IsArg() bool { return t.Kind == Word || t.Kind == String }

// Arg returns the argument text: the unescaped value for strings,
// the raw text otherwise.
func (t Token) Arg() string {
	if t.Kind == String {
		return t.Value
	}
	return t.Text
}
