package sema

import (
	"golang.org/x/text/cases"

	"docsema/internal/comment"
)

var (
	// end tag may be omitted
	optionalEndTags = map[string]struct{}{
		"p": {}, "li": {}, "tr": {}, "th": {}, "td": {}, "colgroup": {},
	}
	// end tag must not appear (void elements)
	forbiddenEndTags = map[string]struct{}{
		"br": {}, "hr": {}, "img": {}, "col": {}, "area": {}, "base": {},
		"basefont": {}, "input": {}, "isindex": {}, "link": {}, "meta": {}, "param": {},
	}
)

// IsEndTagOptional reports whether name's end tag may be omitted.
func IsEndTagOptional(name string) bool {
	_, ok := optionalEndTags[foldName(name)]
	return ok
}

// IsEndTagForbidden reports whether name is a void element.
func IsEndTagForbidden(name string) bool {
	_, ok := forbiddenEndTags[foldName(name)]
	return ok
}

// cases.Caser is stateful; a fresh one per call keeps these helpers safe for
// concurrent use.
func foldName(name string) string {
	return cases.Fold().String(name)
}

type openTag struct {
	id     comment.NodeID
	name   string
	folded string
}

// TagStack tracks HTML start tags that still wait for their end tag.
type TagStack struct {
	entries []openTag
	caser   cases.Caser
}

func NewTagStack() *TagStack {
	return &TagStack{caser: cases.Fold()}
}

// EndMatch is the outcome of MatchEnd.
type EndMatch struct {
	Found        bool
	Matched      comment.NodeID
	Unterminated []comment.NodeID // tags implicitly closed, innermost first
}

func (s *TagStack) Push(id comment.NodeID, name string) {
	s.entries = append(s.entries, openTag{id: id, name: name, folded: s.caser.String(name)})
}

// MatchEnd pops the nearest start tag with the same name (ignoring case)
// together with every tag above it. With no such tag the stack is untouched.
func (s *TagStack) MatchEnd(name string) EndMatch {
	folded := s.caser.String(name)
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].folded != folded {
			continue
		}
		m := EndMatch{Found: true, Matched: s.entries[i].id}
		for j := len(s.entries) - 1; j > i; j-- {
			m.Unterminated = append(m.Unterminated, s.entries[j].id)
		}
		s.entries = s.entries[:i]
		return m
	}
	return EndMatch{}
}

// Drain empties the stack and returns the open tags outermost first.
func (s *TagStack) Drain() []comment.NodeID {
	out := make([]comment.NodeID, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.id)
	}
	s.entries = s.entries[:0]
	return out
}

func (s *TagStack) Len() int {
	return len(s.entries)
}

// Names returns the open tag names as written, outermost first.
func (s *TagStack) Names() []string {
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.name)
	}
	return out
}
