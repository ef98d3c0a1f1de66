package source

import (
	"fmt"

	"fortio.org/safecast"
)

type StringID uint32

const NoStringID StringID = 0

// Interner maps names (command names, tag names, identifiers) to compact ids.
// Not safe for concurrent use; every comment tree owns its own interner.
type Interner struct {
	byID  []string
	index map[string]StringID
}

func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""}, // NoStringID → ""
		index: map[string]StringID{"": NoStringID},
	}
}

// Intern возвращает id строки, добавляя её при первом обращении.
func (i *Interner) Intern(s string) StringID {
	if id, ok := i.index[s]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(i.byID))
	if err != nil {
		panic(fmt.Errorf("interner overflow: %w", err))
	}
	id := StringID(n)
	s = string([]byte(s)) // не держим чужой буфер
	i.byID = append(i.byID, s)
	i.index[s] = id
	return id
}

func (i *Interner) Lookup(id StringID) (string, bool) {
	if int(id) >= len(i.byID) {
		return "", false
	}
	return i.byID[id], true
}

// MustLookup паникует на неизвестном id.
func (i *Interner) MustLookup(id StringID) string {
	s, ok := i.Lookup(id)
	if !ok {
		panic(fmt.Sprintf("invalid string id %d", id))
	}
	return s
}

func (i *Interner) Len() int {
	return len(i.byID)
}
