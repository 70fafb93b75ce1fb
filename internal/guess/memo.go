package guess

import (
	csmap "github.com/mhmtszr/concurrent-swiss-map"
)

// Memo caches guesses by name so the inferrer and the mapper parse each file once.
type Memo struct {
	fn    Func
	store *csmap.CsMap[string, Guess]
}

// NewMemo wraps fn; a nil fn means FromFilename.
func NewMemo(fn Func) *Memo {
	if fn == nil {
		fn = FromFilename
	}
	return &Memo{
		fn:    fn,
		store: csmap.Create[string, Guess](),
	}
}

// Guess returns the cached guess for name, computing it on first use.
func (m *Memo) Guess(name string) Guess {
	if g, ok := m.store.Load(name); ok {
		return g
	}
	g := m.fn(name)
	m.store.Store(name, g)
	return g
}

// Len reports how many names have been parsed.
func (m *Memo) Len() int {
	return int(m.store.Count())
}
