package mediaset

// NameSet is an in-memory MediaSet. It performs no existence or type checks and
// renames only change the tracked names.
type NameSet struct {
	tracker
}

var _ MediaSet = (*NameSet)(nil)

// NewNameSet tracks paths as given.
func NewNameSet(paths ...string) *NameSet {
	s := &NameSet{tracker: newTracker(func(string, string) error { return nil })}
	s.Add(paths...)
	return s
}

// Add tracks every path. It never fails.
func (s *NameSet) Add(paths ...string) error {
	for _, p := range paths {
		s.insert(p)
	}
	return nil
}
