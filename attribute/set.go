package attribute

// Set is a named group of attribute records describing one graph node or
// document fragment. Name is the semantic type of the set. Record order is
// insertion order; repeated names represent multi-valued properties.
type Set struct {
	name  string
	attrs []Record
}

// NewSet creates a set with the given semantic type and records.
func NewSet(name string, records ...Record) *Set {
	attrs := make([]Record, len(records))
	copy(attrs, records)
	return &Set{name: name, attrs: attrs}
}

// Name returns the semantic type of the set.
func (s *Set) Name() string { return s.name }

// Attributes returns a copy of the records in insertion order.
func (s *Set) Attributes() []Record {
	out := make([]Record, len(s.attrs))
	copy(out, s.attrs)
	return out
}

// Len returns the number of records.
func (s *Set) Len() int { return len(s.attrs) }

// Empty reports whether the set has no records.
func (s *Set) Empty() bool { return len(s.attrs) == 0 }

// With returns a new set holding the receiver's records followed by records.
func (s *Set) With(records ...Record) *Set {
	attrs := make([]Record, 0, len(s.attrs)+len(records))
	attrs = append(attrs, s.attrs...)
	attrs = append(attrs, records...)
	return &Set{name: s.name, attrs: attrs}
}

// Without returns a new set without the records for which drop returns true.
func (s *Set) Without(drop func(Record) bool) *Set {
	attrs := make([]Record, 0, len(s.attrs))
	for _, r := range s.attrs {
		if !drop(r) {
			attrs = append(attrs, r)
		}
	}
	return &Set{name: s.name, attrs: attrs}
}

// Contains reports whether the set holds a record equal to r.
func (s *Set) Contains(r Record) bool {
	for _, a := range s.attrs {
		if a == r {
			return true
		}
	}
	return false
}

// First returns the value of the first record named name.
func (s *Set) First(name string) (string, bool) {
	for _, a := range s.attrs {
		if a.name == name {
			return a.value, true
		}
	}
	return "", false
}

// Values collects the distinct values of all records in set named name, in
// first-seen order. The result is empty, not nil, when nothing matches.
func Values(set *Set, name string) []string {
	out := []string{}
	if set == nil {
		return out
	}
	seen := make(map[string]bool)
	for _, a := range set.attrs {
		if a.name != name || seen[a.value] {
			continue
		}
		seen[a.value] = true
		out = append(out, a.value)
	}
	return out
}
