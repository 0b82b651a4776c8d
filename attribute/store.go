package attribute

import (
	"sort"
	"strings"
)

// Matcher decides whether an attribute set with the given semantic type and
// records belongs in a query result. Matchers are only ever offered
// non-empty sets.
type Matcher func(name string, attrs []Record) bool

// Exemplar describes the record a set must contain to match in
// MatchExemplar. Nil fields are wildcards; non-nil fields must match, an
// empty string included.
type Exemplar struct {
	Name  *string
	Type  *Type
	Value *string
}

func (e Exemplar) matches(r Record) bool {
	if e.Name != nil && !strings.EqualFold(*e.Name, r.name) {
		return false
	}
	if e.Type != nil && *e.Type != r.typ {
		return false
	}
	if e.Value != nil && !strings.EqualFold(*e.Value, r.value) {
		return false
	}
	return true
}

// Store maps composite keys to attribute sets. A Store is owned by a single
// validation run and is not safe for concurrent use.
//
// Sets are indexed by semantic type and by (attribute name, value), so
// lookups by type or by contained value do not scan the store.
type Store struct {
	sets map[string]*Set

	// sorted caches Keys; nil after a key is added or removed.
	sorted []string

	byType  map[string]map[string]struct{}
	byValue map[string]map[string]map[string]struct{}
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		sets:    make(map[string]*Set),
		byType:  make(map[string]map[string]struct{}),
		byValue: make(map[string]map[string]map[string]struct{}),
	}
}

// Add inserts set under key, replacing any existing set.
func (s *Store) Add(key string, set *Set) {
	old, replaced := s.sets[key]
	if replaced {
		s.unindex(key, old)
	} else {
		s.sorted = nil
	}
	s.sets[key] = set
	s.index(key, set)
}

// Get returns the set stored under key.
func (s *Store) Get(key string) (*Set, bool) {
	set, ok := s.sets[key]
	return set, ok
}

// Remove deletes and returns the set stored under key.
func (s *Store) Remove(key string) (*Set, bool) {
	set, ok := s.sets[key]
	if ok {
		s.unindex(key, set)
		delete(s.sets, key)
		s.sorted = nil
	}
	return set, ok
}

// Len returns the number of stored sets, empty ones included.
func (s *Store) Len() int { return len(s.sets) }

// Keys returns every key in sorted order.
func (s *Store) Keys() []string {
	keys := s.sortedKeys()
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

func (s *Store) sortedKeys() []string {
	if s.sorted == nil {
		s.sorted = make([]string, 0, len(s.sets))
		for k := range s.sets {
			s.sorted = append(s.sorted, k)
		}
		sort.Strings(s.sorted)
	}
	return s.sorted
}

func (s *Store) index(key string, set *Set) {
	if set == nil || set.Empty() {
		return
	}
	keys := s.byType[set.name]
	if keys == nil {
		keys = make(map[string]struct{})
		s.byType[set.name] = keys
	}
	keys[key] = struct{}{}

	for _, r := range set.attrs {
		values := s.byValue[r.name]
		if values == nil {
			values = make(map[string]map[string]struct{})
			s.byValue[r.name] = values
		}
		holders := values[r.value]
		if holders == nil {
			holders = make(map[string]struct{})
			values[r.value] = holders
		}
		holders[key] = struct{}{}
	}
}

func (s *Store) unindex(key string, set *Set) {
	if set == nil || set.Empty() {
		return
	}
	if keys := s.byType[set.name]; keys != nil {
		delete(keys, key)
		if len(keys) == 0 {
			delete(s.byType, set.name)
		}
	}
	for _, r := range set.attrs {
		values := s.byValue[r.name]
		if values == nil {
			continue
		}
		if holders := values[r.value]; holders != nil {
			delete(holders, key)
			if len(holders) == 0 {
				delete(values, r.value)
			}
		}
		if len(values) == 0 {
			delete(s.byValue, r.name)
		}
	}
}

// entries returns the sets stored under keys, ordered by key.
func (s *Store) entries(keys map[string]struct{}) []Entry {
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)
	out := make([]Entry, 0, len(sorted))
	for _, k := range sorted {
		out = append(out, Entry{Key: k, Set: s.sets[k]})
	}
	return out
}

func setsOf(entries []Entry) []*Set {
	if len(entries) == 0 {
		return nil
	}
	out := make([]*Set, len(entries))
	for i, e := range entries {
		out[i] = e.Set
	}
	return out
}

// OfType returns every non-empty set whose semantic type is exactly setName,
// ordered by key.
func (s *Store) OfType(setName string) []*Set {
	return setsOf(s.entries(s.byType[setName]))
}

// Containing returns every non-empty set holding a record named one of
// names whose value is exactly value, ordered by key. It gives the same
// result as Matches(ContainsValue(value, names...)).
func (s *Store) Containing(value string, names ...string) []*Set {
	return setsOf(s.ContainingEntries(value, names...))
}

// ContainingEntries is Containing with the keys of the sets.
func (s *Store) ContainingEntries(value string, names ...string) []Entry {
	keys := make(map[string]struct{})
	for _, name := range names {
		for k := range s.byValue[name][value] {
			keys[k] = struct{}{}
		}
	}
	return s.entries(keys)
}

// Matches returns every non-empty set accepted by m, ordered by key. The
// matcher sees a copy of each set's records.
func (s *Store) Matches(m Matcher) []*Set {
	return setsOf(s.Entries(m))
}

// MatchExemplar returns the sets whose semantic type equals setName
// (case-insensitively) and which contain at least one record matching ex.
func (s *Store) MatchExemplar(setName string, ex Exemplar) []*Set {
	return s.Matches(func(name string, attrs []Record) bool {
		if !strings.EqualFold(name, setName) {
			return false
		}
		for _, r := range attrs {
			if ex.matches(r) {
				return true
			}
		}
		return false
	})
}

// Entries returns the key of every non-empty set accepted by m alongside the
// set, ordered by key. The matcher sees a copy of each set's records.
func (s *Store) Entries(m Matcher) []Entry {
	var out []Entry
	for _, key := range s.sortedKeys() {
		set := s.sets[key]
		if set == nil || set.Empty() || !m(set.name, set.Attributes()) {
			continue
		}
		out = append(out, Entry{Key: key, Set: set})
	}
	return out
}

// Entry pairs a store key with its set.
type Entry struct {
	Key string
	Set *Set
}
