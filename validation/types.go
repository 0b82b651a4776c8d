package validation

import (
	"sort"

	"github.com/c360studio/orevalidate/attribute"
)

// FindAttributeSetsContainingID returns every non-empty set holding a
// resource identifier attribute whose value is exactly id.
func FindAttributeSetsContainingID(store *attribute.Store, id string) []*attribute.Set {
	return store.Containing(id, attribute.ResourceIDNames()...)
}

// Types maps each id to the sorted, distinct set names of the attribute sets
// identifying it. Every id gets an entry; an id nothing identifies maps to
// an empty slice.
func Types(ids []string, store *attribute.Store) map[string][]string {
	out := make(map[string][]string, len(ids))
	for _, id := range ids {
		if _, done := out[id]; done {
			continue
		}
		seen := make(map[string]bool)
		types := []string{}
		for _, set := range FindAttributeSetsContainingID(store, id) {
			if !seen[set.Name()] {
				seen[set.Name()] = true
				types = append(types, set.Name())
			}
		}
		sort.Strings(types)
		out[id] = types
	}
	return out
}

// HasType reports whether id resolves to setName in store.
func HasType(store *attribute.Store, id, setName string) bool {
	for _, t := range Types([]string{id}, store)[id] {
		if t == setName {
			return true
		}
	}
	return false
}
