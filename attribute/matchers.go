package attribute

// OfType matches sets whose semantic type is exactly setName.
func OfType(setName string) Matcher {
	return func(name string, _ []Record) bool {
		return name == setName
	}
}

// ContainsValue matches sets holding a record named one of names whose value
// is exactly value.
func ContainsValue(value string, names ...string) Matcher {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	return func(_ string, attrs []Record) bool {
		for _, r := range attrs {
			if wanted[r.name] && r.value == value {
				return true
			}
		}
		return false
	}
}

// And matches sets accepted by every matcher.
func And(ms ...Matcher) Matcher {
	return func(name string, attrs []Record) bool {
		for _, m := range ms {
			if !m(name, attrs) {
				return false
			}
		}
		return true
	}
}

// Predefined matchers for the resource map categories.
var (
	IsPackageReM    = OfType(SetPackage)
	IsProjectReM    = OfType(SetProject)
	IsCollectionReM = OfType(SetCollection)
	IsDataItemReM   = OfType(SetDataItem)
	IsFileReM       = OfType(SetFile)
)
