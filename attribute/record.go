// Package attribute provides the in-memory attribute-set store used while a
// package is validated.
//
// A package's resource maps are flattened into named attribute sets, one per
// (semantic type, resource) pair. Validation stages query the store by key,
// by matcher function or by exemplar record, and never need to touch the
// source documents again.
package attribute

import "fmt"

// Type is the declared data type of an attribute value.
type Type int

// Attribute value types.
const (
	TypeString Type = iota
	TypeLong
	TypeDateTime
	TypeBoolean
	TypeURI
)

var typeNames = map[Type]string{
	TypeString:   "STRING",
	TypeLong:     "LONG",
	TypeDateTime: "DATETIME",
	TypeBoolean:  "BOOLEAN",
	TypeURI:      "URI",
}

// String returns the upper-case type name.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType parses a type name as produced by Type.String.
func ParseType(s string) (Type, error) {
	for t, name := range typeNames {
		if name == s {
			return t, nil
		}
	}
	return TypeString, fmt.Errorf("%w: unknown attribute type %q", ErrInvalidArgument, s)
}

// Record is an immutable name/type/value triple. Records compare by value.
type Record struct {
	name  string
	typ   Type
	value string
}

// NewRecord creates a record.
func NewRecord(name string, typ Type, value string) Record {
	return Record{name: name, typ: typ, value: value}
}

// String creates a TypeString record.
func String(name, value string) Record {
	return Record{name: name, typ: TypeString, value: value}
}

// Name returns the attribute name.
func (r Record) Name() string { return r.name }

// Type returns the attribute type.
func (r Record) Type() Type { return r.typ }

// Value returns the attribute value.
func (r Record) Value() string { return r.value }

func (r Record) String() string {
	return fmt.Sprintf("%s(%s)=%q", r.name, r.typ, r.value)
}
