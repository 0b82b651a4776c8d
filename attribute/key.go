package attribute

import (
	"errors"
	"fmt"
	"strings"
)

// KeySeparator joins the semantic type and identifier in a store key.
const KeySeparator = "_"

// ErrInvalidArgument is returned for inputs that cannot be encoded.
var ErrInvalidArgument = errors.New("invalid argument")

// ComposeKey builds the store key for a semantic type and identifier.
// Identifiers containing KeySeparator are rejected because DecomposeKey
// splits on the first separator.
func ComposeKey(semanticType, id string) (string, error) {
	if strings.Contains(id, KeySeparator) {
		return "", fmt.Errorf("%w: identifier %q contains key separator %q", ErrInvalidArgument, id, KeySeparator)
	}
	return semanticType + KeySeparator + id, nil
}

// MustComposeKey is like ComposeKey but panics on error. Intended for
// identifiers known to be valid, such as package-level constants.
func MustComposeKey(semanticType, id string) string {
	key, err := ComposeKey(semanticType, id)
	if err != nil {
		panic(err)
	}
	return key
}

// DecomposeKey splits a store key on the first separator.
func DecomposeKey(key string) (semanticType, id string, err error) {
	semanticType, id, ok := strings.Cut(key, KeySeparator)
	if !ok {
		return "", "", fmt.Errorf("%w: key %q has no separator", ErrInvalidArgument, key)
	}
	return semanticType, id, nil
}

var (
	idEscaper   = strings.NewReplacer("%", "%25", KeySeparator, "%5F")
	idUnescaper = strings.NewReplacer("%25", "%", "%5F", KeySeparator)
)

// EscapeID percent-encodes KeySeparator and '%' so that any identifier can
// be passed to ComposeKey.
func EscapeID(id string) string {
	return idEscaper.Replace(id)
}

// UnescapeID reverses EscapeID.
func UnescapeID(escaped string) string {
	return idUnescaper.Replace(escaped)
}

// ResourceKey returns the store key of a graph resource. Unlike ComposeKey
// it accepts every identifier, including blank node labels and IRIs with
// underscores, by escaping the identifier first.
func ResourceKey(semanticType, id string) string {
	return semanticType + KeySeparator + EscapeID(id)
}

// ResourceID returns the identifier encoded in a key built by ResourceKey.
func ResourceID(key string) (semanticType, id string, err error) {
	semanticType, escaped, err := DecomposeKey(key)
	if err != nil {
		return "", "", err
	}
	return semanticType, UnescapeID(escaped), nil
}
