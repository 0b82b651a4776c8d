package attribute

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestComposeKey(t *testing.T) {
	key, err := ComposeKey(SetDataItem, "file:///bag/data#item-1")
	require.NoError(t, err)
	assert.Equal(t, "ORE-ReM-DataItem_file:///bag/data#item-1", key)
}

func TestComposeKey_RejectsSeparator(t *testing.T) {
	for _, id := range []string{"_", "a_b", "trailing_", "_leading"} {
		t.Run(id, func(t *testing.T) {
			_, err := ComposeKey(SetFile, id)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidArgument))
		})
	}
}

func TestDecomposeKey_NoSeparator(t *testing.T) {
	_, _, err := DecomposeKey("no-separator-here")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDecomposeKey_EmptyParts(t *testing.T) {
	typ, id, err := DecomposeKey("_")
	require.NoError(t, err)
	assert.Equal(t, "", typ)
	assert.Equal(t, "", id)
}

func TestMustComposeKey_Panics(t *testing.T) {
	assert.Panics(t, func() { MustComposeKey(SetFile, "bad_id") })
}

// TestKeyRoundTrip checks DecomposeKey(ComposeKey(a, b)) == (a, b) for
// separator-free inputs.
func TestKeyRoundTrip(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		typ := rapid.StringMatching(`[A-Za-z0-9 .:/#-]{0,24}`).Draw(r, "type")
		id := rapid.StringMatching(`[A-Za-z0-9 .:/#?=-]{0,48}`).Draw(r, "id")

		key, err := ComposeKey(typ, id)
		if err != nil {
			r.Fatalf("compose %q %q: %v", typ, id, err)
		}
		gotType, gotID, err := DecomposeKey(key)
		if err != nil {
			r.Fatalf("decompose %q: %v", key, err)
		}
		if gotType != typ || gotID != id {
			r.Fatalf("round trip got (%q, %q), want (%q, %q)", gotType, gotID, typ, id)
		}
	})
}

func TestComposeKey_PropertyRejectsAnySeparator(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		prefix := rapid.StringMatching(`[a-z0-9]{0,10}`).Draw(r, "prefix")
		suffix := rapid.StringMatching(`[a-z0-9]{0,10}`).Draw(r, "suffix")
		if _, err := ComposeKey(SetProject, prefix+KeySeparator+suffix); !errors.Is(err, ErrInvalidArgument) {
			r.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestResourceKey(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"urn:d1", "ORE-ReM-File_urn:d1"},
		{"http://example.org/data_item_1", "ORE-ReM-File_http://example.org/data%5Fitem%5F1"},
		{"_:b1", "ORE-ReM-File_%5F:b1"},
		{"100%_done", "ORE-ReM-File_100%25%5Fdone"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, ResourceKey(SetFile, tt.id))
		})
	}
}

// TestResourceKeyRoundTrip checks that every identifier, separators
// included, survives ResourceKey and ResourceID.
func TestResourceKeyRoundTrip(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		typ := rapid.StringMatching(`[A-Za-z0-9 .:/#-]{0,24}`).Draw(r, "type")
		id := rapid.StringMatching(`[A-Za-z0-9_%.:/#?=-]{0,48}`).Draw(r, "id")

		gotType, gotID, err := ResourceID(ResourceKey(typ, id))
		if err != nil {
			r.Fatalf("decode key for %q %q: %v", typ, id, err)
		}
		if gotType != typ || gotID != id {
			r.Fatalf("round trip got (%q, %q), want (%q, %q)", gotType, gotID, typ, id)
		}
	})
}
