package validation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/c360studio/orevalidate/attribute"
	"github.com/c360studio/orevalidate/resourcemap"
)

// addEntity stores an entity set for id with its resource id record first.
func addEntity(t *testing.T, store *attribute.Store, setName, id string, records ...attribute.Record) {
	t.Helper()
	e, ok := attribute.EntityFor(setName)
	require.True(t, ok, "unknown set %s", setName)
	all := append([]attribute.Record{attribute.NewRecord(e.ResourceID, attribute.TypeURI, id)}, records...)
	store.Add(attribute.MustComposeKey(setName, id), attribute.NewSet(setName, all...))
}

func uri(name, value string) attribute.Record {
	return attribute.NewRecord(name, attribute.TypeURI, value)
}

func aggregationGraph(edges ...[2]string) *resourcemap.Graph {
	g := resourcemap.NewGraph()
	for _, e := range edges {
		g.AddEdge(e[0], e[1], resourcemap.EdgeAggregates)
	}
	return g
}
