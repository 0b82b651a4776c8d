package validation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/orevalidate/resourcemap"
)

func TestFindRoots(t *testing.T) {
	tests := []struct {
		name  string
		graph *resourcemap.Graph
		want  []string
	}{
		{
			name:  "single chain",
			graph: aggregationGraph([2]string{"A", "B"}, [2]string{"B", "C"}, [2]string{"B", "D"}),
			want:  []string{"A"},
		},
		{
			name:  "two disconnected chains",
			graph: aggregationGraph([2]string{"A", "B"}, [2]string{"C", "D"}),
			want:  []string{"A", "C"},
		},
		{
			name:  "cycle has no root",
			graph: aggregationGraph([2]string{"A", "B"}, [2]string{"B", "A"}),
			want:  nil,
		},
		{
			name:  "empty graph",
			graph: resourcemap.NewGraph(),
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindRoots(tt.graph))
		})
	}
}

func TestFindRoots_IgnoresNonAggregationEdges(t *testing.T) {
	g := aggregationGraph([2]string{"A", "B"})
	// Description and membership edges neither create nor hide roots.
	g.AddEdge("A", "file:///rem.xml", resourcemap.EdgeIsDescribedBy)
	g.AddEdge("file:///rem.xml", "A", resourcemap.EdgeDescribes)
	g.AddEdge("B", "A", resourcemap.EdgeIsPartOf)
	g.AddNode("isolated")

	assert.Equal(t, []string{"A"}, FindRoots(g))
}

func TestOrphanStage(t *testing.T) {
	t.Run("exactly one root passes", func(t *testing.T) {
		state := &WorkflowState{Graph: aggregationGraph([2]string{"A", "B"}, [2]string{"A", "C"})}
		require.NoError(t, OrphanStage{}.Execute(context.Background(), "dep", state))
		assert.Empty(t, state.Errors)
		assert.Empty(t, state.Roots)
	})

	t.Run("two roots fail and are reported", func(t *testing.T) {
		state := &WorkflowState{
			Graph: aggregationGraph([2]string{"A", "B"}, [2]string{"C", "D"}),
			Roots: []string{"pre-existing"},
		}
		err := OrphanStage{}.Execute(context.Background(), "dep", state)

		var orphan *OrphanResourceError
		require.True(t, errors.As(err, &orphan))
		assert.Equal(t, []string{"A", "C"}, orphan.Roots)
		assert.Equal(t, []string{"pre-existing", "A", "C"}, state.Roots)
		assert.Len(t, state.Errors, 2)
		assert.Contains(t, err.Error(), "2 roots")
	})

	t.Run("no root fails", func(t *testing.T) {
		state := &WorkflowState{Graph: resourcemap.NewGraph()}
		err := OrphanStage{}.Execute(context.Background(), "dep", state)
		assert.True(t, IsOrphanResource(err))
		assert.Len(t, state.Errors, 1)
	})

	t.Run("missing graph", func(t *testing.T) {
		state := &WorkflowState{}
		err := OrphanStage{}.Execute(context.Background(), "dep", state)
		assert.ErrorIs(t, err, ErrMissingRequiredAttribute)
		require.Len(t, state.Errors, 1)
		assert.Contains(t, state.Errors[0], "no merged")
	})
}
