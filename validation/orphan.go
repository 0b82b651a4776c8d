package validation

import (
	"context"
	"fmt"
	"sort"

	"github.com/c360studio/orevalidate/resourcemap"
)

// FindRoots returns the nodes that take part in at least one aggregation
// edge and are never an aggregation target, sorted. Description and
// membership edges are ignored.
func FindRoots(g *resourcemap.Graph) []string {
	if g == nil {
		return nil
	}
	edges := g.Edges(resourcemap.EdgeAggregates)
	targets := make(map[int]bool, len(edges))
	participants := make(map[int]bool, len(edges)*2)
	for _, e := range edges {
		// A self-aggregation makes its node a target like any other.
		targets[e.To] = true
		participants[e.From] = true
		participants[e.To] = true
	}

	var roots []string
	for i := range participants {
		if !targets[i] {
			roots = append(roots, g.At(i).ID)
		}
	}
	sort.Strings(roots)
	return roots
}

// OrphanStage requires the merged graph to have exactly one root.
type OrphanStage struct{}

// Name returns the stage name.
func (OrphanStage) Name() string { return "orphan-resources" }

// Execute checks the root count of state.Graph. A package without any
// aggregation edge has no root and fails.
func (s OrphanStage) Execute(_ context.Context, _ string, state *WorkflowState) error {
	if state.Graph == nil {
		state.addError("no merged resource map graph to check for orphan resources")
		return fmt.Errorf("%s: %w: no merged graph", s.Name(), ErrMissingRequiredAttribute)
	}
	roots := FindRoots(state.Graph)
	if len(roots) == 1 {
		return nil
	}

	state.Roots = append(state.Roots, roots...)
	if len(roots) == 0 {
		state.addError("package graph has no root resource")
	}
	for _, r := range roots {
		state.addError(fmt.Sprintf("resource %s is not aggregated by any other resource", r))
	}
	return &OrphanResourceError{Roots: roots}
}
