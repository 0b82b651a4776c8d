package validation

import (
	"context"
	"fmt"
	"strconv"

	"github.com/c360studio/orevalidate/events"
	"github.com/c360studio/orevalidate/resourcemap"
)

// LoadStage merges the package resource maps into state.Graph and populates
// the store.
type LoadStage struct {
	loader *resourcemap.Loader
}

// NewLoadStage creates the stage. A nil loader uses resourcemap defaults.
func NewLoadStage(loader *resourcemap.Loader) *LoadStage {
	if loader == nil {
		loader = resourcemap.NewLoader(nil)
	}
	return &LoadStage{loader: loader}
}

// Name returns the stage name.
func (s *LoadStage) Name() string { return "resource-map-load" }

// Execute loads the resource maps. Any missing or malformed document fails
// the stage.
func (s *LoadStage) Execute(ctx context.Context, depositID string, state *WorkflowState) error {
	if state.Package == nil {
		state.addError("no package to load resource maps from")
		return fmt.Errorf("%s: %w: no package", s.Name(), ErrMissingRequiredAttribute)
	}
	profile, err := ProfileSet(state.Store, depositID)
	if err != nil {
		state.addError(err.Error())
		return fmt.Errorf("%s: %w", s.Name(), err)
	}
	g, err := s.loader.Load(state.Package, profile, state.Store)
	if err != nil {
		state.addError(err.Error())
		return fmt.Errorf("%s: %w", s.Name(), err)
	}
	state.Graph = g
	state.record(ctx, events.New(depositID, events.TypeResourceMapsMerged, "resource maps merged").
		WithStage(s.Name()).
		With("documents", strconv.Itoa(len(g.Documents()))).
		With("nodes", strconv.Itoa(g.Len())))
	return nil
}
