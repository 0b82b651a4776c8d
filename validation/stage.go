// Package validation checks the semantic graph of an extracted package.
//
// Each check is a Stage. Stages run sequentially over one WorkflowState:
// they read the attribute set store and merged graph, append diagnostics to
// WorkflowState.Errors and return a typed error when the package fails the
// check. Only the unsupported-aggregation stage mutates the store.
package validation

import (
	"context"

	"github.com/c360studio/orevalidate/attribute"
	"github.com/c360studio/orevalidate/bag"
	"github.com/c360studio/orevalidate/events"
	"github.com/c360studio/orevalidate/resourcemap"
)

// Stage is one validation step.
type Stage interface {
	Name() string
	Execute(ctx context.Context, depositID string, state *WorkflowState) error
}

// WorkflowState is the state shared by the stages of one run. It is owned by
// a single run and never shared between packages.
type WorkflowState struct {
	Package  *bag.Package
	Store    *attribute.Store
	Graph    *resourcemap.Graph
	Recorder events.Recorder

	// Errors accumulates diagnostics. Stages append; nothing clears it
	// mid-run.
	Errors []string

	// Roots receives the roots found by the orphan check when the package
	// does not have exactly one.
	Roots []string
}

// NewWorkflowState creates a state for pkg with an empty store.
func NewWorkflowState(pkg *bag.Package, recorder events.Recorder) *WorkflowState {
	if recorder == nil {
		recorder = events.Discard
	}
	return &WorkflowState{
		Package:  pkg,
		Store:    attribute.NewStore(),
		Recorder: recorder,
	}
}

func (s *WorkflowState) addError(msg string) {
	s.Errors = append(s.Errors, msg)
}

func (s *WorkflowState) record(ctx context.Context, e events.Event) {
	if s.Recorder != nil {
		s.Recorder.Record(ctx, e)
	}
}

// StageFunc adapts a function to the Stage interface.
type StageFunc struct {
	StageName string
	Fn        func(ctx context.Context, depositID string, state *WorkflowState) error
}

// Name returns the stage name.
func (f StageFunc) Name() string { return f.StageName }

// Execute calls the function.
func (f StageFunc) Execute(ctx context.Context, depositID string, state *WorkflowState) error {
	return f.Fn(ctx, depositID, state)
}
