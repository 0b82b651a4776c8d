package validation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/c360studio/orevalidate/attribute"
	"github.com/c360studio/orevalidate/bag"
	"github.com/c360studio/orevalidate/events"
)

// ProfileSet returns the deposit's BagIt profile set.
func ProfileSet(store *attribute.Store, depositID string) (*attribute.Set, error) {
	key, err := attribute.ComposeKey(attribute.SetBagItProfile, depositID)
	if err != nil {
		return nil, fmt.Errorf("profile key: %w", err)
	}
	set, ok := store.Get(key)
	if !ok || set.Empty() {
		return nil, fmt.Errorf("%w: no %s set for deposit %s", ErrMissingRequiredAttribute, attribute.SetBagItProfile, depositID)
	}
	return set, nil
}

// ProfileStage requires the profile set loaded from bag-info.txt.
type ProfileStage struct {
	logger *slog.Logger
}

// NewProfileStage creates the stage.
func NewProfileStage(logger *slog.Logger) *ProfileStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileStage{logger: logger}
}

// Name returns the stage name.
func (s *ProfileStage) Name() string { return "bagit-profile" }

// Execute fails when the profile set is absent. A profile without package
// resource map references is accepted and recorded.
func (s *ProfileStage) Execute(ctx context.Context, depositID string, state *WorkflowState) error {
	set, err := ProfileSet(state.Store, depositID)
	if err != nil {
		state.addError(err.Error())
		return fmt.Errorf("%s: %w", s.Name(), err)
	}
	refs := attribute.Values(set, attribute.PackageReM)
	if len(refs) == 0 {
		s.logger.Warn("Profile declares no package resource map", "deposit_id", depositID)
		state.record(ctx, events.New(depositID, events.TypeProfileWithoutReMRef,
			"profile declares no package resource map").WithStage(s.Name()))
		return nil
	}
	s.logger.Debug("Profile loaded", "deposit_id", depositID, "resource_maps", refs)
	return nil
}

// PrepareState opens a workflow state for pkg and loads its profile into the
// store under depositID.
func PrepareState(pkg *bag.Package, depositID string, recorder events.Recorder) (*WorkflowState, error) {
	state := NewWorkflowState(pkg, recorder)
	if err := pkg.LoadProfile(state.Store, depositID); err != nil {
		return nil, err
	}
	return state, nil
}
