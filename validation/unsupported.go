package validation

import (
	"context"
	"log/slog"

	"github.com/c360studio/orevalidate/attribute"
	"github.com/c360studio/orevalidate/events"
)

// UnsupportedAggregationStage drops aggregation records whose target does
// not resolve to any entity type, such as external web resources. It never
// fails.
type UnsupportedAggregationStage struct {
	logger *slog.Logger
}

// NewUnsupportedAggregationStage creates the stage.
func NewUnsupportedAggregationStage(logger *slog.Logger) *UnsupportedAggregationStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &UnsupportedAggregationStage{logger: logger}
}

// Name returns the stage name.
func (s *UnsupportedAggregationStage) Name() string { return "remove-unsupported-aggregations" }

// Execute rewrites every set holding an unsupported aggregation and records
// one event per removed record.
func (s *UnsupportedAggregationStage) Execute(ctx context.Context, depositID string, state *WorkflowState) error {
	aggNames := make(map[string]bool, len(attribute.Entities))
	for _, e := range attribute.Entities {
		aggNames[e.Aggregates] = true
	}
	isAggregation := func(_ string, attrs []attribute.Record) bool {
		for _, r := range attrs {
			if aggNames[r.Name()] {
				return true
			}
		}
		return false
	}

	entries := state.Store.Entries(isAggregation)
	var targets []string
	for _, entry := range entries {
		for _, r := range entry.Set.Attributes() {
			if aggNames[r.Name()] {
				targets = append(targets, r.Value())
			}
		}
	}
	types := Types(targets, state.Store)

	removed := 0
	for _, entry := range entries {
		var dropped []attribute.Record
		kept := entry.Set.Without(func(r attribute.Record) bool {
			if aggNames[r.Name()] && len(types[r.Value()]) == 0 {
				dropped = append(dropped, r)
				return true
			}
			return false
		})
		if len(dropped) == 0 {
			continue
		}
		state.Store.Add(entry.Key, kept)
		for _, r := range dropped {
			removed++
			s.logger.Info("Removed unsupported aggregation",
				"deposit_id", depositID,
				"key", entry.Key,
				"attribute", r.Name(),
				"target", r.Value())
			state.record(ctx, events.New(depositID, events.TypeAggregationRemoved,
				"removed aggregation of untyped resource "+r.Value()).
				WithStage(s.Name()).
				With("key", entry.Key).
				With("target", r.Value()))
		}
	}
	if removed > 0 {
		s.logger.Debug("Unsupported aggregations removed", "deposit_id", depositID, "count", removed)
	}
	return nil
}
