// Package events records what happened during a validation run.
//
// Stages report progress and informational findings through a Recorder.
// The recorder is an external collaborator: the pipeline never depends on a
// recorded event being delivered.
package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the pipeline.
const (
	TypeStageStarted         = "stage_started"
	TypeStagePassed          = "stage_passed"
	TypeStageFailed          = "stage_failed"
	TypeAggregationRemoved   = "aggregation_removed"
	TypeValidationCompleted  = "validation_completed"
	TypeResourceMapsMerged   = "resource_maps_merged"
	TypeProfileWithoutReMRef = "profile_without_rem"
)

// Event is a single recorded occurrence.
type Event struct {
	ID        string            `json:"id"`
	DepositID string            `json:"deposit_id"`
	Type      string            `json:"type"`
	Stage     string            `json:"stage,omitempty"`
	Detail    string            `json:"detail,omitempty"`
	Attrs     map[string]string `json:"attrs,omitempty"`
	Time      time.Time         `json:"time"`
}

// New creates an event with a fresh id and the current time.
func New(depositID, typ, detail string) Event {
	return Event{
		ID:        uuid.NewString(),
		DepositID: depositID,
		Type:      typ,
		Detail:    detail,
		Time:      time.Now().UTC(),
	}
}

// WithStage returns a copy of e attributed to a stage.
func (e Event) WithStage(stage string) Event {
	e.Stage = stage
	return e
}

// With returns a copy of e with an extra attribute.
func (e Event) With(key, value string) Event {
	attrs := make(map[string]string, len(e.Attrs)+1)
	for k, v := range e.Attrs {
		attrs[k] = v
	}
	attrs[key] = value
	e.Attrs = attrs
	return e
}

// Recorder receives events. Implementations must not block the caller for
// long; delivery failures are the recorder's concern.
type Recorder interface {
	Record(ctx context.Context, e Event)
}

// Discard drops every event.
var Discard Recorder = discard{}

type discard struct{}

func (discard) Record(context.Context, Event) {}

// SlogRecorder writes events to a structured logger.
type SlogRecorder struct {
	logger *slog.Logger
	level  slog.Level
}

// NewSlogRecorder creates a recorder logging at the given level.
func NewSlogRecorder(logger *slog.Logger, level slog.Level) *SlogRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogRecorder{logger: logger, level: level}
}

// Record logs the event.
func (r *SlogRecorder) Record(ctx context.Context, e Event) {
	args := []any{"event_id", e.ID, "deposit_id", e.DepositID, "type", e.Type}
	if e.Stage != "" {
		args = append(args, "stage", e.Stage)
	}
	for k, v := range e.Attrs {
		args = append(args, k, v)
	}
	msg := e.Detail
	if msg == "" {
		msg = e.Type
	}
	r.logger.Log(ctx, r.level, msg, args...)
}

// MemoryRecorder keeps events in memory. Safe for concurrent use.
type MemoryRecorder struct {
	mu     sync.Mutex
	events []Event
}

// NewMemoryRecorder creates an empty in-memory recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

// Record stores the event.
func (r *MemoryRecorder) Record(_ context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events in order.
func (r *MemoryRecorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfType returns the recorded events with type typ.
func (r *MemoryRecorder) OfType(typ string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// Multi fans events out to several recorders.
func Multi(recorders ...Recorder) Recorder {
	return multi(recorders)
}

type multi []Recorder

func (m multi) Record(ctx context.Context, e Event) {
	for _, r := range m {
		r.Record(ctx, e)
	}
}
