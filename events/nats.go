package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"
)

// DefaultSubjectPrefix is the subject prefix events are published under.
const DefaultSubjectPrefix = "orevalidate.events"

// Publisher is the subset of *nats.Conn used by NATSRecorder.
type Publisher interface {
	Publish(subject string, data []byte) error
}

var _ Publisher = (*nats.Conn)(nil)

// NATSRecorder publishes events as JSON to <prefix>.<type>.
type NATSRecorder struct {
	pub    Publisher
	prefix string
	logger *slog.Logger
}

// NewNATSRecorder creates a recorder publishing through pub.
func NewNATSRecorder(pub Publisher, prefix string, logger *slog.Logger) *NATSRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSRecorder{pub: pub, prefix: strings.TrimSuffix(prefix, "."), logger: logger}
}

// Subject returns the subject an event of type typ is published on.
func (r *NATSRecorder) Subject(typ string) string {
	return r.prefix + "." + typ
}

// Record publishes the event. Failures are logged, never returned.
func (r *NATSRecorder) Record(_ context.Context, e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		r.logger.Warn("Failed to marshal event", "type", e.Type, "error", err)
		return
	}
	if err := r.pub.Publish(r.Subject(e.Type), data); err != nil {
		r.logger.Warn("Failed to publish event",
			"subject", r.Subject(e.Type),
			"deposit_id", e.DepositID,
			"error", err)
	}
}

// Connect dials a NATS server for event publishing.
func Connect(url string, logger *slog.Logger) (*nats.Conn, error) {
	if logger == nil {
		logger = slog.Default()
	}
	nc, err := nats.Connect(url,
		nats.Name("orevalidate"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", "url", c.ConnectedUrl())
		}))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	return nc, nil
}
