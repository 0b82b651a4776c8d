// Package graph publishes the resources of a validated package to the
// knowledge graph.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/c360studio/semstreams/message"

	"github.com/c360studio/orevalidate/resourcemap"
	"github.com/c360studio/orevalidate/vocabulary/ore"
)

// GraphIngestSubject is the subject resources are published on.
const GraphIngestSubject = "graph.ingest.entity"

// DefaultSource is the triple source recorded for published statements.
const DefaultSource = "orevalidate.package"

// Publisher sends one message. *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Resources converts the typed resources of g into payloads, in graph
// order. Resource maps and untyped nodes are document plumbing and are left
// out; description edges are never published.
func Resources(g *resourcemap.Graph, depositID, source string, now time.Time) []*ResourcePayload {
	if source == "" {
		source = DefaultSource
	}
	triple := func(subject, predicate string, object any) message.Triple {
		return message.Triple{
			Subject:    subject,
			Predicate:  predicate,
			Object:     object,
			Source:     source,
			Timestamp:  now,
			Confidence: 1.0,
		}
	}

	var out []*ResourcePayload
	for _, n := range g.Nodes() {
		if len(n.Types) == 0 || n.HasType(ore.ClassResourceMap) {
			continue
		}
		var triples []message.Triple
		for _, t := range n.Types {
			triples = append(triples, triple(n.ID, ore.Type, t))
		}
		for _, target := range g.Targets(n.ID, resourcemap.EdgeAggregates) {
			triples = append(triples, triple(n.ID, ore.Aggregates, target))
		}
		for _, target := range g.Targets(n.ID, resourcemap.EdgeIsPartOf) {
			triples = append(triples, triple(n.ID, ore.IsPartOf, target))
		}
		for _, p := range n.Properties {
			triples = append(triples, triple(n.ID, p.Predicate, p.Value))
		}
		out = append(out, &ResourcePayload{
			ResourceID:  n.ID,
			DepositID:   depositID,
			Types:       append([]string(nil), n.Types...),
			TripleData:  triples,
			PublishedAt: now,
		})
	}
	return out
}

// Publish sends every resource of g to GraphIngestSubject and returns how
// many were published. A nil publisher publishes nothing.
func Publish(ctx context.Context, pub Publisher, g *resourcemap.Graph, depositID, source string) (int, error) {
	if pub == nil || g == nil {
		return 0, nil
	}

	published := 0
	for _, res := range Resources(g, depositID, source, time.Now()) {
		if err := ctx.Err(); err != nil {
			return published, err
		}
		if err := res.Validate(); err != nil {
			return published, fmt.Errorf("resource %s: %w", res.ResourceID, err)
		}
		data, err := json.Marshal(res)
		if err != nil {
			return published, fmt.Errorf("marshal resource %s: %w", res.ResourceID, err)
		}
		if err := pub.Publish(GraphIngestSubject, data); err != nil {
			return published, fmt.Errorf("publish resource %s: %w", res.ResourceID, err)
		}
		published++
	}
	return published, nil
}
