package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"
)

func init() {
	err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "orevalidate",
		Category:    "resource",
		Version:     "v1",
		Description: "Validated package resource and its statements",
		Factory:     func() any { return &ResourcePayload{} },
	})
	if err != nil {
		panic("failed to register ResourcePayload: " + err.Error())
	}
}

// ResourceType is the message type of published package resources.
var ResourceType = message.Type{Domain: "orevalidate", Category: "resource", Version: "v1"}

// ResourcePayload is one typed resource of a validated package.
type ResourcePayload struct {
	ResourceID  string
	DepositID   string
	Types       []string
	TripleData  []message.Triple
	PublishedAt time.Time
}

type resourceWire struct {
	ID          string           `json:"id"`
	DepositID   string           `json:"deposit_id,omitempty"`
	Types       []string         `json:"types"`
	Triples     []message.Triple `json:"triples"`
	PublishedAt time.Time        `json:"published_at"`
}

// EntityID returns the resource identifier.
func (r *ResourcePayload) EntityID() string { return r.ResourceID }

// Triples returns the resource's statements.
func (r *ResourcePayload) Triples() []message.Triple { return r.TripleData }

// Schema returns ResourceType.
func (r *ResourcePayload) Schema() message.Type { return ResourceType }

// Validate requires an id, at least one type and statements about the
// resource itself only.
func (r *ResourcePayload) Validate() error {
	if r.ResourceID == "" {
		return errors.New("resource ID is required")
	}
	if len(r.Types) == 0 {
		return fmt.Errorf("resource %s has no type", r.ResourceID)
	}
	if len(r.TripleData) == 0 {
		return fmt.Errorf("resource %s has no triples", r.ResourceID)
	}
	for _, t := range r.TripleData {
		if t.Subject != r.ResourceID {
			return fmt.Errorf("resource %s carries a triple about %s", r.ResourceID, t.Subject)
		}
	}
	return nil
}

func (r *ResourcePayload) MarshalJSON() ([]byte, error) {
	return json.Marshal(resourceWire{
		ID:          r.ResourceID,
		DepositID:   r.DepositID,
		Types:       r.Types,
		Triples:     r.TripleData,
		PublishedAt: r.PublishedAt,
	})
}

func (r *ResourcePayload) UnmarshalJSON(data []byte) error {
	var w resourceWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = ResourcePayload{
		ResourceID:  w.ID,
		DepositID:   w.DepositID,
		Types:       w.Types,
		TripleData:  w.Triples,
		PublishedAt: w.PublishedAt,
	}
	return nil
}
