package validation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/c360studio/orevalidate/attribute"
)

// NestingRule states that a Child is aggregated by a Parent, or directly by a
// Container, and that the Child's IsPartOf attribute must agree with the
// Parent's aggregation claim.
type NestingRule struct {
	Child     string
	Parent    string
	Container string
	IsPartOf  string
}

// DefaultNestingRules are the package nesting rules.
var DefaultNestingRules = []NestingRule{
	{
		Child:     attribute.SetDataItem,
		Parent:    attribute.SetCollection,
		Container: attribute.SetPackage,
		IsPartOf:  attribute.DataItemIsPartOfCollection,
	},
	{
		Child:     attribute.SetFile,
		Parent:    attribute.SetDataItem,
		Container: attribute.SetPackage,
		IsPartOf:  attribute.FileIsPartOfDataItem,
	},
}

// AggregationConstraintStage checks parent aggregation claims against child
// membership declarations. Every child is checked before the stage fails.
type AggregationConstraintStage struct {
	Rules  []NestingRule
	logger *slog.Logger
}

// NewAggregationConstraintStage creates the stage with DefaultNestingRules.
func NewAggregationConstraintStage(logger *slog.Logger) *AggregationConstraintStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &AggregationConstraintStage{Rules: DefaultNestingRules, logger: logger}
}

// Name returns the stage name.
func (s *AggregationConstraintStage) Name() string { return "aggregation-constraints" }

// Execute appends one message per violation to state.Errors and returns a
// ConstraintViolationError holding them if any were found.
func (s *AggregationConstraintStage) Execute(_ context.Context, _ string, state *WorkflowState) error {
	before := len(state.Errors)
	for _, rule := range s.Rules {
		for _, msg := range CheckNesting(state.Store, rule, s.logger) {
			state.addError(msg)
		}
	}
	if len(state.Errors) == before {
		return nil
	}
	msgs := make([]string, len(state.Errors)-before)
	copy(msgs, state.Errors[before:])
	return &ConstraintViolationError{Stage: s.Name(), Messages: msgs}
}

// CheckNesting returns one message for every child of rule whose membership
// declaration disagrees with the aggregation claims made about it.
//
//   - more than one IsPartOf value is always a violation;
//   - a single IsPartOf value must name a Parent that aggregates the child;
//   - no IsPartOf value is never a violation.
//
// When both a Parent and the Container aggregate a child, the Parent's claim
// is the one checked.
func CheckNesting(store *attribute.Store, rule NestingRule, logger *slog.Logger) []string {
	if logger == nil {
		logger = slog.Default()
	}
	child, ok := attribute.EntityFor(rule.Child)
	if !ok {
		return []string{fmt.Sprintf("nesting rule names unknown child type %q", rule.Child)}
	}
	childKind := kind(rule.Child)
	parentKind := kind(rule.Parent)

	var msgs []string
	for _, set := range store.OfType(rule.Child) {
		id, ok := set.First(child.ResourceID)
		if !ok {
			continue
		}
		partOf := attribute.Values(set, rule.IsPartOf)
		aggregators := aggregatorsByType(store, id)
		claimants := aggregators[rule.Parent]
		containers := aggregators[rule.Container]

		if len(claimants) > 0 && len(containers) > 0 {
			logger.Debug("Resource aggregated at two levels, checking parent claim",
				"child", id,
				"parents", claimants,
				"containers", containers)
		}

		switch {
		case len(partOf) > 1:
			msgs = append(msgs, fmt.Sprintf("%s %s declares %d isPartOf %s references (%s); at most one is allowed",
				childKind, id, len(partOf), parentKind, strings.Join(partOf, ", ")))

		case len(partOf) == 1 && !contains(claimants, partOf[0]):
			named := partOf[0]
			switch {
			case len(claimants) == 0 && len(containers) > 0:
				msgs = append(msgs, fmt.Sprintf("%s %s is aggregated only by %s %s but declares isPartOf %s %s",
					childKind, id, kind(rule.Container), strings.Join(containers, ", "), parentKind, named))
			case len(claimants) == 0:
				msgs = append(msgs, fmt.Sprintf("%s %s declares isPartOf %s %s, which does not aggregate it",
					childKind, id, parentKind, named))
			default:
				msgs = append(msgs, fmt.Sprintf("%s %s declares isPartOf %s %s but is aggregated by %s %s",
					childKind, id, parentKind, named, parentKind, strings.Join(claimants, ", ")))
			}
		}
	}
	return msgs
}

// aggregatorsByType returns the ids of the resources aggregating id, grouped
// by the set names those ids resolve to.
func aggregatorsByType(store *attribute.Store, id string) map[string][]string {
	names := make([]string, len(attribute.Entities))
	for i, e := range attribute.Entities {
		names[i] = e.Aggregates
	}

	var ids []string
	seen := make(map[string]bool)
	for _, set := range store.Containing(id, names...) {
		e, ok := attribute.EntityFor(set.Name())
		if !ok {
			continue
		}
		aggID, ok := set.First(e.ResourceID)
		if !ok || seen[aggID] {
			continue
		}
		seen[aggID] = true
		ids = append(ids, aggID)
	}

	out := make(map[string][]string)
	for _, aggID := range ids {
		for _, t := range Types([]string{aggID}, store)[aggID] {
			out[t] = append(out[t], aggID)
		}
	}
	return out
}

// kind returns the short entity name of a set name, e.g. "DataItem".
func kind(setName string) string {
	return strings.TrimPrefix(setName, "ORE-ReM-")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
