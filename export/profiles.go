package export

import (
	"sort"

	"github.com/c360studio/orevalidate/resourcemap"
	"github.com/c360studio/orevalidate/vocabulary/ore"
)

// Profile determines which statements of the merged graph are exported.
type Profile string

const (
	// ProfileData exports entity types, aggregation and membership edges and
	// literal metadata.
	ProfileData Profile = "data"

	// ProfileORE adds inferred ore:Aggregation and ore:AggregatedResource
	// type assertions to the data profile.
	ProfileORE Profile = "ore"

	// ProfileFull exports everything, including resource map documents and
	// description links.
	ProfileFull Profile = "full"
)

// ProfileConfig contains configuration for an export profile.
type ProfileConfig struct {
	// Name is the profile identifier.
	Name Profile

	// Description describes the profile.
	Description string

	// IncludeDescriptions exports ore:describes and ore:isDescribedBy links.
	IncludeDescriptions bool

	// InferORETypes adds ore:Aggregation to every aggregating node and
	// ore:AggregatedResource to every aggregated one.
	InferORETypes bool

	// IncludeUntyped exports nodes carrying no rdf:type.
	IncludeUntyped bool
}

// Profiles contains the configuration for all available export profiles.
var Profiles = map[Profile]ProfileConfig{
	ProfileData: {
		Name:        ProfileData,
		Description: "Entity types, aggregation, membership and literal metadata",
	},
	ProfileORE: {
		Name:          ProfileORE,
		Description:   "Data profile plus inferred OAI-ORE aggregation types",
		InferORETypes: true,
	},
	ProfileFull: {
		Name:                ProfileFull,
		Description:         "Every merged statement including resource map descriptions",
		IncludeDescriptions: true,
		InferORETypes:       true,
		IncludeUntyped:      true,
	},
}

// GetProfileConfig returns the configuration for a profile, falling back to
// ProfileData for unknown names.
func GetProfileConfig(profile Profile) ProfileConfig {
	if cfg, ok := Profiles[profile]; ok {
		return cfg
	}
	return Profiles[ProfileData]
}

// TypeIRIs returns the sorted type IRIs asserted for n under profile.
func TypeIRIs(g *resourcemap.Graph, n *resourcemap.Node, profile Profile) []string {
	cfg := GetProfileConfig(profile)
	seen := make(map[string]bool, len(n.Types)+2)
	var types []string
	add := func(iri string) {
		if !seen[iri] {
			seen[iri] = true
			types = append(types, iri)
		}
	}
	for _, t := range n.Types {
		if t == ore.ClassResourceMap && !cfg.IncludeDescriptions {
			continue
		}
		add(t)
	}
	if cfg.InferORETypes {
		if len(g.Targets(n.ID, resourcemap.EdgeAggregates)) > 0 {
			add(ore.ClassAggregation)
		}
		if len(g.Sources(n.ID, resourcemap.EdgeAggregates)) > 0 {
			add(ore.ClassAggregatedResource)
		}
	}
	sort.Strings(types)
	return types
}

// edgePredicates maps exported edge kinds to vocabulary predicates.
var edgePredicates = map[resourcemap.EdgeKind]string{
	resourcemap.EdgeAggregates:    ore.Aggregates,
	resourcemap.EdgeIsPartOf:      ore.IsPartOf,
	resourcemap.EdgeIsDescribedBy: ore.IsDescribedBy,
	resourcemap.EdgeDescribes:     ore.Describes,
}

// exportedEdgeKinds returns the edge kinds exported under profile, in
// output order.
func exportedEdgeKinds(profile Profile) []resourcemap.EdgeKind {
	kinds := []resourcemap.EdgeKind{resourcemap.EdgeAggregates, resourcemap.EdgeIsPartOf}
	if GetProfileConfig(profile).IncludeDescriptions {
		kinds = append(kinds, resourcemap.EdgeIsDescribedBy, resourcemap.EdgeDescribes)
	}
	return kinds
}
