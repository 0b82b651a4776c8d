// Package ore provides vocabulary predicates for OAI-ORE resource maps as
// they appear in curation packages.
//
// # Semstreams Integration
//
// This package follows semstreams vocabulary patterns:
//   - Predicates use three-level dotted notation (domain.category.property)
//   - Predicates are registered in init() using vocabulary.Register()
//   - IRI mappings use vocabulary.WithIRI() so exported graphs carry the
//     standard ORE and Dublin Core IRIs
//
// # Relationship Kinds
//
// Resource maps carry three kinds of relationship:
//   - aggregation: ore:aggregates, parent to child
//   - membership: dcterms:isPartOf, child to parent
//   - description: ore:isDescribedBy and ore:describes, linking resources
//     to the documents that describe them
//
// Description relationships are followed to merge documents but never
// count as data edges.
//
// # Business Object Classes
//
// Package entities are typed with classes from the business object model
// namespace:
//
//	Class       → Attribute set
//	Package     → ORE-ReM-Package
//	Project     → ORE-ReM-Project
//	Collection  → ORE-ReM-Collection
//	DataItem    → ORE-ReM-DataItem
//	File        → ORE-ReM-File
package ore
