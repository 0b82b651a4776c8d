package ore

import "github.com/c360studio/semstreams/vocabulary"

// Type links a resource to its rdf:type class.
const Type = "ore.entity.type"

// Aggregation predicates.
const (
	// Aggregates links an aggregation to a resource it contains.
	Aggregates = "ore.aggregation.aggregates"

	// IsAggregatedBy is the inverse of Aggregates.
	IsAggregatedBy = "ore.aggregation.is_aggregated_by"
)

// Description predicates. These link resources to documents and are never
// treated as data edges.
const (
	// Describes links a resource map to the aggregation it describes.
	Describes = "ore.description.describes"

	// IsDescribedBy links a resource to a resource map describing it.
	IsDescribedBy = "ore.description.is_described_by"
)

// Membership predicates.
const (
	// IsPartOf links a child resource to the parent it declares membership in.
	IsPartOf = "ore.membership.is_part_of"

	// HasPart is the inverse of IsPartOf.
	HasPart = "ore.membership.has_part"
)

// Literal metadata predicates.
const (
	Title       = "ore.metadata.title"
	Description = "ore.metadata.description"
	Creator     = "ore.metadata.creator"
	Created     = "ore.metadata.created"
	Modified    = "ore.metadata.modified"
	Identifier  = "ore.metadata.identifier"
	Format      = "ore.file.format"
	Extent      = "ore.file.extent"
	FileName    = "ore.file.name"
	FilePath    = "ore.file.path"
)

// iriPredicates maps IRIs found in documents to predicates. Legacy Dublin
// Core element IRIs map onto their dcterms equivalents.
var iriPredicates = map[string]string{}

// PredicateForIRI returns the predicate registered for a document IRI.
func PredicateForIRI(iri string) (string, bool) {
	p, ok := iriPredicates[iri]
	return p, ok
}

// IRI returns the standard IRI registered for predicate, or the predicate
// itself when none is registered.
func IRI(predicate string) string {
	meta := vocabulary.GetPredicateMetadata(predicate)
	if meta == nil || meta.StandardIRI == "" {
		return predicate
	}
	return meta.StandardIRI
}

func register(predicate, iri, description, dataType string, aliases ...string) {
	vocabulary.Register(predicate,
		vocabulary.WithDescription(description),
		vocabulary.WithDataType(dataType),
		vocabulary.WithIRI(iri))
	iriPredicates[iri] = predicate
	for _, alias := range aliases {
		iriPredicates[alias] = predicate
	}
}

func init() {
	register(Type, RDFType, "Resource class", "entity_id")
	register(Aggregates, IRIAggregates, "Resource aggregated by this aggregation", "entity_id")
	register(IsAggregatedBy, IRIIsAggregatedBy, "Aggregation containing this resource", "entity_id")
	register(Describes, IRIDescribes, "Aggregation described by this resource map", "entity_id")
	register(IsDescribedBy, IRIIsDescribedBy, "Resource map describing this resource", "entity_id")
	register(IsPartOf, IRIIsPartOf, "Parent resource this resource is declared part of", "entity_id")
	register(HasPart, IRIHasPart, "Child resource declared as a part of this resource", "entity_id")

	register(Title, IRITitle, "Resource title", "string", IRILegacyTitle)
	register(Description, IRIDescription, "Resource description", "string")
	register(Creator, IRICreator, "Resource creator", "string", IRILegacyCreator)
	register(Created, IRICreated, "Creation timestamp", "datetime")
	register(Modified, IRIModified, "Modification timestamp", "datetime")
	register(Identifier, IRIIdentifier, "Business identifier", "string", IRILegacyIdentifier)
	register(Format, IRIFormat, "File format (MIME type or format registry id)", "string", IRILegacyFormat)
	register(Extent, IRIExtent, "File size in bytes", "int")
	register(FileName, IRIFileName, "File name", "string")
	register(FilePath, IRIFilePath, "File location relative to the bag base directory", "string")
}
