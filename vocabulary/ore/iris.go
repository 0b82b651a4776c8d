package ore

// Namespace IRIs.
const (
	RDFNamespace     = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	ORENamespace     = "http://www.openarchives.org/ore/terms/"
	DCTermsNamespace = "http://purl.org/dc/terms/"
	DCNamespace      = "http://purl.org/dc/elements/1.1/"
	XSDNamespace     = "http://www.w3.org/2001/XMLSchema#"

	// BusinessObjectNamespace is the namespace of the package entity classes.
	BusinessObjectNamespace = "http://dataconservancy.org/business-object-model#"
)

// RDFType is the rdf:type IRI.
const RDFType = RDFNamespace + "type"

// Class IRIs.
const (
	ClassResourceMap        = ORENamespace + "ResourceMap"
	ClassAggregation        = ORENamespace + "Aggregation"
	ClassAggregatedResource = ORENamespace + "AggregatedResource"

	ClassPackage    = BusinessObjectNamespace + "Package"
	ClassProject    = BusinessObjectNamespace + "Project"
	ClassCollection = BusinessObjectNamespace + "Collection"
	ClassDataItem   = BusinessObjectNamespace + "DataItem"
	ClassFile       = BusinessObjectNamespace + "File"
)

// Relationship IRIs.
const (
	IRIAggregates       = ORENamespace + "aggregates"
	IRIIsAggregatedBy   = ORENamespace + "isAggregatedBy"
	IRIDescribes        = ORENamespace + "describes"
	IRIIsDescribedBy    = ORENamespace + "isDescribedBy"
	IRIIsPartOf         = DCTermsNamespace + "isPartOf"
	IRIHasPart          = DCTermsNamespace + "hasPart"
	IRITitle            = DCTermsNamespace + "title"
	IRIDescription      = DCTermsNamespace + "description"
	IRICreator          = DCTermsNamespace + "creator"
	IRICreated          = DCTermsNamespace + "created"
	IRIModified         = DCTermsNamespace + "modified"
	IRIIdentifier       = DCTermsNamespace + "identifier"
	IRIFormat           = DCTermsNamespace + "format"
	IRIExtent           = DCTermsNamespace + "extent"
	IRIFileName         = BusinessObjectNamespace + "hasFileName"
	IRIFilePath         = BusinessObjectNamespace + "hasPath"
	IRILegacyTitle      = DCNamespace + "title"
	IRILegacyCreator    = DCNamespace + "creator"
	IRILegacyFormat     = DCNamespace + "format"
	IRILegacyIdentifier = DCNamespace + "identifier"
)
