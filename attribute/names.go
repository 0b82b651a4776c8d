package attribute

// Attribute set names (semantic types).
const (
	SetBagItProfile = "BagIt-Profile-Metadata"
	SetPackage      = "ORE-ReM-Package"
	SetProject      = "ORE-ReM-Project"
	SetCollection   = "ORE-ReM-Collection"
	SetDataItem     = "ORE-ReM-DataItem"
	SetFile         = "ORE-ReM-File"
)

// Profile metadata attribute names.
const (
	// PackageReM holds a file:// reference to a package resource map,
	// relative to the bag base directory.
	PackageReM = "Package-ORE-ReM"

	BagItProfileIdentifier = "BagIt-Profile-Identifier"
)

// Resource identifier attribute names.
const (
	PackageResourceID    = "Package-Resource-ID"
	ProjectResourceID    = "Project-Resource-ID"
	CollectionResourceID = "Collection-Resource-ID"
	DataItemResourceID   = "DataItem-Resource-ID"
	FileResourceID       = "File-Resource-ID"
)

// Aggregation attribute names. Values are the ids of aggregated resources.
const (
	PackageAggregates    = "Package-Aggregates"
	ProjectAggregates    = "Project-Aggregates"
	CollectionAggregates = "Collection-Aggregates"
	DataItemAggregates   = "DataItem-Aggregates"
	FileAggregates       = "File-Aggregates"
)

// Membership attribute names. Values are the ids of declared parents.
const (
	ProjectIsPartOf            = "Project-IsPartOf"
	CollectionIsPartOf         = "Collection-IsPartOf"
	DataItemIsPartOfCollection = "DataItem-IsPartOf-Collection"
	FileIsPartOfDataItem       = "File-IsPartOf-DataItem"
	PackageIsPartOf            = "Package-IsPartOf"
)

// Resource map attribute names record the document a resource was
// described in.
const (
	PackageResourceMap    = "Package-Resource-Map"
	ProjectResourceMap    = "Project-Resource-Map"
	CollectionResourceMap = "Collection-Resource-Map"
	DataItemResourceMap   = "DataItem-Resource-Map"
	FileResourceMap       = "File-Resource-Map"
)

// Literal metadata attribute names.
const (
	Title       = "Title"
	Description = "Description"
	Creator     = "Creator"
	Created     = "Created"
	Modified    = "Modified"
	Identifier  = "Identifier"
	FileName    = "File-Name"
	FileFormat  = "File-Format"
	FileSize    = "File-Size"
	FilePath    = "File-Path"
)

// Entity describes the attribute names used by one entity kind.
type Entity struct {
	Set         string
	ResourceID  string
	Aggregates  string
	IsPartOf    string
	ResourceMap string
}

// Entities lists the package entity kinds from outermost to innermost.
var Entities = []Entity{
	{Set: SetPackage, ResourceID: PackageResourceID, Aggregates: PackageAggregates, IsPartOf: PackageIsPartOf, ResourceMap: PackageResourceMap},
	{Set: SetProject, ResourceID: ProjectResourceID, Aggregates: ProjectAggregates, IsPartOf: ProjectIsPartOf, ResourceMap: ProjectResourceMap},
	{Set: SetCollection, ResourceID: CollectionResourceID, Aggregates: CollectionAggregates, IsPartOf: CollectionIsPartOf, ResourceMap: CollectionResourceMap},
	{Set: SetDataItem, ResourceID: DataItemResourceID, Aggregates: DataItemAggregates, IsPartOf: DataItemIsPartOfCollection, ResourceMap: DataItemResourceMap},
	{Set: SetFile, ResourceID: FileResourceID, Aggregates: FileAggregates, IsPartOf: FileIsPartOfDataItem, ResourceMap: FileResourceMap},
}

// EntityFor returns the entity description for a set name.
func EntityFor(setName string) (Entity, bool) {
	for _, e := range Entities {
		if e.Set == setName {
			return e, true
		}
	}
	return Entity{}, false
}

// ResourceIDNames returns the resource identifier attribute names of every
// entity kind.
func ResourceIDNames() []string {
	names := make([]string, len(Entities))
	for i, e := range Entities {
		names[i] = e.ResourceID
	}
	return names
}
