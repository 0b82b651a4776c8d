package resourcemap

import (
	"github.com/c360studio/orevalidate/attribute"
	"github.com/c360studio/orevalidate/vocabulary/ore"
)

// entityClasses maps business object classes to attribute set names.
var entityClasses = map[string]string{
	ore.ClassPackage:    attribute.SetPackage,
	ore.ClassProject:    attribute.SetProject,
	ore.ClassCollection: attribute.SetCollection,
	ore.ClassDataItem:   attribute.SetDataItem,
	ore.ClassFile:       attribute.SetFile,
}

type literalAttr struct {
	name string
	typ  attribute.Type
}

var literalAttrs = map[string]literalAttr{
	ore.Title:       {attribute.Title, attribute.TypeString},
	ore.Description: {attribute.Description, attribute.TypeString},
	ore.Creator:     {attribute.Creator, attribute.TypeString},
	ore.Created:     {attribute.Created, attribute.TypeDateTime},
	ore.Modified:    {attribute.Modified, attribute.TypeDateTime},
	ore.Identifier:  {attribute.Identifier, attribute.TypeString},
	ore.Format:      {attribute.FileFormat, attribute.TypeString},
	ore.Extent:      {attribute.FileSize, attribute.TypeLong},
	ore.FileName:    {attribute.FileName, attribute.TypeString},
	ore.FilePath:    {attribute.FilePath, attribute.TypeString},
}

// SetNameForClass returns the attribute set name for a business object class.
func SetNameForClass(classIRI string) (string, bool) {
	name, ok := entityClasses[classIRI]
	return name, ok
}

// EntitySets builds the attribute sets describing node, one per business
// object class it is typed with.
func EntitySets(g *Graph, n *Node) []*attribute.Set {
	var sets []*attribute.Set
	for _, typ := range n.Types {
		setName, ok := entityClasses[typ]
		if !ok {
			continue
		}
		e, _ := attribute.EntityFor(setName)

		records := []attribute.Record{attribute.NewRecord(e.ResourceID, attribute.TypeURI, n.ID)}
		for _, doc := range n.Documents {
			records = append(records, attribute.NewRecord(e.ResourceMap, attribute.TypeURI, doc))
		}
		for _, child := range g.Targets(n.ID, EdgeAggregates) {
			records = append(records, attribute.NewRecord(e.Aggregates, attribute.TypeURI, child))
		}
		for _, parent := range g.Targets(n.ID, EdgeIsPartOf) {
			records = append(records, attribute.NewRecord(e.IsPartOf, attribute.TypeURI, parent))
		}
		for _, prop := range n.Properties {
			if la, ok := literalAttrs[prop.Predicate]; ok && !prop.Resource {
				records = append(records, attribute.NewRecord(la.name, la.typ, prop.Value))
			}
		}
		sets = append(sets, attribute.NewSet(setName, records...))
	}
	return sets
}

// Populate adds the entity attribute sets of every node in g to store, keyed
// by attribute.ResourceKey(set name, node id).
func Populate(g *Graph, store *attribute.Store) {
	for _, n := range g.Nodes() {
		for _, set := range EntitySets(g, n) {
			store.Add(attribute.ResourceKey(set.Name(), n.ID), set)
		}
	}
}
