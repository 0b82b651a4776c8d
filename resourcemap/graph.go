package resourcemap

import "sort"

// EdgeKind classifies graph edges.
type EdgeKind int

// Edge kinds. Description edges (IsDescribedBy, Describes) link resources
// to documents and are not data edges.
const (
	EdgeAggregates EdgeKind = iota
	EdgeIsPartOf
	EdgeIsDescribedBy
	EdgeDescribes
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeAggregates:
		return "aggregates"
	case EdgeIsPartOf:
		return "isPartOf"
	case EdgeIsDescribedBy:
		return "isDescribedBy"
	case EdgeDescribes:
		return "describes"
	default:
		return "unknown"
	}
}

// IsDescription reports whether k is a description edge kind.
func (k EdgeKind) IsDescription() bool {
	return k == EdgeIsDescribedBy || k == EdgeDescribes
}

// Edge is a directed edge between two node indexes.
type Edge struct {
	From int
	To   int
	Kind EdgeKind
}

// Property is a predicate/value pair on a node that is not an edge.
type Property struct {
	// Predicate is the vocabulary predicate, or the raw IRI for predicates
	// outside the ORE vocabulary.
	Predicate string
	Value     string
	Datatype  string
	// Resource is true when Value is a resource reference, not a literal.
	Resource bool
}

// Node is a resource in the merged graph.
type Node struct {
	ID         string
	Types      []string
	Properties []Property
	// Documents lists the documents in which the node appeared as a subject.
	Documents []string
}

// HasType reports whether the node carries the rdf:type iri.
func (n *Node) HasType(iri string) bool {
	for _, t := range n.Types {
		if t == iri {
			return true
		}
	}
	return false
}

// Values returns the values of the node's properties with predicate.
func (n *Node) Values(predicate string) []string {
	var out []string
	for _, p := range n.Properties {
		if p.Predicate == predicate {
			out = append(out, p.Value)
		}
	}
	return out
}

func (n *Node) addType(iri string) {
	if !n.HasType(iri) {
		n.Types = append(n.Types, iri)
	}
}

func (n *Node) addDocument(doc string) {
	for _, d := range n.Documents {
		if d == doc {
			return
		}
	}
	n.Documents = append(n.Documents, doc)
}

// Graph is an arena of nodes indexed by resource id, with edges stored as
// index pairs. Identifiers are compared byte for byte.
type Graph struct {
	nodes []*Node
	index map[string]int
	edges []Edge
	seen  map[Edge]bool
	docs  []string
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		index: make(map[string]int),
		seen:  make(map[Edge]bool),
	}
}

// AddNode returns the index of the node with id, creating it if needed.
func (g *Graph) AddNode(id string) int {
	if i, ok := g.index[id]; ok {
		return i
	}
	g.nodes = append(g.nodes, &Node{ID: id})
	i := len(g.nodes) - 1
	g.index[id] = i
	return i
}

// AddEdge adds a directed edge between two ids, creating the nodes. Duplicate
// edges are ignored.
func (g *Graph) AddEdge(from, to string, kind EdgeKind) {
	e := Edge{From: g.AddNode(from), To: g.AddNode(to), Kind: kind}
	if g.seen[e] {
		return
	}
	g.seen[e] = true
	g.edges = append(g.edges, e)
}

// Node returns the node with id.
func (g *Graph) Node(id string) (*Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return g.nodes[i], true
}

// At returns the node at index i.
func (g *Graph) At(i int) *Node { return g.nodes[i] }

// Nodes returns every node in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Edges returns the edges of the given kinds, or every edge when no kind is
// given.
func (g *Graph) Edges(kinds ...EdgeKind) []Edge {
	if len(kinds) == 0 {
		out := make([]Edge, len(g.edges))
		copy(out, g.edges)
		return out
	}
	var out []Edge
	for _, e := range g.edges {
		for _, k := range kinds {
			if e.Kind == k {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// Targets returns the ids that id points to over edges of kind, sorted.
func (g *Graph) Targets(id string, kind EdgeKind) []string {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	var out []string
	for _, e := range g.edges {
		if e.From == i && e.Kind == kind {
			out = append(out, g.nodes[e.To].ID)
		}
	}
	sort.Strings(out)
	return out
}

// Sources returns the ids pointing to id over edges of kind, sorted.
func (g *Graph) Sources(id string, kind EdgeKind) []string {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	var out []string
	for _, e := range g.edges {
		if e.To == i && e.Kind == kind {
			out = append(out, g.nodes[e.From].ID)
		}
	}
	sort.Strings(out)
	return out
}

// Documents returns the documents merged into the graph, in load order.
func (g *Graph) Documents() []string {
	out := make([]string, len(g.docs))
	copy(out, g.docs)
	return out
}

// Merge adds the statements of a parsed document to the graph.
func (g *Graph) Merge(doc *Document) {
	g.docs = append(g.docs, doc.URI)
	for _, t := range doc.Triples {
		subject := g.nodes[g.AddNode(t.Subject)]
		subject.addDocument(doc.URI)

		if t.Predicate == rdfType && t.Resource {
			subject.addType(t.Object)
			continue
		}
		if kind, ok := edgeKinds[t.Predicate]; ok && t.Resource {
			g.AddEdge(t.Subject, t.Object, kind)
			continue
		}
		subject.Properties = append(subject.Properties, Property{
			Predicate: predicateName(t.Predicate),
			Value:     t.Object,
			Datatype:  t.Datatype,
			Resource:  t.Resource,
		})
	}
}
