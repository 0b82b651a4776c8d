// Package export serializes a merged resource map graph as RDF.
//
// The exporter walks the graph in node insertion order and emits type
// assertions, edges and literal properties using the standard IRIs
// registered in the ORE vocabulary. Profiles control which statements are
// included; formats control the serialization.
package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/c360studio/orevalidate/resourcemap"
	"github.com/c360studio/orevalidate/vocabulary/ore"
)

// Format specifies the output serialization format.
type Format string

const (
	// FormatTurtle produces Turtle (.ttl) output.
	FormatTurtle Format = "turtle"

	// FormatNTriples produces N-Triples (.nt) output.
	FormatNTriples Format = "ntriples"

	// FormatJSONLD produces JSON-LD (.jsonld) output.
	FormatJSONLD Format = "jsonld"
)

// ParseFormat returns the format named s.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(s))
	if _, ok := FormatRegistry[f]; !ok {
		return "", fmt.Errorf("unsupported format: %s", s)
	}
	return f, nil
}

// Triple is one exported statement. Predicate is a full IRI.
type Triple struct {
	Subject   Term
	Predicate string
	Object    Term
}

// subjectBlock is the exported view of one node.
type subjectBlock struct {
	subject Term
	types   []string
	triples []Triple
}

// RDFExporter exports merged graphs to RDF with a configurable profile.
type RDFExporter struct {
	profile  Profile
	graphs   []*resourcemap.Graph
	prefixes map[string]string
}

// NewRDFExporter creates a new RDF exporter with the specified profile.
func NewRDFExporter(profile Profile) *RDFExporter {
	return &RDFExporter{
		profile:  profile,
		prefixes: defaultPrefixes(),
	}
}

// AddGraph adds a graph to be exported.
func (e *RDFExporter) AddGraph(g *resourcemap.Graph) {
	e.graphs = append(e.graphs, g)
}

// Triples returns every exported statement, type assertions included, in
// output order.
func (e *RDFExporter) Triples() []Triple {
	var out []Triple
	for _, b := range e.blocks() {
		for _, t := range b.types {
			out = append(out, Triple{Subject: b.subject, Predicate: ore.RDFType, Object: IRI(t)})
		}
		out = append(out, b.triples...)
	}
	return out
}

// Export serializes all graphs to the specified format.
func (e *RDFExporter) Export(format Format) (string, error) {
	switch format {
	case FormatTurtle:
		return e.toTurtle(), nil
	case FormatNTriples:
		return e.toNTriples(), nil
	case FormatJSONLD:
		return e.toJSONLD()
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func (e *RDFExporter) blocks() []subjectBlock {
	cfg := GetProfileConfig(e.profile)
	kinds := exportedEdgeKinds(e.profile)
	blanks := make(map[string]string)
	term := func(id string) Term {
		if !strings.HasPrefix(id, "_:") {
			return IRI(id)
		}
		label, ok := blanks[id]
		if !ok {
			label = "b" + strconv.Itoa(len(blanks)+1)
			blanks[id] = label
		}
		return Blank(label)
	}

	var out []subjectBlock
	for _, g := range e.graphs {
		for _, n := range g.Nodes() {
			if !cfg.IncludeDescriptions && n.HasType(ore.ClassResourceMap) {
				continue
			}
			b := subjectBlock{subject: term(n.ID), types: TypeIRIs(g, n, e.profile)}
			for _, kind := range kinds {
				predicate := ore.IRI(edgePredicates[kind])
				for _, target := range g.Targets(n.ID, kind) {
					b.triples = append(b.triples, Triple{Subject: b.subject, Predicate: predicate, Object: term(target)})
				}
			}
			for _, p := range n.Properties {
				obj := Literal(p.Value, p.Datatype)
				if p.Resource {
					obj = term(p.Value)
				}
				b.triples = append(b.triples, Triple{Subject: b.subject, Predicate: ore.IRI(p.Predicate), Object: obj})
			}
			if len(b.types) == 0 && len(b.triples) == 0 {
				continue
			}
			// Untyped nodes that only carry description links are
			// document plumbing, not data.
			if len(n.Types) == 0 && !cfg.IncludeUntyped && !hasNonDescription(b.triples) {
				continue
			}
			out = append(out, b)
		}
	}
	return out
}

func hasNonDescription(triples []Triple) bool {
	for _, t := range triples {
		if t.Predicate != ore.IRIIsDescribedBy && t.Predicate != ore.IRIDescribes {
			return true
		}
	}
	return false
}

// toTurtle serializes to Turtle format.
func (e *RDFExporter) toTurtle() string {
	w := NewTurtleWriter()
	for prefix, iri := range e.prefixes {
		w.SetPrefix(prefix, iri)
	}
	w.WritePrefixes()

	for _, b := range e.blocks() {
		w.WriteSubject(b.subject)
		for i, t := range b.types {
			w.WriteType(t, i == len(b.types)-1 && len(b.triples) == 0)
		}
		for i, t := range b.triples {
			w.WritePredicate(t.Predicate, t.Object, i == len(b.triples)-1)
		}
		w.WriteBlank()
	}
	return w.String()
}

// toNTriples serializes to N-Triples format.
func (e *RDFExporter) toNTriples() string {
	w := NewNTriplesWriter()
	for _, t := range e.Triples() {
		w.WriteTriple(t.Subject, t.Predicate, t.Object)
	}
	return w.String()
}

// toJSONLD serializes to JSON-LD format.
func (e *RDFExporter) toJSONLD() (string, error) {
	w := NewJSONLDWriter()
	w.SetContext(e.prefixes)
	for _, b := range e.blocks() {
		props := make(map[string]any)
		for _, t := range b.triples {
			v := formatObjectJSONLD(t.Object)
			if existing, ok := props[t.Predicate]; ok {
				props[t.Predicate] = append(existing.([]any), v)
			} else {
				props[t.Predicate] = []any{v}
			}
		}
		id := b.subject.Value
		if b.subject.Blank {
			id = "_:" + id
		}
		w.AddNode(id, b.types, props)
	}
	return w.String()
}
