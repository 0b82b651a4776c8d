package export

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/c360studio/orevalidate/vocabulary/ore"
)

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string

	// Description describes the format.
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatTurtle: {
		Name:        FormatTurtle,
		MIMEType:    "text/turtle",
		Extension:   ".ttl",
		Description: "Turtle - Terse RDF Triple Language",
	},
	FormatNTriples: {
		Name:        FormatNTriples,
		MIMEType:    "application/n-triples",
		Extension:   ".nt",
		Description: "N-Triples - Line-based RDF format",
	},
	FormatJSONLD: {
		Name:        FormatJSONLD,
		MIMEType:    "application/ld+json",
		Extension:   ".jsonld",
		Description: "JSON-LD - JSON for Linked Data",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// Term is an RDF term: an IRI, a blank node or a literal.
type Term struct {
	Value    string
	IRI      bool
	Blank    bool
	Datatype string
}

// IRI returns an IRI term.
func IRI(v string) Term { return Term{Value: v, IRI: true} }

// Blank returns a blank node term with the given label.
func Blank(label string) Term { return Term{Value: label, Blank: true} }

// Literal returns a literal term. An empty datatype is a plain string.
func Literal(v, datatype string) Term { return Term{Value: v, Datatype: datatype} }

// defaultPrefixes returns the standard namespace prefixes for RDF export.
func defaultPrefixes() map[string]string {
	return map[string]string{
		"rdf":     ore.RDFNamespace,
		"xsd":     ore.XSDNamespace,
		"ore":     ore.ORENamespace,
		"dcterms": ore.DCTermsNamespace,
		"dcs":     ore.BusinessObjectNamespace,
	}
}

// compact shortens iri to prefix:local when a prefix covers it and the
// local part needs no escaping.
func compact(prefixes map[string]string, iri string) (string, bool) {
	for prefix, ns := range prefixes {
		if !strings.HasPrefix(iri, ns) {
			continue
		}
		local := iri[len(ns):]
		if local != "" && isSimpleLocal(local) {
			return prefix + ":" + local, true
		}
	}
	return "", false
}

func isSimpleLocal(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' || r == '-') {
			return false
		}
	}
	return true
}

// formatObject formats a term for Turtle output.
func formatObject(prefixes map[string]string, t Term) string {
	switch {
	case t.IRI:
		if c, ok := compact(prefixes, t.Value); ok {
			return c
		}
		return fmt.Sprintf("<%s>", t.Value)
	case t.Blank:
		return "_:" + t.Value
	case t.Datatype != "":
		dt := fmt.Sprintf("<%s>", t.Datatype)
		if c, ok := compact(prefixes, t.Datatype); ok {
			dt = c
		}
		return fmt.Sprintf("\"%s\"^^%s", escapeString(t.Value), dt)
	default:
		return fmt.Sprintf("\"%s\"", escapeString(t.Value))
	}
}

// formatObjectNTriples formats a term for N-Triples output.
func formatObjectNTriples(t Term) string {
	switch {
	case t.IRI:
		return fmt.Sprintf("<%s>", t.Value)
	case t.Blank:
		return "_:" + t.Value
	case t.Datatype != "":
		return fmt.Sprintf("\"%s\"^^<%s>", escapeString(t.Value), t.Datatype)
	default:
		return fmt.Sprintf("\"%s\"", escapeString(t.Value))
	}
}

// formatObjectJSONLD converts a term to its JSON-LD value.
func formatObjectJSONLD(t Term) any {
	switch {
	case t.IRI:
		return map[string]string{"@id": t.Value}
	case t.Blank:
		return map[string]string{"@id": "_:" + t.Value}
	case t.Datatype != "":
		return map[string]string{"@value": t.Value, "@type": t.Datatype}
	default:
		return t.Value
	}
}

// escapeString escapes special characters in strings for RDF serialization.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}

// TurtleWriter writes RDF in Turtle format.
type TurtleWriter struct {
	prefixes map[string]string
	sb       strings.Builder
}

// NewTurtleWriter creates a new Turtle writer with default prefixes.
func NewTurtleWriter() *TurtleWriter {
	return &TurtleWriter{
		prefixes: defaultPrefixes(),
	}
}

// SetPrefix sets a namespace prefix.
func (w *TurtleWriter) SetPrefix(prefix, iri string) {
	w.prefixes[prefix] = iri
}

// WritePrefixes writes prefix declarations.
func (w *TurtleWriter) WritePrefixes() {
	// Sort prefixes for consistent output
	keys := make([]string, 0, len(w.prefixes))
	for k := range w.prefixes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, prefix := range keys {
		w.sb.WriteString(fmt.Sprintf("@prefix %s: <%s> .\n", prefix, w.prefixes[prefix]))
	}
	w.sb.WriteString("\n")
}

// WriteSubject starts a new subject block.
func (w *TurtleWriter) WriteSubject(subject Term) {
	w.sb.WriteString(formatObject(w.prefixes, subject) + "\n")
}

// WriteType writes a type assertion.
func (w *TurtleWriter) WriteType(typeIRI string, last bool) {
	w.sb.WriteString(fmt.Sprintf("    a %s%s\n", formatObject(w.prefixes, IRI(typeIRI)), terminator(last)))
}

// WritePredicate writes a predicate-object pair.
func (w *TurtleWriter) WritePredicate(predicateIRI string, object Term, last bool) {
	w.sb.WriteString(fmt.Sprintf("    %s %s%s\n",
		formatObject(w.prefixes, IRI(predicateIRI)), formatObject(w.prefixes, object), terminator(last)))
}

// WriteBlank writes a blank line for readability.
func (w *TurtleWriter) WriteBlank() {
	w.sb.WriteString("\n")
}

// String returns the accumulated Turtle output.
func (w *TurtleWriter) String() string {
	return w.sb.String()
}

func terminator(last bool) string {
	if last {
		return " ."
	}
	return " ;"
}

// NTriplesWriter writes RDF in N-Triples format.
type NTriplesWriter struct {
	sb strings.Builder
}

// NewNTriplesWriter creates a new N-Triples writer.
func NewNTriplesWriter() *NTriplesWriter {
	return &NTriplesWriter{}
}

// WriteTriple writes a single triple.
func (w *NTriplesWriter) WriteTriple(subject Term, predicate string, object Term) {
	w.sb.WriteString(fmt.Sprintf("%s <%s> %s .\n", formatObjectNTriples(subject), predicate, formatObjectNTriples(object)))
}

// WriteTypeTriple writes a type assertion triple.
func (w *NTriplesWriter) WriteTypeTriple(subject Term, typeIRI string) {
	w.WriteTriple(subject, ore.RDFType, IRI(typeIRI))
}

// String returns the accumulated N-Triples output.
func (w *NTriplesWriter) String() string {
	return w.sb.String()
}

// JSONLDDocument represents a JSON-LD document structure.
type JSONLDDocument struct {
	Context map[string]any `json:"@context"`
	Graph   []JSONLDNode   `json:"@graph"`
}

// JSONLDNode represents a node in a JSON-LD graph.
type JSONLDNode struct {
	ID         string         `json:"@id"`
	Type       []string       `json:"@type,omitempty"`
	Properties map[string]any `json:"-"`
}

// MarshalJSON implements custom JSON marshaling for JSONLDNode.
func (n JSONLDNode) MarshalJSON() ([]byte, error) {
	// Create a map with all fields
	m := make(map[string]any)
	m["@id"] = n.ID
	if len(n.Type) > 0 {
		m["@type"] = n.Type
	}
	for k, v := range n.Properties {
		m[k] = v
	}
	return json.Marshal(m)
}

// JSONLDWriter writes RDF in JSON-LD format.
type JSONLDWriter struct {
	doc JSONLDDocument
}

// NewJSONLDWriter creates a new JSON-LD writer.
func NewJSONLDWriter() *JSONLDWriter {
	return &JSONLDWriter{
		doc: JSONLDDocument{
			Context: make(map[string]any),
			Graph:   make([]JSONLDNode, 0),
		},
	}
}

// SetContext sets the @context with prefixes.
func (w *JSONLDWriter) SetContext(prefixes map[string]string) {
	for k, v := range prefixes {
		w.doc.Context[k] = v
	}
}

// AddNode adds a node to the graph.
func (w *JSONLDWriter) AddNode(id string, types []string, properties map[string]any) {
	w.doc.Graph = append(w.doc.Graph, JSONLDNode{
		ID:         id,
		Type:       types,
		Properties: properties,
	})
}

// Document returns the accumulated document.
func (w *JSONLDWriter) Document() *JSONLDDocument {
	return &w.doc
}

// String returns the JSON-LD output.
func (w *JSONLDWriter) String() (string, error) {
	data, err := json.MarshalIndent(w.doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal JSON-LD: %w", err)
	}
	return string(data) + "\n", nil
}

// ParseJSONLD reads a JSON-LD document produced by JSONLDWriter. Node
// properties are not decoded.
func ParseJSONLD(jsonStr string) (*JSONLDDocument, error) {
	var doc JSONLDDocument
	if err := json.Unmarshal([]byte(jsonStr), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
