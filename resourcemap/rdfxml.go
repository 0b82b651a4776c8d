package resourcemap

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/c360studio/orevalidate/vocabulary/ore"
)

const (
	rdfNS   = ore.RDFNamespace
	xmlNS   = "http://www.w3.org/XML/1998/namespace"
	rdfType = ore.RDFType
)

var edgeKinds = map[string]EdgeKind{
	ore.IRIAggregates:    EdgeAggregates,
	ore.IRIIsPartOf:      EdgeIsPartOf,
	ore.IRIIsDescribedBy: EdgeIsDescribedBy,
	ore.IRIDescribes:     EdgeDescribes,
}

// predicateName maps a document IRI to its vocabulary predicate, falling back
// to the IRI itself.
func predicateName(iri string) string {
	if p, ok := ore.PredicateForIRI(iri); ok {
		return p
	}
	return iri
}

// Triple is one statement parsed from a document. Predicate is the full
// predicate IRI.
type Triple struct {
	Subject   string
	Predicate string
	Object    string
	Datatype  string
	// Resource is true when Object is a resource reference, not a literal.
	Resource bool
	Line     int
}

// Document is a parsed resource map.
type Document struct {
	URI     string
	Triples []Triple
}

// Parse reads an RDF/XML document. uri identifies the document; it scopes
// blank node ids and resolves rdf:ID attributes.
//
// Documents may declare any encoding known to the WHATWG encoding registry.
// Input that is not well-formed XML fails with ErrMalformedDocument;
// well-formed XML that is not valid RDF/XML fails with
// ErrMalformedGraphSyntax.
func Parse(r io.Reader, uri string) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	p := &parser{
		dec:  dec,
		uri:  uri,
		base: uri,
		doc:  &Document{URI: uri},
	}
	if err := p.parseDocument(); err != nil {
		if errors.Is(err, ErrMalformedGraphSyntax) {
			// Markup errors anywhere in the input take precedence.
			if merr := p.wellFormed(); merr != nil {
				return nil, merr
			}
		}
		return nil, err
	}
	return p.doc, nil
}

// wellFormed reads the remaining input, reporting the first markup error.
func (p *parser) wellFormed() error {
	for {
		_, err := p.dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return p.markupErr(err)
		}
	}
}

type parser struct {
	dec   *xml.Decoder
	uri   string
	base  string
	blank int
	doc   *Document
}

func (p *parser) line() int {
	line, _ := p.dec.InputPos()
	return line
}

func (p *parser) markupErr(err error) error {
	line := p.line()
	var syn *xml.SyntaxError
	if errors.As(err, &syn) {
		line = syn.Line
	}
	return &DocumentError{Path: p.uri, Line: line, Err: ErrMalformedDocument, Detail: err.Error()}
}

func (p *parser) syntaxErr(format string, args ...any) error {
	return &DocumentError{Path: p.uri, Line: p.line(), Err: ErrMalformedGraphSyntax, Detail: fmt.Sprintf(format, args...)}
}

// next returns the next element, end element or character data token,
// skipping comments, processing instructions and directives.
func (p *parser) next() (xml.Token, error) {
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement, xml.EndElement:
			return t, nil
		case xml.CharData:
			return t.Copy(), nil
		}
	}
}

func (p *parser) parseDocument() error {
	var root *xml.StartElement
	for root == nil {
		tok, err := p.next()
		if err == io.EOF {
			return p.markupErr(errors.New("document has no root element"))
		}
		if err != nil {
			return p.markupErr(err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			root = &t
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return p.markupErr(errors.New("text before root element"))
			}
		}
	}

	if root.Name.Space != rdfNS || root.Name.Local != "RDF" {
		return p.syntaxErr("root element is {%s}%s, want rdf:RDF", root.Name.Space, root.Name.Local)
	}
	if base := attr(root.Attr, xmlNS, "base"); base != "" {
		p.base = base
	}

	for {
		tok, err := p.next()
		if err != nil {
			return p.markupErr(err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return p.drain()
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return p.syntaxErr("unexpected text inside rdf:RDF")
			}
		case xml.StartElement:
			if _, err := p.parseNode(t); err != nil {
				return err
			}
		}
	}
}

// drain consumes the rest of the input so trailing markup errors surface.
func (p *parser) drain() error {
	for {
		tok, err := p.next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return p.markupErr(err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return p.markupErr(fmt.Errorf("unexpected element <%s> after root", t.Name.Local))
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return p.markupErr(errors.New("text after root element"))
			}
		}
	}
}

func (p *parser) newBlank() string {
	p.blank++
	return "_:" + p.uri + "#b" + strconv.Itoa(p.blank)
}

func (p *parser) emit(t Triple) {
	t.Line = p.line()
	p.doc.Triples = append(p.doc.Triples, t)
}

// subject determines the subject of a node element.
func (p *parser) subject(el xml.StartElement) (string, error) {
	about := attrPtr(el.Attr, rdfNS, "about")
	id := attrPtr(el.Attr, rdfNS, "ID")
	nodeID := attrPtr(el.Attr, rdfNS, "nodeID")

	set := 0
	for _, v := range []*string{about, id, nodeID} {
		if v != nil {
			set++
		}
	}
	if set > 1 {
		return "", p.syntaxErr("node element <%s> has more than one of rdf:about, rdf:ID, rdf:nodeID", el.Name.Local)
	}
	switch {
	case about != nil:
		if *about == "" {
			return p.base, nil
		}
		return *about, nil
	case id != nil:
		if *id == "" {
			return "", p.syntaxErr("empty rdf:ID on <%s>", el.Name.Local)
		}
		return p.base + "#" + *id, nil
	case nodeID != nil:
		if *nodeID == "" {
			return "", p.syntaxErr("empty rdf:nodeID on <%s>", el.Name.Local)
		}
		return "_:" + p.uri + "#" + *nodeID, nil
	default:
		return p.newBlank(), nil
	}
}

// parseNode parses a node element whose start tag has been read and returns
// its subject.
func (p *parser) parseNode(el xml.StartElement) (string, error) {
	if el.Name.Space == rdfNS && isReservedNodeName(el.Name.Local) {
		return "", p.syntaxErr("rdf:%s is not allowed as a node element", el.Name.Local)
	}
	subject, err := p.subject(el)
	if err != nil {
		return "", err
	}
	if !(el.Name.Space == rdfNS && el.Name.Local == "Description") {
		p.emit(Triple{Subject: subject, Predicate: rdfType, Object: el.Name.Space + el.Name.Local, Resource: true})
	}
	if err := p.propertyAttrs(subject, el.Attr); err != nil {
		return "", err
	}
	if err := p.parseProperties(subject); err != nil {
		return "", err
	}
	return subject, nil
}

// propertyAttrs emits the property attributes of a node element.
func (p *parser) propertyAttrs(subject string, attrs []xml.Attr) error {
	for _, a := range attrs {
		switch {
		case a.Name.Space == rdfNS:
			switch a.Name.Local {
			case "about", "ID", "nodeID":
			case "type":
				p.emit(Triple{Subject: subject, Predicate: rdfType, Object: a.Value, Resource: true})
			default:
				return p.syntaxErr("rdf:%s is not allowed as a property attribute", a.Name.Local)
			}
		case a.Name.Space == xmlNS || a.Name.Space == "xmlns" || a.Name.Local == "xmlns" && a.Name.Space == "":
		case a.Name.Space == "":
			return p.syntaxErr("unqualified attribute %q", a.Name.Local)
		default:
			p.emit(Triple{Subject: subject, Predicate: a.Name.Space + a.Name.Local, Object: a.Value})
		}
	}
	return nil
}

// parseProperties parses property elements until the end of the enclosing
// node element.
func (p *parser) parseProperties(subject string) error {
	for {
		tok, err := p.next()
		if err != nil {
			return p.markupErr(err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return nil
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return p.syntaxErr("unexpected text inside node element for %s", subject)
			}
		case xml.StartElement:
			if err := p.parseProperty(subject, t); err != nil {
				return err
			}
		}
	}
}

func (p *parser) parseProperty(subject string, el xml.StartElement) error {
	if el.Name.Space == "" {
		return p.syntaxErr("property element <%s> has no namespace", el.Name.Local)
	}
	if el.Name.Space == rdfNS && isReservedPropertyName(el.Name.Local) {
		return p.syntaxErr("rdf:%s is not allowed as a property element", el.Name.Local)
	}
	predicate := el.Name.Space + el.Name.Local

	resource := attrPtr(el.Attr, rdfNS, "resource")
	nodeID := attrPtr(el.Attr, rdfNS, "nodeID")
	parseType := attrPtr(el.Attr, rdfNS, "parseType")
	datatype := attr(el.Attr, rdfNS, "datatype")

	if resource != nil && nodeID != nil {
		return p.syntaxErr("property %s has both rdf:resource and rdf:nodeID", el.Name.Local)
	}

	if parseType != nil {
		if resource != nil || nodeID != nil || datatype != "" {
			return p.syntaxErr("rdf:parseType on %s cannot be combined with rdf:resource, rdf:nodeID or rdf:datatype", el.Name.Local)
		}
		switch *parseType {
		case "Resource":
			object := p.newBlank()
			p.emit(Triple{Subject: subject, Predicate: predicate, Object: object, Resource: true})
			return p.parseProperties(object)
		case "Literal":
			text, err := p.literalContent()
			if err != nil {
				return err
			}
			p.emit(Triple{Subject: subject, Predicate: predicate, Object: text, Datatype: rdfNS + "XMLLiteral"})
			return nil
		default:
			return p.syntaxErr("unsupported rdf:parseType %q on %s", *parseType, el.Name.Local)
		}
	}

	if resource != nil || nodeID != nil {
		object := ""
		if resource != nil {
			object = *resource
		} else {
			object = "_:" + p.uri + "#" + *nodeID
		}
		if err := p.expectEmpty(el); err != nil {
			return err
		}
		p.emit(Triple{Subject: subject, Predicate: predicate, Object: object, Resource: true})
		return p.propertyAttrs(object, withoutRDF(el.Attr, "resource", "nodeID"))
	}

	// Literal text or a single nested node element.
	var text strings.Builder
	object := ""
	for {
		tok, err := p.next()
		if err != nil {
			return p.markupErr(err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			if object != "" {
				return p.syntaxErr("property %s contains more than one node element", el.Name.Local)
			}
			if datatype != "" {
				return p.syntaxErr("property %s has rdf:datatype and a nested node element", el.Name.Local)
			}
			object, err = p.parseNode(t)
			if err != nil {
				return err
			}
		case xml.EndElement:
			if object != "" {
				if strings.TrimSpace(text.String()) != "" {
					return p.syntaxErr("property %s mixes text and a node element", el.Name.Local)
				}
				p.emit(Triple{Subject: subject, Predicate: predicate, Object: object, Resource: true})
				return nil
			}
			if hasPropertyAttrs(el.Attr) && text.Len() == 0 {
				blank := p.newBlank()
				p.emit(Triple{Subject: subject, Predicate: predicate, Object: blank, Resource: true})
				return p.propertyAttrs(blank, withoutRDF(el.Attr, "datatype"))
			}
			p.emit(Triple{Subject: subject, Predicate: predicate, Object: text.String(), Datatype: datatype})
			return nil
		}
	}
}

// expectEmpty consumes the content of a property element that must be empty.
func (p *parser) expectEmpty(el xml.StartElement) error {
	for {
		tok, err := p.next()
		if err != nil {
			return p.markupErr(err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return nil
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return p.syntaxErr("property %s has rdf:resource and text content", el.Name.Local)
			}
		case xml.StartElement:
			return p.syntaxErr("property %s has rdf:resource and child elements", el.Name.Local)
		}
	}
}

// literalContent returns the character data inside an rdf:parseType="Literal"
// property, re-serialising nested markup.
func (p *parser) literalContent() (string, error) {
	var sb strings.Builder
	enc := xml.NewEncoder(&sb)
	depth := 0
	for {
		tok, err := p.next()
		if err != nil {
			return "", p.markupErr(err)
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				if err := enc.Flush(); err != nil {
					return "", p.markupErr(err)
				}
				return sb.String(), nil
			}
			depth--
		}
		if err := enc.EncodeToken(tok); err != nil {
			return "", p.markupErr(err)
		}
	}
}

func isReservedNodeName(local string) bool {
	switch local {
	case "RDF", "ID", "about", "parseType", "resource", "nodeID", "datatype", "li",
		"aboutEach", "aboutEachPrefix", "bagID":
		return true
	}
	return false
}

func isReservedPropertyName(local string) bool {
	switch local {
	case "RDF", "Description", "ID", "about", "parseType", "resource", "nodeID", "datatype",
		"aboutEach", "aboutEachPrefix", "bagID":
		return true
	}
	return false
}

func hasPropertyAttrs(attrs []xml.Attr) bool {
	for _, a := range attrs {
		if a.Name.Space != "" && a.Name.Space != rdfNS && a.Name.Space != xmlNS && a.Name.Space != "xmlns" {
			return true
		}
	}
	return false
}

func withoutRDF(attrs []xml.Attr, locals ...string) []xml.Attr {
	out := make([]xml.Attr, 0, len(attrs))
	for _, a := range attrs {
		skip := false
		if a.Name.Space == rdfNS {
			for _, l := range locals {
				if a.Name.Local == l {
					skip = true
				}
			}
		}
		if !skip {
			out = append(out, a)
		}
	}
	return out
}

func attrPtr(attrs []xml.Attr, space, local string) *string {
	for i := range attrs {
		if attrs[i].Name.Space == space && attrs[i].Name.Local == local {
			return &attrs[i].Value
		}
	}
	return nil
}

func attr(attrs []xml.Attr, space, local string) string {
	if v := attrPtr(attrs, space, local); v != nil {
		return *v
	}
	return ""
}
