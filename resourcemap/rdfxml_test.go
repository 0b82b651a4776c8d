package resourcemap

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/orevalidate/vocabulary/ore"
)

const header = `<?xml version="1.0"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns:ore="http://www.openarchives.org/ore/terms/"
         xmlns:dcterms="http://purl.org/dc/terms/"
         xmlns:dcs="http://dataconservancy.org/business-object-model#">
`

func parseString(t *testing.T, body string) (*Document, error) {
	t.Helper()
	return Parse(strings.NewReader(header+body+"</rdf:RDF>\n"), "file:///rem.xml")
}

func findTriples(doc *Document, predicate string) []Triple {
	var out []Triple
	for _, tr := range doc.Triples {
		if tr.Predicate == predicate {
			out = append(out, tr)
		}
	}
	return out
}

func TestParse_TypedNodeAndProperties(t *testing.T) {
	doc, err := parseString(t, `
  <dcs:Collection rdf:about="urn:c1">
    <dcterms:title>Birds</dcterms:title>
    <ore:aggregates rdf:resource="urn:d1"/>
    <dcterms:created rdf:datatype="http://www.w3.org/2001/XMLSchema#dateTime">2024-01-02T03:04:05Z</dcterms:created>
  </dcs:Collection>
`)
	require.NoError(t, err)
	assert.Equal(t, "file:///rem.xml", doc.URI)

	types := findTriples(doc, ore.RDFType)
	require.Len(t, types, 1)
	assert.Equal(t, "urn:c1", types[0].Subject)
	assert.Equal(t, ore.ClassCollection, types[0].Object)
	assert.True(t, types[0].Resource)

	titles := findTriples(doc, ore.IRITitle)
	require.Len(t, titles, 1)
	assert.Equal(t, "Birds", titles[0].Object)
	assert.False(t, titles[0].Resource)

	agg := findTriples(doc, ore.IRIAggregates)
	require.Len(t, agg, 1)
	assert.Equal(t, "urn:d1", agg[0].Object)
	assert.True(t, agg[0].Resource)
	assert.Greater(t, agg[0].Line, 0)

	created := findTriples(doc, ore.IRICreated)
	require.Len(t, created, 1)
	assert.Equal(t, ore.XSDNamespace+"dateTime", created[0].Datatype)
}

func TestParse_SubjectForms(t *testing.T) {
	doc, err := parseString(t, `
  <rdf:Description rdf:ID="frag" dcterms:title="by id"/>
  <rdf:Description rdf:nodeID="n1">
    <dcterms:title>by node id</dcterms:title>
  </rdf:Description>
  <rdf:Description rdf:about="">
    <ore:describes rdf:nodeID="n1"/>
  </rdf:Description>
  <rdf:Description>
    <dcterms:title>anonymous</dcterms:title>
  </rdf:Description>
`)
	require.NoError(t, err)

	subjects := map[string]string{}
	for _, tr := range findTriples(doc, ore.IRITitle) {
		subjects[tr.Object] = tr.Subject
	}
	assert.Equal(t, "file:///rem.xml#frag", subjects["by id"])
	assert.Equal(t, "_:file:///rem.xml#n1", subjects["by node id"])
	assert.True(t, strings.HasPrefix(subjects["anonymous"], "_:file:///rem.xml#b"))

	desc := findTriples(doc, ore.IRIDescribes)
	require.Len(t, desc, 1)
	assert.Equal(t, "file:///rem.xml", desc[0].Subject)
	assert.Equal(t, "_:file:///rem.xml#n1", desc[0].Object)
}

func TestParse_XMLBase(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
    xmlns:dcterms="http://purl.org/dc/terms/" xml:base="urn:base">
  <rdf:Description rdf:ID="x"><dcterms:title>t</dcterms:title></rdf:Description>
</rdf:RDF>`), "file:///a.xml")
	require.NoError(t, err)
	require.Len(t, doc.Triples, 1)
	assert.Equal(t, "urn:base#x", doc.Triples[0].Subject)
}

func TestParse_NestedNodes(t *testing.T) {
	doc, err := parseString(t, `
  <dcs:DataItem rdf:about="urn:d1">
    <ore:aggregates>
      <dcs:File rdf:about="urn:f1">
        <dcterms:isPartOf rdf:resource="urn:d1"/>
      </dcs:File>
    </ore:aggregates>
    <dcterms:hasPart rdf:parseType="Resource">
      <dcterms:title>inline</dcterms:title>
    </dcterms:hasPart>
  </dcs:DataItem>
`)
	require.NoError(t, err)

	agg := findTriples(doc, ore.IRIAggregates)
	require.Len(t, agg, 1)
	assert.Equal(t, "urn:d1", agg[0].Subject)
	assert.Equal(t, "urn:f1", agg[0].Object)

	part := findTriples(doc, ore.IRIIsPartOf)
	require.Len(t, part, 1)
	assert.Equal(t, "urn:f1", part[0].Subject)

	hasPart := findTriples(doc, ore.IRIHasPart)
	require.Len(t, hasPart, 1)
	assert.True(t, hasPart[0].Resource)
	title := findTriples(doc, ore.IRITitle)
	require.Len(t, title, 1)
	assert.Equal(t, hasPart[0].Object, title[0].Subject)
}

func TestParse_LiteralParseType(t *testing.T) {
	doc, err := parseString(t, `
  <rdf:Description rdf:about="urn:x">
    <dcterms:description rdf:parseType="Literal">a <b>bold</b> claim</dcterms:description>
  </rdf:Description>
`)
	require.NoError(t, err)
	desc := findTriples(doc, ore.IRIDescription)
	require.Len(t, desc, 1)
	assert.Contains(t, desc[0].Object, "bold")
	assert.Contains(t, desc[0].Object, "<b>")
	assert.Equal(t, ore.RDFNamespace+"XMLLiteral", desc[0].Datatype)
}

func TestParse_DeclaredEncoding(t *testing.T) {
	latin1 := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		strings.TrimPrefix(header, "<?xml version=\"1.0\"?>\n") +
		"  <dcs:Collection rdf:about=\"urn:c1\"><dcterms:title>Caf\xe9</dcterms:title></dcs:Collection>\n" +
		"</rdf:RDF>\n"

	doc, err := Parse(strings.NewReader(latin1), "file:///rem.xml")
	require.NoError(t, err)
	titles := findTriples(doc, ore.IRITitle)
	require.Len(t, titles, 1)
	assert.Equal(t, "Caf\u00e9", titles[0].Object)
}

func TestParse_UnknownEncoding(t *testing.T) {
	doc := "<?xml version=\"1.0\" encoding=\"x-no-such-charset\"?>\n" +
		strings.TrimPrefix(header, "<?xml version=\"1.0\"?>\n") + "</rdf:RDF>\n"

	_, err := Parse(strings.NewReader(doc), "file:///rem.xml")
	assert.ErrorIs(t, err, ErrMalformedDocument)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:    "unclosed element",
			input:   header + `<rdf:Description rdf:about="urn:x">`,
			wantErr: ErrMalformedDocument,
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: ErrMalformedDocument,
		},
		{
			name:    "mismatched tags",
			input:   header + `<rdf:Description rdf:about="urn:x"></rdf:Descript></rdf:RDF>`,
			wantErr: ErrMalformedDocument,
		},
		{
			name:    "markup error after graph syntax error",
			input:   header + `<rdf:Description rdf:about="a" rdf:ID="b"/><oops>`,
			wantErr: ErrMalformedDocument,
		},
		{
			name:    "root is not rdf:RDF",
			input:   `<html><body/></html>`,
			wantErr: ErrMalformedGraphSyntax,
		},
		{
			name:    "conflicting subject attributes",
			input:   header + `<rdf:Description rdf:about="a" rdf:ID="b"/></rdf:RDF>`,
			wantErr: ErrMalformedGraphSyntax,
		},
		{
			name:    "resource and nodeID",
			input:   header + `<rdf:Description rdf:about="a"><ore:aggregates rdf:resource="b" rdf:nodeID="c"/></rdf:Description></rdf:RDF>`,
			wantErr: ErrMalformedGraphSyntax,
		},
		{
			name:    "unsupported parseType",
			input:   header + `<rdf:Description rdf:about="a"><ore:aggregates rdf:parseType="Collection"/></rdf:Description></rdf:RDF>`,
			wantErr: ErrMalformedGraphSyntax,
		},
		{
			name:    "text in rdf:RDF",
			input:   header + `stray text</rdf:RDF>`,
			wantErr: ErrMalformedGraphSyntax,
		},
		{
			name:    "unqualified property",
			input:   header + `<rdf:Description rdf:about="a"><title>x</title></rdf:Description></rdf:RDF>`,
			wantErr: ErrMalformedGraphSyntax,
		},
		{
			name:    "reserved node element",
			input:   header + `<rdf:li rdf:about="a"/></rdf:RDF>`,
			wantErr: ErrMalformedGraphSyntax,
		},
		{
			name:    "two nested nodes",
			input:   header + `<rdf:Description rdf:about="a"><ore:aggregates><rdf:Description rdf:about="b"/><rdf:Description rdf:about="c"/></ore:aggregates></rdf:Description></rdf:RDF>`,
			wantErr: ErrMalformedGraphSyntax,
		},
		{
			name:    "resource with content",
			input:   header + `<rdf:Description rdf:about="a"><ore:aggregates rdf:resource="b">text</ore:aggregates></rdf:Description></rdf:RDF>`,
			wantErr: ErrMalformedGraphSyntax,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input), "file:///bad.xml")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var docErr *DocumentError
			require.ErrorAs(t, err, &docErr)
			assert.Equal(t, "file:///bad.xml", docErr.Path)
			assert.Contains(t, err.Error(), "file:///bad.xml")
		})
	}
}
