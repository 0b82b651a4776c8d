// Package testutil provides fixtures for tests that need resource map
// documents and extracted bags on disk.
//
// Usage:
//
//	pkg := testutil.WriteBag(t, map[string]string{
//	    "bag-info.txt":        testutil.BagInfo("file:///ORE-REM/package.xml"),
//	    "ORE-REM/package.xml": testutil.Document(testutil.Resource{ID: "urn:pkg", Class: ore.ClassPackage}),
//	})
package testutil

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/c360studio/orevalidate/bag"
	"github.com/c360studio/orevalidate/vocabulary/ore"
)

// BagDir is the base directory fixtures are written under.
const BagDir = "testbag"

// Resource describes one node element written by Document.
type Resource struct {
	ID          string
	Class       string
	Aggregates  []string
	IsPartOf    []string
	DescribedBy []string
	Describes   []string
	Title       string
	FilePath    string
}

// Document renders resources as an RDF/XML document.
func Document(resources ...Resource) string {
	var sb strings.Builder
	sb.WriteString(xml.Header)
	sb.WriteString(`<rdf:RDF xmlns:rdf="` + ore.RDFNamespace + `" xmlns:ore="` + ore.ORENamespace +
		`" xmlns:dcterms="` + ore.DCTermsNamespace + `" xmlns:dcs="` + ore.BusinessObjectNamespace + `">` + "\n")
	for _, r := range resources {
		writeResource(&sb, r)
	}
	sb.WriteString("</rdf:RDF>\n")
	return sb.String()
}

func writeResource(sb *strings.Builder, r Resource) {
	sb.WriteString(`  <rdf:Description rdf:about="` + esc(r.ID) + `">` + "\n")
	if r.Class != "" {
		sb.WriteString(`    <rdf:type rdf:resource="` + esc(r.Class) + `"/>` + "\n")
	}
	if r.Title != "" {
		sb.WriteString(`    <dcterms:title>` + esc(r.Title) + `</dcterms:title>` + "\n")
	}
	if r.FilePath != "" {
		sb.WriteString(`    <dcs:hasPath>` + esc(r.FilePath) + `</dcs:hasPath>` + "\n")
	}
	for _, v := range r.Aggregates {
		sb.WriteString(`    <ore:aggregates rdf:resource="` + esc(v) + `"/>` + "\n")
	}
	for _, v := range r.IsPartOf {
		sb.WriteString(`    <dcterms:isPartOf rdf:resource="` + esc(v) + `"/>` + "\n")
	}
	for _, v := range r.DescribedBy {
		sb.WriteString(`    <ore:isDescribedBy rdf:resource="` + esc(v) + `"/>` + "\n")
	}
	for _, v := range r.Describes {
		sb.WriteString(`    <ore:describes rdf:resource="` + esc(v) + `"/>` + "\n")
	}
	sb.WriteString("  </rdf:Description>\n")
}

func esc(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}

// BagInfo renders a bag-info.txt declaring the given package resource maps.
func BagInfo(refs ...string) string {
	var sb strings.Builder
	sb.WriteString("Bag-Software-Agent: orevalidate tests\n")
	for _, ref := range refs {
		sb.WriteString("PKG-ORE-REM: " + ref + "\n")
	}
	return sb.String()
}

// WriteBag writes files, keyed by bag-relative slash paths, under a fresh
// extract directory and returns a handle on the bag.
func WriteBag(t testing.TB, files map[string]string) *bag.Package {
	t.Helper()
	extract := t.TempDir()
	root := filepath.Join(extract, BagDir)
	if err := os.MkdirAll(root, 0755); err != nil {
		t.Fatalf("create bag root: %v", err)
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("create dir for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	pkg, err := bag.Open(extract, BagDir)
	if err != nil {
		t.Fatalf("open bag: %v", err)
	}
	return pkg
}

// Well-formed package fixture identifiers.
const (
	PackageID    = "urn:test:package"
	ProjectID    = "urn:test:project"
	CollectionID = "urn:test:collection"
	DataItemID   = "urn:test:dataitem"
	FileID       = "urn:test:file"

	PackageReM    = "file:///ORE-REM/package.xml"
	ProjectReM    = "file:///ORE-REM/project.xml"
	CollectionReM = "file:///ORE-REM/collection.xml"
	DataItemReM   = "file:///ORE-REM/dataitem.xml"

	PayloadPath = "data/file-1.txt"
)

// ValidPackage returns the files of a well-formed package: one project, one
// collection, one data item and one file spread over four linked resource
// maps. The project map links back to the package map.
func ValidPackage() map[string]string {
	return map[string]string{
		"bag-info.txt": BagInfo(PackageReM),
		"ORE-REM/package.xml": Document(
			Resource{ID: PackageReM, Class: ore.ClassResourceMap, Describes: []string{PackageID}},
			Resource{ID: PackageID, Class: ore.ClassPackage, Title: "Test package", Aggregates: []string{ProjectID}},
			Resource{ID: ProjectID, DescribedBy: []string{ProjectReM}},
		),
		"ORE-REM/project.xml": Document(
			Resource{ID: ProjectID, Class: ore.ClassProject, Title: "Project", Aggregates: []string{CollectionID}, DescribedBy: []string{PackageReM}},
			Resource{ID: CollectionID, DescribedBy: []string{CollectionReM}},
		),
		"ORE-REM/collection.xml": Document(
			Resource{ID: CollectionID, Class: ore.ClassCollection, Title: "Collection", Aggregates: []string{DataItemID}, IsPartOf: []string{ProjectID}},
			Resource{ID: DataItemID, DescribedBy: []string{DataItemReM}},
		),
		"ORE-REM/dataitem.xml": Document(
			Resource{ID: DataItemID, Class: ore.ClassDataItem, Title: "Data item", Aggregates: []string{FileID}, IsPartOf: []string{CollectionID}},
			Resource{ID: FileID, Class: ore.ClassFile, Title: "file-1.txt", FilePath: PayloadPath, IsPartOf: []string{DataItemID}},
		),
		PayloadPath: "payload bytes\n",
	}
}
