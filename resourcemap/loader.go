// Package resourcemap loads OAI-ORE resource maps from an extracted package
// and merges them into a single graph.
//
// Loading starts from the package resource map references in the bag profile
// and follows ore:isDescribedBy links transitively. Every document is read
// once; links back to an already merged document are no-ops. The merged
// graph is then flattened into attribute sets for the validation stages.
package resourcemap

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/c360studio/orevalidate/attribute"
	"github.com/c360studio/orevalidate/bag"
	"github.com/c360studio/orevalidate/vocabulary/ore"
)

// ErrTooManyDocuments is returned when a load exceeds Loader.MaxDocuments.
var ErrTooManyDocuments = errors.New("too many resource map documents")

// Loader reads and merges the resource maps of a package.
type Loader struct {
	logger *slog.Logger

	// MaxDocuments bounds the number of documents merged in one load.
	// Zero means no limit.
	MaxDocuments int
}

// NewLoader creates a loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load merges every resource map reachable from the profile's package
// resource map references, populates store with one attribute set per typed
// entity and returns the merged graph.
//
// A missing or malformed document fails the whole load; nothing is retried.
func (l *Loader) Load(pkg *bag.Package, profile *attribute.Set, store *attribute.Store) (*Graph, error) {
	g, err := l.Merge(pkg, attribute.Values(profile, attribute.PackageReM))
	if err != nil {
		return nil, err
	}
	Populate(g, store)
	return g, nil
}

// Merge builds the merged graph starting from refs without touching a store.
func (l *Loader) Merge(pkg *bag.Package, refs []string) (*Graph, error) {
	g := NewGraph()
	visited := make(map[string]bool)
	for _, ref := range refs {
		if err := l.follow(pkg, ref, g, visited); err != nil {
			return nil, err
		}
	}
	l.logger.Debug("Merged resource maps",
		"bag", pkg.Root(),
		"documents", len(g.Documents()),
		"nodes", g.Len(),
		"edges", len(g.Edges()))
	return g, nil
}

func (l *Loader) follow(pkg *bag.Package, ref string, g *Graph, visited map[string]bool) error {
	path, err := pkg.Resolve(ref)
	if err != nil {
		return fmt.Errorf("resolve resource map %q: %w: %w", ref, ErrMalformedDocument, err)
	}
	if visited[path] {
		l.logger.Debug("Resource map already merged", "ref", ref)
		return nil
	}
	visited[path] = true
	if l.MaxDocuments > 0 && len(visited) > l.MaxDocuments {
		return fmt.Errorf("%w: limit is %d", ErrTooManyDocuments, l.MaxDocuments)
	}

	doc, err := ParseFile(path, ref)
	if err != nil {
		return err
	}
	g.Merge(doc)
	l.logger.Debug("Merged resource map", "ref", ref, "triples", len(doc.Triples))

	for _, t := range doc.Triples {
		if !t.Resource || t.Predicate != ore.IRIIsDescribedBy {
			continue
		}
		if !isDocumentRef(t.Object) {
			l.logger.Debug("Not following external description", "subject", t.Subject, "target", t.Object)
			continue
		}
		if err := l.follow(pkg, t.Object, g, visited); err != nil {
			return err
		}
	}
	return nil
}

// ParseFile parses the document at path, identified by uri.
func ParseFile(path, uri string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open resource map %s: %w", uri, err)
	}
	defer f.Close()
	return Parse(f, uri)
}

// LoadFile parses a single document into a graph without following links.
func LoadFile(path, uri string) (*Graph, error) {
	doc, err := ParseFile(path, uri)
	if err != nil {
		return nil, err
	}
	g := NewGraph()
	g.Merge(doc)
	return g, nil
}

// isDocumentRef reports whether a description target names a document in the
// package.
func isDocumentRef(ref string) bool {
	return strings.HasPrefix(ref, "file:")
}
