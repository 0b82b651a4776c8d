// Package bag provides a read-only handle on an extracted BagIt package.
//
// Extraction itself happens elsewhere; a Package only knows where the bag
// was unpacked, how to read its bag-info.txt profile metadata and how to
// resolve file:// references relative to the bag root.
package bag

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// BagInfoFile is the default name of the bag metadata tag file.
	BagInfoFile = "bag-info.txt"

	// DefaultPayloadGlob selects every payload file of a bag.
	DefaultPayloadGlob = "data/**"
)

// ErrOutsideBag is returned when a reference resolves outside the bag root.
var ErrOutsideBag = errors.New("reference resolves outside the bag")

// Package is an extracted bag. ExtractDir is absolute; BaseDir is relative
// to ExtractDir and names the bag's top-level directory.
type Package struct {
	ExtractDir string
	BaseDir    string

	// InfoFile overrides BagInfoFile.
	InfoFile string
	// PayloadGlob overrides DefaultPayloadGlob.
	PayloadGlob string
}

// Open returns a handle for the bag at extractDir/baseDir.
func Open(extractDir, baseDir string) (*Package, error) {
	abs, err := filepath.Abs(extractDir)
	if err != nil {
		return nil, fmt.Errorf("resolve extract dir: %w", err)
	}
	if filepath.IsAbs(baseDir) {
		return nil, fmt.Errorf("base dir %q must be relative", baseDir)
	}
	p := &Package{ExtractDir: abs, BaseDir: filepath.Clean(baseDir)}
	info, err := os.Stat(p.Root())
	if err != nil {
		return nil, fmt.Errorf("stat bag root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("bag root is not a directory: %s", p.Root())
	}
	return p, nil
}

// DetectBaseDir returns the base dir of the bag extracted into extractDir:
// the single top-level directory when there is exactly one, "." otherwise.
// Hidden entries are ignored.
func DetectBaseDir(extractDir string) (string, error) {
	entries, err := os.ReadDir(extractDir)
	if err != nil {
		return "", fmt.Errorf("read extract dir: %w", err)
	}
	var dirs []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if !e.IsDir() {
			return ".", nil
		}
		dirs = append(dirs, e.Name())
	}
	if len(dirs) != 1 {
		return ".", nil
	}
	return dirs[0], nil
}

// Root returns the absolute bag root directory.
func (p *Package) Root() string {
	return filepath.Join(p.ExtractDir, p.BaseDir)
}

// InfoPath returns the path of the bag-info tag file.
func (p *Package) InfoPath() string {
	name := p.InfoFile
	if name == "" {
		name = BagInfoFile
	}
	return filepath.Join(p.Root(), name)
}

// Resolve maps a document reference to a file path inside the bag root.
//
// Accepted forms are file:///rel/path, file:rel/path and plain relative
// paths, all relative to the bag root. A leading segment equal to BaseDir is
// dropped, so file:///<bag>/ORE-REM/x.xml and file:///ORE-REM/x.xml resolve
// to the same file.
func (p *Package) Resolve(ref string) (string, error) {
	rel, err := p.RelativePath(ref)
	if err != nil {
		return "", err
	}
	return filepath.Join(p.Root(), filepath.FromSlash(rel)), nil
}

// RelativePath maps a document reference to a slash-separated path relative
// to the bag root.
func (p *Package) RelativePath(ref string) (string, error) {
	raw := ref
	if strings.Contains(ref, "://") || strings.HasPrefix(ref, "file:") {
		u, err := url.Parse(ref)
		if err != nil {
			return "", fmt.Errorf("parse reference %q: %w", ref, err)
		}
		if u.Scheme != "file" {
			return "", fmt.Errorf("unsupported reference scheme %q in %q", u.Scheme, ref)
		}
		raw = u.Path
		if raw == "" {
			raw = u.Opaque
		}
	}

	raw = filepath.ToSlash(raw)
	for _, seg := range strings.Split(raw, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: %q", ErrOutsideBag, ref)
		}
	}

	rel := path.Clean("/" + raw)[1:]
	base := filepath.ToSlash(p.BaseDir)
	if base != "." && base != "" && strings.HasPrefix(rel, base+"/") {
		rel = rel[len(base)+1:]
	}
	if rel == "" {
		return "", fmt.Errorf("%w: %q", ErrOutsideBag, ref)
	}
	return rel, nil
}

// Payload lists the files matching the payload glob, relative to the bag root
// with forward slashes, sorted.
func (p *Package) Payload() ([]string, error) {
	pattern := p.PayloadGlob
	if pattern == "" {
		pattern = DefaultPayloadGlob
	}
	return p.Glob(pattern)
}

// Glob lists files under the bag root matching a doublestar pattern.
func (p *Package) Glob(pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern %q", pattern)
	}
	matches, err := doublestar.Glob(os.DirFS(p.Root()), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// Exists reports whether a bag-relative path names an existing file.
func (p *Package) Exists(rel string) bool {
	info, err := fs.Stat(os.DirFS(p.Root()), path.Clean(rel))
	return err == nil && !info.IsDir()
}
