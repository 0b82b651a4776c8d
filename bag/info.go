package bag

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/c360studio/orevalidate/attribute"
)

// Tag is one bag-info.txt label/value pair.
type Tag struct {
	Label string
	Value string
}

// resourceMapLabels are the bag-info labels carrying package resource map
// references, matched case-insensitively.
var resourceMapLabels = []string{"PKG-ORE-REM", attribute.PackageReM}

// ParseInfo parses bag-info.txt content. Lines starting with whitespace
// continue the previous value; blank lines are ignored.
func ParseInfo(r io.Reader) ([]Tag, error) {
	var tags []Tag
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			if len(tags) == 0 {
				return nil, fmt.Errorf("line %d: continuation without a preceding tag", lineNo)
			}
			tags[len(tags)-1].Value += " " + strings.TrimSpace(line)
			continue
		}
		label, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("line %d: missing ':' separator", lineNo)
		}
		label = strings.TrimSpace(label)
		if label == "" {
			return nil, fmt.Errorf("line %d: empty tag label", lineNo)
		}
		tags = append(tags, Tag{Label: label, Value: strings.TrimSpace(value)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read bag info: %w", err)
	}
	return tags, nil
}

// ReadInfo reads and parses the package's bag-info tag file.
func (p *Package) ReadInfo() ([]Tag, error) {
	f, err := os.Open(p.InfoPath())
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseInfo(f)
}

// ProfileSet converts bag-info tags into the profile attribute set. Resource
// map reference tags become attribute.PackageReM records; every other tag is
// kept verbatim.
func ProfileSet(tags []Tag) *attribute.Set {
	records := make([]attribute.Record, 0, len(tags))
	for _, tag := range tags {
		if isResourceMapLabel(tag.Label) {
			records = append(records, attribute.NewRecord(attribute.PackageReM, attribute.TypeURI, tag.Value))
			continue
		}
		records = append(records, attribute.String(tag.Label, tag.Value))
	}
	return attribute.NewSet(attribute.SetBagItProfile, records...)
}

// LoadProfile reads bag-info.txt and stores the profile set under the
// deposit's profile key.
func (p *Package) LoadProfile(store *attribute.Store, depositID string) error {
	tags, err := p.ReadInfo()
	if err != nil {
		return fmt.Errorf("load bag profile: %w", err)
	}
	key, err := attribute.ComposeKey(attribute.SetBagItProfile, depositID)
	if err != nil {
		return fmt.Errorf("load bag profile: %w", err)
	}
	store.Add(key, ProfileSet(tags))
	return nil
}

func isResourceMapLabel(label string) bool {
	for _, l := range resourceMapLabels {
		if strings.EqualFold(l, label) {
			return true
		}
	}
	return false
}
