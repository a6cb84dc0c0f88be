// Package profiles holds the partner platform and tone catalog used to shape
// generated reports. The catalog is compiled into the binary and read once.
package profiles

import (
	_ "embed"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPlatform = "generic"
	DefaultTone     = "neutral"
)

//go:embed profiles.yaml
var embeddedCatalog []byte

// Platform carries the formatting rules for one partner platform.
type Platform struct {
	ID         string `yaml:"-"`
	Name       string `yaml:"name"`
	Guidelines string `yaml:"guidelines"`
}

// Tone carries the style instruction for one requested tone.
type Tone struct {
	ID          string `yaml:"-"`
	Name        string `yaml:"name"`
	Instruction string `yaml:"instruction"`
}

// Catalog is read-only after Load and safe for concurrent use.
type Catalog struct {
	platforms map[string]Platform
	tones     map[string]Tone
}

type catalogFile struct {
	Platforms map[string]Platform `yaml:"platforms"`
	Tones     map[string]Tone     `yaml:"tones"`
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(embeddedCatalog)
}

// Parse builds a catalog from YAML. The default platform and tone must be present.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing profile catalog: %w", err)
	}

	c := &Catalog{
		platforms: make(map[string]Platform, len(file.Platforms)),
		tones:     make(map[string]Tone, len(file.Tones)),
	}
	for id, p := range file.Platforms {
		id = normalizeID(id)
		if p.Name == "" {
			return nil, fmt.Errorf("platform %q has no name", id)
		}
		p.ID = id
		c.platforms[id] = p
	}
	for id, t := range file.Tones {
		id = normalizeID(id)
		if t.Name == "" {
			return nil, fmt.Errorf("tone %q has no name", id)
		}
		t.ID = id
		c.tones[id] = t
	}

	if _, ok := c.platforms[DefaultPlatform]; !ok {
		return nil, fmt.Errorf("profile catalog is missing the %q platform", DefaultPlatform)
	}
	if _, ok := c.tones[DefaultTone]; !ok {
		return nil, fmt.Errorf("profile catalog is missing the %q tone", DefaultTone)
	}

	slog.Debug("Profile catalog loaded", "platforms", len(c.platforms), "tones", len(c.tones))
	return c, nil
}

// Platform returns the profile for id, or the generic profile when id is unknown.
func (c *Catalog) Platform(id string) Platform {
	if p, ok := c.platforms[normalizeID(id)]; ok {
		return p
	}
	return c.platforms[DefaultPlatform]
}

// Tone returns the profile for id, or the neutral profile when id is unknown.
func (c *Catalog) Tone(id string) Tone {
	if t, ok := c.tones[normalizeID(id)]; ok {
		return t
	}
	return c.tones[DefaultTone]
}

func (c *Catalog) PlatformIDs() []string {
	ids := make([]string, 0, len(c.platforms))
	for id := range c.platforms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (c *Catalog) ToneIDs() []string {
	ids := make([]string, 0, len(c.tones))
	for id := range c.tones {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
