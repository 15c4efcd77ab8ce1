package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/pbenes/gooddata-data-layer/pkg/afm"
)

// Extensions holds the structured sections of the config file that viper
// does not model: filter presets and the required tool version.
type Extensions struct {
	// RequiredVersion is a semver constraint the running binary must satisfy.
	RequiredVersion string `json:"requiredVersion,omitempty"`

	// Presets are named user filter lists, applied with --preset.
	Presets map[string]afm.Filters `json:"presets,omitempty"`
}

// ParseExtensions parses the requiredVersion and presets sections from raw
// config file bytes.
func ParseExtensions(data []byte) (*Extensions, error) {
	var ext Extensions
	if err := sigsyaml.Unmarshal(data, &ext); err != nil {
		return nil, fmt.Errorf("parsing config extensions: %w", err)
	}

	if err := ext.Validate(); err != nil {
		return nil, err
	}

	return &ext, nil
}

// LoadExtensions reads the extension sections from the config file at path.
// An empty path, or a config file that is neither YAML nor JSON, yields
// empty extensions.
func LoadExtensions(path string) (*Extensions, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
	default:
		return &Extensions{}, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // User-specified config file
	if err != nil {
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	}

	ext, err := ParseExtensions(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return ext, nil
}

// presetNamePattern restricts preset names to flag-friendly identifiers.
var presetNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// Validate checks the extensions for correctness.
func (e *Extensions) Validate() error {
	if e.RequiredVersion != "" {
		if _, err := semver.NewConstraint(e.RequiredVersion); err != nil {
			return fmt.Errorf("requiredVersion %q: %w", e.RequiredVersion, err)
		}
	}

	for _, name := range e.PresetNames() {
		if !presetNamePattern.MatchString(name) {
			return fmt.Errorf("presets[%s]: invalid name (must match %s)", name, presetNamePattern.String())
		}

		if len(e.Presets[name]) == 0 {
			return fmt.Errorf("presets[%s]: must contain at least one filter", name)
		}
	}

	return nil
}

// PresetNames returns the sorted preset names.
func (e *Extensions) PresetNames() []string {
	if e == nil {
		return nil
	}

	names := make([]string, 0, len(e.Presets))
	for name := range e.Presets {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Preset returns a copy of the named preset. The methods of Extensions
// accept a nil receiver, which behaves like empty extensions.
func (e *Extensions) Preset(name string) (afm.Filters, error) {
	if e == nil {
		return nil, fmt.Errorf("unknown preset %q", name)
	}

	p, ok := e.Presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q", name)
	}

	return p.Clone(), nil
}

// CheckVersion reports an error when actual does not satisfy
// RequiredVersion. Development builds ("dev") and an empty constraint
// always pass.
func (e *Extensions) CheckVersion(actual string) error {
	if e == nil || e.RequiredVersion == "" || actual == "dev" {
		return nil
	}

	c, err := semver.NewConstraint(e.RequiredVersion)
	if err != nil {
		return fmt.Errorf("requiredVersion %q: %w", e.RequiredVersion, err)
	}

	v, err := semver.NewVersion(actual)
	if err != nil {
		return fmt.Errorf("afmtool version %q is not a semantic version: %w", actual, err)
	}

	if !c.Check(v) {
		return fmt.Errorf("afmtool %s does not satisfy requiredVersion %q", actual, e.RequiredVersion)
	}

	return nil
}

// IsEmpty returns true if no extension section is set.
func (e *Extensions) IsEmpty() bool {
	return e == nil || (e.RequiredVersion == "" && len(e.Presets) == 0)
}
