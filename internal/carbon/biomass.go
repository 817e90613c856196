package carbon

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// SupportedTableVersions is the semver constraint a versioned table must satisfy.
const SupportedTableVersions = "^1.0.0"

//go:embed data/biomass.yaml
var defaultBiomassData []byte

// BiomassTable maps region names to above-ground biomass density (t/ha).
// A nil density marks a known region without a usable value.
// A table is immutable once built and safe for concurrent readers.
type BiomassTable struct {
	version   string
	densities map[string]*float64
	regions   []string
}

// biomassFile is the versioned on-disk form. A bare region mapping is also accepted.
type biomassFile struct {
	Version string              `yaml:"version"`
	Regions map[string]*float64 `yaml:"regions"`
}

// NewBiomassTable builds a table from a region mapping. The mapping is copied.
func NewBiomassTable(densities map[string]*float64) (*BiomassTable, error) {
	return newBiomassTable("", densities)
}

func newBiomassTable(version string, densities map[string]*float64) (*BiomassTable, error) {
	t := &BiomassTable{
		version:   version,
		densities: make(map[string]*float64, len(densities)),
		regions:   make([]string, 0, len(densities)),
	}
	for region, d := range densities {
		if region == "" {
			return nil, errors.New("biomass table contains an empty region name")
		}
		if d != nil {
			if math.IsNaN(*d) || math.IsInf(*d, 0) {
				return nil, fmt.Errorf("%w: density for %q", ErrNonFiniteInput, region)
			}
			if *d < 0 {
				return nil, fmt.Errorf("%w: density for %q", ErrNegativeInput, region)
			}
			v := *d
			d = &v
		}
		t.densities[region] = d
		t.regions = append(t.regions, region)
	}
	sort.Strings(t.regions)
	return t, nil
}

// ParseBiomassTable parses a YAML or JSON biomass table.
//
// Two layouts are accepted: a bare mapping of region to density, or
// {version: "1.x.y", regions: {...}}. A versioned table must satisfy
// SupportedTableVersions.
func ParseBiomassTable(data []byte) (*BiomassTable, error) {
	var file biomassFile
	if err := yaml.Unmarshal(data, &file); err == nil && file.Regions != nil {
		if err = checkTableVersion(file.Version); err != nil {
			return nil, err
		}
		return newBiomassTable(file.Version, file.Regions)
	}

	var bare map[string]*float64
	if err := yaml.Unmarshal(data, &bare); err != nil {
		return nil, fmt.Errorf("parsing biomass table: %w", err)
	}
	return newBiomassTable("", bare)
}

// LoadBiomassTable reads and parses a biomass table file.
func LoadBiomassTable(path string) (*BiomassTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading biomass table %s: %w", path, err)
	}
	t, err := ParseBiomassTable(data)
	if err != nil {
		return nil, fmt.Errorf("loading biomass table %s: %w", path, err)
	}
	return t, nil
}

//nolint:gochecknoglobals // The embedded table is parsed once per process.
var defaultTable = sync.OnceValues(func() (*BiomassTable, error) {
	return ParseBiomassTable(defaultBiomassData)
})

// DefaultBiomassTable returns the table embedded in the binary.
func DefaultBiomassTable() (*BiomassTable, error) {
	return defaultTable()
}

func checkTableVersion(version string) error {
	if version == "" {
		return nil
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrUnsupportedTable, version, err)
	}
	c, err := semver.NewConstraint(SupportedTableVersions)
	if err != nil {
		return err
	}
	if !c.Check(v) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrUnsupportedTable, version, SupportedTableVersions)
	}
	return nil
}

// Lookup returns the biomass density for region.
// It fails with ErrUnknownRegion when the region is absent or has no value.
func (t *BiomassTable) Lookup(region string) (float64, error) {
	if t == nil {
		return 0, fmt.Errorf("%w: %q (no biomass table)", ErrUnknownRegion, region)
	}
	d, ok := t.densities[region]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownRegion, region)
	}
	if d == nil {
		return 0, fmt.Errorf("%w: %q has no biomass value", ErrUnknownRegion, region)
	}
	return *d, nil
}

// Known reports whether region is a key of the table, with or without a value.
func (t *BiomassTable) Known(region string) bool {
	if t == nil {
		return false
	}
	_, ok := t.densities[region]
	return ok
}

// Regions returns all region names in sorted order.
func (t *BiomassTable) Regions() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.regions))
	copy(out, t.regions)
	return out
}

// Len returns the number of regions.
func (t *BiomassTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.regions)
}

// Version returns the declared table version, or "" for a bare mapping.
func (t *BiomassTable) Version() string {
	if t == nil {
		return ""
	}
	return t.version
}
