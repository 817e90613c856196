package flow

import (
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/rshade/sequestra/internal/carbon"
)

// SupportedCatalogVersions is the semver constraint a catalog file must satisfy.
const SupportedCatalogVersions = "^1.0.0"

// OptionsFromRegions fills a select question with the biomass table regions.
const OptionsFromRegions = "regions"

// catalogFile is the YAML form of a catalog. Routes are written inline on
// each question as next/branches.
type catalogFile struct {
	Name      string            `yaml:"name"`
	Title     string            `yaml:"title"`
	Version   string            `yaml:"version"`
	Mode      carbon.Mode       `yaml:"mode"`
	Fixed     map[Field]float64 `yaml:"fixed,omitempty"`
	Questions []questionFile    `yaml:"questions"`
}

type questionFile struct {
	ID          int            `yaml:"id"`
	Prompt      string         `yaml:"prompt"`
	Kind        Kind           `yaml:"kind"`
	Options     []string       `yaml:"options,omitempty"`
	OptionsFrom string         `yaml:"options_from,omitempty"`
	Default     string         `yaml:"default,omitempty"`
	Info        string         `yaml:"info,omitempty"`
	Field       Field          `yaml:"field,omitempty"`
	Fraction    bool           `yaml:"fraction,omitempty"`
	NonNegative bool           `yaml:"non_negative,omitempty"`
	Unit        string         `yaml:"unit,omitempty"`
	Next        int            `yaml:"next,omitempty"`
	Branches    map[string]int `yaml:"branches,omitempty"`
}

// ParseCatalog decodes and validates a YAML catalog. table supplies the
// options of questions declaring options_from: regions.
func ParseCatalog(data []byte, table *carbon.BiomassTable) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	if err := checkCatalogVersion(file.Version); err != nil {
		return nil, err
	}

	c := &Catalog{
		Name:    file.Name,
		Title:   file.Title,
		Version: file.Version,
		Mode:    file.Mode,
		Routes:  make(map[int]Route),
		Fixed:   file.Fixed,
	}
	for _, qf := range file.Questions {
		q := Question{
			ID:          qf.ID,
			Prompt:      qf.Prompt,
			Kind:        qf.Kind,
			Options:     qf.Options,
			Default:     qf.Default,
			Info:        qf.Info,
			Field:       qf.Field,
			Fraction:    qf.Fraction || qf.Field.IsCover(),
			NonNegative: qf.NonNegative,
			Unit:        qf.Unit,
		}
		switch qf.OptionsFrom {
		case "":
		case OptionsFromRegions:
			q.Options = table.Regions()
		default:
			return nil, fmt.Errorf("%w: question %d: unknown options_from %q",
				ErrInvalidCatalog, qf.ID, qf.OptionsFrom)
		}
		c.Questions = append(c.Questions, q)
		if qf.Next != 0 || len(qf.Branches) > 0 {
			c.Routes[qf.ID] = Route{On: qf.Branches, Default: qf.Next}
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadCatalog reads and validates a YAML catalog file.
func LoadCatalog(path string, table *carbon.BiomassTable) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	c, err := ParseCatalog(data, table)
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", path, err)
	}
	return c, nil
}

// MarshalCatalog encodes c in the YAML catalog format.
func MarshalCatalog(c *Catalog) ([]byte, error) {
	file := catalogFile{
		Name:    c.Name,
		Title:   c.Title,
		Version: c.Version,
		Mode:    c.Mode,
		Fixed:   c.Fixed,
	}
	for _, q := range c.Questions {
		r := c.Routes[q.ID]
		file.Questions = append(file.Questions, questionFile{
			ID:          q.ID,
			Prompt:      q.Prompt,
			Kind:        q.Kind,
			Options:     q.Options,
			Default:     q.Default,
			Info:        q.Info,
			Field:       q.Field,
			Fraction:    q.Fraction,
			NonNegative: q.NonNegative,
			Unit:        q.Unit,
			Next:        r.Default,
			Branches:    r.On,
		})
	}
	return yaml.Marshal(file)
}

func checkCatalogVersion(version string) error {
	if version == "" {
		return fmt.Errorf("%w: version is required", ErrInvalidCatalog)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%w: version %q: %w", ErrInvalidCatalog, version, err)
	}
	c, err := semver.NewConstraint(SupportedCatalogVersions)
	if err != nil {
		return err
	}
	if !c.Check(v) {
		return fmt.Errorf("%w: version %s does not satisfy %s", ErrInvalidCatalog, version, SupportedCatalogVersions)
	}
	return nil
}
