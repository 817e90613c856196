package flow

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rshade/sequestra/internal/carbon"
)

// Registry resolves catalog names to validated flows. Built-in catalogs are
// always present; catalogs loaded from files may replace them by name.
type Registry struct {
	flows map[string]*Flow
	order []string
}

// NewRegistry builds the built-in catalogs against table.
func NewRegistry(table *carbon.BiomassTable) (*Registry, error) {
	r := &Registry{flows: make(map[string]*Flow)}
	for _, name := range BuiltinNames() {
		c, err := Builtin(name, table)
		if err != nil {
			return nil, err
		}
		if err = r.Add(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add validates c and registers it under its name.
func (r *Registry) Add(c *Catalog) error {
	f, err := New(c)
	if err != nil {
		return err
	}
	if _, exists := r.flows[c.Name]; !exists {
		r.order = append(r.order, c.Name)
	}
	r.flows[c.Name] = f
	return nil
}

// LoadDir registers every *.yaml and *.yml catalog in dir, in name order.
// A missing directory is not an error.
func (r *Registry) LoadDir(dir string, table *carbon.BiomassTable) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading catalog directory %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		c, err := LoadCatalog(filepath.Join(dir, name), table)
		if err != nil {
			return err
		}
		if err = r.Add(c); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the flow for name.
func (r *Registry) Get(name string) (*Flow, error) {
	f, ok := r.flows[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownCatalog, name, strings.Join(r.order, ", "))
	}
	return f, nil
}

// Names returns the registered catalog names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}
