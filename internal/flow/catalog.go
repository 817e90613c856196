package flow

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rshade/sequestra/internal/carbon"
)

// Route is the successor rule of one question.
//
// On maps an exact, case-sensitive answer to the next question id. Default is
// taken when no branch matches. A question with no route, or with an empty
// route, is terminal.
type Route struct {
	On      map[string]int `json:"on,omitempty"      yaml:"on,omitempty"`
	Default int            `json:"default,omitempty" yaml:"default,omitempty"`
}

// Terminal reports whether the route has no successor.
func (r Route) Terminal() bool {
	return r.Default == 0 && len(r.On) == 0
}

// Catalog is a question policy: which inputs are asked, which are fixed, and
// whether the estimate is a single state or a baseline/project delta.
type Catalog struct {
	Name    string
	Title   string
	Version string
	Mode    carbon.Mode

	// Questions in display order. The first question is the entry point.
	Questions []Question

	// Routes by question id.
	Routes map[int]Route

	// Fixed supplies estimator inputs that are never asked.
	Fixed map[Field]float64
}

// First returns the id of the entry question.
func (c *Catalog) First() int {
	if len(c.Questions) == 0 {
		return 0
	}
	return c.Questions[0].ID
}

// Position returns the answer-slot index of question id.
func (c *Catalog) Position(id int) (int, bool) {
	for i, q := range c.Questions {
		if q.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Question returns the question with id.
func (c *Catalog) Question(id int) (Question, bool) {
	pos, ok := c.Position(id)
	if !ok {
		return Question{}, false
	}
	return c.Questions[pos], true
}

// Terminal reports whether question id has no successor.
func (c *Catalog) Terminal(id int) bool {
	r, ok := c.Routes[id]
	return !ok || r.Terminal()
}

// Next returns the successor of question id for answer. Branches are matched
// first, then the default. ok is false at a terminal question.
func (c *Catalog) Next(id int, answer string) (int, bool) {
	r, found := c.Routes[id]
	if !found || r.Terminal() {
		return 0, false
	}
	if next, hit := r.On[answer]; hit {
		return next, true
	}
	if r.Default == 0 {
		return 0, false
	}
	return r.Default, true
}

// Len returns the number of questions, which is also the answer-set length.
func (c *Catalog) Len() int {
	return len(c.Questions)
}

// Validate checks the catalog structure. All problems are joined into one
// error wrapping ErrInvalidCatalog.
func (c *Catalog) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Name == "" {
		add("catalog name is required")
	}
	if len(c.Questions) == 0 {
		add("catalog has no questions")
		return wrapCatalogErrors(c.Name, errs)
	}

	ids := make(map[int]bool, len(c.Questions))
	for _, q := range c.Questions {
		if q.ID < 1 {
			add("question id %d must be >= 1", q.ID)
		}
		if ids[q.ID] {
			add("duplicate question id %d", q.ID)
		}
		ids[q.ID] = true
		errs = append(errs, c.validateQuestion(q)...)
	}

	routeIDs := sortedRouteIDs(c.Routes)
	for _, id := range routeIDs {
		r := c.Routes[id]
		if !ids[id] {
			add("route for unknown question %d", id)
			continue
		}
		if r.Default != 0 && !ids[r.Default] {
			add("question %d: default route targets unknown question %d", id, r.Default)
		}
		q, _ := c.Question(id)
		if q.Kind == KindInformation && len(r.On) > 0 {
			add("question %d: information questions cannot branch", id)
		}
		if len(r.On) > 0 && r.Default == 0 && !coversOptions(q, r) {
			add("question %d: branches need a default route unless they cover every option", id)
		}
		for answer, next := range r.On {
			if !ids[next] {
				add("question %d: branch %q targets unknown question %d", id, answer, next)
			}
			if q.Kind == KindSelect && q.OptionIndex(answer) < 0 {
				add("question %d: branch %q is not an option", id, answer)
			}
		}
	}

	for field, v := range c.Fixed {
		if !field.Numeric() {
			add("fixed field %q is not a numeric estimator input", field)
		}
		if c.Mode == carbon.ModeSingle && field.IsProject() {
			add("fixed field %q requires delta mode", field)
		}
		if field.IsCover() && (v < 0 || v > 1) {
			add("fixed field %q must lie in [0, 1]", field)
		}
	}

	if len(errs) == 0 {
		errs = append(errs, c.validateGraph()...)
	}
	return wrapCatalogErrors(c.Name, errs)
}

func (c *Catalog) validateQuestion(q Question) []error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("question %d: "+format, append([]any{q.ID}, args...)...))
	}

	switch q.Kind {
	case KindNumber:
		if q.Field == FieldRegion {
			add("region must be a select question")
		}
	case KindSelect:
		if len(q.Options) == 0 {
			add("select question has no options")
		}
		if q.Field != "" && q.Field != FieldRegion {
			add("select question cannot bind numeric field %q", q.Field)
		}
	case KindInformation:
		if q.Field != "" {
			add("information question cannot bind field %q", q.Field)
		}
	default:
		add("unknown kind %v", q.Kind)
	}

	if q.Field != "" {
		if !q.Field.Valid() {
			add("unknown field %q", q.Field)
		}
		if c.Mode == carbon.ModeSingle && q.Field.IsProject() {
			add("field %q requires delta mode", q.Field)
		}
		if q.Field.IsCover() && !q.Fraction {
			add("crown cover field %q must be a fraction", q.Field)
		}
	}

	if q.Default != "" && q.Kind != KindInformation {
		if err := Validate(q, q.Default); err != nil {
			add("default %q is invalid: %v", q.Default, err)
		}
	}
	return errs
}

// validateGraph checks that every question is reachable from the first, the
// graph has no cycles, and at least one question is terminal.
func (c *Catalog) validateGraph() []error {
	const (
		unseen = iota
		active
		done
	)
	var errs []error
	mark := make(map[int]int, len(c.Questions))

	var visit func(id int)
	visit = func(id int) {
		switch mark[id] {
		case active:
			errs = append(errs, fmt.Errorf("question %d is part of a cycle", id))
			return
		case done:
			return
		}
		mark[id] = active
		for _, next := range c.successors(id) {
			visit(next)
		}
		mark[id] = done
	}
	visit(c.First())

	terminal := false
	for _, q := range c.Questions {
		if mark[q.ID] == unseen {
			errs = append(errs, fmt.Errorf("question %d is unreachable", q.ID))
		}
		if c.Terminal(q.ID) {
			terminal = true
		}
	}
	if !terminal {
		errs = append(errs, errors.New("catalog has no terminal question"))
	}
	return errs
}

// successors lists every possible next id of question id in stable order.
func (c *Catalog) successors(id int) []int {
	r, ok := c.Routes[id]
	if !ok {
		return nil
	}
	answers := make([]string, 0, len(r.On))
	for a := range r.On {
		answers = append(answers, a)
	}
	sort.Strings(answers)

	out := make([]int, 0, len(answers)+1)
	for _, a := range answers {
		out = append(out, r.On[a])
	}
	if r.Default != 0 {
		out = append(out, r.Default)
	}
	return out
}

// coversOptions reports whether r branches on every option of select question q.
func coversOptions(q Question, r Route) bool {
	if q.Kind != KindSelect {
		return false
	}
	for _, o := range q.Options {
		if _, ok := r.On[o]; !ok {
			return false
		}
	}
	return true
}

func sortedRouteIDs(routes map[int]Route) []int {
	ids := make([]int, 0, len(routes))
	for id := range routes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func wrapCatalogErrors(name string, errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w %q: %w", ErrInvalidCatalog, name, errors.Join(errs...))
}
