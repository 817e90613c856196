package flow

import (
	"fmt"
	"sort"

	"github.com/rshade/sequestra/internal/carbon"
)

// BuildInputs extracts estimator inputs from the answers on the active path.
//
// Precedence per input is: answer on the path, then a catalog fixed value,
// then the carbon default. Within each layer a baseline/project field wins
// over the shared ratios field.
func (f *Flow) BuildInputs(answers []string) (carbon.Inputs, error) {
	c := f.catalog
	if len(answers) != c.Len() {
		return carbon.Inputs{}, fmt.Errorf("%w: got %d, want %d", ErrAnswerCount, len(answers), c.Len())
	}

	in := carbon.Inputs{Mode: c.Mode, Baseline: carbon.DefaultStateInputs()}
	if c.Mode == carbon.ModeDelta {
		project := carbon.DefaultStateInputs()
		in.Project = &project
	}

	applyNumeric := func(field Field, v float64) {
		if field == FieldBiomassDensity {
			d := v
			in.BiomassDensity = &d
			return
		}
		scope, key, _ := field.Split()
		switch scope {
		case ScopeRatios:
			setStateKey(&in.Baseline, key, v)
			if in.Project != nil {
				setStateKey(in.Project, key, v)
			}
		case ScopeBaseline:
			setStateKey(&in.Baseline, key, v)
		case ScopeProject:
			if in.Project != nil {
				setStateKey(in.Project, key, v)
			}
		}
	}

	for _, field := range orderedFields(c.Fixed) {
		applyNumeric(field, c.Fixed[field])
	}

	var answered []Question
	for _, id := range f.ActivePath(answers) {
		q, _ := c.Question(id)
		if q.Field != "" {
			answered = append(answered, q)
		}
	}
	sort.SliceStable(answered, func(i, j int) bool {
		return fieldRank(answered[i].Field) < fieldRank(answered[j].Field)
	})

	for _, q := range answered {
		pos, _ := c.Position(q.ID)
		raw := answers[pos]
		if q.Field == FieldRegion {
			in.Region = raw
			continue
		}
		v, err := ParseNumber(raw)
		if err != nil {
			return carbon.Inputs{}, &ValidationError{QuestionID: q.ID, Reason: "enter a number"}
		}
		applyNumeric(q.Field, v)
	}
	return in, nil
}

// orderedFields sorts fields so shared ratios apply before scoped overrides.
func orderedFields(m map[Field]float64) []Field {
	out := make([]Field, 0, len(m))
	for f := range m {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := fieldRank(out[i]), fieldRank(out[j])
		if ri != rj {
			return ri < rj
		}
		return out[i] < out[j]
	})
	return out
}

func fieldRank(f Field) int {
	scope, _, ok := f.Split()
	if ok && scope == ScopeRatios {
		return 0
	}
	return 1
}

func setStateKey(s *carbon.StateInputs, key string, v float64) {
	switch key {
	case KeyAreaHa:
		s.AreaHa = v
	case KeyTreeCrownCover:
		s.TreeCrownCover = v
	case KeyShrubCrownCover:
		s.ShrubCrownCover = v
	case KeyShrubAreaHa:
		s.ShrubAreaHa = v
	case KeyTreeRootShootRatio:
		s.TreeRootShootRatio = v
	case KeyShrubRootShootRatio:
		s.ShrubRootShootRatio = v
	case KeyShrubBiomassRatio:
		s.ShrubBiomassRatio = v
	}
}
