package flow

import (
	"fmt"
	"sort"

	"github.com/rshade/sequestra/internal/carbon"
)

// Built-in catalog names.
const (
	CatalogDMRV     = "dmrv"
	CatalogBaseline = "baseline"
	CatalogProject  = "project"
)

// Answers of the dMRV branch question.
const (
	AnswerYes = "Yes"
	AnswerNo  = "No"
)

const builtinVersion = "1.0.0"

// BuiltinNames lists the built-in catalogs in display order.
func BuiltinNames() []string {
	return []string{CatalogBaseline, CatalogProject, CatalogDMRV}
}

// Builtin returns a fresh copy of the named built-in catalog. Region questions
// offer every region of table, sorted, null-valued regions included.
func Builtin(name string, table *carbon.BiomassTable) (*Catalog, error) {
	switch name {
	case CatalogDMRV:
		return DMRVCatalog(), nil
	case CatalogBaseline:
		return BaselineCatalog(table.Regions()), nil
	case CatalogProject:
		return ProjectCatalog(table.Regions()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCatalog, name)
	}
}

func number(id int, prompt string, field Field, unit string) Question {
	return Question{
		ID:          id,
		Prompt:      prompt,
		Kind:        KindNumber,
		Field:       field,
		NonNegative: true,
		Unit:        unit,
		Fraction:    field.IsCover(),
	}
}

func withDefault(q Question, def string) Question {
	q.Default = def
	return q
}

func linear(ids ...int) map[int]Route {
	routes := make(map[int]Route, len(ids))
	for i := 0; i+1 < len(ids); i++ {
		routes[ids[i]] = Route{Default: ids[i+1]}
	}
	return routes
}

func regionQuestion(id int, regions []string) Question {
	opts := append([]string(nil), regions...)
	sort.Strings(opts)
	return Question{
		ID:      id,
		Prompt:  "In which country is the restoration site?",
		Kind:    KindSelect,
		Options: opts,
		Field:   FieldRegion,
	}
}

// DMRVCatalog estimates tree carbon from a measured above-ground biomass
// density, with the tree root-shoot ratio fixed at its default.
func DMRVCatalog() *Catalog {
	return &Catalog{
		Name:    CatalogDMRV,
		Title:   "dMRV biomass estimate",
		Version: builtinVersion,
		Mode:    carbon.ModeSingle,
		Questions: []Question{
			number(1, "What is the measured above-ground biomass density?", FieldBiomassDensity, "t/ha"),
			number(2, "How large is the site?", StateField(ScopeBaseline, KeyAreaHa), "ha"),
			number(3, "What fraction of the site is covered by tree crowns?",
				StateField(ScopeBaseline, KeyTreeCrownCover), ""),
		},
		Routes: linear(1, 2, 3),
		Fixed: map[Field]float64{
			StateField(ScopeRatios, KeyTreeRootShootRatio): carbon.DefaultTreeRootShootRatio,
		},
	}
}

// BaselineCatalog estimates the carbon stock of one state. A site with a dMRV
// estimate skips the region lookup.
func BaselineCatalog(regions []string) *Catalog {
	routes := map[int]Route{
		1: {On: map[string]int{AnswerYes: 2}, Default: 3},
		2: {Default: 4},
		3: {Default: 4},
	}
	for id, r := range linear(4, 5, 6, 7, 8, 9, 10) {
		routes[id] = r
	}

	return &Catalog{
		Name:    CatalogBaseline,
		Title:   "Carbon stock estimate",
		Version: builtinVersion,
		Mode:    carbon.ModeSingle,
		Questions: []Question{
			{
				ID:      1,
				Prompt:  "Do you already have a dMRV above-ground biomass estimate?",
				Kind:    KindSelect,
				Options: []string{AnswerYes, AnswerNo},
				Default: AnswerNo,
			},
			number(2, "What is the measured above-ground biomass density?", FieldBiomassDensity, "t/ha"),
			regionQuestion(3, regions),
			number(4, "How large is the site?", StateField(ScopeBaseline, KeyAreaHa), "ha"),
			number(5, "What fraction of the site is covered by tree crowns?",
				StateField(ScopeBaseline, KeyTreeCrownCover), ""),
			number(6, "What fraction of the shrub area is covered by shrub crowns?",
				StateField(ScopeBaseline, KeyShrubCrownCover), ""),
			number(7, "How large is the shrub area?", StateField(ScopeBaseline, KeyShrubAreaHa), "ha"),
			withDefault(number(8, "Tree root-to-shoot ratio",
				StateField(ScopeBaseline, KeyTreeRootShootRatio), ""), "0.25"),
			withDefault(number(9, "Shrub root-to-shoot ratio",
				StateField(ScopeBaseline, KeyShrubRootShootRatio), ""), "0.4"),
			withDefault(number(10, "Shrub biomass ratio (BDRSF)",
				StateField(ScopeBaseline, KeyShrubBiomassRatio), ""), "0.1"),
		},
		Routes: routes,
	}
}

// ProjectCatalog estimates project minus baseline. Each state asks for its
// own ratios.
func ProjectCatalog(regions []string) *Catalog {
	questions := []Question{regionQuestion(1, regions)}
	questions = append(questions, stateQuestions(2, ScopeBaseline, "before restoration")...)
	questions = append(questions, Question{
		ID:     9,
		Prompt: "Project state",
		Kind:   KindInformation,
		Info: "The next questions describe the site after restoration. " +
			"The estimate is the project stock minus the baseline stock.",
	})
	questions = append(questions, stateQuestions(10, ScopeProject, "after restoration")...)

	ids := make([]int, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}

	return &Catalog{
		Name:      CatalogProject,
		Title:     "Restoration project delta",
		Version:   builtinVersion,
		Mode:      carbon.ModeDelta,
		Questions: questions,
		Routes:    linear(ids...),
	}
}

// stateQuestions returns the seven area/cover/ratio questions of one state,
// numbered from first.
func stateQuestions(first int, scope, label string) []Question {
	f := func(key string) Field { return StateField(scope, key) }
	return []Question{
		number(first, "Site area "+label, f(KeyAreaHa), "ha"),
		number(first+1, "Tree crown cover "+label, f(KeyTreeCrownCover), ""),
		number(first+2, "Shrub crown cover "+label, f(KeyShrubCrownCover), ""),
		number(first+3, "Shrub area "+label, f(KeyShrubAreaHa), "ha"),
		withDefault(number(first+4, "Tree root-to-shoot ratio "+label, f(KeyTreeRootShootRatio), ""), "0.25"),
		withDefault(number(first+5, "Shrub root-to-shoot ratio "+label, f(KeyShrubRootShootRatio), ""), "0.4"),
		withDefault(number(first+6, "Shrub biomass ratio (BDRSF) "+label, f(KeyShrubBiomassRatio), ""), "0.1"),
	}
}
