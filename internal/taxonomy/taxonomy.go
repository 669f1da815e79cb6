// Package taxonomy declares the attribute categories, their candidate
// labels, and the mapping from the demographic model's native labels to
// the publishable ones. Everything is loaded once from an embedded file
// at process start and never mutated.
package taxonomy

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed taxonomy.yaml
var taxonomyYAML []byte

// Category identifies one attribute category.
type Category string

// Declared attribute categories.
const (
	Race     Category = "race"
	Gender   Category = "gender"
	Setting  Category = "setting"
	Lighting Category = "lighting"
	People   Category = "people"
)

// Sentinel labels for native demographic labels missing from the alias
// tables. A sentinel is a valid classification outcome, it never triggers
// fallback to the general classifier.
const (
	UnknownRace   = "unknown race"
	UnknownGender = "unknown gender"
)

// CategorySpec describes one category: its fixed ordered candidate label
// set and the phrasing template used to build classifier hypotheses.
type CategorySpec struct {
	Name       Category `yaml:"name"`
	Hypothesis string   `yaml:"hypothesis"`
	Candidates []string `yaml:"candidates"`
}

// Hypotheses returns one hypothesis string per candidate, in candidate order.
func (s CategorySpec) Hypotheses() []string {
	out := make([]string, len(s.Candidates))
	for i, c := range s.Candidates {
		out[i] = fmt.Sprintf(s.Hypothesis, c)
	}
	return out
}

type demographicSpec struct {
	Races         []string          `yaml:"races"`
	Genders       []string          `yaml:"genders"`
	RaceAliases   map[string]string `yaml:"race_aliases"`
	GenderAliases map[string]string `yaml:"gender_aliases"`
}

type taxonomyFile struct {
	Categories  []CategorySpec  `yaml:"categories"`
	Demographic demographicSpec `yaml:"demographic"`
}

var loaded taxonomyFile

func init() {
	if err := yaml.Unmarshal(taxonomyYAML, &loaded); err != nil {
		// Embedded file, a parse failure is a build defect.
		panic("failed to unmarshal embedded taxonomy.yaml: " + err.Error())
	}
	byName := make(map[Category]bool, len(loaded.Categories))
	for _, c := range loaded.Categories {
		byName[c.Name] = true
	}
	for _, want := range []Category{Race, Gender, Setting, Lighting, People} {
		if !byName[want] {
			panic(fmt.Sprintf("embedded taxonomy.yaml is missing category %q", want))
		}
	}
}

// Categories returns all declared categories in declaration order.
func Categories() []CategorySpec {
	return loaded.Categories
}

// Get returns the spec for a single category.
func Get(name Category) (CategorySpec, error) {
	for _, c := range loaded.Categories {
		if c.Name == name {
			return c, nil
		}
	}
	return CategorySpec{}, fmt.Errorf("unknown category: %s", name)
}

// NativeRaces returns the demographic model's race taxonomy, in the order
// of its output sub-distribution.
func NativeRaces() []string {
	return loaded.Demographic.Races
}

// NativeGenders returns the demographic model's gender taxonomy, in the
// order of its output sub-distribution.
func NativeGenders() []string {
	return loaded.Demographic.Genders
}

// MapRace maps a native race label onto the publishable taxonomy. Labels
// absent from the alias table map to the UnknownRace sentinel.
func MapRace(native string) string {
	if out, ok := loaded.Demographic.RaceAliases[native]; ok {
		return out
	}
	return UnknownRace
}

// MapGender maps a native gender label onto the publishable taxonomy.
func MapGender(native string) string {
	if out, ok := loaded.Demographic.GenderAliases[native]; ok {
		return out
	}
	return UnknownGender
}
