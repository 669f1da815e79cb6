package pipeline

import (
	"fmt"

	"github.com/kozaktomas/reverse-prompt/internal/taxonomy"
)

// defaultRace substitutes for a missing race tag at render time.
const defaultRace = "person"

// Render maps a tag set onto the fixed sentence template. Missing race
// falls back to "person" and missing gender to the empty string; these
// template-level defaults hold even though the resolver already
// guarantees completeness. Sentinel labels render verbatim.
func Render(tags TagSet) string {
	race := tags[taxonomy.Race]
	if race == "" {
		race = defaultRace
	}

	gender := tags[taxonomy.Gender]
	if gender != "" {
		gender = " " + gender
	}

	return fmt.Sprintf("A %s%s in a %s setting, under %s conditions, with %s in frame.",
		race, gender, tags[taxonomy.Setting], tags[taxonomy.Lighting], tags[taxonomy.People])
}
