package classify

import (
	"fmt"
	"strings"

	"github.com/kozaktomas/reverse-prompt/internal/taxonomy"
)

// maxRemoteImageSize caps the dimension of images sent to remote vision
// backings.
const maxRemoteImageSize = 800

// buildChoicePrompt builds the system prompt constraining a vision model
// to the category's candidate set. Shared across remote backings.
func buildChoicePrompt(category taxonomy.CategorySpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You classify the %s attribute of a photo.\n", category.Name)
	b.WriteString("Pick exactly one label from this list:\n")
	for _, c := range category.Candidates {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	b.WriteString("\nAnswer with JSON: {\"label\": \"<one of the labels above>\"}\n")
	b.WriteString("Do not invent labels that are not in the list.")
	return b.String()
}

// choiceAnswer is the JSON shape remote backings must return.
type choiceAnswer struct {
	Label string `json:"label"`
}
