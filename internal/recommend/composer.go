package recommend

import "fmt"

const (
	msgNoMatches   = "I couldn't find any recipes matching your criteria."
	msgRejected    = "Try asking what you can cook with the ingredients you have."
	msgOneMatch    = "I found the perfect recipe for you: %s!"
	msgManyMatches = "I found %d recipes. Top recommendation is %s!"
)

// Compose renders the reply for a ranked list. The count is the full list length; the title is
// that of the first recipe. query is currently unused.
func Compose(query string, ranked []Recipe) string {
	switch len(ranked) {
	case 0:
		return msgNoMatches
	case 1:
		return fmt.Sprintf(msgOneMatch, ranked[0].Title)
	default:
		return fmt.Sprintf(msgManyMatches, len(ranked), ranked[0].Title)
	}
}
