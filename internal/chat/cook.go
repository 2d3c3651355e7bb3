package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pageza/chefai/backend/internal/rag"
)

// DefaultTitle is used when no title can be found in a generated recipe.
const DefaultTitle = "default recipe"

// CookRequest describes what the user has and wants for a generated recipe.
type CookRequest struct {
	AlwaysHave     []string `json:"always_have"`
	ExtrasToday    []string `json:"extras_today"`
	AllowedMethods []string `json:"allowed_methods"`
	PrepTime       int      `json:"prep_time"`
	People         int      `json:"people"`
	Allergies      []string `json:"allergies"`
	Dislikes       []string `json:"dislikes"`
	Preferences    []string `json:"preferences"`
	Favorites      []string `json:"favorites"`
}

// CookResponse is a generated recipe and an optional picture of it.
type CookResponse struct {
	Result   string  `json:"result"`
	ImageURL *string `json:"image_url"`
}

// Cook asks the generator for a complete recipe satisfying req and looks up an image for it.
func (s *Service) Cook(ctx context.Context, req CookRequest) (*CookResponse, error) {
	if s.deps.RAG == nil || !s.deps.RAG.Available() {
		return nil, ErrRAGUnavailable
	}

	answer, err := s.deps.RAG.Answer(ctx, CookPrompt(req), nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("cook generation failed")
		if errors.Is(err, rag.ErrUnavailable) {
			return nil, ErrRAGUnavailable
		}
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	text := strings.TrimSpace(answer.Text)
	resp := &CookResponse{Result: text}

	if s.deps.Images != nil {
		title := ExtractTitle(text)
		if url := s.deps.Images.FetchForRecipe(ctx, title+" food recipe dish"); url != "" {
			resp.ImageURL = &url
		} else {
			s.logger.Warn().Str("title", title).Msg("no image found for recipe")
		}
	}
	return resp, nil
}

// CookPrompt renders the instruction sent to the generator.
func CookPrompt(req CookRequest) string {
	var sb strings.Builder
	sb.WriteString("You are a culinary assistant.\n\n")
	fmt.Fprintf(&sb, "User wants to cook a meal for %d people in under %d minutes.\n\n", req.People, req.PrepTime)
	fmt.Fprintf(&sb, "Ingredients always at home: %s\n", join(req.AlwaysHave))
	fmt.Fprintf(&sb, "Extra ingredients today: %s\n", join(req.ExtrasToday))
	fmt.Fprintf(&sb, "Allowed methods: %s\n\n", join(req.AllowedMethods))
	sb.WriteString("User preferences:\n")
	fmt.Fprintf(&sb, "- Allergies: %s\n", join(req.Allergies))
	fmt.Fprintf(&sb, "- Dislikes: %s\n", join(req.Dislikes))
	fmt.Fprintf(&sb, "- Dietary preferences: %s\n", join(req.Preferences))
	fmt.Fprintf(&sb, "- Favorites: %s\n\n", join(req.Favorites))
	sb.WriteString("Generate a complete recipe that satisfies these constraints:\n")
	sb.WriteString("1. Recipe title\n")
	sb.WriteString("2. Ingredients list with quantities\n")
	sb.WriteString("3. Step-by-step cooking instructions\n")
	sb.WriteString("4. Estimated preparation time\n")
	sb.WriteString("5. Number of servings\n")
	sb.WriteString("6. A short visual description of how the dish should look\n\n")
	sb.WriteString("Please format the response with a clear title on the first line.")
	return sb.String()
}

func join(items []string) string {
	return strings.Join(items, ", ")
}

var skipTitlePrefixes = []string{"ingredients", "instructions", "recipe", "step", "serves"}

// ExtractTitle picks the recipe name out of generated text: among the first five non-empty
// lines, the first that is longer than five characters once list and heading markers are
// stripped, is not a section heading and does not end with a colon.
func ExtractTitle(text string) string {
	seen := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if seen == 5 {
			break
		}
		seen++

		clean := strings.TrimSpace(strings.Trim(line, "# *-1234567890."))
		if utf8.RuneCountInString(clean) <= 5 || strings.HasSuffix(clean, ":") || hasSkipPrefix(clean) {
			continue
		}
		return clean
	}
	return DefaultTitle
}

func hasSkipPrefix(s string) bool {
	lower := strings.ToLower(s)
	for _, p := range skipTitlePrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}
