package recommend

import "errors"

var (
	// ErrModelUnavailable marks a language model or embedder that is missing or failed.
	// The analyzer and ranker recover from it locally.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrMalformedRecipe is returned when the corpus holds a record without an id.
	ErrMalformedRecipe = errors.New("malformed recipe record")

	// ErrInvalidPreference is wrapped by every InvalidPreference diagnostic.
	ErrInvalidPreference = errors.New("invalid preference")
)
