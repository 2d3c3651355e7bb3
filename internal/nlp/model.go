// Package nlp is a small rule-based English language model: tokenizer, lemmatizer,
// part-of-speech tagger and gazetteer entity recognizer driven by a YAML lexicon.
package nlp

import (
	"context"
	"strings"
	"unicode"

	"github.com/pageza/chefai/backend/internal/recommend"
)

// Model is immutable after Parse and safe for concurrent use.
type Model struct {
	lemmas    map[string]string
	tags      map[string]string
	gazetteer map[string][]phrase
}

var _ recommend.LanguageModel = (*Model)(nil)

// suffixRule proposes base forms for words ending in suffix. The first candidate found in the
// lexicon wins.
type suffixRule struct {
	suffix     string
	candidates func(stem string) []string
}

var suffixRules = []suffixRule{
	{"ies", func(stem string) []string { return []string{stem + "y"} }},
	{"ves", func(stem string) []string { return []string{stem + "f", stem + "fe"} }},
	{"ing", func(stem string) []string { return []string{stem, stem + "e", undouble(stem)} }},
	{"ed", func(stem string) []string { return []string{stem, stem + "e", undouble(stem)} }},
	{"es", func(stem string) []string { return []string{stem, stem + "e"} }},
	{"s", func(stem string) []string { return []string{stem} }},
}

// undouble drops a doubled final consonant: "chopp" becomes "chop".
func undouble(stem string) string {
	n := len(stem)
	if n >= 2 && stem[n-1] == stem[n-2] && !strings.ContainsRune("aeiou", rune(stem[n-1])) {
		return stem[:n-1]
	}
	return stem
}

var adjectiveSuffixes = []string{"ous", "ful", "ic", "able", "ible", "ive", "less", "ish", "y"}

// Process analyses text. The context is only checked on entry.
func (m *Model) Process(ctx context.Context, text string) (recommend.Document, error) {
	if err := ctx.Err(); err != nil {
		return recommend.Document{}, err
	}

	spans := tokenize(text)
	doc := recommend.Document{Tokens: make([]recommend.Token, len(spans))}
	lowered := make([]string, len(spans))

	for i, sp := range spans {
		lowered[i] = strings.ToLower(sp.text)
		lemma := m.Lemma(lowered[i])
		doc.Tokens[i] = recommend.Token{
			Text:  sp.text,
			Lemma: lemma,
			POS:   m.Tag(lowered[i], lemma),
		}
	}

	for i := 0; i < len(spans); {
		p, ok := m.matchPhrase(lowered, i)
		if !ok {
			i++
			continue
		}
		end := i + len(p.words)
		doc.Entities = append(doc.Entities, recommend.Entity{
			Text:  text[spans[i].start:spans[end-1].end],
			Label: p.label,
			Start: i,
			End:   end,
		})
		i = end
	}

	return doc, nil
}

// matchPhrase finds the longest gazetteer phrase starting at token i.
func (m *Model) matchPhrase(words []string, i int) (phrase, bool) {
	for _, p := range m.gazetteer[words[i]] {
		if i+len(p.words) > len(words) {
			continue
		}
		matched := true
		for j, w := range p.words {
			if words[i+j] != w {
				matched = false
				break
			}
		}
		if matched {
			return p, true
		}
	}
	return phrase{}, false
}

// Lemma returns the base form of a lowercase word.
func (m *Model) Lemma(word string) string {
	if lemma, ok := m.lemmas[word]; ok {
		return lemma
	}
	if m.known(word) {
		return word
	}
	for _, rule := range suffixRules {
		if !strings.HasSuffix(word, rule.suffix) || len(word) <= len(rule.suffix)+1 {
			continue
		}
		stem := strings.TrimSuffix(word, rule.suffix)
		for _, cand := range rule.candidates(stem) {
			if m.known(cand) {
				return cand
			}
		}
	}
	return word
}

func (m *Model) known(word string) bool {
	_, ok := m.tags[word]
	return ok
}

// Tag returns the part-of-speech tag for a lowercase word and its lemma.
func (m *Model) Tag(word, lemma string) string {
	switch {
	case isPunct(word):
		return recommend.POSPunct
	case isNumber(word):
		return recommend.POSNum
	}
	if tag, ok := m.tags[word]; ok {
		return tag
	}
	if tag, ok := m.tags[lemma]; ok {
		return tag
	}
	if strings.HasSuffix(word, "ly") && len(word) > 4 {
		return "ADV"
	}
	for _, suffix := range adjectiveSuffixes {
		if strings.HasSuffix(word, suffix) && len(word) > len(suffix)+2 && !strings.HasSuffix(word, "ey") && !strings.HasSuffix(word, "ay") {
			return recommend.POSAdj
		}
	}
	return recommend.POSNoun
}

func isPunct(s string) bool {
	for _, r := range s {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return s != ""
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' && r != ',' {
			return false
		}
	}
	return unicode.IsDigit(rune(s[0]))
}
