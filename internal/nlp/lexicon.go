package nlp

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yaml
var defaultLexicon []byte

// ErrInvalidLexicon is returned when a lexicon file cannot be used.
var ErrInvalidLexicon = errors.New("invalid lexicon")

var knownTags = map[string]bool{
	"ADJ": true, "ADP": true, "ADV": true, "AUX": true, "CCONJ": true, "DET": true, "INTJ": true,
	"NOUN": true, "NUM": true, "PART": true, "PRON": true, "PROPN": true, "PUNCT": true,
	"SCONJ": true, "SYM": true, "VERB": true, "X": true,
}

// lexiconFile is the YAML layout of a lexicon.
type lexiconFile struct {
	Lemmas []struct {
		Canonical string   `yaml:"canonical"`
		Variants  []string `yaml:"variants"`
	} `yaml:"lemmas"`
	Tags []struct {
		Tag   string   `yaml:"tag"`
		Words []string `yaml:"words"`
	} `yaml:"tags"`
	Entities []struct {
		Label string   `yaml:"label"`
		Names []string `yaml:"names"`
	} `yaml:"entities"`
}

// phrase is a gazetteer entry split into tokens.
type phrase struct {
	words []string
	label string
}

// Load reads a lexicon from path, or the built-in lexicon when path is empty.
func Load(path string) (*Model, error) {
	if path == "" {
		return Parse(defaultLexicon)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon %s: %w", path, err)
	}
	return Parse(data)
}

// Default returns a model built from the built-in lexicon.
func Default() (*Model, error) {
	return Parse(defaultLexicon)
}

// Parse builds a model from YAML lexicon data.
func Parse(data []byte) (*Model, error) {
	var file lexiconFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLexicon, err)
	}

	m := &Model{
		lemmas:    make(map[string]string),
		tags:      make(map[string]string),
		gazetteer: make(map[string][]phrase),
	}

	for _, entry := range file.Lemmas {
		canonical := strings.ToLower(strings.TrimSpace(entry.Canonical))
		if canonical == "" {
			return nil, fmt.Errorf("%w: lemma entry without canonical form", ErrInvalidLexicon)
		}
		for _, v := range entry.Variants {
			m.lemmas[strings.ToLower(v)] = canonical
		}
	}

	for _, group := range file.Tags {
		if !knownTags[group.Tag] {
			return nil, fmt.Errorf("%w: unknown tag %q", ErrInvalidLexicon, group.Tag)
		}
		for _, w := range group.Words {
			w = strings.ToLower(w)
			if _, taken := m.tags[w]; !taken {
				m.tags[w] = group.Tag
			}
		}
	}

	for _, group := range file.Entities {
		if group.Label == "" {
			return nil, fmt.Errorf("%w: entity group without label", ErrInvalidLexicon)
		}
		for _, name := range group.Names {
			var words []string
			for _, tok := range tokenize(strings.ToLower(name)) {
				words = append(words, tok.text)
			}
			if len(words) == 0 {
				continue
			}
			m.gazetteer[words[0]] = append(m.gazetteer[words[0]], phrase{words: words, label: group.Label})
		}
	}
	for first := range m.gazetteer {
		phrases := m.gazetteer[first]
		sort.SliceStable(phrases, func(i, j int) bool {
			return len(phrases[i].words) > len(phrases[j].words)
		})
	}

	return m, nil
}
