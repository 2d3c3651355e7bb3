package nlp

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// span is a token with its byte offsets in the source text.
type span struct {
	text       string
	start, end int
}

var clitics = []string{"n't", "'s", "'re", "'m", "'ll", "'ve", "'d"}

// tokenize splits text into words, clitics and punctuation. Words are runs of letters and
// digits joined by inner hyphens or apostrophes; contractions are split the way "what's" becomes
// "what" + "'s" and "don't" becomes "do" + "n't".
func tokenize(text string) []span {
	var out []span
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case isWordRune(r) || (isApostrophe(r) && startsWord(text[i+size:])):
			end := scanWord(text, i)
			out = append(out, splitClitics(text, i, end)...)
			i = end
		default:
			out = append(out, span{text: text[i : i+size], start: i, end: i + size})
			i += size
		}
	}
	return out
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isApostrophe(r rune) bool {
	return r == '\'' || r == '’'
}

func startsWord(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return isWordRune(r)
}

// scanWord returns the end offset of the word starting at i.
func scanWord(text string, i int) int {
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if isWordRune(r) {
			i += size
			continue
		}
		if (r == '-' || isApostrophe(r)) && startsWord(text[i+size:]) {
			i += size
			continue
		}
		break
	}
	return i
}

// splitClitics peels trailing contractions off a word and a stray leading apostrophe off its front.
func splitClitics(text string, start, end int) []span {
	word := normalizeApostrophes(text[start:end])

	var head []span
	if strings.HasPrefix(word, "'") && !isClitic(word) {
		head = append(head, span{text: "'", start: start, end: start + apostropheLen(text[start:])})
		start = head[0].end
		word = normalizeApostrophes(text[start:end])
	}

	for _, c := range clitics {
		if len(word) > len(c) && strings.HasSuffix(strings.ToLower(word), c) {
			cut := end - byteLenOfSuffix(text[start:end], len([]rune(c)))
			return append(head,
				span{text: word[:len(word)-len(c)], start: start, end: cut},
				span{text: word[len(word)-len(c):], start: cut, end: end},
			)
		}
	}
	return append(head, span{text: word, start: start, end: end})
}

func isClitic(word string) bool {
	for _, c := range clitics {
		if strings.EqualFold(word, c) {
			return true
		}
	}
	return false
}

func normalizeApostrophes(s string) string {
	return strings.ReplaceAll(s, "’", "'")
}

func apostropheLen(s string) int {
	_, size := utf8.DecodeRuneInString(s)
	return size
}

// byteLenOfSuffix is the byte length of the last n runes of s.
func byteLenOfSuffix(s string, n int) int {
	size := 0
	for ; n > 0; n-- {
		_, w := utf8.DecodeLastRuneInString(s[:len(s)-size])
		size += w
	}
	return size
}
