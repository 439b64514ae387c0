// Package linkscan finds hyperlink occurrences in a document's canonical
// text: url, rune offset, surrounding context and a domain-based category.
//
// The scan is pure — no side effects, no failure mode. Malformed input
// simply yields zero matches. Offsets are rune positions so that
// multi-byte text (the corpus is largely Vietnamese) counts characters,
// not bytes.
package linkscan

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Link categories, in classification priority order.
const (
	TypeVideo     = "video"
	TypeDownload  = "download"
	TypeCommunity = "community"
	TypeOfficial  = "official"
	TypeExternal  = "external"
)

// Reference is one hyperlink occurrence.
type Reference struct {
	URL      string `json:"url"`
	Position int    `json:"position"` // rune offset of the match in the canonical text
	Context  string `json:"context"`  // up to 50 runes either side of the match
	Type     string `json:"type"`
}

// Rule assigns a category to urls containing any of its substrings.
type Rule struct {
	Type       string
	Substrings []string
}

// DefaultRules returns the built-in classification table. First matching
// rule wins; urls matching nothing are TypeExternal.
func DefaultRules() []Rule {
	return []Rule{
		{Type: TypeVideo, Substrings: []string{"youtube.com", "youtu.be"}},
		{Type: TypeDownload, Substrings: []string{"download", "drive.google", "dropbox"}},
		{Type: TypeCommunity, Substrings: []string{"discord", "forum", "reddit"}},
		{Type: TypeOfficial, Substrings: []string{"pokemmo.com"}},
	}
}

// urlPattern excludes whitespace and common wrapping punctuation, and
// requires the final character to not be sentence punctuation so that
// "https://x.com/y," matches without the comma.
const urlPattern = "https?://[^\\s<>\"{}|\\\\^`\\[\\]]+[^\\s<>\"{}|\\\\^`\\[\\].,;:!?)]"

// trailingPunct is stripped from match tails as a second line of defence.
const trailingPunct = ".,;:!?)"

const contextRunes = 50

// Extractor scans text for hyperlinks. The pattern is compiled once per
// instance; instances are safe for concurrent use.
type Extractor struct {
	re    *regexp.Regexp
	rules []Rule
}

// New creates an Extractor. With no rules it uses DefaultRules.
func New(rules ...Rule) *Extractor {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Extractor{
		re:    regexp.MustCompile(urlPattern),
		rules: rules,
	}
}

// Extract scans text once and returns every hyperlink occurrence in order.
func (e *Extractor) Extract(text string) []Reference {
	matches := e.re.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	runes := []rune(text)
	refs := make([]Reference, 0, len(matches))

	// Matches arrive in byte order; convert byte offsets to rune offsets
	// with a single forward walk.
	bytePos, runePos := 0, 0
	toRune := func(byteOff int) int {
		for bytePos < byteOff {
			_, size := utf8.DecodeRuneInString(text[bytePos:])
			bytePos += size
			runePos++
		}
		return runePos
	}

	for _, m := range matches {
		start := toRune(m[0])
		end := toRune(m[1])

		url := strings.TrimRight(text[m[0]:m[1]], trailingPunct)
		end -= (m[1] - m[0]) - len(url) // trailing punct is ASCII, byte == rune

		ctxStart := start - contextRunes
		if ctxStart < 0 {
			ctxStart = 0
		}
		ctxEnd := end + contextRunes
		if ctxEnd > len(runes) {
			ctxEnd = len(runes)
		}

		refs = append(refs, Reference{
			URL:      url,
			Position: start,
			Context:  strings.TrimSpace(string(runes[ctxStart:ctxEnd])),
			Type:     e.Classify(url),
		})
	}
	return refs
}

// Classify returns the category of url by the first matching rule.
func (e *Extractor) Classify(url string) string {
	lower := strings.ToLower(url)
	for _, rule := range e.rules {
		for _, sub := range rule.Substrings {
			if strings.Contains(lower, sub) {
				return rule.Type
			}
		}
	}
	return TypeExternal
}
