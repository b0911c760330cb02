// Package keywords turns free text into single-word keyword tokens and
// canonical genre hints. Everything here is pure text processing.
package keywords

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinTokenLength is the shortest token kept as a keyword.
const MinTokenLength = 3

var stopWords = toSet(
	"the", "and", "for", "but", "not", "with", "without", "about", "into", "onto", "from", "that",
	"this", "these", "those", "there", "their", "they", "them", "then", "than", "what", "when",
	"where", "which", "while", "who", "whom", "whose", "why", "how", "you", "your", "yours", "our",
	"ours", "his", "her", "hers", "its", "are", "was", "were", "been", "being", "have", "has", "had",
	"having", "does", "did", "doing", "can", "could", "should", "would", "will", "shall", "might",
	"must", "may", "all", "any", "some", "each", "every", "both", "few", "more", "most", "other",
	"such", "only", "own", "same", "too", "very", "just", "also", "even", "ever", "again", "once",
	"here", "out", "off", "over", "under", "after", "before", "because", "until", "against",
	"between", "through", "during", "above", "below", "down", "now", "one", "get", "got", "getting",
	"really", "maybe", "kind", "sort", "lot", "lots", "bit", "little", "much", "many", "please",
	"want", "wanna", "need", "like", "likes", "liked", "looking", "look", "find", "give", "show",
	"watch", "watching", "see", "something", "anything", "everything", "nothing", "thing", "things",
	"movie", "movies", "film", "films", "flick", "flicks", "recommend", "recommendation", "today",
	"tonight", "feel", "feeling", "feels", "mood", "make", "makes", "me", "im", "ive", "dont",
	"doesnt", "isnt", "let", "lets", "yeah", "okay", "well", "still", "yet", "way", "able",
	// Fragments left when "don't", "isn't" and friends split at the apostrophe.
	"don", "doesn", "didn", "isn", "wasn", "aren", "weren", "won", "wouldn", "couldn", "shouldn",
	"haven", "hasn", "hadn", "ain", "needn", "mustn",
)

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// IsStopWord reports whether the lowercase token is in the fixed stop-word set.
func IsStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}

// Tokenize splits text on whitespace and punctuation into lowercase word tokens.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return fields
}

// acceptable reports whether a lowercase token may be used as a keyword.
func acceptable(token string) bool {
	if utf8.RuneCountInString(token) < MinTokenLength {
		return false
	}
	return !IsStopWord(token)
}

// collector accumulates unique acceptable tokens up to a limit.
type collector struct {
	limit int
	seen  map[string]struct{}
	out   []string
}

func newCollector(limit int) *collector {
	return &collector{
		limit: limit,
		seen:  make(map[string]struct{}),
		out:   make([]string, 0, max(limit, 0)),
	}
}

func (c *collector) full() bool {
	return len(c.out) >= c.limit
}

// add tokenizes s and keeps every acceptable new token until the limit is hit.
func (c *collector) add(s string) {
	for _, tok := range Tokenize(s) {
		if c.full() {
			return
		}
		if !acceptable(tok) {
			continue
		}
		if _, dup := c.seen[tok]; dup {
			continue
		}
		c.seen[tok] = struct{}{}
		c.out = append(c.out, tok)
	}
}

// fillByFrequency adds the most frequent acceptable tokens of text.
func (c *collector) fillByFrequency(text string) {
	if c.full() {
		return
	}
	for _, tok := range rankByFrequency(text) {
		if c.full() {
			return
		}
		c.add(tok)
	}
}

// NormalizeKeywords turns raw keyword inputs into at most limit unique
// lowercase single-word tokens. Remaining slots are filled from the most
// frequent tokens of textFallback.
func NormalizeKeywords(rawInputs []string, textFallback string, limit int) []string {
	if limit <= 0 {
		return []string{}
	}
	c := newCollector(limit)
	for _, raw := range rawInputs {
		if c.full() {
			break
		}
		c.add(raw)
	}
	c.fillByFrequency(textFallback)
	return c.out
}

// rankByFrequency returns the acceptable tokens of text by descending count.
// Ties keep first-appearance order.
func rankByFrequency(text string) []string {
	type tokenCount struct {
		token string
		count int
		first int
	}

	counts := make(map[string]*tokenCount)
	for i, tok := range Tokenize(text) {
		if !acceptable(tok) {
			continue
		}
		if tc, ok := counts[tok]; ok {
			tc.count++
			continue
		}
		counts[tok] = &tokenCount{token: tok, count: 1, first: i}
	}

	ranked := make([]*tokenCount, 0, len(counts))
	for _, tc := range counts {
		ranked = append(ranked, tc)
	}

	// Sort by count (descending), then first appearance
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].first < ranked[j].first
	})

	out := make([]string, len(ranked))
	for i, tc := range ranked {
		out[i] = tc.token
	}
	return out
}
