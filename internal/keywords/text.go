package keywords

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	doubleQuoted = regexp.MustCompile(`"([^"]+)"|“([^”]+)”`)
	singleQuoted = regexp.MustCompile(`(?:^|\s)'([^']+)'(?:$|[\s.,!?;:])`)
	yearPattern  = regexp.MustCompile(`\b(?:19|20)\d{2}s?\b`)
	shortDecade  = regexp.MustCompile(`(?:^|[\s'’])(\d)0s\b`)
	capitalized  = regexp.MustCompile(`\b\p{Lu}[\p{L}]{2,}\b`)
)

// Fixed vocabularies tried in priority order after quotes and years.
var (
	emotionWords = toSet(
		"happy", "sad", "lonely", "anxious", "heartbroken", "hopeful", "melancholy", "joyful",
		"angry", "scared", "nostalgic", "bittersweet", "cheerful", "grief", "romantic", "tense",
		"uplifting", "heartwarming", "depressed", "stressed", "excited", "bored",
	)
	situationWords = toSet(
		"breakup", "divorce", "wedding", "vacation", "roadtrip", "heist", "revenge", "survival",
		"redemption", "friendship", "rivalry", "betrayal", "escape", "reunion", "graduation",
		"rainy", "sleepover", "party", "date", "family",
	)
	settingWords = toSet(
		"space", "ocean", "sea", "desert", "jungle", "city", "village", "island", "school",
		"prison", "castle", "forest", "mountains", "suburbs", "paris", "tokyo", "london", "rome",
		"underwater", "spaceship", "kingdom",
	)
	timePeriodWords = toSet(
		"medieval", "victorian", "futuristic", "prehistoric", "ancient", "sixties", "seventies",
		"eighties", "nineties", "wartime", "christmas", "halloween", "summer", "winter", "autumn",
		"spring", "retro",
	)
)

// ExtractFromText pulls up to limit keywords directly from raw text. Sources
// are tried in a fixed order: quoted phrases, years and decades, emotion,
// situation, setting and time-period vocabularies, capitalized proper nouns,
// and finally frequency analysis.
func ExtractFromText(text string, limit int) []string {
	if limit <= 0 {
		return []string{}
	}
	c := newCollector(limit)

	for _, m := range doubleQuoted.FindAllStringSubmatch(text, -1) {
		c.add(m[1] + " " + m[2])
	}
	for _, m := range singleQuoted.FindAllStringSubmatch(text, -1) {
		c.add(m[1])
	}

	for _, y := range yearTokens(text) {
		c.add(y)
	}

	tokens := Tokenize(text)
	for _, vocab := range []map[string]struct{}{emotionWords, situationWords, settingWords, timePeriodWords} {
		for _, tok := range tokens {
			if _, ok := vocab[tok]; ok {
				c.add(tok)
			}
		}
	}

	for _, name := range properNouns(text) {
		c.add(name)
	}

	c.fillByFrequency(text)
	return c.out
}

// yearTokens returns explicit years ("1994", "1990s") and expanded short
// decades ("80s" -> "1980s") in order of appearance.
func yearTokens(text string) []string {
	var out []string
	out = append(out, yearPattern.FindAllString(text, -1)...)
	for _, m := range shortDecade.FindAllStringSubmatch(text, -1) {
		d, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		century := "19"
		if d <= 2 {
			century = "20"
		}
		out = append(out, century+m[1]+"0s")
	}
	return out
}

// properNouns returns capitalized words that do not start a sentence.
func properNouns(text string) []string {
	var out []string
	for _, loc := range capitalized.FindAllStringIndex(text, -1) {
		if sentenceStart(text, loc[0]) {
			continue
		}
		out = append(out, text[loc[0]:loc[1]])
	}
	return out
}

// sentenceStart reports whether the word at index i opens a sentence.
func sentenceStart(text string, i int) bool {
	prefix := strings.TrimRight(text[:i], " \t\n\"'“‘(")
	if prefix == "" {
		return true
	}
	switch prefix[len(prefix)-1] {
	case '.', '!', '?', ':':
		return true
	}
	return false
}
