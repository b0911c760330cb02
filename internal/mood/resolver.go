package mood

import (
	"regexp"
	"strings"
)

// HintSet holds suggestive tokens and genres for one response mode.
type HintSet struct {
	Keywords []string // up to 4 single-word tokens
	Genres   []string // up to 2 canonical genre names
}

// Hints holds the hint sets for both response modes of a mood.
type Hints struct {
	Match   HintSet
	Address HintSet
}

// For returns the hint set for the given response mode.
func (h Hints) For(r Response) HintSet {
	if r == Address {
		return h.Address
	}
	return h.Match
}

var hintTable = map[Tag]Hints{
	Happy: {
		Match:   HintSet{Keywords: []string{"feelgood", "uplifting", "comedy", "joyful"}, Genres: []string{"Comedy", "Family"}},
		Address: HintSet{Keywords: []string{"reflective", "bittersweet", "quiet", "drama"}, Genres: []string{"Drama"}},
	},
	Sad: {
		Match:   HintSet{Keywords: []string{"melancholy", "tearjerker", "grief", "bittersweet"}, Genres: []string{"Drama", "Romance"}},
		Address: HintSet{Keywords: []string{"comedy", "feelgood", "uplifting", "heartwarming"}, Genres: []string{"Comedy", "Family"}},
	},
	Romantic: {
		Match:   HintSet{Keywords: []string{"love", "romance", "relationship", "wedding"}, Genres: []string{"Romance", "Drama"}},
		Address: HintSet{Keywords: []string{"friendship", "independence", "adventure", "comedy"}, Genres: []string{"Comedy", "Adventure"}},
	},
	Excited: {
		Match:   HintSet{Keywords: []string{"action", "thrilling", "chase", "explosive"}, Genres: []string{"Action", "Adventure"}},
		Address: HintSet{Keywords: []string{"calm", "gentle", "slowburn", "reflective"}, Genres: []string{"Drama", "Documentary"}},
	},
	Relaxed: {
		Match:   HintSet{Keywords: []string{"calm", "gentle", "cozy", "lighthearted"}, Genres: []string{"Comedy", "Animation"}},
		Address: HintSet{Keywords: []string{"thrilling", "suspense", "action", "adrenaline"}, Genres: []string{"Action", "Thriller"}},
	},
	Angry: {
		Match:   HintSet{Keywords: []string{"revenge", "vigilante", "fight", "justice"}, Genres: []string{"Action", "Crime"}},
		Address: HintSet{Keywords: []string{"calm", "heartwarming", "uplifting", "comedy"}, Genres: []string{"Comedy", "Family"}},
	},
	Scared: {
		Match:   HintSet{Keywords: []string{"horror", "haunted", "supernatural", "terror"}, Genres: []string{"Horror", "Thriller"}},
		Address: HintSet{Keywords: []string{"comforting", "funny", "wholesome", "friendship"}, Genres: []string{"Comedy", "Animation"}},
	},
	Adventurous: {
		Match:   HintSet{Keywords: []string{"quest", "journey", "exploration", "treasure"}, Genres: []string{"Adventure", "Fantasy"}},
		Address: HintSet{Keywords: []string{"home", "cozy", "family", "grounded"}, Genres: []string{"Drama", "Family"}},
	},
	Mysterious: {
		Match:   HintSet{Keywords: []string{"mystery", "detective", "secret", "puzzle"}, Genres: []string{"Mystery", "Thriller"}},
		Address: HintSet{Keywords: []string{"lighthearted", "feelgood", "comedy", "straightforward"}, Genres: []string{"Comedy", "Romance"}},
	},
	Nostalgic: {
		Match:   HintSet{Keywords: []string{"retro", "childhood", "classic", "memories"}, Genres: []string{"Family", "Drama"}},
		Address: HintSet{Keywords: []string{"futuristic", "modern", "technology", "future"}, Genres: []string{"Science Fiction"}},
	},
	Curious: {
		Match:   HintSet{Keywords: []string{"discovery", "science", "mindbending", "documentary"}, Genres: []string{"Documentary", "Science Fiction"}},
		Address: HintSet{Keywords: []string{"lighthearted", "familiar", "simple", "comedy"}, Genres: []string{"Comedy"}},
	},
	Wholesome: {
		Match:   HintSet{Keywords: []string{"heartwarming", "kindness", "friendship", "family"}, Genres: []string{"Family", "Animation"}},
		Address: HintSet{Keywords: []string{"gritty", "dark", "crime", "edgy"}, Genres: []string{"Crime", "Thriller"}},
	},
	Cozy: {
		Match:   HintSet{Keywords: []string{"cozy", "warm", "holiday", "smalltown"}, Genres: []string{"Romance", "Comedy"}},
		Address: HintSet{Keywords: []string{"epic", "adventure", "thrilling", "journey"}, Genres: []string{"Adventure", "Action"}},
	},
	Edgy: {
		Match:   HintSet{Keywords: []string{"gritty", "dark", "rebellious", "underground"}, Genres: []string{"Crime", "Thriller"}},
		Address: HintSet{Keywords: []string{"gentle", "wholesome", "heartwarming", "calm"}, Genres: []string{"Family", "Comedy"}},
	},
}

// Resolve returns the hint sets for a mood. Unknown moods yield empty hints.
func Resolve(t Tag) Hints {
	return hintTable[t]
}

// GenreTable returns the compact mood to genre reference embedded in prompts.
func GenreTable() map[Tag][]string {
	out := make(map[Tag][]string, len(primary))
	for _, t := range primary {
		out[t] = hintTable[t].Match.Genres
	}
	return out
}

// moodCue pairs a text fragment with the mood it signals.
type moodCue struct {
	fragment string
	tag      Tag
}

// textCues is scanned in order; the first fragment found wins.
var textCues = []moodCue{
	{"heartbroken", Sad},
	{"depress", Sad},
	{"lonely", Sad},
	{"sad", Sad},
	{"cry", Sad},
	{"down today", Sad},
	{"furious", Angry},
	{"angry", Angry},
	{"pissed", Angry},
	{"mad at", Angry},
	{"frustrat", Angry},
	{"scared", Scared},
	{"afraid", Scared},
	{"spooky", Scared},
	{"terrif", Scared},
	{"romantic", Romantic},
	{"date night", Romantic},
	{"in love", Romantic},
	{"excited", Excited},
	{"pumped", Excited},
	{"hyped", Excited},
	{"adrenaline", Excited},
	{"adventur", Adventurous},
	{"explore", Adventurous},
	{"mysterious", Mysterious},
	{"mystery", Mysterious},
	{"puzzl", Mysterious},
	{"nostalg", Nostalgic},
	{"curious", Curious},
	{"wholesome", Wholesome},
	{"cozy", Cozy},
	{"cosy", Cozy},
	{"edgy", Edgy},
	{"relax", Relaxed},
	{"chill", Relaxed},
	{"calm", Relaxed},
	{"happy", Happy},
	{"cheerful", Happy},
	{"joy", Happy},
}

// Effective returns the labelled mood, or the one inferred from text when
// the label is empty or unknown.
func Effective(label, text string) (Tag, bool) {
	if t, ok := Parse(label); ok {
		return t, true
	}
	return InferFromText(text)
}

// InferFromText returns the mood of the first cue found in text.
func InferFromText(text string) (Tag, bool) {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return "", false
	}
	for _, c := range textCues {
		if strings.Contains(lower, c.fragment) {
			return c.tag, true
		}
	}
	return "", false
}

// moodWords lists the word forms a user may use to name a mood.
var moodWords = map[Tag][]string{
	Happy:       {"happy", "happiness", "cheerful"},
	Sad:         {"sad", "sadness", "down", "melancholy", "melancholic"},
	Romantic:    {"romantic", "romance", "in love"},
	Excited:     {"excited", "hyped", "pumped"},
	Relaxed:     {"relaxed", "chill", "calm"},
	Angry:       {"angry", "mad", "furious"},
	Scared:      {"scared", "spooked", "afraid"},
	Adventurous: {"adventurous"},
	Mysterious:  {"mysterious"},
	Nostalgic:   {"nostalgic"},
	Curious:     {"curious"},
	Wholesome:   {"wholesome"},
	Cozy:        {"cozy", "cosy"},
	Edgy:        {"edgy"},
}

const keepVerbs = `(?:stay|stays|staying|keep|keeps|keeping|remain|remaining|lean into|embrace|wallow)`

var (
	// negatedBefore matches a negator up to three words before a keep verb.
	negatedBefore = regexp.MustCompile(`(?i)\b(?:don['’]?t|do not|doesn['’]?t|not|no longer|stop|never)(?:\s+[\w'’]+){0,3}\s*$`)
	// awayAfter matches "keep me from", "stay out of" and similar.
	awayAfter = regexp.MustCompile(`(?i)^\s+(?:(?:me|us|myself|ourselves)\s+)?(?:from|out of|away from)\b`)
)

// ExplicitKeep reports whether text asks to stay in the given mood,
// e.g. "I want to stay sad" or "keep me in this mood". Negated requests
// ("I don't want to stay sad") and "keep me from ..." do not count.
func ExplicitKeep(text string, t Tag) bool {
	if t == "" || strings.TrimSpace(text) == "" {
		return false
	}
	words := append([]string{"mood", "feeling", strings.ToLower(string(t))}, moodWords[t]...)
	alts := make([]string, len(words))
	for i, w := range words {
		alts[i] = regexp.QuoteMeta(w)
	}
	pattern := `(?i)\b(` + keepVerbs + `)\b[^.!?]{0,40}?\b(?:` + strings.Join(alts, "|") + `)\b`
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
		verbStart, verbEnd := m[2], m[3]
		if negatedBefore.MatchString(sentencePrefix(text[:verbStart])) {
			continue
		}
		if awayAfter.MatchString(text[verbEnd:]) {
			continue
		}
		return true
	}
	return false
}

// sentencePrefix returns the part of s after its last sentence terminator.
func sentencePrefix(s string) string {
	if i := strings.LastIndexAny(s, ".!?"); i >= 0 {
		return s[i+1:]
	}
	return s
}
