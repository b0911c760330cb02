package query

import (
	"fmt"
	"strings"

	"github.com/justestif/go-moodflix/internal/mood"
)

const promptHeader = `You turn movie requests into search parameters.
Return JSON only, no prose, with the fields:
genres (array, max 4), keywords (array of single lowercase words, max 8),
tempo ("slow"|"medium"|"fast"|null), runtime_min, runtime_max (minutes or null),
era ({"from": year, "to": year} or null), language (ISO 639-1 code or null),
adult (boolean), moodResponse ("match"|"address"), ambiguous (boolean).
Set ambiguous to true when the request has no specific anchors such as a
mood, theme, setting, era, title or genre.
"match" means the movie should reinforce the mood, "address" means it should
counterbalance it.`

// buildPrompt embeds the request and the compact mood to genre reference table.
func buildPrompt(text string, moodLabel string, response mood.Response) string {
	var b strings.Builder
	b.WriteString(promptHeader)
	b.WriteString("\n\nReference moods and genres:\n")

	table := mood.GenreTable()
	for _, t := range mood.All() {
		fmt.Fprintf(&b, "- %s: %s\n", t, strings.Join(table[t], ", "))
	}

	b.WriteString("\nRequest:\n")
	fmt.Fprintf(&b, "text: %q\n", text)
	if moodLabel == "" {
		moodLabel = "unspecified"
	}
	fmt.Fprintf(&b, "mood: %s\n", moodLabel)
	fmt.Fprintf(&b, "moodResponse: %s\n", response)
	return b.String()
}
