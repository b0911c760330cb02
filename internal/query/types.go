// Package query turns a free-text mood description into a structured
// catalog query. A generative model does the first pass; heuristics from
// the keywords and mood packages fill in or override what it returns.
package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/justestif/go-moodflix/internal/mood"
)

// Output bounds for a parsed query.
const (
	MaxKeywords = 8
	MaxGenres   = 4

	maxHintKeywords = 2
)

// Tempo is the requested pacing of a movie.
type Tempo string

const (
	TempoSlow   Tempo = "slow"
	TempoMedium Tempo = "medium"
	TempoFast   Tempo = "fast"
)

// Era is an inclusive release-year range.
type Era struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Contains reports whether year falls inside the range.
func (e *Era) Contains(year int) bool {
	return e != nil && year >= e.From && year <= e.To
}

// ParsedQuery is the structured form of one recommendation request.
//
// When Ambiguous is true Genres and Keywords are always empty and the caller
// should ask for clarification instead of querying the catalog.
type ParsedQuery struct {
	Genres       []string      `json:"genres"`
	Keywords     []string      `json:"keywords"`
	Tempo        Tempo         `json:"tempo,omitempty"`
	RuntimeMin   int           `json:"runtime_min,omitempty"`
	RuntimeMax   int           `json:"runtime_max,omitempty"`
	Era          *Era          `json:"era,omitempty"`
	Language     string        `json:"language,omitempty"`
	Adult        bool          `json:"adult"`
	MoodResponse mood.Response `json:"moodResponse"`
	Ambiguous    bool          `json:"ambiguous"`
}

// Generator is a one-shot text completion backend. A non-nil schema asks the
// backend to constrain its output to that shape.
type Generator interface {
	Generate(ctx context.Context, prompt string, schema *Schema) (string, error)
}

// Stage names the step of the generator fallback chain that produced a parse.
type Stage string

const (
	StageStrict   Stage = "strict"
	StageLoose    Stage = "loose"
	StageFallback Stage = "fallback"
)

// ErrParse is matched by every *ParseError.
var ErrParse = errors.New("generator output is not valid JSON")

// ParseError reports generator output that no recovery pass could decode.
type ParseError struct {
	Stage  Stage
	RawLen int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s generator output (%d bytes): %v", e.Stage, e.RawLen, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}
