// Package mood holds the fixed mood reference data and the rules that turn a
// mood plus a response mode into genre and keyword hints.
package mood

import (
	"errors"
	"strings"
)

// Tag is a user-facing emotional-state label.
type Tag string

// Primary moods offered to users.
const (
	Happy       Tag = "Happy"
	Sad         Tag = "Sad"
	Romantic    Tag = "Romantic"
	Excited     Tag = "Excited"
	Relaxed     Tag = "Relaxed"
	Angry       Tag = "Angry"
	Scared      Tag = "Scared"
	Adventurous Tag = "Adventurous"
	Mysterious  Tag = "Mysterious"
)

// Extended moods used only for hinting.
const (
	Nostalgic Tag = "Nostalgic"
	Curious   Tag = "Curious"
	Wholesome Tag = "Wholesome"
	Cozy      Tag = "Cozy"
	Edgy      Tag = "Edgy"
)

// Response says whether content should reinforce or counterbalance the mood.
type Response string

const (
	// Match means content should reinforce the mood.
	Match Response = "match"
	// Address means content should counterbalance the mood.
	Address Response = "address"
)

// ErrInvalidResponse is returned when a response mode is neither match nor address.
var ErrInvalidResponse = errors.New("mood response must be \"match\" or \"address\"")

var primary = []Tag{Happy, Sad, Romantic, Excited, Relaxed, Angry, Scared, Adventurous, Mysterious}

var extended = []Tag{Nostalgic, Curious, Wholesome, Cozy, Edgy}

// All returns the primary moods in display order.
func All() []Tag {
	out := make([]Tag, len(primary))
	copy(out, primary)
	return out
}

// Parse resolves a label case-insensitively against every known mood.
func Parse(label string) (Tag, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", false
	}
	for _, group := range [][]Tag{primary, extended} {
		for _, t := range group {
			if strings.EqualFold(string(t), label) {
				return t, true
			}
		}
	}
	return "", false
}

// ParseResponse validates a response mode. An empty value means Match.
func ParseResponse(s string) (Response, error) {
	switch Response(strings.ToLower(strings.TrimSpace(s))) {
	case "", Match:
		return Match, nil
	case Address:
		return Address, nil
	default:
		return "", ErrInvalidResponse
	}
}

// String returns the mood label.
func (t Tag) String() string {
	return string(t)
}
