package mood

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		label  string
		want   Tag
		wantOK bool
	}{
		{"exact primary", "Sad", Sad, true},
		{"lowercase", "romantic", Romantic, true},
		{"extended mood", "COZY", Cozy, true},
		{"padded", "  Edgy ", Edgy, true},
		{"unknown", "Hungry", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.label)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Parse(%q) = (%q, %v), want (%q, %v)", tt.label, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		input   string
		want    Response
		wantErr error
	}{
		{"", Match, nil},
		{"match", Match, nil},
		{"ADDRESS", Address, nil},
		{"ignore", "", ErrInvalidResponse},
	}

	for _, tt := range tests {
		got, err := ParseResponse(tt.input)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("ParseResponse(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseResponse(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestInferFromText(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   Tag
		wantOK bool
	}{
		{"direct word", "I'm feeling really happy today", Happy, true},
		{"stem match", "kind of depressed lately", Sad, true},
		{"first cue wins over later cue", "I'm sad but also a little happy", Sad, true},
		{"list order breaks ties", "happy and scared at the same time", Scared, true},
		{"multi-word cue", "planning a date night", Romantic, true},
		{"no cue", "something with spaceships", "", false},
		{"blank", "   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := InferFromText(tt.text)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("InferFromText(%q) = (%q, %v), want (%q, %v)", tt.text, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestEffective(t *testing.T) {
	tests := []struct {
		name   string
		label  string
		text   string
		want   Tag
		wantOK bool
	}{
		{"label wins", "Happy", "so sad today", Happy, true},
		{"inferred from text", "", "feeling lonely tonight", Sad, true},
		{"unknown label falls back", "Hungry", "I'm furious", Angry, true},
		{"nothing", "", "a movie please", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Effective(tt.label, tt.text)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Effective(%q, %q) = %q, %v, want %q, %v", tt.label, tt.text, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestExplicitKeep(t *testing.T) {
	tests := []struct {
		name string
		text string
		tag  Tag
		want bool
	}{
		{"stay sad", "I want to stay sad, something bittersweet", Sad, true},
		{"keep the mood", "keep me in this mood please", Happy, true},
		{"remain variant", "I'd like to remain melancholic tonight", Sad, true},
		{"different mood named", "I want to stay happy", Sad, false},
		{"no keep verb", "I am sad, cheer me up", Sad, false},
		{"sentence boundary breaks link", "I stay home a lot. Sad movies please", Sad, false},
		{"empty tag", "stay sad", "", false},
		{"negated keep", "I don't want to stay sad, cheer me up", Sad, false},
		{"negated with smart apostrophe", "I don’t wanna stay sad", Sad, false},
		{"not going to remain", "I'm not going to remain sad tonight", Sad, false},
		{"no longer", "no longer staying down", Sad, false},
		{"keep me from", "keep me from feeling down", Sad, false},
		{"stay out of", "help me stay out of this sad mood", Sad, false},
		{"negation in earlier sentence", "I don't like horror. I want to stay sad", Sad, true},
		{"later keep survives earlier negation", "don't stay sad forever, ok fine, keep me sad", Sad, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExplicitKeep(tt.text, tt.tag); got != tt.want {
				t.Errorf("ExplicitKeep(%q, %q) = %v, want %v", tt.text, tt.tag, got, tt.want)
			}
		})
	}
}

func TestResolve_TableBounds(t *testing.T) {
	for _, group := range [][]Tag{primary, extended} {
		for _, tag := range group {
			h := Resolve(tag)
			for _, r := range []Response{Match, Address} {
				set := h.For(r)
				if len(set.Keywords) == 0 || len(set.Keywords) > 4 {
					t.Errorf("%s/%s: %d keywords, want 1-4", tag, r, len(set.Keywords))
				}
				if len(set.Genres) == 0 || len(set.Genres) > 2 {
					t.Errorf("%s/%s: %d genres, want 1-2", tag, r, len(set.Genres))
				}
			}
		}
	}
}

func TestResolve_SadAddressHints(t *testing.T) {
	set := Resolve(Sad).For(Address)
	if set.Keywords[0] != "comedy" || set.Keywords[1] != "feelgood" {
		t.Errorf("Sad/address leading keywords = %v, want [comedy feelgood ...]", set.Keywords)
	}
}

func TestResolve_Unknown(t *testing.T) {
	h := Resolve("Hungry")
	if len(h.Match.Keywords) != 0 || len(h.Address.Genres) != 0 {
		t.Errorf("Resolve(unknown) = %+v, want empty", h)
	}
}

func TestGenreTable(t *testing.T) {
	table := GenreTable()
	if len(table) != len(primary) {
		t.Fatalf("GenreTable() has %d moods, want %d", len(table), len(primary))
	}
	if got := table[Scared]; len(got) == 0 || got[0] != "Horror" {
		t.Errorf("GenreTable()[Scared] = %v, want Horror first", got)
	}
}
