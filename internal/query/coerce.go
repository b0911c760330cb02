package query

import (
	"math"
	"strconv"
	"strings"
)

// rawQuery holds decoded generator fields before normalization.
type rawQuery struct {
	genres     []string
	keywords   []string
	tempo      Tempo
	runtimeMin int
	runtimeMax int
	era        *Era
	language   string
	adult      bool
	ambiguous  bool
}

// coerceFields reads the loosely typed generator object. Fields of the
// wrong type are treated as absent.
func coerceFields(obj map[string]any) rawQuery {
	return rawQuery{
		genres:     coerceStrings(obj["genres"]),
		keywords:   coerceStrings(obj["keywords"]),
		tempo:      coerceTempo(obj["tempo"]),
		runtimeMin: coercePositiveInt(obj["runtime_min"]),
		runtimeMax: coercePositiveInt(obj["runtime_max"]),
		era:        coerceEra(obj["era"]),
		language:   coerceLanguage(obj["language"]),
		adult:      coerceBool(obj["adult"]),
		ambiguous:  coerceBool(obj["ambiguous"]),
	}
}

// coerceStrings accepts an array of strings or a comma-separated string.
func coerceStrings(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(t, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	default:
		return nil
	}
}

// coerceBool is strict: only true, "true", "yes", "1" and non-zero numbers count.
func coerceBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "1":
			return true
		}
	case float64:
		return t != 0
	}
	return false
}

func coerceTempo(v any) Tempo {
	s, _ := v.(string)
	switch Tempo(strings.ToLower(strings.TrimSpace(s))) {
	case TempoSlow:
		return TempoSlow
	case TempoMedium:
		return TempoMedium
	case TempoFast:
		return TempoFast
	}
	return ""
}

func coercePositiveInt(v any) int {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		f = n
	default:
		return 0
	}
	if f <= 0 || math.IsNaN(f) || f > math.MaxInt32 {
		return 0
	}
	return int(math.Round(f))
}

// coerceEra accepts {"from","to"}, [from, to] or a decade string like "1990s".
func coerceEra(v any) *Era {
	var from, to int
	switch t := v.(type) {
	case map[string]any:
		from, to = coercePositiveInt(t["from"]), coercePositiveInt(t["to"])
	case []any:
		if len(t) > 0 {
			from = coercePositiveInt(t[0])
		}
		if len(t) > 1 {
			to = coercePositiveInt(t[1])
		}
	case string:
		s := strings.TrimSuffix(strings.TrimSpace(t), "s")
		if y := coercePositiveInt(s); y > 0 {
			from, to = y, y
			if strings.HasSuffix(strings.TrimSpace(t), "s") && y%10 == 0 {
				to = y + 9
			}
		}
	default:
		return nil
	}

	switch {
	case from == 0 && to == 0:
		return nil
	case from == 0:
		from = to
	case to == 0:
		to = from
	}
	if from > to {
		from, to = to, from
	}
	return &Era{From: from, To: to}
}

// coerceLanguage keeps short language codes and drops placeholder values.
func coerceLanguage(v any) string {
	s, _ := v.(string)
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "null", "none", "any", "n/a":
		return ""
	}
	if len(s) < 2 || len(s) > 5 {
		return ""
	}
	return s
}
