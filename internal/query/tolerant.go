package query

import (
	"errors"
	"regexp"
	"strings"

	"github.com/goccy/go-json"
)

// errNotObject is returned when the recovered JSON is not an object.
var errNotObject = errors.New("decoded JSON is not an object")

// recoveryPass is one named normalization step. Passes are applied
// cumulatively and decoding is retried after each one.
type recoveryPass struct {
	name  string
	apply func(string) string
}

var recoveryPasses = []recoveryPass{
	{"fence-strip", stripFences},
	{"balanced-span", extractBalancedSpan},
	{"smart-quotes", normalizeSmartQuotes},
	{"literals", normalizeLiterals},
	{"bare-keys", quoteBareKeys},
	{"single-quotes", convertSingleQuotes},
	{"trailing-commas", stripTrailingCommas},
}

// DecodeTolerant decodes generator output into a JSON object. Strict
// decoding is tried first, then each recovery pass in order. It returns
// the name of the pass that made decoding succeed ("" for strict).
func DecodeTolerant(raw string) (map[string]any, string, error) {
	obj, err := decodeObject(raw)
	if err == nil {
		return obj, "", nil
	}

	s := raw
	for _, p := range recoveryPasses {
		next := p.apply(s)
		if next == s {
			continue
		}
		s = next
		if obj, err = decodeObject(s); err == nil {
			return obj, p.name, nil
		}
	}
	return nil, "", err
}

// decodeObject accepts an object, or an array whose first element is an object.
func decodeObject(s string) (map[string]any, error) {
	var v any
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &v); err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case map[string]any:
		return t, nil
	case []any:
		if len(t) > 0 {
			if obj, ok := t[0].(map[string]any); ok {
				return obj, nil
			}
		}
	}
	return nil, errNotObject
}

var fencePattern = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*[ \t]*\r?\n?(.*?)(?:```|$)")

// stripFences returns the body of the first markdown code fence.
func stripFences(s string) string {
	m := fencePattern.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	return strings.TrimSpace(m[1])
}

// extractBalancedSpan returns the first balanced {...} span, or [...] span
// that opens with an object. Bracketed prose such as "[Result]" is skipped.
// Without such a span it falls back to the span at the first bracket.
// Brackets inside strings are ignored.
func extractBalancedSpan(s string) string {
	first := strings.IndexAny(s, "{[")
	if first < 0 {
		return s
	}

	for start := first; start >= 0; {
		span := balancedFrom(s, start)
		if s[start] == '{' || strings.HasPrefix(strings.TrimSpace(span[1:]), "{") {
			return span
		}
		next := strings.IndexAny(s[start+1:], "{[")
		if next < 0 {
			break
		}
		start += next + 1
	}
	return balancedFrom(s, first)
}

// balancedFrom returns the balanced span opening at s[start], or the rest
// of s when it never closes.
func balancedFrom(s string, start int) string {
	depth := 0
	var quote byte
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return s[start:]
}

var smartQuotes = strings.NewReplacer(
	"“", `"`, "”", `"`, "„", `"`, "«", `"`, "»", `"`,
	"‘", "'", "’", "'", "‚", "'",
)

func normalizeSmartQuotes(s string) string {
	return smartQuotes.Replace(s)
}

var pythonLiterals = regexp.MustCompile(`\b(True|False|None)\b`)

// normalizeLiterals rewrites Python-style True/False/None outside strings.
func normalizeLiterals(s string) string {
	return mapOutsideStrings(s, func(seg string) string {
		return pythonLiterals.ReplaceAllStringFunc(seg, func(lit string) string {
			switch lit {
			case "True":
				return "true"
			case "False":
				return "false"
			default:
				return "null"
			}
		})
	})
}

var bareKey = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)(\s*:)`)

// quoteBareKeys wraps unquoted object keys in double quotes.
func quoteBareKeys(s string) string {
	return mapOutsideStrings(s, func(seg string) string {
		return bareKey.ReplaceAllString(seg, `$1"$2"$3`)
	})
}

var trailingComma = regexp.MustCompile(`,(\s*[}\]])`)

func stripTrailingCommas(s string) string {
	return mapOutsideStrings(s, func(seg string) string {
		return trailingComma.ReplaceAllString(seg, "$1")
	})
}

// convertSingleQuotes rewrites 'single-quoted' strings as JSON strings.
func convertSingleQuotes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		c := s[i]
		switch c {
		case '"':
			end := stringEnd(s, i)
			b.WriteString(s[i:end])
			i = end
		case '\'':
			end := stringEnd(s, i)
			bodyEnd := end
			if end-1 > i && s[end-1] == '\'' {
				bodyEnd = end - 1
			}
			body := s[i+1 : bodyEnd]
			b.WriteByte('"')
			for j := 0; j < len(body); j++ {
				switch {
				case body[j] == '\\' && j+1 < len(body) && body[j+1] == '\'':
					b.WriteByte('\'')
					j++
				case body[j] == '"':
					b.WriteString(`\"`)
				default:
					b.WriteByte(body[j])
				}
			}
			b.WriteByte('"')
			i = end
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// mapOutsideStrings applies fn to every run of s that is not inside a
// single- or double-quoted string literal.
func mapOutsideStrings(s string, fn func(string) string) string {
	var b strings.Builder
	b.Grow(len(s))
	segStart := 0
	for i := 0; i < len(s); {
		if s[i] != '"' && s[i] != '\'' {
			i++
			continue
		}
		b.WriteString(fn(s[segStart:i]))
		end := stringEnd(s, i)
		b.WriteString(s[i:end])
		i = end
		segStart = end
	}
	b.WriteString(fn(s[segStart:]))
	return b.String()
}

// stringEnd returns the index just past the string literal opening at s[start].
// An unterminated literal runs to the end of s.
func stringEnd(s string, start int) int {
	quote := s[start]
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case quote:
			return i + 1
		}
	}
	return len(s)
}
