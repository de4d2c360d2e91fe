// Package ai_response extracts structured values from free-text model output.
// Model answers frequently wrap JSON in prose or markdown fences, or answer a
// numeric question with trailing text.
package ai_response

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ExtractJSONObject returns the first balanced top-level {...} span in s.
// Braces inside JSON strings do not count toward nesting.
func ExtractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// LeadingInt parses an optionally signed integer at the start of s, after
// leading whitespace. Trailing text is ignored ("8/10" yields 8).
func LeadingInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Normalize trims and lowercases a short classification answer.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Lines splits s into trimmed, non-empty lines.
func Lines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Number is a JSON number that also accepts numeric strings ("12.5", "12 g").
// Set reports whether the field was present and non-null.
type Number struct {
	Value float64
	Set   bool
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = Number{}
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = Number{Value: f, Set: true}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("not a number: %s", string(data))
	}
	f, ok := leadingFloat(s)
	if !ok {
		return fmt.Errorf("not a number: %q", s)
	}
	*n = Number{Value: f, Set: true}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Set {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Or returns the value when set and def otherwise.
func (n Number) Or(def float64) float64 {
	if !n.Set {
		return def
	}
	return n.Value
}

func leadingFloat(s string) (float64, bool) {
	s = stripThousands(strings.TrimSpace(s))
	end := 0
	for end < len(s) && (s[end] == '.' || s[end] == '-' || s[end] == '+' || isDigit(s[end])) {
		end++
	}
	if end == 0 {
		return 0, false
	}
	// "1 200 kcal" must not read as 1.
	if rest := strings.TrimLeftFunc(s[end:], unicode.IsSpace); rest != "" && isDigit(rest[0]) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// stripThousands drops commas that sit between two digits ("1,200" -> "1200").
func stripThousands(s string) string {
	if !strings.Contains(s, ",") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == ',' && i > 0 && i+1 < len(s) && isDigit(s[i-1]) && isDigit(s[i+1]) {
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
