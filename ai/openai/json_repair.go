package openai

import "strings"

// repairJSON fixes the key quoting mistakes small models make in JSON mode.
// Both `{translation": "x"}` and `{translation: "x"}` become `{"translation": "x"}`.
// Anything inside string values is copied unchanged.
func repairJSON(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 8)

	inString := false
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if inString {
			b.WriteRune(r)
			switch r {
			case '\\':
				if i+1 < len(runes) {
					i++
					b.WriteRune(runes[i])
				}
			case '"':
				inString = false
			}
			continue
		}

		if r == '"' {
			inString = true
			b.WriteRune(r)
			continue
		}
		if !isKeyRune(r) || !expectsKey(runes, i) {
			b.WriteRune(r)
			continue
		}

		end := i
		for end < len(runes) && isKeyRune(runes[end]) {
			end++
		}
		key := string(runes[i:end])
		switch {
		case end < len(runes) && runes[end] == '"':
			// missing opening quote only
			b.WriteString(`"` + key + `"`)
			end++
		case end < len(runes) && runes[end] == ':':
			b.WriteString(`"` + key + `"`)
		default:
			b.WriteString(key)
		}
		i = end - 1
	}
	return b.String()
}

// expectsKey reports whether the previous non-space rune before i opens an
// object or separates members.
func expectsKey(runes []rune, i int) bool {
	for j := i - 1; j >= 0; j-- {
		switch runes[j] {
		case ' ', '\t', '\n', '\r':
			continue
		case '{', ',':
			return true
		default:
			return false
		}
	}
	return false
}
