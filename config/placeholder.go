package config

import "strings"

const (
	placeholderPrefix    = "${"
	placeholderSuffix    = "}"
	placeholderSeparator = ":"
	maxPlaceholderDepth  = 16
)

// resolvePlaceholders expands ${key} and ${key:default}, including nested placeholders
// in keys, defaults and resolved values. Cycles stop at maxPlaceholderDepth.
func resolvePlaceholders(text string, lookup func(string) (string, bool), depth int) string {
	if depth > maxPlaceholderDepth {
		return text
	}

	var sb strings.Builder
	rest := text
	for {
		start := strings.Index(rest, placeholderPrefix)
		if start < 0 {
			sb.WriteString(rest)
			return sb.String()
		}
		end := findPlaceholderEnd(rest, start)
		if end < 0 {
			sb.WriteString(rest)
			return sb.String()
		}

		sb.WriteString(rest[:start])
		inner := resolvePlaceholders(rest[start+len(placeholderPrefix):end], lookup, depth+1)

		key, def, hasDefault := strings.Cut(inner, placeholderSeparator)
		if value, ok := lookup(key); ok {
			sb.WriteString(resolvePlaceholders(value, lookup, depth+1))
		} else if hasDefault {
			sb.WriteString(def)
		} else {
			sb.WriteString(placeholderPrefix + inner + placeholderSuffix)
		}

		rest = rest[end+len(placeholderSuffix):]
	}
}

// findPlaceholderEnd index of the suffix matching the prefix at start, -1 when unbalanced
func findPlaceholderEnd(text string, start int) int {
	depth := 0
	for i := start + len(placeholderPrefix); i < len(text); i++ {
		switch {
		case strings.HasPrefix(text[i:], placeholderPrefix):
			depth++
			i += len(placeholderPrefix) - 1
		case strings.HasPrefix(text[i:], placeholderSuffix):
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}
