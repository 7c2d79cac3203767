package config

import (
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// flattenMap flattens a nested map into dot separated keys
// For example: {"server": {"port": 9002}} -> {"server.port": 9002}
// Lists are kept as values.
func flattenMap(prefix string, data map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})

	for key, value := range data {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		switch v := value.(type) {
		case map[string]interface{}:
			for nestedKey, nestedValue := range flattenMap(fullKey, v) {
				result[nestedKey] = nestedValue
			}
		case map[interface{}]interface{}:
			converted := make(map[string]interface{}, len(v))
			for k, nv := range v {
				converted[strings.ToLower(toKeyString(k))] = nv
			}
			for nestedKey, nestedValue := range flattenMap(fullKey, converted) {
				result[nestedKey] = nestedValue
			}
		default:
			result[fullKey] = value
		}
	}

	return result
}

// pruneShadowed drops keys that overlap a key of higher precedence (lower rank)
// A value hides every key beneath it coming from a lower precedence source.
// Keys beneath a path hide a value at that path from the same or a lower precedence source.
// After pruning no key is a prefix of another, so unflattenMap is order independent.
func pruneShadowed(flat map[string]interface{}, rank map[string]int) {
	// best rank among the keys beneath each prefix
	beneath := make(map[string]int)
	for key := range flat {
		r := rank[key]
		for _, p := range keyPrefixes(key) {
			if br, ok := beneath[p]; !ok || r < br {
				beneath[p] = r
			}
		}
	}

	var shadowed []string
	for key := range flat {
		r := rank[key]
		if br, ok := beneath[key]; ok && br <= r {
			shadowed = append(shadowed, key)
			continue
		}
		for _, p := range keyPrefixes(key) {
			if pr, ok := rank[p]; ok && pr < r {
				shadowed = append(shadowed, key)
				break
			}
		}
	}
	for _, key := range shadowed {
		delete(flat, key)
	}
}

// keyPrefixes proper path prefixes: "a.list[0].x" -> "a", "a.list", "a.list[0]"
func keyPrefixes(key string) []string {
	var prefixes []string
	for i := 1; i < len(key); i++ {
		if key[i] == '.' || key[i] == '[' {
			prefixes = append(prefixes, key[:i])
		}
	}
	return prefixes
}

// unflattenMap converts a flattened map to a nested map
// Indexed segments build lists: {"a.list[1].x": 1} -> {"a": {"list": [nil, {"x": 1}]}}
func unflattenMap(flat map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	for key, value := range flat {
		setNestedValue(result, key, value)
	}
	return result
}

func setNestedValue(m map[string]interface{}, key string, value interface{}) {
	keys := splitKey(key)
	current := m

	for i, k := range keys {
		last := i == len(keys)-1
		name, idx, indexed := parseIndexedSegment(k)

		if !indexed {
			if last {
				current[name] = value
				return
			}
			next, ok := current[name].(map[string]interface{})
			if !ok {
				// Not a map yet, override it
				next = make(map[string]interface{})
				current[name] = next
			}
			current = next
			continue
		}

		list, _ := current[name].([]interface{})
		for len(list) <= idx {
			list = append(list, nil)
		}
		current[name] = list
		if last {
			list[idx] = value
			return
		}
		next, ok := list[idx].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			list[idx] = next
		}
		current = next
	}
}

// splitKey configuration key split, empty segments dropped
func splitKey(key string) []string {
	parts := strings.Split(key, ".")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// maxListIndex largest index accepted in "key[n]", larger ones stay literal keys
const maxListIndex = 1024

// parseIndexedSegment "ext-config[2]" -> ("ext-config", 2, true)
func parseIndexedSegment(segment string) (string, int, bool) {
	open := strings.IndexByte(segment, '[')
	if open <= 0 || !strings.HasSuffix(segment, "]") {
		return segment, 0, false
	}
	idx, err := strconv.Atoi(segment[open+1 : len(segment)-1])
	if err != nil || idx < 0 || idx > maxListIndex {
		return segment, 0, false
	}
	return segment[:open], idx, true
}

func toKeyString(k interface{}) string {
	if s, ok := k.(string); ok {
		return s
	}
	return cast.ToString(k)
}
