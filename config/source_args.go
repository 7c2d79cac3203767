package config

import "strings"

// ArgsSource command line argument data source
// Recognizes "--key=value" and bare "--flag" (value "true"); everything else is ignored
type ArgsSource struct {
	args []string
}

// NewArgsSource creates a command line data source
func NewArgsSource(args []string) *ArgsSource {
	return &ArgsSource{args: args}
}

// Name data source name
func (s *ArgsSource) Name() string {
	return CommandLineSourceName
}

// Load parses the arguments
func (s *ArgsSource) Load() (map[string]interface{}, error) {
	result := make(map[string]interface{})
	for _, arg := range s.args {
		if !strings.HasPrefix(arg, "--") {
			continue
		}
		body := strings.TrimPrefix(arg, "--")
		key, value, hasValue := strings.Cut(body, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if !hasValue {
			value = "true"
		}
		result[key] = value
	}
	return result, nil
}
