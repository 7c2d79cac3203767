package nacos

import (
	"strings"

	"github.com/KOMKZ/go-yogan-nacos/config"
)

// ConfigType content format of a configuration document
type ConfigType string

// Supported content types
const (
	TypeProperties ConfigType = "properties"
	TypeYAML       ConfigType = "yaml"
	TypeYML        ConfigType = "yml"
	TypeJSON       ConfigType = "json"
	TypeTOML       ConfigType = "toml"
	TypeHCL        ConfigType = "hcl"
	TypeINI        ConfigType = "ini"
	TypeEnv        ConfigType = "env"
	TypeText       ConfigType = "text"
)

var knownTypes = []interface{}{
	TypeProperties, TypeYAML, TypeYML, TypeJSON, TypeTOML, TypeHCL, TypeINI, TypeEnv, TypeText,
}

// Normalize lowercase form, empty stays empty
func (t ConfigType) Normalize() ConfigType {
	return ConfigType(strings.ToLower(strings.TrimSpace(string(t))))
}

// IsKnown reports whether the type can be parsed
func (t ConfigType) IsKnown() bool {
	n := t.Normalize()
	for _, k := range knownTypes {
		if k == n {
			return true
		}
	}
	return false
}

// Parse turns content into flat key/value pairs
// text content is kept whole under the data-id
func (t ConfigType) Parse(dataID, content string) (map[string]interface{}, error) {
	switch t.Normalize() {
	case TypeText:
		if content == "" {
			return map[string]interface{}{}, nil
		}
		return map[string]interface{}{dataID: content}, nil
	case "":
		return config.ParseContent(content, string(TypeProperties))
	default:
		return config.ParseContent(content, string(t.Normalize()))
	}
}
