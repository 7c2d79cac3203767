package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// FileSource configuration file data source
type FileSource struct {
	path string
}

// NewFileSource creates a file data source
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name data source name
func (s *FileSource) Name() string {
	return "file:" + s.path
}

// Path file path
func (s *FileSource) Path() string {
	return s.path
}

// Load loads the file; a missing file yields an empty configuration (not an error)
func (s *FileSource) Load() (map[string]interface{}, error) {
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return make(map[string]interface{}), nil
		}
		return nil, fmt.Errorf("access config file %s failed: %w", s.path, err)
	}

	v := viper.New()
	v.SetConfigFile(s.path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file %s failed: %w", s.path, err)
	}

	return flattenMap("", v.AllSettings()), nil
}

// ParseContent parses textual configuration of the given viper type
// (properties, yaml, json, toml, hcl, ini, env) into a flat map
func ParseContent(content, configType string) (map[string]interface{}, error) {
	if strings.TrimSpace(content) == "" {
		return make(map[string]interface{}), nil
	}

	v := viper.New()
	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewBufferString(content)); err != nil {
		return nil, fmt.Errorf("parse %s content failed: %w", configType, err)
	}
	return flattenMap("", v.AllSettings()), nil
}
