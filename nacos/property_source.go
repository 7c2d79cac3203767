package nacos

import (
	"fmt"
	"reflect"
	"sort"
)

// PropertySource one fetched configuration document inside the environment
// Immutable; a refresh builds a new value with the same name.
type PropertySource struct {
	name        string
	dataID      string
	group       string
	configType  ConfigType
	content     string
	autoRefresh bool
	properties  map[string]interface{}
	params      Properties
}

// NewPropertySource parses content and builds a named source
func NewPropertySource(dataID, group string, configType ConfigType, content string, params Properties, autoRefresh bool) (*PropertySource, error) {
	parsed, err := configType.Parse(dataID, content)
	if err != nil {
		return nil, ErrParseContent.
			WithMsgf("parse nacos config failed, data-id: %s, group: %s, type: %s", dataID, group, configType).
			Wrap(err)
	}
	return &PropertySource{
		name:        SourceName(dataID, group, params),
		dataID:      dataID,
		group:       group,
		configType:  configType,
		content:     content,
		autoRefresh: autoRefresh,
		properties:  parsed,
		params:      params,
	}, nil
}

// SourceName deterministic source name from data-id, group and parameter identity
func SourceName(dataID, group string, params Properties) string {
	return fmt.Sprintf("nacos:%s|%s|%s", dataID, group, params.Digest())
}

// Name implements config.PropertySource
func (s *PropertySource) Name() string { return s.name }

// Properties implements config.PropertySource
func (s *PropertySource) Properties() map[string]interface{} { return s.properties }

// DataID document identifier
func (s *PropertySource) DataID() string { return s.dataID }

// Group document group
func (s *PropertySource) Group() string { return s.group }

// Type content type
func (s *PropertySource) Type() ConfigType { return s.configType }

// Content raw content
func (s *PropertySource) Content() string { return s.content }

// AutoRefreshed whether a change listener should be registered
func (s *PropertySource) AutoRefreshed() bool { return s.autoRefresh }

// Parameters connection parameters the source was fetched with
func (s *PropertySource) Parameters() Properties { return s.params }

// withContent new source with the same identity and new content
func (s *PropertySource) withContent(content string) (*PropertySource, error) {
	return NewPropertySource(s.dataID, s.group, s.configType, content, s.params, s.autoRefresh)
}

// changedKeys keys added, removed or modified between two sources, sorted
func changedKeys(oldProps, newProps map[string]interface{}) []string {
	var changed []string
	for k, nv := range newProps {
		ov, ok := oldProps[k]
		if !ok || !reflect.DeepEqual(ov, nv) {
			changed = append(changed, k)
		}
	}
	for k := range oldProps {
		if _, ok := newProps[k]; !ok {
			changed = append(changed, k)
		}
	}
	sort.Strings(changed)
	return changed
}
