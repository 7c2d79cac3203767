package nacos

import "github.com/KOMKZ/go-yogan-nacos/event"

// Event names
const (
	EventConfigReceived          = "nacos.config.received"
	EventPropertySourceRefreshed = "nacos.property_source.refreshed"
	EventListenerRegistered      = "nacos.config.listener_registered"
)

// ConfigReceivedEvent new content arrived for a listened document
type ConfigReceivedEvent struct {
	event.BaseEvent
	DataID  string
	Group   string
	Content string
}

// PropertySourceRefreshedEvent a source was replaced in the environment
type PropertySourceRefreshedEvent struct {
	event.BaseEvent
	SourceName  string
	DataID      string
	Group       string
	ChangedKeys []string // added, removed or modified keys
}

// ListenerRegisteredEvent an auto-refresh listener was registered
type ListenerRegisteredEvent struct {
	event.BaseEvent
	DataID string
	Group  string
}

func newConfigReceivedEvent(dataID, group, content string) *ConfigReceivedEvent {
	return &ConfigReceivedEvent{
		BaseEvent: event.NewEvent(EventConfigReceived),
		DataID:    dataID,
		Group:     group,
		Content:   content,
	}
}

func newPropertySourceRefreshedEvent(source *PropertySource, changed []string) *PropertySourceRefreshedEvent {
	return &PropertySourceRefreshedEvent{
		BaseEvent:   event.NewEvent(EventPropertySourceRefreshed),
		SourceName:  source.Name(),
		DataID:      source.DataID(),
		Group:       source.Group(),
		ChangedKeys: changed,
	}
}

func newListenerRegisteredEvent(dataID, group string) *ListenerRegisteredEvent {
	return &ListenerRegisteredEvent{
		BaseEvent: event.NewEvent(EventListenerRegistered),
		DataID:    dataID,
		Group:     group,
	}
}
