package nacos

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/KOMKZ/go-yogan-nacos/config"
)

// fakeServer in-memory document store shared by every fake client
type fakeServer struct {
	mu        sync.Mutex
	docs      map[string]string
	fetchErr  map[string]error
	failures  map[string]int
	listenErr error
	listeners map[string][]Listener
	created   int32
	fetched   []Properties
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		docs:      make(map[string]string),
		fetchErr:  make(map[string]error),
		failures:  make(map[string]int),
		listeners: make(map[string][]Listener),
	}
}

func docKey(dataID, group string) string {
	return dataID + "@" + group
}

func (s *fakeServer) put(dataID, group, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[docKey(dataID, group)] = content
}

func (s *fakeServer) failFetch(dataID, group string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchErr[docKey(dataID, group)] = err
}

// failTimes makes the next n fetches of the document fail
func (s *fakeServer) failTimes(dataID, group string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[docKey(dataID, group)] = n
}

// publish stores content and notifies listeners synchronously
func (s *fakeServer) publish(dataID, group, content string) {
	s.mu.Lock()
	s.docs[docKey(dataID, group)] = content
	listeners := append([]Listener(nil), s.listeners[docKey(dataID, group)]...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(dataID, group, content)
	}
}

func (s *fakeServer) listenerCount(dataID, group string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners[docKey(dataID, group)])
}

func (s *fakeServer) createdCount() int {
	return int(atomic.LoadInt32(&s.created))
}

func (s *fakeServer) fetchedWith() []Properties {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Properties(nil), s.fetched...)
}

func (s *fakeServer) factory() ClientFactory {
	return ClientFactoryFunc(func(props Properties) (Client, error) {
		atomic.AddInt32(&s.created, 1)
		return &fakeClient{server: s, props: props}, nil
	})
}

type fakeClient struct {
	server *fakeServer
	props  Properties
	closed int32
}

func (c *fakeClient) GetConfig(ctx context.Context, dataID, group string) (string, error) {
	c.server.mu.Lock()
	defer c.server.mu.Unlock()
	c.server.fetched = append(c.server.fetched, c.props)
	if err, ok := c.server.fetchErr[docKey(dataID, group)]; ok {
		return "", err
	}
	if n := c.server.failures[docKey(dataID, group)]; n > 0 {
		c.server.failures[docKey(dataID, group)] = n - 1
		return "", errFakeUnavailable
	}
	return c.server.docs[docKey(dataID, group)], nil
}

func (c *fakeClient) AddListener(ctx context.Context, dataID, group string, listener Listener) error {
	c.server.mu.Lock()
	defer c.server.mu.Unlock()
	if c.server.listenErr != nil {
		return c.server.listenErr
	}
	key := docKey(dataID, group)
	c.server.listeners[key] = append(c.server.listeners[key], listener)
	return nil
}

func (c *fakeClient) Close() error {
	atomic.StoreInt32(&c.closed, 1)
	return nil
}

func (c *fakeClient) isClosed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}

var errFakeUnavailable = errors.New("connection refused")

// newTestEnvironment commandLineArgs > systemEnvironment > application
func newTestEnvironment(application map[string]interface{}) *config.Environment {
	env := config.NewEnvironment()
	env.AddLast(config.NewMapSource(config.CommandLineSourceName, nil))
	env.AddLast(config.NewMapSource(config.SystemEnvironmentSourceName, map[string]interface{}{
		"nacos_host": "10.0.0.1",
	}))
	env.AddLast(config.NewMapSource("application", application))
	return env
}

// shortNames replaces nacos source names by their data-id
func shortNames(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		if strings.HasPrefix(n, "nacos:") {
			n = strings.TrimPrefix(n, "nacos:")
			n = n[:strings.Index(n, "|")]
		}
		out[i] = n
	}
	return out
}

func mustBind(env *config.Environment) ConfigProperties {
	props, err := BindConfigProperties(env)
	if err != nil {
		panic(err)
	}
	return props
}
