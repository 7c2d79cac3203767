package nacos

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/KOMKZ/go-yogan-nacos/logger"
	"github.com/nacos-group/nacos-sdk-go/v2/clients"
	"github.com/nacos-group/nacos-sdk-go/v2/clients/config_client"
	"github.com/nacos-group/nacos-sdk-go/v2/common/constant"
	"github.com/nacos-group/nacos-sdk-go/v2/vo"
	"go.uber.org/zap"
)

const defaultServerPort = 8848

// SDKClient Client backed by the nacos sdk
type SDKClient struct {
	client config_client.IConfigClient
	props  Properties
	logger *logger.CtxZapLogger
}

// NewSDKClient creates a nacos config client from a parameter set
func NewSDKClient(props Properties, opts ClientOptions) (*SDKClient, error) {
	serverConfigs, err := ParseServerAddr(props.Get(KeyServerAddr), props.Get(KeyContextPath))
	if err != nil {
		return nil, err
	}
	clientConfig, err := buildClientConfig(props, opts)
	if err != nil {
		return nil, err
	}

	client, err := clients.NewConfigClient(vo.NacosClientParam{
		ClientConfig:  clientConfig,
		ServerConfigs: serverConfigs,
	})
	if err != nil {
		return nil, fmt.Errorf("create nacos config client failed: %w", err)
	}

	return &SDKClient{
		client: client,
		props:  props,
		logger: logger.GetLogger("nacos"),
	}, nil
}

// GetConfig fetches a document
func (c *SDKClient) GetConfig(ctx context.Context, dataID, group string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return c.client.GetConfig(vo.ConfigParam{DataId: dataID, Group: group})
}

// AddListener registers a change listener with the sdk
func (c *SDKClient) AddListener(ctx context.Context, dataID, group string, listener Listener) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.client.ListenConfig(vo.ConfigParam{
		DataId: dataID,
		Group:  group,
		OnChange: func(namespace, group, dataId, data string) {
			c.logger.Debug("nacos config changed",
				zap.String("namespace", namespace),
				zap.String("data_id", dataId),
				zap.String("group", group))
			listener(dataId, group, data)
		},
	})
}

// Close shuts the sdk client down
func (c *SDKClient) Close() error {
	c.client.CloseClient()
	return nil
}

func buildClientConfig(props Properties, opts ClientOptions) (*constant.ClientConfig, error) {
	cc := constant.NewClientConfig()
	cc.NamespaceId = props.Get(KeyNamespace)
	cc.Endpoint = props.Get(KeyEndpoint)
	cc.AccessKey = props.Get(KeyAccessKey)
	cc.SecretKey = props.Get(KeySecretKey)
	cc.Username = props.Get(KeyUsername)
	cc.Password = props.Get(KeyPassword)
	cc.ContextPath = props.Get(KeyContextPath)
	cc.NotLoadCacheAtStart = true
	cc.DisableUseSnapShot = opts.DisableSnapshot

	if timeout := props.Get(KeyConfigLongPollTimeout); timeout != "" {
		ms, err := strconv.ParseUint(timeout, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", KeyConfigLongPollTimeout, timeout, err)
		}
		cc.TimeoutMs = ms
	}
	if opts.LogDir != "" {
		cc.LogDir = opts.LogDir
	}
	if opts.CacheDir != "" {
		cc.CacheDir = opts.CacheDir
	}
	if opts.LogLevel != "" {
		cc.LogLevel = opts.LogLevel
	}
	return cc, nil
}

// ParseServerAddr parses "host[:port][,host[:port]]", each entry may carry an http(s) scheme
func ParseServerAddr(serverAddr, contextPath string) ([]constant.ServerConfig, error) {
	var configs []constant.ServerConfig
	for _, entry := range strings.Split(serverAddr, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		scheme := "http"
		if i := strings.Index(entry, "://"); i >= 0 {
			scheme = entry[:i]
			entry = entry[i+3:]
		}
		entry = strings.TrimSuffix(entry, "/")

		host := entry
		port := uint64(defaultServerPort)
		if i := strings.LastIndex(entry, ":"); i >= 0 {
			host = entry[:i]
			p, err := strconv.ParseUint(entry[i+1:], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid nacos server address %q: %w", entry, err)
			}
			port = p
		}
		if host == "" {
			return nil, fmt.Errorf("invalid nacos server address %q: empty host", entry)
		}

		opts := []constant.ServerOption{constant.WithScheme(scheme)}
		if contextPath != "" {
			opts = append(opts, constant.WithContextPath(contextPath))
		}
		configs = append(configs, *constant.NewServerConfig(host, port, opts...))
	}
	return configs, nil
}
