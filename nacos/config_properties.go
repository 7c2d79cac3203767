package nacos

import (
	"strings"

	"github.com/KOMKZ/go-yogan-nacos/validator"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// PropertiesPrefix configuration section bound into ConfigProperties
const PropertiesPrefix = "nacos.config"

// Defaults
const (
	DefaultServerAddr = "127.0.0.1:8848"
	DefaultGroup      = "DEFAULT_GROUP"
)

// Backends
const (
	BackendNacos = "nacos"
	BackendEtcd  = "etcd"
	BackendRedis = "redis"
)

// ConfigProperties nacos.config section
type ConfigProperties struct {
	ServerAddr             string     `mapstructure:"server-addr"`
	ContextPath            string     `mapstructure:"context-path"`
	Encode                 string     `mapstructure:"encode"`
	Endpoint               string     `mapstructure:"endpoint"`
	Namespace              string     `mapstructure:"namespace"`
	AccessKey              string     `mapstructure:"access-key"`
	SecretKey              string     `mapstructure:"secret-key"`
	RAMRoleName            string     `mapstructure:"ram-role-name"`
	AutoRefresh            bool       `mapstructure:"auto-refresh"`
	DataID                 string     `mapstructure:"data-id"`
	DataIDs                string     `mapstructure:"data-ids"` // comma separated
	Group                  string     `mapstructure:"group"`
	Type                   ConfigType `mapstructure:"type"`
	MaxRetry               string     `mapstructure:"max-retry"`
	ConfigLongPollTimeout  string     `mapstructure:"config-long-poll-timeout"`
	ConfigRetryTime        string     `mapstructure:"config-retry-time"`
	EnableRemoteSyncConfig bool       `mapstructure:"enable-remote-sync-config"`
	Username               string     `mapstructure:"username"`
	Password               string     `mapstructure:"password"`
	RemoteFirst            bool       `mapstructure:"remote-first"`
	Backend                string     `mapstructure:"backend"` // nacos | etcd | redis
	ExtConfig              []Config   `mapstructure:"ext-config"`
	Bootstrap              Bootstrap  `mapstructure:"bootstrap"`
}

// Bootstrap preload switches
type Bootstrap struct {
	Enable         bool `mapstructure:"enable"`
	LogEnable      bool `mapstructure:"log-enable"`      // load before logging is configured
	SnapshotEnable bool `mapstructure:"snapshot-enable"` // keep the client local snapshot
}

// Config one extension group
// Missing connection parameters are inherited from the global ones
type Config struct {
	ServerAddr             string     `mapstructure:"server-addr"`
	Endpoint               string     `mapstructure:"endpoint"`
	Namespace              string     `mapstructure:"namespace"`
	AccessKey              string     `mapstructure:"access-key"`
	SecretKey              string     `mapstructure:"secret-key"`
	RAMRoleName            string     `mapstructure:"ram-role-name"`
	DataID                 string     `mapstructure:"data-id"`
	DataIDs                string     `mapstructure:"data-ids"`
	Group                  string     `mapstructure:"group"`
	Type                   ConfigType `mapstructure:"type"`
	MaxRetry               string     `mapstructure:"max-retry"`
	ConfigLongPollTimeout  string     `mapstructure:"config-long-poll-timeout"`
	ConfigRetryTime        string     `mapstructure:"config-retry-time"`
	AutoRefresh            bool       `mapstructure:"auto-refresh"`
	EnableRemoteSyncConfig bool       `mapstructure:"enable-remote-sync-config"`
	Username               string     `mapstructure:"username"`
	Password               string     `mapstructure:"password"`
}

// DefaultConfigProperties defaults applied before binding
func DefaultConfigProperties() ConfigProperties {
	return ConfigProperties{
		ServerAddr: DefaultServerAddr,
		Group:      DefaultGroup,
		Type:       TypeProperties,
		Backend:    BackendNacos,
	}
}

// ApplyDefaults fills empty fields after binding
func (p *ConfigProperties) ApplyDefaults() {
	if p.ServerAddr == "" && p.Endpoint == "" {
		p.ServerAddr = DefaultServerAddr
	}
	if p.Group == "" {
		p.Group = DefaultGroup
	}
	if p.Type == "" {
		p.Type = TypeProperties
	}
	p.Type = p.Type.Normalize()
	if p.Backend == "" {
		p.Backend = BackendNacos
	}
	p.Backend = strings.ToLower(p.Backend)

	for i := range p.ExtConfig {
		ext := &p.ExtConfig[i]
		if ext.Group == "" {
			ext.Group = DefaultGroup
		}
		if ext.Type == "" {
			ext.Type = p.Type
		}
		ext.Type = ext.Type.Normalize()
	}
}

// Validate bound properties
func (p ConfigProperties) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ServerAddr, validation.When(p.Endpoint == "", validation.Required.Error("server-addr or endpoint is required"))),
		validation.Field(&p.Type, validation.By(validateType)),
		validation.Field(&p.Backend, validation.In(BackendNacos, BackendEtcd, BackendRedis)),
		validation.Field(&p.ExtConfig),
	)
}

// Validate one extension group
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.DataID, validation.When(strings.TrimSpace(c.DataIDs) == "", validation.Required.Error("data-id or data-ids is required"))),
		validation.Field(&c.Type, validation.By(validateType)),
	)
}

func validateType(value interface{}) error {
	t, _ := value.(ConfigType)
	if t == "" || t.IsKnown() {
		return nil
	}
	return validation.NewError("validation_nacos_type", "unsupported config type "+string(t))
}

// GlobalParameters raw connection parameters of the global group
func (p ConfigProperties) GlobalParameters() RawParameters {
	return RawParameters{
		ServerAddr:             p.ServerAddr,
		Namespace:              p.Namespace,
		Endpoint:               p.Endpoint,
		SecretKey:              p.SecretKey,
		AccessKey:              p.AccessKey,
		RAMRoleName:            p.RAMRoleName,
		ConfigLongPollTimeout:  p.ConfigLongPollTimeout,
		ConfigRetryTime:        p.ConfigRetryTime,
		MaxRetry:               p.MaxRetry,
		ContextPath:            p.ContextPath,
		EnableRemoteSyncConfig: p.EnableRemoteSyncConfig,
		Username:               p.Username,
		Password:               p.Password,
	}
}

// Parameters raw connection parameters of the extension group (never a context path)
func (c Config) Parameters() RawParameters {
	return RawParameters{
		ServerAddr:             c.ServerAddr,
		Namespace:              c.Namespace,
		Endpoint:               c.Endpoint,
		SecretKey:              c.SecretKey,
		AccessKey:              c.AccessKey,
		RAMRoleName:            c.RAMRoleName,
		ConfigLongPollTimeout:  c.ConfigLongPollTimeout,
		ConfigRetryTime:        c.ConfigRetryTime,
		MaxRetry:               c.MaxRetry,
		EnableRemoteSyncConfig: c.EnableRemoteSyncConfig,
		Username:               c.Username,
		Password:               c.Password,
	}
}

// ConfigLoader read side needed to bind ConfigProperties (config.Environment)
type ConfigLoader interface {
	Unmarshal(key string, v interface{}) error
}

// BindConfigProperties binds, defaults and validates the nacos.config section
func BindConfigProperties(loader ConfigLoader) (ConfigProperties, error) {
	props := DefaultConfigProperties()
	if err := loader.Unmarshal(PropertiesPrefix, &props); err != nil {
		return props, ErrInvalidProperties.Wrap(err)
	}
	props.ApplyDefaults()
	if err := validator.Validate(props, ErrInvalidProperties); err != nil {
		return props, err
	}
	return props, nil
}
