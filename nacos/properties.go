package nacos

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
)

// Canonical connection parameter keys
const (
	KeyServerAddr             = "serverAddr"
	KeyNamespace              = "namespace"
	KeyEndpoint               = "endpoint"
	KeySecretKey              = "secretKey"
	KeyAccessKey              = "accessKey"
	KeyRAMRoleName            = "ramRoleName"
	KeyConfigLongPollTimeout  = "configLongPollTimeout"
	KeyConfigRetryTime        = "configRetryTime"
	KeyMaxRetry               = "maxRetry"
	KeyContextPath            = "contextPath"
	KeyUsername               = "username"
	KeyPassword               = "password"
	KeyEnableRemoteSyncConfig = "enableRemoteSyncConfig"
)

// secret keys are masked in logs and error data
var secretKeys = map[string]struct{}{
	KeySecretKey: {},
	KeyAccessKey: {},
	KeyPassword:  {},
}

// PlaceholderResolver resolves ${key:default} placeholders (implemented by config.Environment)
type PlaceholderResolver interface {
	ResolvePlaceholders(text string) string
}

// Properties connection parameters handed to the client factory
// Treat as immutable once built, Clone before changing it
type Properties map[string]string

// RawParameters unresolved connection parameters as bound from configuration
type RawParameters struct {
	ServerAddr             string
	Namespace              string
	Endpoint               string
	SecretKey              string
	AccessKey              string
	RAMRoleName            string
	ConfigLongPollTimeout  string
	ConfigRetryTime        string
	MaxRetry               string
	ContextPath            string
	EnableRemoteSyncConfig bool
	Username               string
	Password               string
}

// BuildProperties resolves every non-blank parameter under its canonical key
// Blank parameters are left out so the client applies its own default.
// enableRemoteSyncConfig is always present.
func BuildProperties(resolver PlaceholderResolver, raw RawParameters) Properties {
	props := make(Properties, 13)
	put := func(key, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		if resolver != nil {
			value = resolver.ResolvePlaceholders(value)
		}
		props[key] = value
	}

	put(KeyServerAddr, raw.ServerAddr)
	put(KeyNamespace, raw.Namespace)
	put(KeyEndpoint, raw.Endpoint)
	put(KeySecretKey, raw.SecretKey)
	put(KeyAccessKey, raw.AccessKey)
	put(KeyRAMRoleName, raw.RAMRoleName)
	put(KeyConfigLongPollTimeout, raw.ConfigLongPollTimeout)
	put(KeyConfigRetryTime, raw.ConfigRetryTime)
	put(KeyContextPath, raw.ContextPath)
	put(KeyMaxRetry, raw.MaxRetry)
	put(KeyUsername, raw.Username)
	put(KeyPassword, raw.Password)

	props[KeyEnableRemoteSyncConfig] = strconv.FormatBool(raw.EnableRemoteSyncConfig)
	return props
}

// MergeProperties copies into target every key of source that target does not have
// Keys already in target are never overwritten, even when their value is empty.
func MergeProperties(target *Properties, source Properties) {
	if len(source) == 0 {
		return
	}
	if *target == nil {
		*target = make(Properties, len(source))
	}
	for k, v := range source {
		if _, ok := (*target)[k]; !ok {
			(*target)[k] = v
		}
	}
}

// Clone copy of the parameter set
func (p Properties) Clone() Properties {
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Get value of key ("" when absent)
func (p Properties) Get(key string) string {
	return p[key]
}

// Identify deterministic identity of the parameter set
// Two sets with the same keys and values produce the same identity.
func (p Properties) Identify() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(p[k])
	}
	return sb.String()
}

// Digest short hash of the identity, safe to print (credentials are part of the identity)
func (p Properties) Digest() string {
	sum := sha256.Sum256([]byte(p.Identify()))
	return hex.EncodeToString(sum[:6])
}

// Masked copy with secrets replaced, for logs and error data
func (p Properties) Masked() map[string]string {
	out := make(map[string]string, len(p))
	for k, v := range p {
		if _, secret := secretKeys[k]; secret && v != "" {
			out[k] = "******"
			continue
		}
		out[k] = v
	}
	return out
}
