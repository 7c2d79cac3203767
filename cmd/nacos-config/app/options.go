package app

import (
	"github.com/KOMKZ/go-yogan-nacos/application"
	"github.com/KOMKZ/go-yogan-nacos/flagx"
	"github.com/spf13/cobra"
)

// rootOptions flags shared by every subcommand
// Flags with a config tag override the matching key of the local configuration.
type rootOptions struct {
	ConfigPath string   `flag:"config-path,c" usage:"configuration directory (config.yaml, {APP_ENV}.yaml)" default:"./configs" persistent:"true"`
	EnvPrefix  string   `flag:"env-prefix" usage:"environment variable prefix" default:"APP" persistent:"true"`
	ServerAddr string   `flag:"server-addr,s" usage:"comma separated nacos servers" config:"nacos.config.server-addr" persistent:"true"`
	Namespace  string   `flag:"namespace,n" usage:"namespace id" config:"nacos.config.namespace" persistent:"true"`
	Group      string   `flag:"group,g" usage:"group of the main documents" config:"nacos.config.group" persistent:"true"`
	DataIDs    []string `flag:"data-ids,d" usage:"main documents" config:"nacos.config.data-ids" persistent:"true"`
	Type       string   `flag:"type,t" usage:"content type (properties, yaml, json, toml, text...)" config:"nacos.config.type" persistent:"true"`
	Backend    string   `flag:"backend" usage:"nacos, etcd or redis" config:"nacos.config.backend" persistent:"true"`
	Username   string   `flag:"username" usage:"nacos username" config:"nacos.config.username" persistent:"true"`
	Password   string   `flag:"password" usage:"nacos password" config:"nacos.config.password" persistent:"true"`
	LogLevel   string   `flag:"log-level" usage:"log level" config:"logger.level" persistent:"true"`
}

// newApplication builds the application from the parsed flags
// extra args are appended after the flag overrides and win over them.
func newApplication(cmd *cobra.Command, opts *rootOptions, extra ...string) (*application.Application, error) {
	if err := flagx.ParseFlags(cmd, opts); err != nil {
		return nil, err
	}
	args, err := flagx.OverrideArgs(cmd, opts)
	if err != nil {
		return nil, err
	}
	args = append(args, "--nacos.config.bootstrap.enable=true")
	args = append(args, extra...)

	return application.New(application.Options{
		ConfigPath:   opts.ConfigPath,
		EnvPrefix:    opts.EnvPrefix,
		Args:         args,
		Version:      version,
		NacosOptions: nacosOptions,
	}), nil
}
