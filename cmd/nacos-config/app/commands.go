// Package app provides the commands of the nacos-config tool.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/KOMKZ/go-yogan-nacos/application"
	"github.com/KOMKZ/go-yogan-nacos/event"
	"github.com/KOMKZ/go-yogan-nacos/flagx"
	"github.com/KOMKZ/go-yogan-nacos/nacos"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// set with -ldflags "-X github.com/KOMKZ/go-yogan-nacos/cmd/nacos-config/app.version=..."
var version = "dev"

// nacosOptions extra initializer options, replaced in tests
var nacosOptions []nacos.Option

const shutdownTimeout = 5 * time.Second

// NewRootCmd creates the root command with every subcommand attached
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "nacos-config",
		Short:         "Load nacos configuration into a layered environment",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	if err := flagx.BindFlags(root, opts); err != nil {
		panic(err)
	}

	root.AddCommand(newDumpCmd(opts), newWatchCmd(opts), newHealthCmd(opts), newVersionCmd())
	return root
}

type dumpOptions struct {
	Format  string `flag:"format,o" usage:"output format (yaml, json, properties)" default:"yaml"`
	Sources bool   `flag:"sources" usage:"print the property source order only"`
	Key     string `flag:"key,k" usage:"print a single resolved key"`
}

func newDumpCmd(root *rootOptions) *cobra.Command {
	opts := &dumpOptions{}
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Load the configuration once and print the merged result",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flagx.ParseFlags(cmd, opts); err != nil {
				return err
			}
			app, err := newApplication(cmd, root)
			if err != nil {
				return err
			}
			if err := app.Setup(); err != nil {
				return err
			}
			defer app.Shutdown(shutdownTimeout)

			return dump(cmd.OutOrStdout(), app, opts)
		},
	}
	if err := flagx.BindFlags(cmd, opts); err != nil {
		panic(err)
	}
	return cmd
}

func dump(w io.Writer, app *application.Application, opts *dumpOptions) error {
	env := app.Environment()
	switch {
	case opts.Sources:
		for i, name := range env.PropertySourceNames() {
			fmt.Fprintf(w, "%d\t%s\n", i, name)
		}
		return nil
	case opts.Key != "":
		value, ok := env.GetResolved(opts.Key)
		if !ok {
			return fmt.Errorf("key %q is not set", opts.Key)
		}
		fmt.Fprintln(w, value)
		return nil
	}

	settings := env.AllSettings()
	switch strings.ToLower(opts.Format) {
	case "json":
		out, err := json.MarshalIndent(settings, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(out))
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(settings); err != nil {
			return err
		}
		return enc.Close()
	case "properties":
		flat := map[string]string{}
		flatten("", settings, flat)
		keys := make([]string, 0, len(flat))
		for k := range flat {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "%s=%s\n", k, flat[k])
		}
	default:
		return fmt.Errorf("unknown format %q", opts.Format)
	}
	return nil
}

func flatten(prefix string, m map[string]interface{}, out map[string]string) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]interface{}); ok {
			flatten(key, nested, out)
			continue
		}
		out[key] = fmt.Sprint(v)
	}
}

func newWatchCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Load the configuration and print every refresh until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApplication(cmd, root, "--nacos.config.auto-refresh=true")
			if err != nil {
				return err
			}
			if err := app.Setup(); err != nil {
				return err
			}
			defer app.Shutdown(shutdownTimeout)

			unsubscribe := watch(cmd.OutOrStdout(), app)
			defer unsubscribe()

			fmt.Fprintf(cmd.OutOrStdout(), "watching %d listener(s), press Ctrl+C to stop\n", app.Nacos().Registrar().ListenerCount())
			app.WaitShutdown()
			return nil
		},
	}
}

// watch prints the changed keys of every refreshed source
// Printing runs on the worker pool unless event.sync is set.
func watch(w io.Writer, app *application.Application) event.UnsubscribeFunc {
	env := app.Environment()
	return app.Dispatcher().Subscribe(nacos.EventPropertySourceRefreshed, event.ListenerFunc(func(_ context.Context, e event.Event) error {
		refreshed, ok := e.(*nacos.PropertySourceRefreshedEvent)
		if !ok {
			return nil
		}
		fmt.Fprintf(w, "[%s] %s refreshed\n", refreshed.OccurredAt().Format(time.RFC3339), refreshed.SourceName)
		for _, key := range refreshed.ChangedKeys {
			value, _ := env.GetResolved(key)
			fmt.Fprintf(w, "  %s=%s\n", key, value)
		}
		return nil
	}), event.WithAsync())
}

func newHealthCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Load the configuration, fetch every document again and report reachability",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApplication(cmd, root)
			if err != nil {
				return err
			}
			if err := app.Setup(); err != nil {
				return err
			}
			defer app.Shutdown(shutdownTimeout)

			resp := app.Health(cmd.Context())
			out, err := json.MarshalIndent(resp, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			if !resp.IsHealthy() {
				return fmt.Errorf("configuration backend is %s", resp.Status)
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
