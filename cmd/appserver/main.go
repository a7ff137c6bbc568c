package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/appserverkit/appserver/internal/cliconfig"
	"github.com/appserverkit/appserver/pkg/appserver"
	applog "github.com/appserverkit/appserver/pkg/log"
	"github.com/appserverkit/appserver/pkg/object"
	"github.com/appserverkit/appserver/plugins/configwatcher"
	"github.com/appserverkit/appserver/plugins/statusfile"
)

const helpDescription = `
Run a lifecycle-managed application server.

The server starts its plugins in order, publishes settings as observable
properties and disposes everything on SIGINT or SIGTERM.

Configuration is read from a TOML or YAML file, then APPSERVER_* environment
variables, then flags. Settings are given in the file's [settings] table, as
APPSERVER_SETTING_<NAME> variables or with --set name=value.
`

var exampleUsage = strings.TrimSpace(`
  appserver --name edge --state-dir /var/lib/appserver
  appserver --config $HOME/.appserver/config.toml --watch-config
  appserver --set region=eu --once
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return appserver.Version
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string
	var sets []string

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:           "appserver",
		Short:         "Run a lifecycle-managed application server",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			fromFlags := map[string]bool{}
			for _, arg := range sets {
				key, value, err := cliconfig.ParseSetting(arg)
				if err != nil {
					return err
				}
				cfg.Settings[key] = value
				fromFlags[key] = true
			}

			haveFile := cfgFile != "" && cliconfig.FileExists(cfgFile)
			if haveFile {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed, fromFlags); err != nil {
					return err
				}
			} else if cfgPath != "" {
				return fmt.Errorf("config file %s not found", cfgPath)
			}

			// APPSERVER_* override the file but not explicit flags.
			if err := cliconfig.ApplyEnvConfig(&cfg, changed, fromFlags); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := applog.NewZerologAdapter(applog.Options{
				Level:  cfg.LogLevel,
				Format: cfg.LogFormat,
			})
			if err != nil {
				return err
			}
			zl := logger.Logger()
			zl.Debug().Interface("config", cfg).Msg("configuration")

			opts := []appserver.Option{
				appserver.WithLogger(logger),
				appserver.WithEventHandler(eventLogger(logger)),
			}
			if cfg.StateDir != "" {
				opts = append(opts, statusfile.WithStatusFile(cfg.StateDir))
			}
			if cfg.WatchConfig {
				if !haveFile {
					logger.Warn("--watch-config ignored: no config file")
				} else {
					opts = append(opts, configwatcher.WithConfigWatcher(configwatcher.Config{
						Path:          cfgFile,
						Loader:        cliconfig.LoadSettings,
						DebounceDelay: cfg.DebounceDelay,
					}))
				}
			}

			srv, err := appserver.New(cfg.ServerConfig(), opts...)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			defer srv.Close()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			if err := srv.Start(); err != nil {
				return fmt.Errorf("start server: %w", err)
			}

			if !cfg.Once {
				sig := <-sigCh
				logger.Info("received signal, stopping", applog.String("signal", sig.String()))
			}

			if err := srv.Dispose(); err != nil {
				return fmt.Errorf("dispose server: %w", err)
			}
			return nil
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.appserver/config.toml)")
	root.Flags().StringVar(&cfg.Name, "name", cfg.Name, "server name")
	root.Flags().StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "directory for status.json (disabled when empty)")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	root.Flags().StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (console or json)")
	root.Flags().BoolVar(&cfg.WatchConfig, "watch-config", cfg.WatchConfig, "reload settings when the config file changes")
	root.Flags().DurationVar(&cfg.DebounceDelay, "debounce", cfg.DebounceDelay, "delay before reloading a changed config file")
	root.Flags().BoolVar(&cfg.Once, "once", cfg.Once, "start, then dispose immediately")
	root.Flags().StringArrayVar(&sets, "set", nil, "setting as name=value (repeatable)")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("appserver")
		os.Exit(1)
	}
}

// eventLogger logs server notifications.
func eventLogger(logger applog.Logger) object.EventHandler {
	return object.HandlerFuncs{
		PropertyChanged: func(e object.PropertyChangedEvent) {
			logger.Debug("property changed", applog.String("property", e.Name))
		},
		Lifecycle: func(e object.LifecycleEvent) {
			logger.Info("lifecycle", applog.String("transition", e.Transition.String()))
		},
		Errors: func(e object.ErrorsEvent) {
			for _, err := range e.Errors.Errors {
				logger.Error("server error", applog.Err(err))
			}
		},
	}
}
