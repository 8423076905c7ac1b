package main

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"lingod/internal/app"
	"lingod/internal/config"
	"lingod/internal/manager"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	configPath string
	logLevel   string
	logJSON    bool
	provider   string
	baseURL    string
	model      string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "lingod",
		Short:         "On-device translation and summarization sessions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", os.Getenv("LINGOD_CONFIG"), "Path to config file (yaml|json|toml)")
	pf.StringVar(&opts.logLevel, "log-level", os.Getenv("LINGOD_LOG_LEVEL"), "Log level: debug|info|warn|error (defaults LINGOD_LOG_LEVEL or info)")
	pf.BoolVar(&opts.logJSON, "log-json", false, "Log as JSON instead of console output")
	pf.StringVar(&opts.provider, "provider", "", "Capability host: mock|llama-server|llama")
	pf.StringVar(&opts.baseURL, "base-url", "", "llama-server base URL")
	pf.StringVar(&opts.model, "model", "", "Model id (llama) or model name (llama-server)")

	root.AddCommand(
		newServeCmd(opts),
		newTUICmd(opts),
		newTranslateCmd(opts),
		newSummarizeCmd(opts),
		newDetectCmd(opts),
		newVersionCmd(),
	)
	return root
}

// resolveConfig layers file values, then flags. Defaults are applied last.
func resolveConfig(opts *options) (config.Config, error) {
	var cfg config.Config
	if opts.configPath != "" {
		c, err := config.Load(opts.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = c
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.provider != "" {
		cfg.Provider.Kind = opts.provider
	}
	if opts.baseURL != "" {
		cfg.Provider.BaseURL = opts.baseURL
	}
	if opts.model != "" {
		cfg.Provider.Model = opts.model
	}
	cfg.ApplyDefaults()
	return cfg, cfg.Validate()
}

func newLogger(level string, asJSON bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	var l zerolog.Logger
	if asJSON {
		l = zerolog.New(os.Stderr)
	} else {
		l = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}
	return l.Level(lvl).With().Timestamp().Logger()
}

// eventLogger logs every session event at debug level.
func eventLogger(l zerolog.Logger) manager.EventPublisher {
	return manager.PublisherFunc(func(e manager.Event) {
		l.Debug().Str("feature", e.Feature).Str("event", e.Name).Fields(e.Fields).Msg("session event")
	})
}

// startApp builds the logger and the sessions. The caller closes the App.
func startApp(opts *options, extra ...manager.EventPublisher) (*app.App, config.Config, zerolog.Logger, error) {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return nil, cfg, zerolog.Nop(), err
	}
	logger := newLogger(cfg.LogLevel, opts.logJSON)
	pubs := append([]manager.EventPublisher{eventLogger(logger)}, extra...)
	a, err := app.New(app.Options{
		Config:    cfg,
		Logger:    &logger,
		Publisher: manager.Publishers(pubs...),
	})
	return a, cfg, logger, err
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// httpLogLevel maps a zerolog level name to the HTTP layer's request level.
func httpLogLevel(level string) string {
	switch strings.ToLower(level) {
	case "debug", "trace":
		return "debug"
	case "warn", "error", "fatal", "panic":
		return "error"
	case "disabled", "off":
		return "off"
	}
	return "info"
}
