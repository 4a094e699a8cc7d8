// Package config resolves CLI settings from flags, CLICHE_* environment
// variables and an optional .cliche.yaml file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tonix-tuft/cliche/executor"
	"github.com/tonix-tuft/cliche/internal/runner"
)

// EnvPrefix prefixes every environment variable, e.g. CLICHE_SHELL.
const EnvPrefix = "CLICHE"

// Keys shared by flags, environment and config file.
const (
	KeyJSON      = "json"
	KeyShell     = "shell"
	KeyShellFlag = "shell-flag"
	KeyDir       = "dir"
	KeyLogLevel  = "log-level"
	KeyLogFormat = "log-format"
	KeyConfig    = "config"
)

// Config holds resolved CLI settings.
type Config struct {
	JSON      bool   `mapstructure:"json"`
	Shell     string `mapstructure:"shell"`
	ShellFlag string `mapstructure:"shell-flag"`
	Dir       string `mapstructure:"dir"`
	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`
}

// RegisterFlags adds the persistent flags understood by Load.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.Bool(KeyJSON, false, "Output raw JSON")
	flags.String(KeyShell, "", "Command interpreter (default sh, cmd on windows)")
	flags.String(KeyShellFlag, "", "Flag passed to the interpreter before the command (default depends on --shell: /C for cmd, -Command for pwsh, else -c)")
	flags.String(KeyDir, "", "Working directory for commands")
	flags.String(KeyLogLevel, "warn", "Log level: debug, info, warn, error")
	flags.String(KeyLogFormat, "text", "Log format: text or json")
	flags.String(KeyConfig, "", "Config file (default ./.cliche.yaml)")
}

// Load binds flags and environment into v, reads the config file if present
// and returns the merged settings.
func Load(v *viper.Viper, flags *pflag.FlagSet) (*Config, error) {
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file := v.GetString(KeyConfig); file != "" {
		if _, err := os.Stat(file); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(".cliche")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	// An explicit --shell-flag "" or shell-flag: "" runs the shell without a flag.
	explicitFlag := flags.Changed(KeyShellFlag) || v.InConfig(KeyShellFlag)
	if cfg.Shell != "" && cfg.ShellFlag == "" && !explicitFlag {
		cfg.ShellFlag = runner.ShellFlagFor(cfg.Shell)
	}
	return &cfg, nil
}

// ExecutorOptions translates the settings into executor options.
func (c *Config) ExecutorOptions(logger *slog.Logger) []executor.Option {
	opts := []executor.Option{executor.WithLogger(logger)}
	if c.Shell != "" {
		opts = append(opts, executor.WithShell(c.Shell, c.ShellFlag))
	}
	if c.Dir != "" {
		opts = append(opts, executor.WithDir(c.Dir))
	}
	return opts
}

// Logger builds a slog logger writing to w.
func (c *Config) Logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(c.LogFormat) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", c.LogFormat)
	}
}
