package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Environment keys read for flag defaults.
const (
	EnvSchema   = "AUTOFORM_SCHEMA"
	EnvModel    = "AUTOFORM_MODEL"
	EnvLogLevel = "AUTOFORM_LOG_LEVEL"

	// EnvTheme names a theme manifest, optionally suffixed "#<variant>".
	EnvTheme = "AUTOFORM_THEME"
)

// Config holds the settings shared by every command.
type Config struct {
	Schema   string
	Model    string
	LogLevel string
	Theme    string
	Variant  string
}

// LoadEnv overlays the variables of envFile onto env. Process variables win
// over the file, as with godotenv.Load.
func LoadEnv(env map[string]string, envFile string) (map[string]string, error) {
	merged := make(map[string]string, len(env))
	if envFile != "" {
		fileEnv, err := godotenv.Read(envFile)
		if err != nil {
			return nil, fmt.Errorf("read env file %s: %w", envFile, err)
		}
		for key, value := range fileEnv {
			merged[key] = value
		}
	}
	for key, value := range env {
		merged[key] = value
	}
	return merged, nil
}

// ConfigFromEnv builds the defaults every command starts from.
func ConfigFromEnv(env map[string]string) Config {
	cfg := Config{
		Schema:   env[EnvSchema],
		Model:    env[EnvModel],
		LogLevel: env[EnvLogLevel],
		Theme:    env[EnvTheme],
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	if name, variant, ok := strings.Cut(cfg.Theme, "#"); ok {
		cfg.Theme, cfg.Variant = name, variant
	}
	return cfg
}

// bindCommon registers the flags shared by commands that load a form.
func bindCommon(flags *flag.FlagSet, cfg *Config) {
	flags.StringVarP(&cfg.Schema, "schema", "s", cfg.Schema, "schema bundle or OpenAPI document (env "+EnvSchema+")")
	flags.StringVarP(&cfg.Model, "model", "m", cfg.Model, "model to render (env "+EnvModel+")")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error (env "+EnvLogLevel+")")
}

// NewLogger builds a development console logger writing to w.
func NewLogger(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(w),
		lvl,
	)
	return zap.New(core), nil
}
