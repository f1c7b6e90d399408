package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/stowback/database"
	stowbackhttp "github.com/sagarc03/stowback/http"
	"github.com/sagarc03/stowback/storage"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for stowback.
type Config struct {
	Env      string                  `mapstructure:"env" validate:"omitempty,oneof=dev development prod production"`
	Server   ServerConfig            `mapstructure:"server"`
	Archive  ArchiveConfig           `mapstructure:"archive"`
	Storage  storage.Config          `mapstructure:"storage"`
	Database DatabaseConfig          `mapstructure:"database"`
	Metrics  MetricsConfig           `mapstructure:"metrics"`
	CORS     stowbackhttp.CORSConfig `mapstructure:"cors"`
	Log      LogConfig               `mapstructure:"log"`
}

// IsProd reports whether the process runs in a production environment.
func (c *Config) IsProd() bool {
	return c.Env == "prod" || c.Env == "production"
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"min=0"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" validate:"min=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=0"`
}

// ArchiveConfig holds archive pipeline configuration.
type ArchiveConfig struct {
	Compress bool `mapstructure:"compress"`
}

// DatabaseConfig holds the optional job ledger configuration.
type DatabaseConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	database.Config `mapstructure:",squash"`
}

// MetricsConfig holds Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LogConfig holds logging configuration.
//
// Level and Format default by environment: debug text in development, info
// JSON in production.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=text json"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"port":              "server.port",
	"compress":          "archive.compress",
	"storage-backend":   "storage.backend",
	"storage-container": "storage.container",
	"storage-path":      "storage.path",
	"db-type":           "database.type",
	"db-dsn":            "database.dsn",
	"log-level":         "log.level",
	"log-format":        "log.format",
}

// legacyEnv maps config keys to the environment variable names used by
// earlier deployments. The STOWBACK_ names take precedence.
var legacyEnv = map[string]string{
	"storage.container": "S3_BUCKET_NAME",
	"archive.compress":  "COMPRESS",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
// Every key needs a default so that environment variables are seen on unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("server.port", 5708)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", time.Duration(0)) // archives stream for as long as they take
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("archive.compress", false)

	v.SetDefault("storage.backend", "filesystem")
	v.SetDefault("storage.container", "stowback")
	v.SetDefault("storage.path", "./data")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.access_key", "")
	v.SetDefault("storage.s3.secret_key", "")
	v.SetDefault("storage.s3.use_ssl", true)
	v.SetDefault("storage.s3.part_size", 16<<20)
	v.SetDefault("storage.stowry.endpoint", "")
	v.SetDefault("storage.stowry.access_key", "")
	v.SetDefault("storage.stowry.secret_key", "")
	v.SetDefault("storage.stowry.expires", 900)
	v.SetDefault("storage.stowry.timeout", 30*time.Second)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "stowback.db")
	v.SetDefault("database.tables.jobs", "stowback_jobs")

	v.SetDefault("metrics.enabled", false)

	v.SetDefault("cors.enabled", false)

	v.SetDefault("log.level", "")
	v.SetDefault("log.format", "")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("STOWBACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		envName := "STOWBACK_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, envName, legacy)
	}

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct tags and the rules that depend on the chosen backends.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	if err := validateStorage(c.Storage); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	if c.Database.Enabled {
		if err := validateDatabase(c.Database.Config); err != nil {
			return fmt.Errorf("validate config: %w", err)
		}
	}

	return nil
}

func validateStorage(cfg storage.Config) error {
	if cfg.Container == "" {
		return errors.New("storage.container is required (env: STOWBACK_STORAGE_CONTAINER or S3_BUCKET_NAME)")
	}

	switch cfg.Backend {
	case "filesystem":
		if cfg.Path == "" {
			return errors.New("storage.path is required for the filesystem backend")
		}
	case "s3":
		if cfg.S3.Endpoint == "" {
			return errors.New("storage.s3.endpoint is required for the s3 backend")
		}
	case "stowry":
		if cfg.Stowry.Endpoint == "" {
			return errors.New("storage.stowry.endpoint is required for the stowry backend")
		}
	default:
		return fmt.Errorf("storage.backend must be one of filesystem, s3, stowry: got %q", cfg.Backend)
	}

	return nil
}

func validateDatabase(cfg database.Config) error {
	switch cfg.Type {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.type must be sqlite or postgres: got %q", cfg.Type)
	}

	if cfg.DSN == "" {
		return errors.New("database.dsn is required when the job ledger is enabled")
	}

	return cfg.Tables.Validate()
}
