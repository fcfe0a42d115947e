package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultSecret is the signing key used when none is configured.
// Deployments must override it through TASKS_AUTH_SECRET or the config file.
const DefaultSecret = "demo-secret-key-change-in-production"

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Port string `mapstructure:"port"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`

	Auth struct {
		Secret   string        `mapstructure:"secret"`
		TokenTTL time.Duration `mapstructure:"token_ttl"`
		Hasher   string        `mapstructure:"hasher"`
	} `mapstructure:"auth"`

	Store struct {
		Driver string `mapstructure:"driver"` // memory | sqlite
		Path   string `mapstructure:"path"`
	} `mapstructure:"store"`

	HTTP struct {
		ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
		WriteTimeout      time.Duration `mapstructure:"write_timeout"`
		IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
		ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"http"`
}

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("auth.secret", DefaultSecret)
	v.SetDefault("auth.token_ttl", 30*time.Minute)
	v.SetDefault("auth.hasher", "sha256")
	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("store.path", ":memory:")
	v.SetDefault("http.read_header_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 10*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
}

// Load reads configuration from TASKS_* environment variables and an
// optional config file. With an empty path, config.yml is looked up in
// ./configs and the working directory and may be absent. An explicit path
// must exist.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TASKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Auth.Secret) == "" {
		return errors.New("auth.secret must not be empty")
	}
	switch c.Store.Driver {
	case DriverMemory, DriverSQLite:
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	return nil
}

// UsesDefaultSecret reports whether the signing key was left at its demo value.
func (c Config) UsesDefaultSecret() bool { return c.Auth.Secret == DefaultSecret }
