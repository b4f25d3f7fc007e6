package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Database struct {
		Driver string
		DSN    string
	}
	Session struct {
		Secret     string
		CookieName string
		TTLMinutes int
		Secure     bool
	}
	Log struct {
		Level  string
		Format string
	}
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	// a missing .env is fine; real environment variables take precedence
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("BLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/blog.db")
	v.SetDefault("session.secret", "")
	v.SetDefault("session.cookiename", "blog_session")
	v.SetDefault("session.ttlminutes", 24*60)
	v.SetDefault("session.secure", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Validate reports the first setting that prevents the server from starting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Session.Secret) == "" {
		return errors.New("session secret is required")
	}
	if c.Session.TTLMinutes <= 0 {
		return fmt.Errorf("session ttl must be positive, got %d", c.Session.TTLMinutes)
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("database dsn is required")
	}
	return nil
}
