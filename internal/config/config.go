package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr                 string        `yaml:"addr"`
	JWTSecret            string        `yaml:"jwt_secret"`
	APITimeout           time.Duration `yaml:"timeout"`
	DatabasePath         string        `yaml:"database_path"`
	MediaDir             string        `yaml:"media_dir"`
	AccessTokenDuration  time.Duration `yaml:"access_token_duration"`
	RefreshTokenDuration time.Duration `yaml:"refresh_token_duration"`
}

// LoadConfig builds the configuration from defaults, environment
// variables (including a .env file when present) and, last, an optional
// YAML file that overrides both.
func LoadConfig(path string) (*Config, error) {
	// .env is a dev convenience; absence is not an error
	_ = godotenv.Load()

	cfg := &Config{
		Addr:                 getEnv("SKILLFOLIO_ADDR", ":8080"),
		JWTSecret:            getEnv("SKILLFOLIO_JWT_SECRET", "supersecretkey"),
		APITimeout:           15 * time.Second,
		DatabasePath:         getEnv("SKILLFOLIO_DATABASE_PATH", "skillfolio.db"),
		MediaDir:             getEnv("SKILLFOLIO_MEDIA_DIR", "media"),
		AccessTokenDuration:  30 * time.Minute,
		RefreshTokenDuration: 24 * time.Hour,
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		var raw fileConfig
		dec := yaml.NewDecoder(f)
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		if err := raw.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// fileConfig mirrors Config with durations as strings so the YAML file
// can say "30m" or "24h".
type fileConfig struct {
	Addr                 string `yaml:"addr"`
	JWTSecret            string `yaml:"jwt_secret"`
	APITimeout           string `yaml:"timeout"`
	DatabasePath         string `yaml:"database_path"`
	MediaDir             string `yaml:"media_dir"`
	AccessTokenDuration  string `yaml:"access_token_duration"`
	RefreshTokenDuration string `yaml:"refresh_token_duration"`
}

func (raw fileConfig) apply(cfg *Config) error {
	if raw.Addr != "" {
		cfg.Addr = raw.Addr
	}
	if raw.JWTSecret != "" {
		cfg.JWTSecret = raw.JWTSecret
	}
	if raw.DatabasePath != "" {
		cfg.DatabasePath = raw.DatabasePath
	}
	if raw.MediaDir != "" {
		cfg.MediaDir = raw.MediaDir
	}
	for _, d := range []struct {
		value string
		dst   *time.Duration
	}{
		{raw.APITimeout, &cfg.APITimeout},
		{raw.AccessTokenDuration, &cfg.AccessTokenDuration},
		{raw.RefreshTokenDuration, &cfg.RefreshTokenDuration},
	} {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return err
		}
		*d.dst = parsed
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
