package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	DB       DBConfig       `koanf:"db"`
	Media    MediaConfig    `koanf:"media"`
	Log      LogConfig      `koanf:"log"`
	Cache    CacheConfig    `koanf:"cache"`
	Security SecurityConfig `koanf:"security"`
}

type ServerConfig struct {
	Port      string `koanf:"port"`
	BodyLimit int    `koanf:"body_limit"`
}

type DBConfig struct {
	DSN string `koanf:"dsn"`
}

// MediaConfig selects local disk storage unless an S3 bucket is configured.
type MediaConfig struct {
	Dir         string `koanf:"dir"`
	S3Bucket    string `koanf:"s3_bucket"`
	S3Region    string `koanf:"s3_region"`
	S3Endpoint  string `koanf:"s3_endpoint"`
	S3PublicURL string `koanf:"s3_public_url"`
	S3AccessKey string `koanf:"s3_access_key"`
	S3SecretKey string `koanf:"s3_secret_key"`
}

type LogConfig struct {
	File  string `koanf:"file"`
	Level string `koanf:"level"`
}

type CacheConfig struct {
	RedisURL  string        `koanf:"redis_url"`
	SearchTTL time.Duration `koanf:"search_ttl"`
}

type SecurityConfig struct {
	CSRF         bool     `koanf:"csrf"`
	CookieSecure bool     `koanf:"cookie_secure"`
	CORSOrigins  []string `koanf:"cors_origins"`
}

// ConfigPathEnvVar overrides the YAML file location.
const ConfigPathEnvVar = "CONFIG_PATH"

var defaultConfigPaths = []string{"config.yaml", "config.yml"}

// envKeys maps flat environment variable names to koanf paths.
var envKeys = map[string]string{
	"port":             "server.port",
	"body_limit":       "server.body_limit",
	"db_dsn":           "db.dsn",
	"media_dir":        "media.dir",
	"s3_bucket":        "media.s3_bucket",
	"s3_region":        "media.s3_region",
	"s3_endpoint":      "media.s3_endpoint",
	"s3_public_url":    "media.s3_public_url",
	"s3_access_key":    "media.s3_access_key",
	"s3_secret_key":    "media.s3_secret_key",
	"log_file":         "log.file",
	"log_level":        "log.level",
	"redis_url":        "cache.redis_url",
	"search_cache_ttl": "cache.search_ttl",
	"csrf_enabled":     "security.csrf",
	"cookie_secure":    "security.cookie_secure",
	"cors_origins":     "security.cors_origins",
}

func Default() Config {
	return Config{
		Server: ServerConfig{Port: "8080", BodyLimit: 1 << 20},
		DB:     DBConfig{DSN: "heavyequip.db"},
		Media:  MediaConfig{Dir: "./web/media", S3Region: "us-east-1"},
		Log:    LogConfig{File: "./heavyequip.log", Level: "info"},
		Cache:  CacheConfig{SearchTTL: 60 * time.Second},
		Security: SecurityConfig{
			CSRF:        true,
			CORSOrigins: []string{"*"},
		},
	}
}

// Load layers defaults, an optional YAML file and the environment (highest priority).
// A .env file in the working directory is read first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}
	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}
	if raw := k.String("security.cors_origins"); raw != "" && !strings.HasPrefix(raw, "[") {
		_ = k.Set("security.cors_origins", splitList(raw))
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if c.DB.DSN == "" {
		return fmt.Errorf("db.dsn is required")
	}
	if c.Server.BodyLimit <= 0 {
		return fmt.Errorf("server.body_limit must be positive")
	}
	if c.Cache.SearchTTL < 0 {
		return fmt.Errorf("cache.search_ttl must not be negative")
	}
	return nil
}

// Summary is safe to log: credentials are left out.
func (c Config) Summary() string {
	storage := "local:" + c.Media.Dir
	if c.Media.S3Bucket != "" {
		storage = "s3:" + c.Media.S3Bucket
	}
	cache := "memory"
	if c.Cache.RedisURL != "" {
		cache = "redis"
	}
	return fmt.Sprintf("PORT=%s DB_DSN=%s MEDIA=%s CACHE=%s LOG_FILE=%s CSRF=%t",
		c.Server.Port, c.DB.DSN, storage, cache, c.Log.File, c.Security.CSRF)
}

func envTransform(key string) string {
	if path, ok := envKeys[strings.ToLower(key)]; ok {
		return path
	}
	// unknown variables are dropped
	return ""
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range defaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
