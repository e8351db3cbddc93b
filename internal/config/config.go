package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Engine drivers.
const (
	DriverRedis   = "redis"
	DriverBleve   = "bleve"
	DriverElastic = "elastic"
)

// Config holds the searchsync configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Auth    AuthConfig    `yaml:"auth"`
	Engine  EngineConfig  `yaml:"engine"`
	Store   StoreConfig   `yaml:"store"`
	Index   IndexConfig   `yaml:"index"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	Logging LoggingConfig `yaml:"logging"`
	Types   []TypeConfig  `yaml:"types"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn (WARNING), error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// EngineConfig holds search engine connection settings.
type EngineConfig struct {
	Driver           string   `yaml:"driver"` // redis, bleve, elastic (default: redis)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	Path             string   `yaml:"path"`       // bleve only; empty = in-memory
	KeyPrefix        string   `yaml:"key_prefix"` // redis only
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StoreConfig holds record store settings.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// IndexConfig holds synchronization and search settings.
type IndexConfig struct {
	Default              string `yaml:"default"`
	BatchSize            int    `yaml:"batch_size"`
	DefaultPageSize      int    `yaml:"default_page_size"`
	MaxPageSize          int    `yaml:"max_page_size"`
	MaxLookupConcurrency int    `yaml:"max_lookup_concurrency"` // 0 = unbounded
	RefreshOnSave        bool   `yaml:"refresh_on_save"`
}

// KafkaConfig holds change-event consumer settings.
type KafkaConfig struct {
	Brokers  []string `yaml:"brokers"`
	GroupID  string   `yaml:"group_id"`
	Topic    string   `yaml:"topic"`
	MinBytes int      `yaml:"min_bytes"`
	MaxBytes int      `yaml:"max_bytes"`
}

// TypeConfig declares one record type and its field rules.
type TypeConfig struct {
	Name          string        `yaml:"name"`
	Index         string        `yaml:"index"`
	IdentityField string        `yaml:"identity_field"`
	Refresh       *bool         `yaml:"refresh"` // nil = index.refresh_on_save
	Fields        []FieldConfig `yaml:"fields"`
}

// FieldConfig is one ordered field rule.
type FieldConfig struct {
	Path   string `yaml:"path"`
	Mode   string `yaml:"mode"`   // copy (true, object), flatten (array), geopoint (geojson)
	Target string `yaml:"target"` // geopoint only
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes, defaults and validates raw YAML.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Engine.Driver == "" {
		c.Engine.Driver = DriverRedis
	}
	if c.Engine.ReadinessTimeout <= 0 {
		c.Engine.ReadinessTimeout = 10
	}
	if c.Engine.KeyPrefix == "" {
		c.Engine.KeyPrefix = "searchsync:"
	}
	if c.Store.Path == "" {
		c.Store.Path = "data/records.db"
	}
	if c.Index.Default == "" {
		c.Index.Default = "searchsync"
	}
	if c.Index.BatchSize <= 0 {
		c.Index.BatchSize = 200
	}
	if c.Index.DefaultPageSize <= 0 {
		c.Index.DefaultPageSize = 10
	}
	if c.Index.MaxPageSize <= 0 {
		c.Index.MaxPageSize = 100
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "searchsync"
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "searchsync.records"
	}
	if c.Kafka.MinBytes <= 0 {
		c.Kafka.MinBytes = 1
	}
	if c.Kafka.MaxBytes <= 0 {
		c.Kafka.MaxBytes = 10e6
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Engine.Driver {
	case DriverRedis, DriverElastic:
		if len(c.Engine.Addrs) == 0 {
			return fmt.Errorf("engine.addrs is required for driver %q", c.Engine.Driver)
		}
	case DriverBleve:
	default:
		return fmt.Errorf("engine.driver must be \"redis\", \"bleve\" or \"elastic\", got %q", c.Engine.Driver)
	}
	if c.Index.MaxLookupConcurrency < 0 {
		return fmt.Errorf("index.max_lookup_concurrency must not be negative")
	}
	if c.Index.DefaultPageSize > c.Index.MaxPageSize {
		return fmt.Errorf("index.default_page_size %d exceeds index.max_page_size %d",
			c.Index.DefaultPageSize, c.Index.MaxPageSize)
	}
	seen := make(map[string]bool, len(c.Types))
	for i, t := range c.Types {
		if t.Name == "" {
			return fmt.Errorf("types[%d].name is required", i)
		}
		if seen[t.Name] {
			return fmt.Errorf("types[%d]: duplicate type %q", i, t.Name)
		}
		seen[t.Name] = true
		for j, f := range t.Fields {
			if f.Path == "" {
				return fmt.Errorf("types.%s.fields[%d].path is required", t.Name, j)
			}
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
