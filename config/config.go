package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Stale upload policies
const (
	StalePolicyDiscard = "discard"
	StalePolicyApply   = "apply"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Upload    UploadConfig    `yaml:"upload"`
	Session   SessionConfig   `yaml:"session"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type ServerConfig struct {
	Port              int      `yaml:"port"`
	RateLimit         int      `yaml:"rate_limit"` // requests per window per client
	RateWindowSeconds int      `yaml:"rate_window_seconds"`
	AllowedOrigins    []string `yaml:"allowed_origins"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AnalysisConfig points at the document analysis and question answering
// collaborators.
type AnalysisConfig struct {
	UploadURL      string `yaml:"upload_url"`
	AskURL         string `yaml:"ask_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type UploadConfig struct {
	MaxBytes          int64    `yaml:"max_bytes"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
}

type SessionConfig struct {
	MaxSessions int    `yaml:"max_sessions"`
	StalePolicy string `yaml:"stale_policy"` // discard, apply
	NodeID      int64  `yaml:"node_id"`
}

// ArchiveConfig configures the optional MinIO copy of uploaded documents.
type ArchiveConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type TelemetryConfig struct {
	Endpoint       string `yaml:"endpoint"`
	Headers        string `yaml:"headers"`
	ServiceName    string `yaml:"service_name"`
	ServiceVersion string `yaml:"service_version"`
}

// Enabled reports whether traces should be exported.
func (t TelemetryConfig) Enabled() bool {
	return t.Endpoint != ""
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// .env is optional; values already in the environment win
	_ = godotenv.Load()
	cfg.applyEnv()
	cfg.applyDefaults()

	return &cfg, nil
}

// Default returns a configuration with every default applied, used when no
// config file is present.
func Default() *Config {
	var cfg Config
	_ = godotenv.Load()
	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = 100
	}
	if c.Server.RateWindowSeconds == 0 {
		c.Server.RateWindowSeconds = 60
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Analysis.UploadURL == "" {
		c.Analysis.UploadURL = "http://localhost:5000/upload"
	}
	if c.Analysis.AskURL == "" {
		c.Analysis.AskURL = "http://localhost:5000/ask"
	}
	if c.Analysis.TimeoutSeconds == 0 {
		c.Analysis.TimeoutSeconds = 120
	}
	if c.Upload.MaxBytes == 0 {
		c.Upload.MaxBytes = 10 << 20
	}
	if len(c.Upload.AllowedExtensions) == 0 {
		c.Upload.AllowedExtensions = []string{".pdf", ".docx", ".doc"}
	}
	for i, ext := range c.Upload.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Upload.AllowedExtensions[i] = ext
	}
	if c.Session.MaxSessions == 0 {
		c.Session.MaxSessions = 100
	}
	if c.Session.StalePolicy != StalePolicyApply {
		c.Session.StalePolicy = StalePolicyDiscard
	}
	if c.Session.NodeID == 0 {
		c.Session.NodeID = 1
	}
	if c.Archive.Region == "" {
		c.Archive.Region = "us-east-1"
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "gen-ai-25"
	}
}

func (c *Config) applyEnv() {
	c.Server.Port = envInt("SERVER_PORT", c.Server.Port)
	c.Log.Level = envString("LOG_LEVEL", c.Log.Level)
	c.Log.Format = envString("LOG_FORMAT", c.Log.Format)
	c.Analysis.UploadURL = envString("ANALYSIS_UPLOAD_URL", c.Analysis.UploadURL)
	c.Analysis.AskURL = envString("ANALYSIS_ASK_URL", c.Analysis.AskURL)
	c.Analysis.TimeoutSeconds = envInt("ANALYSIS_TIMEOUT_SECONDS", c.Analysis.TimeoutSeconds)
	c.Session.StalePolicy = envString("SESSION_STALE_POLICY", c.Session.StalePolicy)
	c.Archive.AccessKey = envString("ARCHIVE_ACCESS_KEY", c.Archive.AccessKey)
	c.Archive.SecretKey = envString("ARCHIVE_SECRET_KEY", c.Archive.SecretKey)
	c.Telemetry.Endpoint = envString("OTEL_EXPORTER_OTLP_ENDPOINT", c.Telemetry.Endpoint)
	c.Telemetry.Headers = envString("OTEL_EXPORTER_OTLP_HEADERS", c.Telemetry.Headers)
}

func envString(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func envInt(key string, def int) int {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return n
}

// AllowsExtension reports whether ext (with leading dot) may be uploaded.
func (u UploadConfig) AllowsExtension(ext string) bool {
	ext = strings.ToLower(ext)
	for _, allowed := range u.AllowedExtensions {
		if allowed == ext {
			return true
		}
	}
	return false
}
