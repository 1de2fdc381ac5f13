// Package config provides configuration loading and structs for the Kotae server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	LLM       LLMConfig       `yaml:"llm"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Uploads   UploadsConfig   `yaml:"uploads"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	StaticDir      string        `yaml:"static_dir"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

// StorageConfig selects the document store backend. Both backends live in memory only.
type StorageConfig struct {
	Backend    string `yaml:"backend"`
	SQLiteName string `yaml:"sqlite_name"`
}

// RetrievalConfig holds chunking and keyword retrieval settings.
type RetrievalConfig struct {
	ChunkSize    int   `yaml:"chunk_size"`
	TopK         int   `yaml:"top_k"`
	KeywordIndex *bool `yaml:"keyword_index"`
}

// KeywordIndexOrDefault returns whether the bleve candidate index is used; defaults to true.
func (r *RetrievalConfig) KeywordIndexOrDefault() bool {
	if r.KeywordIndex != nil {
		return *r.KeywordIndex
	}
	return true
}

// LLMConfig holds settings for the chat completion provider.
type LLMConfig struct {
	APIKey           string        `yaml:"api_key"`
	BaseURL          string        `yaml:"base_url"`
	Model            string        `yaml:"model"`
	Temperature      float32       `yaml:"temperature"`
	SummaryMaxTokens int           `yaml:"summary_max_tokens"`
	SummaryMaxChars  int           `yaml:"summary_max_chars"`
	Timeout          time.Duration `yaml:"timeout"`
}

// Configured reports whether an API key is available.
func (l *LLMConfig) Configured() bool {
	return strings.TrimSpace(l.APIKey) != ""
}

// AnalyticsConfig holds query statistics settings.
type AnalyticsConfig struct {
	// HistoryLimit caps the recorded query history; 0 keeps every query.
	HistoryLimit int `yaml:"history_limit"`
}

// UploadsConfig controls where uploaded files are copied and how large they may be.
type UploadsConfig struct {
	Dir        string   `yaml:"dir"`
	MaxBytes   int64    `yaml:"max_bytes"`
	Extensions []string `yaml:"extensions"`
}

// WatchConfig holds inbox directory settings. Files dropped into these directories are
// ingested as documents.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Load reads and parses the config file at path, expands paths, applies defaults and
// then environment overrides. A missing file is not an error: defaults and environment
// are used instead. An empty path skips the file.
func Load(path string) (*Config, error) {
	var cfg Config
	configDir := "."
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
			configDir = filepath.Dir(path)
		}
	}

	ApplyDefaults(&cfg)
	if err := ApplyEnv(&cfg, os.Getenv); err != nil {
		return nil, err
	}

	cfg.Server.StaticDir = expandPath(cfg.Server.StaticDir, configDir)
	cfg.Uploads.Dir = expandPath(cfg.Uploads.Dir, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}
	return &cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment without
// overriding variables that are already set. A missing file is ignored.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides cfg with values from the environment, read through getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := getenv("OPENAI_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := getenv("OPENAI_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	if v := getenv("HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v := getenv("KOTAE_DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid KOTAE_DEBUG %q: %w", v, err)
		}
		cfg.Debug = debug
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// expandPath converts a path to absolute. Relative paths are resolved against configDir.
// Empty paths stay empty.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
		return path
	}
	if abs, err := filepath.Abs(filepath.Join(configDir, path)); err == nil {
		return abs
	}
	return path
}
