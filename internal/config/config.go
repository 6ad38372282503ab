package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// CorpusConfig locates the documents to index.
type CorpusConfig struct {
	Dir        string   `yaml:"dir"`
	Extensions []string `yaml:"extensions"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	MaxChars int `yaml:"max_chars"`
	Overlap  int `yaml:"overlap"`
}

// IndexConfig configures the TF-IDF vector space.
type IndexConfig struct {
	MaxFeatures int `yaml:"max_features"`
	NgramMax    int `yaml:"ngram_max"`
}

// RouterConfig holds the query routing heuristics.
type RouterConfig struct {
	DefaultTopK         int     `yaml:"default_top_k"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	MaxHints            int     `yaml:"max_hints"`
	ExcerptChars        int     `yaml:"excerpt_chars"`
}

// OllamaConfig contains connection details for the Ollama chat API.
type OllamaConfig struct {
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	TimeoutSecs int     `yaml:"timeout_secs"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// GeneratorConfig selects and configures the answer generator.
type GeneratorConfig struct {
	Type         string        `yaml:"type"`
	Ollama       *OllamaConfig `yaml:"ollama,omitempty"`
	MaxSentences int           `yaml:"max_sentences"`
}

// ServerConfig configures the HTTP boundary.
type ServerConfig struct {
	Addr           string  `yaml:"addr"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Corpus    CorpusConfig    `yaml:"corpus"`
	Chunker   ChunkerConfig   `yaml:"chunker"`
	Index     IndexConfig     `yaml:"index"`
	Router    RouterConfig    `yaml:"router"`
	Generator GeneratorConfig `yaml:"generator"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
}

// GeneratorTimeout returns the Ollama request timeout.
func (c *AppConfig) GeneratorTimeout() time.Duration {
	if c.Generator.Ollama == nil {
		return 0
	}
	return time.Duration(c.Generator.Ollama.TimeoutSecs) * time.Second
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
// Environment variables (and a .env file in the working directory) override file values.
func Load(path string) (*AppConfig, error) {
	_ = godotenv.Load()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			applyEnv(cfg)
			return cfg, cfg.Validate()
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	applyEnv(&cfg)
	return &cfg, cfg.Validate()
}

// LoadDefault tries ./config.yaml first, then ~/.config/docqa/config.yaml.
// If neither exists, defaults are returned without touching the filesystem.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	cfg, err := Load(userPath)
	return cfg, userPath, err
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects configurations the engine cannot run with.
func (c *AppConfig) Validate() error {
	if c.Chunker.MaxChars <= 0 {
		return fmt.Errorf("chunker.max_chars must be positive, got %d", c.Chunker.MaxChars)
	}
	if c.Chunker.Overlap < 0 || c.Chunker.Overlap >= c.Chunker.MaxChars {
		return fmt.Errorf("chunker.overlap must be in [0, %d), got %d", c.Chunker.MaxChars, c.Chunker.Overlap)
	}
	if c.Index.MaxFeatures <= 0 {
		return fmt.Errorf("index.max_features must be positive, got %d", c.Index.MaxFeatures)
	}
	if c.Router.ConfidenceThreshold < 0 || c.Router.ConfidenceThreshold > 1 {
		return fmt.Errorf("router.confidence_threshold must be in [0, 1], got %v", c.Router.ConfidenceThreshold)
	}
	switch c.Generator.Type {
	case "ollama":
		if c.Generator.Ollama == nil {
			return errors.New("generator.ollama config missing")
		}
	case "extractive":
	default:
		return fmt.Errorf("unknown generator: %s", c.Generator.Type)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docqa", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Corpus:  CorpusConfig{Dir: filepath.Join("data", "docs"), Extensions: []string{".txt"}},
		Chunker: ChunkerConfig{MaxChars: 900, Overlap: 120},
		Index:   IndexConfig{MaxFeatures: 50000, NgramMax: 2},
		Router:  RouterConfig{DefaultTopK: 2, ConfidenceThreshold: 0.08, MaxHints: 3, ExcerptChars: 240},
		Generator: GeneratorConfig{
			Type:         "ollama",
			Ollama:       defaultOllama(),
			MaxSentences: 3,
		},
		Server: ServerConfig{Addr: ":5000", RateLimitRPS: 5, RateLimitBurst: 10},
		Log:    LogConfig{Level: "info", Format: "json"},
	}
	return cfg
}

func defaultOllama() *OllamaConfig {
	return &OllamaConfig{
		BaseURL:     "http://127.0.0.1:11434",
		Model:       "mistral",
		TimeoutSecs: 120,
		Temperature: 0.2,
		MaxTokens:   220,
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Corpus.Dir == "" {
		cfg.Corpus.Dir = def.Corpus.Dir
	}
	if len(cfg.Corpus.Extensions) == 0 {
		cfg.Corpus.Extensions = def.Corpus.Extensions
	}
	if cfg.Chunker.MaxChars == 0 {
		cfg.Chunker.MaxChars = def.Chunker.MaxChars
		if cfg.Chunker.Overlap == 0 {
			cfg.Chunker.Overlap = def.Chunker.Overlap
		}
	}
	if cfg.Index.MaxFeatures == 0 {
		cfg.Index.MaxFeatures = def.Index.MaxFeatures
	}
	if cfg.Index.NgramMax == 0 {
		cfg.Index.NgramMax = def.Index.NgramMax
	}
	if cfg.Router.DefaultTopK == 0 {
		cfg.Router.DefaultTopK = def.Router.DefaultTopK
	}
	if cfg.Router.ConfidenceThreshold == 0 {
		cfg.Router.ConfidenceThreshold = def.Router.ConfidenceThreshold
	}
	if cfg.Router.MaxHints == 0 {
		cfg.Router.MaxHints = def.Router.MaxHints
	}
	if cfg.Router.ExcerptChars == 0 {
		cfg.Router.ExcerptChars = def.Router.ExcerptChars
	}
	if cfg.Generator.Type == "" {
		cfg.Generator.Type = def.Generator.Type
	}
	if cfg.Generator.MaxSentences == 0 {
		cfg.Generator.MaxSentences = def.Generator.MaxSentences
	}
	if cfg.Generator.Type == "ollama" {
		if cfg.Generator.Ollama == nil {
			cfg.Generator.Ollama = defaultOllama()
		}
		o, d := cfg.Generator.Ollama, defaultOllama()
		if o.BaseURL == "" {
			o.BaseURL = d.BaseURL
		}
		if o.Model == "" {
			o.Model = d.Model
		}
		if o.TimeoutSecs == 0 {
			o.TimeoutSecs = d.TimeoutSecs
		}
		if o.Temperature == 0 {
			o.Temperature = d.Temperature
		}
		if o.MaxTokens == 0 {
			o.MaxTokens = d.MaxTokens
		}
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Server.RateLimitRPS == 0 {
		cfg.Server.RateLimitRPS = def.Server.RateLimitRPS
	}
	if cfg.Server.RateLimitBurst == 0 {
		cfg.Server.RateLimitBurst = def.Server.RateLimitBurst
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Log.Format
	}
}

func applyEnv(cfg *AppConfig) {
	cfg.Corpus.Dir = envOr("DOCS_DIR", cfg.Corpus.Dir)
	cfg.Server.Addr = envOr("DOCQA_ADDR", cfg.Server.Addr)
	cfg.Log.Level = envOr("LOG_LEVEL", cfg.Log.Level)
	cfg.Generator.Type = envOr("DOCQA_GENERATOR", cfg.Generator.Type)
	if cfg.Generator.Type == "ollama" {
		if cfg.Generator.Ollama == nil {
			cfg.Generator.Ollama = defaultOllama()
		}
		cfg.Generator.Ollama.BaseURL = envOr("OLLAMA_URL", cfg.Generator.Ollama.BaseURL)
		cfg.Generator.Ollama.Model = envOr("OLLAMA_MODEL", cfg.Generator.Ollama.Model)
		cfg.Generator.Ollama.TimeoutSecs = envInt("OLLAMA_TIMEOUT_SECS", cfg.Generator.Ollama.TimeoutSecs)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
