package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"docqa/internal/chunker"
	"docqa/internal/config"
	"docqa/internal/corpus"
	"docqa/internal/embedding/tfidf"
	"docqa/internal/index"
	"docqa/internal/llm"
	"docqa/internal/llm/extractive"
	"docqa/internal/llm/ollama"
	"docqa/internal/service"
)

// app is the assembled engine shared by every subcommand.
type app struct {
	cfg    *config.AppConfig
	log    *slog.Logger
	holder *index.Holder
	router *service.Router
}

func loadConfig() (*config.AppConfig, error) {
	if flagConfig == "" {
		cfg, _, err := config.LoadDefault()
		return cfg, err
	}
	return config.Load(flagConfig)
}

// buildApp loads configuration, indexes the corpus and wires the router.
// Logs go to logOut.
func buildApp(logOut io.Writer) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := newLogger(cfg.Log, logOut)

	loader := corpus.NewLoader(chunker.NewWindowChunker(cfg.Chunker.MaxChars, cfg.Chunker.Overlap), cfg.Corpus.Extensions, log)
	holder := index.NewHolder(loader, tfidf.Options{
		MaxFeatures: cfg.Index.MaxFeatures,
		NgramMax:    cfg.Index.NgramMax,
	}, log)
	if _, err := holder.Rebuild(cfg.Corpus.Dir); err != nil {
		return nil, err
	}

	gen, err := newGenerator(cfg)
	if err != nil {
		return nil, err
	}
	routerCfg := service.Config{
		DefaultTopK:         cfg.Router.DefaultTopK,
		ConfidenceThreshold: cfg.Router.ConfidenceThreshold,
		MaxHints:            cfg.Router.MaxHints,
		ExcerptChars:        cfg.Router.ExcerptChars,
		Temperature:         service.DefaultConfig().Temperature,
		MaxTokens:           service.DefaultConfig().MaxTokens,
	}
	if o := cfg.Generator.Ollama; o != nil {
		routerCfg.Temperature = o.Temperature
		routerCfg.MaxTokens = o.MaxTokens
	}
	router := service.NewRouter(holder, gen, routerCfg, log)
	return &app{cfg: cfg, log: log, holder: holder, router: router}, nil
}

func newGenerator(cfg *config.AppConfig) (llm.Generator, error) {
	switch cfg.Generator.Type {
	case "ollama", "":
		o := cfg.Generator.Ollama
		if o == nil {
			return nil, fmt.Errorf("ollama generator config missing")
		}
		return ollama.NewClient(ollama.Config{
			BaseURL: o.BaseURL,
			Model:   o.Model,
			Timeout: cfg.GeneratorTimeout(),
		}), nil
	case "extractive":
		return extractive.New(cfg.Generator.MaxSentences), nil
	default:
		return nil, fmt.Errorf("unknown generator: %s", cfg.Generator.Type)
	}
}

func newLogger(cfg config.LogConfig, out io.Writer) *slog.Logger {
	if out == nil {
		out = os.Stderr
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(out, opts))
	}
	return slog.New(slog.NewJSONHandler(out, opts))
}

// summary is the one-line corpus description shown by the TUI.
func (a *app) summary() string {
	idx := a.holder.Current()
	return fmt.Sprintf("%d chunks from %d documents in %s", idx.Len(), len(idx.Sources()), a.cfg.Corpus.Dir)
}
