package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/sheetprompt/internal/batch"
	"github.com/charmbracelet/sheetprompt/internal/cache"
	"github.com/charmbracelet/sheetprompt/internal/openai"
	"github.com/charmbracelet/sheetprompt/internal/state"
	"github.com/charmbracelet/sheetprompt/internal/store"
)

// session is everything a command needs once the settings are loaded.
type session struct {
	cfg     *Config
	logger  *log.Logger
	db      *store.DB
	outputs *cache.Outputs
	app     *state.App
}

func newLogger(cfg *Config) *log.Logger {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.WarnLevel
	}
	if cfg.Verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:  level,
		Prefix: "sheetprompt",
	})
}

func openSession(ctx context.Context, cfg *Config, logger *log.Logger) (*session, error) {
	if err := os.MkdirAll(cfg.DataPath, 0o700); err != nil {
		return nil, appError{err, "Could not create data directory."}
	}

	db, err := store.Open(filepath.Join(cfg.DataPath, "sheetprompt.db"))
	if err != nil {
		return nil, appError{err, "Could not open database."}
	}

	outputs, err := cache.NewOutputs(cfg.DataPath)
	if err != nil {
		_ = db.Close()
		return nil, appError{err, "Could not open run output cache."}
	}

	app, err := state.Load(ctx, db, logger)
	if err != nil {
		_ = db.Close()
		return nil, appError{err, "Could not load state."}
	}

	logger.Debug("session opened", "data", cfg.DataPath, "api", app.API().Name)
	return &session{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		outputs: outputs,
		app:     app,
	}, nil
}

func (s *session) Close() error {
	if err := s.db.Close(); err != nil {
		return appError{err, "Could not close database."}
	}
	return nil
}

// client returns a chat client for the given API, honoring the proxy,
// timeout and retry settings.
func (s *session) client(api batch.API) (*openai.Client, error) {
	if api.URL == "" {
		return nil, appError{
			errors.New("missing url"),
			newUserErrorf("The %s API has no URL, set one with %s.", api.Name, "sheetprompt api url").Error(),
		}
	}

	cfg := openai.DefaultConfig(api.Key, api.URL)
	cfg.MaxRetries = s.cfg.MaxRetries
	cfg.Timeout = s.cfg.Timeout
	if s.cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(s.cfg.HTTPProxy)
		if err != nil {
			return nil, appError{err, "There was an error parsing your proxy URL."}
		}
		cfg.HTTPClient = &http.Client{
			Transport: &http.Transport{Proxy: http.ProxyURL(proxyURL)},
		}
	}
	return openai.New(cfg), nil
}
