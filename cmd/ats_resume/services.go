package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonathan/ats-resume-builder/internal/config"
	"github.com/jonathan/ats-resume-builder/internal/events"
	"github.com/jonathan/ats-resume-builder/internal/fetch"
	"github.com/jonathan/ats-resume-builder/internal/history"
	"github.com/jonathan/ats-resume-builder/internal/llm"
	"github.com/jonathan/ats-resume-builder/internal/optimize"
)

// services holds everything built from the configuration. Close releases
// whatever was opened.
type services struct {
	client    llm.Client
	fetcher   *fetch.CachedFetcher
	history   *history.Store
	publisher *events.Publisher
	optimizer *optimize.Service
}

// newServices connects the LLM client and the optional history store and
// event publisher, then builds the optimize service on top of them.
func newServices(ctx context.Context, cfg *config.Config) (*services, error) {
	client, err := llm.NewClient(ctx, cfg.LLMConfig(), cfg.APIKey())
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	svc := &services{client: client}

	var render fetch.Renderer
	if cfg.UseBrowser {
		render = fetch.BrowserRenderer(fetch.DefaultTimeout)
	}
	svc.fetcher = fetch.NewCachedFetcher(fetch.NewJobFetcher(nil, render), 0)

	opts := optimize.Options{
		Client:          client,
		MaxPromptTokens: cfg.MaxPromptTokens,
		Fetcher:         svc.fetcher,
	}

	if cfg.HistoryEnabled() {
		store, err := history.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			svc.Close()
			return nil, err
		}
		svc.history = store
		if err := store.EnsureSchema(ctx); err != nil {
			svc.Close()
			return nil, err
		}
		opts.Recorder = store
		slog.Info("run history enabled")
	}

	if cfg.EventsEnabled() {
		publisher, err := events.Dial(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			svc.Close()
			return nil, err
		}
		svc.publisher = publisher
		opts.Publisher = publisher
		slog.Info("run events enabled", "exchange", cfg.AMQPExchange)
	}

	svc.optimizer, err = optimize.NewService(opts)
	if err != nil {
		svc.Close()
		return nil, err
	}
	return svc, nil
}

// Close releases the publisher, the history pool and the LLM client.
func (s *services) Close() {
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			slog.Warn("failed to close event publisher", "error", err)
		}
	}
	if s.history != nil {
		s.history.Close()
	}
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			slog.Warn("failed to close LLM client", "error", err)
		}
	}
}
