package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jonathan/ats-resume-builder/internal/server"
	"github.com/jonathan/ats-resume-builder/internal/server/ratelimit"
	"github.com/jonathan/ats-resume-builder/internal/storage"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server and web UI",
	Long:  `Start an HTTP server that exposes the optimize, extract, export and history endpoints and serves the web UI.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from PORT, 3001)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := appConfig
	if servePort != 0 {
		cfg.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	slog.Info("loaded configuration", "config", cfg)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	svc, err := newServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	opts := server.Options{
		Port:        cfg.Port,
		CORSOrigins: cfg.CORSOrigins,
		RateLimit:   ratelimit.FromSettings(cfg.RateLimit),
		Optimizer:   svc.optimizer,
	}
	if svc.history != nil {
		opts.History = svc.history
	}
	if cfg.StorageEnabled() {
		store, err := storage.New(ctx, storage.Options{
			Bucket:    cfg.ExportBucket,
			Region:    cfg.ExportRegion,
			Endpoint:  cfg.ExportEndpoint,
			AccessKey: cfg.ExportAccessKey,
			SecretKey: cfg.ExportSecretKey,
			URLTTL:    cfg.ExportURLTTL,
		})
		if err != nil {
			return err
		}
		opts.Storage = store
		slog.Info("export storage enabled", "bucket", cfg.ExportBucket)
	}

	srv, err := server.New(opts)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	slog.Info("ATS Resume Builder ready",
		"port", cfg.Port,
		"model", svc.optimizer.Model(),
		"api_key_configured", cfg.APIKey() != "")
	return srv.Start(ctx)
}
