// Package main provides the entry point for the ATS resume builder server and CLI.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/ats-resume-builder/internal/config"
	"github.com/jonathan/ats-resume-builder/internal/logging"
)

var (
	appConfig *config.Config
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "ats_resume",
	Short: "ATS Resume Builder",
	Long:  "ATS Resume Builder rewrites a resume for a job description with an LLM, scores its ATS compatibility and exports it as DOCX or plain text.",

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		// Keep stdout for command output.
		closer, err := logging.Setup(logging.Options{
			Level:  cfg.LogLevel,
			Format: cfg.LogFormat,
			File:   cfg.LogFile,
			Stdout: cmd.ErrOrStderr(),
		})
		if err != nil {
			return err
		}
		appConfig, logCloser = cfg, closer
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
