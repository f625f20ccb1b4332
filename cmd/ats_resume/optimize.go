package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/ats-resume-builder/internal/export"
	"github.com/jonathan/ats-resume-builder/internal/extract"
	"github.com/jonathan/ats-resume-builder/internal/observability"
	"github.com/jonathan/ats-resume-builder/internal/optimize"
	"github.com/jonathan/ats-resume-builder/internal/types"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Optimize a resume for a job description",
	Long:  "Optimize a resume file (PDF, DOCX or text) for a job description read from a file or a posting URL, print the ATS score and write the result as DOCX, TXT or JSON.",
	RunE:  runOptimize,
}

var (
	optJobFile string
	optJobURL  string
	optResume  string
	optFormat  string
	optOut     string
)

func init() {
	optimizeCmd.Flags().StringVarP(&optJobFile, "job", "j", "", "Path to a text file containing the job description")
	optimizeCmd.Flags().StringVarP(&optJobURL, "job-url", "u", "", "URL of the job posting")
	optimizeCmd.Flags().StringVarP(&optResume, "resume", "r", "", "Path to the resume (PDF, DOCX or text) (required)")
	optimizeCmd.Flags().StringVarP(&optFormat, "format", "f", string(export.FormatDOCX), "Output format: docx, txt or json")
	optimizeCmd.Flags().StringVarP(&optOut, "out", "o", "", "Output file (default optimized-resume-<timestamp>.<format>)")

	optimizeCmd.MarkFlagRequired("resume")

	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, _ []string) error {
	// Validate mutually exclusive flags
	if optJobFile == "" && optJobURL == "" {
		return fmt.Errorf("either --job or --job-url must be provided")
	}
	if optJobFile != "" && optJobURL != "" {
		return fmt.Errorf("--job and --job-url are mutually exclusive; provide only one")
	}
	format, err := export.ParseFormat(optFormat)
	if err != nil {
		return fmt.Errorf("invalid --format %q: use docx, txt or json", optFormat)
	}

	cfg := appConfig
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	svc, err := newServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	req, err := loadInputs(ctx, svc.fetcher, optJobFile, optJobURL, optResume)
	if err != nil {
		return err
	}

	result, err := svc.optimizer.Optimize(ctx, *req)
	if err != nil {
		return fmt.Errorf("failed to optimize resume: %w", err)
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	printer.PrintResult(result.Resume, result.Model, result.Duration, result.Fallback)

	return writeExport(printer, format, result.Resume, optOut)
}

// loadInputs reads the job description and extracts the resume concurrently.
func loadInputs(ctx context.Context, fetcher optimize.JobFetcher, jobFile, jobURL, resumePath string) (*types.OptimizeRequest, error) {
	var (
		req types.OptimizeRequest
		doc *extract.Document
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if jobFile != "" {
			data, err := os.ReadFile(jobFile)
			if err != nil {
				return fmt.Errorf("failed to read job description: %w", err)
			}
			req.JobDescription = string(data)
			return nil
		}
		text, err := fetcher.FetchJobDescription(gctx, jobURL)
		if err != nil {
			return fmt.Errorf("failed to fetch job description: %w", err)
		}
		req.JobDescription = text
		req.JobDescriptionURL = jobURL
		return nil
	})
	g.Go(func() error {
		var err error
		doc, err = extract.ReadFile(resumePath)
		if err != nil {
			return fmt.Errorf("failed to extract resume: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	req.ResumeText = doc.Text
	req.OriginalFormat = strings.ToUpper(string(doc.Format))
	return &req, nil
}

// writeExport renders resume in format and writes it to path, or to the
// default export filename when path is empty.
func writeExport(printer *observability.Printer, format export.Format, resume *types.OptimizedResume, path string) error {
	body, err := export.Render(format, resume)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", format, err)
	}
	if path == "" {
		path = export.Filename(format, time.Now())
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	printer.PrintSaved(path, len(body))
	return nil
}
