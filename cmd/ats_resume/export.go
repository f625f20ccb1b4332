package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/jonathan/ats-resume-builder/internal/export"
	"github.com/jonathan/ats-resume-builder/internal/observability"
	"github.com/jonathan/ats-resume-builder/internal/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Convert a saved optimization result to DOCX or TXT",
	Long:  "Convert an optimization result saved as JSON (either the API response or the bare optimizedResume object) to DOCX, TXT or JSON.",
	RunE:  runExport,
}

var (
	exportIn     string
	exportFormat string
	exportOut    string
)

func init() {
	exportCmd.Flags().StringVarP(&exportIn, "in", "i", "", "Path to the result JSON (required)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", string(export.FormatDOCX), "Output format: docx, txt or json")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default optimized-resume-<timestamp>.<format>)")

	exportCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return fmt.Errorf("invalid --format %q: use docx, txt or json", exportFormat)
	}

	data, err := os.ReadFile(exportIn)
	if err != nil {
		return fmt.Errorf("failed to read result: %w", err)
	}
	resume, err := readResult(data)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", exportIn, err)
	}

	return writeExport(observability.NewPrinter(cmd.OutOrStdout()), format, resume, exportOut)
}

// readResult accepts either {"optimizedResume": {...}} or the resume object itself.
func readResult(data []byte) (*types.OptimizedResume, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("not valid JSON")
	}
	raw := data
	if wrapped := gjson.GetBytes(data, "optimizedResume"); wrapped.IsObject() {
		raw = []byte(wrapped.Raw)
	}

	var resume types.OptimizedResume
	if err := json.Unmarshal(raw, &resume); err != nil {
		return nil, err
	}
	if len(resume.Sections) == 0 {
		return nil, errors.New("result has no sections")
	}
	resume.Normalize()
	return &resume, nil
}
