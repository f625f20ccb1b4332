package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/ats-resume-builder/internal/extract"
	"github.com/jonathan/ats-resume-builder/internal/observability"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract the text of a resume file",
	Long:  "Extract and clean the text of a PDF, DOCX or plain text resume. Prints the text, or a summary box with --summary.",
	RunE:  runExtract,
}

var (
	extractResume  string
	extractSummary bool
)

func init() {
	extractCmd.Flags().StringVarP(&extractResume, "resume", "r", "", "Path to the resume (required)")
	extractCmd.Flags().BoolVar(&extractSummary, "summary", false, "Print a summary instead of the full text")

	extractCmd.MarkFlagRequired("resume")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	doc, err := extract.ReadFile(extractResume)
	if err != nil {
		return fmt.Errorf("failed to extract resume: %w", err)
	}

	if extractSummary {
		observability.NewPrinter(cmd.OutOrStdout()).PrintExtraction(doc.FileName, string(doc.Format), doc.Text)
		return nil
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), doc.Text)
	return err
}
