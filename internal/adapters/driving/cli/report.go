package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mcptube/internal/core/domain"
)

var (
	reportFocus  string
	reportFormat string
	reportOutput string
	reportTags   []string
	reportVideos []string
)

var reportCmd = &cobra.Command{
	Use:   "report [video]",
	Short: "Write an illustrated report about one video",
	Long: `Asks the configured LLM for a structured report about a video and renders
it as markdown or HTML. Frames suggested by the model are captured and
embedded when yt-dlp and ffmpeg are available.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

var reportQueryCmd = &cobra.Command{
	Use:   "report-query [topic]",
	Short: "Write a report across the videos matching a topic",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportQuery,
}

var synthesizeCmd = &cobra.Command{
	Use:   "synthesize [topic]",
	Short: "Cross-reference themes across several videos",
	Long: `Writes one report comparing the given videos on a topic.

Example:
  mcptube synthesize "error handling" -V dQw4w9WgXcQ -V 2 -V "go talk"`,
	Args: cobra.ExactArgs(1),
	RunE: runSynthesize,
}

func init() {
	for _, c := range []*cobra.Command{reportCmd, reportQueryCmd, synthesizeCmd} {
		c.Flags().StringVar(&reportFormat, "format", string(domain.ReportFormatMarkdown), "output format: markdown or html")
		c.Flags().StringVarP(&reportOutput, "output", "o", "", "write the report to a file")
	}
	reportCmd.Flags().StringVarP(&reportFocus, "focus", "f", "", "angle the report should concentrate on")
	reportQueryCmd.Flags().StringVarP(&reportFocus, "focus", "f", "", "angle the report should concentrate on")
	reportQueryCmd.Flags().StringSliceVarP(&reportTags, "tag", "t", nil, "keep only videos with this tag (repeatable)")
	synthesizeCmd.Flags().StringArrayVarP(&reportVideos, "video", "V", nil, "video to include (repeatable)")
	_ = synthesizeCmd.MarkFlagRequired("video")

	rootCmd.AddCommand(reportCmd, reportQueryCmd, synthesizeCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	format, err := reportPreflight()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Generating report for: %s...\n", args[0])
	report, err := reportService.Generate(cmd.Context(), args[0], reportFocus)
	if err != nil {
		return fmt.Errorf("report failed: %w", err)
	}
	return emitReport(cmd, report, format)
}

func runReportQuery(cmd *cobra.Command, args []string) error {
	format, err := reportPreflight()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Generating cross-video report for: %s...\n", args[0])
	report, err := reportService.GenerateFromQuery(cmd.Context(), args[0], reportTags, reportFocus)
	if err != nil {
		return fmt.Errorf("report failed: %w", err)
	}
	return emitReport(cmd, report, format)
}

func runSynthesize(cmd *cobra.Command, args []string) error {
	format, err := reportPreflight()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Synthesizing %d videos on: %s...\n", len(reportVideos), args[0])
	report, err := reportService.Synthesize(cmd.Context(), reportVideos, args[0])
	if err != nil {
		return fmt.Errorf("synthesis failed: %w", err)
	}
	return emitReport(cmd, report, format)
}

func reportPreflight() (domain.ReportFormat, error) {
	if reportService == nil {
		return "", errors.New("report service not configured")
	}
	format := domain.ReportFormat(reportFormat)
	if !format.IsValid() {
		return "", fmt.Errorf("invalid format %q: use markdown or html", reportFormat)
	}
	return format, nil
}

func emitReport(cmd *cobra.Command, report *domain.Report, format domain.ReportFormat) error {
	rendered, err := reportService.Render(cmd.Context(), report, format)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	if reportOutput == "" {
		fmt.Fprintln(cmd.OutOrStdout(), rendered)
		return nil
	}

	if err := os.WriteFile(reportOutput, []byte(rendered), 0o600); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report saved: %s\n", reportOutput)
	return nil
}
