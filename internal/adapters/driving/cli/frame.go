package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mcptube/internal/core/domain"
)

var frameCmd = &cobra.Command{
	Use:   "frame [video] [seconds]",
	Short: "Capture a still frame at a timestamp",
	Long: `Captures the frame shown at the given offset in seconds and prints the
path of the cached JPEG. Requires yt-dlp and ffmpeg on PATH.`,
	Args: cobra.ExactArgs(2),
	RunE: runFrame,
}

var frameQueryCmd = &cobra.Command{
	Use:   "frame-query [video] [description]",
	Short: "Capture the frame where the transcript best matches a description",
	Args:  cobra.ExactArgs(2),
	RunE:  runFrameQuery,
}

func init() {
	rootCmd.AddCommand(frameCmd, frameQueryCmd)
}

func runFrame(cmd *cobra.Command, args []string) error {
	if frameService == nil {
		return errors.New("frame service not configured")
	}

	ts, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: must be seconds", args[1])
	}

	path, err := frameService.Frame(cmd.Context(), args[0], ts)
	if err != nil {
		return fmt.Errorf("frame capture failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Frame extracted: %s\n", path)
	return nil
}

func runFrameQuery(cmd *cobra.Command, args []string) error {
	if frameService == nil {
		return errors.New("frame service not configured")
	}

	match, err := frameService.FrameByQuery(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("frame capture failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Frame extracted: %s\n", match.Path)
	fmt.Fprintf(out, "  Timestamp: [%s]\n", domain.FormatTimestamp(match.Hit.Start))
	fmt.Fprintf(out, "  Matched:   %s\n", match.Hit.Text)
	return nil
}
