package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/mcptube/internal/core/domain"
)

var addCmd = &cobra.Command{
	Use:   "add [url]",
	Short: "Add a YouTube video to the library",
	Long: `Extracts metadata, chapters and the English transcript of a video,
stores it in the library and indexes every transcript segment.

Accepts any YouTube URL form (watch, youtu.be, shorts, embed) or a bare
11-character video ID.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List videos in the library",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

var infoCmd = &cobra.Command{
	Use:   "info [video]",
	Short: "Show details for a video",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

var removeCmd = &cobra.Command{
	Use:     "remove [video]",
	Aliases: []string{"rm"},
	Short:   "Remove a video from the library",
	Args:    cobra.ExactArgs(1),
	RunE:    runRemove,
}

var classifyCmd = &cobra.Command{
	Use:   "classify [video]",
	Short: "Generate tags for a video with the configured LLM",
	Long:  `Replaces the tags of a video with freshly generated ones. Requires an LLM provider.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runClassify,
}

func init() {
	rootCmd.AddCommand(addCmd, listCmd, infoCmd, removeCmd, classifyCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errLibraryNotConfigured
	}

	video, err := libraryService.Add(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("add failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Added: %s\n", video.Title)
	fmt.Fprintf(out, "  ID:       %s\n", video.ID)
	fmt.Fprintf(out, "  Channel:  %s\n", video.Channel)
	fmt.Fprintf(out, "  Duration: %s\n", domain.FormatTimestamp(video.Duration))
	fmt.Fprintf(out, "  Segments: %d\n", len(video.Transcript))
	if len(video.Tags) > 0 {
		fmt.Fprintf(out, "  Tags:     %s\n", strings.Join(video.Tags, ", "))
	}
	if !video.HasTranscript() {
		fmt.Fprintln(out, "  No English transcript was found; the video is not searchable.")
	}
	return nil
}

func runList(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errLibraryNotConfigured
	}

	videos, err := libraryService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(videos) == 0 {
		fmt.Fprintln(out, "Library is empty. Use 'mcptube add <url>' to add a video.")
		return nil
	}

	rows := make([][]string, 0, len(videos))
	for i := range videos {
		v := &videos[i]
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			v.ID,
			domain.FormatTimestamp(v.Duration),
			v.Channel,
			v.Title,
			strings.Join(v.Tags, ", "),
			humanize.Time(v.AddedAt),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "ID", "Length", "Channel", "Title", "Tags", "Added"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight},
	))
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errLibraryNotConfigured
	}

	video, err := libraryService.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	tags := strings.Join(video.Tags, ", ")
	if tags == "" {
		tags = "(none)"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Title:     %s\n", video.Title)
	fmt.Fprintf(out, "ID:        %s\n", video.ID)
	fmt.Fprintf(out, "Channel:   %s\n", video.Channel)
	fmt.Fprintf(out, "Duration:  %s\n", domain.FormatTimestamp(video.Duration))
	fmt.Fprintf(out, "URL:       %s\n", video.URL())
	if video.ThumbnailURL != "" {
		fmt.Fprintf(out, "Thumbnail: %s\n", video.ThumbnailURL)
	}
	fmt.Fprintf(out, "Tags:      %s\n", tags)
	fmt.Fprintf(out, "Segments:  %d\n", len(video.Transcript))
	fmt.Fprintf(out, "Added:     %s (%s)\n",
		video.AddedAt.Format("2006-01-02 15:04 MST"), humanize.Time(video.AddedAt))

	if len(video.Chapters) > 0 {
		fmt.Fprintf(out, "\nChapters:\n")
		for _, ch := range video.Chapters {
			fmt.Fprintf(out, "  [%s] %s\n", domain.FormatTimestamp(ch.Start), ch.Title)
		}
	}
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errLibraryNotConfigured
	}

	video, err := libraryService.Remove(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed: %s (%s)\n", video.Title, video.ID)
	return nil
}

func runClassify(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errLibraryNotConfigured
	}

	video, err := libraryService.Classify(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("classify failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Tags for: %s\n", video.Title)
	fmt.Fprintf(out, "  %s\n", strings.Join(video.Tags, ", "))
	return nil
}
