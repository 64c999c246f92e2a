package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mcptube/internal/core/domain"
)

var (
	searchVideo string
	searchTags  []string
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search video transcripts",
	Long: `Performs semantic search across the transcripts of every library video.
Results are ranked by distance, closest first.

Use --video to search a single video and --tag to keep only videos
carrying one of the given tags.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchVideo, "video", "V", "", "search a single video (ID, list position or title)")
	searchCmd.Flags().StringSliceVarP(&searchTags, "tag", "t", nil, "keep only videos with this tag (repeatable)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultSearchLimit, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	hits, err := searchService.Search(cmd.Context(), args[0], domain.SearchRequest{
		Video: searchVideo,
		Tags:  searchTags,
		Limit: searchLimit,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputJSON(cmd, hits)
	}
	return outputSearchHits(cmd, hits)
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func outputSearchHits(cmd *cobra.Command, hits []domain.SearchHit) error {
	out := cmd.OutOrStdout()
	if len(hits) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}

	for i := range hits {
		h := &hits[i]
		label := h.VideoID
		if h.Title != "" {
			label = h.Title
		}
		fmt.Fprintf(out, "  %d. [%s] (%s) %s\n", i+1, domain.FormatTimestamp(h.Start), label, strings.TrimSpace(h.Text))
	}
	return nil
}
