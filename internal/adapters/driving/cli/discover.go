package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mcptube/internal/core/domain"
)

var discoverJSON bool

var discoverCmd = &cobra.Command{
	Use:   "discover [topic]",
	Short: "Find YouTube videos on a topic",
	Long: `Searches YouTube for a topic. When an LLM is configured the results are
filtered for relevance and grouped into themes.

Uses the YouTube Data API when youtube.api_key is set, yt-dlp otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().BoolVar(&discoverJSON, "json", false, "output clusters as JSON")
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	if discoveryService == nil {
		return errors.New("discovery service not configured")
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Searching YouTube for: %s...\n", args[0])
	result, err := discoveryService.Discover(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("discover failed: %w", err)
	}

	if discoverJSON {
		return outputJSON(cmd, result)
	}

	out := cmd.OutOrStdout()
	if len(result.Clusters) == 0 {
		fmt.Fprintln(out, "No relevant videos found.")
		return nil
	}

	fmt.Fprintf(out, "Found %d results, kept %d:\n\n", result.Found, result.Total())
	for _, cluster := range result.Clusters {
		fmt.Fprintf(out, "  %s\n", cluster.Name)
		for _, v := range cluster.Videos {
			fmt.Fprintf(out, "    - %s (%s, %s)\n", v.Title, v.Channel, domain.FormatTimestamp(v.Duration))
			fmt.Fprintf(out, "      %s\n", v.URL)
		}
		fmt.Fprintln(out)
	}
	return nil
}
