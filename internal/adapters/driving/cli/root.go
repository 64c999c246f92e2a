package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mcptube/internal/core/ports/driving"
	"github.com/custodia-labs/mcptube/internal/logger"
)

// version is set by the composition root from build flags.
var version = "dev"

var verbose bool

// Services wired in by the composition root. Commands check for nil.
var (
	libraryService   driving.LibraryService
	searchService    driving.SearchService
	frameService     driving.FrameService
	reportService    driving.ReportService
	discoveryService driving.DiscoveryService
	settingsService  driving.SettingsService
)

var errLibraryNotConfigured = errors.New("library service not configured")

// Services bundles the driving ports the commands use.
type Services struct {
	Library   driving.LibraryService
	Search    driving.SearchService
	Frame     driving.FrameService
	Report    driving.ReportService
	Discovery driving.DiscoveryService
	Settings  driving.SettingsService
}

// SetServices installs the services used by every command.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	libraryService = s.Library
	searchService = s.Search
	frameService = s.Frame
	reportService = s.Report
	discoveryService = s.Discovery
	settingsService = s.Settings
}

// SetVersion sets the version reported by the version command. Empty is ignored.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var rootCmd = &cobra.Command{
	Use:   "mcptube",
	Short: "Turn YouTube videos into a searchable library for AI assistants",
	Long: `mcptube ingests YouTube videos into a local library of transcripts,
chapters and tags, indexes every transcript segment for semantic search,
and exposes the library over the Model Context Protocol.

Videos can be referenced by ID, by their position in 'mcptube list'
or by any unique part of the title or channel name.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline diagnostics to stderr")
}

// Execute runs the root command. Cancelling ctx aborts long-running commands.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
