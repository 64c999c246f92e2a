package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/mcptube/internal/core/domain"
)

var errSettingsNotConfigured = errors.New("settings service not configured")

var configPing bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change settings",
	Long: `View and change mcptube settings.

Settings are stored in a TOML file (see 'mcptube config path'). Environment
variables override the file: MCPTUBE_<KEY> with dots replaced by underscores,
plus ANTHROPIC_API_KEY, OPENAI_API_KEY and GOOGLE_API_KEY for the LLM.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective settings",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a setting",
	Long: `Store one setting in the config file.

API keys may be omitted from the command line; you will be prompted for them
without echo.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConfigSet,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	Args:  cobra.NoArgs,
	RunE:  runConfigKeys,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

func init() {
	configValidateCmd.Flags().BoolVar(&configPing, "ping", false, "also contact the configured AI providers")
	configCmd.AddCommand(configShowCmd, configSetCmd, configKeysCmd, configPathCmd, configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Current Settings")
	fmt.Fprintln(out, "================")
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Config file: %s\n", settingsService.Path())
	fmt.Fprintf(out, "Data dir:    %s\n\n", settings.DataDir)

	fmt.Fprintln(out, "[Server]")
	fmt.Fprintf(out, "  Address: %s:%d\n\n", settings.Server.Host, settings.Server.Port)

	fmt.Fprintln(out, "[Storage]")
	fmt.Fprintf(out, "  Backend: %s\n", settings.Storage.Backend)
	if settings.Storage.PostgresURL != "" {
		fmt.Fprintf(out, "  Postgres: %s\n", maskURL(settings.Storage.PostgresURL))
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "[Index]")
	fmt.Fprintf(out, "  Backend: %s\n", settings.Index.Backend)
	if settings.Index.Backend == domain.IndexMilvus {
		fmt.Fprintf(out, "  Milvus: %s (%s)\n", settings.Index.MilvusAddr, settings.Index.MilvusCollection)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "[Embedding]")
	fmt.Fprintf(out, "  Provider: %s\n", settings.Embedding.Provider.Description())
	fmt.Fprintf(out, "  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.Provider == domain.AIProviderOllama {
		fmt.Fprintf(out, "  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		fmt.Fprintf(out, "  API Key: %s\n", describeKey(settings.Embedding.APIKey))
	}
	fmt.Fprintf(out, "  Status: %s\n\n", configuredStatus(settings.Embedding.IsConfigured()))

	fmt.Fprintln(out, "[LLM]")
	if settings.LLM.Provider == "" {
		fmt.Fprintln(out, "  Provider: (none)")
	} else {
		fmt.Fprintf(out, "  Provider: %s\n", settings.LLM.Provider.Description())
		fmt.Fprintf(out, "  Model: %s\n", settings.LLM.Model)
		if settings.LLM.Provider.IsLocal() {
			fmt.Fprintf(out, "  Base URL: %s\n", settings.LLM.BaseURL)
		}
		if settings.LLM.Provider.RequiresAPIKey() {
			fmt.Fprintf(out, "  API Key: %s\n", describeKey(settings.LLM.APIKey))
		}
	}
	fmt.Fprintf(out, "  Status: %s\n\n", configuredStatus(settings.LLM.IsConfigured()))

	fmt.Fprintln(out, "[YouTube]")
	fmt.Fprintf(out, "  API Key: %s\n", describeKey(settings.YouTube.APIKey))
	fmt.Fprintf(out, "  yt-dlp: %s\n", settings.YouTube.YtDlpPath)
	fmt.Fprintf(out, "  ffmpeg: %s\n", settings.YouTube.FFmpegPath)
	fmt.Fprintf(out, "  Extract timeout: %ds\n\n", settings.YouTube.ExtractTimeoutSeconds)

	if err := settingsService.Validate(); err != nil {
		fmt.Fprintf(out, "Warning: %v\n", err)
		fmt.Fprintln(out, "Run 'mcptube config set <key> <value>' to fix configuration issues.")
	} else {
		fmt.Fprintln(out, "Configuration is valid.")
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	key := args[0]
	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		if !isSecretKey(key) {
			return fmt.Errorf("%w: missing value for %s", domain.ErrInvalidInput, key)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Enter %s: ", key)
		value = readPassword(cmd.InOrStdin())
		fmt.Fprintln(cmd.ErrOrStderr())
		if value == "" {
			return fmt.Errorf("%w: %s cannot be empty", domain.ErrInvalidInput, key)
		}
	}

	if err := settingsService.Set(key, value); err != nil {
		return err
	}

	shown := value
	if isSecretKey(key) {
		shown = maskAPIKey(value)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, shown)
	return nil
}

func runConfigKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	for _, k := range settingsService.Keys() {
		fmt.Fprintln(cmd.OutOrStdout(), k)
	}
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	fmt.Fprintln(cmd.OutOrStdout(), settingsService.Path())
	return nil
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	if err := settingsService.Validate(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if configPing {
		fmt.Fprint(out, "Embedding provider... ")
		if err := settingsService.ValidateEmbeddingConfig(); err != nil {
			fmt.Fprintln(out, "FAILED")
			return fmt.Errorf("embedding configuration validation failed: %w", err)
		}
		fmt.Fprintln(out, "OK")

		fmt.Fprint(out, "LLM provider... ")
		if err := settingsService.ValidateLLMConfig(); err != nil {
			fmt.Fprintln(out, "FAILED")
			return fmt.Errorf("LLM configuration validation failed: %w", err)
		}
		fmt.Fprintln(out, "OK")
	}

	fmt.Fprintln(out, "Configuration is valid.")
	return nil
}

// Helper functions.

func isSecretKey(key string) bool {
	return strings.HasSuffix(key, "api_key") || strings.HasSuffix(key, "postgres_url")
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func describeKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

// maskURL hides the password of a connection URL.
func maskURL(raw string) string {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return maskAPIKey(raw)
	}
	creds, host, ok := strings.Cut(rest, "@")
	if !ok {
		return raw
	}
	user, _, hasPass := strings.Cut(creds, ":")
	if !hasPass {
		return raw
	}
	return scheme + "://" + user + ":****@" + host
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(in io.Reader) string {
	// Try to read without echo
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	// Fallback to regular input
	line, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimSpace(line)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
