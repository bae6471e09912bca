package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/plagscan/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change plagscan settings stored in the configuration file.

Use "config keys" to list every settable key.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective settings",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	Args:  cobra.NoArgs,
	RunE:  runConfigKeys,
}

var configEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure the embedding provider",
	Long: `Configure the embedding provider used to vectorize documents.

Available providers:
  ollama  - local Ollama instance (no API key)
  openai  - OpenAI API (requires an API key)

The model defaults to the provider's standard embedding model.
The API key is prompted for when not given.`,
	Args: cobra.NoArgs,
	RunE: runConfigEmbedding,
}

var (
	embeddingProvider  string
	embeddingModel     string
	embeddingAPIKey    string
	embeddingSkipCheck bool
)

func init() {
	configEmbeddingCmd.Flags().StringVar(&embeddingProvider, "provider", "", "embedding provider (ollama, openai)")
	configEmbeddingCmd.Flags().StringVar(&embeddingModel, "model", "", "embedding model name")
	configEmbeddingCmd.Flags().StringVar(&embeddingAPIKey, "api-key", "", "API key (openai)")
	configEmbeddingCmd.Flags().BoolVar(&embeddingSkipCheck, "skip-check", false, "do not ping the provider")
	_ = configEmbeddingCmd.MarkFlagRequired("provider")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configKeysCmd)
	configCmd.AddCommand(configEmbeddingCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	s := settingsService.Get()

	cmd.Printf("Config file: %s\n\n", settingsService.Path())

	cmd.Println("[Detection]")
	cmd.Printf("  Shingle size:          %d\n", s.Detection.ShingleSize)
	cmd.Printf("  Citation shingle size: %d\n", s.Detection.CitationShingleSize)
	cmd.Printf("  Admission threshold:   %.2f\n", s.Detection.AdmissionThreshold)
	cmd.Printf("  Originality threshold: %.1f\n", s.Detection.OriginalityThreshold)
	cmd.Printf("  High similarity:       %.2f\n", s.Detection.HighSimilarity)
	cmd.Printf("  Min text length:       %d\n", s.Detection.MinTextLength)
	cmd.Println()

	cmd.Println("[Cache]")
	if s.Cache.Addr == "" {
		cmd.Println("  Backend: memory")
	} else {
		cmd.Printf("  Backend: redis (%s, db %d)\n", s.Cache.Addr, s.Cache.DB)
	}
	cmd.Printf("  Vector TTL:     %s\n", s.Cache.VectorTTL)
	cmd.Printf("  Similarity TTL: %s\n", s.Cache.SimilarityTTL)
	cmd.Println()

	cmd.Println("[Pipeline]")
	cmd.Printf("  Queue:       %s (%s)\n", s.Queue.Backend, s.Queue.Name)
	cmd.Printf("  Workers:     %d\n", s.Pipeline.Workers)
	cmd.Printf("  Max retries: %d\n", s.Pipeline.MaxRetries)
	cmd.Printf("  Retry delay: %s\n", s.Pipeline.RetryDelay)
	cmd.Println()

	cmd.Println("[Embedding]")
	if s.Embedding.Provider == "" {
		cmd.Println("  Provider: (none, text comparison only)")
	} else {
		cmd.Printf("  Provider:   %s\n", s.Embedding.Provider.Description())
		cmd.Printf("  Model:      %s\n", s.Embedding.Model)
		cmd.Printf("  Dimensions: %d\n", s.Embedding.Dimensions)
		if s.Embedding.BaseURL != "" {
			cmd.Printf("  Base URL:   %s\n", s.Embedding.BaseURL)
		}
		if s.Embedding.Provider.RequiresAPIKey() {
			if s.Embedding.APIKey != "" {
				cmd.Printf("  API Key:    %s\n", maskAPIKey(s.Embedding.APIKey))
			} else {
				cmd.Println("  API Key:    (not set)")
			}
		}
	}
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Data dir: %s\n", s.Storage.DataDir)
	cmd.Printf("  Text:     %s\n", s.Storage.TextBackend)
	cmd.Printf("  HTTP:     %s\n", s.HTTP.Addr)

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}

	cmd.Printf("Set %s\n", args[0])
	return nil
}

func runConfigKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runConfigEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	provider := domain.AIProvider(strings.ToLower(embeddingProvider))
	if !provider.IsValid() {
		return fmt.Errorf("unknown provider %q (expected ollama or openai)", embeddingProvider)
	}

	apiKey := embeddingAPIKey
	if provider.RequiresAPIKey() && apiKey == "" {
		cmd.Print("Enter API key: ")
		apiKey = readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(provider, embeddingModel, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	if !embeddingSkipCheck {
		cmd.Print("Validating configuration... ")
		if err := settingsService.ValidateEmbeddingConfig(cmd.Context()); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("embedding configuration validation failed: %w", err)
		}
		cmd.Println("OK")
	}

	cmd.Printf("Embedding provider set to %s\n", provider.Description())
	return nil
}

func readPassword() string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
