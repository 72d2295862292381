package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"curator/internal/client"
	"curator/internal/config"

	"github.com/spf13/cobra"
)

var (
	cfg       *config.Config
	apiClient *client.Client

	baseURL string
	token   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "curator",
	Short: "Manage the image curation pool of a running curator API",
	Long: `curator talks to the curation API over HTTP.

It can create the schema, report pool status, list and filter images,
change an image's status or data, and bulk-upload a JSON array of items.`,
	SilenceUsage:      true,
	PersistentPreRunE: initializeClient,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "", "curator API base URL (default from CURATOR_URL)")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "bearer token (default from CURATOR_TOKEN)")

	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(setStatusCmd)
	rootCmd.AddCommand(editCmd)
}

func initializeClient(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if baseURL == "" {
		baseURL = cfg.CuratorURL
	}
	if token == "" {
		token = cfg.CuratorToken
	}

	apiClient = client.New(baseURL, token)
	return nil
}

func getContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
