package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"curator/internal/client"
	"curator/internal/models"

	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the curation_pool table and its indexes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := getContext()
		defer cancel()

		msg, err := apiClient.Setup(ctx)
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show record counts per status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := getContext()
		defer cancel()

		report, err := apiClient.Status(ctx)
		if err != nil {
			return err
		}

		if report.Status != "ok" {
			fmt.Printf("%s: %s\n", report.Status, report.Message)
			return nil
		}

		fmt.Printf("Total: %d\n", report.TotalCount)
		for _, entry := range report.StatusBreakdown {
			fmt.Printf("  %-12s %d\n", entry.Status, entry.Count)
		}
		return nil
	},
}

var (
	listStatus string
	listSearch string
	listLimit  int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List images, newest first",
	Long: `List images filtered by status and filename.

Use --status all to list every status. --search matches a case-sensitive
substring of the filename.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := getContext()
		defer cancel()

		opts := client.ListOptions{Status: listStatus, Search: listSearch}
		if cmd.Flags().Changed("limit") {
			opts.Limit = &listLimit
		}

		images, err := apiClient.List(ctx, opts)
		if err != nil {
			return err
		}

		if len(images) == 0 {
			fmt.Println("No images found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tFILENAME")
		for _, img := range images {
			fmt.Fprintf(w, "%d\t%s\t%s\n", img.ID, img.Status, img.Filename)
		}
		return w.Flush()
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload <file.json>",
	Short: "Bulk-upload a JSON array of items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		document, err := readJSONFile(args[0])
		if err != nil {
			return err
		}

		ctx, cancel := getContext()
		defer cancel()

		msg, err := apiClient.Upload(ctx, document)
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil
	},
}

var setStatusCmd = &cobra.Command{
	Use:       "set-status <id> <unverified|approved|rejected>",
	Short:     "Change an image's status",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{string(models.StatusUnverified), string(models.StatusApproved), string(models.StatusRejected)},
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		status := models.Status(args[1])
		if !status.Valid() {
			return fmt.Errorf("invalid status %q", args[1])
		}

		ctx, cancel := getContext()
		defer cancel()

		msg, err := apiClient.UpdateStatus(ctx, id, status)
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id> <data.json>",
	Short: "Replace an image's data with the JSON object in a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		document, err := readJSONFile(args[1])
		if err != nil {
			return err
		}

		ctx, cancel := getContext()
		defer cancel()

		msg, err := apiClient.UpdateData(ctx, id, json.RawMessage(document))
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", string(models.StatusUnverified), "status to show, or \"all\"")
	listCmd.Flags().StringVar(&listSearch, "search", "", "filename substring")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "maximum number of images")
}

func readJSONFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%s is not a valid JSON file", path)
	}
	return data, nil
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid image id %q", s)
	}
	return uint(id), nil
}
