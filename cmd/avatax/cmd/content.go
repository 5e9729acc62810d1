package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Print the tax content for the bound location",
	Long: `Print the point-of-sale tax content for --location-id.

The cached snapshot in --content-dir is used when present; otherwise the
content is fetched from the service without being saved.

Examples:
  avatax content --content-dir ./cache --location-id 12345
  avatax content --content-dir ./cache --location-id 12345 -f yaml`,
	RunE: runContent,
}

func init() {
	rootCmd.AddCommand(contentCmd)
}

func runContent(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	content, err := client.TaxContent(cmd.Context())
	if err != nil {
		return err
	}

	var doc interface{}
	if err := json.Unmarshal(content, &doc); err != nil {
		return fmt.Errorf("tax content is not valid JSON: %w", err)
	}
	return writeOutput(cmd.OutOrStdout(), doc, nil)
}
