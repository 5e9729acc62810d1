package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check connectivity and credentials",
	RunE:  runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
}

func runPing(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	result, err := client.Ping(cmd.Context())
	if err != nil {
		return err
	}

	return writeOutput(cmd.OutOrStdout(), result, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ENDPOINT\tVERSION\tAUTHENTICATED\tTYPE\tUSER")
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\t%s\n",
			client.Endpoint(), result.Version, result.Authenticated,
			result.AuthenticationType, result.AuthenticatedUserName)
	})
}
