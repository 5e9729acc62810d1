package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	dec "github.com/han8909227/avatax-go/internal/decimal"
	"github.com/han8909227/avatax-go/pkg/avatax"
)

var ratesAmount string

var ratesCmd = &cobra.Command{
	Use:   "rates [zip...]",
	Short: "Look up sales tax rates by ZIP code",
	Long: `Look up rates for one or more ZIP codes.

Rates come from the ZIP rate cache when --zip-dir holds a snapshot; otherwise
each ZIP code is looked up on the service. With --amount the tax on that
amount is estimated as well.

Examples:
  avatax rates 98101 --zip-dir ./cache
  avatax rates 98101 10001 --amount 19.99 -f table`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRates,
}

func init() {
	rootCmd.AddCommand(ratesCmd)

	ratesCmd.Flags().StringVar(&ratesAmount, "amount", "", "Estimate tax on this amount")
}

func runRates(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if ratesAmount != "" {
		amount, err := dec.FromString(ratesAmount)
		if err != nil {
			return &avatax.ArgumentError{Field: "amount", Value: ratesAmount, Message: "not a decimal number"}
		}

		estimates := make([]*avatax.Estimate, 0, len(args))
		for _, zip := range args {
			estimate, err := client.EstimateSalesTax(ctx, zip, amount)
			if err != nil {
				return err
			}
			estimates = append(estimates, estimate)
		}

		return writeOutput(cmd.OutOrStdout(), estimates, func(tw *tabwriter.Writer) {
			fmt.Fprintln(tw, "ZIP\tAMOUNT\tRATE\tTAX\tTOTAL\tSOURCE")
			for _, e := range estimates {
				fmt.Fprintf(tw, "%s\t%s\t%s%%\t%s\t%s\t%s\n",
					e.ZipCode, e.Amount.StringFixed(2), dec.Percent(e.Rate).String(),
					e.Tax.StringFixed(2), e.Total.StringFixed(2), e.Source)
			}
		})
	}

	rates := make([]*avatax.Rate, 0, len(args))
	for _, zip := range args {
		rate, err := client.ZipRate(ctx, zip)
		if err != nil {
			return err
		}
		rates = append(rates, rate)
	}

	return writeOutput(cmd.OutOrStdout(), rates, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ZIP\tSTATE\tCOUNTY\tCITY\tSALES\tUSE\tSOURCE")
		for _, r := range rates {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s%%\t%s%%\t%s\n",
				r.ZipCode, r.State, r.County, r.City,
				dec.Percent(r.TotalSales).String(), dec.Percent(r.TotalUse).String(), r.Source)
		}
	})
}
