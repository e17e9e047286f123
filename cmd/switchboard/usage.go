package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func usageCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show recorded token usage and spend per model",
		RunE: func(cmd *cobra.Command, args []string) error {
			sw, err := newSwitchboard()
			if err != nil {
				return err
			}
			defer sw.Close()

			if sw.Ledger == nil {
				return fmt.Errorf("usage ledger is not open")
			}

			rows, err := sw.Ledger.ByModel(cmd.Context())
			if err != nil {
				return err
			}
			totals, err := sw.Ledger.Totals(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOut {
				return printJSON(map[string]any{"models": rows, "totals": totals})
			}

			if len(rows) == 0 {
				fmt.Println("no usage recorded yet")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tMODEL\tCALLS\tINPUT\tOUTPUT\tCOST")
			for _, row := range rows {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t$%.4f\n",
					row.ProviderID, row.ModelID, row.Calls, row.InputTokens, row.OutputTokens, row.Cost)
			}
			fmt.Fprintf(w, "total\t\t%d\t%d\t%d\t$%.4f\n",
				totals.Calls, totals.InputTokens, totals.OutputTokens, totals.Cost)
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "print usage as JSON")
	return cmd
}
