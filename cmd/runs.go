package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/yumyai/genemerge/pkg/db"
)

var runsLimit int

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "number of runs to show")
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List merge runs recorded in the ledger",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Ledger == "" {
			return fmt.Errorf("no ledger configured (--ledger)")
		}
		ledger, err := db.OpenLedger(cfg.Ledger)
		if err != nil {
			return err
		}
		defer ledger.Close()

		runs, err := ledger.List(cmd.Context(), runsLimit)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "RUN\tSTATUS\tSTARTED\tRECORDS\tX_PDB\tX_3DM\tDATASET")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
				r.ID, r.Status, r.StartedAt.Format(time.DateTime),
				r.Summary.Records, r.Summary.WithPDB, r.Summary.With3DM, r.Inputs.Dataset)
		}
		return tw.Flush()
	},
}
