package main

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"expertstats/internal/config"
	"expertstats/internal/logging"
	"expertstats/internal/report"
	"expertstats/internal/store"
	"expertstats/internal/viewcache"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize stored tasks and earnings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				cache := viewcache.NewCache(cfg.ViewCachePath(), logging.NewNop())
				summary, cached, err := report.NewBuilder(st, cache).Summary(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, summary)
				}

				out := cmd.OutOrStdout()
				rows := [][]string{
					{"Tasks", strconv.Itoa(summary.Tasks)},
				}
				for _, flag := range store.Flags {
					rows = append(rows, []string{"  " + label(string(flag)), strconv.Itoa(summary.FlagCounts[string(flag)])})
				}
				rows = append(rows,
					[]string{"Win rate", summary.WinRate().Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"},
					[]string{"Transactions", strconv.Itoa(summary.Transactions)},
					[]string{"Clients", strconv.Itoa(summary.Clients)},
					[]string{"Credit revenue", summary.CreditRevenue.StringFixed(2)},
					[]string{"Credit fee", summary.CreditFee.StringFixed(2)},
					[]string{"Credit user", summary.CreditUser.StringFixed(2)},
					[]string{"Debit cost", summary.DebitCost.StringFixed(2)},
					[]string{"Debit user", summary.DebitUser.StringFixed(2)},
					[]string{"Average task size", summary.AverageTaskSize.StringFixed(2)},
					[]string{"Balance", summary.Balance.StringFixed(2)},
					[]string{"Revenue", summary.Revenue.StringFixed(2)},
				)
				fmt.Fprintln(out, renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))

				lastSync := summary.LastSyncCompleted
				if lastSync == "" {
					lastSync = "never"
				}
				source := "computed"
				if cached {
					source = "cached"
				}
				fmt.Fprintf(out, "Last sync: %s (%s)\n", lastSync, source)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
