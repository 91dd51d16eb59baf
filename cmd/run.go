package main

import (
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/reflection"
)

func runCMD() *cobra.Command {
	var (
		date     string
		reflect  bool
		returns  float64
		describe string
	)

	cmd := &cobra.Command{
		Use:   "run SUBJECT",
		Short: "Run the full analysis pipeline for one ticker",
		Long: "Runs analysts, the investment debate, the trader, the risk debate and the portfolio manager,\n" +
			"then writes the final state. With --reflect the outcome is reflected on in the same process,\n" +
			"so lessons reach the in-process memory before it is discarded.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Shutdown()

			out, err := c.Services.Analysis.Run(cmd.Context(), args[0], date)
			if out != nil {
				printRun(cmd.OutOrStdout(), out)
			}
			if err != nil {
				return err
			}
			if !reflect {
				return nil
			}

			var supplied *float64
			if cmd.Flags().Changed("returns") {
				supplied = &returns
			}
			outcome := reflection.Simulate(rand.New(rand.NewSource(time.Now().UnixNano())), supplied, describe)
			bundle, err := c.Services.Reflection.Process(cmd.Context(), out.State, outcome)
			if bundle != nil {
				printBundle(cmd.OutOrStdout(), bundle)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "as-of date YYYY-MM-DD (default: two days ago)")
	cmd.Flags().BoolVar(&reflect, "reflect", false, "reflect on the decision after the run")
	cmd.Flags().Float64Var(&returns, "returns", 0, "realized return in dollars for --reflect (default: simulated)")
	cmd.Flags().StringVar(&describe, "description", "", "outcome description for --reflect (default: derived from returns)")
	return cmd
}
