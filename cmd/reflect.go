package main

import (
	"math/rand"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/reflection"
	analysissvc "github.com/tejpal123456789/trading-agnetic-workflow/internal/services/analysis"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
)

func reflectCMD() *cobra.Command {
	var (
		statePath string
		returns   float64
		describe  string
		seed      int64
	)

	cmd := &cobra.Command{
		Use:   "reflect",
		Short: "Reflect on a saved final state and store the lessons in long-term memory",
		Long: "Loads a final_state.json, labels the decision, evaluates it against the realized return and\n" +
			"stores one lesson per role. Without --returns a return in [-1000, 2000) is simulated.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Shutdown()

			if statePath == "" {
				statePath = filepath.Join(c.Config.Output.Dir, c.Config.Output.FinalStateFile)
			}
			state, err := analysissvc.LoadState(statePath)
			if err != nil {
				return errors.Wrapf(err, "load %s", statePath)
			}

			var supplied *float64
			if cmd.Flags().Changed("returns") {
				supplied = &returns
			}
			if !cmd.Flags().Changed("seed") {
				seed = time.Now().UnixNano()
			}
			outcome := reflection.Simulate(rand.New(rand.NewSource(seed)), supplied, describe)

			bundle, err := c.Services.Reflection.Process(cmd.Context(), state, outcome)
			if bundle != nil {
				printBundle(cmd.OutOrStdout(), bundle)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&statePath, "state", "", "final state file (default: OUTPUT_DIR/OUTPUT_FINAL_STATE_FILE)")
	cmd.Flags().Float64Var(&returns, "returns", 0, "realized return in dollars (default: simulated)")
	cmd.Flags().StringVar(&describe, "description", "", "outcome description (default: derived from returns)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "seed of the simulated return")
	return cmd
}
