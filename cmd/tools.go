package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/config"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/tools"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/tools/toolkit"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/logger"
)

func toolsCMD() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the analyst tool catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := loadCatalog()
			if err != nil {
				return err
			}
			printCatalog(cmd.OutOrStdout(), catalog)
			return nil
		},
	}
	cmd.AddCommand(toolsCallCMD())
	return cmd
}

func toolsCallCMD() *cobra.Command {
	return &cobra.Command{
		Use:     "call NAME [ARGS_JSON]",
		Short:   "Invoke one tool the way an analyst would and print its result",
		Example: `  trading-agents tools call get_yfinance_data '{"symbol":"AAPL","start_date":"2024-01-01","end_date":"2024-01-10"}'`,
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog()
			if err != nil {
				return err
			}
			callArgs := tools.Args{}
			if len(args) == 2 {
				raw := map[string]interface{}{}
				if err := json.Unmarshal([]byte(args[1]), &raw); err != nil {
					return errors.Wrapf(errors.ErrInvalidInput, "tool arguments must be a JSON object: %v", err)
				}
				for k, v := range raw {
					callArgs[k] = fmt.Sprint(v)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), catalog.Invoke(cmd.Context(), args[0], callArgs))
			return nil
		},
	}
}

// loadCatalog needs configuration only, so listing tools works without model credentials.
func loadCatalog() (tools.Catalog, error) {
	cfg, err := config.Load()
	if err != nil {
		return tools.Catalog{}, err
	}
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		return tools.Catalog{}, err
	}
	return toolkit.Build(cfg.Tools, cfg.Timeouts.ToolCall)
}

func paramList(t tools.Tool) string {
	names := make([]string, 0, len(t.Params()))
	for _, p := range t.Params() {
		name := p.Name
		if !p.Required {
			name += "?"
		}
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}
