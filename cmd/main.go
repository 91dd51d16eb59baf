package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/bootstrap"
)

func main() {
	if err := rootCMD().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCMD() *cobra.Command {
	root := &cobra.Command{
		Use:          "trading-agents",
		Short:        "Multi-agent debate pipeline producing simulated equity trading decisions",
		Version:      bootstrap.Version,
		SilenceUsage: true,
	}
	root.AddCommand(runCMD(), reflectCMD(), serveCMD(), toolsCMD())
	return root
}

// containerOptions are applied to every container the commands build.
var containerOptions []bootstrap.Option

// newContainer builds every dependency the commands need.
func newContainer() (*bootstrap.Container, error) {
	c := bootstrap.NewContainer(containerOptions...)
	if err := c.Init(); err != nil {
		c.Shutdown()
		return nil, err
	}
	return c, nil
}
