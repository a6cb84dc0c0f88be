package main

import (
	"github.com/spf13/cobra"

	"github.com/oceanair/partner-report/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the report HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(ctx)
		},
	}
}

func runServe(ctx *commandContext) error {
	cfg, generator, err := ctx.ensureGenerator()
	if err != nil {
		return err
	}
	return server.New(*cfg, generator).Run()
}
