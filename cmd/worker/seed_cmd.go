package main

import (
	"github.com/spf13/cobra"

	"github.com/vantagecrm/vantage/modules"
	"github.com/vantagecrm/vantage/pkg/commands"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Apply migrations and seed the default tenant with an admin user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return commands.SeedDatabase(modules.BuiltInModules...)
		},
	}
}
