package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seralba/landscape/internal/infrastructure/config"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init <owner-name> <landscape-name>",
		Short: "Initialize a new landscape in the current directory",
		Long: `Creates the .landscape directory with a default config, then bootstraps
the landscape with its owner and root entity.

The owner is you: the person recording events from here on. The root
entity anchors the landscape and is exempt from health evaluation.

Examples:
  land init "Ada" "Ada's world"`,
		Args: cobra.ExactArgs(2),
		RunE: runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	ownerName, landscapeName := args[0], args[1]

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	if !config.Exists(cwd) {
		if err := config.WriteDefault(cwd); err != nil {
			return fmt.Errorf("writing default config: %w", err)
		}
		fmt.Printf("Created %s\n", config.ConfigFilePath(cwd))
	}

	ctx := cmd.Context()
	return withDeps(func(d *Deps) error {
		result, err := d.Init.HandleInit(ctx, ownerName, landscapeName)
		if err != nil {
			return fmt.Errorf("initializing landscape: %w", err)
		}

		fmt.Printf("Landscape %q initialized.\n", landscapeName)
		fmt.Printf("  owner: %s (%s)\n", result.Owner.Name, result.Owner.ID)
		fmt.Printf("  root:  %s (%s)\n", result.Root.Name, result.Root.ID)
		return nil
	})
}
