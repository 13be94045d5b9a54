package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the landscape as JSON lines",
		Long: `Writes the whole landscape (meta, entities, relationships and the
full event log) as one JSON object per line, events in log order.

Examples:
  land export > backup.jsonl
  land export --output backup.jsonl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")

	return cmd
}

func runExport(cmd *cobra.Command, output string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		w := os.Stdout
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			defer f.Close()
			w = f
		}

		if err := d.Snapshot.HandleExport(ctx, w); err != nil {
			return fmt.Errorf("exporting landscape: %w", err)
		}
		if output != "" {
			fmt.Printf("Exported landscape to %s.\n", output)
		}
		return nil
	})
}

func newImportCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a landscape from JSON lines",
		Long: `Loads an exported landscape into an empty one. Events are replayed in
their exported order so ids, and with them the timeline, are preserved.

Examples:
  land import < backup.jsonl
  land import --input backup.jsonl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, input)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Read from file instead of stdin")

	return cmd
}

func runImport(cmd *cobra.Command, input string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		r := os.Stdin
		if input != "" {
			f, err := os.Open(input)
			if err != nil {
				return fmt.Errorf("opening %s: %w", input, err)
			}
			defer f.Close()
			r = f
		}

		snap, err := d.Snapshot.HandleImport(ctx, r)
		if err != nil {
			return fmt.Errorf("importing landscape: %w", err)
		}

		fmt.Printf("Imported landscape %q: %d entities, %d relationships, %d events.\n",
			snap.Meta.Name, len(snap.Entities), len(snap.Relationships), len(snap.Events))
		return nil
	})
}
