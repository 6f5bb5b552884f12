package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pluqqy/itemgrid/internal/cli"
	"github.com/pluqqy/itemgrid/pkg/source"
)

var seedCount int

// NewSeedCommand creates the seed command
func NewSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the local library with demo items",
		Long: `Insert generated demo items into the local SQLite library.

Keys are stable, so seeding again replaces the same items.

Examples:
  # Seed 500 items
  itemgrid seed

  # Seed a large library
  itemgrid seed --count 100000`,
		Args:    cobra.NoArgs,
		PreRunE: requireProject,
		RunE:    runSeed,
	}

	cmd.Flags().IntVarP(&seedCount, "count", "n", 500, "Number of items to generate")

	return cmd
}

func runSeed(cmd *cobra.Command, args []string) error {
	if seedCount <= 0 {
		return fmt.Errorf("count must be positive: %d", seedCount)
	}

	cmdCtx := cli.NewCommandContext("")
	lib, err := cmdCtx.OpenDatabase(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to open library: %w", err)
	}
	defer lib.Close()

	if err := lib.SQLite.Insert(cmd.Context(), source.DemoRecords(seedCount)); err != nil {
		return fmt.Errorf("failed to seed library: %w", err)
	}

	cli.PrintSuccess("Seeded %d items into %s", seedCount, cmdCtx.Store.DatabasePath(cmdCtx.LoadSettingsWithDefault()))
	return nil
}
