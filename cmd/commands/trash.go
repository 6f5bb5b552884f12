package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pluqqy/itemgrid/internal/cli"
	"github.com/pluqqy/itemgrid/internal/logging"
	"github.com/pluqqy/itemgrid/pkg/source"
)

var trashForce bool

// NewTrashCommand creates the trash command
func NewTrashCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trash KEY...",
		Short: "Move items to the trash",
		Long: `Move items to the trash. Trashed items no longer appear in the grid.

Examples:
  # Trash an item (with confirmation)
  itemgrid trash 3f0c...

  # Trash without confirmation
  itemgrid trash 3f0c... 9a1b... --force`,
		Args:    cobra.MinimumNArgs(1),
		PreRunE: requireProject,
		RunE:    runTrash,
	}

	cmd.Flags().BoolVarP(&trashForce, "force", "f", false, "Trash without confirmation")

	return cmd
}

func runTrash(cmd *cobra.Command, args []string) error {
	if err := cli.ValidateKeys(args); err != nil {
		return err
	}

	if !trashForce {
		confirmed, err := cli.Confirm(fmt.Sprintf("Move %s to the trash?", pluralize(len(args), "item")), false)
		if err != nil {
			return fmt.Errorf("failed to get confirmation: %w", err)
		}
		if !confirmed {
			cli.PrintInfo("Cancelled")
			return nil
		}
	}

	cmdCtx := cli.NewCommandContext("")
	lib, err := cmdCtx.OpenLibrary(cmd.Context(), logging.NewCLILogger().Zerolog())
	if err != nil {
		return fmt.Errorf("failed to open library: %w", err)
	}
	defer lib.Close()

	args, err = knownKeys(cmd.Context(), lib.Source, cmdCtx.LoadSettingsWithDefault().Query(), args)
	if err != nil {
		return err
	}

	trasher, ok := lib.Source.(source.Trasher)
	if !ok {
		return fmt.Errorf("this library is read-only")
	}
	if err := trasher.Trash(cmd.Context(), args); err != nil {
		return fmt.Errorf("failed to trash items: %w", err)
	}

	cli.PrintSuccess("Moved %s to trash", pluralize(len(args), "item"))
	return nil
}
