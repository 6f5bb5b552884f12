package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pluqqy/itemgrid/internal/cli"
	"github.com/pluqqy/itemgrid/internal/logging"
	"github.com/pluqqy/itemgrid/pkg/source"
)

var locateSearch string

// NewLocateCommand creates the locate command
func NewLocateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locate KEY",
		Short: "Print the position of an item in the sorted library",
		Args:  cobra.ExactArgs(1),
		PreRunE: requireProject,
		RunE:    runLocate,
	}

	cmd.Flags().StringVarP(&locateSearch, "search", "s", "", "Locate within a search result")

	return cmd
}

func runLocate(cmd *cobra.Command, args []string) error {
	cmdCtx := cli.NewCommandContext("")
	q := cmdCtx.LoadSettingsWithDefault().Query()
	q.Text = locateSearch

	lib, err := cmdCtx.OpenLibrary(cmd.Context(), logging.NewCLILogger().Zerolog())
	if err != nil {
		return fmt.Errorf("failed to open library: %w", err)
	}
	defer lib.Close()

	locator, ok := lib.Source.(source.Locator)
	if !ok {
		return fmt.Errorf("this library cannot locate items")
	}
	index, err := locator.IndexOf(cmd.Context(), q, args[0])
	if errors.Is(err, source.ErrNotFound) {
		return fmt.Errorf("item not found: %s", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to locate item: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), index)
	return nil
}
