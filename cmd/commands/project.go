package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pluqqy/itemgrid/internal/cli"
	"github.com/pluqqy/itemgrid/pkg/models"
	"github.com/pluqqy/itemgrid/pkg/source"
)

// requireProject is the PreRunE of every command that works on a project.
// It also points the cli print helpers at the command's writers.
func requireProject(cmd *cobra.Command, args []string) error {
	cli.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr(), cmd.InOrStdin())
	return cli.NewCommandContext("").ValidateProject()
}

// knownKeys returns the keys src can locate and warns about the others.
// Sources without a locator get every key back.
func knownKeys(ctx context.Context, src source.Source, q models.Query, keys []string) ([]string, error) {
	locator, ok := src.(source.Locator)
	if !ok {
		return keys, nil
	}
	var found []string
	for _, k := range keys {
		_, err := locator.IndexOf(ctx, q, k)
		switch {
		case errors.Is(err, source.ErrNotFound):
			cli.PrintWarning("Item %s not found, skipping", k)
		case err != nil:
			return nil, fmt.Errorf("failed to look up %s: %w", k, err)
		default:
			found = append(found, k)
		}
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("none of the given items exist")
	}
	return found, nil
}
