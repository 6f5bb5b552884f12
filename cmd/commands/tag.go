package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pluqqy/itemgrid/internal/cli"
	"github.com/pluqqy/itemgrid/internal/logging"
	"github.com/pluqqy/itemgrid/pkg/source"
)

var (
	tagAdd    []string
	tagRemove []string
)

// NewTagCommand creates the tag command
func NewTagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag KEY...",
		Short: "Add or remove tags on items",
		Long: `Edit the tags of one or more items.

Examples:
  # Tag two items red
  itemgrid tag 3f0c... 9a1b... --add red

  # Move an item from draft to cited
  itemgrid tag 3f0c... --add cited --remove draft`,
		Args:    cobra.MinimumNArgs(1),
		PreRunE: requireProject,
		RunE:    runTag,
	}

	cmd.Flags().StringSliceVarP(&tagAdd, "add", "a", nil, "Tags to add")
	cmd.Flags().StringSliceVarP(&tagRemove, "remove", "r", nil, "Tags to remove")

	return cmd
}

func runTag(cmd *cobra.Command, args []string) error {
	if err := cli.ValidateKeys(args); err != nil {
		return err
	}
	if len(tagAdd) == 0 && len(tagRemove) == 0 {
		return fmt.Errorf("nothing to do: use --add or --remove")
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

	tagger, ok := lib.Source.(source.Tagger)
	if !ok {
		return fmt.Errorf("this library is read-only")
	}
	if err := tagger.UpdateTags(cmd.Context(), args, tagAdd, tagRemove); err != nil {
		return fmt.Errorf("failed to update tags: %w", err)
	}

	var changes []string
	if len(tagAdd) > 0 {
		changes = append(changes, "added "+strings.Join(tagAdd, ", "))
	}
	if len(tagRemove) > 0 {
		changes = append(changes, "removed "+strings.Join(tagRemove, ", "))
	}
	cli.PrintSuccess("Updated %s: %s", pluralize(len(args), "item"), strings.Join(changes, "; "))
	return nil
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
