package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pluqqy/itemgrid/internal/cli"
	"github.com/pluqqy/itemgrid/pkg/layout"
	"github.com/pluqqy/itemgrid/pkg/models"
)

// ColumnsResult represents the output structure for the columns command
type ColumnsResult struct {
	Columns []models.Column `json:"columns" yaml:"columns"`
}

var columnsOutput string

// NewColumnsCommand creates the columns command
func NewColumnsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "columns [list|reset|show FIELD|hide FIELD]",
		Short: "Show or edit the grid column layout",
		Long: `Show or edit the column layout the grid persists in settings.yaml.

Fields: ` + strings.Join(fieldNames(), ", ") + `

Examples:
  # Show the layout
  itemgrid columns

  # Show the item type column
  itemgrid columns show itemType

  # Go back to the default layout
  itemgrid columns reset`,
		Args:      cobra.RangeArgs(0, 2),
		ValidArgs: []string{"list", "reset", "show", "hide"},
		PreRunE:   requireProject,
		RunE:      runColumns,
	}

	cmd.Flags().StringVarP(&columnsOutput, "output", "o", "text", "Output format (text, json, yaml)")

	return cmd
}

func fieldNames() []string {
	defaults := layout.Defaults()
	names := make([]string, len(defaults))
	for i, c := range defaults {
		names[i] = c.Field
	}
	return names
}

func runColumns(cmd *cobra.Command, args []string) error {
	if err := cli.ValidateOutputFormat(columnsOutput); err != nil {
		return err
	}

	action := "list"
	if len(args) > 0 {
		action = strings.ToLower(args[0])
	}

	store := cli.NewCommandContext("").Store
	stored, err := store.LoadColumns()
	if err != nil {
		return fmt.Errorf("failed to load columns: %w", err)
	}
	columns := layout.FromPreferences(stored)

	switch action {
	case "list":
		if len(args) > 1 {
			return fmt.Errorf("list takes no field")
		}
		return outputColumns(cmd, columns)

	case "reset":
		if err := store.SaveColumns(layout.Defaults()); err != nil {
			return err
		}
		cli.PrintSuccess("Reset column layout")
		return nil

	case "show", "hide":
		if len(args) != 2 {
			return fmt.Errorf("%s needs a field (one of: %s)", action, strings.Join(fieldNames(), ", "))
		}
		updated, err := setColumnVisible(columns, args[1], action == "show")
		if err != nil {
			return err
		}
		if err := store.SaveColumns(updated); err != nil {
			return err
		}
		verb := "Showing"
		if action == "hide" {
			verb = "Hid"
		}
		cli.PrintSuccess("%s column %s", verb, models.ColumnLabel(args[1]))
		return nil

	default:
		return fmt.Errorf("unknown action: %s (must be: list, reset, show, or hide)", action)
	}
}

// setColumnVisible changes the visibility of field and renormalizes the
// visible columns so they fill the grid again.
func setColumnVisible(columns []models.Column, field string, visible bool) ([]models.Column, error) {
	if !layout.KnownField(field) {
		return nil, fmt.Errorf("unknown field: %s (must be one of: %s)", field, strings.Join(fieldNames(), ", "))
	}
	out := make([]models.Column, len(columns))
	copy(out, columns)
	for i := range out {
		if out[i].Field != field {
			continue
		}
		if !visible && out[i].IsVisible && len(layout.Visible(out)) == 1 {
			return nil, fmt.Errorf("cannot hide the last visible column")
		}
		out[i].IsVisible = visible
	}
	return layout.CommitResize(out, layout.Normalize(layout.Visible(out))), nil
}

func outputColumns(cmd *cobra.Command, columns []models.Column) error {
	switch columnsOutput {
	case "json", "yaml":
		return cli.OutputResults(cmd.OutOrStdout(), columnsOutput, ColumnsResult{Columns: columns})
	}

	table := cli.NewTableFormatter(cmd.OutOrStdout())
	table.Header("FIELD", "VISIBLE", "WIDTH", "MIN")
	for _, c := range columns {
		visible, width := "no", "-"
		if c.IsVisible {
			visible = "yes"
			width = fmt.Sprintf("%.0f%%", c.Fraction*100)
		}
		table.Row(c.Field, visible, width, fmt.Sprintf("%.0f%%", c.MinFraction*100))
	}
	table.Flush()
	return nil
}
