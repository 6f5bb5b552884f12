package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pluqqy/itemgrid/internal/cli"
	"github.com/pluqqy/itemgrid/internal/logging"
	"github.com/pluqqy/itemgrid/pkg/models"
)

// FetchResult represents the output structure for the fetch command
type FetchResult struct {
	Query   models.Query    `json:"query" yaml:"query"`
	Offset  int             `json:"offset" yaml:"offset"`
	Total   int             `json:"total" yaml:"total"`
	Records []models.Record `json:"records" yaml:"records"`
}

var (
	fetchOffset int
	fetchCount  int
	fetchSort   string
	fetchDesc   bool
	fetchSearch string
	fetchOutput string
)

// NewFetchCommand creates the fetch command
func NewFetchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Print one page of the library",
		Long: `Fetch a page of the configured library, local or remote, the same
way the grid loads its rows.

Examples:
  # First 20 items by title
  itemgrid fetch

  # Items 100-149 by year, newest first
  itemgrid fetch --offset 100 --count 50 --sort year --desc

  # Search and print YAML
  itemgrid fetch --search knuth -o yaml`,
		Args:    cobra.NoArgs,
		PreRunE: requireProject,
		RunE:    runFetch,
	}

	cmd.Flags().IntVar(&fetchOffset, "offset", 0, "Index of the first item")
	cmd.Flags().IntVarP(&fetchCount, "count", "n", 20, "Number of items to fetch")
	cmd.Flags().StringVar(&fetchSort, "sort", "", "Sort field (default from settings)")
	cmd.Flags().BoolVar(&fetchDesc, "desc", false, "Sort descending")
	cmd.Flags().StringVarP(&fetchSearch, "search", "s", "", "Only items whose title or creator matches")
	cmd.Flags().StringVarP(&fetchOutput, "output", "o", "text", "Output format (text, json, yaml)")

	return cmd
}

func runFetch(cmd *cobra.Command, args []string) error {
	if err := cli.ValidateOutputFormat(fetchOutput); err != nil {
		return err
	}
	if err := cli.ValidateRange(fetchOffset, fetchCount); err != nil {
		return err
	}

	cmdCtx := cli.NewCommandContext("")
	q := cmdCtx.LoadSettingsWithDefault().Query()
	q.Text = fetchSearch
	if fetchSort != "" {
		if err := cli.ValidateSortField(fetchSort); err != nil {
			return err
		}
		q.SortBy = fetchSort
	}
	if fetchDesc {
		q.Direction = models.SortDesc
	}

	log := logging.NewCLILogger().With("fetch")
	lib, err := cmdCtx.OpenLibrary(cmd.Context(), log.Zerolog())
	if err != nil {
		return fmt.Errorf("failed to open library: %w", err)
	}
	defer lib.Close()

	page, err := lib.FetchRange(cmd.Context(), q, fetchOffset, fetchCount)
	if err != nil {
		return fmt.Errorf("failed to fetch items: %w", err)
	}
	log.Debug().Int("offset", fetchOffset).Int("count", len(page.Records)).Int("total", page.Total).Msg("fetched page")

	result := FetchResult{Query: q, Offset: fetchOffset, Total: page.Total, Records: page.Records}
	if result.Records == nil {
		result.Records = []models.Record{}
	}

	switch fetchOutput {
	case "json", "yaml":
		return cli.OutputResults(cmd.OutOrStdout(), fetchOutput, result)
	default:
		return outputFetchText(cmd, result)
	}
}

func outputFetchText(cmd *cobra.Command, result FetchResult) error {
	out := cmd.OutOrStdout()
	if len(result.Records) == 0 {
		fmt.Fprintf(out, "No items at offset %d (%d total)\n", result.Offset, result.Total)
		return nil
	}

	table := cli.NewTableFormatter(out)
	table.Header("#", "TITLE", "CREATOR", "YEAR", "TAGS")
	for i, r := range result.Records {
		table.Row(
			strconv.Itoa(result.Offset+i),
			cli.TruncateString(r.Title, 40),
			cli.TruncateString(r.Creator, 24),
			r.CellValue(models.FieldYear),
			fmt.Sprint(len(r.Tags)),
		)
	}
	table.Flush()

	fmt.Fprintf(out, "\nShowing %d-%d of %d (sorted by %s %s)\n",
		result.Offset, result.Offset+len(result.Records)-1, result.Total,
		models.ColumnLabel(result.Query.SortBy), result.Query.Direction)
	return nil
}
