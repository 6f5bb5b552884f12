package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pluqqy/itemgrid/cmd/commands"
	"github.com/pluqqy/itemgrid/internal/cli"
	"github.com/pluqqy/itemgrid/internal/logging"
	"github.com/pluqqy/itemgrid/pkg/files"
	"github.com/pluqqy/itemgrid/pkg/source"
	"github.com/pluqqy/itemgrid/pkg/tui"
)

// Version is set during build with -ldflags
var version = "dev"

var (
	flagQuiet   bool
	flagNoColor bool
	flagYes     bool
	flagVerbose bool
	flagDemo    int
	flagSelect  string
)

var rootCmd = &cobra.Command{
	Use:   "itemgrid",
	Short: "Terminal grid for browsing large item libraries",
	Long:  `Itemgrid browses a large, sorted item library in a terminal grid. Rows are loaded page by page from a local SQLite database or a remote itemgrid server, so libraries of any size open instantly.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cli.SetGlobalFlags(flagQuiet, flagNoColor, flagYes, flagVerbose)
		logging.SetVerbose(flagVerbose)
	},
	Run: func(cmd *cobra.Command, args []string) {
		store := files.NewStore("")
		if flagDemo == 0 && !store.Exists() {
			cli.PrintError("No %s directory found in the current directory.", files.ItemgridDir)
			fmt.Fprintln(os.Stderr, "Please run 'itemgrid init' first, or try 'itemgrid --demo 10000'.")
			os.Exit(1)
		}
		if err := runTUI(cmd, store); err != nil {
			cli.PrintError("%v", err)
			os.Exit(1)
		}
	},
}

func runTUI(cmd *cobra.Command, store *files.Store) error {
	log := logging.Nop()
	if store.Exists() {
		fileLog, err := logging.NewFileLogger(store.LogPath())
		if err != nil {
			return err
		}
		log = fileLog
	}
	defer log.Close()

	cmdCtx := &cli.CommandContext{Store: store}
	settings := cmdCtx.LoadSettingsWithDefault()

	var src source.Source
	if flagDemo > 0 {
		src = source.NewMemory(source.DemoRecords(flagDemo))
	} else {
		lib, err := cmdCtx.OpenLibrary(cmd.Context(), log.With("source").Zerolog())
		if err != nil {
			return fmt.Errorf("failed to open library: %w", err)
		}
		defer lib.Close()
		src = lib.Source
	}

	var columns files.ColumnStore = store
	if !store.Exists() {
		// demo runs outside a project keep the layout in memory
		columns = nil
	}

	grid := tui.NewGridModel(tui.GridOptions{
		Source:    src,
		Store:     columns,
		Settings:  settings,
		Logger:    log.Zerolog(),
		SelectKey: flagSelect,
	})
	defer grid.Close()

	log.Info().Str("database", store.DatabasePath(settings)).Str("remote", settings.Data.Remote).Int("demo", flagDemo).Msg("starting grid")

	p := tea.NewProgram(tui.NewApp(grid), tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithReportFocus())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to start the terminal user interface: %w", err)
	}
	return nil
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new itemgrid project",
	Long:  `Creates the .itemgrid folder with a default settings.yaml in the current directory`,
	Run: func(cmd *cobra.Command, args []string) {
		cwd, err := os.Getwd()
		if err != nil {
			cli.PrintError("Failed to determine current directory: %v", err)
			os.Exit(1)
		}

		fmt.Printf("Initializing itemgrid project in %s...\n", cwd)

		if err := files.InitProjectStructure(); err != nil {
			cli.PrintError("Failed to initialize project structure: %v", err)
			fmt.Fprintf(os.Stderr, "Make sure you have write permissions in the current directory.\n")
			os.Exit(1)
		}

		fmt.Println("✓ Created .itemgrid folder structure")
		fmt.Println("✓ Run 'itemgrid seed' to add demo items, or point data.remote at a server")
		fmt.Println("\nRun 'itemgrid' to start the interactive grid.")
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of itemgrid",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("itemgrid version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress success and info messages")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable symbols in messages")
	rootCmd.PersistentFlags().BoolVarP(&flagYes, "yes", "y", false, "Answer yes to every confirmation")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().IntVar(&flagDemo, "demo", 0, "Browse N generated items in memory instead of the library")
	rootCmd.Flags().StringVar(&flagSelect, "select", "", "Scroll to and select the item with this key on start")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(commands.NewSeedCommand())
	rootCmd.AddCommand(commands.NewFetchCommand())
	rootCmd.AddCommand(commands.NewLocateCommand())
	rootCmd.AddCommand(commands.NewTagCommand())
	rootCmd.AddCommand(commands.NewTrashCommand())
	rootCmd.AddCommand(commands.NewColumnsCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		cli.PrintError("Command execution failed: %v", err)
		os.Exit(1)
	}
}
