package main

import (
	"os"

	"github.com/DavidAlphaFox/texsearch/internal/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "texsearch",
	Short: "Approximate search over a corpus of LaTeX formulae",
	Long: `texsearch maintains an edit-distance index over preprocessed LaTeX
fragments and answers approximate structural queries against it.

Commands:
  • init    create an empty index snapshot
  • update  reconcile the document store's change feed into the index
  • query   answer search requests, one JSON request per stdin line`,
	Version: version.Short(),
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "Configuration file path (default .texsearch.toml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Accepted for all commands; no command prints extra output with it")

	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewUpdateCmd())
	rootCmd.AddCommand(NewQueryCmd())
	rootCmd.AddCommand(NewVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
