package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"finitefield.org/boardgame-store/internal/store/catalog"
	"finitefield.org/boardgame-store/internal/store/config"
	"finitefield.org/boardgame-store/internal/store/templates/helpers"
)

var catalogCategory string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the catalog, optionally filtered by category",
	Long: `Print the configured catalog as a table.

Categories: all, family, strategy, adventure, rpg. Unknown values list every game.`,
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().StringVar(&catalogCategory, "category", "all", "category filter")
}

func runCatalog(cmd *cobra.Command, _ []string) error {
	var opts []config.Option
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	cfg, err := config.LoadCatalog(opts...)
	if err != nil {
		return err
	}
	games, err := catalog.Load(cfg.File)
	if err != nil {
		return err
	}
	return printCatalog(cmd, games, catalog.ParseFilter(catalogCategory))
}

func printCatalog(cmd *cobra.Command, games *catalog.Catalog, filter catalog.Filter) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPLAYERS\tPRICE")
	filtered := games.Filtered(filter)
	var sum int64
	for _, g := range filtered {
		sum += g.Price
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", g.ID, g.Name, helpers.CategoryLabel(g.Category), g.Players, helpers.NormalizeSpaces(helpers.Rubles(g.Price)))
	}
	fmt.Fprintf(w, "\tИтого: %d\t\t\t%s\n", len(filtered), helpers.NormalizeSpaces(helpers.Rubles(sum)))
	return w.Flush()
}
