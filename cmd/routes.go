package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kass/capital-routes/pkg/routes"
	"github.com/kass/capital-routes/pkg/style"
)

var (
	routesTheme     string
	routesHighlight string
	routesOutput    string
	routesSummary   bool
	routesSort      bool
)

var routesCmd = &cobra.Command{
	Use:   "routes [origin]",
	Short: "Write the routes from an origin capital as GeoJSON",
	Long: `Computes the great-circle route from the origin capital (default from config)
to every other capital and writes them as a GeoJSON FeatureCollection.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var highlight style.Category
		if routesHighlight != "" {
			c, ok := style.ParseCategory(routesHighlight)
			if !ok {
				return eris.Errorf("unknown category %q", routesHighlight)
			}
			highlight = c
		}

		index, err := loadIndex(cmd.Context())
		if err != nil {
			return err
		}

		var origin string
		if len(args) == 1 {
			origin = args[0]
		}
		dataset, err := newDataset(index, origin, resolveTheme(routesTheme))
		if err != nil {
			return err
		}

		coll, err := dataset.RoutesFromOrigin()
		if err != nil {
			zap.L().Warn("some capitals have no route", zap.Error(err))
		}
		if coll.Len() == 0 {
			fmt.Fprintf(os.Stderr, "no routes from %q\n", dataset.Origin())
		}

		if routesSummary {
			return printSummary(coll)
		}

		var opts []routes.FeatureOption
		if highlight != "" {
			opts = append(opts, routes.WithHighlight(highlight))
		}
		return writeJSON(routesOutput, coll.FeatureCollection(opts...))
	},
}

func printSummary(coll *routes.Collection) error {
	rs := make([]routes.Route, len(coll.Routes))
	copy(rs, coll.Routes)
	if routesSort {
		sort.SliceStable(rs, func(i, j int) bool { return rs[i].DistanceKm > rs[j].DistanceKm })
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DESTINATION\tDISTANCE (km)\tCATEGORY\tCOLOR\tWIDTH")
	for _, r := range rs {
		fmt.Fprintf(tw, "%s\t%.0f\t%s\t%s\t%.1f\n", r.Destination, r.DistanceKm, r.Category, r.Color, r.LineWidth)
	}
	if err := tw.Flush(); err != nil {
		return eris.Wrap(err, "write summary")
	}

	counts := coll.CountByCategory()
	fmt.Printf("\n%d routes from %s (%s theme):", coll.Len(), coll.Origin, coll.Theme)
	for _, c := range style.Categories {
		fmt.Printf(" %s=%d", c, counts[c])
	}
	fmt.Println()
	return nil
}

func init() {
	routesCmd.Flags().StringVarP(&routesTheme, "theme", "t", "", "Theme: light or dark (default from state or config)")
	routesCmd.Flags().StringVar(&routesHighlight, "highlight", "", "Dim every category but this one")
	routesCmd.Flags().StringVarP(&routesOutput, "output", "o", "-", "Output file")
	routesCmd.Flags().BoolVar(&routesSummary, "summary", false, "Print a table instead of GeoJSON")
	routesCmd.Flags().BoolVar(&routesSort, "sort", false, "Sort the summary by distance, longest first")

	rootCmd.AddCommand(routesCmd)
}
