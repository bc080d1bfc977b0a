package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kass/capital-routes/pkg/arc"
	"github.com/kass/capital-routes/pkg/models"
	"github.com/kass/capital-routes/pkg/style"
)

var (
	capitalsOutput string

	legendTheme string

	nearestLon    string
	nearestLat    string
	nearestK      int
	nearestRadius float64
)

var capitalsCmd = &cobra.Command{
	Use:   "capitals",
	Short: "Write the capital markers as GeoJSON points",
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := loadIndex(cmd.Context())
		if err != nil {
			return err
		}
		dataset, err := newDataset(index, "", style.DefaultTheme)
		if err != nil {
			return err
		}

		fc, err := dataset.CapitalPoints()
		if err != nil {
			zap.L().Warn("capitals left out", zap.Error(err))
		}
		return writeJSON(capitalsOutput, fc)
	},
}

var legendCmd = &cobra.Command{
	Use:   "legend",
	Short: "Print the distance categories and their styles",
	RunE: func(cmd *cobra.Command, args []string) error {
		theme := resolveTheme(legendTheme)

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "CATEGORY\tDISTANCE\tCOLOR\tWIDTH\n")
		for _, e := range style.Legend(theme) {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\n", e.Category, e.Label(), e.Color, e.LineWidth)
		}
		if err := tw.Flush(); err != nil {
			return eris.Wrap(err, "write legend")
		}
		fmt.Printf("\ntheme %s, map style %s\n", theme, theme.MapStyle())
		return nil
	},
}

var nearestCmd = &cobra.Command{
	Use:   "nearest",
	Short: "Find the capitals closest to a point",
	Long:  `Finds the k capitals nearest to --lon/--lat, or every capital within --radius km when set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		loc, err := arc.ParseLocation(nearestLon, nearestLat)
		if err != nil {
			return err
		}
		if nearestK < 1 {
			return eris.Errorf("k must be positive, got %d", nearestK)
		}

		index, err := loadIndex(cmd.Context())
		if err != nil {
			return err
		}

		var found []models.Capital
		if nearestRadius > 0 {
			found, err = index.WithinRadius(loc, nearestRadius)
			if err != nil {
				return err
			}
		} else {
			found = index.Nearest(loc, nearestK)
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CAPITAL\tCOUNTRY\tDISTANCE (km)\tBEARING")
		for _, c := range found {
			cl, err := arc.CapitalLocation(c)
			if err != nil {
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.0f°\n",
				c.Name, c.CountryName,
				strconv.FormatFloat(arc.Distance(loc, cl), 'f', 1, 64),
				arc.InitialBearing(loc, cl),
			)
		}
		if err := tw.Flush(); err != nil {
			return eris.Wrap(err, "write results")
		}
		return nil
	},
}

func init() {
	capitalsCmd.Flags().StringVarP(&capitalsOutput, "output", "o", "-", "Output file")

	legendCmd.Flags().StringVarP(&legendTheme, "theme", "t", "", "Theme: light or dark")

	nearestCmd.Flags().StringVar(&nearestLon, "lon", "", "Longitude of the query point")
	nearestCmd.Flags().StringVar(&nearestLat, "lat", "", "Latitude of the query point")
	nearestCmd.Flags().IntVarP(&nearestK, "neighbors", "k", 5, "Number of capitals to return")
	nearestCmd.Flags().Float64VarP(&nearestRadius, "radius", "r", 0, "Search radius in km instead of k nearest")
	_ = nearestCmd.MarkFlagRequired("lon")
	_ = nearestCmd.MarkFlagRequired("lat")

	rootCmd.AddCommand(capitalsCmd, legendCmd, nearestCmd)
}
