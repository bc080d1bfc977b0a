package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kass/capital-routes/pkg/postgis"
)

var (
	exportDSN string
	exportAll bool
)

var exportCmd = &cobra.Command{
	Use:   "export [origin]",
	Short: "Export capitals and routes to PostGIS",
	Long: `Writes every capital and the routes from the origin (or from every capital with
--all) into PostGIS tables. Routes of an origin are replaced wholesale.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		dsn := exportDSN
		if dsn == "" {
			dsn = cfg.Postgis.DSN
		}
		if dsn == "" {
			return eris.New("postgis dsn required (--dsn or postgis.dsn)")
		}

		index, err := loadIndex(ctx)
		if err != nil {
			return err
		}
		if index.Len() == 0 {
			return eris.New("no capitals to export")
		}

		store, err := postgis.Open(dsn)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.InitSchema(ctx); err != nil {
			return err
		}

		written, err := store.SaveCapitals(ctx, index.Records())
		if err != nil {
			zap.L().Warn("capitals skipped", zap.Error(err))
		}
		fmt.Printf("Exported %d capitals\n", written)

		var origins []string
		switch {
		case exportAll:
			for _, c := range index.Records() {
				origins = append(origins, c.Name)
			}
		case len(args) == 1:
			origins = []string{args[0]}
		default:
			origins = []string{cfg.Routes.Origin}
		}

		dataset, err := newDataset(index, origins[0], resolveTheme(""))
		if err != nil {
			return err
		}

		total := 0
		for _, origin := range origins {
			dataset.SetOrigin(origin)
			coll, err := dataset.RoutesFromOrigin()
			if err != nil {
				zap.L().Warn("routes incomplete", zap.String("origin", origin), zap.Error(err))
			}
			if coll.Len() == 0 {
				continue
			}
			if err := store.SaveRoutes(ctx, coll); err != nil {
				return err
			}
			total += coll.Len()
		}

		fmt.Printf("Exported %d routes from %d origins\n", total, len(origins))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportDSN, "dsn", "", "PostgreSQL connection string (default postgis.dsn)")
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "Export the routes of every capital")
	rootCmd.AddCommand(exportCmd)
}
