package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kass/capital-routes/internal/config"
	"github.com/kass/capital-routes/pkg/geoindex"
	"github.com/kass/capital-routes/pkg/loader"
	"github.com/kass/capital-routes/pkg/routes"
	"github.com/kass/capital-routes/pkg/style"
)

var (
	cfgFile      string
	source       string
	fromSnapshot bool
	verbose      bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "capital-routes",
	Short: "Great-circle routes between world capitals",
	Long: `Computes great-circle routes from a selected capital to every other capital,
classifies them by distance and renders them as GeoJSON, over HTTP or into PostGIS.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if source != "" {
			cfg.Data.Source = source
		}
		if verbose {
			cfg.Log.Level = "debug"
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		return config.InitLogger(cfg.Log)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default ./config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&source, "source", "s", "", "Capital dataset URL or file (overrides data.source)")
	rootCmd.PersistentFlags().BoolVar(&fromSnapshot, "from-snapshot", false, "Read capitals from the gob snapshot instead of the source")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadIndex reads the capitals from the configured source or snapshot
func loadIndex(ctx context.Context) (*geoindex.Index, error) {
	if fromSnapshot {
		index, err := geoindex.Load(cfg.Data.Snapshot)
		if err != nil {
			return nil, err
		}
		zap.L().Info("capitals read from snapshot",
			zap.String("snapshot", cfg.Data.Snapshot),
			zap.Int("records", index.Len()),
		)
		return index, nil
	}

	l := loader.New(loader.Options{Timeout: time.Duration(cfg.Data.TimeoutSecs) * time.Second})
	capitals, err := l.Load(ctx, cfg.Data.Source)
	if err != nil {
		return nil, err
	}
	return geoindex.New(capitals), nil
}

// newDataset builds a route dataset over index with the configured origin,
// point count and the given theme
func newDataset(index *geoindex.Index, origin string, theme style.Theme) (*routes.Dataset, error) {
	if origin == "" {
		origin = cfg.Routes.Origin
	}
	return routes.NewFromIndex(index,
		routes.WithOrigin(origin),
		routes.WithTheme(theme),
		routes.WithPointCount(cfg.Routes.PointCount),
		routes.WithLogger(zap.L().Named("routes")),
	)
}

// resolveTheme picks the theme flag when set, then the stored preference,
// then the configured theme
func resolveTheme(flagValue string) style.Theme {
	if flagValue != "" {
		theme, ok := style.ParseTheme(flagValue)
		if !ok {
			zap.L().Warn("unknown theme, using default", zap.String("theme", flagValue))
		}
		return theme
	}

	configured, ok := style.ParseTheme(cfg.Routes.Theme)
	if !ok {
		zap.L().Warn("unknown configured theme, using default", zap.String("theme", cfg.Routes.Theme))
	}
	theme, err := config.LoadTheme(cfg.Routes.StateFile, configured)
	if err != nil {
		zap.L().Warn("theme state unreadable", zap.Error(err))
	}
	return theme
}

// writeJSON writes v to path, or to stdout when path is empty or "-"
func writeJSON(path string, v any) error {
	var w io.Writer = os.Stdout
	if path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "create %s", path)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "encode output")
	}
	return nil
}
