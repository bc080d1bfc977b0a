package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kass/capital-routes/pkg/geoindex"
	"github.com/kass/capital-routes/pkg/loader"
)

var snapshotOutput string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Fetch the capital dataset and save it as a gob snapshot",
	Long: `Fetches the capital dataset from the configured source and saves the records
to a binary snapshot that later commands can read with --from-snapshot.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		l := loader.New(loader.Options{Timeout: time.Duration(cfg.Data.TimeoutSecs) * time.Second})

		start := time.Now()
		capitals, err := l.Load(cmd.Context(), cfg.Data.Source)
		if err != nil {
			return err
		}
		index := geoindex.New(capitals)

		path := snapshotOutput
		if path == "" {
			path = cfg.Data.Snapshot
		}
		if err := index.SaveToFile(path); err != nil {
			return err
		}

		fmt.Printf("Saved %d capitals (%d with coordinates) to %s in %v\n",
			index.Len(), index.SpatialLen(), path, time.Since(start))
		return nil
	},
}

func init() {
	snapshotCmd.Flags().StringVarP(&snapshotOutput, "output", "o", "", "Snapshot file (default data.snapshot)")
	rootCmd.AddCommand(snapshotCmd)
}
