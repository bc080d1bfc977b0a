package main

import (
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kass/capital-routes/pkg/geoindex"
	"github.com/kass/capital-routes/pkg/models"
	"github.com/kass/capital-routes/pkg/postgis"
	"github.com/kass/capital-routes/pkg/routes"
)

// BenchmarkResult summarizes one benchmark run
type BenchmarkResult struct {
	QueryType     string
	TotalQueries  int
	TotalDuration time.Duration
	AvgDuration   time.Duration
	QueriesPerSec float64
	MinDuration   time.Duration
	MaxDuration   time.Duration
	TotalResults  int64
	AvgResults    float64
}

var (
	benchType    string
	benchQueries int
	benchWorkers int
	benchBoxSize float64
	benchK       int
	benchDSN     string
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Measure route generation and capital queries",
	Long: `Runs one of the benchmarks with a pool of workers:
  routes   compute the full route collection from random origins
  nearest  k-nearest capital queries on the R-Tree
  box      bounding box queries on the R-Tree, and on PostGIS when --dsn is set`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if benchWorkers < 1 || benchQueries < 1 {
			return eris.New("queries and workers must be positive")
		}

		index, err := loadIndex(cmd.Context())
		if err != nil {
			return err
		}
		if index.Len() == 0 {
			return eris.New("no capitals loaded")
		}
		zap.L().Info("benchmark starting",
			zap.String("type", benchType),
			zap.Int("capitals", index.Len()),
			zap.Int("queries", benchQueries),
			zap.Int("workers", benchWorkers),
		)

		var results []BenchmarkResult
		switch benchType {
		case "routes":
			r, err := benchmarkRoutes(index)
			if err != nil {
				return err
			}
			results = append(results, r)
		case "nearest":
			results = append(results, benchmarkNearest(index))
		case "box":
			results = append(results, benchmarkBox(index))
			if benchDSN != "" {
				r, err := benchmarkPostgisBox(cmd, benchDSN)
				if err != nil {
					return err
				}
				results = append(results, r)
			}
		default:
			return eris.Errorf("unknown benchmark type %q", benchType)
		}

		for _, r := range results {
			printResult(r)
		}
		return nil
	},
}

// runPool feeds n jobs to the workers and collects durations and result
// counts; each worker gets its own random source and state from newWorker
func runPool(queryType string, n, workers int, newWorker func() func(r *rand.Rand) (int, error)) BenchmarkResult {
	var (
		totalResults int64
		minDuration  = time.Hour
		maxDuration  time.Duration
		durations    []time.Duration
		mu           sync.Mutex
	)

	startTime := time.Now()

	queryCh := make(chan int, n)
	var wg sync.WaitGroup

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		run := newWorker()
		go func(seed int64) {
			defer wg.Done()
			r := rand.New(rand.NewSource(seed))

			for range queryCh {
				queryStart := time.Now()
				found, err := run(r)
				queryDuration := time.Since(queryStart)
				if err != nil {
					continue
				}
				atomic.AddInt64(&totalResults, int64(found))

				mu.Lock()
				durations = append(durations, queryDuration)
				if queryDuration < minDuration {
					minDuration = queryDuration
				}
				if queryDuration > maxDuration {
					maxDuration = queryDuration
				}
				mu.Unlock()
			}
		}(rand.Int63())
	}

	for i := 0; i < n; i++ {
		queryCh <- i
	}
	close(queryCh)

	wg.Wait()
	totalDuration := time.Since(startTime)

	result := BenchmarkResult{
		QueryType:     queryType,
		TotalQueries:  len(durations),
		TotalDuration: totalDuration,
		QueriesPerSec: float64(len(durations)) / totalDuration.Seconds(),
		MinDuration:   minDuration,
		MaxDuration:   maxDuration,
		TotalResults:  totalResults,
	}
	if len(durations) > 0 {
		var totalDur time.Duration
		for _, d := range durations {
			totalDur += d
		}
		result.AvgDuration = totalDur / time.Duration(len(durations))
		result.AvgResults = float64(totalResults) / float64(len(durations))
	} else {
		result.MinDuration = 0
	}
	return result
}

// benchmarkRoutes gives every worker its own dataset over the shared index
func benchmarkRoutes(index *geoindex.Index) (BenchmarkResult, error) {
	records := index.Records()

	datasets := make(chan *routes.Dataset, benchWorkers)
	for w := 0; w < benchWorkers; w++ {
		dataset, err := routes.NewFromIndex(index,
			routes.WithPointCount(cfg.Routes.PointCount),
			routes.WithLogger(zap.NewNop()),
		)
		if err != nil {
			return BenchmarkResult{}, err
		}
		datasets <- dataset
	}

	return runPool("routes", benchQueries, benchWorkers, func() func(*rand.Rand) (int, error) {
		dataset := <-datasets
		return func(r *rand.Rand) (int, error) {
			dataset.SetOrigin(records[r.Intn(len(records))].Name)
			coll, _ := dataset.RoutesFromOrigin()
			return coll.Len(), nil
		}
	}), nil
}

func benchmarkNearest(index *geoindex.Index) BenchmarkResult {
	return runPool("nearest", benchQueries, benchWorkers, func() func(*rand.Rand) (int, error) {
		return func(r *rand.Rand) (int, error) {
			return len(index.Nearest(randomLocation(r), benchK)), nil
		}
	})
}

func benchmarkBox(index *geoindex.Index) BenchmarkResult {
	return runPool("box (rtree)", benchQueries, benchWorkers, func() func(*rand.Rand) (int, error) {
		return func(r *rand.Rand) (int, error) {
			found, err := index.WithinBox(randomBox(r))
			return len(found), err
		}
	})
}

func benchmarkPostgisBox(cmd *cobra.Command, dsn string) (BenchmarkResult, error) {
	store, err := postgis.Open(dsn)
	if err != nil {
		return BenchmarkResult{}, err
	}
	defer store.Close()

	ctx := cmd.Context()
	return runPool("box (postgis)", benchQueries, benchWorkers, func() func(*rand.Rand) (int, error) {
		return func(r *rand.Rand) (int, error) {
			found, err := store.QueryBox(ctx, randomBox(r))
			return len(found), err
		}
	}), nil
}

func randomLocation(r *rand.Rand) models.Location {
	return models.Location{Lat: r.Float64()*160 - 80, Lon: r.Float64()*360 - 180}
}

func randomBox(r *rand.Rand) models.BoundingBox {
	lat := -80 + r.Float64()*(160-benchBoxSize)
	lon := -180 + r.Float64()*(360-benchBoxSize)
	return models.BoundingBox{
		BottomLeft: models.Location{Lat: lat, Lon: lon},
		TopRight:   models.Location{Lat: lat + benchBoxSize, Lon: lon + benchBoxSize},
	}
}

func printResult(result BenchmarkResult) {
	fmt.Println("\n=== Benchmark Results ===")
	fmt.Printf("Query Type: %s\n", result.QueryType)
	fmt.Printf("Total Queries: %d\n", result.TotalQueries)
	fmt.Printf("Total Duration: %v\n", result.TotalDuration)
	fmt.Printf("Average Duration: %v\n", result.AvgDuration)
	fmt.Printf("Queries/Second: %.2f\n", result.QueriesPerSec)
	fmt.Printf("Min Duration: %v\n", result.MinDuration)
	fmt.Printf("Max Duration: %v\n", result.MaxDuration)
	fmt.Printf("Total Results: %d\n", result.TotalResults)
	fmt.Printf("Avg Results/Query: %.2f\n", result.AvgResults)
	fmt.Printf("Workers Used: %d\n", benchWorkers)
	fmt.Printf("CPU Cores: %d\n", runtime.NumCPU())
}

func init() {
	benchmarkCmd.Flags().StringVarP(&benchType, "type", "t", "routes", "Benchmark: routes, nearest, box")
	benchmarkCmd.Flags().IntVarP(&benchQueries, "queries", "n", 200, "Number of queries to run")
	benchmarkCmd.Flags().IntVarP(&benchWorkers, "workers", "w", runtime.NumCPU(), "Number of concurrent workers")
	benchmarkCmd.Flags().Float64Var(&benchBoxSize, "box-size", 20.0, "Box size in degrees (box benchmark)")
	benchmarkCmd.Flags().IntVarP(&benchK, "neighbors", "k", 10, "Number of nearest neighbors")
	benchmarkCmd.Flags().StringVar(&benchDSN, "dsn", "", "Also run the box benchmark against PostGIS")
	rootCmd.AddCommand(benchmarkCmd)
}
