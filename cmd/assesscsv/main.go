// Command assesscsv scores a CSV export of environmental readings through the
// assessment engine and writes the results as JSON. Rows are assessed in file
// order, so each location's forecast sees the rows above it.
//
// Usage:
//
//	go run ./cmd/assesscsv \
//	  -csv data/mock/environmental_readings.csv \
//	  -out results.json \
//	  -at 2025-04-26T21:00:00Z
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/couchcryptid/landslide-risk-engine/internal/adapter/blobfs"
	"github.com/couchcryptid/landslide-risk-engine/internal/adapter/csvsource"
	"github.com/couchcryptid/landslide-risk-engine/internal/assess"
	"github.com/couchcryptid/landslide-risk-engine/internal/domain"
	"github.com/couchcryptid/landslide-risk-engine/internal/observability"
	"github.com/couchcryptid/landslide-risk-engine/internal/store"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "CSV file of environmental readings")
	outPath := flag.String("out", "", "output path for the JSON results (default stdout)")
	storeDir := flag.String("store-dir", "", "persist assessments as snapshots in this directory")
	at := flag.String("at", "", "fixed RFC3339 time for ids and timestamps")
	flag.Parse()

	if *csvPath == "" {
		flag.Usage()
		return errors.New("missing required flag: -csv")
	}

	clock := clockwork.NewRealClock()
	if *at != "" {
		t, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			return fmt.Errorf("parse -at: %w", err)
		}
		clock = clockwork.NewFakeClockAt(t)
	}

	inputs, err := csvsource.ReadFile(*csvPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", *csvPath, err)
	}
	log.Printf("%s: %d rows", *csvPath, len(inputs))

	var backend store.BlobStore = store.NewMemoryBlobStore()
	if *storeDir != "" {
		files, err := blobfs.New(*storeDir)
		if err != nil {
			return err
		}
		backend = files
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	st := store.New(backend, store.WithClock(clock), store.WithLogger(logger))
	if err := st.Open(ctx); err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	engine := assess.New(st, logger, observability.NewMetricsForTesting(), clock)

	results, rejected, err := assessAll(ctx, engine, inputs)
	if err != nil {
		return err
	}
	if rejected > 0 {
		log.Printf("rejected: %d rows", rejected)
	}

	if err := writeJSON(*outPath, results); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}

	printStats(os.Stderr, results)
	return nil
}

// assessAll runs each input through the engine in order. Rows failing
// validation are logged and counted; storage errors stop the run.
func assessAll(ctx context.Context, engine *assess.Engine, inputs []domain.EnvironmentalInput) ([]domain.Result, int, error) {
	results := make([]domain.Result, 0, len(inputs))
	rejected := 0
	for i, in := range inputs {
		res, err := engine.AssessEnvironmental(ctx, in)
		if err != nil {
			if !assess.IsValidation(err) {
				return nil, rejected, fmt.Errorf("row %d: %w", i+1, err)
			}
			log.Printf("row %d: %v", i+1, err)
			rejected++
			continue
		}
		results = append(results, res)
	}
	return results, rejected, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

type levelCount struct {
	level domain.RiskLevel
	count int
}

func printStats(w io.Writer, results []domain.Result) {
	assessments := make([]domain.RiskAssessment, len(results))
	alerts := 0
	for i, r := range results {
		assessments[i] = r.Assessment
		if r.Alert != nil {
			alerts++
		}
	}

	counts := domain.CountByLevel(assessments)
	lc := make([]levelCount, 0, len(counts))
	for l, c := range counts {
		lc = append(lc, levelCount{l, c})
	}
	sort.Slice(lc, func(i, j int) bool { return lc[i].level.Rank() > lc[j].level.Rank() })

	fmt.Fprintln(w, "\n=== Assessment summary ===")
	fmt.Fprintf(w, "Total: %d\n", len(results))
	fmt.Fprint(w, "By level:")
	for _, c := range lc {
		fmt.Fprintf(w, " %s=%d", c.level, c.count)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Alerts: %d\n", alerts)
}
