package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/chrissnell/trackreconcile/internal/log"
	"github.com/chrissnell/trackreconcile/internal/metrics"
	"github.com/chrissnell/trackreconcile/internal/route"
	"github.com/chrissnell/trackreconcile/internal/store"
	"github.com/chrissnell/trackreconcile/internal/types"
	"github.com/tkrajina/gpxgo/gpx"
)

type options struct {
	gpxFile          string
	clientDistanceKm float64
	clientGainM      float64
	durationSeconds  int64
	weightKg         float64
	ruckWeightKg     float64
	renderOut        string
	geojsonOut       string
	importSQLite     string
	sessionID        string
}

// Report is what the tool prints to stdout
type Report struct {
	File        string         `json:"file"`
	Samples     int            `json:"samples"`
	Reconcile   metrics.Report `json:"reconcile"`
	RouteStats  route.Stats    `json:"route"`
	RouteHidden bool           `json:"route_hidden"`
}

func main() {
	var opts options
	flag.StringVar(&opts.gpxFile, "gpx", "", "GPX file to analyze (required)")
	flag.Float64Var(&opts.clientDistanceKm, "client-distance-km", 0, "Distance the device reported, in km")
	flag.Float64Var(&opts.clientGainM, "client-gain-m", 0, "Elevation gain the device reported, in meters")
	flag.Int64Var(&opts.durationSeconds, "duration", 0, "Session duration in seconds (default: first to last GPX timestamp)")
	flag.Float64Var(&opts.weightKg, "weight-kg", 0, "Body weight in kg")
	flag.Float64Var(&opts.ruckWeightKg, "ruck-kg", 0, "Ruck load in kg")
	flag.StringVar(&opts.renderOut, "render-out", "", "Write the privacy-clipped route as GPX to this file")
	flag.StringVar(&opts.geojsonOut, "geojson-out", "", "Write the privacy-clipped route as GeoJSON to this file")
	flag.StringVar(&opts.importSQLite, "import-sqlite", "", "Also load the samples into this SQLite sample store")
	flag.StringVar(&opts.sessionID, "session", "", "Session id used for -import-sqlite and exports (default: GPX file name)")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if opts.gpxFile == "" {
		log.Fatalf("-gpx is required")
	}
	if opts.sessionID == "" {
		opts.sessionID = opts.gpxFile
	}

	if err := run(opts); err != nil {
		log.Fatalf("gpx-reconcile: %v", err)
	}
}

func run(opts options) error {
	doc, err := gpx.ParseFile(opts.gpxFile)
	if err != nil {
		return fmt.Errorf("failed to parse GPX file: %w", err)
	}
	samples := route.SamplesFromGPX(doc)

	if opts.durationSeconds == 0 {
		opts.durationSeconds = int64(doc.Duration())
	}

	client := types.ClientReportedMetrics{DistanceKm: opts.clientDistanceKm}
	if opts.clientGainM > 0 {
		client.ElevationGainM = types.Float64(opts.clientGainM)
	}

	logger := log.GetSugaredLogger()
	report, err := metrics.NewReconciler(metrics.DefaultParams(), logger).Reconcile(metrics.Input{
		Samples:         samples,
		Client:          client,
		DurationSeconds: opts.durationSeconds,
		WeightKg:        opts.weightKg,
		RuckWeightKg:    opts.ruckWeightKg,
	})
	if err != nil {
		return err
	}

	rendered, stats := route.NewBuilder(route.DefaultParams(), logger).Build(samples)

	if opts.renderOut != "" {
		if err := writeExport(opts.renderOut, func() ([]byte, error) { return route.ToGPX(opts.sessionID, rendered) }); err != nil {
			return err
		}
	}
	if opts.geojsonOut != "" {
		if err := writeExport(opts.geojsonOut, func() ([]byte, error) { return route.ToGeoJSON(opts.sessionID, rendered) }); err != nil {
			return err
		}
	}

	if opts.importSQLite != "" {
		if err := importSamples(opts.importSQLite, opts.sessionID, samples); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(Report{
		File:        opts.gpxFile,
		Samples:     len(samples),
		Reconcile:   report,
		RouteStats:  stats,
		RouteHidden: len(rendered) == 0,
	})
}

func writeExport(path string, encode func() ([]byte, error)) error {
	data, err := encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Infof("wrote %s", path)
	return nil
}

func importSamples(dbPath, sessionID string, samples []types.LocationSample) error {
	s, err := store.NewSQLiteStore(dbPath, log.GetSugaredLogger())
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.AppendSamples(context.Background(), sessionID, samples); err != nil {
		return err
	}
	log.Infof("imported %d samples into %s as session %s", len(samples), dbPath, sessionID)
	return nil
}
