package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/chrissnell/trackreconcile/internal/log"
	"github.com/chrissnell/trackreconcile/internal/route"
	"github.com/chrissnell/trackreconcile/internal/types"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ExportFormat string

const (
	FormatGPX     ExportFormat = "gpx"
	FormatGeoJSON ExportFormat = "geojson"
	FormatJSON    ExportFormat = "json"
)

type Config struct {
	Host      string
	Port      int
	Database  string
	User      string
	Password  string
	SSLMode   string
	SessionID string
	Format    ExportFormat
	Output    string
}

func main() {
	var cfg Config

	// Parse command line flags
	flag.StringVar(&cfg.Host, "host", "localhost", "Database host")
	flag.IntVar(&cfg.Port, "port", 5432, "Database port")
	flag.StringVar(&cfg.Database, "database", "sessions", "Database name")
	flag.StringVar(&cfg.User, "user", "postgres", "Database user")
	flag.StringVar(&cfg.Password, "password", "", "Database password")
	flag.StringVar(&cfg.SSLMode, "sslmode", "disable", "SSL mode (disable, require, etc)")
	flag.StringVar(&cfg.SessionID, "session", "", "Session id to export (required)")
	formatStr := flag.String("format", "gpx", "Export format: gpx, geojson, or json")
	flag.StringVar(&cfg.Output, "output", "", "Output file (default <session>.<format>)")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	switch ExportFormat(*formatStr) {
	case FormatGPX, FormatGeoJSON, FormatJSON:
		cfg.Format = ExportFormat(*formatStr)
	default:
		log.Fatalf("Invalid format: %s. Must be gpx, geojson, or json", *formatStr)
	}
	if cfg.SessionID == "" {
		log.Fatalf("-session is required")
	}
	if cfg.Output == "" {
		cfg.Output = cfg.SessionID + "." + string(cfg.Format)
	}

	connStr := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Database, cfg.User, cfg.Password, cfg.SSLMode)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Infof("Connected to database %s@%s:%d", cfg.Database, cfg.Host, cfg.Port)

	samples, err := fetchSamples(ctx, pool, cfg.SessionID)
	if err != nil {
		log.Fatalf("Failed to read session %s: %v", cfg.SessionID, err)
	}
	if len(samples) == 0 {
		log.Fatalf("Session %s has no samples", cfg.SessionID)
	}

	builder := route.NewBuilder(route.DefaultParams(), log.GetSugaredLogger())
	rendered, stats := builder.Build(samples)

	data, err := encode(cfg, rendered, stats)
	if err != nil {
		log.Fatalf("Failed to encode route: %v", err)
	}
	if err := os.WriteFile(cfg.Output, data, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", cfg.Output, err)
	}

	log.Infow("route exported",
		"session_id", cfg.SessionID,
		"raw_points", stats.RawPoints,
		"rendered_points", len(rendered),
		"output", cfg.Output,
	)
}

func fetchSamples(ctx context.Context, pool *pgxpool.Pool, sessionID string) ([]types.LocationSample, error) {
	rows, err := pool.Query(ctx,
		`SELECT latitude, longitude, altitude, recorded_at FROM location_points WHERE session_id = $1 ORDER BY recorded_at, id`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var samples []types.LocationSample
	for rows.Next() {
		var s types.LocationSample
		if err := rows.Scan(&s.Latitude, &s.Longitude, &s.Altitude, &s.Timestamp); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

func encode(cfg Config, rendered types.RenderRoute, stats route.Stats) ([]byte, error) {
	switch cfg.Format {
	case FormatGeoJSON:
		return route.ToGeoJSON(cfg.SessionID, rendered)
	case FormatJSON:
		return json.MarshalIndent(struct {
			SessionID string            `json:"session_id"`
			Points    types.RenderRoute `json:"points"`
			Stats     route.Stats       `json:"stats"`
		}{cfg.SessionID, rendered, stats}, "", "  ")
	default:
		return route.ToGPX(cfg.SessionID, rendered)
	}
}
