package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/chrissnell/trackreconcile/internal/log"
	"github.com/chrissnell/trackreconcile/internal/types"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a local sample store for development and offline tooling
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// NewSQLiteStore opens (or creates) the database at dbPath and migrates it.
// Use ":memory:" for a throwaway database.
func NewSQLiteStore(dbPath string, logger *zap.SugaredLogger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// an in-memory database only lives as long as its single connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: log.OrDefault(logger),
	}
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate applies any pending schema migrations
func (s *SQLiteStore) Migrate() error {
	if err := SQLiteMigrator(s.db, s.logger).MigrateUp(); err != nil {
		return fmt.Errorf("failed to migrate SQLite schema: %w", err)
	}
	return nil
}

// AppendSamples stores samples for a session in one transaction
func (s *SQLiteStore) AppendSamples(ctx context.Context, sessionID string, samples []types.LocationSample) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO location_points (session_id, latitude, longitude, altitude, recorded_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, sample := range samples {
		var alt sql.NullFloat64
		if sample.Altitude != nil {
			alt = sql.NullFloat64{Float64: *sample.Altitude, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, sessionID, sample.Latitude, sample.Longitude, alt, sample.Timestamp); err != nil {
			return fmt.Errorf("failed to insert sample: %w", err)
		}
	}

	return tx.Commit()
}

// Samples returns a session's samples ordered by timestamp text then insertion
func (s *SQLiteStore) Samples(ctx context.Context, sessionID string) ([]types.LocationSample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT latitude, longitude, altitude, recorded_at FROM location_points WHERE session_id = ? ORDER BY recorded_at, id`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("error querying samples for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	var samples []types.LocationSample
	for rows.Next() {
		var (
			sample types.LocationSample
			alt    sql.NullFloat64
		)
		if err := rows.Scan(&sample.Latitude, &sample.Longitude, &alt, &sample.Timestamp); err != nil {
			return nil, fmt.Errorf("error scanning sample: %w", err)
		}
		if alt.Valid {
			sample.Altitude = types.Float64(alt.Float64)
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading samples: %w", err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	s.logger.Debugw("loaded session samples", "session_id", sessionID, "count", len(samples))
	return samples, nil
}

// SaveAudit stores a reconciliation outcome
func (s *SQLiteStore) SaveAudit(ctx context.Context, rec AuditRecord) error {
	row, err := auditRow(rec)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reconciliation_audit (id, session_id, created_at, source, distance_km, elevation_gain_m, elevation_loss_m, decisions, segments)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.SessionID, types.FormatTimestamp(row.CreatedAt), row.Source,
		row.DistanceKm, row.ElevationGainM, row.ElevationLossM,
		string(row.Decisions.Bytes), string(row.Segments.Bytes))
	if err != nil {
		return fmt.Errorf("error saving audit for session %s: %w", rec.SessionID, err)
	}
	return nil
}

// AuditCount returns how many audit rows exist for a session
func (s *SQLiteStore) AuditCount(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reconciliation_audit WHERE session_id = ?`, sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting audit rows: %w", err)
	}
	return n, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
