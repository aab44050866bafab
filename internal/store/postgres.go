package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chrissnell/trackreconcile/internal/database"
	"github.com/chrissnell/trackreconcile/internal/log"
	"github.com/chrissnell/trackreconcile/internal/metrics"
	"github.com/chrissnell/trackreconcile/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PostgresStore reads samples from the hosted session database through GORM
type PostgresStore struct {
	DB     *gorm.DB
	logger *zap.SugaredLogger
}

// NewPostgresStore connects to Postgres and migrates the tables it owns
func NewPostgresStore(connectionString string, logger *zap.SugaredLogger) (*PostgresStore, error) {
	db, err := database.CreateConnection(connectionString)
	if err != nil {
		return nil, err
	}
	return NewPostgresStoreFromDB(db, logger)
}

// NewPostgresStoreFromDB wraps an existing GORM handle
func NewPostgresStoreFromDB(db *gorm.DB, logger *zap.SugaredLogger) (*PostgresStore, error) {
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return &PostgresStore{
		DB:     db,
		logger: log.OrDefault(logger),
	}, nil
}

// Samples returns a session's samples ordered by timestamp text then insertion
func (p *PostgresStore) Samples(ctx context.Context, sessionID string) ([]types.LocationSample, error) {
	var rows []database.LocationPoint
	err := p.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("recorded_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error querying samples for session %s: %w", sessionID, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	p.logger.Debugw("loaded session samples", "session_id", sessionID, "count", len(rows))
	return pointsToSamples(rows), nil
}

// SaveAudit stores a reconciliation outcome with its decisions as JSONB
func (p *PostgresStore) SaveAudit(ctx context.Context, rec AuditRecord) error {
	row, err := auditRow(rec)
	if err != nil {
		return err
	}
	if err := p.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("error saving audit for session %s: %w", rec.SessionID, err)
	}
	return nil
}

// Close releases the underlying connection pool
func (p *PostgresStore) Close() error {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func pointsToSamples(rows []database.LocationPoint) []types.LocationSample {
	samples := make([]types.LocationSample, len(rows))
	for i, r := range rows {
		samples[i] = types.LocationSample{
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
			Altitude:  r.Altitude,
			Timestamp: r.Timestamp,
		}
	}
	return samples
}

func auditRow(rec AuditRecord) (database.ReconciliationAudit, error) {
	ds := rec.Report.Decisions
	if ds == nil {
		ds = []metrics.Decision{}
	}
	decisions, err := json.Marshal(ds)
	if err != nil {
		return database.ReconciliationAudit{}, fmt.Errorf("error encoding decisions: %w", err)
	}
	segments, err := json.Marshal(rec.Report.Segments)
	if err != nil {
		return database.ReconciliationAudit{}, fmt.Errorf("error encoding segment stats: %w", err)
	}

	m := rec.Report.Metrics
	row := database.ReconciliationAudit{
		ID:             rec.ID,
		SessionID:      rec.SessionID,
		CreatedAt:      rec.CreatedAt,
		Source:         m.Source,
		DistanceKm:     m.DistanceKm,
		ElevationGainM: m.ElevationGainM,
		ElevationLossM: m.ElevationLossM,
	}
	if err := row.Decisions.Set(decisions); err != nil {
		return database.ReconciliationAudit{}, fmt.Errorf("error setting decisions: %w", err)
	}
	if err := row.Segments.Set(segments); err != nil {
		return database.ReconciliationAudit{}, fmt.Errorf("error setting segment stats: %w", err)
	}
	return row, nil
}
