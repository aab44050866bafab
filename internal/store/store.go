// Package store reads session GPS samples from the session database and keeps
// an audit trail of reconciliation outcomes.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/chrissnell/trackreconcile/internal/metrics"
	"github.com/chrissnell/trackreconcile/internal/types"
	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a session has no stored samples
var ErrSessionNotFound = errors.New("session not found")

// SampleStore is the read side of the session database plus the audit sink
type SampleStore interface {
	// Samples returns every stored sample of a session in storage order
	Samples(ctx context.Context, sessionID string) ([]types.LocationSample, error)
	SaveAudit(ctx context.Context, rec AuditRecord) error
	Close() error
}

// AuditRecord is one reconciliation outcome
type AuditRecord struct {
	ID        string
	SessionID string
	CreatedAt time.Time
	Report    metrics.Report
}

// NewAuditRecord stamps a report with a fresh id and the current time
func NewAuditRecord(sessionID string, report metrics.Report) AuditRecord {
	return AuditRecord{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		CreatedAt: time.Now().UTC(),
		Report:    report,
	}
}

var (
	_ SampleStore = (*PostgresStore)(nil)
	_ SampleStore = (*SQLiteStore)(nil)
)
