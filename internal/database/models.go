package database

import (
	"time"

	"github.com/jackc/pgtype"
)

// LocationPoint is one stored GPS fix of a session. The timestamp is kept as
// the text the mobile client uploaded.
type LocationPoint struct {
	ID        uint     `gorm:"primaryKey;autoIncrement;column:id"`
	SessionID string   `gorm:"column:session_id;index:idx_location_points_session;not null"`
	Latitude  float64  `gorm:"column:latitude;not null"`
	Longitude float64  `gorm:"column:longitude;not null"`
	Altitude  *float64 `gorm:"column:altitude"`
	Timestamp string   `gorm:"column:recorded_at;type:text;not null"`
}

// TableName specifies the table name for LocationPoint
func (LocationPoint) TableName() string {
	return "location_points"
}

// ReconciliationAudit records the outcome of one metrics reconciliation
type ReconciliationAudit struct {
	ID             string       `gorm:"primaryKey;column:id;type:uuid"`
	SessionID      string       `gorm:"column:session_id;index;not null"`
	CreatedAt      time.Time    `gorm:"column:created_at;not null"`
	Source         string       `gorm:"column:source;not null"`
	DistanceKm     float64      `gorm:"column:distance_km;not null"`
	ElevationGainM float64      `gorm:"column:elevation_gain_m;not null"`
	ElevationLossM float64      `gorm:"column:elevation_loss_m;not null"`
	Decisions      pgtype.JSONB `gorm:"column:decisions;type:jsonb;default:'[]';not null"`
	Segments       pgtype.JSONB `gorm:"column:segments;type:jsonb;not null"`
}

// TableName specifies the table name for ReconciliationAudit
func (ReconciliationAudit) TableName() string {
	return "reconciliation_audit"
}
