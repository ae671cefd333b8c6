package models

import "time"

// FeedSource tracks health bookkeeping per inbound odds feed (one per book).
type FeedSource struct {
	ID           uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	SourceType   string     `gorm:"type:varchar(30);not null" json:"source_type"`
	LastSeenAt   *time.Time `gorm:"type:timestamptz" json:"last_seen_at"`
	SnapshotsIn  uint64     `gorm:"default:0" json:"snapshots_in"`
	LastError    *string    `gorm:"type:text" json:"last_error,omitempty"`
	HealthStatus string     `gorm:"type:varchar(20);default:'unknown'" json:"health_status"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (FeedSource) TableName() string {
	return "feed_sources"
}
