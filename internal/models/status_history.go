package models

import "time"

// StatusHistory represents one row of the append-only STATUS_HISTORY ledger
type StatusHistory struct {
	ID         int64      `db:"id" json:"id"`
	EntityType EntityType `db:"entity_type" json:"entityType"`
	EntityID   string     `db:"entity_id" json:"entityId"`
	StatusID   int64      `db:"status_id" json:"statusId"`
	StatusCode string     `db:"status_code" json:"statusCode"`
	ChangedAt  time.Time  `db:"changed_at" json:"changedAt"`
	ChangedBy  *string    `db:"changed_by" json:"changedBy,omitempty"`
}

// StatusChangedEvent mirrors a ledger row for downstream consumers
type StatusChangedEvent struct {
	EntityType EntityType `json:"entityType"`
	EntityID   string     `json:"entityId"`
	StatusCode string     `json:"statusCode"`
	ChangedAt  time.Time  `json:"changedAt"`
	ChangedBy  string     `json:"changedBy,omitempty"`
}
