package models

import "time"

// ApplicationFact is the per-application projection reports are computed from
type ApplicationFact struct {
	ApplicationID    string     `db:"application_id"`
	RequestedAt      time.Time  `db:"requested_at"`
	StatusCode       string     `db:"status_code"`
	RejectReasonName *string    `db:"reject_reason_name"`
	DecisionAt       *time.Time `db:"decision_at"`
	IssuedAt         *time.Time `db:"issued_at"`
	DeliveredAt      *time.Time `db:"delivered_at"`
	HandedAt         *time.Time `db:"handed_at"`
	ActivatedAt      *time.Time `db:"activated_at"`
}

// ReportRange is a half-open [From, To) window over requested_at
type ReportRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// FunnelReport counts how far applications in a window progressed
type FunnelReport struct {
	ReportRange
	Applications int `json:"applications"`
	Approved     int `json:"approved"`
	Rejected     int `json:"rejected"`
	Issued       int `json:"issued"`
	Handed       int `json:"handed"`
	Activated    int `json:"activated"`
}

// VolumePoint is one bucket of the volume report
type VolumePoint struct {
	Bucket       string `json:"bucket"`
	Applications int    `json:"applications"`
	Approved     int    `json:"approved"`
	Issued       int    `json:"issued"`
	Activated    int    `json:"activated"`
}

// SLAPoint holds average stage durations in days for one bucket
type SLAPoint struct {
	Bucket            string   `json:"bucket"`
	DaysToDecisionAvg *float64 `json:"daysToDecisionAvg"`
	DaysToIssueAvg    *float64 `json:"daysToIssueAvg"`
	DaysDeliveryAvg   *float64 `json:"daysDeliveryAvg"`
	DaysToActivateAvg *float64 `json:"daysToActivateAvg"`
}

// RejectReasonPoint counts rejections per reason
type RejectReasonPoint struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// SeriesReport wraps bucketed report output
type SeriesReport[T any] struct {
	ReportRange
	Bucket string `json:"bucket,omitempty"`
	Points []T    `json:"points"`
}
