package models

import "time"

// Unlock request lifecycle. Notification sends happen as side effects of
// these transitions; this table is the system of record.
const (
	UnlockStatusPending  = "pending"
	UnlockStatusGranted  = "granted"
	UnlockStatusRejected = "rejected"
)

// UnlockRequest records a teacher asking an administrator to re-open an
// evaluation after the grace window closed.
type UnlockRequest struct {
	ID           uint       `gorm:"primaryKey;column:id" json:"id"`
	RequestID    string     `gorm:"column:request_id;unique" json:"request_id"`
	EvaluationID int        `gorm:"column:evaluation_id" json:"evaluation_id"`
	RequesterID  int        `gorm:"column:requester_id" json:"requester_id"`
	Status       string     `gorm:"column:status" json:"status"` // pending|granted|rejected
	Comment      *string    `gorm:"column:comment" json:"comment,omitempty"`
	Reason       *string    `gorm:"column:reason" json:"reason,omitempty"`
	ResolvedBy   *int       `gorm:"column:resolved_by" json:"resolved_by,omitempty"`
	CreateAt     time.Time  `gorm:"column:create_at" json:"create_at"`
	ResolveAt    *time.Time `gorm:"column:resolve_at" json:"resolve_at,omitempty"`

	// Relations
	Evaluation Evaluation `gorm:"foreignKey:EvaluationID" json:"evaluation,omitempty"`
	Requester  User       `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
}

func (UnlockRequest) TableName() string { return "unlock_requests" }
