package models

import "time"

// Evaluation is a graded activity (exam, quiz, homework) owned by the teacher
// who created it. CreateAt anchors the edit-grace window and is never mutated
// after creation; EvalDate is the academic date and may be in the future.
type Evaluation struct {
	EvaluationID  int        `gorm:"primaryKey;column:evaluation_id" json:"evaluation_id"`
	Title         string     `gorm:"column:title" json:"title"`
	Description   string     `gorm:"column:description" json:"description"`
	CourseID      int        `gorm:"column:course_id" json:"course_id"`
	OwnerUserID   int        `gorm:"column:owner_user_id" json:"owner_user_id"`
	EvalDate      time.Time  `gorm:"column:eval_date" json:"eval_date"`
	MaxScore      float64    `gorm:"column:max_score" json:"max_score"`
	WeightPercent *float64   `gorm:"column:weight_percent" json:"weight_percent,omitempty"`
	CreateAt      time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt      *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt      *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Typed unlock override. Legacy rows carry the same information as an
	// @@OVERRIDE token inside Description until migrated on first read.
	OverrideAdminID   *int       `gorm:"column:override_admin_id" json:"override_admin_id,omitempty"`
	OverrideGrantedAt *time.Time `gorm:"column:override_granted_at" json:"override_granted_at,omitempty"`

	// Relations
	Course Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Owner  User   `gorm:"foreignKey:OwnerUserID" json:"owner,omitempty"`
}

func (Evaluation) TableName() string { return "evaluations" }

// HasOverride reports whether an administrator has granted unconditional edit
// rights on this evaluation.
func (e Evaluation) HasOverride() bool {
	return e.OverrideAdminID != nil && e.OverrideGrantedAt != nil
}
