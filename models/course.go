package models

import "time"

type Course struct {
	CourseID   int        `gorm:"primaryKey;column:course_id" json:"course_id"`
	CourseName string     `gorm:"column:course_name" json:"course_name"`
	SchoolID   int        `gorm:"column:school_id" json:"school_id"`
	TeacherID  int        `gorm:"column:teacher_id" json:"teacher_id"`
	CreateAt   *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt   *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt   *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Teacher User `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
}

func (Course) TableName() string { return "courses" }
