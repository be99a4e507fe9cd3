package models

import (
	"time"

	"gorm.io/datatypes"
)

// GradeEntityType identifies what kind of record a grading event touched.
type GradeEntityType string

const (
	GradeEntityAssessmentResponse GradeEntityType = "assessment_response"
	GradeEntityProjectSubmission  GradeEntityType = "project_submission"
)

// GradeAction tells a grade from a resubmission that cleared one.
type GradeAction string

const (
	GradeActionGraded GradeAction = "graded"
	GradeActionReset  GradeAction = "reset"
)

// GradeHistory stores an audit entry per change to a counted score: every
// grade, and every resubmission that cleared one. Rows with a nil
// RecomputedAt still owe the student a total score recompute.
type GradeHistory struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	StudentID    uint              `gorm:"not null;index" json:"student_id"`
	EntityType   GradeEntityType   `gorm:"size:32;not null" json:"entity_type"`
	EntityID     uint              `gorm:"not null" json:"entity_id"`
	Action       GradeAction       `gorm:"size:16;not null;default:graded" json:"action"`
	RawScore     float64           `gorm:"not null" json:"raw_score"`
	FinalScore   float64           `gorm:"not null" json:"final_score"`
	Feedback     string            `gorm:"type:text" json:"feedback"`
	GradedBy     uint              `gorm:"not null" json:"graded_by"`
	GradedAt     time.Time         `gorm:"not null" json:"graded_at"`
	Metadata     datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	RecomputedAt *time.Time        `gorm:"index" json:"recomputed_at"`
}

// AllModels lists every persisted model for auto-migration.
func AllModels() []interface{} {
	return []interface{}{
		&Student{},
		&Course{},
		&Month{},
		&Week{},
		&Assessment{},
		&AssessmentResponse{},
		&ProjectSubmission{},
		&WeekCompletion{},
		&GradeHistory{},
	}
}
