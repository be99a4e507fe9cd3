package dto

import (
	"time"

	"github.com/noah-isme/gema-progress-api/internal/models"
)

// ScoreAssessmentRequest is the mentor payload for grading an assessment response.
type ScoreAssessmentRequest struct {
	Score    *float64 `json:"score" validate:"required,gte=0,lte=100"`
	Feedback string   `json:"feedback" validate:"omitempty,max=5000"`
}

// ScoreProjectRequest is the mentor payload for grading a project submission.
type ScoreProjectRequest struct {
	Score  *float64 `json:"score" validate:"required,gte=0,lte=100"`
	Review string   `json:"review" validate:"omitempty,max=10000"`
}

// ScoreResult reports what was stored by a grading action.
type ScoreResult struct {
	EntityType         models.GradeEntityType `json:"entity_type"`
	EntityID           uint                   `json:"entity_id"`
	StudentID          uint                   `json:"student_id"`
	RawScore           float64                `json:"raw_score"`
	FinalScore         float64                `json:"final_score"`
	LatePenaltyApplied bool                   `json:"late_penalty_applied"`
	Status             string                 `json:"status"`
	GradedAt           time.Time              `json:"graded_at"`
	HistoryID          uint                   `json:"history_id"`
}
