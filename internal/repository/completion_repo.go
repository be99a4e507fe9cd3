package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-progress-api/internal/models"
)

// WeekCompletionRepository stores explicit week completion marks.
type WeekCompletionRepository interface {
	WeekIDsByStudent(ctx context.Context, studentID uint) (map[uint]struct{}, error)
	Mark(ctx context.Context, studentID, weekID uint, at time.Time) error
}

type weekCompletionRepository struct {
	db *gorm.DB
}

// NewWeekCompletionRepository instantiates the repository.
func NewWeekCompletionRepository(db *gorm.DB) WeekCompletionRepository {
	return &weekCompletionRepository{db: db}
}

func (r *weekCompletionRepository) WeekIDsByStudent(ctx context.Context, studentID uint) (map[uint]struct{}, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&models.WeekCompletion{}).
		Where("student_id = ?", studentID).
		Pluck("week_id", &ids).Error; err != nil {
		return nil, err
	}

	result := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		result[id] = struct{}{}
	}
	return result, nil
}

// Mark records a completion mark; marking twice keeps the first timestamp.
func (r *weekCompletionRepository) Mark(ctx context.Context, studentID, weekID uint, at time.Time) error {
	completion := models.WeekCompletion{StudentID: studentID, WeekID: weekID, CompletedAt: at}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "week_id"}},
			DoNothing: true,
		}).
		Create(&completion).Error
}
