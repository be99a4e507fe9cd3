package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-progress-api/internal/models"
)

// ProgressSnapshot is a consistent view of one student's records for one course.
type ProgressSnapshot struct {
	Months         []models.Month
	Responses      map[uint]models.AssessmentResponse
	Projects       map[uint]models.ProjectSubmission
	CompletedWeeks map[uint]struct{}
}

// ProgressStore loads everything the progression engine needs in one read.
type ProgressStore interface {
	LoadSnapshot(ctx context.Context, studentID, courseID uint) (ProgressSnapshot, error)
}

// SnapshotTxOptions isolates LoadSnapshot. Under READ COMMITTED every SELECT
// would see its own snapshot, so a grade committed between the response and
// project reads would leak into half of the view.
var SnapshotTxOptions = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

type progressStore struct {
	db *gorm.DB
}

// NewProgressStore instantiates the store.
func NewProgressStore(db *gorm.DB) ProgressStore {
	return &progressStore{db: db}
}

// LoadSnapshot runs every read inside one repeatable-read, read-only
// transaction, so all queries observe the database as of its first read.
func (s *progressStore) LoadSnapshot(ctx context.Context, studentID, courseID uint) (ProgressSnapshot, error) {
	var snapshot ProgressSnapshot

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		months, err := NewCourseRepository(tx).FetchWeekHierarchy(ctx, courseID)
		if err != nil {
			return err
		}

		assessments := NewAssessmentRepository(tx)
		for i := range months {
			for j := range months[i].Weeks {
				items, err := assessments.ListByWeek(ctx, months[i].Weeks[j].ID)
				if err != nil {
					return err
				}
				months[i].Weeks[j].Assessments = items
			}
		}

		responses, err := NewAssessmentResponseRepository(tx).MapByStudent(ctx, studentID)
		if err != nil {
			return err
		}

		projects, err := NewProjectSubmissionRepository(tx).MapByStudentCourse(ctx, studentID, courseID)
		if err != nil {
			return err
		}

		completed, err := NewWeekCompletionRepository(tx).WeekIDsByStudent(ctx, studentID)
		if err != nil {
			return err
		}

		snapshot = ProgressSnapshot{
			Months:         months,
			Responses:      responses,
			Projects:       projects,
			CompletedWeeks: completed,
		}
		return nil
	}, SnapshotTxOptions)
	if err != nil {
		return ProgressSnapshot{}, err
	}

	return snapshot, nil
}
