package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-progress-api/internal/models"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestStudentRepositorySumGradedScores(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStudentRepository(db)
	ctx := context.Background()

	student := models.Student{Name: "Lin", Email: "lin@example.com"}
	require.NoError(t, db.Create(&student).Error)

	total, err := repo.SumGradedScores(ctx, student.ID)
	require.NoError(t, err)
	require.Zero(t, total)

	rows := []models.AssessmentResponse{
		{AssessmentID: 1, StudentID: student.ID, Status: models.AssessmentStatusCompleted, Score: floatPtr(80)},
		{AssessmentID: 2, StudentID: student.ID, Status: models.AssessmentStatusCompleted, Score: floatPtr(0)},
		{AssessmentID: 3, StudentID: student.ID, Status: models.AssessmentStatusCompleted},
		{AssessmentID: 4, StudentID: student.ID, Status: models.AssessmentStatusPending},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}
	projects := []models.ProjectSubmission{
		{CourseID: 1, WeekID: 1, StudentID: student.ID, Status: models.ProjectStatusGraded, Score: floatPtr(45.5)},
		{CourseID: 1, WeekID: 2, StudentID: student.ID, Status: models.ProjectStatusPending},
	}
	for i := range projects {
		require.NoError(t, db.Create(&projects[i]).Error)
	}

	total, err = repo.SumGradedScores(ctx, student.ID)
	require.NoError(t, err)
	require.InDelta(t, 125.5, total, 0.001)

	counts, err := repo.CountGraded(ctx, student.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), counts.AssessmentsGraded)
	require.Equal(t, int64(1), counts.AssessmentsPassed)
	require.Equal(t, int64(1), counts.ProjectsGraded)
	require.Equal(t, int64(0), counts.ProjectsPassed)
	require.Equal(t, int64(3), counts.AwaitingReview)

	now := time.Now()
	require.NoError(t, repo.UpdateTotalScore(ctx, student.ID, total, now))
	stored, err := repo.GetByID(ctx, student.ID)
	require.NoError(t, err)
	require.InDelta(t, 125.5, stored.TotalScore, 0.001)
	require.NotNil(t, stored.ScoreUpdatedAt)

	require.ErrorIs(t, repo.UpdateTotalScore(ctx, 999, 1, now), gorm.ErrRecordNotFound)
}

func TestGradeHistoryRepositoryPendingLifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGradeHistoryRepository(db)
	ctx := context.Background()

	entries := []models.GradeHistory{
		{StudentID: 2, EntityType: models.GradeEntityAssessmentResponse, EntityID: 1, RawScore: 70, FinalScore: 70, GradedBy: 9, GradedAt: time.Now()},
		{StudentID: 1, EntityType: models.GradeEntityProjectSubmission, EntityID: 2, RawScore: 40, FinalScore: 40, GradedBy: 9, GradedAt: time.Now()},
		{StudentID: 2, EntityType: models.GradeEntityAssessmentResponse, EntityID: 3, RawScore: 90, FinalScore: 88, GradedBy: 9, GradedAt: time.Now()},
	}
	for i := range entries {
		require.NoError(t, db.Create(&entries[i]).Error)
	}

	students, err := repo.PendingStudentIDs(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, []uint{1, 2}, students)

	ids, err := repo.PendingIDsForStudent(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, []uint{entries[0].ID, entries[2].ID}, ids)

	require.NoError(t, repo.MarkRecomputed(ctx, ids, time.Now()))
	require.NoError(t, repo.MarkRecomputed(ctx, nil, time.Now()))

	students, err = repo.PendingStudentIDs(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, []uint{1}, students)
}
