package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-progress-api/internal/dto"
	"github.com/noah-isme/gema-progress-api/internal/models"
	"github.com/noah-isme/gema-progress-api/internal/repository"
)

func newSubmissionFixture(t *testing.T, deadline *time.Time) (*gorm.DB, twoWeekCourse, *recordingBus, *submissionService) {
	t.Helper()
	db := newTestDB(t)
	seed := seedTwoWeekCourse(t, db, deadline)
	bus := &recordingBus{}

	progress := NewCourseProgressService(repository.NewProgressStore(db), repository.NewCourseRepository(db), zerolog.Nop())
	svc := NewSubmissionService(SubmissionDependencies{
		Assessments: repository.NewAssessmentRepository(db),
		Responses:   repository.NewAssessmentResponseRepository(db),
		Projects:    repository.NewProjectSubmissionRepository(db),
		Completions: repository.NewWeekCompletionRepository(db),
		Progress:    progress,
		Events:      bus,
	}, newValidator(), zerolog.Nop()).(*submissionService)
	return db, seed, bus, svc
}

func TestSubmitAssessmentCreatesPendingResponse(t *testing.T) {
	db, seed, bus, svc := newSubmissionFixture(t, nil)

	view, err := svc.SubmitAssessment(context.Background(), seed.student.ID, seed.assessment.ID, dto.SubmitAssessmentRequest{Content: "  func reverse() {}  "})
	require.NoError(t, err)
	require.Equal(t, models.AssessmentStatusPending, view.Status)
	require.False(t, view.Late)

	var stored models.AssessmentResponse
	require.NoError(t, db.First(&stored, view.ID).Error)
	require.Equal(t, "func reverse() {}", stored.Content)
	require.NotNil(t, stored.SubmittedAt)

	require.Len(t, bus.events, 1)
	require.Equal(t, EventAssessmentSubmitted, bus.events[0].Kind)
}

func TestSubmitAssessmentFlagsLateSubmission(t *testing.T) {
	deadline := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	_, seed, _, svc := newSubmissionFixture(t, &deadline)
	svc.now = func() time.Time { return deadline.Add(time.Minute) }

	view, err := svc.SubmitAssessment(context.Background(), seed.student.ID, seed.assessment.ID, dto.SubmitAssessmentRequest{Content: "late"})
	require.NoError(t, err)
	require.True(t, view.Late)
}

func TestResubmissionClearsPreviousScore(t *testing.T) {
	db, seed, _, svc := newSubmissionFixture(t, nil)
	graded := models.AssessmentResponse{AssessmentID: seed.assessment.ID, StudentID: seed.student.ID, Status: models.AssessmentStatusCompleted, Score: scorePtr(30), Feedback: "Try again"}
	require.NoError(t, db.Create(&graded).Error)

	view, err := svc.SubmitAssessment(context.Background(), seed.student.ID, seed.assessment.ID, dto.SubmitAssessmentRequest{Content: "second attempt"})
	require.NoError(t, err)
	require.Equal(t, graded.ID, view.ID)

	var stored models.AssessmentResponse
	require.NoError(t, db.First(&stored, graded.ID).Error)
	require.Equal(t, models.AssessmentStatusPending, stored.Status)
	require.Nil(t, stored.Score)
	require.Empty(t, stored.Feedback)
}

func TestResubmissionQueuesRecomputeWhenEventIsLost(t *testing.T) {
	db, seed, bus, svc := newSubmissionFixture(t, nil)
	bus.err = errors.New("broker unavailable")

	graded := models.AssessmentResponse{AssessmentID: seed.assessment.ID, StudentID: seed.student.ID, Status: models.AssessmentStatusCompleted, Score: scorePtr(30)}
	require.NoError(t, db.Create(&graded).Error)
	require.NoError(t, db.Model(&models.Student{}).Where("id = ?", seed.student.ID).Update("total_score", 30).Error)

	_, err := svc.SubmitAssessment(context.Background(), seed.student.ID, seed.assessment.ID, dto.SubmitAssessmentRequest{Content: "second attempt"})
	require.NoError(t, err)

	var entries []models.GradeHistory
	require.NoError(t, db.Where("student_id = ?", seed.student.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	require.Equal(t, models.GradeActionReset, entries[0].Action)
	require.Equal(t, graded.ID, entries[0].EntityID)
	require.Nil(t, entries[0].RecomputedAt)
	require.Len(t, bus.events, 1)
	require.NotNil(t, bus.events[0].HistoryID)
	require.Equal(t, entries[0].ID, *bus.events[0].HistoryID)

	scores := NewTotalScoreService(repository.NewStudentRepository(db), repository.NewGradeHistoryRepository(db), nil, zerolog.Nop())
	recomputed, err := scores.ReconcilePending(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, 1, recomputed)

	var student models.Student
	require.NoError(t, db.First(&student, seed.student.ID).Error)
	require.Zero(t, student.TotalScore)
}

func TestFirstSubmissionWritesNoHistory(t *testing.T) {
	db, seed, bus, svc := newSubmissionFixture(t, nil)

	_, err := svc.SubmitAssessment(context.Background(), seed.student.ID, seed.assessment.ID, dto.SubmitAssessmentRequest{Content: "first attempt"})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.GradeHistory{}).Count(&count).Error)
	require.Zero(t, count)
	require.Nil(t, bus.events[0].HistoryID)
}

func TestProjectResubmissionWritesResetHistory(t *testing.T) {
	db, seed, _, svc := newSubmissionFixture(t, nil)
	require.NoError(t, db.Create(&models.AssessmentResponse{AssessmentID: seed.assessment.ID, StudentID: seed.student.ID, Status: models.AssessmentStatusCompleted, Score: scorePtr(80)}).Error)
	graded := models.ProjectSubmission{CourseID: seed.course.ID, WeekID: seed.week2.ID, StudentID: seed.student.ID, Status: models.ProjectStatusGraded, Score: scorePtr(70)}
	require.NoError(t, db.Create(&graded).Error)

	view, err := svc.SubmitProject(context.Background(), seed.student.ID, seed.week2.ID, dto.SubmitProjectRequest{RepositoryURL: "https://git.example.com/grace/project-v2"})
	require.NoError(t, err)
	require.Equal(t, graded.ID, view.ID)

	var entry models.GradeHistory
	require.NoError(t, db.Where("entity_type = ?", models.GradeEntityProjectSubmission).First(&entry).Error)
	require.Equal(t, models.GradeActionReset, entry.Action)
	require.Equal(t, graded.ID, entry.EntityID)
	require.InDelta(t, 70.0, entry.Metadata["previous_score"], 0.001)
}

func TestSubmitAssessmentUnknownAssessment(t *testing.T) {
	_, seed, _, svc := newSubmissionFixture(t, nil)

	_, err := svc.SubmitAssessment(context.Background(), seed.student.ID, 999, dto.SubmitAssessmentRequest{Content: "x"})
	require.ErrorIs(t, err, ErrAssessmentNotFound)
}

func TestSubmitProjectIntoLockedWeek(t *testing.T) {
	_, seed, bus, svc := newSubmissionFixture(t, nil)

	_, err := svc.SubmitProject(context.Background(), seed.student.ID, seed.week2.ID, dto.SubmitProjectRequest{RepositoryURL: "https://git.example.com/grace/project"})
	require.ErrorIs(t, err, ErrWeekLocked)
	require.Empty(t, bus.events)
}

func TestSubmitProjectAfterPassingPreviousWeek(t *testing.T) {
	db, seed, bus, svc := newSubmissionFixture(t, nil)
	require.NoError(t, db.Create(&models.AssessmentResponse{AssessmentID: seed.assessment.ID, StudentID: seed.student.ID, Status: models.AssessmentStatusCompleted, Score: scorePtr(50)}).Error)

	view, err := svc.SubmitProject(context.Background(), seed.student.ID, seed.week2.ID, dto.SubmitProjectRequest{RepositoryURL: "https://git.example.com/grace/project"})
	require.NoError(t, err)
	require.Equal(t, models.ProjectStatusPending, view.Status)

	var stored models.ProjectSubmission
	require.NoError(t, db.First(&stored, view.ID).Error)
	require.Equal(t, seed.course.ID, stored.CourseID)
	require.Equal(t, EventProjectSubmitted, bus.events[len(bus.events)-1].Kind)
}

func TestSubmitProjectRejectsInvalidURL(t *testing.T) {
	_, seed, _, svc := newSubmissionFixture(t, nil)

	_, err := svc.SubmitProject(context.Background(), seed.student.ID, seed.week1.ID, dto.SubmitProjectRequest{RepositoryURL: "not a url"})
	require.Error(t, err)
}

func TestMarkWeekComplete(t *testing.T) {
	db, seed, _, svc := newSubmissionFixture(t, nil)
	ctx := context.Background()

	_, err := svc.MarkWeekComplete(ctx, seed.student.ID, seed.week1.ID)
	require.NoError(t, err)
	_, err = svc.MarkWeekComplete(ctx, seed.student.ID, seed.week1.ID)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.WeekCompletion{}).Where("student_id = ?", seed.student.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)

	_, err = svc.MarkWeekComplete(ctx, seed.student.ID, seed.week2.ID)
	require.ErrorIs(t, err, ErrWeekLocked)
}
