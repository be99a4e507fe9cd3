package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-progress-api/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func scorePtr(v float64) *float64 {
	return &v
}

// twoWeekCourse mirrors the canonical scenario: week 1 holds one assessment,
// week 2 is a project week with nothing else.
type twoWeekCourse struct {
	student    models.Student
	course     models.Course
	week1      models.Week
	week2      models.Week
	assessment models.Assessment
}

func seedTwoWeekCourse(t *testing.T, db *gorm.DB, deadline *time.Time) twoWeekCourse {
	t.Helper()

	student := models.Student{Name: "Grace", Email: "grace@example.com"}
	require.NoError(t, db.Create(&student).Error)

	course := models.Course{Slug: "go-fundamentals", Title: "Go Fundamentals"}
	require.NoError(t, db.Create(&course).Error)

	month := models.Month{CourseID: course.ID, Title: "Month 1", Order: 1}
	require.NoError(t, db.Create(&month).Error)

	week1 := models.Week{MonthID: month.ID, Title: "Week 1", Order: 1}
	week2 := models.Week{MonthID: month.ID, Title: "Week 2", Order: 2, IsProject: true}
	require.NoError(t, db.Create(&week1).Error)
	require.NoError(t, db.Create(&week2).Error)

	assessment := models.Assessment{WeekID: week1.ID, Title: "Slices", Topic: "Collections", Problem: "Reverse a slice", Deadline: deadline, SubmissionFormat: "text"}
	require.NoError(t, db.Create(&assessment).Error)

	return twoWeekCourse{student: student, course: course, week1: week1, week2: week2, assessment: assessment}
}
