package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-progress-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

type seededCourse struct {
	course  models.Course
	months  []models.Month
	weeks   []models.Week
	student models.Student
}

// seedCourse creates two months: month 1 holds weeks 1 (one assessment) and 2
// (project week); month 2 holds week 3 (read-only). Rows are inserted out of
// order to make sure queries sort explicitly.
func seedCourse(t *testing.T, db *gorm.DB) seededCourse {
	t.Helper()

	student := models.Student{Name: "Ada", Email: fmt.Sprintf("ada-%d@example.com", time.Now().UnixNano())}
	require.NoError(t, db.Create(&student).Error)

	course := models.Course{Slug: "backend", Title: "Backend Engineering"}
	require.NoError(t, db.Create(&course).Error)

	second := models.Month{CourseID: course.ID, Title: "Month 2", Order: 2}
	first := models.Month{CourseID: course.ID, Title: "Month 1", Order: 1}
	require.NoError(t, db.Create(&second).Error)
	require.NoError(t, db.Create(&first).Error)

	week3 := models.Week{MonthID: second.ID, Title: "Reading", Order: 1}
	week2 := models.Week{MonthID: first.ID, Title: "Project", Order: 2, IsProject: true}
	week1 := models.Week{MonthID: first.ID, Title: "Basics", Order: 1}
	require.NoError(t, db.Create(&week3).Error)
	require.NoError(t, db.Create(&week2).Error)
	require.NoError(t, db.Create(&week1).Error)

	deadline := time.Now().Add(24 * time.Hour)
	assessment := models.Assessment{WeekID: week1.ID, Title: "Quiz", Topic: "HTTP", Problem: "Explain verbs", Deadline: &deadline, SubmissionFormat: "text"}
	require.NoError(t, db.Create(&assessment).Error)
	week1.Assessments = []models.Assessment{assessment}

	return seededCourse{
		course:  course,
		months:  []models.Month{first, second},
		weeks:   []models.Week{week1, week2, week3},
		student: student,
	}
}
