package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/simpadu-api/internal/models"
)

func TestMemoryRepositoryStudentCourses(t *testing.T) {
	repo := NewAcademicMemoryRepository(DefaultAcademicSeed())
	courses, err := repo.ListStudentCourses(context.Background(), "4")
	require.NoError(t, err)

	codes := make([]string, len(courses))
	for i, c := range courses {
		codes[i] = c.Code
	}
	assert.Equal(t, []string{"CSC101", "CSC201", "CSC301", "CSC302"}, codes)

	_, err = repo.FindCourse(context.Background(), "404")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepositoryUpsertSameDayOverwrites(t *testing.T) {
	ctx := context.Background()
	repo := NewAcademicMemoryRepository(DefaultAcademicSeed())
	today := models.MustDate("2024-09-02")

	first, created, err := repo.UpsertAttendance(ctx, models.AttendanceRecord{StudentID: "4", CourseID: "1", Date: today, Status: models.AttendancePresent})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "7", first.ID)

	second, created, err := repo.UpsertAttendance(ctx, models.AttendanceRecord{StudentID: "4", CourseID: "1", Date: today, Status: models.AttendanceSick})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	records, err := repo.ListAttendance(ctx, "4", "1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.AttendanceSick, records[0].Status)
}

func TestMemoryRepositoryConcurrentUpserts(t *testing.T) {
	ctx := context.Background()
	repo := NewAcademicMemoryRepository(AcademicSeed{})
	today := models.MustDate("2024-09-02")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			status := models.AttendancePresent
			if i%2 == 0 {
				status = models.AttendanceExcused
			}
			_, _, err := repo.UpsertAttendance(ctx, models.AttendanceRecord{StudentID: "4", CourseID: "2", Date: today, Status: status})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	records, err := repo.ListAttendance(ctx, "4", "")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestMemoryRepositoryGradeSheetIsCopied(t *testing.T) {
	ctx := context.Background()
	repo := NewAcademicMemoryRepository(DefaultAcademicSeed())

	sheet, err := repo.GradeSheet(ctx, "4")
	require.NoError(t, err)
	require.Len(t, sheet.Terms, 4)
	sheet.Terms[0].Entries[0].Grade = "E"

	again, _ := repo.GradeSheet(ctx, "4")
	assert.Equal(t, "A", again.Terms[0].Entries[0].Grade)

	empty, err := repo.GradeSheet(ctx, "3")
	require.NoError(t, err)
	assert.Empty(t, empty.Terms)
}

func TestMemoryRepositoryCurrentTerm(t *testing.T) {
	term, err := NewAcademicMemoryRepository(DefaultAcademicSeed()).CurrentTerm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Semester Ganjil 2024/2025", term.Name)

	_, err = NewAcademicMemoryRepository(AcademicSeed{}).CurrentTerm(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}
