package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"jobtrack/internal/database"
	"jobtrack/internal/database/dbtest"
	"jobtrack/internal/store"
)

func strPtr(s string) *string { return &s }

func newUser(t *testing.T, db *gorm.DB, email string) *database.User {
	t.Helper()
	user, err := store.CreateUser(context.Background(), db, email, "hash")
	require.NoError(t, err)
	return user
}

func newJob(t *testing.T, db *gorm.DB, ownerID uint, in store.JobInput) *database.Job {
	t.Helper()
	job, err := store.CreateJob(context.Background(), db, ownerID, in)
	require.NoError(t, err)
	return job
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	first, err := store.CreateUser(ctx, db, "a@x.com", "hash")
	require.NoError(t, err)
	assert.True(t, first.IsActive)

	_, err = store.CreateUser(ctx, db, "a@x.com", "other")
	require.ErrorIs(t, err, store.ErrEmailTaken)

	var n int64
	require.NoError(t, db.Model(&database.User{}).Where("email = ?", "a@x.com").Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	db := dbtest.Open(t)

	_, err := store.GetUserByEmail(context.Background(), db, "missing@x.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSetUserActive(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	newUser(t, db, "a@x.com")

	require.NoError(t, store.SetUserActive(ctx, db, "a@x.com", false))
	user, err := store.GetUserByEmail(ctx, db, "a@x.com")
	require.NoError(t, err)
	assert.False(t, user.IsActive)

	require.ErrorIs(t, store.SetUserActive(ctx, db, "nobody@x.com", false), store.ErrNotFound)
}

func TestListJobs_Filters(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	owner := newUser(t, db, "a@x.com")
	other := newUser(t, db, "b@x.com")

	newJob(t, db, owner.ID, store.JobInput{Title: "Software Engineer", Company: "Acme Corp", Status: "applied"})
	newJob(t, db, owner.ID, store.JobInput{Title: "Designer", Company: "Globex", Status: "interview",
		Description: strPtr("work with the engineering team")})
	newJob(t, db, owner.ID, store.JobInput{Title: "Analyst", Company: "Initech", Status: "applied"})
	newJob(t, db, other.ID, store.JobInput{Title: "Engineer", Company: "Acme", Status: "applied"})

	cases := []struct {
		name   string
		filter store.JobFilter
		titles []string
	}{
		{"status", store.JobFilter{Status: "applied"}, []string{"Analyst", "Software Engineer"}},
		{"company substring any case", store.JobFilter{Company: "acme"}, []string{"Software Engineer"}},
		{"search spans title and description", store.JobFilter{Search: "ENGINEER"}, []string{"Designer", "Software Engineer"}},
		{"search spans company", store.JobFilter{Search: "glob"}, []string{"Designer"}},
		{"filters combine", store.JobFilter{Status: "applied", Search: "engineer"}, []string{"Software Engineer"}},
		{"wildcards are literal", store.JobFilter{Search: "%"}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.filter.Limit = 100
			jobs, total, err := store.ListJobs(ctx, db, owner.ID, tc.filter)
			require.NoError(t, err)

			titles := make([]string, 0, len(jobs))
			for _, j := range jobs {
				assert.Equal(t, owner.ID, j.OwnerID)
				titles = append(titles, j.Title)
			}
			assert.ElementsMatch(t, tc.titles, titles)
			assert.EqualValues(t, len(tc.titles), total)
		})
	}
}

func TestListJobs_PagesCoverFilteredSetOnce(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	owner := newUser(t, db, "a@x.com")

	var created []uint
	for i := 0; i < 7; i++ {
		job := newJob(t, db, owner.ID, store.JobInput{Title: fmt.Sprintf("job-%d", i), Company: "Acme", Status: "applied"})
		created = append(created, job.ID)
	}
	newJob(t, db, owner.ID, store.JobInput{Title: "rejected", Company: "Acme", Status: "rejected"})

	const size = 3
	var seen []uint
	for offset := 0; ; offset += size {
		jobs, total, err := store.ListJobs(ctx, db, owner.ID, store.JobFilter{Offset: offset, Limit: size, Status: "applied"})
		require.NoError(t, err)
		require.EqualValues(t, 7, total)
		if len(jobs) == 0 {
			break
		}
		for _, j := range jobs {
			seen = append(seen, j.ID)
		}
	}

	want := make([]uint, 0, len(created))
	for i := len(created) - 1; i >= 0; i-- {
		want = append(want, created[i])
	}
	assert.Equal(t, want, seen)
}

func TestGetJob_ScopedByOwner(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	owner := newUser(t, db, "a@x.com")
	other := newUser(t, db, "b@x.com")
	job := newJob(t, db, owner.ID, store.JobInput{Title: "SWE", Company: "Acme", Status: "applied"})

	got, err := store.GetJob(ctx, db, job.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "SWE", got.Title)

	_, err = store.GetJob(ctx, db, job.ID, other.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = store.UpdateJob(ctx, db, job.ID, other.ID, store.JobInput{Title: "hijack", Company: "X", Status: "x"})
	require.ErrorIs(t, err, store.ErrNotFound)

	require.ErrorIs(t, store.DeleteJob(ctx, db, job.ID, other.ID), store.ErrNotFound)

	got, err = store.GetJob(ctx, db, job.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "SWE", got.Title)
}

func TestUpdateJob_ReplacesEveryField(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	owner := newUser(t, db, "a@x.com")
	applied := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	job := newJob(t, db, owner.ID, store.JobInput{
		Title:           "SWE",
		Company:         "Acme",
		Location:        strPtr("Berlin"),
		Description:     strPtr("backend"),
		Status:          "applied",
		ApplicationDate: &applied,
	})

	updated, err := store.UpdateJob(ctx, db, job.ID, owner.ID, store.JobInput{
		Title:   "Staff SWE",
		Company: "Acme Corp",
		Status:  "offer",
	})
	require.NoError(t, err)

	assert.Equal(t, "Staff SWE", updated.Title)
	assert.Equal(t, "Acme Corp", updated.Company)
	assert.Equal(t, "offer", updated.Status)
	assert.Nil(t, updated.Location)
	assert.Nil(t, updated.Description)
	assert.Nil(t, updated.ApplicationDate)
}

func TestDeleteJob_CascadesNotes(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	owner := newUser(t, db, "a@x.com")
	job := newJob(t, db, owner.ID, store.JobInput{Title: "SWE", Company: "Acme", Status: "applied"})
	keep := newJob(t, db, owner.ID, store.JobInput{Title: "PM", Company: "Acme", Status: "applied"})

	_, err := store.CreateJobNote(ctx, db, job.ID, "first call")
	require.NoError(t, err)
	_, err = store.CreateJobNote(ctx, db, job.ID, "second call")
	require.NoError(t, err)
	_, err = store.CreateJobNote(ctx, db, keep.ID, "unrelated")
	require.NoError(t, err)

	require.NoError(t, store.DeleteJob(ctx, db, job.ID, owner.ID))

	var remaining int64
	require.NoError(t, db.Model(&database.JobNote{}).Where("job_id = ?", job.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)

	_, total, err := store.ListJobNotes(ctx, db, keep.ID, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestJobNotes_ScopedByJob(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	owner := newUser(t, db, "a@x.com")
	job := newJob(t, db, owner.ID, store.JobInput{Title: "SWE", Company: "Acme", Status: "applied"})
	otherJob := newJob(t, db, owner.ID, store.JobInput{Title: "PM", Company: "Acme", Status: "applied"})

	first, err := store.CreateJobNote(ctx, db, job.ID, "first")
	require.NoError(t, err)
	second, err := store.CreateJobNote(ctx, db, job.ID, "second")
	require.NoError(t, err)

	notes, total, err := store.ListJobNotes(ctx, db, job.ID, 0, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, notes, 1)
	assert.Equal(t, second.ID, notes[0].ID)

	_, err = store.GetJobNote(ctx, db, first.ID, otherJob.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = store.UpdateJobNote(ctx, db, first.ID, otherJob.ID, "moved")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, store.DeleteJobNote(ctx, db, first.ID, otherJob.ID), store.ErrNotFound)

	updated, err := store.UpdateJobNote(ctx, db, first.ID, job.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	require.NoError(t, store.DeleteJobNote(ctx, db, first.ID, job.ID))
	_, total, err = store.ListJobNotes(ctx, db, job.ID, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestGetUserWithJobs(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	owner := newUser(t, db, "a@x.com")
	job := newJob(t, db, owner.ID, store.JobInput{Title: "SWE", Company: "Acme", Status: "applied"})
	_, err := store.CreateJobNote(ctx, db, job.ID, "note")
	require.NoError(t, err)

	user, err := store.GetUserWithJobs(ctx, db, owner.ID)
	require.NoError(t, err)
	require.Len(t, user.Jobs, 1)
	require.Len(t, user.Jobs[0].Notes, 1)
	assert.Equal(t, "note", user.Jobs[0].Notes[0].Content)
}
