package api

import (
	"jobtrack/internal/database"
	"jobtrack/internal/schema"
)

func presentNote(n database.JobNote) schema.JobNote {
	return schema.JobNote{
		ID:        n.ID,
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
		JobID:     n.JobID,
	}
}

func presentNotes(notes []database.JobNote) []schema.JobNote {
	out := make([]schema.JobNote, 0, len(notes))
	for _, n := range notes {
		out = append(out, presentNote(n))
	}
	return out
}

func presentJob(j database.Job) schema.Job {
	return schema.Job{
		ID:              j.ID,
		Title:           j.Title,
		Company:         j.Company,
		Location:        j.Location,
		Description:     j.Description,
		Status:          j.Status,
		ApplicationDate: j.ApplicationDate,
		CreatedAt:       j.CreatedAt,
		UpdatedAt:       j.UpdatedAt,
		OwnerID:         j.OwnerID,
		Notes:           presentNotes(j.Notes),
	}
}

func presentJobs(jobs []database.Job) []schema.Job {
	out := make([]schema.Job, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, presentJob(j))
	}
	return out
}

func presentUser(u database.User) schema.User {
	return schema.User{
		ID:        u.ID,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		Jobs:      presentJobs(u.Jobs),
	}
}
