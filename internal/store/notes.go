package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"jobtrack/internal/database"
)

// ListJobNotes 按时间倒序返回一页备注及总数。调用方需先用 GetJob 确认父记录归属。
func ListJobNotes(ctx context.Context, tx *gorm.DB, jobID uint, offset, limit int) ([]database.JobNote, int64, error) {
	var total int64
	if err := tx.WithContext(ctx).
		Model(&database.JobNote{}).
		Where("job_id = ?", jobID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count job notes: %w", err)
	}

	notes := []database.JobNote{}
	if total == 0 {
		return notes, 0, nil
	}

	if err := tx.WithContext(ctx).
		Where("job_id = ?", jobID).
		Scopes(newestFirst).
		Offset(offset).
		Limit(limit).
		Find(&notes).Error; err != nil {
		return nil, 0, fmt.Errorf("list job notes: %w", err)
	}
	return notes, total, nil
}

func CreateJobNote(ctx context.Context, tx *gorm.DB, jobID uint, content string) (*database.JobNote, error) {
	note := database.JobNote{JobID: jobID, Content: content}
	if err := tx.WithContext(ctx).Create(&note).Error; err != nil {
		return nil, fmt.Errorf("insert job note: %w", err)
	}
	return &note, nil
}

// GetJobNote 仅在备注属于 jobID 时返回。
func GetJobNote(ctx context.Context, tx *gorm.DB, noteID, jobID uint) (*database.JobNote, error) {
	var note database.JobNote
	err := tx.WithContext(ctx).
		Where("id = ? AND job_id = ?", noteID, jobID).
		First(&note).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query job note: %w", err)
	}
	return &note, nil
}

func UpdateJobNote(ctx context.Context, tx *gorm.DB, noteID, jobID uint, content string) (*database.JobNote, error) {
	note, err := GetJobNote(ctx, tx, noteID, jobID)
	if err != nil {
		return nil, err
	}
	if err := tx.WithContext(ctx).Model(note).Update("content", content).Error; err != nil {
		return nil, fmt.Errorf("update job note: %w", err)
	}
	return GetJobNote(ctx, tx, noteID, jobID)
}

func DeleteJobNote(ctx context.Context, tx *gorm.DB, noteID, jobID uint) error {
	result := tx.WithContext(ctx).
		Where("id = ? AND job_id = ?", noteID, jobID).
		Delete(&database.JobNote{})
	if result.Error != nil {
		return fmt.Errorf("delete job note: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
