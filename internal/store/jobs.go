package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"jobtrack/internal/database"
)

// JobInput 包含全部可变字段。更新时整体替换，可选字段为 nil 即清空。
type JobInput struct {
	Title           string
	Company         string
	Location        *string
	Description     *string
	Status          string
	ApplicationDate *time.Time
}

// JobFilter 描述分页与过滤条件，空字符串表示不过滤。
type JobFilter struct {
	Offset  int
	Limit   int
	Status  string
	Company string
	Search  string
}

func CreateJob(ctx context.Context, tx *gorm.DB, ownerID uint, in JobInput) (*database.Job, error) {
	job := database.Job{OwnerID: ownerID}
	applyJobInput(&job, in)
	if err := tx.WithContext(ctx).Create(&job).Error; err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	job.Notes = []database.JobNote{}
	return &job, nil
}

// ListJobs 按时间倒序返回一页匹配记录，以及分页前的匹配总数。
func ListJobs(ctx context.Context, tx *gorm.DB, ownerID uint, f JobFilter) ([]database.Job, int64, error) {
	var total int64
	if err := tx.WithContext(ctx).
		Model(&database.Job{}).
		Scopes(ownedBy(ownerID), matching(f)).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	jobs := []database.Job{}
	if total == 0 {
		return jobs, 0, nil
	}

	if err := tx.WithContext(ctx).
		Scopes(ownedBy(ownerID), matching(f), newestFirst).
		Preload("Notes", newestFirst).
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&jobs).Error; err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, total, nil
}

// GetJob 仅在记录属于 ownerID 时返回。
func GetJob(ctx context.Context, tx *gorm.DB, jobID, ownerID uint) (*database.Job, error) {
	var job database.Job
	err := tx.WithContext(ctx).
		Scopes(ownedBy(ownerID)).
		Preload("Notes", newestFirst).
		Where("id = ?", jobID).
		First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query job: %w", err)
	}
	return &job, nil
}

func UpdateJob(ctx context.Context, tx *gorm.DB, jobID, ownerID uint, in JobInput) (*database.Job, error) {
	job, err := GetJob(ctx, tx, jobID, ownerID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{
		"title":            in.Title,
		"company":          in.Company,
		"location":         in.Location,
		"description":      in.Description,
		"status":           in.Status,
		"application_date": in.ApplicationDate,
	}
	if err := tx.WithContext(ctx).Model(job).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update job: %w", err)
	}
	return GetJob(ctx, tx, jobID, ownerID)
}

// DeleteJob 在调用方的事务中删除记录及其备注。
func DeleteJob(ctx context.Context, tx *gorm.DB, jobID, ownerID uint) error {
	job, err := GetJob(ctx, tx, jobID, ownerID)
	if err != nil {
		return err
	}

	if err := tx.WithContext(ctx).Where("job_id = ?", job.ID).Delete(&database.JobNote{}).Error; err != nil {
		return fmt.Errorf("delete job notes: %w", err)
	}
	if err := tx.WithContext(ctx).Delete(&database.Job{}, job.ID).Error; err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	return nil
}

func applyJobInput(job *database.Job, in JobInput) {
	job.Title = in.Title
	job.Company = in.Company
	job.Location = in.Location
	job.Description = in.Description
	job.Status = in.Status
	job.ApplicationDate = in.ApplicationDate
}

func ownedBy(ownerID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("owner_id = ?", ownerID)
	}
}

func matching(f JobFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		if f.Company != "" {
			db = db.Where(`LOWER(company) LIKE ? ESCAPE '\'`, containsPattern(f.Company))
		}
		if f.Search != "" {
			pattern := containsPattern(f.Search)
			db = db.Where(
				`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(company) LIKE ? ESCAPE '\' OR LOWER(COALESCE(description, '')) LIKE ? ESCAPE '\')`,
				pattern, pattern, pattern,
			)
		}
		return db
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern 构造小写的包含匹配 LIKE 模式，term 中的通配符按字面处理。
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}
