package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"jobtrack/internal/api/middleware"
	"jobtrack/internal/database"
	"jobtrack/internal/schema"
	"jobtrack/internal/store"
)

const jobNotFound = "Job not found"

// JobHandler 处理当前用户的求职记录。
type JobHandler struct {
	uow *database.UnitOfWork
}

// NewJobHandler 构造求职记录处理器。
func NewJobHandler(uow *database.UnitOfWork) *JobHandler {
	return &JobHandler{uow: uow}
}

func jobInput(req schema.JobCreate) store.JobInput {
	return store.JobInput{
		Title:           req.Title,
		Company:         req.Company,
		Location:        req.Location,
		Description:     req.Description,
		Status:          req.Status,
		ApplicationDate: req.ApplicationTime(),
	}
}

// Create 新建一条求职记录。
func (h *JobHandler) Create(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c, "Could not validate credentials")
		return
	}

	var req schema.JobCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		ValidationFailed(c, err)
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)

	var job *database.Job
	err := h.uow.Do(ctx, func(tx *gorm.DB) error {
		var err error
		job, err = store.CreateJob(ctx, tx, userID, jobInput(req))
		return err
	})
	if err != nil {
		respondError(c, logger, err, jobNotFound)
		return
	}

	logger.Info("job created", slog.Uint64("job_id", uint64(job.ID)))
	c.JSON(http.StatusOK, presentJob(*job))
}

// List 分页返回当前用户的记录，支持 status、company 与 search 过滤。
func (h *JobHandler) List(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c, "Could not validate credentials")
		return
	}

	var q schema.JobListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		ValidationFailed(c, err)
		return
	}

	ctx := c.Request.Context()
	filter := store.JobFilter{
		Offset:  q.Skip,
		Limit:   q.Limit,
		Status:  q.Status,
		Company: q.Company,
		Search:  q.Search,
	}

	var (
		jobs  []database.Job
		total int64
	)
	err := h.uow.Do(ctx, func(tx *gorm.DB) error {
		var err error
		jobs, total, err = store.ListJobs(ctx, tx, userID, filter)
		return err
	})
	if err != nil {
		respondError(c, middleware.LoggerFromContext(c), err, jobNotFound)
		return
	}

	c.JSON(http.StatusOK, schema.NewPage(presentJobs(jobs), total, q.Skip, q.Limit))
}

// Get 返回单条记录及其备注。
func (h *JobHandler) Get(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c, "Could not validate credentials")
		return
	}
	jobID, ok := pathID(c, "id")
	if !ok {
		NotFound(c, jobNotFound)
		return
	}

	ctx := c.Request.Context()
	var job *database.Job
	err := h.uow.Do(ctx, func(tx *gorm.DB) error {
		var err error
		job, err = store.GetJob(ctx, tx, jobID, userID)
		return err
	})
	if err != nil {
		respondError(c, middleware.LoggerFromContext(c), err, jobNotFound)
		return
	}

	c.JSON(http.StatusOK, presentJob(*job))
}

// Update 以请求体整体替换记录的全部可变字段。
func (h *JobHandler) Update(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c, "Could not validate credentials")
		return
	}

	var req schema.JobCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		ValidationFailed(c, err)
		return
	}
	jobID, ok := pathID(c, "id")
	if !ok {
		NotFound(c, jobNotFound)
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c).With(slog.Uint64("job_id", uint64(jobID)))

	var job *database.Job
	err := h.uow.Do(ctx, func(tx *gorm.DB) error {
		var err error
		job, err = store.UpdateJob(ctx, tx, jobID, userID, jobInput(req))
		return err
	})
	if err != nil {
		respondError(c, logger, err, jobNotFound)
		return
	}

	logger.Info("job updated")
	c.JSON(http.StatusOK, presentJob(*job))
}

// Delete 删除记录，其备注一并删除。
func (h *JobHandler) Delete(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c, "Could not validate credentials")
		return
	}
	jobID, ok := pathID(c, "id")
	if !ok {
		NotFound(c, jobNotFound)
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c).With(slog.Uint64("job_id", uint64(jobID)))

	err := h.uow.Do(ctx, func(tx *gorm.DB) error {
		return store.DeleteJob(ctx, tx, jobID, userID)
	})
	if err != nil {
		respondError(c, logger, err, jobNotFound)
		return
	}

	logger.Info("job deleted")
	c.JSON(http.StatusOK, schema.Message{Message: "Job deleted successfully"})
}
