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

const noteNotFound = "Note not found"

// NoteHandler 处理求职记录下的备注。每个操作都先按当前用户解析父记录。
type NoteHandler struct {
	uow *database.UnitOfWork
}

func NewNoteHandler(uow *database.UnitOfWork) *NoteHandler {
	return &NoteHandler{uow: uow}
}

// noteTarget 解析当前用户与父记录 ID；无法继续时自行写出响应并返回 false。
func noteTarget(c *gin.Context) (userID, jobID uint, ok bool) {
	userID, ok = userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c, "Could not validate credentials")
		return 0, 0, false
	}
	jobID, ok = pathID(c, "id")
	if !ok {
		NotFound(c, jobNotFound)
		return 0, 0, false
	}
	return userID, jobID, true
}

func (h *NoteHandler) Create(c *gin.Context) {
	userID, jobID, ok := noteTarget(c)
	if !ok {
		return
	}

	var req schema.JobNoteCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		ValidationFailed(c, err)
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c).With(slog.Uint64("job_id", uint64(jobID)))

	var note *database.JobNote
	err := h.uow.Do(ctx, func(tx *gorm.DB) error {
		if _, err := store.GetJob(ctx, tx, jobID, userID); err != nil {
			return err
		}
		var err error
		note, err = store.CreateJobNote(ctx, tx, jobID, req.Content)
		return err
	})
	if err != nil {
		respondError(c, logger, err, jobNotFound)
		return
	}

	logger.Info("note created", slog.Uint64("note_id", uint64(note.ID)))
	c.JSON(http.StatusOK, presentNote(*note))
}

func (h *NoteHandler) List(c *gin.Context) {
	userID, jobID, ok := noteTarget(c)
	if !ok {
		return
	}

	var q schema.NoteListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		ValidationFailed(c, err)
		return
	}

	ctx := c.Request.Context()
	var (
		notes []database.JobNote
		total int64
	)
	err := h.uow.Do(ctx, func(tx *gorm.DB) error {
		if _, err := store.GetJob(ctx, tx, jobID, userID); err != nil {
			return err
		}
		var err error
		notes, total, err = store.ListJobNotes(ctx, tx, jobID, q.Skip, q.Limit)
		return err
	})
	if err != nil {
		respondError(c, middleware.LoggerFromContext(c), err, jobNotFound)
		return
	}

	c.JSON(http.StatusOK, schema.NewPage(presentNotes(notes), total, q.Skip, q.Limit))
}

func (h *NoteHandler) Update(c *gin.Context) {
	userID, jobID, ok := noteTarget(c)
	if !ok {
		return
	}

	var req schema.JobNoteCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		ValidationFailed(c, err)
		return
	}
	noteID, ok := pathID(c, "note_id")
	if !ok {
		NotFound(c, noteNotFound)
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c).With(
		slog.Uint64("job_id", uint64(jobID)),
		slog.Uint64("note_id", uint64(noteID)),
	)

	var note *database.JobNote
	notFound := jobNotFound
	err := h.uow.Do(ctx, func(tx *gorm.DB) error {
		if _, err := store.GetJob(ctx, tx, jobID, userID); err != nil {
			return err
		}
		notFound = noteNotFound
		var err error
		note, err = store.UpdateJobNote(ctx, tx, noteID, jobID, req.Content)
		return err
	})
	if err != nil {
		respondError(c, logger, err, notFound)
		return
	}

	logger.Info("note updated")
	c.JSON(http.StatusOK, presentNote(*note))
}

func (h *NoteHandler) Delete(c *gin.Context) {
	userID, jobID, ok := noteTarget(c)
	if !ok {
		return
	}
	noteID, ok := pathID(c, "note_id")
	if !ok {
		NotFound(c, noteNotFound)
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c).With(
		slog.Uint64("job_id", uint64(jobID)),
		slog.Uint64("note_id", uint64(noteID)),
	)

	notFound := jobNotFound
	err := h.uow.Do(ctx, func(tx *gorm.DB) error {
		if _, err := store.GetJob(ctx, tx, jobID, userID); err != nil {
			return err
		}
		notFound = noteNotFound
		return store.DeleteJobNote(ctx, tx, noteID, jobID)
	})
	if err != nil {
		respondError(c, logger, err, notFound)
		return
	}

	logger.Info("note deleted")
	c.JSON(http.StatusOK, schema.Message{Message: "Note deleted successfully"})
}
