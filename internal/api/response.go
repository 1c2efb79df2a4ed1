package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobtrack/internal/database"
	"jobtrack/internal/schema"
	"jobtrack/internal/store"
)

func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// AbortUnauthorized 返回 401 并附带 Bearer 质询头。
func AbortUnauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

func BadRequest(c *gin.Context, msg string)      { Error(c, http.StatusBadRequest, msg) }
func NotFound(c *gin.Context, msg string)        { Error(c, http.StatusNotFound, msg) }
func Unprocessable(c *gin.Context, msg string)   { Error(c, http.StatusUnprocessableEntity, msg) }
func TooManyRequests(c *gin.Context, msg string) { Error(c, http.StatusTooManyRequests, msg) }
func Unavailable(c *gin.Context)                 { Error(c, http.StatusServiceUnavailable, "service unavailable") }
func Internal(c *gin.Context, msg string)        { Error(c, http.StatusInternalServerError, msg) }

// ValidationFailed 输出 422，并在可识别时列出字段级错误。
func ValidationFailed(c *gin.Context, err error) {
	fields := schema.FieldErrors(err)
	if fields == nil {
		Unprocessable(c, "invalid request body")
		return
	}
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": fields})
}

// respondError 将存储层错误映射为响应；未知错误记录日志后返回通用 500。
func respondError(c *gin.Context, logger *slog.Logger, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		NotFound(c, notFoundMsg)
	case errors.Is(err, database.ErrPoolTimeout):
		logger.Error("database pool exhausted", slog.Any("error", err))
		Unavailable(c)
	default:
		logger.Error("request failed", slog.Any("error", err))
		Internal(c, "internal error")
	}
}
