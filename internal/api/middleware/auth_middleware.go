package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"jobtrack/internal/auth"
	"jobtrack/internal/database"
	"jobtrack/internal/store"
)

const (
	userIDKey    = "userID"
	userEmailKey = "userEmail"
)

func abortUnauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials"})
}

// AuthMiddleware 校验 Bearer 令牌，并确认令牌主体仍是一个启用中的用户，
// 然后将 userID 与 userEmail 注入上下文。
func AuthMiddleware(authService *auth.AuthService, uow *database.UnitOfWork) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c)
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			LoggerFromContext(c).Info("token rejected", slog.Any("error", err))
			abortUnauthorized(c)
			return
		}

		var user *database.User
		err = uow.Do(c.Request.Context(), func(tx *gorm.DB) error {
			var err error
			user, err = store.GetUserByEmail(c.Request.Context(), tx, claims.Subject)
			return err
		})
		switch {
		case errors.Is(err, store.ErrNotFound):
			LoggerFromContext(c).Info("token subject unknown")
			abortUnauthorized(c)
			return
		case errors.Is(err, database.ErrPoolTimeout):
			LoggerFromContext(c).Error("resolve token subject", slog.Any("error", err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "service unavailable"})
			return
		case err != nil:
			LoggerFromContext(c).Error("resolve token subject", slog.Any("error", err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		if !user.IsActive {
			LoggerFromContext(c).Info("token subject inactive", slog.Uint64("user_id", uint64(user.ID)))
			abortUnauthorized(c)
			return
		}

		c.Set(userIDKey, user.ID)
		c.Set(userEmailKey, user.Email)
		WithLoggerAttrs(c, slog.Uint64("user_id", uint64(user.ID)))
		c.Next()
	}
}

// UserEmailFromContext 返回已认证调用方的邮箱。
func UserEmailFromContext(c *gin.Context) (string, bool) {
	value, ok := c.Get(userEmailKey)
	if !ok {
		return "", false
	}
	email, ok := value.(string)
	return email, ok
}
