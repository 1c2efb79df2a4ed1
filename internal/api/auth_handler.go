package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"gorm.io/gorm"

	"jobtrack/internal/api/middleware"
	"jobtrack/internal/auth"
	"jobtrack/internal/database"
	"jobtrack/internal/schema"
	"jobtrack/internal/store"
)

// AuthHandler 处理注册与令牌签发。
type AuthHandler struct {
	uow         *database.UnitOfWork
	authService *auth.AuthService
}

// NewAuthHandler 构造认证处理器。
func NewAuthHandler(uow *database.UnitOfWork, authService *auth.AuthService) *AuthHandler {
	return &AuthHandler{uow: uow, authService: authService}
}

// Token 处理 OAuth2 password grant，username 字段携带邮箱。
func (h *AuthHandler) Token(c *gin.Context) {
	var req schema.TokenRequest
	if err := c.ShouldBindWith(&req, binding.Form); err != nil {
		ValidationFailed(c, err)
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)

	var user *database.User
	err := h.uow.Do(ctx, func(tx *gorm.DB) error {
		var err error
		user, err = h.authService.Authenticate(ctx, tx, strings.TrimSpace(req.Username), req.Password)
		return err
	})
	if errors.Is(err, auth.ErrInvalidCredentials) {
		logger.Info("login failed: bad credentials")
		AbortUnauthorized(c, "Incorrect username or password")
		return
	}
	if err != nil {
		respondError(c, logger, err, "")
		return
	}
	if !user.IsActive {
		logger.Info("login failed: inactive user", slog.Uint64("user_id", uint64(user.ID)))
		AbortUnauthorized(c, "Incorrect username or password")
		return
	}

	token, _, err := h.authService.IssueToken(user.Email)
	if err != nil {
		logger.Error("issue token failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	logger.Info("login succeeded", slog.Uint64("user_id", uint64(user.ID)))
	c.JSON(http.StatusOK, schema.Token{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(h.authService.AccessTokenTTL().Seconds()),
	})
}

// Register 创建新用户账号。
func (h *AuthHandler) Register(c *gin.Context) {
	var req schema.UserCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		ValidationFailed(c, err)
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)

	hashed, err := h.authService.HashPassword(req.Password)
	if err != nil {
		logger.Error("hash password failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	var user *database.User
	err = h.uow.Do(ctx, func(tx *gorm.DB) error {
		var err error
		user, err = store.CreateUser(ctx, tx, req.Email, hashed)
		return err
	})
	if errors.Is(err, store.ErrEmailTaken) {
		logger.Info("register conflict: email already registered")
		BadRequest(c, "Email already registered")
		return
	}
	if err != nil {
		respondError(c, logger, err, "")
		return
	}

	logger.Info("user registered", slog.Uint64("user_id", uint64(user.ID)))
	c.JSON(http.StatusOK, presentUser(*user))
}
