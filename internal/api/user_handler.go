package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"jobtrack/internal/api/middleware"
	"jobtrack/internal/database"
	"jobtrack/internal/store"
)

type UserHandler struct {
	uow *database.UnitOfWork
}

func NewUserHandler(uow *database.UnitOfWork) *UserHandler {
	return &UserHandler{uow: uow}
}

// Me 返回当前用户及其全部求职记录与备注。
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c, "Could not validate credentials")
		return
	}

	ctx := c.Request.Context()
	var user *database.User
	err := h.uow.Do(ctx, func(tx *gorm.DB) error {
		var err error
		user, err = store.GetUserWithJobs(ctx, tx, userID)
		return err
	})
	if err != nil {
		respondError(c, middleware.LoggerFromContext(c), err, "User not found")
		return
	}

	c.JSON(http.StatusOK, presentUser(*user))
}
