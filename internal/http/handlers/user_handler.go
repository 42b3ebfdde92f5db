package handlers

import (
	"net/http"

	"nestworth-api/internal/services"
	"nestworth-api/internal/utils"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the admin-only user listing.
type UserHandler struct {
	users services.UserStore
}

func NewUserHandler(users services.UserStore) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"results": len(users),
		"data":    gin.H{"users": users},
	})
}
