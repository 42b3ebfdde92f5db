package handlers

import (
	"net/http"

	"nestworth-api/internal/services"
	"nestworth-api/internal/utils"

	"github.com/gin-gonic/gin"
)

type MeHandler struct {
	users services.UserStore
}

func NewMeHandler(users services.UserStore) *MeHandler {
	return &MeHandler{users: users}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		utils.RespondError(c, utils.NewAppError(http.StatusNotFound, "user not found", nil))
		return
	}

	utils.RespondOK(c, gin.H{"user": user})
}
