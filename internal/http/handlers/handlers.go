package handlers

import (
	"errors"
	"net/http"

	"nestworth-api/internal/repo"
	"nestworth-api/internal/utils"

	"github.com/gin-gonic/gin"
)

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondStoreError maps repository errors onto the envelope. Ownership
// misses and broken account links both read as not-found so nothing about
// other users' records leaks; anything unexpected degrades to a generic 500.
func respondStoreError(c *gin.Context, err error, notFoundMessage string) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		utils.RespondError(c, utils.NewAppError(http.StatusNotFound, notFoundMessage, nil))
	case errors.Is(err, repo.ErrAccountLink):
		utils.RespondError(c, utils.NewAppError(http.StatusNotFound, "no account found with that ID", nil))
	default:
		utils.RespondError(c, err)
	}
}
