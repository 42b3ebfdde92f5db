package utils

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRespondErrorUnclassifiedKeepsDetailServerSide(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	RespondError(c, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"error"`)
	assert.Contains(t, rec.Body.String(), "something went wrong")
	assert.NotContains(t, rec.Body.String(), "connection refused")

	// The underlying error stays on the context for the request logger.
	assert.Len(t, c.Errors, 1)
	assert.Contains(t, c.Errors.String(), "connection refused")
}

func TestRespondErrorAppErrorUsesFailLabel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	RespondError(c, NewAppError(http.StatusNotFound, "no account found with that ID", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"fail"`)
	assert.Empty(t, c.Errors)
}
