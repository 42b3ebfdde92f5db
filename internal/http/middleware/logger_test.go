package middleware

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"nestworth-api/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestLoggerRecordsUnclassifiedErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	router := gin.New()
	router.Use(Logger(log))
	router.GET("/boom", func(c *gin.Context) {
		utils.RespondError(c, errors.New("scan failed on column balance"))
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "scan failed")
	assert.Contains(t, buf.String(), "scan failed on column balance")
	assert.Contains(t, buf.String(), "status=500")
}
