package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// API envelope: successes are {status: "success", data: ...}; failures carry
// status "fail" for 4xx and "error" for 5xx with a single message field.
type ErrorResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type AppError struct {
	Code    int
	Message string
	Details interface{}
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(code int, message string, details interface{}) *AppError {
	return &AppError{Code: code, Message: message, Details: details}
}

func statusLabel(code int) string {
	if code >= 400 && code < 500 {
		return "fail"
	}
	return "error"
}

// RespondError translates an error into the envelope. Anything that is not an
// AppError is treated as unclassified: the caller sees a generic message and
// the detail stays server-side, attached to the context for the request
// logger to pick up.
func RespondError(c *gin.Context, err error) {
	appErr, ok := err.(*AppError)
	if !ok {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Status:  "error",
			Message: "something went wrong",
		})
		return
	}

	resp := ErrorResponse{
		Status:  statusLabel(appErr.Code),
		Message: appErr.Message,
	}
	// Field-level detail is a development aid only.
	if gin.Mode() != gin.ReleaseMode {
		resp.Details = appErr.Details
	}
	c.JSON(appErr.Code, resp)
}

func RespondValidationError(c *gin.Context, details interface{}) {
	RespondError(c, NewAppError(http.StatusBadRequest, "invalid request", details))
}

func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": data})
}

func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": data})
}

func RespondList(c *gin.Context, data interface{}, meta interface{}) {
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": data, "meta": meta})
}
