package utils

import (
	"errors"
	"net/http"

	"dishdash/pkg/logging"

	"github.com/gin-gonic/gin"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	respond(c, http.StatusOK, data, message)
}

func RespondAccepted(c *gin.Context, data interface{}, message string) {
	respond(c, http.StatusAccepted, data, message)
}

func respond(c *gin.Context, code int, data interface{}, message string) {
	c.JSON(code, APIResponse{
		Status:  "success",
		Code:    code,
		Message: message,
		TraceID: c.GetString("trace_id"),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: c.GetString("trace_id"),
	})
}

// serviceErrors maps sentinel errors to the status and message returned to clients.
// Order matters: the first match wins.
var serviceErrors = []struct {
	err     error
	code    int
	message string
}{
	{ErrTagNotFound, http.StatusNotFound, "Tag not found"},
	{ErrRestaurantNotFound, http.StatusNotFound, "Restaurant not found"},
	{ErrImageNotFound, http.StatusNotFound, "Restaurant image not found"},
	{ErrCategoryNotFound, http.StatusNotFound, "Tag category not found"},
	{ErrUnknownDimension, http.StatusNotFound, "Scoring dimension not found"},
	{ErrInvalidPage, http.StatusBadRequest, "Page must be greater than 0"},
	{ErrInvalidPageSize, http.StatusBadRequest, "Page size must be between 1 and 100"},
	{ErrInvalidWeights, http.StatusBadRequest, "Invalid preference weights"},
	{ErrInvalidInput, http.StatusBadRequest, "Invalid input"},
	{ErrRunInProgress, http.StatusConflict, "A scoring run is already in progress"},
	{ErrDimensionMismatch, http.StatusUnprocessableEntity, "Stored vectors do not match the configured embedding model"},
	{ErrProviderTransient, http.StatusServiceUnavailable, "Embedding provider unavailable, try again later"},
	{ErrProviderRejected, http.StatusBadGateway, "Embedding provider rejected the request"},
}

func HandleServiceError(c *gin.Context, err error) {
	for _, se := range serviceErrors {
		if errors.Is(err, se.err) {
			RespondError(c, se.code, se.message)
			return
		}
	}

	logging.Ctx(c.Request.Context()).Error().Err(err).Msg("unhandled service error")
	RespondError(c, http.StatusInternalServerError, "Internal server error")
}
