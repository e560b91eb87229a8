package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shareit/service-shareit/internal/pkg/domain"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Success writes data with 200 OK.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// BadRequest writes a validation error with 400.
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorBody{
		Error:   string(domain.KindValidation),
		Message: message,
	})
}

// Error maps a domain error kind to its HTTP status. Unknown errors become 500
// with a generic message.
func Error(c *gin.Context, err error) {
	_ = c.Error(err)

	kind := domain.KindOf(err)
	status := StatusFor(kind)
	message := err.Error()
	if kind == domain.KindInternal {
		message = "internal server error"
	}
	c.AbortWithStatusJSON(status, ErrorBody{Error: string(kind), Message: message})
}

// StatusFor returns the HTTP status code used for a kind.
func StatusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindValidation, domain.KindRequestFailed:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
