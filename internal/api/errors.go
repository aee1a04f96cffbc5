package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kozynetsoleksandr/reservation/internal/service"
)

// errorResponse is the body returned for every failed request.
type errorResponse struct {
	Message     string    `json:"message"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// abortWithError maps a service error onto an HTTP status and writes the
// error body. Internal failures get a generic label; the underlying message
// stays in the description for diagnostics.
func abortWithError(c *gin.Context, err error) {
	status, label := http.StatusInternalServerError, "internal server error"
	switch service.KindOf(err) {
	case service.KindNotFound:
		status, label = http.StatusNotFound, "entity not found"
	case service.KindInvalidArgument:
		status, label = http.StatusBadRequest, "bad request"
	case service.KindInvalidState:
		status, label = http.StatusConflict, "conflict"
	default:
		log.Printf("internal error handling %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	abortWith(c, status, label, err.Error())
}

func abortBadRequest(c *gin.Context, description string) {
	abortWith(c, http.StatusBadRequest, "bad request", description)
}

func abortWith(c *gin.Context, status int, label, description string) {
	c.AbortWithStatusJSON(status, errorResponse{
		Message:     label,
		Description: description,
		Timestamp:   time.Now().UTC(),
	})
}
