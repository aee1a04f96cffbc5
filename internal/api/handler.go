package api

import (
	"github.com/kozynetsoleksandr/reservation/internal/service"
)

// Handler holds shared dependencies for the reservation endpoints.
type Handler struct {
	svc *service.Service
}

// NewHandler creates a new API handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}
