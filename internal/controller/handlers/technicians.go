package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"fieldops/internal/auth"
	"fieldops/internal/logger"
	"fieldops/internal/store"
	"fieldops/pkg/api"

	"github.com/google/uuid"
)

// CreateTechnician handles POST /technicians (admin only).
// The generated API key is returned once and only its hash is stored.
func (h *Handlers) CreateTechnician(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreateTechnicianRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		h.httpError(w, "Name is required", http.StatusBadRequest)
		return
	}
	if req.RateLimit < 0 || req.RateLimitBurst < 0 {
		h.httpError(w, "Rate limits cannot be negative", http.StatusBadRequest)
		return
	}

	key, hash, err := auth.GenerateKey()
	if err != nil {
		h.httpError(w, "Failed to generate API key", http.StatusInternalServerError)
		return
	}

	tech := &store.Technician{
		ID:             uuid.New(),
		Name:           req.Name,
		Email:          req.Email,
		Admin:          req.Admin,
		RateLimit:      req.RateLimit,
		RateLimitBurst: req.RateLimitBurst,
		CreatedAt:      time.Now().UTC(),
	}
	if err := h.store.CreateTechnician(ctx, tech, hash); err != nil {
		logger.FromContext(ctx, h.logger).Error("failed to create technician", "error", err)
		h.httpError(w, "Failed to create technician", http.StatusInternalServerError)
		return
	}

	h.respondJson(w, http.StatusCreated, api.CreateTechnicianResponse{
		ID:     tech.ID.String(),
		Name:   tech.Name,
		ApiKey: key,
	})
}
