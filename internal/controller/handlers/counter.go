package handlers

import (
	"net/http"

	"fieldops/internal/store"
	"fieldops/pkg/api"
)

// GetCounter handles GET /counter. Reading does not consume a number.
func (h *Handlers) GetCounter(w http.ResponseWriter, r *http.Request) {
	next, err := h.counter.Peek(r.Context())
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.respondJson(w, http.StatusOK, api.CounterResponse{
		Name: store.CounterServiceReport,
		Next: next,
	})
}
