// Package middleware contains HTTP middleware for the controller.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"fieldops/internal/auth"
	"fieldops/internal/store"
	"fieldops/pkg/api"

	"github.com/google/uuid"
)

// TechnicianStore resolves API keys to technicians.
type TechnicianStore interface {
	GetTechnicianByAPIKeyHash(ctx context.Context, hash string) (*store.Technician, error)
}

type technicianKey struct{}

// AuthMiddleware authenticates "Authorization: Bearer <api key>" against the
// stored key hashes and puts the technician on the request context.
func AuthMiddleware(s TechnicianStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, "Missing authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
				writeError(w, "Invalid authorization header", http.StatusUnauthorized)
				return
			}

			tech, err := s.GetTechnicianByAPIKeyHash(r.Context(), auth.HashKey(parts[1]))
			if err != nil {
				writeError(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			if tech == nil {
				writeError(w, "Invalid API key", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(NewContextWithTechnician(r.Context(), tech)))
		})
	}
}

// RequireAdmin rejects technicians without the admin flag. It must run
// after AuthMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tech, ok := TechnicianFromContext(r.Context())
		if !ok {
			writeError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if !tech.Admin {
			writeError(w, "Admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NewContextWithTechnician returns a copy of ctx carrying tech.
func NewContextWithTechnician(ctx context.Context, tech *store.Technician) context.Context {
	return context.WithValue(ctx, technicianKey{}, tech)
}

// TechnicianFromContext returns the authenticated technician.
func TechnicianFromContext(ctx context.Context) (*store.Technician, bool) {
	tech, ok := ctx.Value(technicianKey{}).(*store.Technician)
	return tech, ok && tech != nil
}

// TechnicianIDFromContext returns the authenticated technician's ID.
func TechnicianIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	tech, ok := TechnicianFromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return tech.ID, true
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(api.ErrorResponse{
		Error: message,
		Code:  strconv.Itoa(code),
	})
}
