package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fieldops/internal/auth"
	"fieldops/pkg/api"
)

func TestCreateTechnician(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		storeErr       error
		expectedStatus int
		expectedInBody string
	}{
		{
			name:           "Success",
			body:           `{"name":"Sam","email":"sam@example.com","rate_limit":5,"rate_limit_burst":10}`,
			expectedStatus: http.StatusCreated,
			expectedInBody: "api_key",
		},
		{
			name:           "Invalid JSON",
			body:           `{invalid`,
			expectedStatus: http.StatusBadRequest,
			expectedInBody: "Invalid request body",
		},
		{
			name:           "Missing Name",
			body:           `{"name":"   "}`,
			expectedStatus: http.StatusBadRequest,
			expectedInBody: "Name is required",
		},
		{
			name:           "Negative Rate Limit",
			body:           `{"name":"Sam","rate_limit":-1}`,
			expectedStatus: http.StatusBadRequest,
			expectedInBody: "cannot be negative",
		},
		{
			name:           "Store Failure",
			body:           `{"name":"Sam"}`,
			storeErr:       errors.New("insert failed"),
			expectedStatus: http.StatusInternalServerError,
			expectedInBody: "Failed to create technician",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &mockStore{createTechnicianErr: tt.storeErr}
			h := newTestHandlers(&mockJobService{}, s)

			req := httptest.NewRequest(http.MethodPost, "/technicians", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()
			h.CreateTechnician(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("got status %d, want %d", rr.Code, tt.expectedStatus)
			}
			if !strings.Contains(rr.Body.String(), tt.expectedInBody) {
				t.Errorf("body %q does not contain %q", rr.Body.String(), tt.expectedInBody)
			}

			if tt.expectedStatus == http.StatusCreated {
				var resp api.CreateTechnicianResponse
				if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if s.capturedHashedAPIKey != auth.HashKey(resp.ApiKey) {
					t.Error("stored hash does not match the returned key")
				}
				if s.capturedTechnician.RateLimit != 5 || s.capturedTechnician.RateLimitBurst != 10 {
					t.Errorf("rate limits not passed through: %+v", s.capturedTechnician)
				}
			}
		})
	}
}
