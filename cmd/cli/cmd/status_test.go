package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fieldops/pkg/api"

	"github.com/spf13/viper"
)

func TestStatusCommand_Success(t *testing.T) {
	resetViper()
	resetFlags()

	completed := time.Date(2024, 3, 1, 11, 30, 0, 0, time.UTC)
	var got api.TransitionRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT method, got %s", r.Method)
		}
		if r.URL.Path != "/jobs/job-123/status" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}

		json.NewEncoder(w).Encode(api.JobResponse{
			ID:            "job-123",
			SNPID:         7,
			Status:        "completed",
			CompletedDate: &completed,
			ActionTaken:   "Replaced igniter. Left in safe working order.",
		})
	}))
	defer server.Close()

	viper.Set("url", server.URL)
	viper.Set("token", "test-token")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"status", "job-123", "completed",
		"--action-taken", "Replaced igniter.",
		"--departure", "2024-03-01T11:30:00Z"})

	err := rootCmd.Execute()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Status != "completed" {
		t.Errorf("expected status completed, got %q", got.Status)
	}
	if got.ActionTaken == nil || *got.ActionTaken != "Replaced igniter." {
		t.Errorf("expected action_taken to be sent, got %v", got.ActionTaken)
	}
	if got.DepartureTime == nil || !got.DepartureTime.Equal(completed) {
		t.Errorf("expected departure time %v, got %v", completed, got.DepartureTime)
	}
	if got.ArrivalTime != nil || got.ServiceType != nil || got.Description != nil {
		t.Errorf("unset flags should not be sent: %+v", got.JobFields)
	}

	output := stdout.String()
	if !strings.Contains(output, "Service Report #7") {
		t.Errorf("expected report number in output, got: %s", output)
	}
	if !strings.Contains(output, "completed") {
		t.Errorf("expected status in output, got: %s", output)
	}
}

func TestStatusCommand_InvalidTime(t *testing.T) {
	resetViper()
	resetFlags()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be called with an invalid time")
	}))
	defer server.Close()

	viper.Set("url", server.URL)
	viper.Set("token", "test-token")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"status", "job-123", "in_progress", "--arrival", "yesterday"})

	err := rootCmd.Execute()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(stdout.String(), "invalid --arrival") {
		t.Errorf("expected time parse error, got: %s", stdout.String())
	}
}

func TestStatusCommand_InvalidStatus(t *testing.T) {
	resetViper()
	resetFlags()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(api.ErrorResponse{Error: `invalid status "done"`, Code: "400"})
	}))
	defer server.Close()

	viper.Set("url", server.URL)
	viper.Set("token", "test-token")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"status", "job-123", "done"})

	err := rootCmd.Execute()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(stdout.String(), "Error (400)") {
		t.Errorf("expected 400 error in output, got: %s", stdout.String())
	}
}

func TestStatusCommand_RequiresArgs(t *testing.T) {
	resetViper()
	resetFlags()

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"status", "job-123"})

	err := rootCmd.Execute()
	if err == nil {
		t.Error("expected error when status argument is missing")
	}
}

func TestAmendCommand_SendsOnlyChangedFields(t *testing.T) {
	resetViper()
	resetFlags()

	var raw map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("expected PATCH method, got %s", r.Method)
		}
		if r.URL.Path != "/jobs/job-123" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&raw)
		json.NewEncoder(w).Encode(api.JobResponse{ID: "job-123", SNPID: 7, Status: "pending", ServiceType: "maintenance"})
	}))
	defer server.Close()

	viper.Set("url", server.URL)
	viper.Set("token", "test-token")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"amend", "job-123", "--service-type", "maintenance"})

	err := rootCmd.Execute()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if raw["service_type"] != "maintenance" {
		t.Errorf("expected service_type=maintenance, got %v", raw["service_type"])
	}
	if len(raw) != 1 {
		t.Errorf("expected only service_type in body, got %v", raw)
	}
	if !strings.Contains(stdout.String(), "maintenance") {
		t.Errorf("expected service type in output, got: %s", stdout.String())
	}
}
