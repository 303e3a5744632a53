package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"fieldops/pkg/api"
)

// JobClient handles API calls to the fieldops controller.
type JobClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewJobClient creates a new client with the given base URL and token.
func NewJobClient(baseURL, token string) *JobClient {
	return &JobClient{
		BaseURL: baseURL,
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError represents an error response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// ListOptions filters GET /jobs.
type ListOptions struct {
	Status       string
	TechnicianID string
	ClientID     string
	Limit        int
	Offset       int
}

// CreateJob sends POST /jobs. The controller allocates the Service Report Number.
func (c *JobClient) CreateJob(req api.CreateJobRequest) (*api.JobResponse, error) {
	var result api.JobResponse
	if err := c.do(http.MethodPost, "/jobs", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetJob sends GET /jobs/{id}.
func (c *JobClient) GetJob(jobID string) (*api.JobResponse, error) {
	var result api.JobResponse
	if err := c.do(http.MethodGet, "/jobs/"+url.PathEscape(jobID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListJobs sends GET /jobs with the given filters.
func (c *JobClient) ListJobs(opts ListOptions) (*api.ListJobsResponse, error) {
	q := url.Values{}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	if opts.TechnicianID != "" {
		q.Set("technician_id", opts.TechnicianID)
	}
	if opts.ClientID != "" {
		q.Set("client_id", opts.ClientID)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}

	path := "/jobs"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var result api.ListJobsResponse
	if err := c.do(http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Transition sends PUT /jobs/{id}/status.
func (c *JobClient) Transition(jobID string, req api.TransitionRequest) (*api.JobResponse, error) {
	var result api.JobResponse
	if err := c.do(http.MethodPut, "/jobs/"+url.PathEscape(jobID)+"/status", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Amend sends PATCH /jobs/{id}.
func (c *JobClient) Amend(jobID string, req api.AmendRequest) (*api.JobResponse, error) {
	var result api.JobResponse
	if err := c.do(http.MethodPatch, "/jobs/"+url.PathEscape(jobID), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// EditParts sends POST /jobs/{id}/parts.
func (c *JobClient) EditParts(jobID string, req api.PartsEditRequest) (*api.JobResponse, error) {
	var result api.JobResponse
	if err := c.do(http.MethodPost, "/jobs/"+url.PathEscape(jobID)+"/parts", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteJob sends DELETE /jobs/{id}.
func (c *JobClient) DeleteJob(jobID string) (*api.DeleteJobResponse, error) {
	var result api.DeleteJobResponse
	if err := c.do(http.MethodDelete, "/jobs/"+url.PathEscape(jobID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Counter sends GET /counter.
func (c *JobClient) Counter() (*api.CounterResponse, error) {
	var result api.CounterResponse
	if err := c.do(http.MethodGet, "/counter", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *JobClient) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(bodyBytes)
	}

	httpReq, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.Token))
	httpReq.Header.Add("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// errorMessage extracts the message from an api.ErrorResponse body,
// falling back to the raw body.
func errorMessage(body []byte) string {
	var e api.ErrorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return string(bytes.TrimSpace(body))
}
