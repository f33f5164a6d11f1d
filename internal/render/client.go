package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrRenderFailed is returned when the render vendor reports a failed job.
var ErrRenderFailed = errors.New("video render failed")

// ErrRenderTimeout is returned when a job does not finish within the poll
// budget. The job is abandoned; there is no automatic retry.
var ErrRenderTimeout = errors.New("video render timed out")

// Client talks to the external video-rendering API: submit a job, then poll
// it to completion.
type Client struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	pollInterval time.Duration
	pollBudget   time.Duration
}

// Job describes one image-to-video render request.
type Job struct {
	ImageURL    string `json:"image_url,omitempty"`
	ImageData   string `json:"image_data,omitempty"` // base64, alternative to ImageURL
	Prompt      string `json:"prompt"`
	OverlayText string `json:"overlay_text,omitempty"`
	Style       string `json:"style,omitempty"`
	Duration    int    `json:"duration,omitempty"` // seconds
}

type submitResponse struct {
	JobID string `json:"job_id"`
}

type statusResponse struct {
	Status   string `json:"status"` // queued | processing | succeeded | failed
	VideoURL string `json:"video_url"`
	Error    string `json:"error"`
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:      baseURL,
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		pollInterval: 2 * time.Second,
		pollBudget:   3 * time.Minute,
	}
}

// Render submits the job and polls until the vendor reports a terminal
// state. Returns the rendered video URL.
func (c *Client) Render(ctx context.Context, job Job) (string, error) {
	jobID, err := c.submit(ctx, job)
	if err != nil {
		return "", err
	}
	log.Info().Str("job_id", jobID).Msg("render job submitted")

	deadline := time.Now().Add(c.pollBudget)
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
			if time.Now().After(deadline) {
				log.Warn().Str("job_id", jobID).Msg("render job exceeded poll budget")
				return "", ErrRenderTimeout
			}

			status, err := c.poll(ctx, jobID)
			if err != nil {
				// transient poll errors are retried until the budget runs out
				log.Warn().Err(err).Str("job_id", jobID).Msg("render poll failed")
				continue
			}

			switch status.Status {
			case "succeeded":
				return status.VideoURL, nil
			case "failed":
				log.Error().Str("job_id", jobID).Str("vendor_error", status.Error).Msg("render job failed")
				return "", ErrRenderFailed
			}
		}
	}
}

func (c *Client) submit(ctx context.Context, job Job) (string, error) {
	body, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("failed to marshal render job: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/jobs", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to submit render job: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("render vendor returned status %d", resp.StatusCode)
	}

	var out submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode render response: %w", err)
	}
	if out.JobID == "" {
		return "", errors.New("render vendor returned empty job id")
	}
	return out.JobID, nil
}

func (c *Client) poll(ctx context.Context, jobID string) (*statusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/jobs/"+jobID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("render vendor returned status %d", resp.StatusCode)
	}

	var out statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
