package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// apiClient talks to the snapstudy HTTP API. Each chat is mapped to a
// synthetic client IP so the per-IP daily quota buckets per chat.
type apiClient struct {
	baseURL    string
	httpClient *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type submitResponse struct {
	JobID          string `json:"job_id"`
	State          string `json:"state"`
	RemainingQuota int    `json:"remaining_quota"`
}

type statusResponse struct {
	JobID    string `json:"job_id"`
	Topic    string `json:"topic"`
	State    string `json:"state"`
	Progress string `json:"progress"`
	Message  string `json:"message"`
	Result   *struct {
		Scenes []struct {
			Title  string   `json:"scene_title"`
			Text   string   `json:"scene_text"`
			Images []string `json:"scene_image"`
		} `json:"scenes"`
		VideoURL string `json:"video_url"`
	} `json:"result"`
	Failure *struct {
		Category string `json:"category"`
		Detail   string `json:"detail"`
	} `json:"failure"`
}

type apiError struct {
	Status  int
	Code    string `json:"error"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api: %s (%d): %s", e.Code, e.Status, e.Message)
}

func (c *apiClient) submit(ctx context.Context, chatID int64, topic, locale string) (*submitResponse, error) {
	payload, _ := json.Marshal(map[string]string{"topic": topic, "locale": locale})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/videos", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	var out submitResponse
	if err := c.do(req, chatID, http.StatusAccepted, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) status(ctx context.Context, chatID int64, jobID string) (*statusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/videos/"+jobID, nil)
	if err != nil {
		return nil, err
	}
	var out statusResponse
	if err := c.do(req, chatID, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) remainingQuota(ctx context.Context, chatID int64) (limit, remaining int, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/quota", nil)
	if err != nil {
		return 0, 0, err
	}
	var out struct {
		Limit     int `json:"limit"`
		Remaining int `json:"remaining"`
	}
	if err := c.do(req, chatID, http.StatusOK, &out); err != nil {
		return 0, 0, err
	}
	return out.Limit, out.Remaining, nil
}

func (c *apiClient) do(req *http.Request, chatID int64, wantStatus int, out any) error {
	req.Header.Set("X-Forwarded-For", chatClientIP(chatID))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		apiErr := &apiError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}

// chatClientIP deterministically folds a chat id into the 10.0.0.0/8 range.
func chatClientIP(chatID int64) string {
	v := uint64(chatID)
	v ^= v >> 24
	return fmt.Sprintf("10.%d.%d.%d", byte(v>>16), byte(v>>8), byte(v))
}
