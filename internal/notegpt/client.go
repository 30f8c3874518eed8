// Package notegpt adapts the notegpt pdf-to-video HTTP protocol. The client
// is a pure protocol adapter: it owns call shapes and error detection while
// the orchestrator owns all timing and retry policy.
package notegpt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"snapstudy/internal/domain"
	"snapstudy/internal/identity"
	"snapstudy/internal/infra"
)

var (
	// ErrBackendRejected indicates the backend refused to start a generation:
	// an envelope-level error code or a missing conversation id.
	ErrBackendRejected = errors.New("notegpt: backend rejected request")
	// ErrEmptyScript indicates the script endpoint returned no usable scenes.
	ErrEmptyScript = errors.New("notegpt: empty script payload")
	// ErrMissingArtifact indicates a success status without a video URL.
	ErrMissingArtifact = errors.New("notegpt: success status without video url")
)

// The backend wraps every JSON response in an envelope; application-level
// failures arrive with HTTP 200 and a non-success code, so the code must be
// checked explicitly.
const envelopeCodeOK = 100000

// Options configures the notegpt client.
type Options struct {
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls against the notegpt pdf-to-video API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// RenderState is the backend's reported rendering status.
type RenderState string

const (
	RenderPending RenderState = "pending"
	RenderSuccess RenderState = "success"
	RenderFailed  RenderState = "failed"
)

// RenderStatus is the result of a single status poll.
type RenderStatus struct {
	State    RenderState
	Step     string
	VideoURL string
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 45 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://notegpt.io/api/v2"
	}
	logger := opts.Logger
	if logger == nil {
		discard := infra.Logger(zerolog.New(io.Discard))
		logger = &discard
	}
	return &Client{baseURL: baseURL, httpClient: httpClient, logger: logger}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type initiateRequest struct {
	SourceURL   string          `json:"source_url"`
	SourceType  string          `json:"source_type"`
	InputPrompt string          `json:"input_prompt"`
	Setting     initiateSetting `json:"setting"`
}

type initiateSetting struct {
	FrameSize    string `json:"frame_size"`
	Duration     int    `json:"duration"`
	Lang         string `json:"lang"`
	GenFlow      string `json:"gen_flow"`
	AddWatermark bool   `json:"add_watermark"`
}

type initiateData struct {
	ConversationID string `json:"conversation_id"`
}

type saveScriptRequest struct {
	ConversationID string `json:"conversation_id"`
	ScriptData     string `json:"script_data"`
	IsForceSave    bool   `json:"is_force_save"`
}

type statusData struct {
	Status      string `json:"status"`
	Step        string `json:"step"`
	CDNVideoURL string `json:"cdn_video_url"`
	VideoURL    string `json:"video_url"`
}

// Initiate starts a text-to-video generation and returns the backend's
// conversation id for the attempt.
func (c *Client) Initiate(ctx context.Context, ident identity.Identity, topic, lang string) (string, error) {
	if lang == "" {
		lang = "en"
	}
	payload := initiateRequest{
		SourceType:  "text",
		InputPrompt: topic,
		Setting: initiateSetting{
			FrameSize:    "16:9",
			Duration:     1,
			Lang:         lang,
			GenFlow:      "edit_script",
			AddWatermark: false,
		},
	}
	env, err := c.postJSON(ctx, ident, "/pdf-to-video", payload)
	if err != nil {
		return "", err
	}
	var data initiateData
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return "", fmt.Errorf("notegpt: decode initiate data: %w", err)
		}
	}
	if data.ConversationID == "" {
		return "", fmt.Errorf("%w: no conversation id (%s)", ErrBackendRejected, env.Message)
	}
	c.logger.Debug().Str("conversation_id", data.ConversationID).Msg("notegpt: generation initiated")
	return data.ConversationID, nil
}

// FetchScript retrieves the editable lesson script for a conversation.
func (c *Client) FetchScript(ctx context.Context, ident identity.Identity, conversationID string) (*domain.Script, error) {
	env, err := c.getJSON(ctx, ident, "/pdf-to-video/script/get", url.Values{"conversation_id": {conversationID}})
	if err != nil {
		return nil, err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, ErrEmptyScript
	}
	var script domain.Script
	if err := json.Unmarshal(env.Data, &script); err != nil {
		return nil, fmt.Errorf("notegpt: decode script: %w", err)
	}
	if len(script.Scenes) == 0 {
		return nil, ErrEmptyScript
	}
	return &script, nil
}

// SaveScript writes the (possibly mutated) script back. The backend treats
// this as a force save, replacing whatever it generated.
func (c *Client) SaveScript(ctx context.Context, ident identity.Identity, conversationID string, script *domain.Script) error {
	raw, err := json.Marshal(script)
	if err != nil {
		return fmt.Errorf("notegpt: encode script: %w", err)
	}
	_, err = c.postJSON(ctx, ident, "/pdf-to-video/script/edit", saveScriptRequest{
		ConversationID: conversationID,
		ScriptData:     string(raw),
		IsForceSave:    true,
	})
	return err
}

// PollStatus performs a single status poll for a conversation.
func (c *Client) PollStatus(ctx context.Context, ident identity.Identity, conversationID string) (RenderStatus, error) {
	env, err := c.getJSON(ctx, ident, "/pdf-to-video/status", url.Values{"conversation_id": {conversationID}})
	if err != nil {
		return RenderStatus{}, err
	}
	var data statusData
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return RenderStatus{}, fmt.Errorf("notegpt: decode status: %w", err)
		}
	}
	status := RenderStatus{Step: data.Step}
	switch data.Status {
	case string(RenderSuccess):
		videoURL := data.CDNVideoURL
		if videoURL == "" {
			videoURL = data.VideoURL
		}
		if videoURL == "" {
			return RenderStatus{}, ErrMissingArtifact
		}
		status.State = RenderSuccess
		status.VideoURL = videoURL
	case string(RenderFailed):
		status.State = RenderFailed
	default:
		status.State = RenderPending
	}
	return status, nil
}

func (c *Client) postJSON(ctx context.Context, ident identity.Identity, path string, payload any) (*envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("notegpt: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("notegpt: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, ident)
}

func (c *Client) getJSON(ctx context.Context, ident identity.Identity, path string, query url.Values) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("notegpt: build request: %w", err)
	}
	return c.do(req, ident)
}

func (c *Client) do(req *http.Request, ident identity.Identity) (*envelope, error) {
	if ident.UserAgent != "" {
		req.Header.Set("User-Agent", ident.UserAgent)
	}
	if ident.Cookie != "" {
		req.AddCookie(&http.Cookie{Name: "anonymous_user_id", Value: ident.Cookie})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("notegpt: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("notegpt: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("notegpt: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("notegpt: decode envelope: %w", err)
	}
	if env.Code != 0 && env.Code != envelopeCodeOK {
		return nil, fmt.Errorf("%w: %s (code %d)", ErrBackendRejected, env.Message, env.Code)
	}
	return &env, nil
}
