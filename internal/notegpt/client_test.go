package notegpt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"snapstudy/internal/identity"
)

func TestInitiateSendsProtocolPayload(t *testing.T) {
	transport := &captureTransport{responses: map[string]responseStub{}}
	transport.setJSONResponse("/api/v2/pdf-to-video", map[string]any{
		"code": 100000,
		"data": map[string]any{"conversation_id": "conv-123"},
	})
	client := NewClient(Options{
		BaseURL:    "https://notegpt.io/api/v2",
		HTTPClient: &http.Client{Transport: transport},
	})

	ident := identity.Identity{UserAgent: "test-agent", Cookie: "abc123"}
	cid, err := client.Initiate(context.Background(), ident, "Photosynthesis", "en")
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if cid != "conv-123" {
		t.Fatalf("conversation id = %q, want conv-123", cid)
	}

	var payload map[string]any
	if err := json.Unmarshal(transport.lastBody, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload["source_type"] != "text" {
		t.Fatalf("source_type = %v, want text", payload["source_type"])
	}
	if payload["input_prompt"] != "Photosynthesis" {
		t.Fatalf("input_prompt = %v", payload["input_prompt"])
	}
	setting := payload["setting"].(map[string]any)
	if setting["gen_flow"] != "edit_script" {
		t.Fatalf("gen_flow = %v, want edit_script", setting["gen_flow"])
	}
	if setting["add_watermark"] != false {
		t.Fatalf("add_watermark = %v, want false", setting["add_watermark"])
	}
	if setting["lang"] != "en" {
		t.Fatalf("lang = %v, want en", setting["lang"])
	}
	if transport.lastUserAgent != "test-agent" {
		t.Fatalf("user agent = %q", transport.lastUserAgent)
	}
	if !strings.Contains(transport.lastCookie, "anonymous_user_id=abc123") {
		t.Fatalf("cookie = %q, want anonymous_user_id", transport.lastCookie)
	}
}

func TestInitiateRejectsMissingConversationID(t *testing.T) {
	transport := &captureTransport{responses: map[string]responseStub{}}
	transport.setJSONResponse("/api/v2/pdf-to-video", map[string]any{
		"code": 100000,
		"data": map[string]any{},
	})
	client := NewClient(Options{HTTPClient: &http.Client{Transport: transport}})

	_, err := client.Initiate(context.Background(), identity.Identity{}, "topic", "en")
	if !errors.Is(err, ErrBackendRejected) {
		t.Fatalf("err = %v, want ErrBackendRejected", err)
	}
}

func TestEnvelopeErrorCodeDetectedOnHTTP200(t *testing.T) {
	transport := &captureTransport{responses: map[string]responseStub{}}
	transport.setJSONResponse("/api/v2/pdf-to-video", map[string]any{
		"code":    300001,
		"message": "rate limited upstream",
	})
	client := NewClient(Options{HTTPClient: &http.Client{Transport: transport}})

	_, err := client.Initiate(context.Background(), identity.Identity{}, "topic", "en")
	if !errors.Is(err, ErrBackendRejected) {
		t.Fatalf("err = %v, want ErrBackendRejected", err)
	}
	if !strings.Contains(err.Error(), "rate limited upstream") {
		t.Fatalf("err %q does not carry backend message", err)
	}
}

func TestFetchScriptEmptyPayload(t *testing.T) {
	transport := &captureTransport{responses: map[string]responseStub{}}
	transport.setJSONResponse("/api/v2/pdf-to-video/script/get", map[string]any{
		"code": 100000,
		"data": map[string]any{"scenes": []any{}},
	})
	client := NewClient(Options{HTTPClient: &http.Client{Transport: transport}})

	_, err := client.FetchScript(context.Background(), identity.Identity{}, "conv-1")
	if !errors.Is(err, ErrEmptyScript) {
		t.Fatalf("err = %v, want ErrEmptyScript", err)
	}
}

func TestSaveScriptRoundTripsUnknownFields(t *testing.T) {
	transport := &captureTransport{responses: map[string]responseStub{}}
	transport.setJSONResponse("/api/v2/pdf-to-video/script/get", map[string]any{
		"code": 100000,
		"data": map[string]any{
			"voice_id": "narrator-7",
			"scenes": []any{
				map[string]any{
					"scene_title": "Intro",
					"scene_text":  "Hello.",
					"scene_image": []any{"https://cdn.example.com/1.png"},
					"duration_ms": 4200,
				},
			},
		},
	})
	transport.setJSONResponse("/api/v2/pdf-to-video/script/edit", map[string]any{"code": 100000})
	client := NewClient(Options{HTTPClient: &http.Client{Transport: transport}})

	ident := identity.Identity{Cookie: "c"}
	script, err := client.FetchScript(context.Background(), ident, "conv-1")
	if err != nil {
		t.Fatalf("fetch script: %v", err)
	}
	if err := client.SaveScript(context.Background(), ident, "conv-1", script); err != nil {
		t.Fatalf("save script: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(transport.lastBody, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload["conversation_id"] != "conv-1" {
		t.Fatalf("conversation_id = %v", payload["conversation_id"])
	}
	if payload["is_force_save"] != true {
		t.Fatalf("is_force_save = %v, want true", payload["is_force_save"])
	}
	scriptData, ok := payload["script_data"].(string)
	if !ok {
		t.Fatalf("script_data is %T, want JSON string", payload["script_data"])
	}
	var saved map[string]any
	if err := json.Unmarshal([]byte(scriptData), &saved); err != nil {
		t.Fatalf("script_data not valid JSON: %v", err)
	}
	if saved["voice_id"] != "narrator-7" {
		t.Fatalf("voice_id dropped on round trip: %v", saved)
	}
	scene := saved["scenes"].([]any)[0].(map[string]any)
	if scene["duration_ms"] != float64(4200) {
		t.Fatalf("scene duration_ms dropped: %v", scene)
	}
}

func TestPollStatusShapes(t *testing.T) {
	tests := []struct {
		name    string
		data    map[string]any
		want    RenderState
		wantURL string
		wantErr error
	}{
		{
			name: "pending with step",
			data: map[string]any{"status": "pending", "step": "generating_audio"},
			want: RenderPending,
		},
		{
			name:    "success with cdn url",
			data:    map[string]any{"status": "success", "cdn_video_url": "https://cdn.example.com/v.mp4"},
			want:    RenderSuccess,
			wantURL: "https://cdn.example.com/v.mp4",
		},
		{
			name:    "success falls back to video_url",
			data:    map[string]any{"status": "success", "video_url": "https://example.com/v.mp4"},
			want:    RenderSuccess,
			wantURL: "https://example.com/v.mp4",
		},
		{
			name:    "success without url",
			data:    map[string]any{"status": "success"},
			wantErr: ErrMissingArtifact,
		},
		{
			name: "failed",
			data: map[string]any{"status": "failed", "step": "render"},
			want: RenderFailed,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			transport := &captureTransport{responses: map[string]responseStub{}}
			transport.setJSONResponse("/api/v2/pdf-to-video/status", map[string]any{
				"code": 100000,
				"data": tc.data,
			})
			client := NewClient(Options{HTTPClient: &http.Client{Transport: transport}})

			status, err := client.PollStatus(context.Background(), identity.Identity{}, "conv-1")
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("poll status: %v", err)
			}
			if status.State != tc.want {
				t.Fatalf("state = %q, want %q", status.State, tc.want)
			}
			if status.VideoURL != tc.wantURL {
				t.Fatalf("video url = %q, want %q", status.VideoURL, tc.wantURL)
			}
		})
	}
}

type captureTransport struct {
	responses     map[string]responseStub
	lastBody      []byte
	lastUserAgent string
	lastCookie    string
}

type responseStub struct {
	status int
	body   []byte
}

func (c *captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.lastUserAgent = req.Header.Get("User-Agent")
	c.lastCookie = req.Header.Get("Cookie")
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		req.Body.Close()
		c.lastBody = body
	}
	if stub, ok := c.responses[req.URL.Path]; ok {
		return &http.Response{
			StatusCode: stub.status,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(bytes.NewReader(stub.body)),
		}, nil
	}
	return &http.Response{
		StatusCode: http.StatusNotFound,
		Body:       io.NopCloser(strings.NewReader("not found")),
	}, nil
}

func (c *captureTransport) setJSONResponse(path string, payload any) {
	body, _ := json.Marshal(payload)
	c.responses[path] = responseStub{status: http.StatusOK, body: body}
}
