package ocr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ironsheep/scan-ocr-mcp/internal/imaging"
)

// chatRequest mirrors the parts of the chat completion request the tests check.
type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content []struct {
			Type     string `json:"type"`
			Text     string `json:"text"`
			ImageURL *struct {
				URL string `json:"url"`
			} `json:"image_url"`
		} `json:"content"`
	} `json:"messages"`
}

func chatReply(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			},
		},
	}
}

func newOpenAIServer(t *testing.T, handler func(t *testing.T, req chatRequest) (int, any)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("expected /v1/chat/completions, got %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-api-key" {
			t.Errorf("Authorization = %q, want Bearer test-api-key", auth)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}

		status, body := handler(t, req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestOpenAI_Recognize(t *testing.T) {
	server := newOpenAIServer(t, func(t *testing.T, req chatRequest) (int, any) {
		if req.Model != "test-model" {
			t.Errorf("model = %q, want test-model", req.Model)
		}
		if len(req.Messages) != 1 || len(req.Messages[0].Content) != 2 {
			t.Errorf("unexpected message layout: %+v", req.Messages)
			return http.StatusBadRequest, map[string]any{"error": map[string]any{"message": "bad layout"}}
		}
		parts := req.Messages[0].Content
		if !strings.Contains(parts[0].Text, `"deu"`) {
			t.Errorf("prompt does not mention the language: %q", parts[0].Text)
		}
		if parts[1].ImageURL == nil || !strings.HasPrefix(parts[1].ImageURL.URL, "data:image/png;base64,") {
			t.Errorf("image part missing or not a PNG data URI: %+v", parts[1])
		}
		return http.StatusOK, chatReply("```\nHello World\n```")
	})

	adapter := NewAdapter(NewOpenAILoader(OpenAIConfig{
		APIKey:  "test-api-key",
		BaseURL: server.URL + "/v1",
		Model:   "test-model",
	}), nil)

	var events []Progress
	ref := imaging.InlineFromBytes([]byte("\x89PNG\r\n\x1a\nfake"), "image/png")
	res, err := adapter.Recognize(context.Background(), ref, "deu", ProgressFunc(func(p Progress) {
		events = append(events, p)
	}))
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}

	if res.Text != "Hello World" {
		t.Errorf("Text = %q, want Hello World", res.Text)
	}
	if res.Confidence != nil {
		t.Errorf("Confidence = %v, want nil", *res.Confidence)
	}
	if len(events) != 2 || events[len(events)-1].Progress != 1 {
		t.Errorf("events = %+v, want two ending at 1", events)
	}
}

func TestOpenAI_ServerError(t *testing.T) {
	server := newOpenAIServer(t, func(t *testing.T, req chatRequest) (int, any) {
		return http.StatusInternalServerError, map[string]any{
			"error": map[string]any{"message": "boom", "type": "server_error"},
		}
	})

	adapter := NewAdapter(NewOpenAILoader(OpenAIConfig{
		APIKey:  "test-api-key",
		BaseURL: server.URL + "/v1",
	}), nil)

	_, err := adapter.Recognize(context.Background(), imaging.Blob([]byte("img")), "", nil)
	var recErr *RecognitionError
	if !errors.As(err, &recErr) {
		t.Fatalf("error = %v, want *RecognitionError", err)
	}
	if recErr.Engine != "openai" {
		t.Errorf("Engine = %q, want openai", recErr.Engine)
	}
}

func TestOpenAI_NoChoices(t *testing.T) {
	server := newOpenAIServer(t, func(t *testing.T, req chatRequest) (int, any) {
		reply := chatReply("")
		reply["choices"] = []any{}
		return http.StatusOK, reply
	})

	adapter := NewAdapter(NewOpenAILoader(OpenAIConfig{
		APIKey:  "test-api-key",
		BaseURL: server.URL + "/v1",
	}), nil)

	_, err := adapter.Recognize(context.Background(), imaging.Blob([]byte("img")), "eng", nil)
	var recErr *RecognitionError
	if !errors.As(err, &recErr) {
		t.Fatalf("error = %v, want *RecognitionError", err)
	}
}

func TestOpenAI_Unconfigured(t *testing.T) {
	adapter := NewAdapter(NewOpenAILoader(OpenAIConfig{}), nil)

	_, err := adapter.Recognize(context.Background(), imaging.Blob([]byte("img")), "eng", nil)
	if !errors.Is(err, ErrEngineUnavailable) {
		t.Fatalf("error = %v, want ErrEngineUnavailable", err)
	}
	if !errors.Is(err, ErrOpenAIUnconfigured) {
		t.Errorf("error = %v, want to wrap ErrOpenAIUnconfigured", err)
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain text", "plain text"},
		{"  padded \n", "padded"},
		{"```\nfenced\n```", "fenced"},
		{"```text\nline one\nline two\n```", "line one\nline two"},
		{"```inline```", "inline"},
		{"```\nunclosed", "unclosed"},
	}

	for _, tt := range tests {
		if got := stripFences(tt.in); got != tt.want {
			t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
