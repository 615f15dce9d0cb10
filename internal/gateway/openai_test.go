package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"messages"`
}

func newChatServer(t *testing.T, reply string, captured *chatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if captured != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}

		w.Header().Set("Content-Type", "application/json")
		choices := []map[string]any{}
		if reply != "" {
			choices = append(choices, map[string]any{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gemini-2.5-flash",
			"choices": choices,
		})
	}))
}

func TestOpenAICaller_TextPrompt(t *testing.T) {
	var req chatRequest
	srv := newChatServer(t, "- Uses: pain relief", &req)
	defer srv.Close()

	caller := NewOpenAICaller(OpenAIConfig{BaseURL: srv.URL + "/v1/", APIKey: "test-key", Model: "gemini-2.5-flash"})
	text, err := caller.Call(context.Background(), TextPrompt("summarise paracetamol"))
	require.NoError(t, err)
	assert.Equal(t, "- Uses: pain relief", text)

	assert.Equal(t, "gemini-2.5-flash", req.Model)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
	assert.JSONEq(t, `"summarise paracetamol"`, string(req.Messages[0].Content))
}

func TestOpenAICaller_ImagePrompt(t *testing.T) {
	var req chatRequest
	srv := newChatServer(t, "Drug Name: Amoxicillin", &req)
	defer srv.Close()

	caller := NewOpenAICaller(OpenAIConfig{BaseURL: srv.URL + "/v1", APIKey: "test-key", Model: "m"})
	_, err := caller.Call(context.Background(), Prompt{
		Text:   "identify this packaging",
		Images: []string{"data:image/png;base64,iVBORw0KGgo="},
	})
	require.NoError(t, err)

	require.Len(t, req.Messages, 1)
	var parts []map[string]any
	require.NoError(t, json.Unmarshal(req.Messages[0].Content, &parts))
	require.Len(t, parts, 2)
	assert.Equal(t, "text", parts[0]["type"])
	assert.Equal(t, "image_url", parts[1]["type"])
	imageURL, ok := parts[1]["image_url"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", imageURL["url"])
}

func TestOpenAICaller_NoChoicesIsEmptyText(t *testing.T) {
	srv := newChatServer(t, "", nil)
	defer srv.Close()

	caller := NewOpenAICaller(OpenAIConfig{BaseURL: srv.URL + "/v1", APIKey: "test-key", Model: "m"})
	text, err := caller.Call(context.Background(), TextPrompt("p"))
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestOpenAICaller_HTTPErrorIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	}))
	defer srv.Close()

	caller := NewOpenAICaller(OpenAIConfig{BaseURL: srv.URL + "/v1", APIKey: "test-key", Model: "m"})
	_, err := caller.Call(context.Background(), TextPrompt("p"))
	assert.Error(t, err)
}
