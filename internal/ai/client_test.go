package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"log/slog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UTKARSHJHA-2005/CODIFY/internal/app"
)

func testClient(url string) *Client {
	cfg := app.Config{
		AIAPIURL: url,
		AIAPIKey: "test-key",
		AIModel:  "test-model",
	}
	return New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestEnabled(t *testing.T) {
	assert.True(t, testClient("http://example").Enabled())

	c := New(app.Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.False(t, c.Enabled())
}

func TestAnalyzeSendsPromptAndParsesResult(t *testing.T) {
	var gotAuth string
	var gotReq generateRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(generateResponse{Result: "two issues found"})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	out, err := c.Analyze(context.Background(), "let x = 1")
	require.NoError(t, err)
	assert.Equal(t, "two issues found", out)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "test-model", gotReq.Model)
	assert.Contains(t, gotReq.Prompt, "let x = 1")
}

func TestAnalyzeNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Analyze(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestAnalyzeInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Analyze(context.Background(), "x")
	assert.Error(t, err)
}

func TestAnalyzeEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(generateResponse{})
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Analyze(context.Background(), "x")
	assert.Error(t, err)
}
