package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProvider(t *testing.T, handler http.HandlerFunc) (*Reformatter, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	r := NewReformatter(NewOpenAICompatibleClient(5*time.Second), ChatConfig{
		BaseURL:     srv.URL,
		APIKey:      "sk-test",
		Model:       "gpt-3.5-turbo",
		Temperature: 0.7,
	}, nil)
	return r, srv
}

func TestParentMessageSendsPromptAndTrimsReply(t *testing.T) {
	var got struct {
		Model    string        `json:"model"`
		Messages []ChatMessage `json:"messages"`
	}
	r, _ := newProvider(t, func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/chat/completions", req.URL.Path)
		assert.Equal(t, "Bearer sk-test", req.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  Bonjour, Léa a revu les fractions.  "}}]}`))
	})

	out := r.ParentMessage(context.Background(), "on a revu les fractions", "Léa")

	assert.Equal(t, "Bonjour, Léa a revu les fractions.", out)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, got.Messages[1].Content, "Léa")
	assert.Contains(t, got.Messages[1].Content, "on a revu les fractions")
}

func TestParentMessageKeepsTranscriptVerbatim(t *testing.T) {
	var got struct {
		Messages []ChatMessage `json:"messages"`
	}
	r, _ := newProvider(t, func(w http.ResponseWriter, req *http.Request) {
		require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	})

	r.ParentMessage(context.Background(), "il a dit \"j'ai compris\"\npuis a fini", "Léa")

	require.Len(t, got.Messages, 2)
	assert.Equal(t, "Élève : Léa\nCompte-rendu oral brut : \"il a dit \"j'ai compris\"\npuis a fini\"", got.Messages[1].Content)
}

func TestParentMessageFallsBackOnProviderError(t *testing.T) {
	r, _ := newProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
	})

	out := r.ParentMessage(context.Background(), "on a revu les fractions", "Léa")
	assert.Equal(t, FailureMessage, out)
}

func TestParentMessageFallsBackOnInBandError(t *testing.T) {
	r, _ := newProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	})

	assert.Equal(t, FailureMessage, r.ParentMessage(context.Background(), "x", "Léa"))
}

func TestParentMessageWithoutKey(t *testing.T) {
	r := NewReformatter(NewOpenAICompatibleClient(time.Second), ChatConfig{BaseURL: "http://127.0.0.1:1"}, nil)
	assert.Equal(t, MissingKeyMessage, r.ParentMessage(context.Background(), "x", "Léa"))
}

func TestParentMessageUnreachableProvider(t *testing.T) {
	r := NewReformatter(NewOpenAICompatibleClient(time.Second), ChatConfig{BaseURL: "http://127.0.0.1:1", APIKey: "k"}, nil)
	assert.Equal(t, FailureMessage, r.ParentMessage(context.Background(), "x", "Léa"))
}
