package ai

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

func TestMockScriptedWrongGuesses(t *testing.T) {
	mock := &Mock{Chance: func() float64 { return 0.99 }}

	got := mock.Guess(context.Background(), Request{Word: "猫", Attempt: 1})
	assert.Equal(t, Result{Text: "うさぎ"}, got)

	got = mock.Guess(context.Background(), Request{Word: "知らない", Attempt: 1})
	assert.Equal(t, Result{Text: "食べ物かな"}, got)

	got = mock.Guess(context.Background(), Request{Word: "知らない", Attempt: 8})
	assert.Equal(t, Result{Text: "食べ物かな"}, got)
}

func TestMockCorrectFromThirdAttempt(t *testing.T) {
	lucky := &Mock{Chance: func() float64 { return 0.1 }}
	assert.False(t, lucky.Guess(context.Background(), Request{Word: "虹", Attempt: 2}).IsCorrect)
	assert.Equal(t, Result{Text: "虹", IsCorrect: true}, lucky.Guess(context.Background(), Request{Word: "虹", Attempt: 3}))

	unlucky := &Mock{Chance: func() float64 { return 0.5 }}
	assert.False(t, unlucky.Guess(context.Background(), Request{Word: "虹", Attempt: 5}).IsCorrect)
}

func TestVisionWithoutKeyUsesFallback(t *testing.T) {
	fallback := ResponderFunc(func(context.Context, Request) Result {
		return Result{Text: "fallback"}
	})
	vision := NewVision("", "http://unused", "model", fallback, nil)
	assert.Equal(t, "fallback", vision.Guess(context.Background(), Request{Word: "猫", Snapshot: "abc"}).Text)
}

func TestVisionParsesGuess(t *testing.T) {
	var seen visionRequest
	ts := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&seen))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":" かわいいペンギン "}}]}`))
	}))
	defer ts.Close()

	vision := NewVision("key", ts.URL, "gpt-4o-mini", nil, nil)
	got := vision.Guess(context.Background(), Request{Word: "ペンギン", Snapshot: "AAAA"})

	assert.Equal(t, Result{Text: "かわいいペンギン", IsCorrect: true}, got)
	require.Len(t, seen.Messages, 1)
	assert.Equal(t, "data:image/png;base64,AAAA", seen.Messages[0].Content[0].ImageURL.URL)
}

func TestVisionFailureLogsAndFallsBack(t *testing.T) {
	ts := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer ts.Close()

	logger, hook := test.NewNullLogger()
	vision := NewVision("key", ts.URL, "gpt-4o-mini", &Mock{Chance: func() float64 { return 1 }}, logger)
	got := vision.Guess(context.Background(), Request{Word: "猫", Attempt: 0, Snapshot: "AAAA"})

	assert.Equal(t, Result{Text: "犬"}, got)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}
