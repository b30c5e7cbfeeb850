package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anzhiyu-c/ibbs/pkg/constant"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(HTTPOptions{
		BaseURL:         srv.URL + "/",
		APIKey:          "test-key",
		Timeout:         2 * time.Second,
		InitialInterval: time.Millisecond,
	}, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestHTTPClient_GenerateTags(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tags", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body tagsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Go 并发", body.Title)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tags":["go","concurrency"]}`))
	})

	tags, err := c.GenerateTags(context.Background(), "Go 并发", "channel 与 goroutine")
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "concurrency"}, tags)
}

func TestHTTPClient_RetriesTransientErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"flagged":true,"categories":["spam"],"reason":"广告"}`))
	})

	res, err := c.Moderate(context.Background(), "买买买")
	require.NoError(t, err)
	assert.True(t, res.Flagged)
	assert.Equal(t, "广告", res.Reason)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestHTTPClient_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Rewrite(context.Background(), "hi", "formal")
	require.Error(t, err)
	assert.True(t, IsTransient(err))
	assert.True(t, errors.Is(err, constant.ErrAgentUnavailable))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestHTTPClient_ClientErrorIsFatal(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := c.ClassifyBugSeverity(context.Background(), "崩溃", "点击保存后页面白屏")
	require.Error(t, err)
	assert.True(t, IsFatal(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestHTTPClient_DecodeErrorIsFatal(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := c.DetectIntent(context.Background(), "hello", []string{"help"})
	require.Error(t, err)
	assert.True(t, IsFatal(err))
}

func TestHTTPClient_Chat(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat", r.URL.Path)
		var body chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"doc"}, body.Context)
		_, _ = w.Write([]byte(`{"reply":"你好"}`))
	})

	reply, err := c.Chat(context.Background(), ChatInput{Message: "hi", Context: []string{"doc"}})
	require.NoError(t, err)
	assert.Equal(t, "你好", reply)
}

func TestNewHTTPClient_RequiresBaseURL(t *testing.T) {
	_, err := NewHTTPClient(HTTPOptions{}, nil)
	assert.Error(t, err)
}

func TestNoneClient(t *testing.T) {
	_, err := NewNoneClient().GenerateTags(context.Background(), "a", "b")
	assert.ErrorIs(t, err, constant.ErrAgentDisabled)
}
