package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"ideation-orchestrator/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(url string) *Slack {
	s := New("xoxb-1", "C1").WithAPIURL(url)
	s.backoff = func(int) time.Duration { return time.Millisecond }
	return s
}

func TestNotify(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat.postMessage", r.URL.Path)
		assert.Equal(t, "Bearer xoxb-1", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	err := testClient(srv.URL).Notify(context.Background(), entity.Notification{
		Text:   "hello",
		Blocks: []entity.Block{{Type: "divider"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "C1", got["channel"])
	assert.Equal(t, false, got["unfurl_links"])
	assert.Len(t, got["blocks"], 1)
}

func TestNotifyRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	require.NoError(t, testClient(srv.URL).Notify(context.Background(), entity.Notification{Text: "x"}))
	assert.EqualValues(t, 3, calls)
}

func TestNotifyAPIErrorIsFinal(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
	}))
	defer srv.Close()

	err := testClient(srv.URL).Notify(context.Background(), entity.Notification{Text: "x"})
	assert.EqualError(t, err, "slack: channel_not_found")
	assert.EqualValues(t, 1, calls)

	assert.Error(t, New("", "").Notify(context.Background(), entity.Notification{}))
}
