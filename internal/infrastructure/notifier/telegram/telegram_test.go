package telegram

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

func TestNotify(t *testing.T) {
	var calls int32
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botT/sendMessage", r.URL.Path)
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	tg := New("T", 42)
	tg.APIURL = srv.URL
	tg.backoff = func(int) time.Duration { return time.Millisecond }

	err := tg.Notify(context.Background(), entity.Notification{
		Text: "fallback",
		Blocks: []entity.Block{
			{Type: "header", Text: &entity.BlockText{Type: "plain_text", Text: "Done"}},
			{Type: "section", Fields: []entity.BlockText{{Type: "mrkdwn", Text: "*Score:* 7"}}},
		},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls)
	assert.Equal(t, "Done\n*Score:* 7", got["text"])
	assert.EqualValues(t, 42, got["chat_id"])
}

func TestNotifyRequiresConfig(t *testing.T) {
	assert.Error(t, New("", 0).Notify(context.Background(), entity.Notification{Text: "x"}))
}
