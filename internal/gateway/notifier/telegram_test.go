package notifier

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newTestTelegram(url string) *Telegram {
	tg := NewTelegram("token", "42")
	tg.BaseURL = url
	tg.RetryDelay = 0
	return tg
}

func TestTelegramSendText(t *testing.T) {
	var got []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottoken/sendMessage", r.URL.Path)
		got, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer srv.Close()

	err := newTestTelegram(srv.URL).SendText(context.Background(), "hello")
	require.NoError(t, err)

	payload := gjson.ParseBytes(got)
	assert.Equal(t, "42", payload.Get("chat_id").String())
	assert.Equal(t, "hello", payload.Get("text").String())
	assert.Equal(t, "Markdown", payload.Get("parse_mode").String())
	assert.True(t, payload.Get("disable_web_page_preview").Bool())
}

func TestTelegramRetriesAndReportsDescription(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	err := newTestTelegram(srv.URL).SendText(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
	assert.Equal(t, int32(3), hits.Load())
}

func TestTelegramRecoversAfterFailure(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	require.NoError(t, newTestTelegram(srv.URL).SendText(context.Background(), "hi"))
	assert.Equal(t, int32(2), hits.Load())
}

func TestTelegramRequiresCredentials(t *testing.T) {
	err := NewTelegram("", "").SendText(context.Background(), "x")
	assert.Error(t, err)
}

type failingNotifier struct{ calls int }

func (f *failingNotifier) SendText(context.Context, string) error {
	f.calls++
	return errors.New("network down")
}

func TestDeliverSwallowsFailures(t *testing.T) {
	n := &failingNotifier{}
	ok := Deliver(context.Background(), n, StructuredMessage{Title: "x", Sections: []MessageSection{{Lines: []string{"y"}}}})
	assert.False(t, ok)
	assert.Equal(t, 1, n.calls)

	assert.True(t, Deliver(context.Background(), Noop{}, StructuredMessage{Title: "x"}))
	assert.False(t, Deliver(context.Background(), nil, StructuredMessage{}))
}
