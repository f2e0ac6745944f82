package repository

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisChannel(t *testing.T) *RedisChannel {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisChannel(client, "kavarna:test-orders")
}

func TestRedisChannel_EmptyPull(t *testing.T) {
	ch := setupRedisChannel(t)
	_, err := ch.Pull(context.Background())
	assert.ErrorIs(t, err, ErrChannelEmpty)
}

func TestRedisChannel_PushPullRoundTrip(t *testing.T) {
	ch := setupRedisChannel(t)
	ctx := context.Background()

	payload := []byte(`[{"id":1,"customerName":"Marie"}]`)
	require.NoError(t, ch.Push(ctx, payload))

	got, err := ch.Pull(ctx)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestRedisChannel_LastWriteWins(t *testing.T) {
	ch := setupRedisChannel(t)
	ctx := context.Background()

	require.NoError(t, ch.Push(ctx, []byte(`[1]`)))
	require.NoError(t, ch.Push(ctx, []byte(`[2]`)))

	got, err := ch.Pull(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[2]`), got, "the channel keeps only the latest blob")
}

func TestHTTPChannel_RoundTrip(t *testing.T) {
	var (
		mu   sync.Mutex
		blob []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			if blob == nil {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Write(blob)
		case http.MethodPost:
			body, _ := io.ReadAll(r.Body)
			blob = body
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	ch := NewHTTPChannel(srv.URL, time.Second)
	ctx := context.Background()

	_, err := ch.Pull(ctx)
	assert.ErrorIs(t, err, ErrChannelEmpty, "404 maps to the empty channel")

	payload := []byte(`[{"id":7}]`)
	require.NoError(t, ch.Push(ctx, payload))

	got, err := ch.Pull(ctx)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestHTTPChannel_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ch := NewHTTPChannel(srv.URL, time.Second)
	ctx := context.Background()

	_, err := ch.Pull(ctx)
	assert.Error(t, err)
	assert.Error(t, ch.Push(ctx, []byte(`[]`)))
}

func TestNopChannel(t *testing.T) {
	ch := NopChannel{}
	_, err := ch.Pull(context.Background())
	assert.ErrorIs(t, err, ErrChannelEmpty)
	assert.NoError(t, ch.Push(context.Background(), []byte(`[]`)))
}
