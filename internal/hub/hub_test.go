package hub

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBroadcastReachesClient(t *testing.T) {
	h := New(zap.NewNop())
	go h.Run()
	defer h.Close()

	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": connected\n", line)

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	h.Broadcast(map[string]string{"type": "node_created"})

	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: ") {
			break
		}
	}
	assert.JSONEq(t, `{"type":"node_created"}`, strings.TrimPrefix(strings.TrimSpace(line), "data: "))
}

func TestCloseEndsStreams(t *testing.T) {
	h := New(nil)
	go h.Run()

	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	h.Close()

	done := make(chan struct{})
	go func() {
		reader := bufio.NewReader(resp.Body)
		for {
			if _, err := reader.ReadString('\n'); err != nil {
				close(done)
				return
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not end after Close")
	}
}

type namedEvent struct {
	Type string `json:"type"`
}

func (e namedEvent) EventName() string { return e.Type }

func TestFrame(t *testing.T) {
	msg, err := frame(7, namedEvent{Type: "edge_deleted"})
	require.NoError(t, err)
	assert.Equal(t, "id: 7\nevent: edge_deleted\ndata: {\"type\":\"edge_deleted\"}\n\n", string(msg))

	msg, err = frame(8, map[string]int{"count": 2})
	require.NoError(t, err)
	assert.Equal(t, "id: 8\ndata: {\"count\":2}\n\n", string(msg))

	_, err = frame(9, make(chan int))
	assert.Error(t, err)
}
