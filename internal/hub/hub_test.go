package hub

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pcg/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// connect opens an event stream that is closed on cleanup. Servers must be
// registered with t.Cleanup before calling it so they close afterwards.
func connect(t *testing.T, url string) *bufio.Reader {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": connected\n", line)
	return reader
}

// nextEvent skips comments and blank lines and returns the next frame
func nextEvent(t *testing.T, reader *bufio.Reader) (string, string) {
	t.Helper()
	var name string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			return name, strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestBroadcastReachesClient(t *testing.T) {
	done := make(chan struct{})
	defer close(done)
	h := New(nil)
	go h.Run(done)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	reader := connect(t, srv.URL+"?types=process_finished")
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	h.Broadcast(service.Event{Type: service.EventGraphAsserted, Payload: "[Person]"})
	h.Broadcast(service.Event{Type: service.EventProcessFinished, Payload: map[string]string{"process": "ancestry"}})

	name, data := nextEvent(t, reader)
	assert.Equal(t, "process_finished", name)
	assert.JSONEq(t, `{"process":"ancestry"}`, data)
}

func TestForwardRelaysBusEvents(t *testing.T) {
	done := make(chan struct{})
	defer close(done)
	h := New(nil)
	go h.Run(done)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	reader := connect(t, srv.URL)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	bus := service.NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	forwarding := make(chan struct{})
	go func() {
		h.Forward(ctx, bus)
		close(forwarding)
	}()

	// Forward subscribes asynchronously, so keep publishing until it does
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				bus.Publish(service.Event{Type: service.EventKnowledgeLoaded, Payload: "family"})
			case <-ctx.Done():
				return
			}
		}
	}()

	name, data := nextEvent(t, reader)
	assert.Equal(t, "knowledge_loaded", name)
	assert.Equal(t, `"family"`, data)

	cancel()
	select {
	case <-forwarding:
	case <-time.After(2 * time.Second):
		t.Fatal("forward did not return")
	}
}

func TestParseTypes(t *testing.T) {
	assert.Nil(t, parseTypes(""))
	got := parseTypes("graph_exported, process_failed,")
	assert.Equal(t, map[service.EventType]bool{
		service.EventGraphExported: true,
		service.EventProcessFailed: true,
	}, got)

	c := &Client{types: got}
	assert.True(t, c.wants(service.EventGraphExported))
	assert.False(t, c.wants(service.EventGraphAsserted))
	assert.True(t, (&Client{}).wants(service.EventGraphAsserted))
}

func TestRunStopsAndDisconnects(t *testing.T) {
	done := make(chan struct{})
	h := New(nil)
	stopped := make(chan struct{})
	go func() {
		h.Run(done)
		close(stopped)
	}()

	client := &Client{id: "c", events: make(chan []byte, 1)}
	h.register <- client
	close(done)

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
	assert.Equal(t, 0, h.ClientCount())
	_, open := <-client.events
	assert.False(t, open)
}

func TestBroadcastDropsWhenFull(t *testing.T) {
	h := New(nil)
	for i := 0; i < cap(h.broadcast)+10; i++ {
		h.Broadcast(service.Event{Type: service.EventGraphAsserted, Payload: i})
	}
	assert.Len(t, h.broadcast, cap(h.broadcast))
}
