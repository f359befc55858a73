package kds

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMirror struct {
	mu   sync.Mutex
	msgs []Message
	err  error
}

func (m *recordingMirror) Publish(ctx context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msg)
	return m.err
}

func startHub(t *testing.T, log *EventLog, mirrors ...Mirror) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(log, 100, mirrors...)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		var since *uint64
		if raw := r.URL.Query().Get("since"); raw != "" {
			if v, err := strconv.ParseUint(raw, 10, 64); err == nil {
				since = &v
			}
		}
		hub.ServeClient(context.Background(), conn, "chef", since)
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHubBroadcastsToEveryClient(t *testing.T) {
	hub, srv := startHub(t, newTestLog(t))

	a := dial(t, srv, "")
	b := dial(t, srv, "")
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	sent, err := hub.Emit(context.Background(), EventNewOrder, map[string]interface{}{"id": 7, "total_amount": 79})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), sent.Seq)

	for _, conn := range []*websocket.Conn{a, b} {
		msg := readMessage(t, conn)
		assert.Equal(t, EventNewOrder, msg.Type)
		assert.Equal(t, sent.Seq, msg.Seq)
		assert.JSONEq(t, `{"id":7,"total_amount":79}`, string(msg.Payload))
	}
}

func TestHubReplaysMissedEventsBeforeLive(t *testing.T) {
	log := newTestLog(t)
	hub, srv := startHub(t, log)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := hub.Emit(ctx, EventOrderStatusUpdate, map[string]int{"n": i})
		require.NoError(t, err)
	}

	conn := dial(t, srv, "?since=1")
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	_, err := hub.Emit(ctx, EventNewOrder, map[string]int{"n": 3})
	require.NoError(t, err)

	var seqs []uint64
	for i := 0; i < 3; i++ {
		seqs = append(seqs, readMessage(t, conn).Seq)
	}
	assert.Equal(t, []uint64{2, 3, 4}, seqs)
}

func TestHubWithoutLogStillNumbersEvents(t *testing.T) {
	hub, srv := startHub(t, nil)
	conn := dial(t, srv, "?since=0")
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	first, err := hub.Emit(context.Background(), EventNewOrder, struct{}{})
	require.NoError(t, err)
	second, err := hub.Emit(context.Background(), EventNewOrder, struct{}{})
	require.NoError(t, err)
	assert.Equal(t, first.Seq+1, second.Seq)

	assert.Equal(t, first.Seq, readMessage(t, conn).Seq)
	assert.Equal(t, second.Seq, readMessage(t, conn).Seq)
}

func TestHubMirrorFailureDoesNotFailEmit(t *testing.T) {
	mirror := &recordingMirror{err: errors.New("broker down")}
	hub, _ := startHub(t, newTestLog(t), mirror)

	msg, err := hub.Emit(context.Background(), EventOrderStatusUpdate, map[string]string{"status": "ready"})
	require.NoError(t, err)

	mirror.mu.Lock()
	defer mirror.mu.Unlock()
	require.Len(t, mirror.msgs, 1)
	assert.Equal(t, msg.Seq, mirror.msgs[0].Seq)
}

func TestHubUnregistersClosedClient(t *testing.T) {
	hub, srv := startHub(t, nil)
	conn := dial(t, srv, "")
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubReplayPagesPastLimit(t *testing.T) {
	log := newTestLog(t)
	hub, srv := startHub(t, log)
	ctx := context.Background()

	// startHub reads the log 100 events at a time
	for i := 0; i < 150; i++ {
		_, err := hub.Emit(ctx, EventNewOrder, map[string]int{"n": i})
		require.NoError(t, err)
	}

	conn := dial(t, srv, "?since=0")
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	live, err := hub.Emit(ctx, EventOrderStatusUpdate, map[string]int{"n": 150})
	require.NoError(t, err)
	require.Equal(t, uint64(151), live.Seq)

	for want := uint64(1); want <= live.Seq; want++ {
		require.Equal(t, want, readMessage(t, conn).Seq)
	}
}
