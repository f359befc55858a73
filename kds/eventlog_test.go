package kds

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLog(t *testing.T) *EventLog {
	t.Helper()
	log, err := OpenEventLog("")
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })
	return log
}

func TestEventLogAppendAssignsIncreasingSeq(t *testing.T) {
	log := newTestLog(t)

	var last uint64
	for i := 0; i < 5; i++ {
		msg, err := log.Append(Message{Type: EventNewOrder, Payload: json.RawMessage(`{"id":1}`), At: time.Now()})
		require.NoError(t, err)
		assert.Greater(t, msg.Seq, last)
		last = msg.Seq
	}
	assert.Equal(t, uint64(5), last)
}

func TestEventLogSince(t *testing.T) {
	log := newTestLog(t)
	for i := 0; i < 10; i++ {
		_, err := log.Append(Message{Type: EventOrderStatusUpdate, Payload: json.RawMessage(`{}`), At: time.Now()})
		require.NoError(t, err)
	}

	all, err := log.Since(0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 10)

	tail, err := log.Since(7, 0)
	require.NoError(t, err)
	require.Len(t, tail, 3)
	assert.Equal(t, uint64(8), tail[0].Seq)
	assert.Equal(t, uint64(10), tail[2].Seq)

	limited, err := log.Since(2, 4)
	require.NoError(t, err)
	require.Len(t, limited, 4)
	assert.Equal(t, uint64(3), limited[0].Seq)

	none, err := log.Since(10, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestEventLogPrune(t *testing.T) {
	log := newTestLog(t)
	old := time.Now().Add(-48 * time.Hour)

	for i := 0; i < 3; i++ {
		_, err := log.Append(Message{Type: EventNewOrder, Payload: json.RawMessage(`{}`), At: old})
		require.NoError(t, err)
	}
	_, err := log.Append(Message{Type: EventNewOrder, Payload: json.RawMessage(`{}`), At: time.Now()})
	require.NoError(t, err)

	removed, err := log.Prune(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	rest, err := log.Since(0, 0)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, uint64(4), rest[0].Seq)

	removed, err = log.Prune(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Zero(t, removed)
}
