package kds

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

var (
	eventPrefix = []byte("evt/")
	sequenceKey = []byte("seq/events")
)

// EventLog is an append-only, badger-backed record of every kitchen event.
// Sequence numbers start at 1 and only grow; a restart may skip a few numbers.
type EventLog struct {
	db  *badger.DB
	seq *badger.Sequence
}

// OpenEventLog opens the log in dir, or an in-memory log when dir is empty.
func OpenEventLog(dir string) (*EventLog, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	seq, err := db.GetSequence(sequenceKey, 100)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("event log sequence: %w", err)
	}
	return &EventLog{db: db, seq: seq}, nil
}

func eventKey(seq uint64) []byte {
	key := make([]byte, len(eventPrefix)+8)
	copy(key, eventPrefix)
	binary.BigEndian.PutUint64(key[len(eventPrefix):], seq)
	return key
}

// Append assigns the next sequence number to msg and stores it.
func (l *EventLog) Append(msg Message) (Message, error) {
	n, err := l.seq.Next()
	if err != nil {
		return Message{}, fmt.Errorf("next event seq: %w", err)
	}
	msg.Seq = n + 1

	data, err := json.Marshal(msg)
	if err != nil {
		return Message{}, fmt.Errorf("encode event: %w", err)
	}
	err = l.db.Update(func(txn *badger.Txn) error {
		return txn.Set(eventKey(msg.Seq), data)
	})
	if err != nil {
		return Message{}, fmt.Errorf("store event %d: %w", msg.Seq, err)
	}
	return msg, nil
}

// Since returns up to limit events with a sequence number greater than after,
// oldest first. limit <= 0 means no limit.
func (l *EventLog) Since(after uint64, limit int) ([]Message, error) {
	events := []Message{}
	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = eventPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(eventKey(after + 1)); it.ValidForPrefix(eventPrefix); it.Next() {
			var msg Message
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &msg)
			})
			if err != nil {
				return err
			}
			events = append(events, msg)
			if limit > 0 && len(events) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read events after %d: %w", after, err)
	}
	return events, nil
}

// Prune drops events recorded before cutoff and returns how many were removed.
func (l *EventLog) Prune(cutoff time.Time) (int, error) {
	var stale [][]byte
	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = eventPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(eventPrefix); it.Next() {
			var msg Message
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &msg)
			}); err != nil {
				return err
			}
			if !msg.At.Before(cutoff) {
				break
			}
			stale = append(stale, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if len(stale) == 0 {
		return 0, nil
	}
	wb := l.db.NewWriteBatch()
	for _, key := range stale {
		if err := wb.Delete(key); err != nil {
			wb.Cancel()
			return 0, err
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, err
	}
	return len(stale), nil
}

func (l *EventLog) Close() error {
	if err := l.seq.Release(); err != nil {
		l.db.Close()
		return err
	}
	return l.db.Close()
}
