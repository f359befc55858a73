package kds

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/dineflow/utils"
)

// Event types
const (
	EventNewOrder          = "NEW_ORDER"
	EventOrderStatusUpdate = "ORDER_STATUS_UPDATE"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 256
)

type Message struct {
	Seq     uint64          `json:"seq"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	At      time.Time       `json:"at"`
}

// Mirror receives a copy of every emitted event, e.g. a message broker.
type Mirror interface {
	Publish(ctx context.Context, msg Message) error
}

type frame struct {
	seq  uint64
	data []byte
}

// Client is one connected kitchen display.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	role string
	send chan frame

	since        *uint64
	replay       []frame
	lastReplayed uint64
	ready        chan struct{}
}

// Hub fans kitchen events out to every connected display. Events are written
// to the EventLog first so a display reconnecting with its last seen sequence
// number gets what it missed before live traffic.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan frame
	done       chan struct{}

	log         *EventLog
	mirrors     []Mirror
	replayLimit int

	emitMu  sync.Mutex
	counter uint64
	count   atomic.Int64
}

// NewHub creates a hub; log may be nil, in which case nothing can be replayed.
func NewHub(log *EventLog, replayLimit int, mirrors ...Mirror) *Hub {
	return &Hub{
		clients:     make(map[*Client]struct{}),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan frame, sendBuffer),
		done:        make(chan struct{}),
		log:         log,
		mirrors:     mirrors,
		replayLimit: replayLimit,
	}
}

func (h *Hub) Log() *EventLog {
	if h == nil {
		return nil
	}
	return h.log
}

func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// Run owns the client set until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.count.Store(0)
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.prepareReplay(c)
			close(c.ready)
			h.count.Store(int64(len(h.clients)))
			utils.InfoLogger.WithFields(logrus.Fields{
				"role":    c.role,
				"replay":  len(c.replay),
				"clients": len(h.clients),
			}).Info("kds client connected")

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.count.Store(int64(len(h.clients)))
			}

		case f := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- f:
				default:
					// slow display: drop it, it can reconnect with ?since=
					delete(h.clients, c)
					close(c.send)
					utils.ErrorLogger.WithField("role", c.role).Error("kds client too slow, disconnected")
				}
			}
			h.count.Store(int64(len(h.clients)))
		}
	}
}

// prepareReplay loads every logged event after c.since, replayLimit events per
// read, so the display is caught up to the live edge before it is released.
func (h *Hub) prepareReplay(c *Client) {
	if c.since == nil || h.log == nil {
		return
	}
	after := *c.since
	for {
		events, err := h.log.Since(after, h.replayLimit)
		if err != nil {
			utils.ErrorLogger.WithError(err).WithField("after", after).Error("kds replay failed")
			return
		}
		for _, msg := range events {
			data, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			c.replay = append(c.replay, frame{seq: msg.Seq, data: data})
			c.lastReplayed = msg.Seq
		}
		if len(events) == 0 || h.replayLimit <= 0 || len(events) < h.replayLimit {
			return
		}
		after = events[len(events)-1].Seq
	}
}

// Emit records an event and broadcasts it. Mirror failures are logged only.
func (h *Hub) Emit(ctx context.Context, eventType string, payload interface{}) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	msg := Message{Type: eventType, Payload: raw, At: time.Now().UTC()}

	h.emitMu.Lock()
	defer h.emitMu.Unlock()

	if h.log != nil {
		if msg, err = h.log.Append(msg); err != nil {
			return Message{}, err
		}
	} else {
		h.counter++
		msg.Seq = h.counter
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return Message{}, err
	}

	select {
	case h.broadcast <- frame{seq: msg.Seq, data: data}:
	case <-h.done:
	case <-ctx.Done():
		return msg, ctx.Err()
	}

	for _, m := range h.mirrors {
		if err := m.Publish(ctx, msg); err != nil {
			utils.ErrorLogger.WithError(err).WithField("seq", msg.Seq).Error("kds mirror publish failed")
		}
	}
	return msg, nil
}

// ServeClient registers conn and blocks until the display disconnects.
// since, when set, asks for every logged event after that sequence number.
func (h *Hub) ServeClient(ctx context.Context, conn *websocket.Conn, role string, since *uint64) {
	c := &Client{
		hub:   h,
		conn:  conn,
		role:  role,
		send:  make(chan frame, sendBuffer),
		since: since,
		ready: make(chan struct{}),
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	case <-ctx.Done():
		conn.Close()
		return
	}
	<-c.ready

	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		// displays only listen; anything they send is discarded
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for _, f := range c.replay {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, f.data); err != nil {
			return
		}
	}

	for {
		select {
		case f, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if f.seq <= c.lastReplayed {
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, f.data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
