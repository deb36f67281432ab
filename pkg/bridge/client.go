package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/b/tabsort/pkg/perf"
)

// callTimeout bounds one host-surface round trip to the extension.
const callTimeout = 30 * time.Second

var (
	ErrNotConnected = errors.New("no extension connected")
	ErrClientGone   = errors.New("extension disconnected")
)

// client is one connected extension. Requests are correlated by ID; the read
// loop (in server.go) delivers result messages into pending channels.
type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	nextID  atomic.Uint64
	mu      sync.Mutex
	hello   HelloPayload // guarded by mu; written by the read loop
	pending map[uint64]chan Message
	closed  chan struct{}
	once    sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn:    conn,
		pending: make(map[uint64]chan Message),
		closed:  make(chan struct{}),
	}
}

// close releases all waiters and the underlying connection.
func (c *client) close() {
	c.once.Do(func() {
		close(c.closed)
		c.conn.Close()
		c.mu.Lock()
		for id, ch := range c.pending {
			close(ch)
			delete(c.pending, id)
		}
		c.mu.Unlock()
	})
}

// send writes one message; gorilla websocket permits one concurrent writer.
func (c *client) send(msg Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.conn.WriteJSON(msg)
}

// call issues one correlated request and decodes the result payload into out
// (out may be nil for commands with no result body).
func (c *client) call(ctx context.Context, typ MessageType, payload any, out any) error {
	timer := perf.Start("bridge." + string(typ))
	defer timer.Stop()

	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s payload: %w", typ, err)
		}
		raw = data
	}

	id := c.nextID.Add(1)
	ch := make(chan Message, 1)
	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	if err := c.send(Message{Type: typ, ID: id, Payload: raw}); err != nil {
		return fmt.Errorf("send %s: %w", typ, err)
	}

	timeout := time.NewTimer(callTimeout)
	defer timeout.Stop()

	select {
	case msg, ok := <-ch:
		if !ok {
			return ErrClientGone
		}
		if msg.Error != "" {
			return fmt.Errorf("%s rejected: %s", typ, msg.Error)
		}
		if out != nil && len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, out); err != nil {
				return fmt.Errorf("decode %s result: %w", typ, err)
			}
		}
		return nil
	case <-c.closed:
		return ErrClientGone
	case <-ctx.Done():
		return ctx.Err()
	case <-timeout.C:
		return fmt.Errorf("%s: request timed out", typ)
	}
}

func (c *client) setHello(h HelloPayload) {
	c.mu.Lock()
	c.hello = h
	c.mu.Unlock()
}

func (c *client) helloInfo() HelloPayload {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hello
}

// deliver routes a result message to its waiting caller. The send happens
// under the mutex so close cannot close the channel in between; the channel
// is buffered, so holding the lock never blocks.
func (c *client) deliver(msg Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ch, ok := c.pending[msg.ID]; ok {
		ch <- msg
	}
}
