package daemon

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"
)

var ErrDaemonNotRunning = errors.New("daemon not running")

// Client is the CLI side of the control socket.
type Client struct {
	conn    net.Conn
	scanner *bufio.Scanner
}

// Dial connects to the daemon control socket.
func Dial(socketPath string) (*Client, error) {
	conn, err := net.DialTimeout("unix", socketPath, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDaemonNotRunning, err)
	}
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	return &Client{conn: conn, scanner: scanner}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Request sends one message and decodes the result payload into out
// (out may be nil).
func (c *Client) Request(typ MessageType, payload any, out any) error {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		raw = data
	}
	if err := writeMessage(c.conn, Message{Type: typ, Payload: raw}); err != nil {
		return fmt.Errorf("send %s: %w", typ, err)
	}

	msg, err := c.read()
	if err != nil {
		return err
	}
	if msg.Type == MsgError {
		return errors.New(msg.Error)
	}
	if out != nil && len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, out); err != nil {
			return fmt.Errorf("decode %s result: %w", typ, err)
		}
	}
	return nil
}

// Subscribe registers for the event stream and invokes handler per event
// until the connection drops.
func (c *Client) Subscribe(handler func(EventPayload)) error {
	if err := c.Request(MsgSubscribe, nil, nil); err != nil {
		return err
	}
	for {
		msg, err := c.read()
		if err != nil {
			return err
		}
		if msg.Type != MsgEvent {
			continue
		}
		var ev EventPayload
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			continue
		}
		handler(ev)
	}
}

func (c *Client) read() (Message, error) {
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return Message{}, err
		}
		return Message{}, errors.New("connection closed")
	}
	var msg Message
	if err := json.Unmarshal(c.scanner.Bytes(), &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
