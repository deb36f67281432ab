package bridge

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/b/tabsort/pkg/browser"
)

type ServerConfig struct {
	Host  string
	Port  int
	Token string // empty disables auth
}

// Server accepts one extension connection at a time; a newer connection
// displaces the older one.
type Server struct {
	cfg        ServerConfig
	log        *slog.Logger
	upgrader   websocket.Upgrader
	httpServer *http.Server

	mu     sync.RWMutex
	client *client

	// OnTrigger runs when the extension sends an organize message. It is the
	// outermost boundary for the whole operation: failures stop here.
	OnTrigger func(host browser.Host)

	// OnConnected/OnDisconnected observe the extension attach lifecycle.
	OnConnected    func(HelloPayload)
	OnDisconnected func()
}

func NewServer(cfg ServerConfig, log *slog.Logger) *Server {
	s := &Server{cfg: cfg, log: log}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		// The extension connects from a browser-internal origin.
		CheckOrigin: func(*http.Request) bool { return true },
	}
	return s
}

// Handler returns the bridge's HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// Start begins serving the websocket endpoint.
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("bridge server stopped", "err", err)
		}
	}()
	s.log.Info("bridge listening", "addr", addr)
	return nil
}

// Stop closes the server and any connected extension.
func (s *Server) Stop() {
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	s.mu.Lock()
	if s.client != nil {
		s.client.close()
		s.client = nil
	}
	s.mu.Unlock()
}

// Connected reports whether an extension is attached, and its hello info.
func (s *Server) Connected() (HelloPayload, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.client == nil {
		return HelloPayload{}, false
	}
	return s.client.helloInfo(), true
}

// Host returns a browser.Host backed by the connected extension.
func (s *Server) Host() (browser.Host, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.client == nil {
		return nil, ErrNotConnected
	}
	return &remoteHost{c: s.client}, nil
}

// Notify sends a fire-and-forget message to the connected extension.
func (s *Server) Notify(typ MessageType, payload any) {
	s.mu.RLock()
	c := s.client
	s.mu.RUnlock()
	if c == nil {
		return
	}
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			s.log.Error("marshal notify payload", "type", typ, "err", err)
			return
		}
		raw = data
	}
	if err := c.send(Message{Type: typ, Payload: raw}); err != nil {
		s.log.Warn("notify failed", "type", typ, "err", err)
	}
}

func (s *Server) authorized(r *http.Request) bool {
	if s.cfg.Token == "" {
		return true
	}
	if r.URL.Query().Get("token") == s.cfg.Token {
		return true
	}
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ") == s.cfg.Token
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "err", err)
		return
	}

	c := newClient(conn)
	s.mu.Lock()
	if s.client != nil {
		s.log.Info("replacing existing extension connection")
		s.client.close()
	}
	s.client = c
	s.mu.Unlock()
	s.log.Info("extension connected", "remote", r.RemoteAddr)

	go s.readLoop(c)
}

func (s *Server) readLoop(c *client) {
	defer func() {
		c.close()
		s.mu.Lock()
		if s.client == c {
			s.client = nil
		}
		s.mu.Unlock()
		s.log.Info("extension disconnected")
		if s.OnDisconnected != nil {
			s.OnDisconnected()
		}
	}()

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			select {
			case <-c.closed:
			default:
				s.log.Debug("read failed", "err", err)
			}
			return
		}

		switch msg.Type {
		case MsgHello:
			var hello HelloPayload
			if len(msg.Payload) > 0 {
				if err := json.Unmarshal(msg.Payload, &hello); err != nil {
					s.log.Warn("bad hello payload", "err", err)
					continue
				}
			}
			c.setHello(hello)
			s.log.Info("extension hello", "browser", hello.Browser, "version", hello.Version)
			if s.OnConnected != nil {
				s.OnConnected(hello)
			}

		case MsgResult:
			c.deliver(msg)

		case MsgOrganize:
			if s.OnTrigger != nil {
				go s.OnTrigger(&remoteHost{c: c})
			}

		default:
			s.log.Debug("unexpected message from extension", "type", msg.Type)
		}
	}
}
