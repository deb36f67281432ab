package daemon

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/b/tabsort/pkg/sorter"
	"github.com/b/tabsort/pkg/suggest"
)

// Server is the control-socket server the CLI talks to.
type Server struct {
	socketPath string
	pidPath    string
	listener   net.Listener
	done       chan struct{}
	stopOnce   sync.Once

	subsMu sync.Mutex
	subs   map[net.Conn]struct{}

	// Request handlers, wired by the daemon main.
	OnStatus   func() StatusPayload
	OnOrganize func(dryRun bool) (sorter.Result, error)
	OnSuggest  func() ([]suggest.Suggestion, error)
}

// NewServer creates a control server on the given socket/pidfile paths.
func NewServer(socketPath, pidPath string) *Server {
	return &Server{
		socketPath: socketPath,
		pidPath:    pidPath,
		done:       make(chan struct{}),
		subs:       make(map[net.Conn]struct{}),
	}
}

// Start claims the pidfile and begins listening.
func (s *Server) Start() error {
	if err := s.checkAndClaimPid(); err != nil {
		return err
	}

	// Remove stale socket if it exists (safe now that we own the pidfile)
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		os.Remove(s.pidPath)
		return fmt.Errorf("failed to listen on socket: %w", err)
	}
	s.listener = listener

	go s.acceptLoop()
	return nil
}

// checkAndClaimPid checks for an existing daemon and claims the pidfile.
func (s *Server) checkAndClaimPid() error {
	if data, err := os.ReadFile(s.pidPath); err == nil {
		pidStr := strings.TrimSpace(string(data))
		if pid, err := strconv.Atoi(pidStr); err == nil && pid > 0 {
			if process, err := os.FindProcess(pid); err == nil {
				// On Unix FindProcess always succeeds; signal 0 probes liveness
				if err := process.Signal(syscall.Signal(0)); err == nil {
					return fmt.Errorf("daemon already running with pid %d", pid)
				}
			}
		}
		// Stale pidfile, remove it
		os.Remove(s.pidPath)
	}

	pid := os.Getpid()
	if err := os.WriteFile(s.pidPath, []byte(strconv.Itoa(pid)), 0644); err != nil {
		return fmt.Errorf("failed to write pidfile: %w", err)
	}
	return nil
}

// Stop shuts down the server and disconnects subscribers. Safe to call more
// than once; error paths in the daemon main stop explicitly and again via
// defer.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.listener != nil {
			s.listener.Close()
		}
		s.subsMu.Lock()
		for conn := range s.subs {
			conn.Close()
			delete(s.subs, conn)
		}
		s.subsMu.Unlock()
		os.Remove(s.socketPath)
		os.Remove(s.pidPath)
	})
}

// Broadcast sends an event to every subscribed client.
func (s *Server) Broadcast(ev EventPayload) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	msg := Message{Type: MsgEvent, Payload: payload}

	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for conn := range s.subs {
		if err := writeMessage(conn, msg); err != nil {
			conn.Close()
			delete(s.subs, conn)
		}
	}
}

func (s *Server) acceptLoop() {
	for {
		select {
		case <-s.done:
			return
		default:
		}

		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				continue
			}
		}
		go s.handleClient(conn)
	}
}

func (s *Server) handleClient(conn net.Conn) {
	subscribed := false
	defer func() {
		if subscribed {
			s.subsMu.Lock()
			delete(s.subs, conn)
			s.subsMu.Unlock()
		}
		conn.Close()
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		var msg Message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}

		switch msg.Type {
		case MsgStatus:
			if s.OnStatus == nil {
				s.reply(conn, Message{Type: MsgError, Error: "status not available"})
				continue
			}
			s.replyResult(conn, s.OnStatus())

		case MsgOrganize:
			if s.OnOrganize == nil {
				s.reply(conn, Message{Type: MsgError, Error: "organize not available"})
				continue
			}
			var p OrganizePayload
			if len(msg.Payload) > 0 {
				json.Unmarshal(msg.Payload, &p)
			}
			res, err := s.OnOrganize(p.DryRun)
			if err != nil {
				s.reply(conn, Message{Type: MsgError, Error: err.Error()})
				continue
			}
			s.replyResult(conn, res)

		case MsgSuggest:
			if s.OnSuggest == nil {
				s.reply(conn, Message{Type: MsgError, Error: "suggest not available"})
				continue
			}
			suggestions, err := s.OnSuggest()
			if err != nil {
				s.reply(conn, Message{Type: MsgError, Error: err.Error()})
				continue
			}
			s.replyResult(conn, SuggestPayload{Suggestions: suggestions})

		case MsgSubscribe:
			s.subsMu.Lock()
			s.subs[conn] = struct{}{}
			s.subsMu.Unlock()
			subscribed = true
			s.reply(conn, Message{Type: MsgResult})
		}
	}
}

func (s *Server) replyResult(conn net.Conn, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.reply(conn, Message{Type: MsgError, Error: err.Error()})
		return
	}
	s.reply(conn, Message{Type: MsgResult, Payload: data})
}

func (s *Server) reply(conn net.Conn, msg Message) {
	writeMessage(conn, msg)
}

func writeMessage(conn net.Conn, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(time.Second))
	_, err = conn.Write(append(data, '\n'))
	return err
}
