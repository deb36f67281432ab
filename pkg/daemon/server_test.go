package daemon

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/b/tabsort/pkg/sorter"
	"github.com/b/tabsort/pkg/suggest"
)

func startServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	s := NewServer(filepath.Join(dir, "ctl.sock"), filepath.Join(dir, "ctl.pid"))
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(s.Stop)
	return s
}

func dialServer(t *testing.T, s *Server) *Client {
	t.Helper()
	c, err := Dial(s.socketPath)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestStopTwice(t *testing.T) {
	// The daemon main stops the server explicitly on startup errors and
	// again via defer; the second call must be a no-op, not a panic.
	s := startServer(t)
	s.Stop()
	s.Stop()
}

func TestStatusRoundTrip(t *testing.T) {
	s := startServer(t)
	s.OnStatus = func() StatusPayload {
		return StatusPayload{Extension: true, Browser: "chrome", Uptime: time.Minute}
	}

	c := dialServer(t, s)
	var status StatusPayload
	if err := c.Request(MsgStatus, nil, &status); err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if !status.Extension || status.Browser != "chrome" {
		t.Errorf("status = %+v, want extension connected via chrome", status)
	}
}

func TestOrganizeRoundTrip(t *testing.T) {
	s := startServer(t)
	var gotDryRun bool
	s.OnOrganize = func(dryRun bool) (sorter.Result, error) {
		gotDryRun = dryRun
		return sorter.Result{WindowID: 1, Ungrouped: 4}, nil
	}

	c := dialServer(t, s)
	var res sorter.Result
	if err := c.Request(MsgOrganize, OrganizePayload{DryRun: true}, &res); err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if !gotDryRun {
		t.Error("dry-run flag not forwarded")
	}
	if res.Ungrouped != 4 {
		t.Errorf("res.Ungrouped = %d, want 4", res.Ungrouped)
	}
}

func TestOrganizeErrorSurfaces(t *testing.T) {
	s := startServer(t)
	s.OnOrganize = func(bool) (sorter.Result, error) {
		return sorter.Result{}, errors.New("extension vanished")
	}

	c := dialServer(t, s)
	err := c.Request(MsgOrganize, nil, nil)
	if err == nil || err.Error() != "extension vanished" {
		t.Fatalf("err = %v, want extension vanished", err)
	}
}

func TestSuggestRoundTrip(t *testing.T) {
	s := startServer(t)
	s.OnSuggest = func() ([]suggest.Suggestion, error) {
		return []suggest.Suggestion{{Bucket: "docs.rs", Title: "Docs", TabIDs: []int{1, 2}}}, nil
	}

	c := dialServer(t, s)
	var out SuggestPayload
	if err := c.Request(MsgSuggest, nil, &out); err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if len(out.Suggestions) != 1 || out.Suggestions[0].Title != "Docs" {
		t.Errorf("suggestions = %+v, want one Docs entry", out.Suggestions)
	}
}

func TestSubscribeReceivesBroadcast(t *testing.T) {
	s := startServer(t)
	c := dialServer(t, s)

	events := make(chan EventPayload, 1)
	go func() {
		c.Subscribe(func(ev EventPayload) { events <- ev })
	}()

	// Subscription races the broadcast; give the register reply a moment.
	time.Sleep(50 * time.Millisecond)
	s.Broadcast(EventPayload{Kind: EventOrganizeStarted})

	select {
	case ev := <-events:
		if ev.Kind != EventOrganizeStarted {
			t.Errorf("event kind = %q, want %q", ev.Kind, EventOrganizeStarted)
		}
		if ev.Time.IsZero() {
			t.Error("event time not stamped")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestSecondDaemonRefused(t *testing.T) {
	s := startServer(t)
	dup := NewServer(s.socketPath, s.pidPath)
	if err := dup.Start(); err == nil {
		dup.Stop()
		t.Fatal("expected second daemon on same pidfile to be refused")
	}
}
