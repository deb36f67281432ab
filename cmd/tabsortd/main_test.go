package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/b/tabsort/pkg/browser"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"DEBUG", slog.LevelDebug},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSnapshotCopiesState(t *testing.T) {
	live := browser.NewMemoryHost()
	live.AddWindow(1, true)
	live.AddGroup(browser.TabGroup{ID: 5, WindowID: 1, Title: "Work"})
	live.AddTab(browser.Tab{ID: 1, WindowID: 1, URL: "https://b.test/", Pinned: true})
	live.AddTab(browser.Tab{ID: 2, WindowID: 1, URL: "https://a.test/", GroupID: 5})

	snap, err := snapshot(context.Background(), live)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}

	// Mutating the snapshot must leave the live host untouched.
	if err := snap.MoveTabs(context.Background(), 1, []int{2}, 0); err != nil {
		t.Fatalf("MoveTabs on snapshot failed: %v", err)
	}
	liveOrder := live.TabOrder(1)
	if liveOrder[0].ID != 1 {
		t.Fatalf("live host mutated by snapshot move: %v", liveOrder)
	}

	snapOrder := snap.TabOrder(1)
	if len(snapOrder) != 2 || snapOrder[0].ID != 2 {
		t.Fatalf("snapshot order = %v, want tab 2 first", snapOrder)
	}
	if !snapOrder[1].Pinned {
		t.Error("snapshot lost pinned flag")
	}
	if snapOrder[0].GroupID != 5 {
		t.Error("snapshot lost group membership")
	}
}
