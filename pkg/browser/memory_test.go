package browser

import (
	"context"
	"errors"
	"testing"
)

func newTestHost() *MemoryHost {
	m := NewMemoryHost()
	m.AddWindow(1, true)
	m.AddTab(Tab{ID: 10, WindowID: 1, URL: "https://a.test/"})
	m.AddTab(Tab{ID: 11, WindowID: 1, URL: "https://b.test/"})
	m.AddTab(Tab{ID: 12, WindowID: 1, URL: "https://c.test/"})
	m.AddTab(Tab{ID: 13, WindowID: 1, URL: "https://d.test/"})
	return m
}

func orderIDs(t *testing.T, m *MemoryHost, windowID int) []int {
	t.Helper()
	var ids []int
	for _, tab := range m.TabOrder(windowID) {
		ids = append(ids, tab.ID)
	}
	return ids
}

func TestMoveTabsBlock(t *testing.T) {
	m := newTestHost()
	if err := m.MoveTabs(context.Background(), 1, []int{12, 10}, 0); err != nil {
		t.Fatalf("MoveTabs failed: %v", err)
	}
	got := orderIDs(t, m, 1)
	want := []int{12, 10, 11, 13}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	for i, tab := range m.TabOrder(1) {
		if tab.Index != i {
			t.Errorf("tab %d has index %d, want %d", tab.ID, tab.Index, i)
		}
	}
}

func TestMoveTabsClampsIndex(t *testing.T) {
	m := newTestHost()
	if err := m.MoveTabs(context.Background(), 1, []int{10}, 99); err != nil {
		t.Fatalf("MoveTabs failed: %v", err)
	}
	got := orderIDs(t, m, 1)
	if got[len(got)-1] != 10 {
		t.Fatalf("expected tab 10 at end, order = %v", got)
	}
}

func TestMoveTabsUnknownTab(t *testing.T) {
	m := newTestHost()
	err := m.MoveTabs(context.Background(), 1, []int{999}, 0)
	if !errors.Is(err, ErrTabNotFound) {
		t.Fatalf("expected ErrTabNotFound, got %v", err)
	}
}

func TestTabFilter(t *testing.T) {
	m := NewMemoryHost()
	m.AddWindow(1, true)
	m.AddGroup(TabGroup{ID: 5, WindowID: 1, Title: "Work"})
	m.AddTab(Tab{ID: 10, WindowID: 1, Pinned: true})
	m.AddTab(Tab{ID: 11, WindowID: 1, GroupID: 5})
	m.AddTab(Tab{ID: 12, WindowID: 1})

	ctx := context.Background()
	pinned, err := m.Tabs(ctx, TabFilter{WindowID: 1, Pinned: Bool(true)})
	if err != nil {
		t.Fatalf("Tabs failed: %v", err)
	}
	if len(pinned) != 1 || pinned[0].ID != 10 {
		t.Fatalf("pinned = %v, want tab 10", pinned)
	}

	grouped, err := m.Tabs(ctx, TabFilter{WindowID: 1, GroupID: Group(5)})
	if err != nil {
		t.Fatalf("Tabs failed: %v", err)
	}
	if len(grouped) != 1 || grouped[0].ID != 11 {
		t.Fatalf("grouped = %v, want tab 11", grouped)
	}

	loose, err := m.Tabs(ctx, TabFilter{WindowID: 1, Pinned: Bool(false), GroupID: Group(GroupNone)})
	if err != nil {
		t.Fatalf("Tabs failed: %v", err)
	}
	if len(loose) != 1 || loose[0].ID != 12 {
		t.Fatalf("ungrouped = %v, want tab 12", loose)
	}
}

func TestMoveGroup(t *testing.T) {
	m := NewMemoryHost()
	m.AddWindow(1, true)
	m.AddGroup(TabGroup{ID: 5, WindowID: 1, Title: "Work"})
	m.AddTab(Tab{ID: 10, WindowID: 1})
	m.AddTab(Tab{ID: 11, WindowID: 1, GroupID: 5})
	m.AddTab(Tab{ID: 12, WindowID: 1, GroupID: 5})

	if err := m.MoveGroup(context.Background(), 5, 0); err != nil {
		t.Fatalf("MoveGroup failed: %v", err)
	}
	got := orderIDs(t, m, 1)
	want := []int{11, 12, 10}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}

	groups, err := m.Groups(context.Background(), 1)
	if err != nil {
		t.Fatalf("Groups failed: %v", err)
	}
	if len(groups) != 1 || groups[0].Index != 0 {
		t.Fatalf("groups = %v, want group 5 at index 0", groups)
	}
}

func TestAddressPrefersPending(t *testing.T) {
	tab := Tab{URL: "https://old.test/", PendingURL: "https://new.test/"}
	if tab.Address() != "https://new.test/" {
		t.Fatalf("Address() = %q, want pending URL", tab.Address())
	}
	tab.PendingURL = ""
	if tab.Address() != "https://old.test/" {
		t.Fatalf("Address() = %q, want committed URL", tab.Address())
	}
}
