package browser

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryHost is an in-memory Host implementation with browser-accurate move
// semantics (contiguous block insert, live reindexing). It backs the tests
// and the dry-run path.
type MemoryHost struct {
	mu      sync.Mutex
	windows []Window
	groups  []TabGroup
	tabs    map[int][]*Tab // windowID -> tabs in position order
}

func NewMemoryHost() *MemoryHost {
	return &MemoryHost{tabs: make(map[int][]*Tab)}
}

// AddWindow registers a window.
func (m *MemoryHost) AddWindow(id int, focused bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.windows = append(m.windows, Window{ID: id, Focused: focused})
}

// AddGroup registers a tab group.
func (m *MemoryHost) AddGroup(g TabGroup) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups = append(m.groups, g)
}

// AddTab appends a tab at the end of its window. The tab's Index is assigned
// from its insertion position.
func (m *MemoryHost) AddTab(t Tab) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.GroupID == 0 {
		t.GroupID = GroupNone
	}
	tab := t
	tab.Index = len(m.tabs[t.WindowID])
	m.tabs[t.WindowID] = append(m.tabs[t.WindowID], &tab)
}

func (m *MemoryHost) FocusedWindow(ctx context.Context) (Window, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.windows {
		if w.Focused {
			return w, nil
		}
	}
	return Window{}, ErrNoFocusedWindow
}

func (m *MemoryHost) Tabs(ctx context.Context, filter TabFilter) ([]Tab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Tab
	for _, t := range m.tabs[filter.WindowID] {
		if filter.Pinned != nil && t.Pinned != *filter.Pinned {
			continue
		}
		if filter.GroupID != nil && t.GroupID != *filter.GroupID {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (m *MemoryHost) Groups(ctx context.Context, windowID int) ([]TabGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []TabGroup
	for _, g := range m.groups {
		if g.WindowID != windowID {
			continue
		}
		// Report the group's live position as its first member's index.
		pos := g.Index
		for _, t := range m.tabs[windowID] {
			if t.GroupID == g.ID {
				pos = t.Index
				break
			}
		}
		g.Index = pos
		out = append(out, g)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

func (m *MemoryHost) MoveTabs(ctx context.Context, windowID int, tabIDs []int, index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.moveTabsLocked(windowID, tabIDs, index)
}

func (m *MemoryHost) moveTabsLocked(windowID int, tabIDs []int, index int) error {
	order := m.tabs[windowID]
	byID := make(map[int]*Tab, len(order))
	for _, t := range order {
		byID[t.ID] = t
	}

	block := make([]*Tab, 0, len(tabIDs))
	moving := make(map[int]bool, len(tabIDs))
	for _, id := range tabIDs {
		t, ok := byID[id]
		if !ok {
			return fmt.Errorf("move tab %d: %w", id, ErrTabNotFound)
		}
		block = append(block, t)
		moving[id] = true
	}

	remaining := make([]*Tab, 0, len(order))
	for _, t := range order {
		if !moving[t.ID] {
			remaining = append(remaining, t)
		}
	}

	if index < 0 {
		index = 0
	}
	if index > len(remaining) {
		index = len(remaining)
	}

	next := make([]*Tab, 0, len(order))
	next = append(next, remaining[:index]...)
	next = append(next, block...)
	next = append(next, remaining[index:]...)
	for i, t := range next {
		t.Index = i
	}
	m.tabs[windowID] = next
	return nil
}

func (m *MemoryHost) SetPinned(ctx context.Context, tabID int, pinned bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tabs := range m.tabs {
		for _, t := range tabs {
			if t.ID == tabID {
				t.Pinned = pinned
				return nil
			}
		}
	}
	return fmt.Errorf("pin tab %d: %w", tabID, ErrTabNotFound)
}

func (m *MemoryHost) AssignGroup(ctx context.Context, groupID int, tabIDs []int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var grp *TabGroup
	for i := range m.groups {
		if m.groups[i].ID == groupID {
			grp = &m.groups[i]
			break
		}
	}
	if grp == nil {
		return fmt.Errorf("assign group %d: %w", groupID, ErrGroupNotFound)
	}
	want := make(map[int]bool, len(tabIDs))
	for _, id := range tabIDs {
		want[id] = true
	}
	for _, t := range m.tabs[grp.WindowID] {
		if want[t.ID] {
			t.GroupID = groupID
			delete(want, t.ID)
		}
	}
	if len(want) > 0 {
		return fmt.Errorf("assign group %d: %w", groupID, ErrTabNotFound)
	}
	return nil
}

func (m *MemoryHost) MoveGroup(ctx context.Context, groupID int, index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var grp *TabGroup
	for i := range m.groups {
		if m.groups[i].ID == groupID {
			grp = &m.groups[i]
			break
		}
	}
	if grp == nil {
		return fmt.Errorf("move group %d: %w", groupID, ErrGroupNotFound)
	}
	var ids []int
	for _, t := range m.tabs[grp.WindowID] {
		if t.GroupID == groupID {
			ids = append(ids, t.ID)
		}
	}
	if len(ids) == 0 {
		grp.Index = index
		return nil
	}
	if err := m.moveTabsLocked(grp.WindowID, ids, index); err != nil {
		return err
	}
	grp.Index = index
	return nil
}

// TabOrder returns the window's tabs in position order. Test helper.
func (m *MemoryHost) TabOrder(windowID int) []Tab {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Tab, 0, len(m.tabs[windowID]))
	for _, t := range m.tabs[windowID] {
		out = append(out, *t)
	}
	return out
}
