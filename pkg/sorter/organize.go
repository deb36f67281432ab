package sorter

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/b/tabsort/pkg/browser"
	"github.com/b/tabsort/pkg/urlkey"
)

// GroupResult reports one sorted tab group.
type GroupResult struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Tabs  int    `json:"tabs"`
}

// Result summarizes a completed organize pass.
type Result struct {
	WindowID  int           `json:"window_id"`
	Pinned    int           `json:"pinned"`
	Groups    []GroupResult `json:"groups"`
	Ungrouped int           `json:"ungrouped"`
	Duration  time.Duration `json:"duration"`
}

// TabsMoved returns the total number of tabs covered by the pass.
func (r Result) TabsMoved() int {
	n := r.Pinned + r.Ungrouped
	for _, g := range r.Groups {
		n += g.Tabs
	}
	return n
}

// Organize reorders the focused window into the canonical layout. Scopes run
// strictly sequentially: each scope's start position is computed from live
// tab positions that the previous scope's moves just changed.
//
// The operation is not atomic. Any host failure aborts it immediately and can
// leave tabs partially reordered; the caller decides how to report that.
func Organize(ctx context.Context, host browser.Host) (Result, error) {
	started := time.Now()
	var res Result

	win, err := host.FocusedWindow(ctx)
	if err != nil {
		return res, fmt.Errorf("focused window: %w", err)
	}
	res.WindowID = win.ID

	// Pinned scope anchors position 0. The group context of the first pinned
	// tab is carried through so an already-grouped pinned cluster survives.
	pinned, err := host.Tabs(ctx, browser.TabFilter{WindowID: win.ID, Pinned: browser.Bool(true)})
	if err != nil {
		return res, fmt.Errorf("query pinned tabs: %w", err)
	}
	if len(pinned) > 0 {
		if err := SortScope(ctx, host, pinned, 0, pinned[0].GroupID); err != nil {
			return res, fmt.Errorf("sort pinned tabs: %w", err)
		}
		if err := repinAll(ctx, host, pinned); err != nil {
			return res, err
		}
		res.Pinned = len(pinned)
	}
	next := len(pinned)

	groups, err := host.Groups(ctx, win.ID)
	if err != nil {
		return res, fmt.Errorf("query groups: %w", err)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return urlkey.Less(groups[j].Title, groups[i].Title)
	})
	for _, g := range groups {
		moved, err := sortGroup(ctx, host, win.ID, g, next)
		if err != nil {
			return res, err
		}
		res.Groups = append(res.Groups, GroupResult{ID: g.ID, Title: g.Title, Tabs: moved})
		next += moved
	}

	loose, err := host.Tabs(ctx, browser.TabFilter{
		WindowID: win.ID,
		Pinned:   browser.Bool(false),
		GroupID:  browser.Group(browser.GroupNone),
	})
	if err != nil {
		return res, fmt.Errorf("query ungrouped tabs: %w", err)
	}
	if len(loose) > 0 {
		if err := SortScope(ctx, host, loose, minIndex(loose), browser.GroupNone); err != nil {
			return res, fmt.Errorf("sort ungrouped tabs: %w", err)
		}
		res.Ungrouped = len(loose)
	}

	res.Duration = time.Since(started)
	return res, nil
}

// sortGroup relocates one group block to start, then sorts its members at
// their live minimum position.
func sortGroup(ctx context.Context, host browser.Host, windowID int, g browser.TabGroup, start int) (int, error) {
	if err := host.MoveGroup(ctx, g.ID, start); err != nil {
		return 0, fmt.Errorf("move group %q: %w", g.Title, err)
	}
	tabs, err := host.Tabs(ctx, browser.TabFilter{WindowID: windowID, GroupID: browser.Group(g.ID)})
	if err != nil {
		return 0, fmt.Errorf("query group %q: %w", g.Title, err)
	}
	if len(tabs) == 0 {
		return 0, nil
	}
	if err := SortScope(ctx, host, tabs, minIndex(tabs), g.ID); err != nil {
		return 0, fmt.Errorf("sort group %q: %w", g.Title, err)
	}
	return len(tabs), nil
}

// repinAll re-asserts the pinned flag after the move; a move must never be
// allowed to silently unpin a tab. The per-tab requests have no ordering
// dependency and run concurrently.
func repinAll(ctx context.Context, host browser.Host, pinned []browser.Tab) error {
	var wg sync.WaitGroup
	errs := make([]error, len(pinned))
	for i, t := range pinned {
		wg.Add(1)
		go func(i int, tabID int) {
			defer wg.Done()
			errs[i] = host.SetPinned(ctx, tabID, true)
		}(i, t.ID)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return fmt.Errorf("re-pin tab: %w", err)
		}
	}
	return nil
}

func minIndex(tabs []browser.Tab) int {
	min := tabs[0].Index
	for _, t := range tabs[1:] {
		if t.Index < min {
			min = t.Index
		}
	}
	return min
}
