// Package sorter computes the canonical tab layout and drives the host
// surface to realize it: pinned tabs first, then tab groups by title
// descending, then ungrouped tabs, each scope ordered by URL-derived keys.
package sorter

import (
	"context"
	"sort"

	"github.com/b/tabsort/pkg/browser"
	"github.com/b/tabsort/pkg/urlkey"
)

// decoration carries the per-tab sort inputs for one pass, then is discarded.
type decoration struct {
	id     int
	index  int // position within the input list, final tie-break
	bucket string
	key    string
}

// SortScope orders one scope's tabs and moves them to form a contiguous block
// at start. When groupID is a real group, membership is re-asserted after the
// move; the host's move primitive alone may not retain it.
func SortScope(ctx context.Context, host browser.Host, tabs []browser.Tab, start int, groupID int) error {
	if len(tabs) == 0 {
		return nil
	}

	decorated := make([]decoration, len(tabs))
	for i, t := range tabs {
		c := urlkey.Classify(t.Address())
		decorated[i] = decoration{
			id:     t.ID,
			index:  i,
			bucket: c.Bucket,
			key:    urlkey.SortKey(c),
		}
	}

	sort.Slice(decorated, func(i, j int) bool {
		a, b := decorated[i], decorated[j]
		if c := urlkey.Compare(a.bucket, b.bucket); c != 0 {
			return c < 0
		}
		if c := urlkey.Compare(a.key, b.key); c != 0 {
			return c < 0
		}
		return a.index < b.index
	})

	windowID := tabs[0].WindowID
	ids := make([]int, len(decorated))
	for i, d := range decorated {
		ids[i] = d.id
	}

	if err := host.MoveTabs(ctx, windowID, ids, start); err != nil {
		return err
	}
	if groupID != browser.GroupNone {
		if err := host.AssignGroup(ctx, groupID, ids); err != nil {
			return err
		}
	}
	return nil
}
