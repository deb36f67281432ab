// Package browser models the host tab-management surface: windows, tabs and
// tab groups, plus the capability set needed to query and rearrange them.
//
// The Host interface is the seam between the sorting logic and whatever
// actually owns the tabs (a connected browser extension in production, a
// MemoryHost in tests and dry runs).
package browser

import (
	"context"
	"errors"
)

var (
	ErrNoFocusedWindow = errors.New("no focused window")
	ErrTabNotFound     = errors.New("tab not found")
	ErrGroupNotFound   = errors.New("tab group not found")
)

// Host is the tab-management surface of a browser. Every mutation operates on
// live positions: callers must assume any previously read index is stale once
// a move has been issued.
type Host interface {
	// FocusedWindow returns the currently focused window.
	FocusedWindow(ctx context.Context) (Window, error)

	// Tabs returns the tabs matching the filter, ordered by position.
	Tabs(ctx context.Context, filter TabFilter) ([]Tab, error)

	// Groups returns all tab groups in a window, ordered by position.
	Groups(ctx context.Context, windowID int) ([]TabGroup, error)

	// MoveTabs relocates the given tabs, preserving the given order, to form
	// a contiguous block starting at index within their window.
	MoveTabs(ctx context.Context, windowID int, tabIDs []int, index int) error

	// SetPinned sets a tab's pinned flag.
	SetPinned(ctx context.Context, tabID int, pinned bool) error

	// AssignGroup ensures all the given tabs belong to the group.
	AssignGroup(ctx context.Context, groupID int, tabIDs []int) error

	// MoveGroup relocates an entire group, members as a block, to start at index.
	MoveGroup(ctx context.Context, groupID int, index int) error
}
