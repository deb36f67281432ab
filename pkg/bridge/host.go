package bridge

import (
	"context"

	"github.com/b/tabsort/pkg/browser"
)

// remoteHost implements browser.Host against a connected extension. Each
// method is one correlated request over the websocket.
type remoteHost struct {
	c *client
}

var _ browser.Host = (*remoteHost)(nil)

func (h *remoteHost) FocusedWindow(ctx context.Context) (browser.Window, error) {
	var res QueryWindowsResult
	if err := h.c.call(ctx, MsgQueryWindows, nil, &res); err != nil {
		return browser.Window{}, err
	}
	for _, w := range res.Windows {
		if w.Focused {
			return w, nil
		}
	}
	return browser.Window{}, browser.ErrNoFocusedWindow
}

func (h *remoteHost) Tabs(ctx context.Context, filter browser.TabFilter) ([]browser.Tab, error) {
	var res QueryTabsResult
	if err := h.c.call(ctx, MsgQueryTabs, filter, &res); err != nil {
		return nil, err
	}
	return res.Tabs, nil
}

func (h *remoteHost) Groups(ctx context.Context, windowID int) ([]browser.TabGroup, error) {
	var res QueryGroupsResult
	if err := h.c.call(ctx, MsgQueryGroups, QueryGroupsPayload{WindowID: windowID}, &res); err != nil {
		return nil, err
	}
	return res.Groups, nil
}

func (h *remoteHost) MoveTabs(ctx context.Context, windowID int, tabIDs []int, index int) error {
	return h.c.call(ctx, MsgMoveTabs, MoveTabsPayload{WindowID: windowID, TabIDs: tabIDs, Index: index}, nil)
}

func (h *remoteHost) SetPinned(ctx context.Context, tabID int, pinned bool) error {
	return h.c.call(ctx, MsgSetPinned, SetPinnedPayload{TabID: tabID, Pinned: pinned}, nil)
}

func (h *remoteHost) AssignGroup(ctx context.Context, groupID int, tabIDs []int) error {
	return h.c.call(ctx, MsgAssignGroup, AssignGroupPayload{GroupID: groupID, TabIDs: tabIDs}, nil)
}

func (h *remoteHost) MoveGroup(ctx context.Context, groupID int, index int) error {
	return h.c.call(ctx, MsgMoveGroup, MoveGroupPayload{GroupID: groupID, Index: index}, nil)
}
