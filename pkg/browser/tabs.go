package browser

// GroupNone is the sentinel group ID for tabs that belong to no group,
// matching the extension API's TAB_GROUP_ID_NONE.
const GroupNone = -1

type Tab struct {
	ID         int    `json:"id"`
	WindowID   int    `json:"window_id"`
	URL        string `json:"url"`
	PendingURL string `json:"pending_url,omitempty"` // set while a navigation is in flight
	Title      string `json:"title,omitempty"`
	Index      int    `json:"index"`
	Pinned     bool   `json:"pinned"`
	GroupID    int    `json:"group_id"` // GroupNone when ungrouped
}

// Address returns the URL a tab should be sorted by: the pending navigation
// target if one is in flight, otherwise the committed URL.
func (t Tab) Address() string {
	if t.PendingURL != "" {
		return t.PendingURL
	}
	return t.URL
}

type TabGroup struct {
	ID       int    `json:"id"`
	WindowID int    `json:"window_id"`
	Title    string `json:"title"`
	Index    int    `json:"index"`
}

type Window struct {
	ID      int  `json:"id"`
	Focused bool `json:"focused"`
}

// TabFilter selects tabs within a window. Pinned and GroupID are tristate:
// nil means "don't care".
type TabFilter struct {
	WindowID int   `json:"window_id"`
	Pinned   *bool `json:"pinned,omitempty"`
	GroupID  *int  `json:"group_id,omitempty"` // GroupNone selects ungrouped tabs
}

// Bool returns a pointer for use in a TabFilter.
func Bool(v bool) *bool { return &v }

// Group returns a group ID pointer for use in a TabFilter.
func Group(id int) *int { return &id }
