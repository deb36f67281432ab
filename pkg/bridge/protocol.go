// Package bridge is the websocket surface the browser extension connects to.
//
// The extension is the authority on tab state; the daemon issues host-surface
// calls (queries and moves) as correlated request/response messages over the
// socket, and the extension pushes the organize trigger the other way.
package bridge

import (
	"encoding/json"

	"github.com/b/tabsort/pkg/browser"
	"github.com/b/tabsort/pkg/sorter"
)

// MessageType identifies the type of message
type MessageType string

const (
	// Extension -> daemon
	MsgHello    MessageType = "hello"
	MsgOrganize MessageType = "organize" // action-icon trigger
	MsgResult   MessageType = "result"   // response to a daemon request

	// Daemon -> extension: host-surface calls
	MsgQueryWindows MessageType = "query_windows"
	MsgQueryTabs    MessageType = "query_tabs"
	MsgQueryGroups  MessageType = "query_groups"
	MsgMoveTabs     MessageType = "move_tabs"
	MsgSetPinned    MessageType = "set_pinned"
	MsgAssignGroup  MessageType = "assign_group"
	MsgMoveGroup    MessageType = "move_group"

	// Daemon -> extension: organize outcome notifications
	MsgOrganizeDone  MessageType = "organize_done"
	MsgOrganizeError MessageType = "organize_error"
)

// Message is the base message structure for daemon<->extension communication.
// ID correlates a daemon request with the extension's result message.
type Message struct {
	Type    MessageType     `json:"type"`
	ID      uint64          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// HelloPayload is the extension's first message after connecting.
type HelloPayload struct {
	Browser string `json:"browser"`
	Version string `json:"version"`
}

type QueryWindowsResult struct {
	Windows []browser.Window `json:"windows"`
}

type QueryTabsResult struct {
	Tabs []browser.Tab `json:"tabs"`
}

type QueryGroupsPayload struct {
	WindowID int `json:"window_id"`
}

type QueryGroupsResult struct {
	Groups []browser.TabGroup `json:"groups"`
}

type MoveTabsPayload struct {
	WindowID int   `json:"window_id"`
	TabIDs   []int `json:"tab_ids"`
	Index    int   `json:"index"`
}

type SetPinnedPayload struct {
	TabID  int  `json:"tab_id"`
	Pinned bool `json:"pinned"`
}

type AssignGroupPayload struct {
	GroupID int   `json:"group_id"`
	TabIDs  []int `json:"tab_ids"`
}

type MoveGroupPayload struct {
	GroupID int `json:"group_id"`
	Index   int `json:"index"`
}

// OrganizeDonePayload reports a completed organize pass back to the extension.
type OrganizeDonePayload struct {
	Result sorter.Result `json:"result"`
}

// OrganizeErrorPayload reports a failed organize pass.
type OrganizeErrorPayload struct {
	Error string `json:"error"`
}
