// Package daemon is the control surface for the CLI: a unix socket speaking
// newline-delimited JSON, plus an event stream for subscribed clients.
package daemon

import (
	"encoding/json"
	"time"

	"github.com/b/tabsort/pkg/sorter"
	"github.com/b/tabsort/pkg/suggest"
)

// MessageType identifies the type of message
type MessageType string

const (
	// CLI -> daemon requests
	MsgStatus    MessageType = "status"
	MsgOrganize  MessageType = "organize"
	MsgSuggest   MessageType = "suggest"
	MsgSubscribe MessageType = "subscribe"

	// Daemon -> CLI
	MsgResult MessageType = "result"
	MsgError  MessageType = "error"
	MsgEvent  MessageType = "event"
)

// Message is the base message for CLI<->daemon communication.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// OrganizePayload carries organize request options.
type OrganizePayload struct {
	DryRun bool `json:"dry_run,omitempty"`
}

// StatusPayload describes daemon and extension state.
type StatusPayload struct {
	Uptime     time.Duration  `json:"uptime"`
	Extension  bool           `json:"extension"`
	Browser    string         `json:"browser,omitempty"`
	Version    string         `json:"version,omitempty"`
	LastResult *sorter.Result `json:"last_result,omitempty"`
	LastError  string         `json:"last_error,omitempty"`
	LastRun    time.Time      `json:"last_run,omitempty"`
}

// SuggestPayload carries group-title suggestions.
type SuggestPayload struct {
	Suggestions []suggest.Suggestion `json:"suggestions"`
}

// Event kinds broadcast to subscribers.
const (
	EventOrganizeStarted  = "organize_started"
	EventOrganizeFinished = "organize_finished"
	EventOrganizeFailed   = "organize_failed"
	EventExtensionChanged = "extension_changed"
)

// EventPayload is one entry in the subscriber stream.
type EventPayload struct {
	Kind   string         `json:"kind"`
	Time   time.Time      `json:"time"`
	Result *sorter.Result `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
	Detail string         `json:"detail,omitempty"`
}
