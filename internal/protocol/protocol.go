// Package protocol defines the JSON wire contract between clients and
// the server. Every frame is an Envelope: a type tag plus a raw payload
// decoded once the tag is known. The snapshot field names here are what
// deployed clients parse; renaming any of them is a breaking change.
package protocol

import "encoding/json"

// Client to server.
const (
	MsgInput = "input"
	MsgTeam  = "team"
	MsgChat  = "chat"
)

// Server to client. MsgChat is reused for the relayed form.
const (
	MsgWelcome = "welcome"
	MsgState   = "state"
	MsgGoal    = "goal"
	MsgError   = "error"
)

type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"`
}
