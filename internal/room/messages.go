package room

import (
	"errors"

	"kickabout/internal/game"
	"kickabout/internal/protocol"
)

// Conn is the slice of a client connection a room needs: queue one
// frame, or hang up. The ws layer implements it; tests use fakes.
type Conn interface {
	Send([]byte) error
	Close() error
}

// Recoverable failure kinds. Handlers map them to HTTP statuses or
// error frames; none of them ever takes a room down.
var (
	ErrRoomFull       = errors.New("room full")
	ErrRoomNotFound   = errors.New("room not found")
	ErrTeamFull       = errors.New("team full")
	ErrPlayerNotFound = errors.New("player not found")
	ErrBadPasscode    = errors.New("bad passcode")
)

// Lifecycle and match events handed to the relay.
const (
	EventCreated = "created"
	EventClosed  = "closed"
	EventStarted = "started"
	EventStopped = "stopped"
	EventGoal    = "goal"
	EventChat    = "chat"
)

type Event struct {
	Kind string              `json:"kind"`
	Code string              `json:"code"`
	Goal *protocol.GoalEvent `json:"goal,omitempty"`
	Chat *protocol.ChatEvent `json:"chat,omitempty"`
}

// Commands consumed by the room loop. Reply channels are buffered so
// the loop can answer and move on even if the caller already gave up.
type joinCmd struct {
	id       string
	nickname string
	conn     Conn
	reply    chan joinResult
}

type joinResult struct {
	team game.Team
	err  error
}

type leaveCmd struct {
	id   string
	conn Conn // nil releases the seat no matter which conn holds it
}

type inputCmd struct {
	id string
	in game.Input
}

type teamCmd struct {
	id     string
	target game.Team
	reply  chan error
}

type chatCmd struct {
	id   string
	text string
}

type relayChatCmd struct {
	ev protocol.ChatEvent
}

type startCmd struct{}

type stopCmd struct{}

type queryCmd struct {
	reply chan protocol.Snapshot
}
