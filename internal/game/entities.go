package game

import "time"

// Team is a player's side. TeamNone marks a spectator: never moved by
// the tick and never part of the collision pass.
type Team int8

const (
	TeamNone Team = iota
	TeamRed
	TeamBlue
)

func (t Team) String() string {
	switch t {
	case TeamRed:
		return "red"
	case TeamBlue:
		return "blue"
	default:
		return "spectator"
	}
}

// ParseTeam maps the wire form back to a Team. Unknown strings are a
// spectator request, never an error; bad input must not bounce a player.
func ParseTeam(s string) Team {
	switch s {
	case "red":
		return TeamRed
	case "blue":
		return TeamBlue
	default:
		return TeamNone
	}
}

// Body is the shared kinematic state of anything on the pitch.
type Body struct {
	X, Y   float64
	VX, VY float64
}

// Input is a player's held movement intent. Absent flags mean "no
// movement"; there is no neutral/invalid state to reject.
type Input struct {
	Up    bool
	Down  bool
	Left  bool
	Right bool
}

// Player is owned exclusively by its room while joined.
type Player struct {
	Body
	ID        string
	Nickname  string
	Team      Team
	Intent    Input
	LastInput time.Time
	Goals     int
}

// NewPlayer spawns at the team's kickoff spot with the clock started:
// a joiner counts as active until ActivityTimeout elapses untouched.
func NewPlayer(id, nickname string, team Team, now time.Time) *Player {
	x, y := KickoffPosition(team)
	return &Player{
		Body:      Body{X: x, Y: y},
		ID:        id,
		Nickname:  nickname,
		Team:      team,
		LastInput: now,
	}
}

// Active reports whether the player's input is fresh enough to move.
// Inactive teamed players stay collidable; they just stop integrating.
func (p *Player) Active(now time.Time) bool {
	return now.Sub(p.LastInput) <= ActivityTimeout
}

// Ball: exactly one per room, reset (never recreated) on goals.
type Ball struct {
	Body
}

// NewBall starts centered and at rest.
func NewBall() Ball {
	return Ball{Body: Body{X: FieldWidth / 2, Y: FieldHeight / 2}}
}

// KickoffPosition is where a team restarts after a goal. Spectators get
// field center, which only matters if they later switch onto a team.
func KickoffPosition(t Team) (x, y float64) {
	switch t {
	case TeamRed:
		return KickoffRedX, KickoffY
	case TeamBlue:
		return KickoffBlueX, KickoffY
	default:
		return FieldWidth / 2, FieldHeight / 2
	}
}
