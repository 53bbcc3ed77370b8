package protocol

// Welcome is the first frame after a successful join.
type Welcome struct {
	PlayerID string `json:"playerId"`
	RoomCode string `json:"roomCode"`
	TickRate int    `json:"tickRate"`
}

// Snapshot is the authoritative per-tick room state. Coordinates and
// velocities are pre-rounded to two decimals before they get here.
type Snapshot struct {
	Players  []PlayerView `json:"players"`
	Ball     BallView     `json:"ball"`
	Score    Score        `json:"score"`
	GameTime int64        `json:"gameTime"` // ms of running play
	Running  bool         `json:"running"`
	RoomCode string       `json:"roomCode"`
}

type PlayerView struct {
	ID       string  `json:"id"`
	Nickname string  `json:"nickname"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	VX       float64 `json:"vx"`
	VY       float64 `json:"vy"`
	Team     string  `json:"team"`
}

type BallView struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

type Score struct {
	Red  int `json:"red"`
	Blue int `json:"blue"`
}

// ChatEvent is a relayed chat line, attributed.
type ChatEvent struct {
	PlayerID string `json:"playerId"`
	Nickname string `json:"nickname"`
	Text     string `json:"text"`
}

// GoalEvent announces a score change the moment it happens; the next
// snapshot carries the same totals.
type GoalEvent struct {
	Team     string `json:"team"`
	ScorerID string `json:"scorerId,omitempty"`
	Red      int    `json:"red"`
	Blue     int    `json:"blue"`
}

// Error tells a client why a frame or join was refused.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
