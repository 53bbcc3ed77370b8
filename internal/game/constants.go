package game

import "time"

// Field geometry and physics tuning. Clients predict and render against
// these exact values, so changing any of them is a wire-compatibility
// break, not a balance tweak.
const (
	FieldWidth  = 800.0
	FieldHeight = 400.0

	GoalHeight = 80.0 // vertical aperture in each side wall, centered
	GoalDepth  = 20.0 // how far past the line a body may sink before bouncing

	PlayerRadius = 15.0
	BallRadius   = 10.0

	PlayerMass = 1.0
	BallMass   = 0.5

	Accel          = 0.5  // added per held direction each tick
	MaxPlayerSpeed = 5.0  // players only; a kicked ball may go faster
	Friction       = 0.98 // multiplicative velocity decay per tick
	Restitution    = 0.8  // elasticity of wall and body contacts

	KickRange = 40.0 // max center distance for an explicit kick to connect
	KickCarry = 0.5  // fraction of the kicker's velocity given to the ball
)

// Goal span: the Y band both apertures cover.
const (
	GoalTop    = (FieldHeight - GoalHeight) / 2
	GoalBottom = (FieldHeight + GoalHeight) / 2
)

// Kickoff spots. Red defends the left goal and restarts near it,
// Blue mirrors on the right. Spectators sit at field center.
const (
	KickoffRedX  = FieldWidth / 4
	KickoffBlueX = 3 * FieldWidth / 4
	KickoffY     = FieldHeight / 2
)

// TickRate is the nominal simulation frequency; TickInterval the
// scheduler period. Tick deltas are normalized against TickInterval so
// scheduler drift never changes simulated speed.
const (
	TickRate     = 60
	TickInterval = time.Second / TickRate
)

// ActivityTimeout freezes a player whose input has gone quiet.
const ActivityTimeout = 5 * time.Second

// Roster limits. Capacity counts spectators too.
const (
	RoomCapacity = 10
	TeamCapacity = 4
)
