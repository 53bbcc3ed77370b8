package game

import (
	"math"
	"testing"
	"time"
)

func TestIntegrateAcceleratesHeldDirection(t *testing.T) {
	b := &Body{X: 400, Y: 200}
	Integrate(b, &Input{Right: true, Up: true}, 1)
	if b.VX <= 0 || b.VY >= 0 {
		t.Fatalf("expected +x/-y velocity, got vx=%f vy=%f", b.VX, b.VY)
	}
	if b.X <= 400 || b.Y >= 200 {
		t.Fatalf("expected movement right and up, got x=%f y=%f", b.X, b.Y)
	}
}

func TestIntegrateClampsPlayerSpeed(t *testing.T) {
	b := &Body{X: 400, Y: 200}
	in := &Input{Right: true, Down: true}
	for i := 0; i < 100; i++ {
		Integrate(b, in, 1)
		if speed := math.Hypot(b.VX, b.VY); speed > MaxPlayerSpeed+1e-9 {
			t.Fatalf("speed %f exceeds cap %f at tick %d", speed, MaxPlayerSpeed, i)
		}
	}
}

func TestIntegrateFrictionDecaysToRest(t *testing.T) {
	b := &Body{X: 400, Y: 200, VX: 4, VY: -2}
	prev := math.Hypot(b.VX, b.VY)
	for i := 0; i < 400; i++ {
		Integrate(b, nil, 1)
		speed := math.Hypot(b.VX, b.VY)
		if speed >= prev && prev > 0 {
			t.Fatalf("speed did not decay: %f -> %f", prev, speed)
		}
		prev = speed
	}
	if prev > 0.01 {
		t.Fatalf("expected near rest after 400 ticks, speed=%f", prev)
	}
}

func TestIntegrateBallKeepsSpeedAbovePlayerCap(t *testing.T) {
	b := &Body{X: 400, Y: 200, VX: 12}
	Integrate(b, nil, 1)
	if b.VX <= MaxPlayerSpeed {
		t.Fatalf("ball speed clamped to player cap: vx=%f", b.VX)
	}
	if want := 12 * Friction; math.Abs(b.VX-want) > 1e-9 {
		t.Fatalf("ball vx = %f, want %f", b.VX, want)
	}
}

func TestIntegrateScalesMovementByDt(t *testing.T) {
	a := &Body{VX: 2}
	b := &Body{VX: 2}
	Integrate(a, nil, 1)
	Integrate(b, nil, 2)
	if math.Abs(b.X-2*a.X) > 1e-9 {
		t.Fatalf("dt=2 moved %f, want twice dt=1's %f", b.X, a.X)
	}
	if a.VX != b.VX {
		t.Fatalf("friction must not scale with dt: %f vs %f", a.VX, b.VX)
	}
}

func TestConstrainBouncesOffWalls(t *testing.T) {
	b := &Body{X: 2, Y: 100, VX: -3}
	Constrain(b, PlayerRadius)
	if b.X != PlayerRadius {
		t.Fatalf("x = %f, want %f", b.X, PlayerRadius)
	}
	if want := 3 * Restitution; math.Abs(b.VX-want) > 1e-9 {
		t.Fatalf("vx after bounce = %f, want %f", b.VX, want)
	}

	b = &Body{X: 400, Y: FieldHeight + 5, VY: 2}
	Constrain(b, BallRadius)
	if b.Y != FieldHeight-BallRadius {
		t.Fatalf("y = %f, want %f", b.Y, FieldHeight-BallRadius)
	}
	if want := -2 * Restitution; math.Abs(b.VY-want) > 1e-9 {
		t.Fatalf("vy after bounce = %f, want %f", b.VY, want)
	}
}

func TestConstrainGoalMouthExtendsBound(t *testing.T) {
	b := &Body{X: -25, Y: 200, VX: -2}
	Constrain(b, BallRadius)
	if want := -GoalDepth + BallRadius; b.X != want {
		t.Fatalf("x in goal mouth = %f, want %f", b.X, want)
	}
	if b.X >= 0 {
		t.Fatalf("goal mouth should let the center cross the line, x=%f", b.X)
	}

	b = &Body{X: -25, Y: 100, VX: -2}
	Constrain(b, BallRadius)
	if b.X != BallRadius {
		t.Fatalf("outside the span x = %f, want %f", b.X, BallRadius)
	}
}

func TestConstrainIdempotent(t *testing.T) {
	b := &Body{X: -30, Y: 200, VX: -4, VY: 1}
	Constrain(b, BallRadius)
	snap := *b
	Constrain(b, BallRadius)
	if *b != snap {
		t.Fatalf("second constrain changed state: %+v -> %+v", snap, *b)
	}
}

func TestCollidesRequiresOverlap(t *testing.T) {
	a := &Body{X: 0, Y: 0}
	b := &Body{X: PlayerRadius + BallRadius, Y: 0}
	if Collides(a, b, PlayerRadius, BallRadius) {
		t.Fatalf("exact touch should not collide")
	}
	b.X -= 0.5
	if !Collides(a, b, PlayerRadius, BallRadius) {
		t.Fatalf("overlapping circles should collide")
	}
}

func TestResolveSeparatesAndConservesMomentum(t *testing.T) {
	a := &Body{X: 0, Y: 0, VX: 3}
	b := &Body{X: 20, Y: 0}
	px0 := PlayerMass*a.VX + BallMass*b.VX
	ke0 := 0.5*PlayerMass*(a.VX*a.VX+a.VY*a.VY) + 0.5*BallMass*(b.VX*b.VX+b.VY*b.VY)

	Resolve(a, b, PlayerRadius, BallRadius, PlayerMass, BallMass)

	if Collides(a, b, PlayerRadius, BallRadius) {
		t.Fatalf("still overlapping after resolve: a=%f b=%f", a.X, b.X)
	}
	px1 := PlayerMass*a.VX + BallMass*b.VX
	if math.Abs(px1-px0) > 1e-9 {
		t.Fatalf("momentum changed: %f -> %f", px0, px1)
	}
	ke1 := 0.5*PlayerMass*(a.VX*a.VX+a.VY*a.VY) + 0.5*BallMass*(b.VX*b.VX+b.VY*b.VY)
	if ke1 > ke0+1e-9 {
		t.Fatalf("energy increased: %f -> %f", ke0, ke1)
	}
	if b.VX <= a.VX {
		t.Fatalf("ball should move away faster than player: a.vx=%f b.vx=%f", a.VX, b.VX)
	}
}

func TestResolveCoincidentCentersStillSeparate(t *testing.T) {
	a := &Body{X: 100, Y: 100}
	b := &Body{X: 100, Y: 100}
	Resolve(a, b, PlayerRadius, PlayerRadius, PlayerMass, PlayerMass)
	if Collides(a, b, PlayerRadius, PlayerRadius) {
		t.Fatalf("coincident bodies not separated: a=(%f,%f) b=(%f,%f)", a.X, a.Y, b.X, b.Y)
	}
	if a.Y != 100 || b.Y != 100 {
		t.Fatalf("fallback normal should split along x")
	}
}

func TestResolveSkipsImpulseWhenSeparating(t *testing.T) {
	a := &Body{X: 0, Y: 0, VX: -1}
	b := &Body{X: 20, Y: 0, VX: 1}
	Resolve(a, b, PlayerRadius, BallRadius, PlayerMass, BallMass)
	if a.VX != -1 || b.VX != 1 {
		t.Fatalf("separating pair got an impulse: a.vx=%f b.vx=%f", a.VX, b.VX)
	}
	if Collides(a, b, PlayerRadius, BallRadius) {
		t.Fatalf("positions should still separate")
	}
}

func TestResolveNoOpWithoutOverlap(t *testing.T) {
	a := &Body{X: 0, Y: 0, VX: 5}
	b := &Body{X: 200, Y: 0}
	Resolve(a, b, PlayerRadius, BallRadius, PlayerMass, BallMass)
	if a.X != 0 || b.X != 200 || a.VX != 5 || b.VX != 0 {
		t.Fatalf("distant pair modified: a=%+v b=%+v", a, b)
	}
}

func TestDetectGoalSidesAndSpan(t *testing.T) {
	ball := &Ball{Body: Body{X: -1, Y: 200}}
	team, ok := DetectGoal(ball)
	if !ok || team != TeamBlue {
		t.Fatalf("left goal: got %v %v, want blue", team, ok)
	}

	ball.X = FieldWidth + 1
	team, ok = DetectGoal(ball)
	if !ok || team != TeamRed {
		t.Fatalf("right goal: got %v %v, want red", team, ok)
	}

	ball.X = -1
	ball.Y = 100
	if _, ok := DetectGoal(ball); ok {
		t.Fatalf("outside the span must not score")
	}

	ball.X = FieldWidth / 2
	ball.Y = 200
	if _, ok := DetectGoal(ball); ok {
		t.Fatalf("mid-field must not score")
	}

	ball.X = 0
	if _, ok := DetectGoal(ball); ok {
		t.Fatalf("center exactly on the line must not score")
	}
}

func TestGoalReachableThroughConstrain(t *testing.T) {
	ball := &Ball{Body: Body{X: 4, Y: 200, VX: -9}}
	for i := 0; i < 3; i++ {
		Integrate(&ball.Body, nil, 1)
		Constrain(&ball.Body, BallRadius)
		if team, ok := DetectGoal(ball); ok {
			if team != TeamBlue {
				t.Fatalf("left entry scored for %v", team)
			}
			return
		}
	}
	t.Fatalf("fast ball aimed at the left aperture never scored, x=%f", ball.X)
}

func TestResetBall(t *testing.T) {
	ball := &Ball{Body: Body{X: -5, Y: 170, VX: -3, VY: 2}}
	ResetBall(ball)
	if ball.X != FieldWidth/2 || ball.Y != FieldHeight/2 || ball.VX != 0 || ball.VY != 0 {
		t.Fatalf("ball not reset: %+v", ball.Body)
	}
}

func TestApplyKickRangeAndCarry(t *testing.T) {
	p := &Player{Body: Body{X: 100, Y: 200, VX: 2}}
	ball := &Ball{Body: Body{X: 130, Y: 200}}
	if !ApplyKick(p, ball, 10) {
		t.Fatalf("kick in range did not connect")
	}
	if want := 10 + 2*KickCarry; math.Abs(ball.VX-want) > 1e-9 {
		t.Fatalf("kicked vx = %f, want %f", ball.VX, want)
	}
	if ball.VY != 0 {
		t.Fatalf("straight kick gained vy=%f", ball.VY)
	}

	far := &Ball{Body: Body{X: 100 + KickRange + 1, Y: 200}}
	if ApplyKick(p, far, 10) {
		t.Fatalf("kick beyond range connected")
	}
	if far.VX != 0 {
		t.Fatalf("out-of-range ball moved: vx=%f", far.VX)
	}
}

func TestRound2HalfAwayFromZero(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0.125, 0.13},
		{-0.125, -0.13},
		{3.14159, 3.14},
		{400, 400},
		{-2.999, -3},
	}
	for _, c := range cases {
		if got := Round2(c.in); got != c.want {
			t.Fatalf("Round2(%f) = %f, want %f", c.in, got, c.want)
		}
	}
}

func TestPlayerActivityWindow(t *testing.T) {
	now := time.Now()
	p := NewPlayer("p1", "ana", TeamRed, now)
	if !p.Active(now) {
		t.Fatalf("fresh player should be active")
	}
	if !p.Active(now.Add(ActivityTimeout)) {
		t.Fatalf("player at the exact timeout should still be active")
	}
	if p.Active(now.Add(ActivityTimeout + time.Millisecond)) {
		t.Fatalf("player past the timeout should be inactive")
	}
}

func TestKickoffPositions(t *testing.T) {
	if x, y := KickoffPosition(TeamRed); x != FieldWidth/4 || y != FieldHeight/2 {
		t.Fatalf("red kickoff = (%f,%f)", x, y)
	}
	if x, y := KickoffPosition(TeamBlue); x != 3*FieldWidth/4 || y != FieldHeight/2 {
		t.Fatalf("blue kickoff = (%f,%f)", x, y)
	}
	if x, y := KickoffPosition(TeamNone); x != FieldWidth/2 || y != FieldHeight/2 {
		t.Fatalf("spectator spawn = (%f,%f)", x, y)
	}
}

func TestTeamWireForms(t *testing.T) {
	for _, c := range []struct {
		team Team
		s    string
	}{
		{TeamRed, "red"},
		{TeamBlue, "blue"},
		{TeamNone, "spectator"},
	} {
		if c.team.String() != c.s {
			t.Fatalf("%v.String() = %q", c.team, c.team.String())
		}
		if ParseTeam(c.s) != c.team {
			t.Fatalf("ParseTeam(%q) = %v", c.s, ParseTeam(c.s))
		}
	}
	if ParseTeam("gold") != TeamNone {
		t.Fatalf("unknown team must parse as spectator")
	}
}
