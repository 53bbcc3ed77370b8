// Package game holds the entity model and the pure physics routines the
// room simulation drives. Everything here is free of goroutines, clocks
// and I/O: a room owns its entities and calls these in tick order.
package game

import "math"

// Integrate advances one body by one tick. A non-nil input applies held
// acceleration and the player speed cap before friction; the ball passes
// nil and keeps whatever speed collisions gave it. dt is the tick length
// in tick units (1.0 at a perfect 60 Hz), scaling movement only;
// friction stays a flat per-call factor.
func Integrate(b *Body, in *Input, dt float64) {
	if in != nil {
		if in.Up {
			b.VY -= Accel
		}
		if in.Down {
			b.VY += Accel
		}
		if in.Left {
			b.VX -= Accel
		}
		if in.Right {
			b.VX += Accel
		}
		if speed := math.Hypot(b.VX, b.VY); speed > MaxPlayerSpeed {
			s := MaxPlayerSpeed / speed
			b.VX *= s
			b.VY *= s
		}
	}
	b.VX *= Friction
	b.VY *= Friction
	b.X += b.VX * dt
	b.Y += b.VY * dt
}

// InGoalSpan reports whether a center height lines up with the goal
// apertures in the side walls.
func InGoalSpan(y float64) bool {
	return y >= GoalTop && y <= GoalBottom
}

// Constrain clamps a body of the given radius into the playable area and
// reflects its velocity off whatever wall it hit. Inside the goal span
// the X bound extends into the goal mouth by GoalDepth; a body there can
// carry its center past the goal line, which is what DetectGoal reads.
// Calling it twice in a row changes nothing.
func Constrain(b *Body, radius float64) {
	if b.Y < radius {
		b.Y = radius
		if b.VY < 0 {
			b.VY = -b.VY * Restitution
		}
	} else if b.Y > FieldHeight-radius {
		b.Y = FieldHeight - radius
		if b.VY > 0 {
			b.VY = -b.VY * Restitution
		}
	}

	minX, maxX := radius, FieldWidth-radius
	if InGoalSpan(b.Y) {
		minX = -GoalDepth + radius
		maxX = FieldWidth + GoalDepth - radius
	}
	if b.X < minX {
		b.X = minX
		if b.VX < 0 {
			b.VX = -b.VX * Restitution
		}
	} else if b.X > maxX {
		b.X = maxX
		if b.VX > 0 {
			b.VX = -b.VX * Restitution
		}
	}
}

// Collides reports circle overlap. Touching exactly is not a collision.
func Collides(a, b *Body, ra, rb float64) bool {
	dx := b.X - a.X
	dy := b.Y - a.Y
	rr := ra + rb
	return dx*dx+dy*dy < rr*rr
}

// Resolve separates two overlapping circles and exchanges an impulse
// along the contact normal. No-op when they don't overlap. Coincident
// centers fall back to a fixed (1,0) normal so stacked kickoff spawns
// still split apart. Positions move half the overlap each regardless of
// mass; the impulse is mass-weighted and skipped entirely when the pair
// is already separating, so resting contact never gains energy.
func Resolve(a, b *Body, ra, rb, ma, mb float64) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	dist := math.Hypot(dx, dy)
	rr := ra + rb
	if dist >= rr {
		return
	}

	nx, ny := 1.0, 0.0
	if dist > 0 {
		nx = dx / dist
		ny = dy / dist
	}

	half := (rr - dist) / 2
	a.X -= nx * half
	a.Y -= ny * half
	b.X += nx * half
	b.Y += ny * half

	rvn := (b.VX-a.VX)*nx + (b.VY-a.VY)*ny
	if rvn >= 0 {
		return
	}
	j := -(1 + Restitution) * rvn / (1/ma + 1/mb)
	a.VX -= j * nx / ma
	a.VY -= j * ny / ma
	b.VX += j * nx / mb
	b.VY += j * ny / mb
}

// DetectGoal reports which team scored, if either. Only the ball's
// center matters: once Constrain has let it cross a goal line inside the
// span, a center past the line is a goal. The left aperture belongs to
// Red, so a ball in it scores for Blue, and mirrored on the right.
func DetectGoal(ball *Ball) (Team, bool) {
	if !InGoalSpan(ball.Y) {
		return TeamNone, false
	}
	switch {
	case ball.X < 0:
		return TeamBlue, true
	case ball.X > FieldWidth:
		return TeamRed, true
	}
	return TeamNone, false
}

// ResetBall recenters the ball at rest for kickoff.
func ResetBall(ball *Ball) {
	ball.Body = Body{X: FieldWidth / 2, Y: FieldHeight / 2}
}

// ApplyKick shoves the ball away from the attacker when it is in reach,
// adding a share of the attacker's own momentum. Reports whether the
// kick connected. The ball has no speed cap, so a hard kick outruns any
// player.
func ApplyKick(attacker *Player, ball *Ball, force float64) bool {
	dx := ball.X - attacker.X
	dy := ball.Y - attacker.Y
	dist := math.Hypot(dx, dy)
	if dist > KickRange {
		return false
	}
	nx, ny := 1.0, 0.0
	if dist > 0 {
		nx = dx / dist
		ny = dy / dist
	}
	ball.VX += nx*force + attacker.VX*KickCarry
	ball.VY += ny*force + attacker.VY*KickCarry
	return true
}

// Round2 rounds half away from zero to two decimals. Snapshots quantize
// every coordinate and velocity through it.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
