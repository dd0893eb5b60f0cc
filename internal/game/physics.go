package game

import "math"

// StepBall advances the ball by one fixed slice: gravity, spin curve,
// integration, speed clamp, then wall / ceiling / net resolution. Pure with
// respect to everything except the passed-in ball.
func StepBall(b *Ball, dt float64) {
	b.VelocityY += Gravity * dt

	if math.Abs(b.Spin) > SpinMinimum {
		b.VelocityX += b.Spin * SpinEffect * dt
		b.Spin *= SpinDecay
	}

	b.X += b.VelocityX * dt
	b.Y += b.VelocityY * dt

	b.VelocityX = clamp(b.VelocityX, -MaxBallSpeed, MaxBallSpeed)
	b.VelocityY = clamp(b.VelocityY, -MaxBallSpeed, MaxBallSpeed)

	resolveWalls(b)
	resolveCeiling(b)
	resolveNet(b)
}

// resolveWalls reflects the ball off the court edges. The spin flips and
// halves on every wall contact.
func resolveWalls(b *Ball) {
	if b.X-BallRadius < 0 {
		b.X = BallRadius
		b.VelocityX = -b.VelocityX * Bounce
		b.Spin *= WallSpinFlip
	} else if b.X+BallRadius > CourtWidth {
		b.X = CourtWidth - BallRadius
		b.VelocityX = -b.VelocityX * Bounce
		b.Spin *= WallSpinFlip
	}
}

// resolveCeiling keeps the ball below the top bound.
func resolveCeiling(b *Ball) {
	if b.Y-BallRadius < CeilingY {
		b.Y = CeilingY + BallRadius
		if b.VelocityY < 0 {
			b.VelocityY = -b.VelocityY
		}
	}
}

// resolveNet handles the ball against the net band: a horizontal slab
// NetCollisionWidth wide centered on the court midline, from the ground up
// to NetTopY. Side contact reflects horizontally away from the approach
// side; striking the top edge also reflects vertically, softer.
func resolveNet(b *Ball) {
	halfBand := NetCollisionWidth / 2
	if math.Abs(b.X-NetX) >= halfBand+BallRadius {
		return
	}
	if b.Y+BallRadius < NetTopY {
		return
	}

	// Ball circle overlaps the band within the net's height.
	if b.X < NetX {
		b.X = NetX - halfBand - BallRadius
		b.VelocityX = -math.Abs(b.VelocityX) * Bounce * NetSideBounceFactor
	} else {
		b.X = NetX + halfBand + BallRadius
		b.VelocityX = math.Abs(b.VelocityX) * Bounce * NetSideBounceFactor
	}

	// Striking the tape: center still above the net top, moving down.
	if b.Y < NetTopY && b.VelocityY > 0 {
		b.VelocityY = -b.VelocityY * Bounce * NetTopBounceFactor
	}
}

// StepPlayer advances one player by one fixed slice. Horizontal velocity is
// set directly from the held input (instantaneous acceleration); vertical
// velocity accumulates gravity only while airborne; a rising-edge jump input
// launches from the ground. Position is clamped to the player's own half.
func StepPlayer(p *Player, dt float64) {
	speed := p.Attributes.MovementSpeed()
	switch {
	case p.InputLeft && !p.InputRight:
		p.VelocityX = -speed
	case p.InputRight && !p.InputLeft:
		p.VelocityX = speed
	default:
		p.VelocityX = 0
	}

	if p.JumpPressed && p.IsGrounded {
		p.VelocityY = -p.Attributes.JumpForce()
		p.IsGrounded = false
		p.IsJumping = true
	}
	p.JumpPressed = false

	if !p.IsGrounded {
		p.VelocityY += Gravity * dt
	}

	p.X += p.VelocityX * dt
	p.Y += p.VelocityY * dt

	if p.Y >= GroundY {
		p.Y = GroundY
		p.VelocityY = 0
		p.IsGrounded = true
		p.IsJumping = false
	}

	p.X = clamp(p.X, minX(p.Side), maxX(p.Side))

	if p.HitCooldownTicks == 0 {
		p.Animation = baseAnimation(p)
	}
}

// minX / maxX bound a player to their half: the court edge on their own side
// and the net collision band in the middle. A player can never cross the net.
func minX(s Side) float64 {
	if s == SideLeft {
		return PlayerHalfWidth
	}
	return NetX + NetCollisionWidth/2 + PlayerHalfWidth
}

func maxX(s Side) float64 {
	if s == SideLeft {
		return NetX - NetCollisionWidth/2 - PlayerHalfWidth
	}
	return CourtWidth - PlayerHalfWidth
}

// baseAnimation picks the non-hit animation tag from kinematic state.
func baseAnimation(p *Player) string {
	switch {
	case !p.IsGrounded && p.VelocityY < 0:
		return AnimJump
	case !p.IsGrounded:
		return AnimFall
	case p.VelocityX != 0:
		return AnimRun
	default:
		return AnimIdle
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
