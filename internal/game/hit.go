package game

import "math"

// ResolveHit tests one hit-eligible player against the ball and, on contact,
// rewrites the ball's velocity and spin from the player's attributes plus a
// bounded, seeded random deviation. Returns true if a hit fired this tick.
//
// Mutates only the ball and the triggering player; scoring is not decided
// here.
func ResolveHit(p *Player, b *Ball, rng *Rand) bool {
	if !p.Connected || !p.CanHit || p.HitCooldownTicks > 0 {
		return false
	}

	dx := b.X - p.X
	dy := b.Y - p.Y
	if dx*dx+dy*dy > HitRadius*HitRadius {
		return false
	}

	// Unit direction player → ball; straight up if coincident.
	dirX, dirY := dx, dy
	dist := math.Sqrt(dx*dx + dy*dy)
	if dist == 0 {
		dirX, dirY = 0, -1
	} else {
		dirX /= dist
		dirY /= dist
	}

	// Control tightens the deviation cone: a maxed-out control factor of 1.0
	// removes randomness entirely.
	control := p.Attributes.ControlFactor()
	deviation := rng.Range(math.Pi / 4 * (1 - control))
	sin, cos := math.Sincos(deviation)
	rx := dirX*cos - dirY*sin
	ry := dirX*sin + dirY*cos

	power := p.Attributes.HitPower()
	b.VelocityX = rx*power + p.VelocityX*MomentumTransfer
	b.VelocityY = ry*power + p.VelocityY*MomentumTransfer

	// Overhead strikes must clear upward.
	if dy < 0 && b.VelocityY > UpwardClearance {
		b.VelocityY = UpwardClearance
	}

	spin := p.VelocityX * 0.01 * (1 + (1 - control))
	b.Spin = clamp(spin, -MaxSpin, MaxSpin)

	b.VelocityX = clamp(b.VelocityX, -MaxBallSpeed, MaxBallSpeed)
	b.VelocityY = clamp(b.VelocityY, -MaxBallSpeed, MaxBallSpeed)
	b.LastHitBy = p.Side

	p.CanHit = false
	p.HitCooldownTicks = HitCooldownTicks
	p.Animation = AnimHit
	return true
}

// TickHitCooldown counts a player's cooldown down and restores hit
// eligibility, reverting the animation tag once the swing finishes.
func TickHitCooldown(p *Player) {
	if p.HitCooldownTicks == 0 {
		return
	}
	p.HitCooldownTicks--
	if p.HitCooldownTicks == 0 {
		p.CanHit = true
		p.Animation = baseAnimation(p)
	}
}
