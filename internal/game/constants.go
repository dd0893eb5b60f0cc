package game

import "time"

// Physics and court constants for the volleyball simulation.
// These MUST match the client-side prediction constants exactly — the client
// replays the same integration between server updates.

const (
	TickRate     = 60
	TickInterval = time.Second / TickRate
	Dt           = 1.0 / float64(TickRate)

	Gravity      = 800.0
	MaxBallSpeed = 600.0 // per-axis clamp, both entities
	Bounce       = 0.8

	CourtWidth = 480.0
	GroundY    = 230.0
	CeilingY   = 0.0

	BallRadius = 8.0

	// The net's collision band is deliberately wider than its visual width
	// so grazing shots rebound instead of tunneling through.
	NetX                = CourtWidth / 2
	NetHeight           = 80.0
	NetTopY             = GroundY - NetHeight
	NetVisualWidth      = 10.0
	NetCollisionWidth   = 20.0
	NetTopBounceFactor  = 0.5
	NetSideBounceFactor = 0.8

	SpinEffect   = 200.0 // horizontal acceleration per unit of spin
	SpinDecay    = 0.98  // geometric decay per tick
	SpinMinimum  = 0.1   // below this, spin no longer bends the ball
	MaxSpin      = 3.0
	WallSpinFlip = -0.5

	PlayerReach      = 28.0
	HitRadius        = BallRadius + PlayerReach
	HitCooldownMS    = 150
	HitCooldownTicks = HitCooldownMS * TickRate / 1000
	MomentumTransfer = 0.3
	UpwardClearance  = -200.0 // minimum launch velocity when striking overhead

	PlayerHalfWidth = 12.0

	// Serve layout: ball drops in at the serving side's quarter width.
	BallServeY    = 60.0
	ServeDropVelY = 100.0
	LeftServeX    = CourtWidth / 4
	RightServeX   = CourtWidth * 3 / 4
	LeftHomeX     = CourtWidth / 4
	RightHomeX    = CourtWidth * 3 / 4

	CountdownSeconds = 3
	PointPauseMS     = 1500

	CasualWinScore = 15
	RankedWinScore = 21

	ReconnectGraceSeconds = 30
)

// Character attribute → physical quantity formulas. Shared with client
// prediction; must match bit-for-bit.

func MovementSpeed(speed int) float64 { return 100 + float64(speed)*20 }

func JumpForce(jump int) float64 { return 200 + float64(jump)*40 }

func HitPower(power int) float64 { return 300 + float64(power)*50 }

func ControlFactor(control int) float64 { return 0.5 + float64(control)*0.0625 }
