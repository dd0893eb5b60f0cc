package game

// Status represents the lifecycle state of a match session.
type Status string

const (
	StatusWaiting     Status = "waiting"
	StatusCountdown   Status = "countdown"
	StatusPlaying     Status = "playing"
	StatusPointScored Status = "point_scored"
	StatusPaused      Status = "paused"
	StatusFinished    Status = "finished"
)

// Mode determines the target score of a match.
type Mode string

const (
	ModeCasual  Mode = "casual"
	ModeRanked  Mode = "ranked"
	ModePrivate Mode = "private"
)

// WinScore returns the target score for a mode. Ranked plays to 21,
// everything else to 15. First to target wins outright, no margin.
func (m Mode) WinScore() int {
	if m == ModeRanked {
		return RankedWinScore
	}
	return CasualWinScore
}

// Side is the fixed court half a participant occupies for the session.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideLeft {
		return SideRight
	}
	return SideLeft
}

// seatIndex maps a side onto the fixed two-seat arena.
func seatIndex(s Side) int {
	if s == SideLeft {
		return 0
	}
	return 1
}

// EndReason explains how a match finished.
type EndReason string

const (
	ReasonScore      EndReason = "score"
	ReasonForfeit    EndReason = "forfeit"
	ReasonDisconnect EndReason = "disconnect"
)

// Player is one side's participant: identity, character attributes and the
// kinematic state the integrator mutates every tick.
type Player struct {
	ConnID      string `json:"-"`
	AccountRef  string `json:"accountRef"`
	DisplayName string `json:"displayName"`
	CharacterID string `json:"characterId"`
	Side        Side   `json:"side"`

	Attributes CharacterAttributes `json:"attributes"`

	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	VelocityX  float64 `json:"velocityX"`
	VelocityY  float64 `json:"velocityY"`
	IsGrounded bool    `json:"isGrounded"`
	IsJumping  bool    `json:"isJumping"`
	Animation  string  `json:"animation"`

	Score     int  `json:"score"`
	Ready     bool `json:"ready"`
	Connected bool `json:"connected"`

	CanHit           bool `json:"canHit"`
	HitCooldownTicks int  `json:"-"`

	// Last accepted input, applied at tick boundaries only.
	InputLeft    bool   `json:"-"`
	InputRight   bool   `json:"-"`
	InputJump    bool   `json:"-"`
	JumpPressed  bool   `json:"-"`
	LastSequence uint64 `json:"-"`
}

// Ball is the session's single ball.
type Ball struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	VelocityX float64 `json:"velocityX"`
	VelocityY float64 `json:"velocityY"`
	Spin      float64 `json:"spin"`
	LastHitBy Side    `json:"lastHitBy,omitempty"`
}

// Animation tags shared with the client renderer.
const (
	AnimIdle = "idle"
	AnimRun  = "run"
	AnimJump = "jump"
	AnimFall = "fall"
	AnimHit  = "hit"
)

// homeX returns a side's serve-reset position.
func homeX(s Side) float64 {
	if s == SideLeft {
		return LeftHomeX
	}
	return RightHomeX
}

// serveX returns where the ball drops in for a serving side.
func serveX(s Side) float64 {
	if s == SideLeft {
		return LeftServeX
	}
	return RightServeX
}

// resetForServe puts a player back at their home position with all motion
// and hit state cleared.
func (p *Player) resetForServe() {
	p.X = homeX(p.Side)
	p.Y = GroundY
	p.VelocityX = 0
	p.VelocityY = 0
	p.IsGrounded = true
	p.IsJumping = false
	p.CanHit = true
	p.HitCooldownTicks = 0
	p.Animation = AnimIdle
}

// resetForServe positions the ball above the serving side's quarter width.
func (b *Ball) resetForServe(serving Side) {
	b.X = serveX(serving)
	b.Y = BallServeY
	b.VelocityX = 0
	b.VelocityY = 0
	b.Spin = 0
	b.LastHitBy = ""
}
