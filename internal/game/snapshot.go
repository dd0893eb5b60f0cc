package game

// Snapshot is the full serializable match state multicast to clients. The
// session rebuilds one after every tick; the transport layer diffs
// consecutive snapshots and sends only the changed fields. Session control
// flow never depends on the diffing.
type Snapshot struct {
	Status           Status     `json:"status"`
	Mode             Mode       `json:"mode"`
	ServingSide      Side       `json:"servingSide"`
	MatchTimeSeconds int        `json:"matchTimeSeconds"`
	Countdown        int        `json:"countdownRemaining"`
	ScoreLeft        int        `json:"scoreLeft"`
	ScoreRight       int        `json:"scoreRight"`
	WinnerID         string     `json:"winnerId,omitempty"`
	WinnerSide       Side       `json:"winnerSide,omitempty"`
	Ball             Ball       `json:"ball"`
	Players          [2]*Player `json:"players"` // indexed left, right; nil for an empty seat
}

// Diff computes the patch between two snapshots as a field → value map.
// Entities are compared per-field but patched wholesale: a changed ball or
// player appears as its full sub-object, which keeps the client-side apply
// trivial. Returns nil when nothing changed.
func Diff(prev, next *Snapshot) map[string]interface{} {
	if prev == nil {
		return nil
	}

	patch := make(map[string]interface{})

	if prev.Status != next.Status {
		patch["status"] = next.Status
	}
	if prev.Mode != next.Mode {
		patch["mode"] = next.Mode
	}
	if prev.ServingSide != next.ServingSide {
		patch["servingSide"] = next.ServingSide
	}
	if prev.MatchTimeSeconds != next.MatchTimeSeconds {
		patch["matchTimeSeconds"] = next.MatchTimeSeconds
	}
	if prev.Countdown != next.Countdown {
		patch["countdownRemaining"] = next.Countdown
	}
	if prev.ScoreLeft != next.ScoreLeft {
		patch["scoreLeft"] = next.ScoreLeft
	}
	if prev.ScoreRight != next.ScoreRight {
		patch["scoreRight"] = next.ScoreRight
	}
	if prev.WinnerID != next.WinnerID {
		patch["winnerId"] = next.WinnerID
	}
	if prev.WinnerSide != next.WinnerSide {
		patch["winnerSide"] = next.WinnerSide
	}
	if prev.Ball != next.Ball {
		patch["ball"] = next.Ball
	}

	var changed [2]*Player
	dirty := false
	for i := range next.Players {
		if playerChanged(prev.Players[i], next.Players[i]) {
			changed[i] = next.Players[i]
			dirty = true
		}
	}
	if dirty {
		patch["players"] = changed
	}

	if len(patch) == 0 {
		return nil
	}
	return patch
}

func playerChanged(a, b *Player) bool {
	if a == nil || b == nil {
		return a != b
	}
	return a.ConnID != b.ConnID ||
		a.AccountRef != b.AccountRef ||
		a.DisplayName != b.DisplayName ||
		a.CharacterID != b.CharacterID ||
		a.Attributes != b.Attributes ||
		a.X != b.X || a.Y != b.Y ||
		a.VelocityX != b.VelocityX || a.VelocityY != b.VelocityY ||
		a.IsGrounded != b.IsGrounded || a.IsJumping != b.IsJumping ||
		a.Animation != b.Animation ||
		a.Score != b.Score ||
		a.Ready != b.Ready || a.Connected != b.Connected ||
		a.CanHit != b.CanHit
}
