package game

// PointResult describes a scoring event detected after physics and hits.
type PointResult struct {
	Scorer     Side
	ScoreLeft  int
	ScoreRight int
	Won        bool
}

// CheckGround reports whether the ball's lower edge has reached ground level.
func CheckGround(b *Ball) bool {
	return b.Y >= GroundY-BallRadius
}

// ScorePoint awards the point for a grounded ball: the side opposite the
// ball's horizontal half scores. Updates both session-level counters and the
// scoring player's own score, switches serve to the scorer, and evaluates
// the win condition (first to the mode's target, no margin required).
func ScorePoint(b *Ball, players *[2]*Player, mode Mode, servingSide *Side) PointResult {
	groundedOn := SideLeft
	if b.X >= NetX {
		groundedOn = SideRight
	}
	scorer := groundedOn.Opposite()

	if p := players[seatIndex(scorer)]; p != nil {
		p.Score++
	}
	*servingSide = scorer

	res := PointResult{Scorer: scorer}
	if p := players[seatIndex(SideLeft)]; p != nil {
		res.ScoreLeft = p.Score
	}
	if p := players[seatIndex(SideRight)]; p != nil {
		res.ScoreRight = p.Score
	}

	target := mode.WinScore()
	if score := players[seatIndex(scorer)]; score != nil && score.Score >= target {
		res.Won = true
	}
	return res
}
