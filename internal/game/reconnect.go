package game

import (
	"log"
	"time"
)

// DisconnectRecord keeps a dropped player's claim on their seat while the
// reconnection window is open. Keyed by the stable account reference so a
// fresh connection can reclaim the seat.
type DisconnectRecord struct {
	AccountRef string
	Side       Side
	cancel     CancelFunc
}

// handleLeave runs on the session loop. A leave during the waiting phase
// just frees the seat; an intentional leave during active play forfeits
// immediately; an unexpected drop pauses play and arms the reconnection
// window.
func (s *Session) handleLeave(connID string, intentional bool) {
	p := s.playerByConn(connID)
	if p == nil {
		return // stale connection, seat already rebound or vacated
	}

	switch s.status {
	case StatusFinished:
		p.Connected = false
		return

	case StatusWaiting:
		s.players[seatIndex(p.Side)] = nil
		s.emit("opponent_left", map[string]interface{}{"side": p.Side})
		s.sync()
		return
	}

	if intentional {
		s.finish(p.Side.Opposite(), ReasonForfeit)
		return
	}

	p.Connected = false
	log.Printf("[SESSION] %s: %s disconnected, reconnect window %s",
		s.ID, p.AccountRef, ReconnectWindow)

	if s.status == StatusPlaying {
		s.pause("Player disconnected")
	}
	s.armForfeit(p)
	s.sync()
}

// armForfeit starts the forfeiture countdown for a dropped player. Re-arming
// for the same account replaces the previous timer.
func (s *Session) armForfeit(p *Player) {
	ref := p.AccountRef
	if rec, ok := s.disconnects[ref]; ok {
		rec.cancel()
	}
	rec := &DisconnectRecord{AccountRef: ref, Side: p.Side}
	rec.cancel = s.sched.After(ReconnectWindow, func() {
		s.post(func() { s.forfeitExpired(ref) })
	})
	s.disconnects[ref] = rec
}

// forfeitExpired fires when the reconnection window closes without a rejoin.
func (s *Session) forfeitExpired(ref string) {
	rec, ok := s.disconnects[ref]
	if !ok || s.status == StatusFinished {
		return
	}
	delete(s.disconnects, ref)
	log.Printf("[SESSION] %s: %s never reconnected, forfeiting", s.ID, ref)
	s.finish(rec.Side.Opposite(), ReasonDisconnect)
}

// rebindSeat reattaches a reconnecting account to its original seat. Score,
// attributes and position all survive the drop; only the transport identity
// changes. Play resumes once both seats are connected again.
func (s *Session) rebindSeat(rec *DisconnectRecord, req JoinRequest) JoinResult {
	rec.cancel()
	delete(s.disconnects, rec.AccountRef)

	p := s.players[seatIndex(rec.Side)]
	p.ConnID = req.ConnID
	p.Connected = true

	log.Printf("[SESSION] %s: %s reconnected as %s", s.ID, rec.AccountRef, rec.Side)
	s.emit("opponent_reconnected", map[string]interface{}{"side": rec.Side})

	if s.status == StatusPaused && s.bothConnected() {
		s.resume()
	}
	s.sync()

	return JoinResult{Side: rec.Side, Seed: s.seed, Resumed: true, Snapshot: s.buildSnapshot()}
}

// ReconnectWindow is how long a dropped player keeps their seat.
const ReconnectWindow = ReconnectGraceSeconds * time.Second
