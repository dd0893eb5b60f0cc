package game

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeScheduler records timers instead of arming real ones; tests fire them
// by duration.
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	d         time.Duration
	fn        func()
	repeating bool
	cancelled bool
	fired     bool
}

func (f *fakeScheduler) After(d time.Duration, fn func()) CancelFunc {
	return f.add(&fakeTimer{d: d, fn: fn})
}

func (f *fakeScheduler) Every(d time.Duration, fn func()) CancelFunc {
	return f.add(&fakeTimer{d: d, fn: fn, repeating: true})
}

func (f *fakeScheduler) add(t *fakeTimer) CancelFunc {
	f.mu.Lock()
	f.timers = append(f.timers, t)
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		t.cancelled = true
		f.mu.Unlock()
	}
}

// fire runs every live timer registered with duration d.
func (f *fakeScheduler) fire(d time.Duration) {
	f.mu.Lock()
	var run []*fakeTimer
	for _, t := range f.timers {
		if t.cancelled || t.d != d {
			continue
		}
		if t.fired && !t.repeating {
			continue
		}
		t.fired = true
		run = append(run, t)
	}
	f.mu.Unlock()

	for _, t := range run {
		t.fn()
	}
}

// recordingEmitter captures everything the session broadcasts.
type recordingEmitter struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	name string
	data map[string]interface{}
}

func (e *recordingEmitter) Broadcast(event string, data map[string]interface{}) {
	e.mu.Lock()
	e.events = append(e.events, recordedEvent{name: event, data: data})
	e.mu.Unlock()
}

func (e *recordingEmitter) SendTo(connID string, event string, data map[string]interface{}) {
	e.Broadcast(event, data)
}

func (e *recordingEmitter) count(name string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, ev := range e.events {
		if ev.name == name {
			n++
		}
	}
	return n
}

func (e *recordingEmitter) last(name string) (map[string]interface{}, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := len(e.events) - 1; i >= 0; i-- {
		if e.events[i].name == name {
			return e.events[i].data, true
		}
	}
	return nil, false
}

type sessionFixture struct {
	s        *Session
	sched    *fakeScheduler
	emitter  *recordingEmitter
	outcomes chan Outcome
}

func newSessionFixture(t *testing.T, mode Mode) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		sched:    &fakeScheduler{},
		emitter:  &recordingEmitter{},
		outcomes: make(chan Outcome, 1),
	}
	f.s = NewSession("s_test", "tok_test", mode, f.sched, f.emitter, func(o Outcome) {
		f.outcomes <- o
	})
	go f.s.Run()
	return f
}

// barrier waits until all previously posted messages are processed.
func (f *sessionFixture) barrier() {
	f.s.call(func() {})
}

func (f *sessionFixture) tick() {
	f.sched.fire(TickInterval)
	f.barrier()
}

func (f *sessionFixture) second() {
	f.sched.fire(time.Second)
	f.barrier()
}

func (f *sessionFixture) join(t *testing.T, connID, accountRef string) JoinResult {
	t.Helper()
	res, err := f.s.Join(JoinRequest{
		ConnID:      connID,
		AccountRef:  accountRef,
		DisplayName: accountRef,
		CharacterID: "ace",
	})
	if err != nil {
		t.Fatalf("join %s failed: %v", accountRef, err)
	}
	return res
}

// startPlaying drives the fixture through join, ready and countdown.
func (f *sessionFixture) startPlaying(t *testing.T) {
	t.Helper()
	f.join(t, "conn1", "acct1")
	f.join(t, "conn2", "acct2")
	f.s.Ready("conn1")
	f.s.Ready("conn2")
	f.barrier()

	for i := 0; i < CountdownSeconds; i++ {
		f.second()
	}
	if got := f.s.Status(); got != StatusPlaying {
		t.Fatalf("status after countdown = %q, want playing", got)
	}
}

func TestJoinAssignsSidesAndSeed(t *testing.T) {
	f := newSessionFixture(t, ModeCasual)

	r1 := f.join(t, "conn1", "acct1")
	if r1.Side != SideLeft {
		t.Errorf("first join side = %q, want left", r1.Side)
	}

	r2 := f.join(t, "conn2", "acct2")
	if r2.Side != SideRight {
		t.Errorf("second join side = %q, want right", r2.Side)
	}
	if r1.Seed != r2.Seed {
		t.Errorf("players got different seeds: %d vs %d", r1.Seed, r2.Seed)
	}
	if f.emitter.count("match_ready") != 1 {
		t.Errorf("match_ready broadcast %d times, want 1", f.emitter.count("match_ready"))
	}
}

func TestThirdJoinRejected(t *testing.T) {
	f := newSessionFixture(t, ModeCasual)
	f.join(t, "conn1", "acct1")
	f.join(t, "conn2", "acct2")

	_, err := f.s.Join(JoinRequest{ConnID: "conn3", AccountRef: "acct3"})
	if !errors.Is(err, ErrSessionFull) {
		t.Errorf("third join error = %v, want ErrSessionFull", err)
	}
}

func TestCountdownRunsThreeSeconds(t *testing.T) {
	f := newSessionFixture(t, ModeCasual)
	f.join(t, "conn1", "acct1")
	f.join(t, "conn2", "acct2")
	f.s.Ready("conn1")
	f.barrier()

	if got := f.s.Status(); got != StatusWaiting {
		t.Fatalf("status with one ready = %q, want waiting", got)
	}

	f.s.Ready("conn2")
	f.barrier()
	if got := f.s.Status(); got != StatusCountdown {
		t.Fatalf("status with both ready = %q, want countdown", got)
	}

	f.second()
	f.second()
	if got := f.s.Status(); got != StatusCountdown {
		t.Fatalf("status after 2s = %q, want countdown", got)
	}

	f.second()
	if got := f.s.Status(); got != StatusPlaying {
		t.Fatalf("status after 3s = %q, want playing", got)
	}
	if f.emitter.count("countdown") < CountdownSeconds {
		t.Errorf("countdown broadcast %d times, want at least %d",
			f.emitter.count("countdown"), CountdownSeconds)
	}

	// The serve gives the ball its initial drop.
	snap := f.s.State()
	if snap.Ball.VelocityY != ServeDropVelY {
		t.Errorf("serve velocityY = %.1f, want %.1f", snap.Ball.VelocityY, ServeDropVelY)
	}
}

func TestPointScoredPausesThenRestartsCountdown(t *testing.T) {
	f := newSessionFixture(t, ModeCasual)
	f.startPlaying(t)

	// Ground the ball on the left half: right scores.
	f.s.call(func() {
		f.s.ball = Ball{X: 60, Y: 221, VelocityY: 100}
	})
	f.tick()

	if got := f.s.Status(); got != StatusPointScored {
		t.Fatalf("status after grounding = %q, want point_scored", got)
	}
	data, ok := f.emitter.last("point_scored")
	if !ok {
		t.Fatal("point_scored not broadcast")
	}
	if data["side"] != SideRight {
		t.Errorf("point side = %v, want right", data["side"])
	}

	snap := f.s.State()
	if snap.ScoreRight != 1 || snap.ScoreLeft != 0 {
		t.Errorf("score = %d-%d, want 0-1", snap.ScoreLeft, snap.ScoreRight)
	}
	if snap.ServingSide != SideRight {
		t.Errorf("servingSide = %q, want right (scorer serves)", snap.ServingSide)
	}

	// Simulation is inert during the pause.
	before := snap.Ball
	f.tick()
	if after := f.s.State().Ball; after != before {
		t.Error("ball moved during point_scored pause")
	}

	// Pause elapses, rally resets, countdown restarts.
	f.sched.fire(PointPauseMS * time.Millisecond)
	f.barrier()
	if got := f.s.Status(); got != StatusCountdown {
		t.Fatalf("status after point pause = %q, want countdown", got)
	}
	if ball := f.s.State().Ball; ball.X != RightServeX || ball.Y != BallServeY {
		t.Errorf("ball not at serve position: (%.1f,%.1f)", ball.X, ball.Y)
	}
}

func TestMatchPointEndsWithoutPause(t *testing.T) {
	f := newSessionFixture(t, ModeCasual)
	f.startPlaying(t)

	// Left at match point; ball grounding on the right half wins it.
	f.s.call(func() {
		f.s.players[0].Score = 14
		f.s.players[1].Score = 9
		f.s.ball = Ball{X: 400, Y: 221, VelocityY: 100}
	})
	f.tick()

	if got := f.s.Status(); got != StatusFinished {
		t.Fatalf("status = %q, want finished", got)
	}
	snap := f.s.State()
	if snap.WinnerSide != SideLeft {
		t.Errorf("winnerSide = %q, want left", snap.WinnerSide)
	}
	if snap.ScoreLeft != 15 || snap.ScoreRight != 9 {
		t.Errorf("final score = %d-%d, want 15-9", snap.ScoreLeft, snap.ScoreRight)
	}

	data, ok := f.emitter.last("game_over")
	if !ok {
		t.Fatal("game_over not broadcast")
	}
	if data["reason"] != ReasonScore {
		t.Errorf("game_over reason = %v, want score", data["reason"])
	}

	o := <-f.outcomes
	if o.WinnerSide != SideLeft || o.ScoreLeft != 15 || o.ScoreRight != 9 {
		t.Errorf("outcome = %+v", o)
	}
	if o.Mode != ModeCasual || o.Reason != ReasonScore {
		t.Errorf("outcome mode/reason = %s/%s", o.Mode, o.Reason)
	}
}

func TestRankedPlaysToTwentyOne(t *testing.T) {
	f := newSessionFixture(t, ModeRanked)
	f.startPlaying(t)

	f.s.call(func() {
		f.s.players[0].Score = 14
		f.s.ball = Ball{X: 400, Y: 221, VelocityY: 100}
	})
	f.tick()

	// 15 points is not enough in ranked.
	if got := f.s.Status(); got != StatusPointScored {
		t.Fatalf("status at 15 points in ranked = %q, want point_scored", got)
	}
}

func TestStaleTickAfterFinishIsIgnored(t *testing.T) {
	f := newSessionFixture(t, ModeCasual)
	f.startPlaying(t)

	f.s.Forfeit("conn2")
	f.barrier()
	if got := f.s.Status(); got != StatusFinished {
		t.Fatalf("status = %q, want finished", got)
	}

	events := f.emitter.count("state_diff")
	// A racing scheduler callback must be a no-op, not a crash.
	f.s.call(func() { f.s.tick() })
	f.s.call(func() { f.s.tickCountdown() })
	f.s.call(func() { f.s.afterPointPause() })

	if got := f.s.Status(); got != StatusFinished {
		t.Errorf("stale callback advanced status to %q", got)
	}
	if f.emitter.count("state_diff") != events {
		t.Error("stale callback broadcast state")
	}
}

func TestInputSequenceReplayDropped(t *testing.T) {
	f := newSessionFixture(t, ModeCasual)
	f.startPlaying(t)

	f.s.Input("conn1", true, false, false, false, 7)
	f.tick()

	f.s.call(func() {
		p := f.s.players[0]
		if !p.InputLeft || p.InputRight {
			t.Errorf("inputs after seq 7: left=%v right=%v", p.InputLeft, p.InputRight)
		}
	})

	// An older sequence arrives late: dropped, counter untouched.
	f.s.Input("conn1", false, true, false, false, 5)
	f.tick()

	f.s.call(func() {
		p := f.s.players[0]
		if !p.InputLeft || p.InputRight {
			t.Errorf("stale input applied: left=%v right=%v", p.InputLeft, p.InputRight)
		}
		if p.LastSequence != 7 {
			t.Errorf("lastSequence = %d, want 7", p.LastSequence)
		}
	})

	// Replaying the accepted sequence is equally a no-op.
	f.s.Input("conn1", false, true, false, false, 7)
	f.tick()

	f.s.call(func() {
		if p := f.s.players[0]; !p.InputLeft {
			t.Error("replayed sequence mutated input state")
		}
	})
}

func TestInputDroppedOutsideActivePlay(t *testing.T) {
	f := newSessionFixture(t, ModeCasual)
	f.join(t, "conn1", "acct1")

	// No tick drains the buffer in the lobby; spam must not accumulate.
	for i := 1; i <= 64; i++ {
		f.s.Input("conn1", true, false, false, false, uint64(i))
	}
	f.barrier()
	f.s.call(func() {
		if n := len(f.s.pending); n != 0 {
			t.Errorf("pending = %d frames while waiting, want 0", n)
		}
	})

	f.join(t, "conn2", "acct2")
	f.s.Ready("conn1")
	f.s.Ready("conn2")
	f.barrier()
	for i := 0; i < CountdownSeconds; i++ {
		f.second()
	}

	f.s.Pause("conn1")
	f.barrier()
	for i := 100; i < 164; i++ {
		f.s.Input("conn1", true, false, false, false, uint64(i))
	}
	f.barrier()
	f.s.call(func() {
		if n := len(f.s.pending); n != 0 {
			t.Errorf("pending = %d frames while paused, want 0", n)
		}
	})

	// Frames buffer again once play resumes.
	f.s.Resume("conn2")
	f.barrier()
	f.s.Input("conn1", true, false, false, false, 200)
	f.tick()
	f.s.call(func() {
		if p := f.s.players[0]; !p.InputLeft {
			t.Error("input dropped while playing")
		}
	})
}

func TestExplicitPauseAndResume(t *testing.T) {
	f := newSessionFixture(t, ModeCasual)
	f.startPlaying(t)

	f.s.Pause("conn1")
	f.barrier()
	if got := f.s.Status(); got != StatusPaused {
		t.Fatalf("status = %q, want paused", got)
	}

	// Ticks do not advance a paused match.
	before := f.s.State().Ball
	f.tick()
	if after := f.s.State().Ball; after != before {
		t.Error("ball moved while paused")
	}

	f.s.Resume("conn2")
	f.barrier()
	if got := f.s.Status(); got != StatusPlaying {
		t.Fatalf("status = %q, want playing", got)
	}
	if f.emitter.count("game_resumed") != 1 {
		t.Errorf("game_resumed broadcast %d times, want 1", f.emitter.count("game_resumed"))
	}
}

func TestForfeitAwardsOpponent(t *testing.T) {
	f := newSessionFixture(t, ModeCasual)
	f.startPlaying(t)

	f.s.Forfeit("conn1")
	f.barrier()

	snap := f.s.State()
	if snap.Status != StatusFinished || snap.WinnerSide != SideRight {
		t.Errorf("status=%q winner=%q, want finished/right", snap.Status, snap.WinnerSide)
	}
	o := <-f.outcomes
	if o.Reason != ReasonForfeit {
		t.Errorf("reason = %q, want forfeit", o.Reason)
	}
}

func TestScoreMirrorsPointEvents(t *testing.T) {
	f := newSessionFixture(t, ModeCasual)
	f.startPlaying(t)

	for i := 0; i < 3; i++ {
		f.s.call(func() {
			f.s.ball = Ball{X: 60, Y: 221, VelocityY: 100}
			f.s.status = StatusPlaying
		})
		f.tick()
	}

	snap := f.s.State()
	if got := snap.ScoreLeft + snap.ScoreRight; got != f.emitter.count("point_scored") {
		t.Errorf("score sum %d != point_scored count %d", got, f.emitter.count("point_scored"))
	}
	if snap.ScoreRight != 3 {
		t.Errorf("scoreRight = %d, want 3", snap.ScoreRight)
	}
}
