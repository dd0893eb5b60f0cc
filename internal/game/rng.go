package game

import (
	"crypto/rand"
	"encoding/binary"
)

// Rand is the session-owned deterministic random source. The seed is sent to
// both clients at join time, and the client replays the identical sequence
// for local hit prediction — so the algorithm is fixed (xorshift64*) and must
// never be swapped for a platform RNG.
type Rand struct {
	state uint64
}

// NewRand creates a deterministic source from a seed. A zero seed would lock
// xorshift at zero forever, so it is remapped to a fixed nonzero constant.
func NewRand(seed int64) *Rand {
	s := uint64(seed)
	if s == 0 {
		s = 0x9E3779B97F4A7C15
	}
	return &Rand{state: s}
}

// next advances the generator (xorshift64*).
func (r *Rand) next() uint64 {
	r.state ^= r.state >> 12
	r.state ^= r.state << 25
	r.state ^= r.state >> 27
	return r.state * 0x2545F4914F6CDD1D
}

// Float64 returns a value in [0,1) using the top 53 bits.
func (r *Rand) Float64() float64 {
	return float64(r.next()>>11) / (1 << 53)
}

// Range returns a value in [-limit, +limit).
func (r *Rand) Range(limit float64) float64 {
	return (r.Float64()*2 - 1) * limit
}

// NewSeed draws a fresh session seed from the OS entropy pool. Only the
// per-hit sequence must be deterministic, not the seed itself.
func NewSeed() int64 {
	var b [8]byte
	rand.Read(b[:])
	return int64(binary.LittleEndian.Uint64(b[:]))
}
