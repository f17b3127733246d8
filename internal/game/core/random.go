package core

import "math/rand/v2"

// Random is the state's deterministic random source. It is advanced only by
// explicit draws and copies by value, so forked states draw identical sequences.
type Random struct {
	src  rand.PCG
	seed uint64
}

func NewRandom(seed uint64) *Random {
	r := &Random{seed: seed}
	r.src.Seed(seed, seed^0x9e3779b97f4a7c15)
	return r
}

// Seed returns the seed the source was created with.
func (r *Random) Seed() uint64 { return r.seed }

// IntN returns a uniform value in [0, n). It panics if n <= 0, like math/rand.
func (r *Random) IntN(n int) int {
	return rand.New(&r.src).IntN(n)
}

// Roll returns a die face in [0, sides).
func (r *Random) Roll(sides int) int { return r.IntN(sides) }

func (r *Random) Shuffle(n int, swap func(i, j int)) {
	rand.New(&r.src).Shuffle(n, swap)
}

func (r *Random) copy() *Random {
	c := *r
	return &c
}

func (r *Random) hashInto(h *Hasher) {
	b, _ := r.src.MarshalBinary()
	h.Bytes(b)
}
