package interview

// HashSeed hashes s with djb2 into an unsigned 32-bit seed. The same
// text always produces the same seed, which makes fallback question
// selection reproducible for a given resume and session id.
func HashSeed(s string) uint32 {
	h := uint32(5381)
	for i := 0; i < len(s); i++ {
		h = h*33 + uint32(s[i])
	}
	return h
}

// Rand is a deterministic mulberry32 stream of floats in [0,1).
// Identical seeds yield identical streams.
type Rand struct {
	state uint32
}

// NewRand returns a stream seeded with seed.
func NewRand(seed uint32) *Rand {
	return &Rand{state: seed}
}

// Float64 advances the stream and returns the next value in [0,1).
func (r *Rand) Float64() float64 {
	r.state += 0x6D2B79F5
	z := r.state
	z = (z ^ (z >> 15)) * (z | 1)
	z ^= z + (z^(z>>7))*(z|61)
	z ^= z >> 14
	return float64(z) / 4294967296
}

// Pick returns a uniformly chosen element of items.
func (r *Rand) Pick(items []string) string {
	return items[int(r.Float64()*float64(len(items)))]
}

// Shuffle permutes items in place with a Fisher-Yates walk over the
// stream.
func (r *Rand) Shuffle(items []string) {
	for i := len(items) - 1; i > 0; i-- {
		j := int(r.Float64() * float64(i+1))
		items[i], items[j] = items[j], items[i]
	}
}
