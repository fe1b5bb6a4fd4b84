package testutil

import (
	"math"
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Bytes returns n pseudo-random bytes.
func (r *RNG) Bytes(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := make([]byte, n)
	_, _ = r.rand.Read(b)
	return b
}

// Chunks splits total into sizes uniformly drawn from [1, maxChunk].
// The sizes sum to total.
func (r *RNG) Chunks(total, maxChunk int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sizes []int
	for total > 0 {
		n := min(1+r.rand.Intn(maxChunk), total)
		sizes = append(sizes, n)
		total -= n
	}
	return sizes
}

// ZipfChunks splits total into sizes in [1, maxChunk] where small sizes
// dominate. s is the skew; larger values favor smaller chunks.
func (r *RNG) ZipfChunks(total, maxChunk int, s float64) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sizes []int
	for total > 0 {
		n := min(1+r.zipfLocked(maxChunk, s), total)
		sizes = append(sizes, n)
		total -= n
	}
	return sizes
}

// Zipf returns a Zipfian-distributed value in [0, n).
// Uses Zipf's law: P(k) ∝ 1/k^s where s is the skew parameter.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	// Compute normalization constant (harmonic number with exponent s)
	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	// Sample from uniform and use inverse transform
	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1 // 0-indexed
		}
	}

	return n - 1
}

// Split cuts data into consecutive slices of the given sizes.
// It panics if the sizes do not sum to len(data).
func Split(data []byte, sizes []int) [][]byte {
	out := make([][]byte, 0, len(sizes))
	for _, n := range sizes {
		out = append(out, data[:n])
		data = data[n:]
	}
	if len(data) != 0 {
		panic("testutil: chunk sizes do not cover data")
	}
	return out
}
