// Package random provides the seedable random source used for result diversity.
package random

import (
	"math/rand"
	"sync"
	"time"
)

// Source is the subset of *rand.Rand the recommendation pipeline draws from.
type Source interface {
	Intn(n int) int
	Float64() float64
}

// Locked is a Source safe for use by concurrent requests.
type Locked struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Locked source seeded with seed.
func New(seed int64) *Locked {
	//nolint:gosec // math/rand is fine for recommendation shuffling
	return &Locked{rng: rand.New(rand.NewSource(seed))}
}

// NewFromTime returns a Locked source seeded from the wall clock.
func NewFromTime() *Locked {
	return New(time.Now().UnixNano())
}

// Intn returns a non-negative pseudo-random int in [0,n). It panics if n <= 0.
func (l *Locked) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Intn(n)
}

// Float64 returns a pseudo-random float64 in [0.0,1.0).
func (l *Locked) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Float64()
}

var _ Source = (*Locked)(nil)
