package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sync"
	"time"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_roller.go github.com/KirkDiggler/taleforge/internal/dice Roller

// Roller provides dice rolling functionality
type Roller interface {
	// Roll returns a value in [1, sides]
	Roll(sides int) int
}

// RandomRoller is a Roller backed by math/rand, safe for concurrent use
type RandomRoller struct {
	mu     sync.Mutex
	random *rand.Rand
}

// Config for dice roller
type Config struct {
	// Optional seed for testing
	Seed int64
}

// New creates a new dice roller
func New(cfg *Config) *RandomRoller {
	var seed int64
	if cfg != nil && cfg.Seed != 0 {
		seed = cfg.Seed
	} else {
		seed = newSeed()
	}

	source := rand.NewSource(seed)
	random := rand.New(source)

	return &RandomRoller{
		random: random,
	}
}

// Roll generates a random dice roll with the specified number of sides
func (r *RandomRoller) Roll(sides int) int {
	if sides < 1 {
		sides = 6 // Default to 6-sided die
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.random.Intn(sides) + 1
}

// RollMany rolls count dice of the given size and returns the individual results
func RollMany(r Roller, count, sides int) []int {
	rolls := make([]int, 0, count)
	for i := 0; i < count; i++ {
		rolls = append(rolls, r.Roll(sides))
	}
	return rolls
}

// Sum adds up a set of rolls
func Sum(rolls []int) int {
	total := 0
	for _, v := range rolls {
		total += v
	}
	return total
}

// newSeed prefers crypto/rand and falls back to the wall clock
func newSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}
