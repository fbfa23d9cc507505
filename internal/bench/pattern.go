package bench

import (
	"math/rand"
	"time"

	"shardkv/internal/config"
)

// Emulated traffic shapes. The waits model client think time between
// operations; unthrottled issues operations back to back.
const (
	// Chance that a bursty worker takes a long pause.
	burstyLongWaitChance = 0.05

	burstyLongWaitMin = 60 * time.Millisecond
	burstyLongWaitMax = 200 * time.Millisecond

	burstyShortWaitMin = 10 * time.Microsecond
	burstyShortWaitMax = 20 * time.Microsecond

	consistentWaitMin = 1 * time.Microsecond
	consistentWaitMax = 20 * time.Microsecond
)

// Pattern is a traffic shape. The zero value is unthrottled.
type Pattern int

const (
	Unthrottled Pattern = iota
	Consistent
	Bursty
)

// PatternFromName maps a validated config pattern name.
func PatternFromName(name string) Pattern {
	switch name {
	case config.PatternBursty:
		return Bursty
	case config.PatternConsistent:
		return Consistent
	default:
		return Unthrottled
	}
}

func (p Pattern) String() string {
	switch p {
	case Bursty:
		return config.PatternBursty
	case Consistent:
		return config.PatternConsistent
	default:
		return config.PatternUnthrottled
	}
}

// wait sleeps for the pattern's think time using the worker's private
// rng.
func (p Pattern) wait(rng *rand.Rand) {
	switch p {
	case Bursty:
		if rng.Float64() < burstyLongWaitChance {
			time.Sleep(randDuration(rng, burstyLongWaitMin, burstyLongWaitMax))
		} else {
			time.Sleep(randDuration(rng, burstyShortWaitMin, burstyShortWaitMax))
		}
	case Consistent:
		time.Sleep(randDuration(rng, consistentWaitMin, consistentWaitMax))
	case Unthrottled:
	}
}

func randDuration(rng *rand.Rand, min, max time.Duration) time.Duration {
	return min + time.Duration(rng.Int63n(int64(max-min)))
}
