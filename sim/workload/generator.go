// Package workload provides request generators for the simulation
// engine. Generators implement sim.RequestGenerator and draw all
// randomness from an injected *rand.Rand so runs stay reproducible.
package workload

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/fleet-sim/fleet-sim/sim"
)

// Config holds the shared generator parameters.
type Config struct {
	// Rate is the arrival rate in requests per minute (60 ticks).
	Rate float64
	// Width and Height bound the uniform pickup/dropoff sampling area.
	Width  float64
	Height float64
	// RushHourFrom/Until bound an optional surge window during which the
	// rate is multiplied by RushHourFactor. A zero Until disables the
	// window.
	RushHourFrom   int64
	RushHourUntil  int64
	RushHourFactor float64
}

// effectiveRate applies the rush-hour window to the base rate.
func (c Config) effectiveRate(now int64) float64 {
	rate := c.Rate
	if c.RushHourUntil > c.RushHourFrom && now >= c.RushHourFrom && now < c.RushHourUntil {
		factor := c.RushHourFactor
		if factor <= 0 {
			factor = 1
		}
		rate *= factor
	}
	return rate
}

// RateGenerator emits requests at a fixed per-minute rate. Each tick it
// produces floor(rate/60) requests plus one more with probability equal
// to the fractional remainder, so the long-run average matches the
// configured rate.
type RateGenerator struct {
	cfg    Config
	rng    *rand.Rand
	nextID int64
}

// NewRateGenerator creates a rate-based generator. IDs are sequential
// starting at 1.
func NewRateGenerator(cfg Config, rng *rand.Rand) *RateGenerator {
	return &RateGenerator{cfg: cfg, rng: rng, nextID: 1}
}

// MaybeGenerate implements sim.RequestGenerator.
func (g *RateGenerator) MaybeGenerate(now int64) []*sim.Request {
	rate := g.cfg.effectiveRate(now)
	if rate <= 0 {
		return nil
	}

	perTick := rate / 60.0
	count := int(perTick)
	if g.rng.Float64() < perTick-float64(count) {
		count++
	}

	var requests []*sim.Request
	for i := 0; i < count; i++ {
		req := g.sample(now)
		if req == nil {
			continue
		}
		requests = append(requests, req)
	}
	return requests
}

func (g *RateGenerator) sample(now int64) *sim.Request {
	pickup := sim.Point{X: g.rng.Float64() * g.cfg.Width, Y: g.rng.Float64() * g.cfg.Height}
	dropoff := sim.Point{X: g.rng.Float64() * g.cfg.Width, Y: g.rng.Float64() * g.cfg.Height}
	req, err := sim.NewRequest(g.nextID, pickup, dropoff, now)
	if err != nil {
		logrus.Warnf("request construction failed at tick %d: %v", now, err)
		return nil
	}
	g.nextID++
	return req
}

// PoissonGenerator emits requests as a Poisson process: exponential
// inter-arrival times with a mean matching the configured rate. Arrival
// ticks are pre-drawn lazily; every request whose arrival tick has been
// reached is released on the next MaybeGenerate call.
type PoissonGenerator struct {
	cfg         Config
	rng         *rand.Rand
	nextID      int64
	nextArrival int64
}

// NewPoissonGenerator creates a Poisson-process generator.
func NewPoissonGenerator(cfg Config, rng *rand.Rand) *PoissonGenerator {
	g := &PoissonGenerator{cfg: cfg, rng: rng, nextID: 1}
	g.nextArrival = g.sampleIAT(0)
	return g
}

// sampleIAT returns the next inter-arrival time in ticks, always >= 1.
func (g *PoissonGenerator) sampleIAT(now int64) int64 {
	rate := g.cfg.effectiveRate(now)
	if rate <= 0 {
		return math.MaxInt64 // no arrivals while the rate is zero
	}
	ratePerTick := rate / 60.0
	iat := int64(g.rng.ExpFloat64() / ratePerTick)
	if iat < 1 {
		return 1
	}
	return iat
}

// MaybeGenerate implements sim.RequestGenerator.
func (g *PoissonGenerator) MaybeGenerate(now int64) []*sim.Request {
	var requests []*sim.Request
	for g.nextArrival <= now {
		pickup := sim.Point{X: g.rng.Float64() * g.cfg.Width, Y: g.rng.Float64() * g.cfg.Height}
		dropoff := sim.Point{X: g.rng.Float64() * g.cfg.Width, Y: g.rng.Float64() * g.cfg.Height}
		req, err := sim.NewRequest(g.nextID, pickup, dropoff, now)
		if err != nil {
			logrus.Warnf("request construction failed at tick %d: %v", now, err)
		} else {
			g.nextID++
			requests = append(requests, req)
		}
		g.nextArrival += g.sampleIAT(now)
	}
	return requests
}

// validGenerators maps accepted generator names.
var validGenerators = map[string]bool{
	"":        true, // empty defaults to rate
	"rate":    true,
	"poisson": true,
}

// IsValidGenerator returns true if name is a recognized generator.
func IsValidGenerator(name string) bool {
	return validGenerators[name]
}

// NewGenerator creates a request generator by name.
// Empty string defaults to the rate generator.
func NewGenerator(name string, cfg Config, rng *rand.Rand) (sim.RequestGenerator, error) {
	if !IsValidGenerator(name) {
		return nil, fmt.Errorf("unknown request generator %q", name)
	}
	switch name {
	case "", "rate":
		return NewRateGenerator(cfg, rng), nil
	case "poisson":
		return NewPoissonGenerator(cfg, rng), nil
	default:
		return nil, fmt.Errorf("unhandled request generator %q", name)
	}
}
