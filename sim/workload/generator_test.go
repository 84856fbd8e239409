package workload

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleet-sim/fleet-sim/sim"
)

func TestRateGenerator_WholeRateEmitsEveryTick(t *testing.T) {
	// 120 per minute means exactly two requests per tick, no randomness
	// involved in the count
	cfg := Config{Rate: 120, Width: 100, Height: 100}
	g := NewRateGenerator(cfg, rand.New(rand.NewSource(1)))

	for now := int64(0); now < 10; now++ {
		reqs := g.MaybeGenerate(now)
		require.Len(t, reqs, 2, "tick %d", now)
		for _, req := range reqs {
			assert.Equal(t, sim.RequestWaiting, req.Status)
			assert.Equal(t, now, req.CreationTime)
			assert.LessOrEqual(t, req.Pickup.X, 100.0)
			assert.GreaterOrEqual(t, req.Pickup.Y, 0.0)
		}
	}
}

func TestRateGenerator_SequentialUniqueIDs(t *testing.T) {
	cfg := Config{Rate: 180, Width: 10, Height: 10}
	g := NewRateGenerator(cfg, rand.New(rand.NewSource(2)))

	var next int64 = 1
	for now := int64(0); now < 20; now++ {
		for _, req := range g.MaybeGenerate(now) {
			assert.Equal(t, next, req.ID)
			next++
		}
	}
}

func TestRateGenerator_ZeroRateEmitsNothing(t *testing.T) {
	g := NewRateGenerator(Config{Rate: 0, Width: 10, Height: 10}, rand.New(rand.NewSource(3)))
	for now := int64(0); now < 100; now++ {
		assert.Empty(t, g.MaybeGenerate(now))
	}
}

func TestRateGenerator_FractionalRateAveragesOut(t *testing.T) {
	// 30 per minute is 0.5 per tick; over many ticks roughly half emit
	cfg := Config{Rate: 30, Width: 10, Height: 10}
	g := NewRateGenerator(cfg, rand.New(rand.NewSource(4)))

	total := 0
	const ticks = 10000
	for now := int64(0); now < ticks; now++ {
		total += len(g.MaybeGenerate(now))
	}
	assert.InDelta(t, ticks/2, total, ticks/20)
}

func TestRateGenerator_Deterministic(t *testing.T) {
	cfg := Config{Rate: 45, Width: 50, Height: 50}
	a := NewRateGenerator(cfg, rand.New(rand.NewSource(42)))
	b := NewRateGenerator(cfg, rand.New(rand.NewSource(42)))

	for now := int64(0); now < 200; now++ {
		ra, rb := a.MaybeGenerate(now), b.MaybeGenerate(now)
		require.Equal(t, len(ra), len(rb))
		for i := range ra {
			assert.Equal(t, ra[i].ID, rb[i].ID)
			assert.Equal(t, ra[i].Pickup, rb[i].Pickup)
			assert.Equal(t, ra[i].Dropoff, rb[i].Dropoff)
		}
	}
}

func TestConfig_RushHourWindowMultipliesRate(t *testing.T) {
	cfg := Config{Rate: 60, RushHourFrom: 100, RushHourUntil: 200, RushHourFactor: 3}

	assert.Equal(t, 60.0, cfg.effectiveRate(99))
	assert.Equal(t, 180.0, cfg.effectiveRate(100))
	assert.Equal(t, 180.0, cfg.effectiveRate(199))
	assert.Equal(t, 60.0, cfg.effectiveRate(200), "window end is exclusive")
}

func TestConfig_RushHourDisabledByZeroWindow(t *testing.T) {
	cfg := Config{Rate: 60, RushHourFactor: 5}
	assert.Equal(t, 60.0, cfg.effectiveRate(0))
}

func TestPoissonGenerator_Deterministic(t *testing.T) {
	cfg := Config{Rate: 90, Width: 20, Height: 20}
	a := NewPoissonGenerator(cfg, rand.New(rand.NewSource(9)))
	b := NewPoissonGenerator(cfg, rand.New(rand.NewSource(9)))

	for now := int64(0); now < 500; now++ {
		ra, rb := a.MaybeGenerate(now), b.MaybeGenerate(now)
		require.Equal(t, len(ra), len(rb), "tick %d", now)
		for i := range ra {
			assert.Equal(t, ra[i].Pickup, rb[i].Pickup)
		}
	}
}

func TestPoissonGenerator_LongRunRateMatchesConfig(t *testing.T) {
	// 60 per minute is one per tick on average; IATs are floored at one
	// tick so the realized count lands a bit under the nominal rate
	cfg := Config{Rate: 60, Width: 20, Height: 20}
	g := NewPoissonGenerator(cfg, rand.New(rand.NewSource(11)))

	total := 0
	const ticks = 5000
	for now := int64(0); now < ticks; now++ {
		total += len(g.MaybeGenerate(now))
	}
	assert.Greater(t, total, ticks/2)
	assert.LessOrEqual(t, total, ticks)
}

func TestPoissonGenerator_ZeroRateNeverEmits(t *testing.T) {
	g := NewPoissonGenerator(Config{Rate: 0, Width: 10, Height: 10}, rand.New(rand.NewSource(5)))
	for now := int64(0); now < 100; now++ {
		assert.Empty(t, g.MaybeGenerate(now))
	}
}

func TestNewGenerator_Factory(t *testing.T) {
	cfg := Config{Rate: 10, Width: 1, Height: 1}
	rng := rand.New(rand.NewSource(1))

	g, err := NewGenerator("", cfg, rng)
	require.NoError(t, err)
	assert.IsType(t, &RateGenerator{}, g, "empty name defaults to rate")

	g, err = NewGenerator("poisson", cfg, rng)
	require.NoError(t, err)
	assert.IsType(t, &PoissonGenerator{}, g)

	_, err = NewGenerator("bursty", cfg, rng)
	assert.Error(t, err)

	assert.True(t, IsValidGenerator("rate"))
	assert.False(t, IsValidGenerator("bursty"))
}
