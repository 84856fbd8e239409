package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLazyBehaviour_AcceptsOnlySufficientlyAgedRequests(t *testing.T) {
	b := &LazyBehaviour{MinWaitTime: 5}
	d := newTestDriver(t, 1, Point{0, 0}, 1)
	req, _ := NewRequest(1, Point{1, 0}, Point{2, 0}, 0)

	req.WaitTime = 4
	assert.False(t, b.Decide(d, req, Offer{}, 10))

	req.WaitTime = 5
	assert.True(t, b.Decide(d, req, Offer{}, 10))

	req.WaitTime = 9
	assert.True(t, b.Decide(d, req, Offer{}, 10))
}

func TestLazyBehaviour_RejectsWhileBusy(t *testing.T) {
	b := &LazyBehaviour{MinWaitTime: 0}
	d := newTestDriver(t, 1, Point{0, 0}, 1)
	current, _ := NewRequest(1, Point{1, 0}, Point{2, 0}, 0)
	require.NoError(t, d.AssignRequest(current, 0, 0))

	offered, _ := NewRequest(2, Point{1, 1}, Point{2, 2}, 0)
	offered.WaitTime = 100
	assert.False(t, b.Decide(d, offered, Offer{}, 0))
}

func TestGreedyDistanceBehaviour_StrictBoundary(t *testing.T) {
	b := &GreedyDistanceBehaviour{MaxDistance: 5}
	d := newTestDriver(t, 1, Point{0, 0}, 1)

	near, _ := NewRequest(1, Point{3, 3.99}, Point{0, 0}, 0)
	assert.True(t, b.Decide(d, near, Offer{}, 0))

	// pickup at exactly max distance is rejected (strict inequality)
	boundary, _ := NewRequest(2, Point{3, 4}, Point{0, 0}, 0)
	assert.False(t, b.Decide(d, boundary, Offer{}, 0))

	far, _ := NewRequest(3, Point{30, 40}, Point{0, 0}, 0)
	assert.False(t, b.Decide(d, far, Offer{}, 0))
}

func TestEarningMaxBehaviour_RatioThreshold(t *testing.T) {
	b := &EarningMaxBehaviour{MinRatio: 2.0}

	accept := Offer{EstimatedTravelTime: 5, EstimatedReward: 10, HasReward: true}
	assert.True(t, b.Decide(nil, nil, accept, 0))

	reject := Offer{EstimatedTravelTime: 5, EstimatedReward: 9.9, HasReward: true}
	assert.False(t, b.Decide(nil, nil, reject, 0))
}

func TestEarningMaxBehaviour_RejectsMissingRewardAndZeroTravelTime(t *testing.T) {
	b := &EarningMaxBehaviour{MinRatio: 0.1}

	noReward := Offer{EstimatedTravelTime: 5, EstimatedReward: 100, HasReward: false}
	assert.False(t, b.Decide(nil, nil, noReward, 0))

	zeroTime := Offer{EstimatedTravelTime: 0, EstimatedReward: 100, HasReward: true}
	assert.False(t, b.Decide(nil, nil, zeroTime, 0))
}

func TestEarningMaxBehaviour_ThresholdEscalatesWithTime(t *testing.T) {
	b := &EarningMaxBehaviour{MinRatio: 1.0, EscalationRate: 0.0005}
	offer := Offer{EstimatedTravelTime: 10, EstimatedReward: 11, HasReward: true} // ratio 1.1

	assert.True(t, b.Decide(nil, nil, offer, 0))
	// at t=1000 the threshold is 1.0 * (1 + 0.5) = 1.5 > 1.1
	assert.False(t, b.Decide(nil, nil, offer, 1000))
}

func TestEarningMaxBehaviour_ZeroEscalationIsFlat(t *testing.T) {
	b := &EarningMaxBehaviour{MinRatio: 1.0, EscalationRate: 0}
	offer := Offer{EstimatedTravelTime: 10, EstimatedReward: 11, HasReward: true}

	assert.True(t, b.Decide(nil, nil, offer, 0))
	assert.True(t, b.Decide(nil, nil, offer, 1_000_000))
}

func TestNewBehaviour_FactoryNamesAndDefaults(t *testing.T) {
	b, err := NewBehaviour("", BehaviourParams{})
	require.NoError(t, err)
	lazy, ok := b.(*LazyBehaviour)
	require.True(t, ok, "empty name defaults to lazy")
	assert.Equal(t, DefaultLazyMinWait, lazy.MinWaitTime)

	b, err = NewBehaviour("greedy-distance", BehaviourParams{})
	require.NoError(t, err)
	greedy := b.(*GreedyDistanceBehaviour)
	assert.Equal(t, DefaultGreedyMaxDistance, greedy.MaxDistance)

	minRatio := 3.0
	escalation := 0.0
	b, err = NewBehaviour("earning-max", BehaviourParams{MinRatio: &minRatio, EscalationRate: &escalation})
	require.NoError(t, err)
	earning := b.(*EarningMaxBehaviour)
	assert.Equal(t, 3.0, earning.MinRatio)
	assert.Equal(t, 0.0, earning.EscalationRate)

	_, err = NewBehaviour("bogus", BehaviourParams{})
	assert.Error(t, err)
}
