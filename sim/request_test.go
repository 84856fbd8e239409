package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestStatus_Constants_HaveExpectedStringValues(t *testing.T) {
	assert.Equal(t, RequestStatus("WAITING"), RequestWaiting)
	assert.Equal(t, RequestStatus("ASSIGNED"), RequestAssigned)
	assert.Equal(t, RequestStatus("PICKED"), RequestPicked)
	assert.Equal(t, RequestStatus("DELIVERED"), RequestDelivered)
	assert.Equal(t, RequestStatus("EXPIRED"), RequestExpired)
}

func TestNewRequest_StartsWaiting(t *testing.T) {
	req, err := NewRequest(1, Point{1, 2}, Point{3, 4}, 10)
	require.NoError(t, err)
	assert.Equal(t, RequestWaiting, req.Status)
	assert.Equal(t, int64(0), req.AssignedDriver)
	assert.Equal(t, int64(0), req.WaitTime)
	assert.False(t, req.Terminal())
}

func TestNewRequest_RejectsNonFiniteCoordinates(t *testing.T) {
	_, err := NewRequest(1, Point{math.NaN(), 0}, Point{0, 0}, 0)
	assert.Error(t, err)

	_, err = NewRequest(1, Point{0, 0}, Point{0, math.Inf(1)}, 0)
	assert.Error(t, err)
}

func TestRequest_HappyPathLifecycle(t *testing.T) {
	req, err := NewRequest(7, Point{0, 0}, Point{5, 0}, 0)
	require.NoError(t, err)

	require.NoError(t, req.MarkAssigned(3))
	assert.Equal(t, RequestAssigned, req.Status)
	assert.Equal(t, int64(3), req.AssignedDriver)

	require.NoError(t, req.MarkPicked(4))
	assert.Equal(t, RequestPicked, req.Status)
	assert.Equal(t, int64(4), req.WaitTime)

	require.NoError(t, req.MarkDelivered(9))
	assert.Equal(t, RequestDelivered, req.Status)
	// delivery recomputes the wait at the delivery tick
	assert.Equal(t, int64(9), req.WaitTime)
	assert.True(t, req.Terminal())
}

func TestRequest_InvalidTransitions_ReturnErrors(t *testing.T) {
	req, _ := NewRequest(1, Point{0, 0}, Point{1, 1}, 0)

	// cannot pick or deliver a WAITING request
	assert.Error(t, req.MarkPicked(1))
	assert.Error(t, req.MarkDelivered(1))

	require.NoError(t, req.MarkAssigned(1))
	// cannot re-assign or expire once assigned
	assert.Error(t, req.MarkAssigned(2))
	assert.Error(t, req.MarkExpired(1))
	assert.Equal(t, int64(1), req.AssignedDriver, "failed transition must not corrupt state")

	require.NoError(t, req.MarkPicked(2))
	require.NoError(t, req.MarkDelivered(3))
	// terminal requests reject everything
	assert.Error(t, req.MarkAssigned(1))
	assert.Error(t, req.MarkPicked(4))
	assert.Error(t, req.MarkDelivered(5))
	assert.Error(t, req.MarkExpired(6))
}

func TestRequest_ExpiryIsIrreversibleAndSingular(t *testing.T) {
	req, _ := NewRequest(1, Point{0, 0}, Point{1, 1}, 0)
	require.NoError(t, req.MarkExpired(6))
	assert.Equal(t, RequestExpired, req.Status)
	assert.Equal(t, int64(6), req.WaitTime)

	assert.Error(t, req.MarkExpired(7), "a request can expire at most once")
	assert.Error(t, req.MarkAssigned(1))
}

func TestRequest_UpdateWait_TracksClock(t *testing.T) {
	req, _ := NewRequest(1, Point{0, 0}, Point{1, 1}, 10)
	req.UpdateWait(14)
	assert.Equal(t, int64(4), req.WaitTime)
}
