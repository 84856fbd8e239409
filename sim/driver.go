// Defines the Driver agent: position, movement toward the current target,
// acceptance behaviour, and the append-only trip history used by
// performance-based mutation and end-of-run reporting.

package sim

import (
	"fmt"
)

// ArrivalEpsilon is the distance below which the engine considers a
// driver to have reached its target.
const ArrivalEpsilon = 1e-6

// DriverStatus represents the lifecycle state of a driver.
// The cycle is IDLE → TO_PICKUP → TO_DROPOFF → IDLE.
type DriverStatus string

const (
	DriverIdle      DriverStatus = "IDLE"
	DriverToPickup  DriverStatus = "TO_PICKUP"
	DriverToDropoff DriverStatus = "TO_DROPOFF"
)

// TripRecord captures one completed delivery. Records are appended to
// the driver's history exactly once, on dropoff completion.
type TripRecord struct {
	DriverID       int64
	RequestID      int64
	CompletionTime int64
	Earnings       float64
	TotalDistance  float64
}

// Driver is an agent that moves across the map and serves requests.
//
// Cross-references to requests are by ID, resolved through the engine's
// arena at use time; the driver never holds a *Request. The invariant
// CurrentRequest != 0 iff Status != IDLE is maintained by AssignRequest
// and CompleteDropoff, and a driver holds at most one request at a time.
type Driver struct {
	ID        int64
	Position  Point
	Speed     float64
	Behaviour DriverBehaviour
	Status    DriverStatus

	// CurrentRequest is the ID of the request being served; 0 when idle.
	CurrentRequest int64

	// positionAtAssignment is the baseline for trip-distance accounting,
	// captured when the request is assigned.
	positionAtAssignment *Point
	assignedReward       float64

	History []TripRecord
}

// NewDriver constructs an idle driver. Non-finite starting coordinates
// and non-positive speeds are rejected up front.
func NewDriver(id int64, position Point, speed float64, behaviour DriverBehaviour) (*Driver, error) {
	if !position.Valid() {
		return nil, fmt.Errorf("driver %d: position %v has non-finite coordinates", id, position)
	}
	if !(speed > 0) {
		return nil, fmt.Errorf("driver %d: speed must be positive, got %v", id, speed)
	}
	return &Driver{
		ID:        id,
		Position:  position,
		Speed:     speed,
		Behaviour: behaviour,
		Status:    DriverIdle,
	}, nil
}

// AssignRequest binds a WAITING request to an idle driver. It captures
// the assignment-position baseline, stores the offer's reward for later
// earnings accounting, transitions the driver to TO_PICKUP, and marks
// the request assigned.
func (d *Driver) AssignRequest(req *Request, reward float64, now int64) error {
	if d.Status != DriverIdle {
		return fmt.Errorf("driver %d: cannot accept assignment while %s", d.ID, d.Status)
	}
	if err := req.MarkAssigned(d.ID); err != nil {
		return err
	}
	pos := d.Position
	d.positionAtAssignment = &pos
	d.CurrentRequest = req.ID
	d.assignedReward = reward
	d.Status = DriverToPickup
	return nil
}

// Target returns the driver's current navigation target given its
// resolved request: pickup while TO_PICKUP, dropoff while TO_DROPOFF.
// The second return is false when the driver has no target (idle, or the
// resolved request does not match).
func (d *Driver) Target(req *Request) (Point, bool) {
	if req == nil || d.CurrentRequest == 0 || req.ID != d.CurrentRequest {
		return Point{}, false
	}
	switch d.Status {
	case DriverToPickup:
		return req.Pickup, true
	case DriverToDropoff:
		return req.Dropoff, true
	default:
		return Point{}, false
	}
}

// Step moves the driver toward target for one time slice of length dt.
// If the remaining distance is within reach it snaps exactly to the
// target, preventing overshoot; otherwise it advances Speed*dt along the
// unit vector toward the target.
func (d *Driver) Step(dt float64, target Point) {
	distance := d.Position.DistanceTo(target)
	movement := d.Speed * dt
	if distance <= movement {
		d.Position = target
		return
	}
	direction := target.Sub(d.Position)
	d.Position = d.Position.Add(direction.Scale(movement / distance))
}

// CompletePickup finishes the pickup and turns the driver toward the
// dropoff. Valid only while TO_PICKUP with a matching current request.
func (d *Driver) CompletePickup(req *Request, now int64) error {
	if d.Status != DriverToPickup || req == nil || req.ID != d.CurrentRequest {
		return fmt.Errorf("driver %d: cannot complete pickup while %s", d.ID, d.Status)
	}
	if err := req.MarkPicked(now); err != nil {
		return err
	}
	d.Status = DriverToDropoff
	return nil
}

// CompleteDropoff finishes the delivery: the request is marked delivered,
// a TripRecord is appended with earnings equal to the assigned reward and
// total distance measured from the assignment baseline through the pickup
// to the dropoff, and the driver resets to IDLE.
func (d *Driver) CompleteDropoff(req *Request, now int64) (TripRecord, error) {
	if d.Status != DriverToDropoff || req == nil || req.ID != d.CurrentRequest || d.positionAtAssignment == nil {
		return TripRecord{}, fmt.Errorf("driver %d: cannot complete dropoff while %s", d.ID, d.Status)
	}
	if err := req.MarkDelivered(now); err != nil {
		return TripRecord{}, err
	}

	toPickup := d.positionAtAssignment.DistanceTo(req.Pickup)
	pickupToDropoff := req.Pickup.DistanceTo(req.Dropoff)

	record := TripRecord{
		DriverID:       d.ID,
		RequestID:      req.ID,
		CompletionTime: now,
		Earnings:       d.assignedReward,
		TotalDistance:  toPickup + pickupToDropoff,
	}
	d.History = append(d.History, record)

	d.CurrentRequest = 0
	d.Status = DriverIdle
	d.positionAtAssignment = nil
	d.assignedReward = 0
	return record, nil
}

// String returns a human-readable representation of the driver.
func (d *Driver) String() string {
	return fmt.Sprintf("Driver(ID: %d, Status: %s, Position: %v)", d.ID, d.Status, d.Position)
}
