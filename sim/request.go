// Defines the Request struct that models a single delivery order in the
// simulation. Tracks pickup/dropoff locations, creation time, lifecycle
// status, the assigned driver, and accumulated waiting time.

package sim

import (
	"fmt"
)

// RequestStatus represents the lifecycle state of a request.
//
// Valid transitions form a prefix of
// WAITING → ASSIGNED → PICKED → DELIVERED, or WAITING → EXPIRED.
// DELIVERED and EXPIRED are terminal.
type RequestStatus string

const (
	RequestWaiting   RequestStatus = "WAITING"
	RequestAssigned  RequestStatus = "ASSIGNED"
	RequestPicked    RequestStatus = "PICKED"
	RequestDelivered RequestStatus = "DELIVERED"
	RequestExpired   RequestStatus = "EXPIRED"
)

// Request models a single customer order. Requests are created by a
// request generator (or seeded by the caller) and mutated only by the
// engine through the Mark* transitions below. They are never removed
// from the engine's arena; completed and expired requests stay in
// history and are filtered by status for active views.
type Request struct {
	ID           int64
	Pickup       Point
	Dropoff      Point
	CreationTime int64

	Status RequestStatus

	// AssignedDriver is the ID of the driver currently responsible for
	// this request; 0 means unassigned. Stored as an ID rather than a
	// pointer so the engine arenas own all entity references.
	AssignedDriver int64

	// WaitTime is current_time - CreationTime while the request is
	// WAITING or ASSIGNED. It freezes on entry to PICKED and EXPIRED,
	// and is recomputed once more at delivery (the delivery-time wait is
	// the one used for reward accounting and statistics).
	WaitTime int64
}

// NewRequest constructs a WAITING request. Non-finite pickup or dropoff
// coordinates are rejected up front.
func NewRequest(id int64, pickup, dropoff Point, creationTime int64) (*Request, error) {
	if !pickup.Valid() {
		return nil, fmt.Errorf("request %d: pickup %v has non-finite coordinates", id, pickup)
	}
	if !dropoff.Valid() {
		return nil, fmt.Errorf("request %d: dropoff %v has non-finite coordinates", id, dropoff)
	}
	return &Request{
		ID:           id,
		Pickup:       pickup,
		Dropoff:      dropoff,
		CreationTime: creationTime,
		Status:       RequestWaiting,
	}, nil
}

// Terminal reports whether the request has reached a terminal status.
func (r *Request) Terminal() bool {
	return r.Status == RequestDelivered || r.Status == RequestExpired
}

// MarkAssigned transitions WAITING → ASSIGNED and records the driver.
// Any other source status is an error surfaced to the caller, never
// silently corrected.
func (r *Request) MarkAssigned(driverID int64) error {
	if r.Status != RequestWaiting {
		return fmt.Errorf("request %d: cannot assign from status %s", r.ID, r.Status)
	}
	r.Status = RequestAssigned
	r.AssignedDriver = driverID
	return nil
}

// MarkPicked transitions ASSIGNED → PICKED and freezes the wait time at
// the pickup tick.
func (r *Request) MarkPicked(now int64) error {
	if r.Status != RequestAssigned {
		return fmt.Errorf("request %d: cannot pick from status %s", r.ID, r.Status)
	}
	r.Status = RequestPicked
	r.WaitTime = now - r.CreationTime
	return nil
}

// MarkDelivered transitions PICKED → DELIVERED. The wait time is
// recomputed at the delivery tick; it can differ from the pickup-time
// wait and is the value fed into the engine's wait statistics.
func (r *Request) MarkDelivered(now int64) error {
	if r.Status != RequestPicked {
		return fmt.Errorf("request %d: cannot deliver from status %s", r.ID, r.Status)
	}
	r.Status = RequestDelivered
	r.WaitTime = now - r.CreationTime
	return nil
}

// MarkExpired transitions WAITING → EXPIRED. Expiry is irreversible and
// happens at most once per request.
func (r *Request) MarkExpired(now int64) error {
	if r.Status != RequestWaiting {
		return fmt.Errorf("request %d: cannot expire from status %s", r.ID, r.Status)
	}
	r.Status = RequestExpired
	r.WaitTime = now - r.CreationTime
	return nil
}

// UpdateWait recomputes the wait time against the current clock. Only
// meaningful while the request is non-terminal; the engine calls it for
// WAITING requests during the lifecycle-update stage.
func (r *Request) UpdateWait(now int64) {
	r.WaitTime = now - r.CreationTime
}

// String returns a human-readable representation of the request.
func (r *Request) String() string {
	return fmt.Sprintf("Request(ID: %d, Status: %s, Pickup: %v, Wait: %d)", r.ID, r.Status, r.Pickup, r.WaitTime)
}
