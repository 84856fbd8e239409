// Dispatch policies propose candidate driver/request pairs each tick.
// Policies never mutate entity state and may propose the same driver or
// request more than once; the engine's finalize stage resolves conflicts.

package sim

import (
	"fmt"
	"sort"
)

// Proposal is a candidate pairing emitted by a dispatch policy. It is
// not an assignment; the engine still runs the offer/decide and
// conflict-resolution stages over it.
type Proposal struct {
	DriverID  int64
	RequestID int64
}

// DispatchPolicy proposes candidate (driver, request) pairs for the
// current tick. The engine passes idle drivers and unexpired WAITING
// requests in stable arena order, which the policies rely on for
// deterministic tie-breaking.
type DispatchPolicy interface {
	Assign(drivers []*Driver, requests []*Request, now int64) []Proposal
	Name() string
}

// NearestNeighborPolicy repeatedly scans all idle drivers against all
// waiting requests, selects the globally closest pair by pickup
// distance, removes both from consideration, and repeats until no pair
// remains. Ties are broken by the first pair found in scan order.
type NearestNeighborPolicy struct{}

func (p *NearestNeighborPolicy) Assign(drivers []*Driver, requests []*Request, _ int64) []Proposal {
	idle := make([]*Driver, 0, len(drivers))
	for _, d := range drivers {
		if d.Status == DriverIdle {
			idle = append(idle, d)
		}
	}
	waiting := make([]*Request, 0, len(requests))
	for _, r := range requests {
		if r.Status == RequestWaiting {
			waiting = append(waiting, r)
		}
	}

	var matches []Proposal
	for len(idle) > 0 && len(waiting) > 0 {
		bestDriver, bestRequest := -1, -1
		bestDistance := 0.0
		for i, d := range idle {
			for j, r := range waiting {
				distance := d.Position.DistanceTo(r.Pickup)
				// strict < keeps the first pair found on ties
				if bestDriver < 0 || distance < bestDistance {
					bestDistance = distance
					bestDriver, bestRequest = i, j
				}
			}
		}
		if bestDriver < 0 {
			break
		}
		matches = append(matches, Proposal{
			DriverID:  idle[bestDriver].ID,
			RequestID: waiting[bestRequest].ID,
		})
		idle = append(idle[:bestDriver], idle[bestDriver+1:]...)
		waiting = append(waiting[:bestRequest], waiting[bestRequest+1:]...)
	}
	return matches
}

func (p *NearestNeighborPolicy) Name() string { return "nearest-neighbor" }

// GlobalGreedyPolicy computes the full cross product of idle drivers and
// requests, sorts every triple ascending by (distance, driverID,
// requestID), then sweeps the sorted list once, accepting pairs whose
// driver and request are both still unused.
//
// This is a single sort-and-sweep, not iterative reselection: when
// distances tie, or when removing one match changes which pair is
// locally nearest, the result can differ from NearestNeighborPolicy.
type GlobalGreedyPolicy struct{}

func (p *GlobalGreedyPolicy) Assign(drivers []*Driver, requests []*Request, _ int64) []Proposal {
	type combo struct {
		distance  float64
		driverID  int64
		requestID int64
	}

	var combos []combo
	for _, d := range drivers {
		if d.Status != DriverIdle {
			continue
		}
		for _, r := range requests {
			combos = append(combos, combo{
				distance:  d.Position.DistanceTo(r.Pickup),
				driverID:  d.ID,
				requestID: r.ID,
			})
		}
	}

	// explicit ID tie-breaks keep the matching reproducible across runs
	sort.Slice(combos, func(i, j int) bool {
		if combos[i].distance != combos[j].distance {
			return combos[i].distance < combos[j].distance
		}
		if combos[i].driverID != combos[j].driverID {
			return combos[i].driverID < combos[j].driverID
		}
		return combos[i].requestID < combos[j].requestID
	})

	usedDrivers := make(map[int64]bool)
	usedRequests := make(map[int64]bool)
	var matches []Proposal
	for _, c := range combos {
		if usedDrivers[c.driverID] || usedRequests[c.requestID] {
			continue
		}
		matches = append(matches, Proposal{DriverID: c.driverID, RequestID: c.requestID})
		usedDrivers[c.driverID] = true
		usedRequests[c.requestID] = true
	}
	return matches
}

func (p *GlobalGreedyPolicy) Name() string { return "global-greedy" }

// validDispatchPolicies maps accepted dispatch policy names.
var validDispatchPolicies = map[string]bool{
	"":                 true, // empty defaults to nearest-neighbor
	"nearest-neighbor": true,
	"global-greedy":    true,
}

// IsValidDispatchPolicy returns true if name is a recognized policy.
func IsValidDispatchPolicy(name string) bool {
	return validDispatchPolicies[name]
}

// NewDispatchPolicy creates a dispatch policy by name.
// Empty string defaults to nearest-neighbor.
func NewDispatchPolicy(name string) (DispatchPolicy, error) {
	if !IsValidDispatchPolicy(name) {
		return nil, fmt.Errorf("unknown dispatch policy %q", name)
	}
	switch name {
	case "", "nearest-neighbor":
		return &NearestNeighborPolicy{}, nil
	case "global-greedy":
		return &GlobalGreedyPolicy{}, nil
	default:
		return nil, fmt.Errorf("unhandled dispatch policy %q", name)
	}
}
