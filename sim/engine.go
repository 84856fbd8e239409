// sim/engine.go
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fleet-sim/fleet-sim/sim/trace"
)

// RewardModel prices a trip for the offer stage:
// reward = Base + PerDistance * (distance to pickup + pickup to dropoff).
type RewardModel struct {
	Base        float64
	PerDistance float64
}

// Engine is the core object that owns the clock, the driver and request
// arenas, and the per-tick orchestration pipeline. It is the single root
// of mutation: all entity transitions happen through engine-mediated
// calls inside Tick. Execution is fully synchronous; nothing may run a
// second Tick concurrently on the same instance.
type Engine struct {
	clock   int64
	timeout int64

	drivers      []*Driver
	requests     []*Request
	requestsByID map[int64]*Request
	driversByID  map[int64]*Driver

	dispatch  DispatchPolicy
	generator RequestGenerator
	mutations []MutationRule
	reward    RewardModel

	Metrics *Metrics

	// trace is optional decision recording; nil means disabled.
	trace *trace.SimulationTrace
}

// acceptedPair is a proposal that survived the offer/decide stage,
// carrying the reward computed for its offer.
type acceptedPair struct {
	driver  *Driver
	request *Request
	reward  float64
}

// NewEngine builds an engine over pre-constructed drivers and seed
// requests. Entities are validated up front (finite coordinates,
// positive speeds, unique IDs) so the tick pipeline never has to
// re-check them. The generator and mutation rules may be nil/empty.
func NewEngine(
	drivers []*Driver,
	requests []*Request,
	dispatch DispatchPolicy,
	generator RequestGenerator,
	mutations []MutationRule,
	timeout int64,
	reward RewardModel,
) (*Engine, error) {
	if dispatch == nil {
		return nil, fmt.Errorf("engine: dispatch policy is required")
	}
	if timeout < 0 {
		return nil, fmt.Errorf("engine: timeout must be non-negative, got %d", timeout)
	}

	e := &Engine{
		timeout:      timeout,
		dispatch:     dispatch,
		generator:    generator,
		reward:       reward,
		requestsByID: make(map[int64]*Request),
		driversByID:  make(map[int64]*Driver),
		Metrics:      NewMetrics(),
	}
	for _, rule := range mutations {
		if rule != nil {
			e.mutations = append(e.mutations, rule)
		}
	}

	for _, d := range drivers {
		if !d.Position.Valid() {
			return nil, fmt.Errorf("engine: driver %d has non-finite position %v", d.ID, d.Position)
		}
		if !(d.Speed > 0) {
			return nil, fmt.Errorf("engine: driver %d has non-positive speed %v", d.ID, d.Speed)
		}
		if _, dup := e.driversByID[d.ID]; dup {
			return nil, fmt.Errorf("engine: duplicate driver ID %d", d.ID)
		}
		e.driversByID[d.ID] = d
		e.drivers = append(e.drivers, d)
	}
	for _, r := range requests {
		if err := e.admitRequest(r); err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
	}
	return e, nil
}

// AttachTrace enables decision-trace recording for subsequent ticks.
func (e *Engine) AttachTrace(t *trace.SimulationTrace) {
	e.trace = t
}

// Clock returns the current simulation time.
func (e *Engine) Clock() int64 {
	return e.clock
}

// Drivers returns the driver arena. Callers may read but must not
// mutate entities between ticks.
func (e *Engine) Drivers() []*Driver {
	return e.drivers
}

// Requests returns the request arena, including terminal requests.
func (e *Engine) Requests() []*Request {
	return e.requests
}

// MetricsLog returns the accumulated per-tick metrics entries.
func (e *Engine) MetricsLog() []MetricsEntry {
	return e.Metrics.Log
}

// admitRequest validates a request and adds it to the arena.
func (e *Engine) admitRequest(r *Request) error {
	if !r.Pickup.Valid() || !r.Dropoff.Valid() {
		return fmt.Errorf("request %d has non-finite coordinates", r.ID)
	}
	if _, dup := e.requestsByID[r.ID]; dup {
		return fmt.Errorf("duplicate request ID %d", r.ID)
	}
	e.requestsByID[r.ID] = r
	e.requests = append(e.requests, r)
	return nil
}

// Tick advances the simulation by one time step, executing the seven
// pipeline stages in strict sequence:
//  1. generate new requests
//  2. update waiting times, expire timed-out requests
//  3. propose assignments via the dispatch policy
//  4. build offers, ask driver behaviours to accept/reject
//  5. resolve conflicts and finalize assignments
//  6. move drivers, handle pickup/dropoff arrivals
//  7. apply mutation rules, advance the clock, log metrics
func (e *Engine) Tick() {
	e.generateRequests()
	waiting := e.updateLifecycle()
	proposals := e.propose(e.idleDrivers(), waiting)
	accepted := e.processOffers(proposals)
	e.finalize(accepted)
	e.moveAndHandleArrivals()
	e.applyMutations()

	e.clock++
	e.Metrics.Append(MetricsEntry{
		Time:            e.clock,
		Served:          e.Metrics.ServedCount,
		Expired:         e.Metrics.ExpiredCount,
		AvgWait:         e.Metrics.AvgWait(),
		ActiveDrivers:   e.activeDriverCount(),
		BehaviourCounts: e.behaviourCounts(),
	})
}

// generateRequests (stage 1) pulls new arrivals from the generator.
// A faulty generator is isolated: a panic means no arrivals this tick.
func (e *Engine) generateRequests() {
	if e.generator == nil {
		return
	}
	generated := func() (reqs []*Request) {
		defer func() {
			if r := recover(); r != nil {
				logrus.Warnf("[tick %07d] request generator panicked: %v", e.clock, r)
				reqs = nil
			}
		}()
		return e.generator.MaybeGenerate(e.clock)
	}()

	for _, req := range generated {
		if req == nil {
			continue
		}
		if err := e.admitRequest(req); err != nil {
			logrus.Warnf("[tick %07d] dropping generated request: %v", e.clock, err)
			continue
		}
		logrus.Debugf("[tick %07d] << arrival: request %d pickup %v", e.clock, req.ID, req.Pickup)
	}
}

// updateLifecycle (stage 2) recomputes waits for WAITING requests,
// expires those past the timeout, and returns the still-active WAITING
// set for the proposal stage.
func (e *Engine) updateLifecycle() []*Request {
	var waiting []*Request
	for _, req := range e.requests {
		if req.Status != RequestWaiting {
			continue
		}
		req.UpdateWait(e.clock)
		if req.WaitTime > e.timeout {
			if err := req.MarkExpired(e.clock); err != nil {
				logrus.Warnf("[tick %07d] expiry skipped: %v", e.clock, err)
				continue
			}
			e.Metrics.RecordExpiry()
			logrus.Debugf("[tick %07d] request %d expired after %d ticks", e.clock, req.ID, req.WaitTime)
			continue
		}
		waiting = append(waiting, req)
	}
	return waiting
}

func (e *Engine) idleDrivers() []*Driver {
	var idle []*Driver
	for _, d := range e.drivers {
		if d.Status == DriverIdle {
			idle = append(idle, d)
		}
	}
	return idle
}

// propose (stage 3) asks the dispatch policy for candidate pairs. A
// panicking policy yields an empty proposal list for this tick only.
func (e *Engine) propose(idle []*Driver, waiting []*Request) (proposals []Proposal) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Warnf("[tick %07d] dispatch policy %q panicked: %v", e.clock, e.dispatch.Name(), r)
			proposals = nil
		}
	}()
	proposals = e.dispatch.Assign(idle, waiting, e.clock)
	if e.trace != nil {
		for _, p := range proposals {
			d, r := e.driversByID[p.DriverID], e.requestsByID[p.RequestID]
			if d == nil || r == nil {
				continue
			}
			e.trace.RecordProposal(trace.ProposalRecord{
				Tick:      e.clock,
				DriverID:  p.DriverID,
				RequestID: p.RequestID,
				Distance:  d.Position.DistanceTo(r.Pickup),
				Policy:    e.dispatch.Name(),
			})
		}
	}
	return proposals
}

// processOffers (stage 4) converts proposals into offers and collects
// the pairs the drivers' behaviours accept. Per-pair computation errors
// (unknown IDs, degenerate travel times) skip only that pair; a
// panicking behaviour counts as a rejection.
func (e *Engine) processOffers(proposals []Proposal) []acceptedPair {
	var accepted []acceptedPair
	for _, p := range proposals {
		d := e.driversByID[p.DriverID]
		req := e.requestsByID[p.RequestID]
		if d == nil || req == nil || d.Behaviour == nil {
			continue
		}

		offer, ok := e.buildOffer(d, req)
		if !ok {
			continue
		}

		if e.decide(d, req, offer) {
			accepted = append(accepted, acceptedPair{driver: d, request: req, reward: offer.EstimatedReward})
		}
	}
	return accepted
}

// buildOffer prices a proposal. The false return marks a transient
// per-pair computation failure; the pair becomes eligible again next
// tick through the normal proposal cycle.
func (e *Engine) buildOffer(d *Driver, req *Request) (Offer, bool) {
	pickupDist := d.Position.DistanceTo(req.Pickup)
	speed := d.Speed
	if speed < 1e-9 {
		speed = 1e-9
	}
	travelTime := pickupDist / speed
	if travelTime != travelTime || travelTime < 0 { // NaN guard
		return Offer{}, false
	}
	tripDistance := pickupDist + req.Pickup.DistanceTo(req.Dropoff)
	return Offer{
		DriverID:            d.ID,
		RequestID:           req.ID,
		EstimatedTravelTime: travelTime,
		EstimatedReward:     e.reward.Base + e.reward.PerDistance*tripDistance,
		HasReward:           true,
	}, true
}

// decide wraps the behaviour call so a faulty behaviour rejects instead
// of corrupting the tick.
func (e *Engine) decide(d *Driver, req *Request, offer Offer) (accepted bool) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Warnf("[tick %07d] behaviour %q panicked for driver %d: %v", e.clock, d.Behaviour.Name(), d.ID, r)
			accepted = false
		}
	}()
	accepted = d.Behaviour.Decide(d, req, offer, e.clock)
	if e.trace != nil {
		e.trace.RecordDecision(trace.DecisionRecord{
			Tick:      e.clock,
			DriverID:  d.ID,
			RequestID: req.ID,
			Behaviour: d.Behaviour.Name(),
			Accepted:  accepted,
		})
	}
	return accepted
}

// finalize (stage 5) walks the accepted pairs in proposal order and
// assigns first-come-first-served: a pair is skipped when its driver or
// request was already consumed this tick or the request stopped being
// WAITING. This is deterministic conflict resolution, not a second
// optimization pass.
func (e *Engine) finalize(accepted []acceptedPair) {
	usedDrivers := make(map[int64]bool)
	usedRequests := make(map[int64]bool)
	for _, pair := range accepted {
		if usedDrivers[pair.driver.ID] || usedRequests[pair.request.ID] {
			continue
		}
		if pair.request.Status != RequestWaiting {
			continue
		}
		if err := pair.driver.AssignRequest(pair.request, pair.reward, e.clock); err != nil {
			logrus.Warnf("[tick %07d] assignment skipped: %v", e.clock, err)
			continue
		}
		usedDrivers[pair.driver.ID] = true
		usedRequests[pair.request.ID] = true
		logrus.Debugf("[tick %07d] driver %d -> request %d (reward %.2f)",
			e.clock, pair.driver.ID, pair.request.ID, pair.reward)
	}
}

// moveAndHandleArrivals (stage 6) steps every en-route driver by one
// tick and fires pickup/dropoff completions. A pickup and a dropoff can
// complete in the same tick when the two points coincide or are within
// reach of each other.
func (e *Engine) moveAndHandleArrivals() {
	for _, d := range e.drivers {
		req := e.requestsByID[d.CurrentRequest]
		target, ok := d.Target(req)
		if !ok {
			continue
		}
		d.Step(1.0, target)

		if d.Status == DriverToPickup && d.Position.DistanceTo(req.Pickup) < ArrivalEpsilon {
			if err := d.CompletePickup(req, e.clock); err != nil {
				logrus.Warnf("[tick %07d] pickup skipped: %v", e.clock, err)
			}
		}
		if d.Status == DriverToDropoff && d.Position.DistanceTo(req.Dropoff) < ArrivalEpsilon {
			if _, err := d.CompleteDropoff(req, e.clock); err != nil {
				logrus.Warnf("[tick %07d] dropoff skipped: %v", e.clock, err)
				continue
			}
			e.Metrics.RecordDelivery(req.WaitTime)
			logrus.Debugf("[tick %07d] driver %d delivered request %d", e.clock, d.ID, req.ID)
		}
	}
}

// applyMutations (stage 7, first half) runs every composed mutation
// rule over every driver. A panicking rule means no mutation from it
// this tick.
func (e *Engine) applyMutations() {
	for _, rule := range e.mutations {
		for _, d := range e.drivers {
			e.mutateOne(rule, d)
		}
	}
}

func (e *Engine) mutateOne(rule MutationRule, d *Driver) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Warnf("[tick %07d] mutation rule %q panicked for driver %d: %v", e.clock, rule.Name(), d.ID, r)
		}
	}()
	before := ""
	if d.Behaviour != nil {
		before = d.Behaviour.Name()
	}
	rule.MaybeMutate(d, e.clock)
	after := ""
	if d.Behaviour != nil {
		after = d.Behaviour.Name()
	}
	if e.trace != nil && before != after {
		e.trace.RecordMutation(trace.MutationRecord{
			Tick:     e.clock,
			DriverID: d.ID,
			Rule:     rule.Name(),
			From:     before,
			To:       after,
		})
	}
}

func (e *Engine) activeDriverCount() int {
	count := 0
	for _, d := range e.drivers {
		if d.Status != DriverIdle {
			count++
		}
	}
	return count
}

func (e *Engine) behaviourCounts() map[string]int {
	counts := make(map[string]int)
	for _, d := range e.drivers {
		if d.Behaviour != nil {
			counts[d.Behaviour.Name()]++
		}
	}
	return counts
}
