package sim

// DriverSnapshot is a read-only view of one driver's position and state.
type DriverSnapshot struct {
	ID     int64
	X      float64
	Y      float64
	Status DriverStatus
}

// Statistics carries the aggregate counters exposed to adapters.
type Statistics struct {
	ServedCount  int64
	ExpiredCount int64
	AvgWait      float64
}

// Snapshot is a point-in-time view of the simulation for external
// consumers (dashboards, recorders). It copies everything it exposes;
// adapters may only read, never mutate, engine state between ticks.
type Snapshot struct {
	Time     int64
	Drivers  []DriverSnapshot
	Pickups  []Point // pickups of WAITING and ASSIGNED requests
	Dropoffs []Point // dropoffs of PICKED requests
	Stats    Statistics
}

// Snapshot captures the current state of the simulation.
func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{
		Time:    e.clock,
		Drivers: make([]DriverSnapshot, 0, len(e.drivers)),
		Stats: Statistics{
			ServedCount:  e.Metrics.ServedCount,
			ExpiredCount: e.Metrics.ExpiredCount,
			AvgWait:      e.Metrics.AvgWait(),
		},
	}
	for _, d := range e.drivers {
		snap.Drivers = append(snap.Drivers, DriverSnapshot{
			ID:     d.ID,
			X:      d.Position.X,
			Y:      d.Position.Y,
			Status: d.Status,
		})
	}
	for _, r := range e.requests {
		switch r.Status {
		case RequestWaiting, RequestAssigned:
			snap.Pickups = append(snap.Pickups, r.Pickup)
		case RequestPicked:
			snap.Dropoffs = append(snap.Dropoffs, r.Dropoff)
		}
	}
	return snap
}
