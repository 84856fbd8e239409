// Tracks simulation-wide delivery metrics: running counters, the
// per-tick metrics log consumed by reporting adapters, and the
// end-of-run summary.

package sim

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// MetricsEntry is one row of the per-tick metrics log, appended at the
// end of every tick.
type MetricsEntry struct {
	Time            int64
	Served          int64
	Expired         int64
	AvgWait         float64
	ActiveDrivers   int
	BehaviourCounts map[string]int
}

// Metrics aggregates statistics about the simulation for final
// reporting. All counters are owned by the single engine instance;
// there is no process-wide state.
type Metrics struct {
	ServedCount         int64 // deliveries completed
	ExpiredCount        int64 // requests that timed out unserved
	TotalWaitTime       int64 // sum of delivery-time waits
	CompletedDeliveries int64

	// deliveryWaits holds the per-delivery wait samples behind the
	// quantile summary.
	deliveryWaits []float64

	Log []MetricsEntry
}

// NewMetrics creates an empty metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{Log: make([]MetricsEntry, 0)}
}

// RecordDelivery accumulates one completed delivery's wait time.
func (m *Metrics) RecordDelivery(waitTime int64) {
	m.ServedCount++
	m.CompletedDeliveries++
	m.TotalWaitTime += waitTime
	m.deliveryWaits = append(m.deliveryWaits, float64(waitTime))
}

// RecordExpiry counts one expired request.
func (m *Metrics) RecordExpiry() {
	m.ExpiredCount++
}

// AvgWait returns the mean delivery wait, or 0 before any delivery.
func (m *Metrics) AvgWait() float64 {
	if m.CompletedDeliveries == 0 {
		return 0
	}
	return float64(m.TotalWaitTime) / float64(m.CompletedDeliveries)
}

// Append adds a per-tick log entry.
func (m *Metrics) Append(entry MetricsEntry) {
	m.Log = append(m.Log, entry)
}

// Report displays aggregated metrics at the end of the simulation,
// including the wait-time distribution over completed deliveries.
func (m *Metrics) Report(ticks int64) {
	fmt.Println("=== Simulation Metrics ===")
	fmt.Printf("Ticks run            : %d\n", ticks)
	fmt.Printf("Served requests      : %d\n", m.ServedCount)
	fmt.Printf("Expired requests     : %d\n", m.ExpiredCount)
	if m.CompletedDeliveries > 0 {
		waits := append([]float64(nil), m.deliveryWaits...)
		sort.Float64s(waits)
		fmt.Printf("Average wait         : %.2f ticks\n", stat.Mean(waits, nil))
		fmt.Printf("p50 wait             : %.2f ticks\n", stat.Quantile(0.5, stat.Empirical, waits, nil))
		fmt.Printf("p95 wait             : %.2f ticks\n", stat.Quantile(0.95, stat.Empirical, waits, nil))
	}
}
