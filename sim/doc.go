// Package sim provides the core discrete-tick simulation engine for a
// fleet of delivery drivers serving spatially-distributed requests.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - request.go: Request lifecycle (WAITING → ASSIGNED → PICKED → DELIVERED / EXPIRED)
//   - driver.go: Driver agent (IDLE → TO_PICKUP → TO_DROPOFF cycle), movement, trip history
//   - engine.go: The seven-stage tick pipeline and conflict resolution
//
// # Architecture
//
// The engine owns all drivers and requests in ID-indexed arenas and is
// the single root of mutation; cross-references between entities are
// integer IDs resolved through the engine at use time. Everything is
// single-threaded: Tick() is one atomic logical step with no suspension
// points, and determinism comes from a single explicitly-seeded
// PartitionedRNG shared by the workload generator and mutation rules.
//
// # Key Interfaces
//
// The extension points are small, name-keyed strategy interfaces:
//   - DispatchPolicy: propose candidate (driver, request) pairs each tick
//   - DriverBehaviour: accept or reject a single offer
//   - MutationRule: adaptively swap a driver's behaviour over time
//   - RequestGenerator: produce new arrivals per tick (see sim/workload)
//
// Decision tracing lives in sim/trace and is disabled by default.
package sim
