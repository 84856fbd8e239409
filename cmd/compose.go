package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fleet-sim/fleet-sim/sim"
	"github.com/fleet-sim/fleet-sim/sim/trace"
	"github.com/fleet-sim/fleet-sim/sim/workload"
)

// composeEngine builds the engine from CLI flags, applying YAML bundle
// overrides when --policy-config is set. Fleet placement, request
// generation, and mutation each draw from their own PartitionedRNG
// subsystem so a fixed --seed reproduces the run bit for bit.
func composeEngine() (*sim.Engine, *trace.SimulationTrace, error) {
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(seed))

	behaviourParams := sim.BehaviourParams{
		MinWaitTime:    &minWaitTime,
		MaxDistance:    &maxDistance,
		MinRatio:       &minRatio,
		EscalationRate: &escalationRate,
	}
	mutationParams := sim.MutationParams{
		Probability: &mutationProb,
		Threshold:   &perfThreshold,
		Window:      &perfWindow,
	}
	reward := sim.RewardModel{Base: rewardBase, PerDistance: rewardPerDist}
	rules := mutationRules

	if policyConfig != "" {
		bundle, err := sim.LoadPolicyBundle(policyConfig)
		if err != nil {
			return nil, nil, err
		}
		if err := bundle.Validate(); err != nil {
			return nil, nil, err
		}
		applyBundle(bundle, &behaviourParams, &mutationParams, &reward, &rules)
	}

	initialBehaviour := func() (sim.DriverBehaviour, error) {
		return sim.NewBehaviour(behaviourName, behaviourParams)
	}

	drivers, err := buildFleet(rng, initialBehaviour)
	if err != nil {
		return nil, nil, err
	}

	dispatch, err := sim.NewDispatchPolicy(dispatchPolicy)
	if err != nil {
		return nil, nil, err
	}

	gen, err := workload.NewGenerator(generator, workload.Config{
		Rate:   rate,
		Width:  worldWidth,
		Height: worldHeight,
	}, rng.ForSubsystem(sim.SubsystemWorkload))
	if err != nil {
		return nil, nil, err
	}

	var mutations []sim.MutationRule
	for _, name := range rules {
		rule, err := sim.NewMutationRule(name, mutationParams, rng.ForSubsystem(sim.SubsystemMutation))
		if err != nil {
			return nil, nil, err
		}
		if rule != nil {
			mutations = append(mutations, rule)
		}
	}

	engine, err := sim.NewEngine(drivers, nil, dispatch, gen, mutations, timeout, reward)
	if err != nil {
		return nil, nil, err
	}

	var simTrace *trace.SimulationTrace
	if !trace.IsValidTraceLevel(traceLevel) {
		return nil, nil, fmt.Errorf("unknown trace level %q", traceLevel)
	}
	if trace.TraceLevel(traceLevel) == trace.TraceLevelDecisions {
		simTrace = trace.NewSimulationTrace(trace.TraceLevelDecisions)
		engine.AttachTrace(simTrace)
	}
	return engine, simTrace, nil
}

// buildFleet places drivers uniformly in the world with speeds drawn
// from [speed-min, speed-max). Each driver starts with the configured
// initial behaviour.
func buildFleet(rng *sim.PartitionedRNG, newBehaviour func() (sim.DriverBehaviour, error)) ([]*sim.Driver, error) {
	fleetRNG := rng.ForSubsystem(sim.SubsystemFleet)
	if speedMin <= 0 || speedMax < speedMin {
		return nil, fmt.Errorf("invalid speed range [%v, %v]", speedMin, speedMax)
	}

	drivers := make([]*sim.Driver, 0, numDrivers)
	for i := 0; i < numDrivers; i++ {
		behaviour, err := newBehaviour()
		if err != nil {
			return nil, err
		}
		position := sim.Point{
			X: fleetRNG.Float64() * worldWidth,
			Y: fleetRNG.Float64() * worldHeight,
		}
		speed := speedMin + fleetRNG.Float64()*(speedMax-speedMin)
		d, err := sim.NewDriver(int64(i+1), position, speed, behaviour)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, nil
}

// applyBundle overlays YAML bundle values onto the flag-derived
// configuration. Unset bundle fields leave the flags untouched.
func applyBundle(bundle *sim.PolicyBundle, behaviourParams *sim.BehaviourParams, mutationParams *sim.MutationParams, reward *sim.RewardModel, rules *[]string) {
	if bundle.Dispatch.Policy != "" {
		dispatchPolicy = bundle.Dispatch.Policy
	}
	if bundle.Behaviour.Default != "" {
		behaviourName = bundle.Behaviour.Default
	}
	if bundle.Behaviour.MinWaitTime != nil {
		behaviourParams.MinWaitTime = bundle.Behaviour.MinWaitTime
	}
	if bundle.Behaviour.MaxDistance != nil {
		behaviourParams.MaxDistance = bundle.Behaviour.MaxDistance
	}
	if bundle.Behaviour.MinRatio != nil {
		behaviourParams.MinRatio = bundle.Behaviour.MinRatio
	}
	if bundle.Behaviour.EscalationRate != nil {
		behaviourParams.EscalationRate = bundle.Behaviour.EscalationRate
	}
	if len(bundle.Mutation.Rules) > 0 {
		*rules = bundle.Mutation.Rules
	}
	if bundle.Mutation.Probability != nil {
		mutationParams.Probability = bundle.Mutation.Probability
	}
	if bundle.Mutation.Threshold != nil {
		mutationParams.Threshold = bundle.Mutation.Threshold
	}
	if bundle.Mutation.Window != nil {
		mutationParams.Window = bundle.Mutation.Window
	}
	if bundle.Reward.Base != nil {
		reward.Base = *bundle.Reward.Base
	}
	if bundle.Reward.PerDistance != nil {
		reward.PerDistance = *bundle.Reward.PerDistance
	}
}

// printTraceSummary reports trace aggregates after the run.
func printTraceSummary(st *trace.SimulationTrace) {
	s := st.Summarize()
	fmt.Println("=== Decision Trace ===")
	fmt.Printf("Proposals            : %d\n", s.ProposalCount)
	fmt.Printf("Accepted / rejected  : %d / %d (rate %.2f)\n", s.AcceptCount, s.RejectCount, s.AcceptRate)
	fmt.Printf("Mutations            : %d\n", s.MutationCount)
	for rule, count := range s.MutationsByRule {
		logrus.Infof("mutations by %s: %d", rule, count)
	}
}
