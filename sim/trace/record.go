// Package trace provides decision-trace recording for dispatch and
// behaviour analysis. This package has no dependencies on sim/; it
// stores pure data types.
package trace

// ProposalRecord captures one candidate pair emitted by a dispatch policy.
type ProposalRecord struct {
	Tick      int64
	DriverID  int64
	RequestID int64
	Distance  float64
	Policy    string
}

// DecisionRecord captures one behaviour accept/reject decision.
type DecisionRecord struct {
	Tick      int64
	DriverID  int64
	RequestID int64
	Behaviour string
	Accepted  bool
}

// MutationRecord captures one behaviour swap performed by a mutation rule.
type MutationRecord struct {
	Tick     int64
	DriverID int64
	Rule     string
	From     string
	To       string
}
