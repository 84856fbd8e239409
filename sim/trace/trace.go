package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures all proposals, offer decisions, and mutations.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// SimulationTrace collects decision records during a simulation run.
type SimulationTrace struct {
	Level     TraceLevel
	Proposals []ProposalRecord
	Decisions []DecisionRecord
	Mutations []MutationRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(level TraceLevel) *SimulationTrace {
	return &SimulationTrace{
		Level:     level,
		Proposals: make([]ProposalRecord, 0),
		Decisions: make([]DecisionRecord, 0),
		Mutations: make([]MutationRecord, 0),
	}
}

// RecordProposal appends a dispatch proposal record.
func (st *SimulationTrace) RecordProposal(record ProposalRecord) {
	st.Proposals = append(st.Proposals, record)
}

// RecordDecision appends a behaviour decision record.
func (st *SimulationTrace) RecordDecision(record DecisionRecord) {
	st.Decisions = append(st.Decisions, record)
}

// RecordMutation appends a behaviour-swap record.
func (st *SimulationTrace) RecordMutation(record MutationRecord) {
	st.Mutations = append(st.Mutations, record)
}
