package trace

// Summary aggregates a trace for quick inspection.
type Summary struct {
	ProposalCount   int
	AcceptCount     int
	RejectCount     int
	AcceptRate      float64
	MutationCount   int
	MutationsByRule map[string]int
}

// Summarize computes aggregate statistics over the recorded trace.
func (st *SimulationTrace) Summarize() Summary {
	s := Summary{
		ProposalCount:   len(st.Proposals),
		MutationCount:   len(st.Mutations),
		MutationsByRule: make(map[string]int),
	}
	for _, d := range st.Decisions {
		if d.Accepted {
			s.AcceptCount++
		} else {
			s.RejectCount++
		}
	}
	if total := s.AcceptCount + s.RejectCount; total > 0 {
		s.AcceptRate = float64(s.AcceptCount) / float64(total)
	}
	for _, m := range st.Mutations {
		s.MutationsByRule[m.Rule]++
	}
	return s
}
