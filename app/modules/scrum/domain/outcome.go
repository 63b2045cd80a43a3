package scrumdomain

const (
	// MinAvailableForPossible is the quorum that makes a scrum possible.
	MinAvailableForPossible = 3
	// MinUnavailableForImpossible is the number of absences that rules a scrum out.
	MinUnavailableForImpossible = 2
)

// Outcome is the decision reached when a scrum closes.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomePossible
	OutcomeImpossible
)

func (o Outcome) String() string {
	switch o {
	case OutcomePossible:
		return "possible"
	case OutcomeImpossible:
		return "impossible"
	default:
		return "unknown"
	}
}

// Decisive reports whether the outcome justifies closing before the deadline.
func (o Outcome) Decisive() bool {
	return o != OutcomeUnknown
}

// DecideOutcome is Possible at quorum, otherwise Impossible once enough
// members declined, otherwise Unknown.
func DecideOutcome(available, unavailable int) Outcome {
	switch {
	case available >= MinAvailableForPossible:
		return OutcomePossible
	case unavailable >= MinUnavailableForImpossible:
		return OutcomeImpossible
	default:
		return OutcomeUnknown
	}
}
