package scrumdomain

import (
	"cmp"
	"slices"

	"github.com/Black-And-White-Club/scrum-bot/app/shared/channel"
)

// Classification is a participant's availability for one scrum.
type Classification int

const (
	Unknown Classification = iota
	Available
	Unavailable
)

func (c Classification) String() string {
	switch c {
	case Available:
		return "available"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Participant is the slice of a participant the tally needs.
type Participant struct {
	ID          int64
	DisplayName string
	Streak      int
}

// Signal is one resolved marker placed on the poll message.
type Signal struct {
	ParticipantID int64
	Marker        channel.Marker
}

// Precedence decides the classification of a participant holding both markers.
type Precedence int

const (
	// NegativeWins classifies a participant holding both markers as Unavailable.
	NegativeWins Precedence = iota
	// PositiveWins classifies a participant holding both markers as Available.
	PositiveWins
)

// ParsePrecedence maps a config value onto a Precedence.
func ParsePrecedence(s string) (Precedence, bool) {
	switch s {
	case "", "negative":
		return NegativeWins, true
	case "positive":
		return PositiveWins, true
	default:
		return NegativeWins, false
	}
}

// Tally is the per-participant classification of a roster plus aggregate counts.
type Tally struct {
	Classifications map[int64]Classification
	Available       int
	Unavailable     int
	Unknown         int
}

// ComputeTally classifies every roster member from the signals on a poll.
//
// Rules:
//   - Every roster member starts Unknown.
//   - A positive signal makes the holder Available, a negative one Unavailable.
//   - A member holding both markers is resolved by precedence.
//   - Signals from anyone outside the roster are dropped.
//   - The result does not depend on roster or signal order.
func ComputeTally(roster []Participant, signals []Signal, precedence Precedence) Tally {
	type held struct{ positive, negative bool }

	members := make(map[int64]*held, len(roster))
	for _, p := range roster {
		members[p.ID] = &held{}
	}
	for _, s := range signals {
		h, ok := members[s.ParticipantID]
		if !ok {
			continue
		}
		switch s.Marker {
		case channel.MarkerPositive:
			h.positive = true
		case channel.MarkerNegative:
			h.negative = true
		}
	}

	t := Tally{Classifications: make(map[int64]Classification, len(members))}
	for id, h := range members {
		c := classify(h.positive, h.negative, precedence)
		t.Classifications[id] = c
		switch c {
		case Available:
			t.Available++
		case Unavailable:
			t.Unavailable++
		default:
			t.Unknown++
		}
	}
	return t
}

func classify(positive, negative bool, precedence Precedence) Classification {
	switch {
	case positive && negative:
		if precedence == PositiveWins {
			return Available
		}
		return Unavailable
	case positive:
		return Available
	case negative:
		return Unavailable
	default:
		return Unknown
	}
}

// Of returns the classification of a participant; non-members are Unknown.
func (t Tally) Of(participantID int64) Classification {
	return t.Classifications[participantID]
}

// Total is the roster size the tally was computed over.
func (t Tally) Total() int {
	return t.Available + t.Unavailable + t.Unknown
}

// Outcome applies the outcome rule to the tally.
func (t Tally) Outcome() Outcome {
	return DecideOutcome(t.Available, t.Unavailable)
}

// NotAvailable lists roster members not classified Available, ordered by
// display name then id.
func (t Tally) NotAvailable(roster []Participant) []Participant {
	out := make([]Participant, 0, len(roster))
	seen := make(map[int64]bool, len(roster))
	for _, p := range roster {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		if t.Of(p.ID) != Available {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b Participant) int {
		return cmp.Or(cmp.Compare(a.DisplayName, b.DisplayName), cmp.Compare(a.ID, b.ID))
	})
	return out
}
