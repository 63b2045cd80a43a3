package scrumdomain

import (
	"slices"
	"testing"

	"github.com/Black-And-White-Club/scrum-bot/app/shared/channel"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

var roster = []Participant{
	{ID: 1, DisplayName: "alice"},
	{ID: 2, DisplayName: "bob"},
	{ID: 3, DisplayName: "carol"},
	{ID: 4, DisplayName: "dave"},
	{ID: 5, DisplayName: "erin"},
}

func pos(id int64) Signal { return Signal{ParticipantID: id, Marker: channel.MarkerPositive} }
func neg(id int64) Signal { return Signal{ParticipantID: id, Marker: channel.MarkerNegative} }

func TestComputeTally(t *testing.T) {
	tests := []struct {
		name       string
		signals    []Signal
		precedence Precedence
		want       map[int64]Classification
		counts     [3]int // available, unavailable, unknown
	}{
		{
			name:   "no signals",
			want:   map[int64]Classification{1: Unknown, 2: Unknown, 3: Unknown, 4: Unknown, 5: Unknown},
			counts: [3]int{0, 0, 5},
		},
		{
			name:    "mixed signals",
			signals: []Signal{pos(1), pos(2), neg(3)},
			want:    map[int64]Classification{1: Available, 2: Available, 3: Unavailable, 4: Unknown, 5: Unknown},
			counts:  [3]int{2, 1, 2},
		},
		{
			name:    "outsiders are dropped",
			signals: []Signal{pos(1), pos(99), neg(100)},
			want:    map[int64]Classification{1: Available, 2: Unknown, 3: Unknown, 4: Unknown, 5: Unknown},
			counts:  [3]int{1, 0, 4},
		},
		{
			name:       "both markers with negative precedence",
			signals:    []Signal{pos(1), neg(1)},
			precedence: NegativeWins,
			want:       map[int64]Classification{1: Unavailable, 2: Unknown, 3: Unknown, 4: Unknown, 5: Unknown},
			counts:     [3]int{0, 1, 4},
		},
		{
			name:       "both markers with positive precedence",
			signals:    []Signal{neg(1), pos(1)},
			precedence: PositiveWins,
			want:       map[int64]Classification{1: Available, 2: Unknown, 3: Unknown, 4: Unknown, 5: Unknown},
			counts:     [3]int{1, 0, 4},
		},
		{
			name:    "repeated signals count once",
			signals: []Signal{pos(2), pos(2), pos(2)},
			want:    map[int64]Classification{1: Unknown, 2: Available, 3: Unknown, 4: Unknown, 5: Unknown},
			counts:  [3]int{1, 0, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTally(roster, tt.signals, tt.precedence)
			if diff := cmp.Diff(tt.want, got.Classifications); diff != "" {
				t.Errorf("classifications mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.counts, [3]int{got.Available, got.Unavailable, got.Unknown})
			assert.Equal(t, len(roster), got.Total())
		})
	}
}

func TestComputeTallyIsOrderIndependent(t *testing.T) {
	signals := []Signal{pos(1), neg(1), pos(2), neg(3), pos(4), pos(42)}
	want := ComputeTally(roster, signals, NegativeWins)

	reversedRoster := slices.Clone(roster)
	slices.Reverse(reversedRoster)
	reversedSignals := slices.Clone(signals)
	slices.Reverse(reversedSignals)

	got := ComputeTally(reversedRoster, reversedSignals, NegativeWins)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tally depends on input order (-want +got):\n%s", diff)
	}
}

func TestNotAvailable(t *testing.T) {
	r := []Participant{
		{ID: 7, DisplayName: "zed"},
		{ID: 3, DisplayName: "amy"},
		{ID: 2, DisplayName: "amy"},
		{ID: 9, DisplayName: "max"},
	}
	tally := ComputeTally(r, []Signal{pos(9), neg(7)}, NegativeWins)

	got := tally.NotAvailable(r)
	want := []Participant{
		{ID: 2, DisplayName: "amy"},
		{ID: 3, DisplayName: "amy"},
		{ID: 7, DisplayName: "zed"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NotAvailable mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePrecedence(t *testing.T) {
	p, ok := ParsePrecedence("")
	assert.True(t, ok)
	assert.Equal(t, NegativeWins, p)

	p, ok = ParsePrecedence("positive")
	assert.True(t, ok)
	assert.Equal(t, PositiveWins, p)

	_, ok = ParsePrecedence("coin-flip")
	assert.False(t, ok)
}
