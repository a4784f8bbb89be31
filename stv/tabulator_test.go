package stv_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/kscottz/membership-stv/stv"
)

func repeat[T any](n int, v T) []T {
	out := make([]T, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// TestScenarioS1 is spec.md table scenario S1: one candidate clears
// quota outright on first preferences alone.
func TestScenarioS1(t *testing.T) {
	prefs := repeat(5, []string{"A", "B", "C"})
	tab, err := stv.New([]string{"A", "B", "C"}, 1, prefs, stv.NewRNG(1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got, want := tab.Quota(), 3; got != want {
		t.Fatalf("quota = %d, want %d", got, want)
	}
	winners, err := tab.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !slices.Equal(winners, []string{"A"}) {
		t.Fatalf("winners = %v, want [A]", winners)
	}
}

// TestScenarioS2 is spec.md table scenario S2: A is elected outright,
// and B, already at quota on its own first preferences, is elected in
// the next round with A's surplus added (2.99999).
func TestScenarioS2(t *testing.T) {
	var prefs [][]string
	prefs = append(prefs, repeat(3, []string{"A", "B", "C"})...)
	prefs = append(prefs, repeat(2, []string{"B", "A", "C"})...)

	tab, err := stv.New([]string{"A", "B", "C"}, 2, prefs, stv.NewRNG(1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got, want := tab.Quota(), 2; got != want {
		t.Fatalf("quota = %d, want %d", got, want)
	}
	winners, err := tab.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !slices.Equal(winners, []string{"A", "B"}) {
		t.Fatalf("winners = %v, want [A B]", winners)
	}
}

// TestScenarioS3 is spec.md table scenario S3: A and B tie for quota in
// round 1 with no prior round to break the tie, so the random fallback
// decides order, but both are eventually elected.
func TestScenarioS3(t *testing.T) {
	prefs := [][]string{
		{"A"}, {"A"},
		{"B"}, {"B"},
		{"C", "A"},
	}
	tab, err := stv.New([]string{"A", "B", "C"}, 2, prefs, stv.NewRNG(7))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got, want := tab.Quota(), 2; got != want {
		t.Fatalf("quota = %d, want %d", got, want)
	}
	winners, err := tab.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := append([]string(nil), winners...)
	slices.Sort(got)
	if !slices.Equal(got, []string{"A", "B"}) {
		t.Fatalf("winners = %v, want {A,B} in some order", winners)
	}
}

// TestScenarioS6 is spec.md table scenario S6: zero ballots, quota
// collapses to 1, and every candidate is elected via the
// fill-the-remaining-seats rule.
func TestScenarioS6(t *testing.T) {
	tab, err := stv.New([]string{"A", "B", "C", "D"}, 4, nil, stv.NewRNG(42))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got, want := tab.Quota(), 1; got != want {
		t.Fatalf("quota = %d, want %d", got, want)
	}
	winners, err := tab.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(winners) != 4 {
		t.Fatalf("winners = %v, want all 4 candidates", winners)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	prefs := repeat(5, []string{"A", "B", "C"})
	tab, err := stv.New([]string{"A", "B", "C"}, 1, prefs, stv.NewRNG(3))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	first, err := tab.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	second, err := tab.Run()
	if err != nil {
		t.Fatalf("Run (second): %v", err)
	}
	if !slices.Equal(first, second) {
		t.Fatalf("Run is not idempotent: %v != %v", first, second)
	}
}

func TestHistoryTracksRemainingCandidates(t *testing.T) {
	prefs := repeat(5, []string{"A", "B", "C"})
	tab, err := stv.New([]string{"A", "B", "C"}, 1, prefs, stv.NewRNG(3))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := tab.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	history := tab.History()
	if len(history) == 0 {
		t.Fatal("expected at least one round in history")
	}
	first := history[0]
	if len(first) != 3 {
		t.Fatalf("round 0 should cover all 3 candidates, got %d entries", len(first))
	}
}

func TestNewRejectsInvalidInput(t *testing.T) {
	for _, tt := range []struct {
		name       string
		candidates []string
		numWinners int
		prefs      [][]string
	}{
		{"zero winners", []string{"A"}, 0, nil},
		{"too many winners", []string{"A"}, 2, nil},
		{"unknown candidate in ballot", []string{"A", "B"}, 1, [][]string{{"C"}}},
		{"duplicate candidate in ballot", []string{"A", "B"}, 1, [][]string{{"A", "A"}}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := stv.New(tt.candidates, tt.numWinners, tt.prefs, stv.NewRNG(1))
			if !errors.Is(err, stv.ErrInvalidInput) {
				t.Fatalf("got %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestIsWinnerMatchesRunResult(t *testing.T) {
	prefs := repeat(5, []string{"A", "B", "C"})
	tab, err := stv.New([]string{"A", "B", "C"}, 1, prefs, stv.NewRNG(1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	winners, err := tab.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, c := range []string{"A", "B", "C"} {
		want := slices.Contains(winners, c)
		if got := tab.IsWinner(c); got != want {
			t.Fatalf("IsWinner(%q) = %v, want %v", c, got, want)
		}
	}
}

func TestEmptyBallotsNeverContribute(t *testing.T) {
	prefs := [][]string{{}, {}, {"A"}}
	tab, err := stv.New([]string{"A", "B"}, 1, prefs, stv.NewRNG(1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	winners, err := tab.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !slices.Equal(winners, []string{"A"}) {
		t.Fatalf("winners = %v, want [A]", winners)
	}
}

// TestPermutingBallotOrderIsStable checks spec.md property 7: shuffling
// input ballot order does not change the result, for an input with no
// ties that could reach the random fallback.
func TestPermutingBallotOrderIsStable(t *testing.T) {
	base := [][]string{
		{"A", "B", "C"}, {"A", "B", "C"}, {"A", "B", "C"},
		{"B", "A", "C"}, {"B", "A", "C"},
		{"C", "A", "B"},
	}

	run := func(prefs [][]string) []string {
		tab, err := stv.New([]string{"A", "B", "C"}, 2, prefs, stv.NewRNG(99))
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		winners, err := tab.Run()
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		return winners
	}

	want := run(base)

	reversed := make([][]string, len(base))
	for i, p := range base {
		reversed[len(base)-1-i] = p
	}
	got := run(reversed)

	if !slices.Equal(got, want) {
		t.Fatalf("permuting ballot order changed the result: %v != %v", got, want)
	}
}
