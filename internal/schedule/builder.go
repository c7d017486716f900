// Package schedule builds round-robin pairing orders in which, whenever
// possible, no team plays two matches in a row.
package schedule

import "github.com/mauv0809/volley-tournament/internal/model"

// MinTeamsForRest is the smallest field for which back-to-back matches can
// generally be avoided.
const MinTeamsForRest = 5

// Pairing is one scheduled encounter.
type Pairing struct {
	Team1 string
	Team2 string
}

func (p Pairing) shares(other Pairing) bool {
	return p.Team1 == other.Team1 || p.Team1 == other.Team2 ||
		p.Team2 == other.Team1 || p.Team2 == other.Team2
}

// Result is the output of Build.
type Result struct {
	Pairings []Pairing
	// RestSatisfied is false when the fallback order was returned because
	// some team had to play two adjacent matches.
	RestSatisfied bool
}

// Build returns every unordered pair of teams exactly once. teams must hold
// distinct identifiers; fewer than two teams is rejected.
func Build(teams []string) (Result, error) {
	if len(teams) < 2 {
		return Result{}, model.ErrTooFewTeams
	}

	rounds := Rounds(teams)
	if ordered, ok := linearize(rounds); ok {
		return Result{Pairings: ordered, RestSatisfied: true}, nil
	}

	var fallback []Pairing
	for _, round := range rounds {
		fallback = append(fallback, round...)
	}
	return Result{Pairings: fallback, RestSatisfied: false}, nil
}

// Rounds generates the N-1 rounds of the circle method. Slot 0 stays fixed,
// the others rotate clockwise by one slot per round. For an odd field an
// empty bye slot is added and its pairings are dropped.
func Rounds(teams []string) [][]Pairing {
	slots := make([]string, len(teams), len(teams)+1)
	copy(slots, teams)
	bye := len(slots)%2 == 1
	if bye {
		slots = append(slots, "")
	}
	n := len(slots)

	rounds := make([][]Pairing, 0, n-1)
	for r := 0; r < n-1; r++ {
		round := make([]Pairing, 0, n/2)
		for i := 0; i < n/2; i++ {
			a, b := slots[i], slots[n-1-i]
			if a == "" || b == "" {
				continue
			}
			round = append(round, Pairing{Team1: a, Team2: b})
		}
		rounds = append(rounds, round)

		last := slots[n-1]
		copy(slots[2:], slots[1:n-1])
		slots[1] = last
	}
	return rounds
}

// linearize flattens the rounds greedily, always taking the first remaining
// pairing of the current round that shares no team with the pairing placed
// just before it. The previous pairing carries over round boundaries.
func linearize(rounds [][]Pairing) ([]Pairing, bool) {
	var (
		ordered []Pairing
		prev    *Pairing
	)
	for _, round := range rounds {
		remaining := append([]Pairing(nil), round...)
		for len(remaining) > 0 {
			idx := -1
			for i, candidate := range remaining {
				if prev == nil || !candidate.shares(*prev) {
					idx = i
					break
				}
			}
			if idx < 0 {
				return nil, false
			}
			picked := remaining[idx]
			remaining = append(remaining[:idx], remaining[idx+1:]...)
			ordered = append(ordered, picked)
			prev = &ordered[len(ordered)-1]
		}
	}
	return ordered, true
}

// WarningText describes why the rest constraint could not be honoured.
func WarningText(teamCount int) string {
	msg := "Some teams play two consecutive matches: no order without back-to-back matches was found."
	if teamCount < MinTeamsForRest {
		msg += " With fewer than 5 teams this is generally impossible."
	}
	return msg
}
