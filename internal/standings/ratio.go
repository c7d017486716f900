// Package standings derives ranking points and tie-break ratios from team
// tallies and orders teams into a deterministic table.
package standings

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/mauv0809/volley-tournament/internal/model"
)

const (
	pointsPerWin  = 2
	pointsPerLoss = 1
)

// InfinitySymbol is shown for a ratio with nothing lost and something won.
const InfinitySymbol = "∞"

// Ratio is a won/lost quotient. It is +Inf when nothing was lost.
type Ratio float64

// NewRatio returns won/lost, +Inf for an undefeated record and 0 when both
// counts are zero.
func NewRatio(won, lost int) Ratio {
	if lost > 0 {
		return Ratio(float64(won) / float64(lost))
	}
	if won > 0 {
		return Ratio(math.Inf(1))
	}
	return 0
}

func (r Ratio) IsInf() bool { return math.IsInf(float64(r), 1) }

func (r Ratio) String() string {
	if r.IsInf() {
		return InfinitySymbol
	}
	return fmt.Sprintf("%.2f", float64(r))
}

// MarshalJSON encodes an infinite ratio as null; JSON has no infinity.
func (r Ratio) MarshalJSON() ([]byte, error) {
	if r.IsInf() {
		return []byte("null"), nil
	}
	return json.Marshal(math.Round(float64(r)*1000) / 1000)
}

// Figures are the values derived from one team's tally.
type Figures struct {
	RankingPoints int   `json:"ranking_points"`
	SetRatio      Ratio `json:"set_ratio"`
	PointRatio    Ratio `json:"point_ratio"`
	SetDiff       int   `json:"set_diff"`
	PointDiff     int   `json:"point_diff"`
}

// Calculate derives the ranking figures of a tally.
func Calculate(t model.Tally) Figures {
	return Figures{
		RankingPoints: t.Wins*pointsPerWin + t.Losses*pointsPerLoss,
		SetRatio:      NewRatio(t.SetsWon, t.SetsLost),
		PointRatio:    NewRatio(t.PointsWon, t.PointsLost),
		SetDiff:       t.SetsWon - t.SetsLost,
		PointDiff:     t.PointsWon - t.PointsLost,
	}
}
