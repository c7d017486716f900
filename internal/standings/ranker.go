package standings

import (
	"sort"

	"github.com/mauv0809/volley-tournament/internal/model"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// RankedTeam is one row of the standings table.
type RankedTeam struct {
	Position int `json:"position"`
	model.Team
	Figures
	SetRatioDisplay   string `json:"set_ratio_display"`
	PointRatioDisplay string `json:"point_ratio_display"`
}

// Ranker orders teams. Names are compared case-insensitively using the
// collation rules of its locale.
type Ranker struct {
	locale language.Tag
}

// NewRanker returns a ranker for the given BCP-47 locale. Unknown or empty
// tags fall back to the root collation.
func NewRanker(locale string) *Ranker {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}
	return &Ranker{locale: tag}
}

// Rank returns the teams sorted by ranking points, set ratio, point ratio,
// set difference, point difference and finally name. The input is not
// modified.
func (r *Ranker) Rank(teams []model.Team) []RankedTeam {
	rows := make([]RankedTeam, len(teams))
	for i, team := range teams {
		rows[i] = RankedTeam{
			Team:              team,
			Figures:           Calculate(team.Tally),
			SetRatioDisplay:   DisplayRatio(team.SetsWon, team.SetsLost),
			PointRatioDisplay: DisplayRatio(team.PointsWon, team.PointsLost),
		}
	}

	// A Collator keeps internal buffers and must not be shared between goroutines.
	col := collate.New(r.locale, collate.IgnoreCase)
	sort.SliceStable(rows, func(i, j int) bool {
		return less(col, rows[i], rows[j])
	})

	for i := range rows {
		rows[i].Position = i + 1
	}
	return rows
}

func less(col *collate.Collator, a, b RankedTeam) bool {
	if a.RankingPoints != b.RankingPoints {
		return a.RankingPoints > b.RankingPoints
	}
	if a.SetRatio != b.SetRatio {
		return a.SetRatio > b.SetRatio
	}
	if a.PointRatio != b.PointRatio {
		return a.PointRatio > b.PointRatio
	}
	if a.SetDiff != b.SetDiff {
		return a.SetDiff > b.SetDiff
	}
	if a.PointDiff != b.PointDiff {
		return a.PointDiff > b.PointDiff
	}
	if c := col.CompareString(a.Name, b.Name); c != 0 {
		return c < 0
	}
	return a.ID < b.ID
}

// DisplayRatio renders won/lost for humans: "0.00" with no games at all,
// the infinity sign when undefeated, otherwise two decimals.
func DisplayRatio(won, lost int) string {
	if won == 0 && lost == 0 {
		return "0.00"
	}
	return NewRatio(won, lost).String()
}
