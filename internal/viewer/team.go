package viewer

import (
	"fmt"

	"github.com/pable/go-nhl-metrics/internal/series"
	"github.com/pable/go-nhl-metrics/internal/stats"
)

// TeamView holds the period-to-period heatmaps and the total goals lines.
type TeamView struct {
	EntityID     string                 `json:"entity_id"`
	EntityName   string                 `json:"entity_name"`
	Games        int                    `json:"games"`
	P1ToP2       stats.TransitionMatrix `json:"p1_to_p2"`
	FirstTwoToP3 stats.TransitionMatrix `json:"first_two_to_p3"`
	Total        stats.Summary          `json:"total_summary"`
	TotalLines   stats.OverUnderCurve   `json:"total_over_under"`
}

// Team builds both transition matrices for b. The combined first-two-periods
// series is paired game by game with period 3.
func Team(b series.TeamSeriesBundle) (TeamView, error) {
	p1p2, err := stats.BuildTransition(b.Period1, b.Period2)
	if err != nil {
		return TeamView{}, fmt.Errorf("period 1 to period 2: %w", err)
	}
	combined, err := stats.BuildTransition(b.FirstTwoPeriods.Values, b.Period3)
	if err != nil {
		return TeamView{}, fmt.Errorf("periods 1+2 to period 3: %w", err)
	}
	return TeamView{
		EntityID:     b.EntityID(),
		EntityName:   b.EntityName(),
		Games:        len(b.Period1),
		P1ToP2:       p1p2,
		FirstTwoToP3: combined,
		Total:        stats.Estimate(b.Total.Values),
		TotalLines:   stats.BuildOverUnder(b.Total.Values),
	}, nil
}
