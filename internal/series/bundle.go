package series

import (
	"fmt"

	"github.com/pable/go-nhl-metrics/internal/model"
)

// Bundle is the common view over the typed series bundles.
type Bundle interface {
	EntityID() string
	EntityName() string
	EntityKind() model.Kind
	Metrics() []model.Metric
	Series(m model.Metric) ([]int, bool)
	Derived(m model.Metric) (Derived, bool)
}

// header carries the identity shared by every bundle.
type header struct {
	ID   string
	Name string
}

func (h header) EntityID() string   { return h.ID }
func (h header) EntityName() string { return h.Name }

// SkaterSeriesBundle holds the per-game series valid for a skater.
type SkaterSeriesBundle struct {
	header
	Goals   []int
	Assists []int
	Shots   []int
	Points  Derived
}

// GoalieSeriesBundle holds the per-game series valid for a goalie.
type GoalieSeriesBundle struct {
	header
	ShotsAgainst []int
	GoalsAgainst []int
	Saves        Derived
}

// TeamSeriesBundle holds the per-game period goal series for a team.
type TeamSeriesBundle struct {
	header
	Period1         []int
	Period2         []int
	Period3         []int
	FirstTwoPeriods Derived
	Total           Derived
}

// Skater extracts a SkaterSeriesBundle from raw.
func Skater(raw any) (SkaterSeriesBundle, error) {
	ex, err := Extract(raw, append(model.PrimaryMetrics(model.KindSkater), model.DerivedMetrics(model.KindSkater)...))
	if err != nil {
		return SkaterSeriesBundle{}, fmt.Errorf("extract skater: %w", err)
	}
	return SkaterSeriesBundle{
		header:  header{ID: ex.ID, Name: ex.Name},
		Goals:   ex.Primary[model.MetricGoals],
		Assists: ex.Primary[model.MetricAssists],
		Shots:   ex.Primary[model.MetricShots],
		Points:  ex.Derived[model.MetricPoints],
	}, nil
}

// Goalie extracts a GoalieSeriesBundle from raw. Saves are always derived
// from shots against minus goals against.
func Goalie(raw any) (GoalieSeriesBundle, error) {
	ex, err := Extract(raw, append(model.PrimaryMetrics(model.KindGoalie), model.DerivedMetrics(model.KindGoalie)...))
	if err != nil {
		return GoalieSeriesBundle{}, fmt.Errorf("extract goalie: %w", err)
	}
	return GoalieSeriesBundle{
		header:       header{ID: ex.ID, Name: ex.Name},
		ShotsAgainst: ex.Primary[model.MetricShotsAgainst],
		GoalsAgainst: ex.Primary[model.MetricGoalsAgainst],
		Saves:        ex.Derived[model.MetricSaves],
	}, nil
}

// Team extracts a TeamSeriesBundle from raw.
func Team(raw any) (TeamSeriesBundle, error) {
	ex, err := Extract(raw, append(model.PrimaryMetrics(model.KindTeam), model.DerivedMetrics(model.KindTeam)...))
	if err != nil {
		return TeamSeriesBundle{}, fmt.Errorf("extract team: %w", err)
	}
	return TeamSeriesBundle{
		header:          header{ID: ex.ID, Name: ex.Name},
		Period1:         ex.Primary[model.MetricPeriod1Goals],
		Period2:         ex.Primary[model.MetricPeriod2Goals],
		Period3:         ex.Primary[model.MetricPeriod3Goals],
		FirstTwoPeriods: ex.Derived[model.MetricFirstTwoPeriods],
		Total:           ex.Derived[model.MetricTotalGoals],
	}, nil
}

// FromRecord builds the bundle matching rec.Kind.
func FromRecord(rec model.RawRecord) (Bundle, error) {
	switch rec.Kind {
	case model.KindSkater:
		b, err := Skater(rec)
		return b, err
	case model.KindGoalie:
		b, err := Goalie(rec)
		return b, err
	case model.KindTeam:
		b, err := Team(rec)
		return b, err
	default:
		return nil, fmt.Errorf("%w: unknown entity kind for %q", ErrMalformedRecord, rec.ID)
	}
}

func (SkaterSeriesBundle) EntityKind() model.Kind { return model.KindSkater }

func (SkaterSeriesBundle) Metrics() []model.Metric {
	return []model.Metric{model.MetricPoints, model.MetricGoals, model.MetricAssists, model.MetricShots}
}

func (b SkaterSeriesBundle) Series(m model.Metric) ([]int, bool) {
	switch m {
	case model.MetricGoals:
		return b.Goals, true
	case model.MetricAssists:
		return b.Assists, true
	case model.MetricShots:
		return b.Shots, true
	case model.MetricPoints:
		return b.Points.Values, true
	}
	return nil, false
}

func (GoalieSeriesBundle) EntityKind() model.Kind { return model.KindGoalie }

func (GoalieSeriesBundle) Metrics() []model.Metric {
	return []model.Metric{model.MetricShotsAgainst, model.MetricSaves, model.MetricGoalsAgainst}
}

func (b GoalieSeriesBundle) Series(m model.Metric) ([]int, bool) {
	switch m {
	case model.MetricShotsAgainst:
		return b.ShotsAgainst, true
	case model.MetricGoalsAgainst:
		return b.GoalsAgainst, true
	case model.MetricSaves:
		return b.Saves.Values, true
	}
	return nil, false
}

func (TeamSeriesBundle) EntityKind() model.Kind { return model.KindTeam }

func (TeamSeriesBundle) Metrics() []model.Metric {
	return []model.Metric{
		model.MetricPeriod1Goals, model.MetricPeriod2Goals, model.MetricPeriod3Goals,
		model.MetricFirstTwoPeriods, model.MetricTotalGoals,
	}
}

func (b TeamSeriesBundle) Series(m model.Metric) ([]int, bool) {
	switch m {
	case model.MetricPeriod1Goals:
		return b.Period1, true
	case model.MetricPeriod2Goals:
		return b.Period2, true
	case model.MetricPeriod3Goals:
		return b.Period3, true
	case model.MetricFirstTwoPeriods:
		return b.FirstTwoPeriods.Values, true
	case model.MetricTotalGoals:
		return b.Total.Values, true
	}
	return nil, false
}

func (b SkaterSeriesBundle) Derived(m model.Metric) (Derived, bool) {
	if m == model.MetricPoints {
		return b.Points, true
	}
	return Derived{}, false
}

func (b GoalieSeriesBundle) Derived(m model.Metric) (Derived, bool) {
	if m == model.MetricSaves {
		return b.Saves, true
	}
	return Derived{}, false
}

func (b TeamSeriesBundle) Derived(m model.Metric) (Derived, bool) {
	switch m {
	case model.MetricFirstTwoPeriods:
		return b.FirstTwoPeriods, true
	case model.MetricTotalGoals:
		return b.Total, true
	}
	return Derived{}, false
}
