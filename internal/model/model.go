package model

import "strings"

// Kind identifies which family of entity a record describes.
type Kind int

const (
	KindUnknown Kind = 0
	KindSkater  Kind = 1
	KindGoalie  Kind = 2
	KindTeam    Kind = 3
)

func (k Kind) String() string {
	switch k {
	case KindSkater:
		return "skater"
	case KindGoalie:
		return "goalie"
	case KindTeam:
		return "team"
	default:
		return "?"
	}
}

// ParseKind maps a user-facing name to a Kind. "player" is accepted for skaters.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "skater", "player", "players", "skaters":
		return KindSkater
	case "goalie", "goalies", "goaltender":
		return KindGoalie
	case "team", "teams":
		return KindTeam
	default:
		return KindUnknown
	}
}

// Metric names a per-game counting statistic. The string value is the key
// used in dump files and in the series table.
type Metric string

// ---- Primitive metrics (present in dump files) ----

const (
	MetricGoals        Metric = "goals"
	MetricAssists      Metric = "assists"
	MetricShots        Metric = "shots"
	MetricShotsAgainst Metric = "shotsAgainst"
	MetricGoalsAgainst Metric = "goalsAgainst"
	MetricPeriod1Goals Metric = "period1Goals"
	MetricPeriod2Goals Metric = "period2Goals"
	MetricPeriod3Goals Metric = "period3Goals"
)

// ---- Derived metrics (computed element-wise from primitives) ----

const (
	MetricPoints          Metric = "points"
	MetricSaves           Metric = "saves"
	MetricFirstTwoPeriods Metric = "firstTwoPeriodsGoals"
	MetricTotalGoals      Metric = "totalGoals"
)

// Label returns the human-readable axis/table label for m.
func (m Metric) Label() string {
	switch m {
	case MetricGoals:
		return "Goals"
	case MetricAssists:
		return "Assists"
	case MetricShots:
		return "Shots"
	case MetricShotsAgainst:
		return "Shots Against"
	case MetricGoalsAgainst:
		return "Goals Against"
	case MetricPeriod1Goals:
		return "1st Period Goals"
	case MetricPeriod2Goals:
		return "2nd Period Goals"
	case MetricPeriod3Goals:
		return "3rd Period Goals"
	case MetricPoints:
		return "Points"
	case MetricSaves:
		return "Saves"
	case MetricFirstTwoPeriods:
		return "1st+2nd Period Goals"
	case MetricTotalGoals:
		return "Total Goals"
	default:
		return string(m)
	}
}

// IsDerived reports whether m is computed from other metrics rather than read.
func (m Metric) IsDerived() bool {
	_, ok := DerivedInputs[m]
	return ok
}

// DerivedInputs lists the operands of each derived metric. Saves is the only
// subtraction: shotsAgainst minus goalsAgainst. All others are sums.
var DerivedInputs = map[Metric][]Metric{
	MetricPoints:          {MetricGoals, MetricAssists},
	MetricSaves:           {MetricShotsAgainst, MetricGoalsAgainst},
	MetricFirstTwoPeriods: {MetricPeriod1Goals, MetricPeriod2Goals},
	MetricTotalGoals:      {MetricPeriod1Goals, MetricPeriod2Goals, MetricPeriod3Goals},
}

// PrimaryMetrics returns the primitive metrics stored for an entity kind.
func PrimaryMetrics(k Kind) []Metric {
	switch k {
	case KindSkater:
		return []Metric{MetricGoals, MetricAssists, MetricShots}
	case KindGoalie:
		return []Metric{MetricShotsAgainst, MetricGoalsAgainst}
	case KindTeam:
		return []Metric{MetricPeriod1Goals, MetricPeriod2Goals, MetricPeriod3Goals}
	default:
		return nil
	}
}

// DerivedMetrics returns the derived metrics valid for an entity kind.
func DerivedMetrics(k Kind) []Metric {
	switch k {
	case KindSkater:
		return []Metric{MetricPoints}
	case KindGoalie:
		return []Metric{MetricSaves}
	case KindTeam:
		return []Metric{MetricFirstTwoPeriods, MetricTotalGoals}
	default:
		return nil
	}
}

// RawRecord is one entity as delivered by the data-fetch collaborator,
// already column-oriented: one list of per-game values per primitive metric.
type RawRecord struct {
	ID      string
	Kind    Kind
	Name    string
	Columns map[string][]int
}

// Entity is the stored header row for a skater, goalie or team.
type Entity struct {
	ID         string
	Kind       Kind
	Name       string
	Games      int
	SourceFile string
	ImportedAt string
}
