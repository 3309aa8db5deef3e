package model

import "testing"

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{
		"skater":  KindSkater,
		"Player":  KindSkater,
		" goalie": KindGoalie,
		"TEAMS":   KindTeam,
		"coach":   KindUnknown,
		"":        KindUnknown,
	}
	for in, want := range cases {
		if got := ParseKind(in); got != want {
			t.Errorf("ParseKind(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDerivedMetricsHaveInputs(t *testing.T) {
	for _, k := range []Kind{KindSkater, KindGoalie, KindTeam} {
		primary := make(map[Metric]bool)
		for _, m := range PrimaryMetrics(k) {
			primary[m] = true
		}
		for _, m := range DerivedMetrics(k) {
			if !m.IsDerived() {
				t.Errorf("%s: %s not marked derived", k, m)
			}
			for _, in := range DerivedInputs[m] {
				if !primary[in] {
					t.Errorf("%s: input %s of %s is not a %s metric", k, in, m, k)
				}
			}
		}
	}
}

func TestLabelFallsBackToKey(t *testing.T) {
	if got := Metric("hits").Label(); got != "hits" {
		t.Errorf("Label() = %q, want %q", got, "hits")
	}
	if got := MetricShotsAgainst.Label(); got != "Shots Against" {
		t.Errorf("Label() = %q", got)
	}
}
