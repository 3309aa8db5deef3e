package dump

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-nhl-metrics/internal/model"
	"github.com/pable/go-nhl-metrics/internal/series"
)

const goalieDoc = `{
	"8471679": {"Name": "Carey Price", "shotsAgainst": [30, 25], "goalsAgainst": [2, 3], "saves": [28, 22]},
	"8476883": {"Name": "Andrei Vasilevskiy", "shotsAgainst": [33], "goalsAgainst": [1], "saves": [32]}
}`

const teamDoc = `{
	"TOR": {"period1Goals": 2, "period2Goals": 1, "period3Goals": 1, "totalGoals": 0,
		"date-data": [{"period1Goals": 1, "period2Goals": 0, "period3Goals": 1},
		              {"period1Goals": 1, "period2Goals": 1, "period3Goals": 0}]}
}`

func TestDetectKind(t *testing.T) {
	cases := map[string]model.Kind{
		"goalie_analysis_2024.json":      model.KindGoalie,
		"data/player_analysis.json.gz":   model.KindSkater,
		"team_analysis.json.zst":         model.KindTeam,
		"data_dump_goals/nhl_goals.json": model.KindTeam,
		"unrelated.json":                 model.KindUnknown,
	}
	for path, want := range cases {
		assert.Equal(t, want, DetectKind(path), path)
	}
}

func TestDecode_Goalie(t *testing.T) {
	f, err := Decode(strings.NewReader(goalieDoc), model.KindUnknown)
	require.NoError(t, err)

	assert.Equal(t, model.KindGoalie, f.Kind)
	require.Len(t, f.Records, 2)
	assert.Equal(t, "8471679", f.Records[0].ID)
	assert.Equal(t, "Carey Price", f.Records[0].Name)
	assert.Equal(t, []int{30, 25}, f.Records[0].Columns["shotsAgainst"])
	_, hasSaves := f.Records[0].Columns["saves"]
	assert.False(t, hasSaves)
}

func TestDecode_TeamUsesIDAsName(t *testing.T) {
	f, err := Decode(strings.NewReader(teamDoc), model.KindTeam)
	require.NoError(t, err)
	require.Len(t, f.Records, 1)
	assert.Equal(t, "TOR", f.Records[0].Name)
	assert.Equal(t, []int{1, 0}, f.Records[0].Columns["period2Goals"])
}

func TestDecode_Malformed(t *testing.T) {
	for _, doc := range []string{
		`[1,2,3]`,
		`{"x": 5}`,
		`{"x": {"goals": [1, "two"]}}`,
		`not json`,
	} {
		_, err := Decode(strings.NewReader(doc), model.KindSkater)
		require.ErrorIs(t, err, series.ErrMalformedRecord, doc)
	}
}

func TestLoad_Compressed(t *testing.T) {
	dir := t.TempDir()

	var gzBuf bytes.Buffer
	gw := gzip.NewWriter(&gzBuf)
	_, err := gw.Write([]byte(goalieDoc))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	gzPath := filepath.Join(dir, "goalie_analysis.json.gz")
	require.NoError(t, os.WriteFile(gzPath, gzBuf.Bytes(), 0o644))

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	zstPath := filepath.Join(dir, "team_analysis.json.zst")
	require.NoError(t, os.WriteFile(zstPath, enc.EncodeAll([]byte(teamDoc), nil), 0o644))
	require.NoError(t, enc.Close())

	g, err := Load(gzPath, model.KindUnknown)
	require.NoError(t, err)
	assert.Equal(t, model.KindGoalie, g.Kind)
	assert.Len(t, g.Records, 2)
	assert.Equal(t, gzPath, g.Path)

	tm, err := Load(zstPath, model.KindUnknown)
	require.NoError(t, err)
	assert.Equal(t, model.KindTeam, tm.Kind)
	assert.Equal(t, model.KindTeam, tm.Records[0].Kind)
}

func TestLoad_LZ4WithKindOverride(t *testing.T) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	_, err := zw.Write([]byte(goalieDoc))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	path := filepath.Join(t.TempDir(), "dump.json.lz4")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	f, err := Load(path, model.KindGoalie)
	require.NoError(t, err)
	assert.Equal(t, model.KindGoalie, f.Kind)
	require.Len(t, f.Records, 2)
	assert.Equal(t, []int{1}, f.Records[1].Columns["goalsAgainst"])
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"), model.KindSkater)
	require.Error(t, err)
}
