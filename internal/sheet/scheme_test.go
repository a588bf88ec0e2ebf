package sheet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schemeYAML = `
name: requests-2024
columns:
  task_id: 7329347793014660
  task_type: 292473375248260
  status: 4796073002618756
  team: 7047872816304004
`

func TestParseScheme(t *testing.T) {
	s, err := ParseScheme([]byte(schemeYAML))
	require.NoError(t, err)

	assert.Equal(t, "requests-2024", s.Name)
	col, ok := s.Column(FieldTeam)
	require.True(t, ok)
	assert.Equal(t, int64(7047872816304004), col)

	_, ok = s.Column(FieldSponsor)
	assert.False(t, ok)
}

func TestParseScheme_Errors(t *testing.T) {
	_, err := ParseScheme([]byte("name: [unterminated"))
	assert.Error(t, err)

	_, err = ParseScheme([]byte("name: empty\n"))
	assert.ErrorContains(t, err, "no columns")
}

func TestLoadScheme(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scheme.yaml")
	require.NoError(t, os.WriteFile(path, []byte(schemeYAML), 0o600))

	s, err := LoadScheme(path)
	require.NoError(t, err)
	assert.Len(t, s.Columns, 4)

	_, err = LoadScheme(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPositionalScheme(t *testing.T) {
	s := PositionalScheme("grid", []string{FieldID, FieldStatus})
	assert.Equal(t, map[string]int64{FieldID: 0, FieldStatus: 1}, s.Columns)
	assert.NoError(t, s.Validate())
}

func TestTeamValue(t *testing.T) {
	assert.Equal(t, []string{}, TeamValue(nil))
	assert.Equal(t, []string{}, TeamValue(""))
	assert.Equal(t, []string{"A", "B"}, TeamValue("A, B"))
	assert.Equal(t, []string{"A", "B"}, TeamValue("A, , B"))
	assert.Equal(t, []string{"A"}, TeamValue([]string{"A", ""}))
	assert.Equal(t, []string{"A", "3"}, TeamValue([]any{"A", float64(3)}))
	assert.Equal(t, []string{}, TeamValue(float64(0)))
}

func TestCheckTeam(t *testing.T) {
	assert.NoError(t, CheckTeam(nil))
	assert.NoError(t, CheckTeam([]string{"Ann Lee", "Bo"}))
	assert.ErrorContains(t, CheckTeam([]string{"Ann", " "}), "blank")
	assert.ErrorContains(t, CheckTeam([]string{"Lee, Ann"}), "comma")
}

func TestJoinTeam_RoundTrip(t *testing.T) {
	for _, team := range [][]string{{}, {"Solo"}, {"Ann Lee", "Bo", "Cy"}} {
		require.NoError(t, CheckTeam(team))
		assert.Equal(t, team, TeamValue(JoinTeam(team)))
	}
}
