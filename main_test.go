// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/electsim/ballotgen"
	"github.com/danielhkuo/electsim/cliparse"
	"github.com/danielhkuo/electsim/election"
)

const raceYAML = `
system: fptp
candidates:
  - {id: a, name: Alice, party_id: P}
  - {id: b, name: Bob, party_id: Q}
parties:
  - {id: P, name: Purple}
  - {id: Q, name: Quince}
candidate_votes: {a: 60, b: 40}
seats: 3
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLoadDefinition(t *testing.T) {
	def, err := loadDefinition(writeFile(t, "race.yaml", raceYAML))
	require.NoError(t, err)

	assert.Equal(t, "fptp", def.System)
	assert.Len(t, def.Candidates, 2)
	assert.Equal(t, "P", def.Candidates[0].PartyID)
	assert.Equal(t, 60.0, def.CandidateVotes["a"])
	assert.Equal(t, 3, def.Seats)

	js := `{"system": "irv", "candidates": [{"id": "a", "name": "A"}], "ballots": [{"preferences": ["a"], "count": 2}]}`
	def, err = loadDefinition(writeFile(t, "race.json", js))
	require.NoError(t, err)
	assert.Equal(t, "irv", def.System)
	require.Len(t, def.Ballots, 1)
	assert.Equal(t, 2.0, def.Ballots[0].Count)

	_, err = loadDefinition(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)

	_, err = loadDefinition(writeFile(t, "bad.yaml", "candidates: [oops"))
	assert.Error(t, err)
}

func TestCalcCommand(t *testing.T) {
	path := writeFile(t, "race.yaml", raceYAML)

	out, err := run(t, "calc", path)
	require.NoError(t, err)

	var res election.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, election.FPTP, res.System)
	assert.Equal(t, []string{"a"}, res.Winners)

	out, err = run(t, "calc", "--system", "party_list", path)
	require.NoError(t, err)
	res = election.Result{}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, election.PartyList, res.System)
	assert.Equal(t, 3, res.TotalSeats)

	_, err = run(t, "calc", "--system", "lottery", path)
	assert.ErrorIs(t, err, election.ErrUnknownSystem)
}

func TestCalcCompare(t *testing.T) {
	path := writeFile(t, "race.yaml", raceYAML+"systems: [fptp, party_list]\n")

	out, err := run(t, "calc", path)
	require.NoError(t, err)

	var cmp []election.Comparison
	require.NoError(t, json.Unmarshal([]byte(out), &cmp))
	require.Len(t, cmp, 2)
	assert.Equal(t, election.FPTP, cmp[0].System)
	assert.Equal(t, election.PartyList, cmp[1].System)
}

func TestGenerateCommand(t *testing.T) {
	args := []string{"generate", "-c", "a, b,c", "-n", "300", "-d", "left", "--seed", "7"}

	first, err := run(t, args...)
	require.NoError(t, err)
	second, err := run(t, args...)
	require.NoError(t, err)
	assert.Equal(t, first, second, "seeded output must be reproducible")

	var res ballotgen.Result
	require.NoError(t, json.Unmarshal([]byte(first), &res))
	assert.Equal(t, 300, res.TotalVoters)
	assert.Equal(t, ballotgen.Left, res.Distribution)

	_, err = run(t, "generate", "-n", "10")
	assert.ErrorIs(t, err, ballotgen.ErrNoCandidates)

	_, err = run(t, "generate", "-c", "a", "-d", "bimodal")
	assert.ErrorIs(t, err, ballotgen.ErrUnknownDistribution)
}

func TestServeRejectsBadConfig(t *testing.T) {
	for _, key := range []string{"ADMIN_KEY_SALT", "SLUG_SALT", "PORT", "DATABASE_TYPE", "DATABASE_URL"} {
		t.Setenv(key, "")
	}

	_, err := run(t, "serve", "-slug-salt", "s2")
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "warn", "json").Info("hidden")
	assert.Empty(t, buf.String())

	newLogger(&buf, "debug", "JSON").Debug("shown", "k", 1)
	assert.True(t, strings.HasPrefix(buf.String(), "{"))
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	newLogger(&buf, "nonsense", "text").Info("plain")
	assert.Contains(t, buf.String(), "msg=plain")
}

func TestOpenDB(t *testing.T) {
	conn, err := openDB(cliparse.Config{DatabaseType: "sqlite", DatabaseURL: ":memory:"})
	require.NoError(t, err)
	defer conn.Close()

	var n int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM scenario").Scan(&n))
	assert.Zero(t, n)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList(" a,b ,, c "))
	assert.Nil(t, splitList(""))
}
