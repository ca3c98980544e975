package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed_LoadsSampleProjects(t *testing.T) {
	projects, err := Seed()
	require.NoError(t, err)
	require.Len(t, projects, 6)

	assert.Equal(t, "1", projects[0].ID)
	assert.Equal(t, "Lagos-Ibadan Expressway Rehabilitation", projects[0].Name)

	abuja := projects[1]
	assert.Equal(t, "Abuja Light Rail Project", abuja.Name)
	assert.Equal(t, int64(45_000_000_000), abuja.Budget)
	assert.Equal(t, int64(52_000_000_000), abuja.Spent)
	assert.True(t, abuja.Overrun())
	assert.Equal(t, "2015-07-12", abuja.StartDateString())
}

func TestParse_RejectsDuplicateIDs(t *testing.T) {
	doc := []byte(`
projects:
  - {id: "a", name: One, status: Completed, budget: 1, spent: 1, start_date: "2020-01-01", end_date: "2021-01-01"}
  - {id: "a", name: Two, status: Completed, budget: 1, spent: 1, start_date: "2020-01-01", end_date: "2021-01-01"}
`)
	_, err := Parse(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id")
}

func TestParse_RejectsBadDate(t *testing.T) {
	doc := []byte(`
projects:
  - {id: "a", name: One, status: Completed, budget: 1, spent: 1, start_date: "01/01/2020", end_date: "2021-01-01"}
`)
	_, err := Parse(doc)
	assert.Error(t, err)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.yaml")
	require.NoError(t, os.WriteFile(path, seedYAML, 0o644))

	projects, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, projects, 6)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
