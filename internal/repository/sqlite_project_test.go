package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/budeshi/budeshi/internal/domain"
	"github.com/budeshi/budeshi/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeededSQLiteRepo(t *testing.T) *SQLiteProjectRepo {
	t.Helper()
	repo := NewSQLiteProjectRepo(testutil.NewTestDB(t))
	seeded, err := repo.SeedIfEmpty(context.Background(), testutil.SampleProjects())
	require.NoError(t, err)
	require.True(t, seeded)
	return repo
}

func TestSQLiteProjectRepo_FindByID(t *testing.T) {
	repo := newSeededSQLiteRepo(t)
	ctx := context.Background()

	p, err := repo.FindByID(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "Abuja Light Rail Project", p.Name)
	assert.Equal(t, int64(52_000_000_000), p.Spent)
	assert.Equal(t, "2022-05-20", p.EndDateString())

	_, err = repo.FindByID(ctx, "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteProjectRepo_SearchMatchesMemory(t *testing.T) {
	repo := newSeededSQLiteRepo(t)
	ctx := context.Background()
	sample := testutil.SampleProjects()

	for _, term := range []string{"abuja", "ABUJA", "lagos", "julius", "nationwide", "1", "", "zzz"} {
		got, err := repo.Search(ctx, term)
		require.NoError(t, err, term)
		assert.Equal(t, names(rankSearch(sample, term)), names(got), term)
	}
}

func TestSQLiteProjectRepo_SearchExactIDFirst(t *testing.T) {
	repo := NewSQLiteProjectRepo(testutil.NewTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Add(ctx, testutil.NewTestProject("Phase 9 works", testutil.WithID("a"))))
	require.NoError(t, repo.Add(ctx, testutil.NewTestProject("Other", testutil.WithID("9"))))

	got, err := repo.Search(ctx, "9")
	require.NoError(t, err)
	assert.Equal(t, []string{"Other", "Phase 9 works"}, names(got))
}

func TestSQLiteProjectRepo_UpdateKeepsOrder(t *testing.T) {
	repo := newSeededSQLiteRepo(t)
	ctx := context.Background()

	p, err := repo.FindByID(ctx, "1")
	require.NoError(t, err)
	p.Status = domain.StatusCompleted
	require.NoError(t, repo.Update(ctx, p))

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", all[0].ID)
	assert.Equal(t, domain.StatusCompleted, all[0].Status)
}

func TestSQLiteProjectRepo_DuplicateAndMissing(t *testing.T) {
	repo := newSeededSQLiteRepo(t)
	ctx := context.Background()

	dup := testutil.NewTestProject("Dup", testutil.WithID("3"))
	assert.ErrorIs(t, repo.Add(ctx, dup), ErrDuplicateID)
	assert.ErrorIs(t, repo.Delete(ctx, "missing"), ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, testutil.NewTestProject("Ghost")), ErrNotFound)

	require.NoError(t, repo.Delete(ctx, "3"))
	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestSQLiteProjectRepo_SeedIfEmptyOnlyOnce(t *testing.T) {
	repo := newSeededSQLiteRepo(t)
	seeded, err := repo.SeedIfEmpty(context.Background(), testutil.SampleProjects())
	require.NoError(t, err)
	assert.False(t, seeded)

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestSQLiteProjectRepo_ImportRollsBack(t *testing.T) {
	database := testutil.NewTestDB(t)
	boom := errors.New("disk full")
	repo := NewSQLiteProjectRepo(database).WithUnitOfWork(&testutil.FailNthExec{
		DB: database, N: 2, Err: boom,
	})
	ctx := context.Background()

	err := repo.Import(ctx, []domain.Project{
		*testutil.NewTestProject("First"),
		*testutil.NewTestProject("Second"),
	})
	require.ErrorIs(t, err, boom)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "a failed import leaves nothing behind")
}

func TestSQLiteProjectRepo_ImportRejectsDuplicateWithinBatch(t *testing.T) {
	repo := NewSQLiteProjectRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	p := *testutil.NewTestProject("Twice", testutil.WithID("t"))
	err := repo.Import(ctx, []domain.Project{p, p})
	assert.ErrorIs(t, err, ErrDuplicateID)

	n, _ := repo.Count(ctx)
	assert.Zero(t, n)
}
