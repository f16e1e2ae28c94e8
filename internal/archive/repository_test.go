package archive

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/outlierline/internal/contracts"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repo := NewRepository(pool)
	require.NoError(t, repo.EnsureSchema(context.Background()))
	return repo
}

func TestSaveRejectsMissingGameID(t *testing.T) {
	repo := NewRepository(nil)
	assert.Error(t, repo.Save(context.Background(), nil))
	assert.Error(t, repo.Save(context.Background(), &contracts.GamePayload{}))
}

func TestRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	actual, avg := 0.52, 0.45
	payload := &contracts.GamePayload{
		GameID:     "0099900001",
		Teams:      []string{"LAL", "BOS"},
		FinalScore: map[string]int{"LAL": 112, "BOS": 108},
		Outliers: []contracts.OutlierGroup{{
			Positive: []contracts.OutlierRecord{{
				Name:        "LeBron James",
				SubjectType: contracts.SubjectPlayer,
				StatKey:     "Base - FG_PCT",
				Actual:      &actual,
				Average:     &avg,
				PlayerID:    "2544",
			}},
		}},
	}

	require.NoError(t, repo.Save(ctx, payload))
	// second save is an upsert
	require.NoError(t, repo.Save(ctx, payload))

	ok, err := repo.IsArchived(ctx, payload.GameID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.Get(ctx, payload.GameID)
	require.NoError(t, err)
	assert.Equal(t, payload.Teams, got.Teams)
	assert.Equal(t, payload.FinalScore, got.FinalScore)
	require.Len(t, got.Outliers, 1)
	assert.Equal(t, "LeBron James", got.Outliers[0].Positive[0].Name)

	entries, err := repo.Recent(ctx, 5)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)

	_, err = repo.Get(ctx, "0099999999")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Delete(ctx, payload.GameID))
	ok, err = repo.IsArchived(ctx, payload.GameID)
	require.NoError(t, err)
	assert.False(t, ok)
}
