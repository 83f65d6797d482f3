package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/arena/internal/game/encounter"
	"github.com/cory-johannsen/arena/internal/storage/postgres"
	"github.com/cory-johannsen/arena/internal/testutil"
)

func uniquePlayer(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func makeSummary(player string, outcome encounter.Outcome, ended time.Time) encounter.Summary {
	return encounter.Summary{
		ID:            uuid.New(),
		PlayerID:      player,
		PlayerClass:   "warrior",
		OpponentID:    "opponent",
		OpponentClass: "mage",
		Difficulty:    "normal",
		Outcome:       outcome,
		State:         outcome.String(),
		Turn:          9,
		Round:         5,
		Seed:          42,
		Stats: encounter.Stats{
			DamageDealt: 120, DamageTaken: 60, Rounds: 5,
			MaxComboLength: 2, CombosTriggered: 1, Criticals: 1, SkillsUsed: 3,
		},
		StartedAt: ended.Add(-time.Minute),
		EndedAt:   ended,
	}
}

func TestEncounterRepository_RecordAndGet(t *testing.T) {
	repo := postgres.NewEncounterRepository(testutil.NewPool(t))
	ctx := context.Background()
	ended := time.Now().UTC().Truncate(time.Microsecond)

	sum := makeSummary(uniquePlayer("hero"), encounter.OutcomeVictory, ended)
	require.NoError(t, repo.Record(ctx, sum))
	require.NoError(t, repo.Record(ctx, sum), "re-recording is a no-op")

	got, err := repo.Get(ctx, sum.ID)
	require.NoError(t, err)
	assert.Equal(t, sum.ID, got.ID)
	assert.Equal(t, sum.PlayerID, got.PlayerID)
	assert.Equal(t, encounter.OutcomeVictory, got.Outcome)
	assert.Equal(t, sum.Stats, got.Stats)
	assert.Equal(t, uint64(42), got.Seed)
	assert.True(t, ended.Equal(got.EndedAt))

	_, err = repo.Get(ctx, uuid.New())
	assert.True(t, errors.Is(err, postgres.ErrEncounterNotFound))
}

func TestEncounterRepository_RejectsOngoing(t *testing.T) {
	repo := postgres.NewEncounterRepository(testutil.NewPool(t))
	err := repo.Record(context.Background(), makeSummary("p", encounter.OutcomeOngoing, time.Now()))
	assert.True(t, errors.Is(err, postgres.ErrEncounterOngoing))
}

func TestEncounterRepository_ListRecentAndPlayerRecord(t *testing.T) {
	repo := postgres.NewEncounterRepository(testutil.NewPool(t))
	ctx := context.Background()
	player := uniquePlayer("ranger")
	base := time.Now().UTC().Truncate(time.Second)

	outcomes := []encounter.Outcome{encounter.OutcomeVictory, encounter.OutcomeDefeat, encounter.OutcomeFled, encounter.OutcomeVictory}
	for i, o := range outcomes {
		require.NoError(t, repo.Record(ctx, makeSummary(player, o, base.Add(time.Duration(i)*time.Minute))))
	}
	require.NoError(t, repo.Record(ctx, makeSummary(uniquePlayer("other"), encounter.OutcomeDefeat, base)))

	recent, err := repo.ListRecent(ctx, player, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, encounter.OutcomeVictory, recent[0].Outcome)
	assert.True(t, recent[0].EndedAt.After(recent[1].EndedAt))

	all, err := repo.ListRecent(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	rec, err := repo.PlayerRecord(ctx, player)
	require.NoError(t, err)
	assert.Equal(t, postgres.PlayerRecord{
		PlayerID: player, Encounters: 4, Victories: 2, Defeats: 1, Fled: 1,
		DamageDealt: 480, DamageTaken: 240, BestCombo: 2,
	}, rec)

	empty, err := repo.PlayerRecord(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, postgres.PlayerRecord{PlayerID: "nobody"}, empty)
}
