package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/arena/internal/game/encounter"
)

// ErrEncounterNotFound is returned when an encounter lookup yields no results.
var ErrEncounterNotFound = errors.New("encounter not found")

// ErrEncounterOngoing is returned when recording a summary that has no outcome yet.
var ErrEncounterOngoing = errors.New("encounter has not ended")

// PlayerRecord aggregates every recorded encounter of one player.
type PlayerRecord struct {
	PlayerID    string
	Encounters  int
	Victories   int
	Defeats     int
	Fled        int
	DamageDealt int
	DamageTaken int
	BestCombo   int
}

// EncounterRepository persists finished encounter summaries for scoring outside the combat core.
type EncounterRepository struct {
	db *pgxpool.Pool
}

// NewEncounterRepository creates an EncounterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewEncounterRepository(db *pgxpool.Pool) *EncounterRepository {
	return &EncounterRepository{db: db}
}

const encounterColumns = `id, player_id, player_class, opponent_id, opponent_class, difficulty,
	outcome, turns, rounds, seed, damage_dealt, damage_taken, max_combo_length,
	combos_triggered, criticals, skills_used, started_at, ended_at`

// Record stores sum. Recording the same encounter twice keeps the first row.
//
// Precondition: sum.Outcome must be terminal.
// Postcondition: Returns ErrEncounterOngoing for an ongoing summary; otherwise the
// row exists after a nil return.
func (r *EncounterRepository) Record(ctx context.Context, sum encounter.Summary) error {
	if sum.Outcome == encounter.OutcomeOngoing {
		return fmt.Errorf("recording encounter %s: %w", sum.ID, ErrEncounterOngoing)
	}
	st := sum.Stats
	_, err := r.db.Exec(ctx,
		`INSERT INTO encounters (`+encounterColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		 ON CONFLICT (id) DO NOTHING`,
		sum.ID, sum.PlayerID, sum.PlayerClass, sum.OpponentID, sum.OpponentClass, sum.Difficulty,
		sum.Outcome.String(), sum.Turn, st.Rounds, int64(sum.Seed), st.DamageDealt, st.DamageTaken,
		st.MaxComboLength, st.CombosTriggered, st.Criticals, st.SkillsUsed, sum.StartedAt, sum.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting encounter %s: %w", sum.ID, err)
	}
	return nil
}

// Get retrieves one recorded encounter.
//
// Postcondition: Returns ErrEncounterNotFound when no row has id.
func (r *EncounterRepository) Get(ctx context.Context, id uuid.UUID) (encounter.Summary, error) {
	row := r.db.QueryRow(ctx, `SELECT `+encounterColumns+` FROM encounters WHERE id = $1`, id)
	sum, err := scanSummary(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return encounter.Summary{}, ErrEncounterNotFound
		}
		return encounter.Summary{}, fmt.Errorf("querying encounter %s: %w", id, err)
	}
	return sum, nil
}

// ListRecent returns up to limit encounters, most recently ended first.
// An empty playerID lists every player.
//
// Precondition: limit > 0.
func (r *EncounterRepository) ListRecent(ctx context.Context, playerID string, limit int) ([]encounter.Summary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+encounterColumns+` FROM encounters
		 WHERE $1 = '' OR player_id = $1
		 ORDER BY ended_at DESC, id
		 LIMIT $2`,
		playerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing encounters: %w", err)
	}
	defer rows.Close()

	var out []encounter.Summary
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning encounter: %w", err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing encounters: %w", err)
	}
	return out, nil
}

// PlayerRecord aggregates the recorded encounters of playerID.
//
// Postcondition: A player with no encounters yields a zero record carrying playerID.
func (r *EncounterRepository) PlayerRecord(ctx context.Context, playerID string) (PlayerRecord, error) {
	rec := PlayerRecord{PlayerID: playerID}
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE outcome = 'victory'),
		        COUNT(*) FILTER (WHERE outcome = 'defeat'),
		        COUNT(*) FILTER (WHERE outcome = 'fled'),
		        COALESCE(SUM(damage_dealt), 0),
		        COALESCE(SUM(damage_taken), 0),
		        COALESCE(MAX(max_combo_length), 0)
		 FROM encounters WHERE player_id = $1`,
		playerID,
	).Scan(&rec.Encounters, &rec.Victories, &rec.Defeats, &rec.Fled, &rec.DamageDealt, &rec.DamageTaken, &rec.BestCombo)
	if err != nil {
		return PlayerRecord{}, fmt.Errorf("aggregating encounters for %q: %w", playerID, err)
	}
	return rec, nil
}

func scanSummary(row pgx.Row) (encounter.Summary, error) {
	var (
		sum     encounter.Summary
		outcome string
		seed    int64
	)
	st := &sum.Stats
	err := row.Scan(
		&sum.ID, &sum.PlayerID, &sum.PlayerClass, &sum.OpponentID, &sum.OpponentClass, &sum.Difficulty,
		&outcome, &sum.Turn, &st.Rounds, &seed, &st.DamageDealt, &st.DamageTaken, &st.MaxComboLength,
		&st.CombosTriggered, &st.Criticals, &st.SkillsUsed, &sum.StartedAt, &sum.EndedAt,
	)
	if err != nil {
		return encounter.Summary{}, err
	}
	if sum.Outcome, err = encounter.ParseOutcome(outcome); err != nil {
		return encounter.Summary{}, err
	}
	sum.Seed = uint64(seed)
	sum.Round = st.Rounds
	sum.State = outcome
	return sum, nil
}
