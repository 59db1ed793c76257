package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/horde/internal/game/horde"
)

// ErrCreatureNotFound is returned when a creature lookup yields no results.
var ErrCreatureNotFound = errors.New("creature not found")

// CreatureRepository persists creature snapshots with their ownership
// and approval state. The engine is the source of truth; rows here are
// write-behind copies used for warm starts, so every write is an upsert
// keyed by creature id.
type CreatureRepository struct {
	db *pgxpool.Pool
}

// NewCreatureRepository creates a CreatureRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCreatureRepository(db *pgxpool.Pool) *CreatureRepository {
	return &CreatureRepository{db: db}
}

// Save upserts a single creature row.
//
// Precondition: oc.Creature.ID must be > 0; oc.Owner must be non-empty.
// Postcondition: The row matches oc exactly, whether it existed before or not.
func (r *CreatureRepository) Save(ctx context.Context, oc horde.OwnedCreature) error {
	_, err := r.db.Exec(ctx, creatureUpsertSQL, creatureUpsertArgs(oc)...)
	if err != nil {
		return fmt.Errorf("upserting creature %d: %w", oc.Creature.ID, err)
	}
	return nil
}

// SaveAll upserts a full snapshot in a single transaction.
//
// Precondition: snapshot entries must have distinct ids.
// Postcondition: Either every row is written or none are.
func (r *CreatureRepository) SaveAll(ctx context.Context, snapshot []horde.OwnedCreature) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning snapshot tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, oc := range snapshot {
		if _, err := tx.Exec(ctx, creatureUpsertSQL, creatureUpsertArgs(oc)...); err != nil {
			return fmt.Errorf("upserting creature %d: %w", oc.Creature.ID, err)
		}
	}
	return tx.Commit(ctx)
}

// Get retrieves one creature row by id.
//
// Postcondition: Returns the row or ErrCreatureNotFound.
func (r *CreatureRepository) Get(ctx context.Context, id horde.ID) (horde.OwnedCreature, error) {
	var oc horde.OwnedCreature
	err := r.db.QueryRow(ctx, `
		SELECT id, name, dna, level, ready_time, win_count, loss_count, owner, approved
		FROM creatures WHERE id = $1`,
		int64(id),
	).Scan(
		&oc.Creature.ID, &oc.Creature.Name, &oc.Creature.DNA, &oc.Creature.Level,
		&oc.Creature.ReadyTime, &oc.Creature.WinCount, &oc.Creature.LossCount,
		&oc.Owner, &oc.Approved,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return horde.OwnedCreature{}, ErrCreatureNotFound
		}
		return horde.OwnedCreature{}, fmt.Errorf("querying creature: %w", err)
	}
	return oc, nil
}

// LoadAll returns every creature row ordered by id ascending, the shape
// Keeper.Restore expects.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *CreatureRepository) LoadAll(ctx context.Context) ([]horde.OwnedCreature, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, dna, level, ready_time, win_count, loss_count, owner, approved
		FROM creatures ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("loading creatures: %w", err)
	}
	defer rows.Close()

	out := make([]horde.OwnedCreature, 0)
	for rows.Next() {
		var oc horde.OwnedCreature
		if err := rows.Scan(
			&oc.Creature.ID, &oc.Creature.Name, &oc.Creature.DNA, &oc.Creature.Level,
			&oc.Creature.ReadyTime, &oc.Creature.WinCount, &oc.Creature.LossCount,
			&oc.Owner, &oc.Approved,
		); err != nil {
			return nil, fmt.Errorf("scanning creature row: %w", err)
		}
		out = append(out, oc)
	}
	return out, rows.Err()
}

const creatureUpsertSQL = `
	INSERT INTO creatures
		(id, name, dna, level, ready_time, win_count, loss_count, owner, approved, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		dna = EXCLUDED.dna,
		level = EXCLUDED.level,
		ready_time = EXCLUDED.ready_time,
		win_count = EXCLUDED.win_count,
		loss_count = EXCLUDED.loss_count,
		owner = EXCLUDED.owner,
		approved = EXCLUDED.approved,
		updated_at = NOW()`

func creatureUpsertArgs(oc horde.OwnedCreature) []any {
	return []any{
		int64(oc.Creature.ID), oc.Creature.Name, int64(oc.Creature.DNA),
		int32(oc.Creature.Level), oc.Creature.ReadyTime,
		int32(oc.Creature.WinCount), int32(oc.Creature.LossCount),
		string(oc.Owner), string(oc.Approved),
	}
}
