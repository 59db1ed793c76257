package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/horde/internal/game/horde"
)

// EventJournal persists the engine's append-only event stream. Seq is
// the primary key, so replaying a crash-interrupted flush is safe:
// duplicate appends are ignored.
type EventJournal struct {
	db *pgxpool.Pool
}

// NewEventJournal creates an EventJournal backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewEventJournal(db *pgxpool.Pool) *EventJournal {
	return &EventJournal{db: db}
}

// Append writes one event. Appending a Seq that already exists is a
// no-op, never an error.
//
// Precondition: ev.Seq must be > 0.
func (j *EventJournal) Append(ctx context.Context, ev horde.Event) error {
	_, err := j.db.Exec(ctx, `
		INSERT INTO events
			(seq, kind, at, creature_id, owner, from_addr, to_addr, approved,
			 name, dna, attacker_id, defender_id, won, roll)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (seq) DO NOTHING`,
		int64(ev.Seq), string(ev.Kind), ev.At, int64(ev.CreatureID),
		string(ev.Owner), string(ev.From), string(ev.To), string(ev.Approved),
		ev.Name, int64(ev.DNA), int64(ev.AttackerID), int64(ev.DefenderID),
		ev.Won, int64(ev.Roll),
	)
	if err != nil {
		return fmt.Errorf("appending event %d: %w", ev.Seq, err)
	}
	return nil
}

// Range returns events with from <= Seq <= to, ordered by Seq ascending.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (j *EventJournal) Range(ctx context.Context, from, to uint64) ([]horde.Event, error) {
	rows, err := j.db.Query(ctx, `
		SELECT seq, kind, at, creature_id, owner, from_addr, to_addr, approved,
		       name, dna, attacker_id, defender_id, won, roll
		FROM events WHERE seq >= $1 AND seq <= $2 ORDER BY seq ASC`,
		int64(from), int64(to),
	)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	out := make([]horde.Event, 0)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// MaxSeq returns the highest persisted sequence number, or 0 when the
// journal is empty.
func (j *EventJournal) MaxSeq(ctx context.Context) (uint64, error) {
	var seq int64
	err := j.db.QueryRow(ctx, `SELECT COALESCE(MAX(seq), 0) FROM events`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("querying max seq: %w", err)
	}
	return uint64(seq), nil
}

func scanEvent(rows pgx.Rows) (horde.Event, error) {
	var (
		ev                                 horde.Event
		seq, creatureID, dna, attID, defID int64
		roll                               int64
		kind, owner, from, to, approved    string
	)
	if err := rows.Scan(
		&seq, &kind, &ev.At, &creatureID, &owner, &from, &to, &approved,
		&ev.Name, &dna, &attID, &defID, &ev.Won, &roll,
	); err != nil {
		return horde.Event{}, fmt.Errorf("scanning event row: %w", err)
	}
	ev.Seq = uint64(seq)
	ev.Kind = horde.EventKind(kind)
	ev.CreatureID = horde.ID(creatureID)
	ev.Owner = horde.Address(owner)
	ev.From = horde.Address(from)
	ev.To = horde.Address(to)
	ev.Approved = horde.Address(approved)
	ev.DNA = uint64(dna)
	ev.AttackerID = horde.ID(attID)
	ev.DefenderID = horde.ID(defID)
	ev.Roll = uint64(roll)
	return ev, nil
}
