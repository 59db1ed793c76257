package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/horde/internal/game/horde"
	"github.com/cory-johannsen/horde/internal/game/rules"
	"github.com/cory-johannsen/horde/internal/storage/postgres"
	"github.com/cory-johannsen/horde/internal/testutil"
)

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func ownedCreature(id uint64, owner string) horde.OwnedCreature {
	return horde.OwnedCreature{
		Creature: horde.Creature{
			ID:        horde.ID(id),
			Name:      "NoName",
			DNA:       8356281049284737,
			Level:     1,
			ReadyTime: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		Owner: horde.Address(owner),
	}
}

func TestAccountRepository_CreateAndAuthenticate(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewAccountRepository(pool)
	ctx := context.Background()

	username := uniqueName("user")
	acct, err := repo.Create(ctx, username, "password123")
	require.NoError(t, err)
	assert.NotZero(t, acct.ID)
	assert.Equal(t, username, acct.Username)
	assert.Equal(t, postgres.RolePlayer, acct.Role)
	assert.NotEmpty(t, acct.Address)
	assert.False(t, acct.Address.IsBurn())

	got, err := repo.Authenticate(ctx, username, "password123")
	require.NoError(t, err)
	assert.Equal(t, acct.ID, got.ID)
	assert.Equal(t, acct.Address, got.Address)

	_, err = repo.Authenticate(ctx, username, "wrong")
	assert.ErrorIs(t, err, postgres.ErrInvalidCredentials)

	_, err = repo.Authenticate(ctx, uniqueName("ghost"), "password123")
	assert.ErrorIs(t, err, postgres.ErrAccountNotFound)
}

func TestAccountRepository_DuplicateUsername(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewAccountRepository(pool)
	ctx := context.Background()

	username := uniqueName("user")
	_, err := repo.Create(ctx, username, "password123")
	require.NoError(t, err)

	_, err = repo.Create(ctx, username, "different456")
	assert.ErrorIs(t, err, postgres.ErrAccountExists)
}

func TestAccountRepository_GetByAddress(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewAccountRepository(pool)
	ctx := context.Background()

	acct, err := repo.Create(ctx, uniqueName("user"), "password123")
	require.NoError(t, err)

	got, err := repo.GetByAddress(ctx, acct.Address)
	require.NoError(t, err)
	assert.Equal(t, acct.Username, got.Username)

	_, err = repo.GetByAddress(ctx, horde.NewAddress())
	assert.ErrorIs(t, err, postgres.ErrAccountNotFound)
}

func TestAccountRepository_SetRole(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewAccountRepository(pool)
	ctx := context.Background()

	acct, err := repo.Create(ctx, uniqueName("user"), "password123")
	require.NoError(t, err)

	require.NoError(t, repo.SetRole(ctx, acct.ID, postgres.RoleAdmin))
	got, err := repo.GetByUsername(ctx, acct.Username)
	require.NoError(t, err)
	assert.Equal(t, postgres.RoleAdmin, got.Role)

	assert.ErrorIs(t, repo.SetRole(ctx, acct.ID, "overlord"), postgres.ErrInvalidRole)
	assert.ErrorIs(t, repo.SetRole(ctx, acct.ID+10000, postgres.RoleAdmin), postgres.ErrAccountNotFound)
}

func TestCreatureRepository_SaveAndGet(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewCreatureRepository(pool)
	ctx := context.Background()

	oc := ownedCreature(1, "owner-a")
	oc.Creature.Name = "gnasher"
	oc.Creature.WinCount = 3
	oc.Approved = "owner-b"
	require.NoError(t, repo.Save(ctx, oc))

	got, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, oc.Creature.Name, got.Creature.Name)
	assert.Equal(t, oc.Creature.DNA, got.Creature.DNA)
	assert.Equal(t, oc.Creature.WinCount, got.Creature.WinCount)
	assert.Equal(t, oc.Owner, got.Owner)
	assert.Equal(t, oc.Approved, got.Approved)
	assert.True(t, got.Creature.ReadyTime.Equal(oc.Creature.ReadyTime))

	_, err = repo.Get(ctx, 99)
	assert.ErrorIs(t, err, postgres.ErrCreatureNotFound)
}

func TestCreatureRepository_SaveIsUpsert(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewCreatureRepository(pool)
	ctx := context.Background()

	oc := ownedCreature(1, "owner-a")
	require.NoError(t, repo.Save(ctx, oc))

	oc.Creature.Level = 5
	oc.Owner = "owner-b"
	oc.Approved = ""
	require.NoError(t, repo.Save(ctx, oc))

	got, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), got.Creature.Level)
	assert.Equal(t, horde.Address("owner-b"), got.Owner)
	assert.Empty(t, got.Approved)
}

func TestCreatureRepository_SnapshotRoundTrip(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewCreatureRepository(pool)
	ctx := context.Background()

	snapshot := []horde.OwnedCreature{
		ownedCreature(1, "owner-a"),
		ownedCreature(2, "owner-b"),
		ownedCreature(3, "owner-a"),
	}
	snapshot[2].Approved = "owner-b"
	require.NoError(t, repo.SaveAll(ctx, snapshot))

	loaded, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	for i, oc := range loaded {
		assert.Equal(t, snapshot[i].Creature.ID, oc.Creature.ID)
		assert.Equal(t, snapshot[i].Owner, oc.Owner)
		assert.Equal(t, snapshot[i].Approved, oc.Approved)
	}

	// A loaded snapshot must restore into an empty engine.
	r := rules.Default()
	require.NoError(t, r.Validate())
	k := horde.NewKeeper(r, zap.NewNop())
	require.NoError(t, k.Restore(loaded))
	assert.Equal(t, 3, k.Count())
}

func TestEventJournal_AppendAndRange(t *testing.T) {
	pool := testutil.NewPool(t)
	journal := postgres.NewEventJournal(pool)
	ctx := context.Background()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	events := []horde.Event{
		{Seq: 1, Kind: horde.EventCreated, At: at, CreatureID: 1, Owner: "owner-a", Name: "NoName", DNA: 42},
		{Seq: 2, Kind: horde.EventTransfer, At: at, CreatureID: 1, From: "owner-a", To: "owner-b"},
		{Seq: 3, Kind: horde.EventBattleResolved, At: at, AttackerID: 1, DefenderID: 2, Won: true, Roll: 12},
	}
	for _, ev := range events {
		require.NoError(t, journal.Append(ctx, ev))
	}

	got, err := journal.Range(ctx, 1, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, events[0].Owner, got[0].Owner)
	assert.Equal(t, events[1].To, got[1].To)
	assert.True(t, got[2].Won)
	assert.Equal(t, uint64(12), got[2].Roll)

	mid, err := journal.Range(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, mid, 1)
	assert.Equal(t, horde.EventTransfer, mid[0].Kind)

	maxSeq, err := journal.MaxSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), maxSeq)
}

func TestEventJournal_DuplicateSeqIsNoop(t *testing.T) {
	pool := testutil.NewPool(t)
	journal := postgres.NewEventJournal(pool)
	ctx := context.Background()

	ev := horde.Event{Seq: 1, Kind: horde.EventCreated, At: time.Now().UTC(), CreatureID: 1, Owner: "owner-a"}
	require.NoError(t, journal.Append(ctx, ev))

	// Replaying after a crash re-appends already-flushed events.
	ev.Owner = "owner-b"
	require.NoError(t, journal.Append(ctx, ev))

	got, err := journal.Range(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, horde.Address("owner-a"), got[0].Owner)
}

func TestEventJournal_RestartContinuity(t *testing.T) {
	pool := testutil.NewPool(t)
	journal := postgres.NewEventJournal(pool)
	ctx := context.Background()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for seq := uint64(1); seq <= 3; seq++ {
		require.NoError(t, journal.Append(ctx, horde.Event{
			Seq: seq, Kind: horde.EventCreated, At: at, CreatureID: horde.ID(seq), Owner: "owner-a",
		}))
	}

	// A restarted engine resumes its sequence past the persisted journal,
	// so new events land in fresh rows instead of colliding with old ones.
	maxSeq, err := journal.MaxSeq(ctx)
	require.NoError(t, err)

	r := rules.Default()
	require.NoError(t, r.Validate())
	k := horde.NewKeeper(r, zap.NewNop())
	k.Events().Advance(maxSeq)

	_, err = k.CreateRandom("owner-b", "fresh")
	require.NoError(t, err)
	appended := k.Events().Range(maxSeq+1, maxSeq+1)
	require.Len(t, appended, 1)
	require.NoError(t, journal.Append(ctx, appended[0]))

	got, err := journal.Range(ctx, 1, maxSeq+1)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, horde.Address("owner-b"), got[3].Owner)
}

func TestEventJournal_EmptyJournal(t *testing.T) {
	pool := testutil.NewPool(t)
	journal := postgres.NewEventJournal(pool)
	ctx := context.Background()

	maxSeq, err := journal.MaxSeq(ctx)
	require.NoError(t, err)
	assert.Zero(t, maxSeq)

	got, err := journal.Range(ctx, 1, 100)
	require.NoError(t, err)
	assert.Empty(t, got)
}
