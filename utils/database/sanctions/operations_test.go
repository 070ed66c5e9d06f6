package sanctions

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sanction-bot/model"
	"sanction-bot/sanction"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "sanctions_test.db"))
	require.NoError(t, err, "open db")
	t.Cleanup(func() { store.Close() })
	return store
}

func newRecord(actionID, userID string, kind model.SanctionKind, expiresIn time.Duration) *model.SanctionRecord {
	now := time.Now()
	r := &model.SanctionRecord{
		ActionID:    actionID,
		GuildID:     "guild-1",
		UserID:      userID,
		ModeratorID: "mod-1",
		Kind:        kind,
		Reason:      "spam",
		Duration:    "10m",
		IssuedAt:    now.UnixMilli(),
		Active:      true,
		Metadata:    model.SanctionMetadata{RoleID: "role-1"},
	}
	if expiresIn != 0 {
		r.ExpiresAt = sql.NullInt64{Int64: now.Add(expiresIn).UnixMilli(), Valid: true}
	} else {
		r.Duration = model.PermanentDuration
	}
	return r
}

func TestCreateAndFindOne(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	rec := newRecord("100000000000000001", "user-1", model.KindMute, 10*time.Minute)
	require.NoError(t, store.Create(ctx, rec))

	got, err := store.FindOne(ctx, model.SanctionFilter{ActionID: rec.ActionID})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.UserID, got.UserID)
	assert.Equal(t, model.KindMute, got.Kind)
	assert.True(t, got.Active)
	assert.Equal(t, rec.ExpiresAt, got.ExpiresAt)
	assert.Equal(t, "role-1", got.Metadata.RoleID)

	active := true
	got, err = store.FindOne(ctx, model.SanctionFilter{GuildID: "guild-1", UserID: "user-1", Kind: model.KindMute, Active: &active})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.ActionID, got.ActionID)

	missing, err := store.FindOne(ctx, model.SanctionFilter{ActionID: "999999999999999999"})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPermanentRecordHasNoExpiry(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	rec := newRecord("100000000000000002", "user-1", model.KindTimedRoleGrant, 0)
	require.NoError(t, store.Create(ctx, rec))

	got, err := store.FindOne(ctx, model.SanctionFilter{ActionID: rec.ActionID})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsPermanent())
}

func TestCreateRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Create(ctx, newRecord("100000000000000003", "user-1", model.KindMute, time.Minute)))

	err := store.Create(ctx, newRecord("100000000000000003", "user-2", model.KindMute, time.Minute))
	assert.ErrorIs(t, err, ErrDuplicateActionID)

	err = store.Create(ctx, newRecord("100000000000000004", "user-1", model.KindMute, time.Minute))
	assert.ErrorIs(t, err, sanction.ErrAlreadySanctioned)

	// A different kind for the same user is fine.
	require.NoError(t, store.Create(ctx, newRecord("100000000000000005", "user-1", model.KindTimedRoleGrant, time.Minute)))
}

func TestConditionalDeactivateAppliesOnce(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	rec := newRecord("100000000000000006", "user-1", model.KindMute, time.Minute)
	require.NoError(t, store.Create(ctx, rec))

	info := model.ReversalInfo{By: "mod-2", Reason: "appeal accepted", At: time.Now()}
	prior, err := store.ConditionalDeactivate(ctx, rec.ActionID, info)
	require.NoError(t, err)
	require.NotNil(t, prior)
	assert.Equal(t, rec.ActionID, prior.ActionID)
	assert.False(t, prior.Active)
	assert.Equal(t, "mod-2", prior.EndedBy)
	assert.Equal(t, "appeal accepted", prior.EndReason)
	assert.True(t, prior.EndedAt.Valid)

	again, err := store.ConditionalDeactivate(ctx, rec.ActionID, info)
	require.NoError(t, err)
	assert.Nil(t, again)

	// The freed (guild, user, kind) slot can hold a new active sanction.
	require.NoError(t, store.Create(ctx, newRecord("100000000000000007", "user-1", model.KindMute, time.Minute)))
}

func TestConditionalDeactivateConcurrent(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	rec := newRecord("100000000000000008", "user-1", model.KindMute, time.Minute)
	require.NoError(t, store.Create(ctx, rec))

	const callers = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prior, err := store.ConditionalDeactivate(ctx, rec.ActionID, model.ReversalInfo{By: "system", At: time.Now()})
			assert.NoError(t, err)
			if prior != nil {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, winners)
}

func TestFindAllActiveFiltersKinds(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Create(ctx, newRecord("100000000000000009", "user-1", model.KindMute, 2*time.Minute)))
	require.NoError(t, store.Create(ctx, newRecord("100000000000000010", "user-2", model.KindMute, time.Minute)))
	require.NoError(t, store.Create(ctx, newRecord("100000000000000011", "user-3", model.KindTimedRoleGrant, 0)))
	require.NoError(t, store.Create(ctx, newRecord("100000000000000012", "user-4", model.KindTimedRoleRevoke, time.Minute)))
	_, err := store.ConditionalDeactivate(ctx, "100000000000000012", model.ReversalInfo{At: time.Now()})
	require.NoError(t, err)

	records, err := store.FindAllActive(ctx, []model.SanctionKind{model.KindMute, model.KindTimedRoleGrant, model.KindTimedRoleRevoke})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "100000000000000010", records[0].ActionID, "soonest expiry first")
	assert.Equal(t, "100000000000000009", records[1].ActionID)
	assert.True(t, records[2].IsPermanent(), "permanent last")

	mutes, err := store.FindAllActive(ctx, []model.SanctionKind{model.KindMute})
	require.NoError(t, err)
	assert.Len(t, mutes, 2)
}

func TestUpdateMetadataMerges(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	rec := newRecord("100000000000000013", "user-1", model.KindMute, time.Minute)
	require.NoError(t, store.Create(ctx, rec))

	require.NoError(t, store.UpdateMetadata(ctx, rec.ActionID, model.SanctionMetadata{LogMessageID: "msg-1"}))

	got, err := store.FindOne(ctx, model.SanctionFilter{ActionID: rec.ActionID})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "role-1", got.Metadata.RoleID)
	assert.Equal(t, "msg-1", got.Metadata.LogMessageID)

	err = store.UpdateMetadata(ctx, "999999999999999999", model.SanctionMetadata{LogMessageID: "msg-2"})
	assert.ErrorIs(t, err, sanction.ErrNotFound)
}

func TestFindByUserNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	older := newRecord("100000000000000014", "user-1", model.KindMute, time.Minute)
	older.IssuedAt -= 60_000
	require.NoError(t, store.Create(ctx, older))
	require.NoError(t, store.Create(ctx, newRecord("100000000000000015", "user-1", model.KindTimedRoleGrant, time.Minute)))
	require.NoError(t, store.Create(ctx, newRecord("100000000000000016", "user-2", model.KindMute, time.Minute)))

	records, err := store.FindByUser(ctx, "guild-1", "user-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "100000000000000015", records[0].ActionID)
}

func TestIssuedStatsAndCountActive(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	a := newRecord("100000000000000001", "user-1", model.KindMute, time.Hour)
	b := newRecord("100000000000000002", "user-2", model.KindMute, time.Hour)
	c := newRecord("100000000000000003", "user-3", model.KindTimedRoleGrant, time.Hour)
	c.ModeratorID = "mod-2"
	old := newRecord("100000000000000004", "user-4", model.KindMute, time.Hour)
	old.IssuedAt = time.Now().Add(-48 * time.Hour).UnixMilli()
	for _, r := range []*model.SanctionRecord{a, b, c, old} {
		require.NoError(t, store.Create(ctx, r))
	}
	_, err := store.ConditionalDeactivate(ctx, b.ActionID, model.ReversalInfo{By: "mod-1", At: time.Now()})
	require.NoError(t, err)

	counts, err := store.IssuedStats(ctx, "guild-1", time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, model.SanctionCount{ModeratorID: "mod-1", Kind: model.KindMute, Count: 2}, counts[0])
	assert.Equal(t, model.SanctionCount{ModeratorID: "mod-2", Kind: model.KindTimedRoleGrant, Count: 1}, counts[1])

	active, err := store.CountActive(ctx, "guild-1")
	require.NoError(t, err)
	assert.Equal(t, 3, active)
}
