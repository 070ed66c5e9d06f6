package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sanction-bot/model"
)

type fakeStats struct {
	counts []model.SanctionCount
	active int
	err    error
	since  time.Time
}

func (f *fakeStats) IssuedStats(ctx context.Context, guildID string, since time.Time) ([]model.SanctionCount, error) {
	f.since = since
	return f.counts, f.err
}

func (f *fakeStats) CountActive(ctx context.Context, guildID string) (int, error) {
	return f.active, nil
}

func TestGenerateSanctionStatsEmbed(t *testing.T) {
	now := time.Date(2026, 3, 2, 5, 0, 0, 0, time.UTC)
	src := &fakeStats{
		counts: []model.SanctionCount{
			{ModeratorID: "mod-1", Kind: model.KindMute, Count: 3},
			{ModeratorID: "mod-2", Kind: model.KindMute, Count: 2},
			{ModeratorID: "mod-1", Kind: model.KindTimedRoleGrant, Count: 1},
		},
		active: 4,
	}

	embed, err := GenerateSanctionStatsEmbed(context.Background(), src, "g", now, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-24*time.Hour), src.since)
	assert.Contains(t, embed.Description, "**总计: 6** · 生效中: 4")
	assert.Contains(t, embed.Description, "- mute: 5")
	assert.Contains(t, embed.Description, "1. <@mod-1>: 4")
	assert.Contains(t, embed.Description, "2. <@mod-2>: 2")
	assert.NotContains(t, embed.Description, "timed_role_revoke")
}

func TestGenerateSanctionStatsEmbedError(t *testing.T) {
	_, err := GenerateSanctionStatsEmbed(context.Background(), &fakeStats{err: errors.New("db locked")}, "g", time.Now(), time.Hour)
	assert.Error(t, err)
}
