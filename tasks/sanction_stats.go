package tasks

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"sanction-bot/model"
)

// StatsSource is the part of the sanction store the report reads.
type StatsSource interface {
	IssuedStats(ctx context.Context, guildID string, since time.Time) ([]model.SanctionCount, error)
	CountActive(ctx context.Context, guildID string) (int, error)
}

func GenerateSanctionStatsEmbed(ctx context.Context, src StatsSource, guildID string, now time.Time, duration time.Duration) (*discordgo.MessageEmbed, error) {
	counts, err := src.IssuedStats(ctx, guildID, now.Add(-duration))
	if err != nil {
		return nil, fmt.Errorf("failed to get sanction stats for guild %s: %w", guildID, err)
	}
	active, err := src.CountActive(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to count active sanctions for guild %s: %w", guildID, err)
	}

	perModerator := make(map[string]int)
	perKind := make(map[model.SanctionKind]int)
	var order []string
	total := 0
	for _, c := range counts {
		if _, seen := perModerator[c.ModeratorID]; !seen {
			order = append(order, c.ModeratorID)
		}
		perModerator[c.ModeratorID] += c.Count
		perKind[c.Kind] += c.Count
		total += c.Count
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("### 过去 %s 内处罚统计\n", duration.String()))
	builder.WriteString(fmt.Sprintf("**总计: %d** · 生效中: %d\n\n", total, active))
	for _, kind := range []model.SanctionKind{model.KindMute, model.KindTimedRoleGrant, model.KindTimedRoleRevoke} {
		if n := perKind[kind]; n > 0 {
			builder.WriteString(fmt.Sprintf("- %s: %d\n", kind, n))
		}
	}
	if len(order) > 0 {
		builder.WriteString("\n**管理员统计:**\n")
	}
	for i, moderatorID := range order {
		builder.WriteString(fmt.Sprintf("%d. %s: %d\n", i+1, moderatorMention(moderatorID), perModerator[moderatorID]))
	}

	return &discordgo.MessageEmbed{
		Title:       "处罚统计",
		Description: builder.String(),
		Timestamp:   now.Format(time.RFC3339),
		Color:       0x00ff00,
	}, nil
}

func moderatorMention(id string) string {
	if id == "" || id == model.SystemModeratorID {
		return "系统"
	}
	return "<@" + id + ">"
}

// PostSanctionStats sends the report for guildID to channelID.
func PostSanctionStats(ctx context.Context, s *discordgo.Session, src StatsSource, guildID, channelID string, duration time.Duration) {
	embed, err := GenerateSanctionStatsEmbed(ctx, src, guildID, time.Now(), duration)
	if err != nil {
		log.Printf("Failed to generate sanction stats embed: %v", err)
		return
	}
	if _, err := s.ChannelMessageSendEmbed(channelID, embed); err != nil {
		log.Printf("Failed to send sanction stats to channel %s: %v", channelID, err)
	}
}
