package sanction_handler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"sanction-bot/model"
	"sanction-bot/sanction"
)

const (
	colorIssued   = 0xE67E22
	colorReversed = 0x2ECC71
	colorInfo     = 0x5865F2
)

var kindNames = map[model.SanctionKind]string{
	model.KindMute:            "禁言",
	model.KindTimedRoleGrant:  "临时授予身份组",
	model.KindTimedRoleRevoke: "临时移除身份组",
}

func kindName(kind model.SanctionKind) string {
	if name, ok := kindNames[kind]; ok {
		return name
	}
	return string(kind)
}

// describeError turns an engine error into a reply for the moderator.
func describeError(err error) string {
	switch {
	case errors.Is(err, sanction.ErrMalformedDuration):
		return "无效的时长，请使用 10m、2h、7d 这样的格式，或 forever 表示永久。"
	case errors.Is(err, sanction.ErrAlreadySanctioned):
		return "该用户已有同类型的生效中处罚。"
	case errors.Is(err, sanction.ErrNotFound):
		return "找不到相关的处罚记录。"
	case errors.Is(err, sanction.ErrMemberAbsent):
		return "该用户已不在服务器中。"
	case errors.Is(err, sanction.ErrEffectFailed):
		return "操作 Discord 失败，请检查机器人的权限与身份组层级。"
	case errors.Is(err, sanction.ErrStoreUnavailable):
		return "数据库暂时不可用，请稍后重试。"
	case errors.Is(err, sanction.ErrGenerationExhausted), errors.Is(err, sanction.ErrDuplicateActionID):
		return "无法生成处罚 ID，请稍后重试。"
	case errors.Is(err, sanction.ErrSweepInProgress):
		return "巡检正在进行中。"
	case errors.Is(err, sanction.ErrUnknownKind), errors.Is(err, sanction.ErrInvalidRequest):
		return "请求无效。"
	default:
		return "发生未知错误。"
	}
}

func formatExpiry(r *model.SanctionRecord) string {
	expiry, ok := r.ExpiryTime()
	if !ok {
		return "永久"
	}
	return fmt.Sprintf("<t:%d:F> (<t:%d:R>)", expiry.Unix(), expiry.Unix())
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// logDetail is the text posted to the log channel for a sanction event.
func logDetail(r *model.SanctionRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "处罚 ID: %s\n", r.ActionID)
	fmt.Fprintf(&b, "用户: <@%s>\n", r.UserID)
	fmt.Fprintf(&b, "执行者: <@%s>\n", r.ModeratorID)
	if r.Metadata.RoleID != "" && r.Kind != model.KindMute {
		fmt.Fprintf(&b, "身份组: <@&%s>\n", r.Metadata.RoleID)
	}
	fmt.Fprintf(&b, "时长: %s\n", r.Duration)
	fmt.Fprintf(&b, "到期: %s\n", formatExpiry(r))
	fmt.Fprintf(&b, "原因: %s", orDash(r.Reason))
	if !r.Active {
		fmt.Fprintf(&b, "\n结束者: %s\n结束原因: %s", mention(r.EndedBy), orDash(r.EndReason))
	}
	return b.String()
}

func mention(id string) string {
	if id == "" || id == model.SystemModeratorID {
		return "系统"
	}
	return "<@" + id + ">"
}

func recordEmbed(title string, color int, r *model.SanctionRecord) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: "处罚 ID", Value: r.ActionID, Inline: true},
		{Name: "类型", Value: kindName(r.Kind), Inline: true},
		{Name: "用户", Value: "<@" + r.UserID + ">", Inline: true},
		{Name: "时长", Value: r.Duration, Inline: true},
		{Name: "到期", Value: formatExpiry(r), Inline: true},
		{Name: "状态", Value: activeLabel(r.Active), Inline: true},
		{Name: "原因", Value: orDash(r.Reason)},
	}
	if !r.Active && r.EndedAt.Valid {
		fields = append(fields,
			&discordgo.MessageEmbedField{Name: "结束者", Value: mention(r.EndedBy), Inline: true},
			&discordgo.MessageEmbedField{Name: "结束原因", Value: orDash(r.EndReason), Inline: true},
			&discordgo.MessageEmbedField{Name: "结束时间", Value: fmt.Sprintf("<t:%d:F>", r.EndedAt.Int64/1000), Inline: true},
		)
	}
	return &discordgo.MessageEmbed{
		Title:     title,
		Color:     color,
		Fields:    fields,
		Timestamp: r.IssuedTime().Format(time.RFC3339),
	}
}

func activeLabel(active bool) string {
	if active {
		return "生效中"
	}
	return "已结束"
}

func statusEmbed(st sanction.Status) *discordgo.MessageEmbed {
	embed := recordEmbed("处罚状态", colorInfo, &st.Record)
	timer := "否"
	if st.Scheduled {
		timer = "是"
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "计时器", Value: timer, Inline: true})
	switch {
	case st.Permanent:
	case st.ExpiredPending:
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "剩余", Value: "已到期，等待巡检", Inline: true})
	case st.Record.Active:
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "剩余", Value: st.Remaining.Round(time.Second).String(), Inline: true})
	}
	return embed
}

// historyEmbed lists at most limit records, newest first.
func historyEmbed(userID string, records []model.SanctionRecord, limit int) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "处罚记录",
		Color: colorInfo,
	}
	if len(records) == 0 {
		embed.Description = fmt.Sprintf("<@%s> 没有处罚记录。", userID)
		return embed
	}
	embed.Description = fmt.Sprintf("<@%s> 共 %d 条处罚记录", userID, len(records))
	for i, r := range records {
		if i == limit {
			embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("仅显示最近 %d 条", limit)}
			break
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: fmt.Sprintf("%s · %s", kindName(r.Kind), r.ActionID),
			Value: fmt.Sprintf("<t:%d:d> · %s · %s · %s",
				r.IssuedAt/1000, r.Duration, activeLabel(r.Active), orDash(r.Reason)),
		})
	}
	return embed
}

func reverseSummary(result sanction.ReverseResult) string {
	switch result {
	case sanction.ResultReversed:
		return "✅ 处罚已撤销。"
	case sanction.ResultAlreadyInactive:
		return "该处罚已经结束，无需撤销。"
	case sanction.ResultEffectFailed:
		return "⚠️ 处罚已标记为结束，但 Discord 操作失败，请手动检查该用户的身份组。"
	default:
		return "撤销失败。"
	}
}

// memberNotice is the DM sent to a muted member.
func memberNotice(r *model.SanctionRecord) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "你已被禁言",
		Description: fmt.Sprintf("原因: %s\n到期: %s\n处罚 ID: %s", orDash(r.Reason), formatExpiry(r), r.ActionID),
		Color:       colorIssued,
	}
}
