package sanction_handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"sanction-bot/model"
	"sanction-bot/sanction"
	"sanction-bot/utils"
)

// commandTimeout bounds the work done for one slash command.
const commandTimeout = 30 * time.Second

// HandleMuteCommand 处理 /mute 命令
func HandleMuteCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b Provider) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("无法延迟交互: %v", err)
		return
	}
	opts := utils.OptionMap(i.ApplicationCommandData().Options)

	muteRole := b.GetConfig().MuteRoleFor(i.GuildID)
	if muteRole == "" {
		utils.SendFollowUpError(s, i.Interaction, "本服务器未配置禁言身份组。")
		return
	}

	issue(s, i, b, sanction.IssueRequest{
		GuildID:     i.GuildID,
		UserID:      opts["user"].UserValue(nil).ID,
		ModeratorID: i.Member.User.ID,
		Kind:        model.KindMute,
		Reason:      utils.StringOption(opts, "reason"),
		Duration:    utils.StringOption(opts, "duration"),
		Metadata:    model.SanctionMetadata{RoleID: muteRole},
	})
}

// HandleTempRoleCommand 处理 /temprole 命令
func HandleTempRoleCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b Provider) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("无法延迟交互: %v", err)
		return
	}
	opts := utils.OptionMap(i.ApplicationCommandData().Options)

	kind := model.KindTimedRoleGrant
	if utils.StringOption(opts, "mode") == "revoke" {
		kind = model.KindTimedRoleRevoke
	}

	issue(s, i, b, sanction.IssueRequest{
		GuildID:     i.GuildID,
		UserID:      opts["user"].UserValue(nil).ID,
		ModeratorID: i.Member.User.ID,
		Kind:        kind,
		Reason:      utils.StringOption(opts, "reason"),
		Duration:    utils.StringOption(opts, "duration"),
		Metadata:    model.SanctionMetadata{RoleID: opts["role"].RoleValue(nil, "").ID},
	})
}

func issueLockKey(req sanction.IssueRequest) string {
	return fmt.Sprintf("%s:%s:%s", req.GuildID, req.UserID, req.Kind)
}

func issue(s *discordgo.Session, i *discordgo.InteractionCreate, b Provider, req sanction.IssueRequest) {
	key := issueLockKey(req)
	if !b.GetIssueLocks().TryAcquire(key) {
		utils.SendFollowUpError(s, i.Interaction, "该用户的处罚正在处理中，请稍候。")
		return
	}
	defer b.GetIssueLocks().Release(key)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	record, err := b.GetEngine().Issue(ctx, req)
	if err != nil {
		log.Printf("[Sanction] Issue %s for user %s failed: %v", req.Kind, req.UserID, err)
		if record != nil && errors.Is(err, sanction.ErrEffectFailed) {
			utils.LogWarn(s, b.GetConfig().LogChannelFor(req.GuildID), "Sanction", "Issue failed", logDetail(record))
		}
		utils.SendFollowUpError(s, i.Interaction, describeError(err))
		return
	}

	if !record.Active {
		utils.SendFollowUpEmbed(s, i.Interaction, recordEmbed(kindName(record.Kind)+"已被撤销", colorReversed, record))
		return
	}

	announce(ctx, s, b, record, "Issue "+string(record.Kind))
	embed := recordEmbed(kindName(record.Kind)+"已生效", colorIssued, record)
	if record.Kind == model.KindMute {
		if err := utils.SendPrivateEmbedMessage(s, record.UserID, memberNotice(record)); err != nil {
			log.Printf("[Sanction] %v", err)
		}
	}
	utils.SendFollowUpEmbed(s, i.Interaction, embed)
}

// announce posts the sanction to the guild's log channel and stores the message ID.
func announce(ctx context.Context, s *discordgo.Session, b Provider, record *model.SanctionRecord, operation string) {
	channelID := b.GetConfig().LogChannelFor(record.GuildID)
	if channelID == "" {
		return
	}
	msg, err := utils.SendLog(s, channelID, utils.Info, "Sanction", operation, logDetail(record))
	if err != nil {
		log.Printf("[Sanction] Failed to announce action %s: %v", record.ActionID, err)
		return
	}
	if err := b.GetEngine().AttachLogMessage(ctx, record.ActionID, msg.ID); err != nil {
		log.Printf("[Sanction] %v", err)
	}
}
