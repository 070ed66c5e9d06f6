package sanction_handler

import (
	"context"
	"log"

	"github.com/bwmarrin/discordgo"

	"sanction-bot/model"
	"sanction-bot/sanction"
	"sanction-bot/utils"
)

// HandleUnmuteCommand 处理 /unmute 命令
func HandleUnmuteCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b Provider) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("无法延迟交互: %v", err)
		return
	}
	opts := utils.OptionMap(i.ApplicationCommandData().Options)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	record, result, err := b.GetEngine().Revoke(ctx, sanction.RevokeRequest{
		GuildID:    i.GuildID,
		UserID:     opts["user"].UserValue(nil).ID,
		Kind:       model.KindMute,
		Reason:     utils.StringOption(opts, "reason"),
		ExecutorID: i.Member.User.ID,
	})
	finishRevoke(ctx, s, i, b, record, result, err)
}

// HandleSanctionRevokeCommand 处理 /sanction_revoke 命令
func HandleSanctionRevokeCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b Provider) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("无法延迟交互: %v", err)
		return
	}
	opts := utils.OptionMap(i.ApplicationCommandData().Options)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	actionID := utils.StringOption(opts, "action_id")
	st, err := b.GetEngine().Inspect(ctx, actionID)
	if err != nil {
		utils.SendFollowUpError(s, i.Interaction, describeError(err))
		return
	}
	if st.Record.GuildID != i.GuildID {
		utils.SendFollowUpError(s, i.Interaction, describeError(sanction.ErrNotFound))
		return
	}

	record, result, err := b.GetEngine().RevokeByID(ctx, actionID, i.Member.User.ID, utils.StringOption(opts, "reason"))
	finishRevoke(ctx, s, i, b, record, result, err)
}

func finishRevoke(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, b Provider, record *model.SanctionRecord, result sanction.ReverseResult, err error) {
	if err != nil && result != sanction.ResultEffectFailed {
		log.Printf("[Sanction] Revoke failed: %v", err)
		utils.SendFollowUpError(s, i.Interaction, describeError(err))
		return
	}

	if result == sanction.ResultReversed || result == sanction.ResultEffectFailed {
		// The record read before the revoke is still active; show the ended state.
		if st, inspectErr := b.GetEngine().Inspect(ctx, record.ActionID); inspectErr == nil {
			record = &st.Record
		}
		announce(ctx, s, b, record, "Revoke "+string(record.Kind))
	}
	utils.SendFollowUp(s, i.Interaction, reverseSummary(result)+" (ID: "+record.ActionID+")")
}
