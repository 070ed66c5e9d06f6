package sanction_handler

import (
	"context"
	"errors"
	"log"

	"github.com/bwmarrin/discordgo"

	"sanction-bot/sanction"
	"sanction-bot/utils"
)

const historyLimit = 15

// HandleSanctionStatusCommand 处理 /sanction_status 命令
func HandleSanctionStatusCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b Provider) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("无法延迟交互: %v", err)
		return
	}
	opts := utils.OptionMap(i.ApplicationCommandData().Options)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	st, err := b.GetEngine().Inspect(ctx, utils.StringOption(opts, "action_id"))
	if err == nil && st.Record.GuildID != i.GuildID {
		err = sanction.ErrNotFound
	}
	if err != nil {
		utils.SendFollowUpError(s, i.Interaction, describeError(err))
		return
	}
	utils.SendFollowUpEmbed(s, i.Interaction, statusEmbed(st))
}

// HandleSanctionHistoryCommand 处理 /sanction_history 命令
func HandleSanctionHistoryCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b Provider) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("无法延迟交互: %v", err)
		return
	}
	opts := utils.OptionMap(i.ApplicationCommandData().Options)
	userID := opts["user"].UserValue(nil).ID

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	records, err := b.GetEngine().History(ctx, i.GuildID, userID)
	if err != nil {
		utils.SendFollowUpError(s, i.Interaction, describeError(err))
		return
	}
	utils.SendFollowUpEmbed(s, i.Interaction, historyEmbed(userID, records, historyLimit))
}

// HandleSanctionSweepCommand 处理 /sanction_sweep 命令
func HandleSanctionSweepCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b Provider) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("无法延迟交互: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*commandTimeout)
	defer cancel()

	report, err := b.GetEngine().SweepOnce(ctx)
	if err != nil {
		if !errors.Is(err, sanction.ErrSweepInProgress) {
			log.Printf("[Sanction] Manual sweep failed: %v", err)
		}
		utils.SendFollowUpError(s, i.Interaction, describeError(err))
		return
	}
	utils.LogInfo(s, b.GetConfig().LogChannelFor(i.GuildID), "Sanction", "Manual sweep", report.String())
	utils.SendFollowUp(s, i.Interaction, "巡检完成: "+report.String())
}
