package admin

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"sanction-bot/bot"
	"sanction-bot/utils"
)

func HandleReloadConfig(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	permissionLevel := utils.CheckPermission(i.Member.Roles, i.Member.User.ID, nil, nil, b.GetConfig().DeveloperUserIDs)
	if permissionLevel != utils.DeveloperPermission {
		utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
		return
	}

	if err := utils.DeferResponse(s, i, true); err != nil {
		return
	}
	if err := b.ReloadConfig(); err != nil {
		utils.SendFollowUpError(s, i.Interaction, fmt.Sprintf("配置重载失败: %v", err))
		return
	}
	utils.SendFollowUp(s, i.Interaction, "✅ 配置已成功重载！")
}
