package handlers

import (
	"log"

	"github.com/bwmarrin/discordgo"

	"sanction-bot/bot"
	"sanction-bot/handlers/admin"
	sanction_handler "sanction-bot/handlers/sanction"
	"sanction-bot/utils"
)

type commandHandler func(s *discordgo.Session, i *discordgo.InteractionCreate)

func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)
	addHandlers(b)
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	moderator := func(h func(*discordgo.Session, *discordgo.InteractionCreate, sanction_handler.Provider)) commandHandler {
		return requireModerator(b, func(s *discordgo.Session, i *discordgo.InteractionCreate) { h(s, i, b) })
	}
	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"mute":             moderator(sanction_handler.HandleMuteCommand),
		"unmute":           moderator(sanction_handler.HandleUnmuteCommand),
		"temprole":         moderator(sanction_handler.HandleTempRoleCommand),
		"sanction_revoke":  moderator(sanction_handler.HandleSanctionRevokeCommand),
		"sanction_status":  moderator(sanction_handler.HandleSanctionStatusCommand),
		"sanction_history": moderator(sanction_handler.HandleSanctionHistoryCommand),
		"sanction_sweep":   moderator(sanction_handler.HandleSanctionSweepCommand),
		"system_info": requireModerator(b, func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			SystemInfoHandler(s, i, b)
		}),
		"reload_config": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			admin.HandleReloadConfig(s, i, b)
		},
	}
}

// requireModerator lets developers and guild admins through.
func requireModerator(b *bot.Bot, next commandHandler) commandHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Member == nil {
			utils.SendErrorResponse(s, i, "This command can only be used in a server.")
			return
		}
		cfg := b.GetConfig()
		level := utils.CheckPermission(i.Member.Roles, i.Member.User.ID,
			cfg.ServerConfigs[i.GuildID].AdminRoleIDs, cfg.AdminRoleIDs, cfg.DeveloperUserIDs)
		if !utils.CanModerate(level) {
			utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
			return
		}
		next(s, i)
	}
}

func addHandlers(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
			h(s, i)
		}
	})
}
