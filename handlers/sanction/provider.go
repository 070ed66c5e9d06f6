package sanction_handler

import (
	"github.com/bwmarrin/discordgo"

	"sanction-bot/model"
	"sanction-bot/sanction"
	"sanction-bot/utils"
)

// Provider is what the sanction commands need from the bot.
type Provider interface {
	GetConfig() *model.Config
	GetSession() *discordgo.Session
	GetEngine() *sanction.Engine
	GetIssueLocks() *utils.KeyedLock
}
