package commands

import (
	"sanction-bot/commands/defs"

	"github.com/bwmarrin/discordgo"
)

// GenerateCommands returns the guild command set.
func GenerateCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		defs.Mute,
		defs.Unmute,
		defs.TempRole,
		defs.SanctionRevoke,
		defs.SanctionStatus,
		defs.SanctionHistory,
		defs.SanctionSweep,
		defs.SystemInfo,
		defs.ReloadConfig,
	}
}
