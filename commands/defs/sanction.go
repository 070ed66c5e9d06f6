package defs

import "github.com/bwmarrin/discordgo"

var userOption = &discordgo.ApplicationCommandOption{
	Type:        discordgo.ApplicationCommandOptionUser,
	Name:        "user",
	Description: "目标用户",
	Required:    true,
}

var durationOption = &discordgo.ApplicationCommandOption{
	Type:        discordgo.ApplicationCommandOptionString,
	Name:        "duration",
	Description: "时长，例如 10m、2h、7d，或 forever 表示永久",
	Required:    true,
}

var reasonOption = &discordgo.ApplicationCommandOption{
	Type:        discordgo.ApplicationCommandOptionString,
	Name:        "reason",
	Description: "原因",
	Required:    false,
	MaxLength:   500,
}

var actionIDOption = &discordgo.ApplicationCommandOption{
	Type:        discordgo.ApplicationCommandOptionString,
	Name:        "action_id",
	Description: "18 位处罚 ID",
	Required:    true,
	MinLength:   intPtr(18),
	MaxLength:   18,
}

func intPtr(v int) *int { return &v }

var Mute = &discordgo.ApplicationCommand{
	Name:        "mute",
	Description: "Mute a member for a duration",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "禁言",
		discordgo.ChineseTW: "禁言",
	},
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "在一段时间内禁言成员",
		discordgo.ChineseTW: "在一段時間內禁言成員",
	},
	Options: []*discordgo.ApplicationCommandOption{userOption, durationOption, reasonOption},
}

var Unmute = &discordgo.ApplicationCommand{
	Name:        "unmute",
	Description: "Lift a member's mute before it expires",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "解除禁言",
		discordgo.ChineseTW: "解除禁言",
	},
	Options: []*discordgo.ApplicationCommandOption{userOption, reasonOption},
}

var TempRole = &discordgo.ApplicationCommand{
	Name:        "temprole",
	Description: "Grant or revoke a role for a duration",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "临时身份组",
		discordgo.ChineseTW: "臨時身份組",
	},
	Options: []*discordgo.ApplicationCommandOption{
		userOption,
		{
			Type:        discordgo.ApplicationCommandOptionRole,
			Name:        "role",
			Description: "身份组",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "mode",
			Description: "授予或移除",
			Required:    true,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "临时授予 (grant)", Value: "grant"},
				{Name: "临时移除 (revoke)", Value: "revoke"},
			},
		},
		durationOption,
		reasonOption,
	},
}

var SanctionRevoke = &discordgo.ApplicationCommand{
	Name:        "sanction_revoke",
	Description: "End a sanction by its action ID",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "撤销处罚",
		discordgo.ChineseTW: "撤銷處罰",
	},
	Options: []*discordgo.ApplicationCommandOption{actionIDOption, reasonOption},
}

var SanctionStatus = &discordgo.ApplicationCommand{
	Name:        "sanction_status",
	Description: "Show the state of a sanction",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "处罚状态",
		discordgo.ChineseTW: "處罰狀態",
	},
	Options: []*discordgo.ApplicationCommandOption{actionIDOption},
}

var SanctionHistory = &discordgo.ApplicationCommand{
	Name:        "sanction_history",
	Description: "List a member's sanctions",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "处罚记录",
		discordgo.ChineseTW: "處罰記錄",
	},
	Options: []*discordgo.ApplicationCommandOption{userOption},
}

var SanctionSweep = &discordgo.ApplicationCommand{
	Name:        "sanction_sweep",
	Description: "Reverse every overdue sanction now",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "处罚巡检",
		discordgo.ChineseTW: "處罰巡檢",
	},
}
