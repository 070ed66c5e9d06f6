package defs

import "github.com/bwmarrin/discordgo"

var SystemInfo = &discordgo.ApplicationCommand{
	Name:        "system_info",
	Description: "Display bot and system status information",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "系统信息",
		discordgo.ChineseTW: "系統信息",
	},
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "显示机器人和系统的状态信息",
		discordgo.ChineseTW: "顯示機器人和系統的狀態信息",
	},
}

var ReloadConfig = &discordgo.ApplicationCommand{
	Name:        "reload_config",
	Description: "Reload bot configuration file (developers only)",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "重载配置",
		discordgo.ChineseTW: "重載配置",
	},
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "重新加载机器人配置文件 (仅限开发者)",
		discordgo.ChineseTW: "重新加載機器人配置文件 (僅限開發者)",
	},
}
