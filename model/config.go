package model

import "time"

// ServerConfig 定义了每个服务器的处罚配置
type ServerConfig struct {
	Name         string   `mapstructure:"name" json:"name"`
	GuildID      string   `mapstructure:"guild_id" json:"guild_id"`
	AdminRoleIDs []string `mapstructure:"admin_role_ids" json:"admin_role_ids"`
	MuteRoleID   string   `mapstructure:"mute_role_id" json:"mute_role_id"`
	LogChannelID string   `mapstructure:"log_channel_id" json:"log_channel_id"`
}

// Config 存储应用程序的配置
type Config struct {
	BotToken         string
	AppID            string
	LogChannelID     string
	DatabasePath     string
	DeveloperUserIDs []string
	AdminRoleIDs     []string
	SweepInterval    time.Duration
	EffectTimeout    time.Duration
	IDMaxAttempts    int
	ServerConfigs    map[string]ServerConfig
}

// LogChannelFor returns the guild's log channel, falling back to the global one.
func (c *Config) LogChannelFor(guildID string) string {
	if sc, ok := c.ServerConfigs[guildID]; ok && sc.LogChannelID != "" {
		return sc.LogChannelID
	}
	return c.LogChannelID
}

// MuteRoleFor returns the configured mute role for a guild, or "".
func (c *Config) MuteRoleFor(guildID string) string {
	if sc, ok := c.ServerConfigs[guildID]; ok {
		return sc.MuteRoleID
	}
	return ""
}
