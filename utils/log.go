package utils

import (
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"sanction-bot/model"
)

type LogLevel string

const (
	Info  LogLevel = "INFO"
	Warn  LogLevel = "WARN"
	Error LogLevel = "ERROR"
)

const maxFieldLength = 1024

func getColor(level LogLevel) int {
	switch level {
	case Info:
		return 3066993 // Green
	case Warn:
		return 15105570 // Orange
	case Error:
		return 15158332 // Red
	default:
		return 3447003 // Blue
	}
}

func truncateField(v string) string {
	if v == "" {
		return "-"
	}
	r := []rune(v)
	if len(r) > maxFieldLength {
		return string(r[:maxFieldLength-1]) + "…"
	}
	return v
}

// BuildLogEmbed renders a log entry the way it appears in the log channel.
func BuildLogEmbed(level LogLevel, module, operation, extraInfo string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: string(level) + " Log",
		Color: getColor(level),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "模块", Value: truncateField(module)},
			{Name: "操作", Value: truncateField(operation)},
			{Name: "附加信息", Value: truncateField(extraInfo)},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// SendLog posts a log embed to channelID and returns the sent message.
func SendLog(s *discordgo.Session, channelID string, level LogLevel, module, operation, extraInfo string) (*discordgo.Message, error) {
	if s == nil || channelID == "" {
		return nil, fmt.Errorf("log channel not configured")
	}
	msg, err := s.ChannelMessageSendEmbed(channelID, BuildLogEmbed(level, module, operation, extraInfo))
	if err != nil {
		return nil, fmt.Errorf("failed to send log to channel %s: %w", channelID, err)
	}
	return msg, nil
}

func LogInfo(s *discordgo.Session, channelID, module, operation, extraInfo string) error {
	_, err := SendLog(s, channelID, Info, module, operation, extraInfo)
	return err
}

func LogWarn(s *discordgo.Session, channelID, module, operation, extraInfo string) error {
	_, err := SendLog(s, channelID, Warn, module, operation, extraInfo)
	return err
}

func LogError(s *discordgo.Session, channelID, module, operation, extraInfo string) error {
	_, err := SendLog(s, channelID, Error, module, operation, extraInfo)
	return err
}

// ChannelLogger forwards engine alerts to the guild's log channel. Alerts are
// always written to the process log as well, so a missing channel loses nothing.
type ChannelLogger struct {
	session *discordgo.Session
	config  model.BotConfigProvider
	module  string
}

func NewChannelLogger(s *discordgo.Session, cfg model.BotConfigProvider, module string) *ChannelLogger {
	return &ChannelLogger{session: s, config: cfg, module: module}
}

func (l *ChannelLogger) Warn(guildID, operation, detail string) {
	l.send(Warn, guildID, operation, detail)
}

func (l *ChannelLogger) Error(guildID, operation, detail string) {
	l.send(Error, guildID, operation, detail)
}

func (l *ChannelLogger) send(level LogLevel, guildID, operation, detail string) {
	log.Printf("[%s] %s %s: %s", l.module, level, operation, detail)
	if l.session == nil || l.config == nil {
		return
	}
	channelID := l.config.GetConfig().LogChannelFor(guildID)
	if channelID == "" {
		return
	}
	if _, err := SendLog(l.session, channelID, level, l.module, operation, detail); err != nil {
		log.Printf("[%s] Failed to forward alert: %v", l.module, err)
	}
}
