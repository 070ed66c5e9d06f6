package utils

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// SendPrivateEmbedMessage sends a direct message with an embed to a user. Members
// who closed their DMs make this fail, so callers treat it as best effort.
func SendPrivateEmbedMessage(s *discordgo.Session, userID string, embed *discordgo.MessageEmbed) error {
	channel, err := s.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("failed to open private channel with user %s: %w", userID, err)
	}
	if _, err := s.ChannelMessageSendEmbed(channel.ID, embed); err != nil {
		return fmt.Errorf("failed to send private message to user %s: %w", userID, err)
	}
	return nil
}
