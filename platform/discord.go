package platform

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"sanction-bot/sanction"
)

// errCodeNotInVoice is returned by the member move endpoint when the target has no voice state.
const errCodeNotInVoice = 40032

// Discord applies sanction effects through a discordgo session.
type Discord struct {
	session *discordgo.Session
}

// NewDiscord wraps an open session.
func NewDiscord(s *discordgo.Session) *Discord {
	return &Discord{session: s}
}

func (d *Discord) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	err := d.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx))
	return translate(err, "add role %s to user %s", roleID, userID)
}

func (d *Discord) RemoveRole(ctx context.Context, guildID, userID, roleID string) error {
	err := d.session.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx))
	return translate(err, "remove role %s from user %s", roleID, userID)
}

// DisconnectVoice moves the member out of voice. A member that is not connected is not an error.
func (d *Discord) DisconnectVoice(ctx context.Context, guildID, userID string) error {
	err := d.session.GuildMemberMove(guildID, userID, nil, discordgo.WithContext(ctx))
	if restCode(err) == errCodeNotInVoice {
		return nil
	}
	return translate(err, "disconnect user %s from voice", userID)
}

func translate(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	op := fmt.Sprintf(format, args...)
	if restCode(err) == discordgo.ErrCodeUnknownMember {
		return fmt.Errorf("%s: %w", op, sanction.ErrMemberAbsent)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func restCode(err error) int {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil {
		return restErr.Message.Code
	}
	return 0
}
