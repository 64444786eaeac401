package common

import (
	"strconv"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// ParseID converts a Discord snowflake string to int64
func ParseID(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}

// FormatID converts an int64 snowflake to string
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// GetUserMention returns a Discord mention string for a user
func GetUserMention(userID int64) string {
	return "<@" + FormatID(userID) + ">"
}

// InvokerID returns the id of the user who triggered the interaction
func InvokerID(i *discordgo.InteractionCreate) (int64, error) {
	if i.Member != nil && i.Member.User != nil {
		return ParseID(i.Member.User.ID)
	}
	if i.User != nil {
		return ParseID(i.User.ID)
	}
	return 0, NewInvalidInput("This command can only be used in a server")
}

// IsUserAdmin checks if a user has administrator permissions in a guild
func IsUserAdmin(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if i.Member == nil {
		return false
	}
	if i.Member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}

	for _, roleID := range i.Member.Roles {
		role, err := s.State.Role(i.GuildID, roleID)
		if err != nil {
			log.Debugf("Failed to resolve role %s in guild %s: %v", roleID, i.GuildID, err)
			continue
		}
		if role.Permissions&discordgo.PermissionAdministrator != 0 {
			return true
		}
	}
	return false
}

// GuildID returns the id of the guild the interaction happened in
func GuildID(i *discordgo.InteractionCreate) (int64, error) {
	if i.GuildID == "" {
		return 0, NewInvalidInput("This command can only be used in a server")
	}
	return ParseID(i.GuildID)
}
