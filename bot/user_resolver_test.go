package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

type fakeMembers struct {
	members map[string]*discordgo.Member
	calls   int
}

func (f *fakeMembers) GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error) {
	f.calls++
	if m, ok := f.members[userID]; ok {
		return m, nil
	}
	return nil, errors.New("HTTP 404 Not Found")
}

func TestUserResolver_DisplayName(t *testing.T) {
	members := &fakeMembers{members: map[string]*discordgo.Member{
		"10": {Nick: "Captain", User: &discordgo.User{ID: "10", Username: "cap", GlobalName: "Cap"}},
		"11": {User: &discordgo.User{ID: "11", Username: "ace", GlobalName: "Ace"}},
		"12": {User: &discordgo.User{ID: "12", Username: "plain"}},
	}}
	resolver := NewUserResolver(members)
	resolver.rateLimiter.minInterval = 0
	ctx := context.Background()

	assert.Equal(t, "Captain", resolver.DisplayName(ctx, 1, 10), "nickname wins")
	assert.Equal(t, "Ace", resolver.DisplayName(ctx, 1, 11), "then the global name")
	assert.Equal(t, "plain", resolver.DisplayName(ctx, 1, 12), "then the username")
	assert.Equal(t, "<@99>", resolver.DisplayName(ctx, 1, 99), "unknown members become mentions")
}

func TestUserResolver_Cache(t *testing.T) {
	members := &fakeMembers{members: map[string]*discordgo.Member{
		"10": {Nick: "Captain", User: &discordgo.User{ID: "10"}},
	}}
	resolver := NewUserResolver(members)
	resolver.rateLimiter.minInterval = 0
	ctx := context.Background()

	resolver.DisplayName(ctx, 1, 10)
	resolver.DisplayName(ctx, 1, 10)
	assert.Equal(t, 1, members.calls)

	resolver.DisplayName(ctx, 2, 10)
	assert.Equal(t, 2, members.calls, "cache is per guild")

	members.members["10"].Nick = "Admiral"
	resolver.Invalidate(1, 10)
	assert.Equal(t, "Admiral", resolver.DisplayName(ctx, 1, 10))
	assert.Equal(t, 3, members.calls)
}

func TestUserResolver_CancelledContext(t *testing.T) {
	members := &fakeMembers{}
	resolver := NewUserResolver(members)
	resolver.rateLimiter.minInterval = time.Hour
	resolver.DisplayName(context.Background(), 1, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, "<@11>", resolver.DisplayName(ctx, 1, 11))
	assert.Equal(t, 1, members.calls, "rate limiter gives up before calling discord")
}
