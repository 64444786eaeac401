package bot

import (
	"context"
	"strconv"
	"sync"
	"time"

	"tourney/application"
	"tourney/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// memberFetcher is the part of the discord session the resolver needs
type memberFetcher interface {
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
}

// RateLimiter manages API call rate limiting
type RateLimiter struct {
	mutex       sync.Mutex
	lastCall    time.Time
	minInterval time.Duration
}

// Wait waits if necessary to respect rate limits
func (rl *RateLimiter) Wait(ctx context.Context) error {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	elapsed := time.Since(rl.lastCall)
	if elapsed < rl.minInterval {
		waitTime := rl.minInterval - elapsed
		log.Debugf("Rate limiting: waiting %v before next API call", waitTime)

		select {
		case <-time.After(waitTime):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	rl.lastCall = time.Now()
	return nil
}

type cachedName struct {
	name    string
	expires time.Time
}

// UserResolverImpl resolves display names from guild members, caching them per guild
type UserResolverImpl struct {
	members memberFetcher

	cacheMutex sync.RWMutex
	cache      map[int64]map[int64]cachedName // guildID -> userID -> name
	cacheTTL   time.Duration

	rateLimiter *RateLimiter
}

// NewUserResolver creates a new user resolver
func NewUserResolver(members memberFetcher) *UserResolverImpl {
	return &UserResolverImpl{
		members:  members,
		cache:    make(map[int64]map[int64]cachedName),
		cacheTTL: 10 * time.Minute,
		rateLimiter: &RateLimiter{
			minInterval: 100 * time.Millisecond,
		},
	}
}

var _ application.UserResolver = (*UserResolverImpl)(nil)

// DisplayName returns the server nickname, then the global display name, then the username.
// Unknown users are rendered as a mention so Discord resolves them client side.
func (r *UserResolverImpl) DisplayName(ctx context.Context, guildID, userID int64) string {
	if name, ok := r.cached(guildID, userID); ok {
		return name
	}

	if err := r.rateLimiter.Wait(ctx); err != nil {
		return common.GetUserMention(userID)
	}

	member, err := r.members.GuildMember(strconv.FormatInt(guildID, 10), strconv.FormatInt(userID, 10))
	if err != nil || member == nil {
		log.WithFields(log.Fields{
			"guild_id": guildID,
			"user_id":  userID,
			"error":    err,
		}).Debug("Failed to resolve guild member")
		return common.GetUserMention(userID)
	}

	name := memberName(member)
	if name == "" {
		return common.GetUserMention(userID)
	}
	r.store(guildID, userID, name)
	return name
}

// Invalidate drops a cached name, used when a member updates their nickname
func (r *UserResolverImpl) Invalidate(guildID, userID int64) {
	r.cacheMutex.Lock()
	defer r.cacheMutex.Unlock()
	if guild, ok := r.cache[guildID]; ok {
		delete(guild, userID)
	}
}

func (r *UserResolverImpl) cached(guildID, userID int64) (string, bool) {
	r.cacheMutex.RLock()
	defer r.cacheMutex.RUnlock()

	entry, ok := r.cache[guildID][userID]
	if !ok || time.Now().After(entry.expires) {
		return "", false
	}
	return entry.name, true
}

func (r *UserResolverImpl) store(guildID, userID int64, name string) {
	r.cacheMutex.Lock()
	defer r.cacheMutex.Unlock()

	guild, ok := r.cache[guildID]
	if !ok {
		guild = make(map[int64]cachedName)
		r.cache[guildID] = guild
	}
	guild[userID] = cachedName{name: name, expires: time.Now().Add(r.cacheTTL)}
}

func memberName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	if member.User == nil {
		return ""
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}
