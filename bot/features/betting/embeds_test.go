package betting

import (
	"fmt"
	"testing"

	"tourney/application"
	"tourney/domain/entities"
	"tourney/domain/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v int64) *int64 { return &v }

func name(id int64) string { return fmt.Sprintf("user-%d", id) }

func TestBetPlacedMessage(t *testing.T) {
	wager := &entities.Wager{ID: 3, Amount: 100, TargetUserID: 10, Probability: 0.4}

	assert.Equal(t, "Bet #3: **100** on user-10 at +150, pays **250** if they win", betPlacedMessage(wager, name))
}

func TestOddsEmbed(t *testing.T) {
	mapName := "mirage"
	open := []*interfaces.OpenBetGame{
		{
			Game:  &entities.BetGame{ID: 40, MatchID: 1, Probability1: 0.25, Probability2: 0.75},
			Match: &entities.Match{ID: 1, User1ID: ptr(10), User2ID: ptr(11), Map: &mapName},
		},
		{
			Game:  &entities.BetGame{ID: 41, MatchID: 2, Probability1: 0.5, Probability2: 0.5},
			Match: &entities.Match{ID: 2, User1ID: ptr(12)},
		},
	}

	embed := oddsEmbed(1, open, name)

	require.Len(t, embed.Fields, 1, "unpaired matches are skipped")
	assert.Equal(t, "Game #40, match #1", embed.Fields[0].Name)
	assert.Equal(t, "user-10 +300 (25%, 4.00x)\nuser-11 -300 (75%, 1.33x)\nMap: mirage", embed.Fields[0].Value)

	assert.Equal(t, "No match is open for betting.", oddsEmbed(1, nil, name).Description)
}

func TestWagersEmbed(t *testing.T) {
	wagers := []*entities.Wager{
		{ID: 1, Amount: 10, TargetUserID: 10, Probability: 0.5, Distributed: true},
		{ID: 2, Amount: 25, TargetUserID: 11, Probability: 0.5},
	}

	embed := wagersEmbed(wagers, name)

	assert.Equal(t, "`#1` 10 on user-10 at -100, settled\n`#2` 25 on user-11 at -100, pending", embed.Description)
	assert.Equal(t, "25 at stake", embed.Footer.Text)
	assert.Equal(t, "You have not placed any bet.", wagersEmbed(nil, name).Description)
}

func TestLeaderboardEmbed(t *testing.T) {
	wallets := []*entities.Wallet{
		{UserID: 1, Amount: 1250.5},
		{UserID: 2, Amount: 1000},
		{UserID: 3, Amount: 900},
		{UserID: 4, Amount: 0},
	}

	embed := leaderboardEmbed(wallets, 1000, name)

	assert.Equal(t,
		"🥇 user-1 **1,250.50** (+250.50)\n🥈 user-2 **1,000** (+0)\n🥉 user-3 **900** (-100)\n4. user-4 **0** (-1,000)",
		embed.Description)
}

func TestSettleMessage(t *testing.T) {
	summary := &application.SettlementSummary{
		Settled: []*interfaces.SettlementResult{
			{TotalPaid: 20},
			{TotalPaid: 30.5},
			{AlreadySettled: true},
		},
		Failed: 1,
	}

	assert.Equal(t, "Settled 2 bet games, paid 50.50, 1 were already settled, 1 failed and will be retried", settleMessage(summary))
}
