package betting

import (
	"fmt"
	"strings"

	"tourney/application"
	"tourney/bot/common"
	"tourney/domain/entities"
	"tourney/domain/interfaces"

	"github.com/bwmarrin/discordgo"
)

const maxListed = 15

func betPlacedMessage(wager *entities.Wager, name func(int64) string) string {
	return fmt.Sprintf("Bet #%d: **%s** on %s at %s, pays **%s** if they win",
		wager.ID,
		common.FormatAmount(wager.Amount),
		name(wager.TargetUserID),
		application.FormatMoneyline(wager.Probability),
		common.FormatAmount(wager.PotentialPayout()))
}

func walletEmbed(wallet *entities.Wallet) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Wallet",
		Description: fmt.Sprintf("**%s** available", common.FormatAmount(wallet.Amount)),
		Color:       common.ColorInfo,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Tournament #%d", wallet.TournamentID)},
	}
}

// priceLine shows one side of a bet game as "name +150 (40%, 2.50x)"
func priceLine(name string, probability float64) string {
	return fmt.Sprintf("%s %s (%s, %.2fx)", name, application.FormatMoneyline(probability), common.FormatPercent(probability), entities.DecimalOdd(probability))
}

func oddsEmbed(tournamentID int64, open []*interfaces.OpenBetGame, name func(int64) string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:  "Open bets",
		Color:  common.ColorInfo,
		Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Tournament #%d, bet with /bet place", tournamentID)},
	}
	for _, g := range open {
		if len(embed.Fields) == common.MaxEmbedFields {
			break
		}
		if g.Match.User1ID == nil || g.Match.User2ID == nil {
			continue
		}

		value := priceLine(name(*g.Match.User1ID), g.Game.Probability1) + "\n" + priceLine(name(*g.Match.User2ID), g.Game.Probability2)
		if g.Match.Map != nil {
			value += "\nMap: " + *g.Match.Map
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("Game #%d, match #%d", g.Game.ID, g.Match.ID),
			Value: value,
		})
	}
	if len(embed.Fields) == 0 {
		embed.Description = "No match is open for betting."
	}
	return embed
}

func wagersEmbed(wagers []*entities.Wager, name func(int64) string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Your bets",
		Color: common.ColorInfo,
	}
	if len(wagers) == 0 {
		embed.Description = "You have not placed any bet."
		return embed
	}

	var lines []string
	var pending float64
	for i, w := range wagers {
		state := "pending"
		if w.Distributed {
			state = "settled"
		} else {
			pending += w.Amount
		}
		if i < maxListed {
			lines = append(lines, fmt.Sprintf("`#%d` %s on %s at %s, %s",
				w.ID, common.FormatAmount(w.Amount), name(w.TargetUserID), application.FormatMoneyline(w.Probability), state))
		}
	}
	if len(wagers) > maxListed {
		lines = append(lines, fmt.Sprintf("and %d more", len(wagers)-maxListed))
	}

	embed.Description = strings.Join(lines, "\n")
	embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("%s at stake", common.FormatAmount(pending))}
	return embed
}

func leaderboardEmbed(wallets []*entities.Wallet, stake float64, name func(int64) string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Leaderboard",
		Color: common.ColorGold,
	}
	if len(wallets) == 0 {
		embed.Description = "Nobody has a wallet yet."
		return embed
	}

	medals := []string{"🥇", "🥈", "🥉"}
	var lines []string
	for i, w := range wallets {
		if i == maxListed {
			break
		}
		rank := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			rank = medals[i]
		}
		diff := w.Amount - stake
		sign := "+"
		if diff < 0 {
			sign = ""
		}
		lines = append(lines, fmt.Sprintf("%s %s **%s** (%s%s)",
			rank, name(w.UserID), common.FormatAmount(w.Amount), sign, common.FormatAmount(diff)))
	}
	embed.Description = strings.Join(lines, "\n")
	return embed
}

func settleMessage(summary *application.SettlementSummary) string {
	var settled, already int
	var paid float64
	for _, r := range summary.Settled {
		if r.AlreadySettled {
			already++
			continue
		}
		settled++
		paid += r.TotalPaid
	}

	msg := fmt.Sprintf("Settled %d bet games, paid %s", settled, common.FormatAmount(paid))
	if already > 0 {
		msg += fmt.Sprintf(", %d were already settled", already)
	}
	if summary.Failed > 0 {
		msg += fmt.Sprintf(", %d failed and will be retried", summary.Failed)
	}
	return msg
}
