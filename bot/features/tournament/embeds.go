package tournament

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"tourney/bot/common"
	"tourney/domain/bracket"
	"tourney/domain/entities"
	"tourney/domain/interfaces"

	"github.com/bwmarrin/discordgo"
)

func createdEmbed(t *entities.Tournament) *discordgo.MessageEmbed {
	format := "1v1"
	if t.IsTeamTournament() {
		format = fmt.Sprintf("%dv%d", t.TeamSize, t.TeamSize)
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🏆 %s", t.Name),
		Description: fmt.Sprintf("Register with `/tournament register id:%d`", t.ID),
		Color:       common.ColorPrimary,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Format", Value: fmt.Sprintf("%s, best of %d", format, t.BestOf), Inline: true},
			{Name: "Slots", Value: fmt.Sprintf("%d", t.MaxPlayers), Inline: true},
			{Name: "Maps", Value: strings.Join(t.Maps, ", "), Inline: true},
			{Name: "Registration opens", Value: common.FormatDiscordTimestamp(t.RegistrationDate, "f"), Inline: true},
			{Name: "Starts", Value: common.FormatDiscordTimestamp(t.StartDate, "f"), Inline: true},
			{Name: "Ends", Value: common.FormatDiscordTimestamp(t.EndDate, "f"), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Tournament #%d", t.ID)},
	}
}

func listEmbed(tournaments []*entities.Tournament, now time.Time) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Tournaments",
		Color: common.ColorInfo,
	}
	if len(tournaments) == 0 {
		embed.Description = "No tournament is running."
		return embed
	}

	for _, t := range tournaments {
		if len(embed.Fields) == common.MaxEmbedFields {
			break
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("#%d %s", t.ID, t.Name),
			Value: fmt.Sprintf("%s, %d/%d registered", status(t, now), t.RegisteredCount, t.Capacity()),
		})
	}
	return embed
}

func status(t *entities.Tournament, now time.Time) string {
	switch {
	case t.HasFinished:
		return "Finished"
	case t.IsInProgress():
		return "In progress"
	case t.IsRegistrationOpen(now):
		return "Registration open until " + common.FormatDiscordTimestamp(t.StartDate, "R")
	case now.Before(t.RegistrationDate):
		return "Registration opens " + common.FormatDiscordTimestamp(t.RegistrationDate, "R")
	default:
		return "Waiting to start"
	}
}

func startEmbed(result *interfaces.StartResult, name func(int64) string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🏁 %s has started", result.Tournament.Name),
		Color: common.ColorSuccess,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Playing", Value: joinNames(result.Admitted, name)},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Bracket of %d, use /tournament bracket id:%d", result.Tournament.MaxPlayers, result.Tournament.ID),
		},
	}
	if len(result.Excluded) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Left out",
			Value: joinNames(result.Excluded, name),
		})
	}
	if len(result.Teams) > 0 {
		embed.Fields = append(embed.Fields, teamFields(result.Teams, name)...)
	}
	return embed
}

func reportEmbed(result *interfaces.ReportResult, name func(int64) string) *discordgo.MessageEmbed {
	title := fmt.Sprintf("%s defeated %s", name(result.WinnerID), name(result.LoserID))
	if result.IsFinal() {
		title = fmt.Sprintf("🏆 %s won %s", name(result.WinnerID), result.Tournament.Name)
	}

	embed := &discordgo.MessageEmbed{
		Title:  title,
		Color:  common.ColorSuccess,
		Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Match #%d", result.Match.ID)},
	}
	if result.Match.Score != nil {
		embed.Description = "Score: " + *result.Match.Score
	}

	if next := result.Parent; next != nil {
		opponent := "TBD"
		if o := next.Opponent(result.WinnerID); o != nil {
			opponent = name(*o)
		}
		value := fmt.Sprintf("%s vs %s", name(result.WinnerID), opponent)
		if next.Map != nil {
			value += " on " + *next.Map
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("Next: match #%d", next.ID),
			Value: value,
		})
	}
	return embed
}

func bracketEmbed(t *entities.Tournament, root *bracket.Node, name func(int64) string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s bracket", t.Name),
		Description: common.Truncate(bracket.Render(root, name), common.MaxEmbedDescription),
		Color:       common.ColorPrimary,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Tournament #%d", t.ID)},
	}
}

func teamsEmbed(t *entities.Tournament, teams map[int64][]int64, name func(int64) string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s teams", t.Name),
		Color: common.ColorPrimary,
	}
	if len(teams) == 0 {
		embed.Description = "No teams have been formed."
		return embed
	}
	embed.Fields = teamFields(teams, name)
	return embed
}

// teamFields lists teams in leader id order so repeated calls render the same embed
func teamFields(teams map[int64][]int64, name func(int64) string) []*discordgo.MessageEmbedField {
	leaders := make([]int64, 0, len(teams))
	for leader := range teams {
		leaders = append(leaders, leader)
	}
	sort.Slice(leaders, func(i, j int) bool { return leaders[i] < leaders[j] })

	fields := make([]*discordgo.MessageEmbedField, 0, len(leaders))
	for _, leader := range leaders {
		if len(fields) == common.MaxEmbedFields-2 {
			break
		}
		members := append([]int64{leader}, teams[leader]...)
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("Team %s", name(leader)),
			Value:  joinNames(members, name),
			Inline: true,
		})
	}
	return fields
}

func joinNames(ids []int64, name func(int64) string) string {
	if len(ids) == 0 {
		return "Nobody"
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, name(id))
	}
	return common.Truncate(strings.Join(names, ", "), 1024)
}
