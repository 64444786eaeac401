package bot

import (
	"testing"

	"tourney/domain/entities"

	"github.com/stretchr/testify/assert"
)

func TestCommands(t *testing.T) {
	commands := Commands()

	names := make(map[string][]string)
	for _, cmd := range commands {
		for _, sub := range cmd.Options {
			names[cmd.Name] = append(names[cmd.Name], sub.Name)
			assert.LessOrEqual(t, len(sub.Description), 100, "%s %s description", cmd.Name, sub.Name)
			for _, opt := range sub.Options {
				assert.LessOrEqual(t, len(opt.Description), 100, "%s %s %s description", cmd.Name, sub.Name, opt.Name)
			}
		}
	}

	assert.ElementsMatch(t, []string{"create", "list", "register", "unregister", "start", "report", "bracket", "teams"}, names["tournament"])
	assert.ElementsMatch(t, []string{"place", "wallet", "odds", "wagers", "leaderboard", "settle"}, names["bet"])
}

func TestCommands_ScoreFitsColumn(t *testing.T) {
	for _, cmd := range Commands() {
		for _, sub := range cmd.Options {
			for _, opt := range sub.Options {
				if opt.Name == "score" {
					assert.Equal(t, entities.MaxScoreLength, opt.MaxLength)
					return
				}
			}
		}
	}
	t.Fatal("report command has no score option")
}
