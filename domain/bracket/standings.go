package bracket

import (
	"fmt"
	"strings"

	"tourney/domain/entities"
)

// FinalStandings computes the podium once the final is decided.
// Third place goes to both semifinal losers; places that were never contested stay zero.
// Returns false while the final has no winner.
func FinalStandings(root *Node) (*entities.Standings, bool) {
	if root == nil || !root.Match.IsDecided() {
		return nil, false
	}

	standings := &entities.Standings{First: *root.Match.WinnerID}
	if loser := root.Match.Loser(); loser != nil {
		standings.Second = *loser
	}

	for i, semi := range []*Node{root.Left, root.Right} {
		if semi == nil {
			continue
		}
		if loser := semi.Match.Loser(); loser != nil {
			standings.Third[i] = *loser
		}
	}

	return standings, true
}

// Render returns a plain text view of the bracket, one block per round starting with
// the first round. name resolves a participant id to a display name.
func Render(root *Node, name func(int64) string) string {
	if root == nil {
		return "No bracket yet."
	}

	rounds := make([][]*Node, Depth(root))
	var collect func(n *Node, level int)
	collect = func(n *Node, level int) {
		if n == nil {
			return
		}
		rounds[level] = append(rounds[level], n)
		collect(n.Left, level+1)
		collect(n.Right, level+1)
	}
	collect(root, 0)

	slot := func(id *int64) string {
		if id == nil {
			return "TBD"
		}
		return name(*id)
	}

	var b strings.Builder
	for level := len(rounds) - 1; level >= 0; level-- {
		round := len(rounds) - level
		if level == 0 {
			b.WriteString("**Final**\n")
		} else {
			fmt.Fprintf(&b, "**Round %d**\n", round)
		}
		for _, n := range rounds[level] {
			m := n.Match
			line := fmt.Sprintf("`#%d` %s vs %s", m.ID, slot(m.User1ID), slot(m.User2ID))
			if m.WinnerID != nil {
				line += fmt.Sprintf(" → **%s**", name(*m.WinnerID))
				if m.Score != nil {
					line += fmt.Sprintf(" (%s)", *m.Score)
				}
			} else if m.Map != nil {
				line += fmt.Sprintf(" on %s", *m.Map)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}
