package bracket

import (
	"time"

	"tourney/domain/entities"
)

// now is swapped in tests
var now = time.Now

// AutoAdvance promotes participants whose opponent slot can never be filled.
// The tree is walked bottom-up; a participant promoted at one level is absorbed by the
// parent and may be promoted again, so byes propagate through several rounds.
// Decided matches are never touched, which makes repeated calls safe.
// Returns the matches mutated during the walk, in the order they changed.
func AutoAdvance(root *Node) []*entities.Match {
	dirty := newDirtySet()
	advance(root, dirty)
	return dirty.matches()
}

func advance(n *Node, dirty *dirtySet) *int64 {
	if n == nil {
		return nil
	}

	m := n.Match
	for _, child := range n.Children() {
		if winner := advance(child, dirty); winner != nil {
			if m.PlaceUser(*winner) {
				dirty.add(m)
			}
		}
	}

	if m.IsDecided() || !m.HasExactlyOneUser() {
		return nil
	}

	lone := *m.LoneUser()
	if !openSlotIsDead(n, lone) {
		return nil
	}

	m.Decide(lone, entities.ScoreNotPlayed, now())
	dirty.add(m)
	return &lone
}

// openSlotIsDead reports whether the empty slot of a half-filled match can never be filled.
// The slot is fed by whichever predecessor did not produce the present participant.
func openSlotIsDead(n *Node, present int64) bool {
	switch {
	case producedBy(n.Left, present):
		return isDead(n.Right)
	case producedBy(n.Right, present):
		return isDead(n.Left)
	default:
		return isDead(n.Left) && isDead(n.Right)
	}
}

func producedBy(n *Node, userID int64) bool {
	return n != nil && n.Match.WinnerID != nil && *n.Match.WinnerID == userID
}

// isDead reports whether no participant can ever come out of the subtree
func isDead(n *Node) bool {
	if n == nil {
		return true
	}
	if !n.Match.HasNoUsers() || n.Match.IsDecided() {
		return false
	}
	if n.IsLeaf() {
		return true
	}
	return isDead(n.Left) && isDead(n.Right)
}

type dirtySet struct {
	seen  map[int64]bool
	order []*entities.Match
}

func newDirtySet() *dirtySet {
	return &dirtySet{seen: make(map[int64]bool)}
}

func (d *dirtySet) add(m *entities.Match) {
	if d.seen[m.ID] {
		return
	}
	d.seen[m.ID] = true
	d.order = append(d.order, m)
}

func (d *dirtySet) matches() []*entities.Match {
	return d.order
}
