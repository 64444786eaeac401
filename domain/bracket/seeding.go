package bracket

import (
	"errors"
	"math/rand"

	"tourney/domain/entities"
)

// ResizeTournament returns the bracket size for teamCount entrants:
// the smallest power of two that is at least teamCount.
// The current size is kept when it already is that value.
func ResizeTournament(currentMax, teamCount int) int {
	target := NextPowerOfTwo(teamCount)
	if currentMax == target {
		return currentMax
	}
	return target
}

// NextPowerOfTwo returns the smallest power of two >= n (1 for n <= 1)
func NextPowerOfTwo(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}

// BuildSkeleton creates the empty match tree for a bracket of the given size.
// Leaves are created first, then each level pairs consecutive matches of the level below
// until a single root remains. create must persist the match and set its ID.
func BuildSkeleton(tournamentID int64, size int, create func(*entities.Match) error) ([]*entities.Match, error) {
	if size < 2 {
		return nil, errors.New("bracket size must be at least 2")
	}

	var all []*entities.Match
	leafCount := (size + 1) / 2
	level := make([]*entities.Match, 0, leafCount)
	for i := 0; i < leafCount; i++ {
		m := &entities.Match{TournamentID: tournamentID}
		if err := create(m); err != nil {
			return nil, err
		}
		level = append(level, m)
		all = append(all, m)
	}

	for len(level) > 1 {
		next := make([]*entities.Match, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			m := &entities.Match{TournamentID: tournamentID}
			first := level[i].ID
			m.PreviousMatch1ID = &first
			if i+1 < len(level) {
				second := level[i+1].ID
				m.PreviousMatch2ID = &second
			}
			if err := create(m); err != nil {
				return nil, err
			}
			next = append(next, m)
			all = append(all, m)
		}
		level = next
	}

	return all, nil
}

// AssignToLeaves seeds participants into the first-round matches.
// Leaves are taken in id order and at most one leaf per participant is used; shuffled
// participants fill slot 1 then slot 2 of each leaf. Fully paired leaves get a random map
// from the pool. A leaf left with a single participant is decided on the spot and its winner
// moves into the parent's first empty slot.
// Returns every match that changed.
func AssignToLeaves(root *Node, participants []int64, maps []string, rng *rand.Rand) []*entities.Match {
	dirty := newDirtySet()
	leaves := Leaves(root)
	if len(leaves) > len(participants) {
		leaves = leaves[:len(participants)]
	}

	shuffled := make([]int64, len(participants))
	copy(shuffled, participants)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	next := 0
	for _, leaf := range leaves {
		for slot := 0; slot < 2 && next < len(shuffled); slot++ {
			if leaf.Match.PlaceUser(shuffled[next]) {
				dirty.add(leaf.Match)
			}
			next++
		}
		if leaf.Match.HasBothUsers() && len(maps) > 0 {
			leaf.Match.SetMap(RandomMap(maps, rng))
		}
	}

	for _, leaf := range leaves {
		lone := leaf.Match.LoneUser()
		if lone == nil || leaf.Match.IsDecided() {
			continue
		}
		winner := *lone
		leaf.Match.Decide(winner, entities.ScoreNotPlayed, now())
		dirty.add(leaf.Match)
		if parent := FindParent(root, leaf.Match.ID); parent != nil {
			if parent.Match.PlaceUser(winner) {
				dirty.add(parent.Match)
			}
		}
	}

	return dirty.matches()
}

// RandomMap picks a map uniformly from the pool
func RandomMap(maps []string, rng *rand.Rand) string {
	return maps[rng.Intn(len(maps))]
}

// SplitParticipants keeps the first teamCount*teamSize participants in registration order
// and returns the rest as excluded
func SplitParticipants(participants []int64, teamSize int) (in, out []int64) {
	if teamSize < 1 {
		teamSize = 1
	}
	keep := (len(participants) / teamSize) * teamSize
	in = append([]int64(nil), participants[:keep]...)
	out = append([]int64(nil), participants[keep:]...)
	return in, out
}

// FormTeams picks teamCount random leaders out of players and distributes the others
// as teammates, teamSize-1 per leader
func FormTeams(players []int64, teamSize int, rng *rand.Rand) (leaders []int64, teams map[int64][]int64) {
	teams = make(map[int64][]int64)
	if teamSize <= 1 {
		leaders = append([]int64(nil), players...)
		return leaders, teams
	}

	shuffled := append([]int64(nil), players...)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	teamCount := len(shuffled) / teamSize
	leaders = shuffled[:teamCount]
	rest := shuffled[teamCount:]
	rng.Shuffle(len(rest), func(i, j int) {
		rest[i], rest[j] = rest[j], rest[i]
	})
	for i, leader := range leaders {
		start := i * (teamSize - 1)
		end := start + teamSize - 1
		if end > len(rest) {
			end = len(rest)
		}
		teams[leader] = append([]int64(nil), rest[start:end]...)
	}
	return leaders, teams
}
