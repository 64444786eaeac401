// Package bracket rebuilds single-elimination brackets from flat match rows and
// implements the pure tree algorithms run over them: bye propagation, seeding,
// match lookup and final standings.
package bracket

import (
	"sort"

	"tourney/domain/entities"
)

// Node is a match in the reconstructed bracket tree.
// Left and Right are the matches feeding this one, nil for first-round leaves.
type Node struct {
	Match *entities.Match
	Left  *Node
	Right *Node
}

// IsLeaf reports whether the node is a first-round match
func (n *Node) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// Children returns the non-nil predecessor nodes
func (n *Node) Children() []*Node {
	children := make([]*Node, 0, 2)
	if n.Left != nil {
		children = append(children, n.Left)
	}
	if n.Right != nil {
		children = append(children, n.Right)
	}
	return children
}

// BuildTree links the flat match rows of a tournament into a tree and returns its root.
// The root is the only match that no other match references as a predecessor.
// Returns nil when matches is empty.
func BuildTree(matches []*entities.Match) *Node {
	if len(matches) == 0 {
		return nil
	}

	nodes := make(map[int64]*Node, len(matches))
	for _, m := range matches {
		nodes[m.ID] = &Node{Match: m}
	}

	referenced := make(map[int64]bool, len(matches))
	for _, m := range matches {
		node := nodes[m.ID]
		if m.PreviousMatch1ID != nil {
			node.Left = nodes[*m.PreviousMatch1ID]
			referenced[*m.PreviousMatch1ID] = true
		}
		if m.PreviousMatch2ID != nil {
			node.Right = nodes[*m.PreviousMatch2ID]
			referenced[*m.PreviousMatch2ID] = true
		}
	}

	for _, m := range matches {
		if !referenced[m.ID] {
			return nodes[m.ID]
		}
	}
	return nil
}

// Walk visits every node breadth-first starting at root.
// Returning false from visit stops the walk.
func Walk(root *Node, visit func(*Node) bool) {
	if root == nil {
		return
	}
	queue := []*Node{root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if !visit(node) {
			return
		}
		queue = append(queue, node.Children()...)
	}
}

// Leaves returns the first-round matches of the tree ordered by id
func Leaves(root *Node) []*Node {
	var leaves []*Node
	Walk(root, func(n *Node) bool {
		if n.IsLeaf() {
			leaves = append(leaves, n)
		}
		return true
	})
	sort.Slice(leaves, func(i, j int) bool {
		return leaves[i].Match.ID < leaves[j].Match.ID
	})
	return leaves
}

// Depth returns the number of rounds in the tree
func Depth(root *Node) int {
	if root == nil {
		return 0
	}
	left, right := Depth(root.Left), Depth(root.Right)
	if left > right {
		return left + 1
	}
	return right + 1
}

// FindActiveMatch returns the undecided match userID currently occupies.
// The search is breadth-first from the root, so the latest round is found first.
func FindActiveMatch(root *Node, userID int64) *Node {
	var found *Node
	Walk(root, func(n *Node) bool {
		if n.Match.HasUser(userID) && !n.Match.IsDecided() {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindParent returns the match fed by the match with the given id, nil for the root
func FindParent(root *Node, matchID int64) *Node {
	var parent *Node
	Walk(root, func(n *Node) bool {
		for _, child := range n.Children() {
			if child.Match.ID == matchID {
				parent = n
				return false
			}
		}
		return true
	})
	return parent
}

// Find returns the node holding the match with the given id
func Find(root *Node, matchID int64) *Node {
	var found *Node
	Walk(root, func(n *Node) bool {
		if n.Match.ID == matchID {
			found = n
			return false
		}
		return true
	})
	return found
}
