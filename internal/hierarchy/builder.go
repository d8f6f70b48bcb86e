// Package hierarchy derives the reporting forest from the user directory.
package hierarchy

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/oneteam-app/backend/internal/models"
)

// Node is a user in the reporting tree. Depth is 0 for roots.
type Node struct {
	User     models.User `json:"user"`
	Depth    int         `json:"depth"`
	Children []*Node     `json:"children,omitempty"`
}

// FlatRow is one line of the flattened hierarchy export.
type FlatRow struct {
	Level       string `json:"level"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Designation string `json:"designation"`
	ReportingTo string `json:"reporting_to"`
}

// Build produces the forest of users. Roots are users with no manager or a
// manager id that matches no user in the directory. Traversal keeps a visited
// set so malformed data with a reporting cycle cannot recurse without bound;
// users inside such a cycle are unreachable from any root and are omitted.
func Build(users []models.User) []*Node {
	known := make(map[uuid.UUID]bool, len(users))
	for _, u := range users {
		known[u.ID] = true
	}

	children := make(map[uuid.UUID][]models.User)
	var rootUsers []models.User
	for _, u := range users {
		if u.ReportingTo == nil || !known[*u.ReportingTo] {
			rootUsers = append(rootUsers, u)
			continue
		}
		children[*u.ReportingTo] = append(children[*u.ReportingTo], u)
	}

	visited := make(map[uuid.UUID]bool, len(users))
	var attach func(u models.User, depth int) *Node
	attach = func(u models.User, depth int) *Node {
		visited[u.ID] = true
		n := &Node{User: u, Depth: depth}
		for _, child := range children[u.ID] {
			if visited[child.ID] {
				continue
			}
			n.Children = append(n.Children, attach(child, depth+1))
		}
		return n
	}

	var roots []*Node
	for _, u := range rootUsers {
		if !visited[u.ID] {
			roots = append(roots, attach(u, 0))
		}
	}
	return roots
}

// Flatten walks the forest depth-first pre-order, emitting one row per user
// with Level "L<depth+1>" and the manager's display name ("N/A" for roots).
func Flatten(roots []*Node) []FlatRow {
	byID := make(map[uuid.UUID]string)
	var index func(n *Node)
	index = func(n *Node) {
		byID[n.User.ID] = n.User.DisplayName
		for _, c := range n.Children {
			index(c)
		}
	}
	for _, r := range roots {
		index(r)
	}

	var rows []FlatRow
	var walk func(n *Node)
	walk = func(n *Node) {
		reportingTo := "N/A"
		if n.User.ReportingTo != nil {
			if name, ok := byID[*n.User.ReportingTo]; ok {
				reportingTo = name
			}
		}
		rows = append(rows, FlatRow{
			Level:       levelLabel(n.Depth + 1),
			Name:        n.User.DisplayName,
			Email:       n.User.Email,
			Designation: n.User.Designation,
			ReportingTo: reportingTo,
		})
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return rows
}

// WouldCycle reports whether setting userID's manager to newManager would close
// a reporting cycle. Walks the manager chain from newManager; a dangling
// manager reference terminates the walk.
func WouldCycle(users []models.User, userID uuid.UUID, newManager *uuid.UUID) bool {
	if newManager == nil {
		return false
	}
	if *newManager == userID {
		return true
	}
	managers := make(map[uuid.UUID]*uuid.UUID, len(users))
	for _, u := range users {
		managers[u.ID] = u.ReportingTo
	}
	seen := map[uuid.UUID]bool{userID: true}
	cur := newManager
	for cur != nil {
		if seen[*cur] {
			return true
		}
		seen[*cur] = true
		next, ok := managers[*cur]
		if !ok {
			return false
		}
		cur = next
	}
	return false
}

func levelLabel(n int) string {
	return "L" + strconv.Itoa(n)
}
