package users

import (
	"github.com/google/uuid"

	"github.com/oneteam-app/backend/internal/models"
)

// The mapping propagator keeps the reporting-chain invariant: every manager's
// mapped-project set contains the sets of all transitive subordinates. Added
// mappings flow up the ancestor chain; removals are blocked while a descendant
// still holds the project. The functions here plan against an in-memory
// directory snapshot; the repository applies the plan inside one transaction.

// RemovalConflict identifies a descendant that still depends on a project
// being unmapped.
type RemovalConflict struct {
	ProjectID uuid.UUID
	UserID    uuid.UUID
}

// AncestorChain returns the manager chain of id, nearest first. The walk stops
// at a missing manager reference and guards against cycles in stored data.
func AncestorChain(users []models.User, id uuid.UUID) []uuid.UUID {
	managers := make(map[uuid.UUID]*uuid.UUID, len(users))
	for _, u := range users {
		managers[u.ID] = u.ReportingTo
	}

	var chain []uuid.UUID
	seen := map[uuid.UUID]bool{id: true}
	cur := managers[id]
	for cur != nil {
		if seen[*cur] {
			break
		}
		seen[*cur] = true
		next, ok := managers[*cur]
		if !ok {
			break
		}
		chain = append(chain, *cur)
		cur = next
	}
	return chain
}

// Descendants returns all direct and transitive reports of id (BFS order).
func Descendants(users []models.User, id uuid.UUID) []uuid.UUID {
	reports := make(map[uuid.UUID][]uuid.UUID, len(users))
	for _, u := range users {
		if u.ReportingTo != nil {
			reports[*u.ReportingTo] = append(reports[*u.ReportingTo], u.ID)
		}
	}

	var out []uuid.UUID
	seen := map[uuid.UUID]bool{id: true}
	queue := append([]uuid.UUID(nil), reports[id]...)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		out = append(out, cur)
		queue = append(queue, reports[cur]...)
	}
	return out
}

// PlanAdditions computes, per ancestor of subject, the project ids from added
// that the ancestor does not yet hold. Re-planning an already-propagated id
// yields an empty plan (set union is idempotent).
func PlanAdditions(users []models.User, subject uuid.UUID, added []uuid.UUID) map[uuid.UUID][]uuid.UUID {
	byID := make(map[uuid.UUID]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	plan := make(map[uuid.UUID][]uuid.UUID)
	for _, ancestorID := range AncestorChain(users, subject) {
		ancestor, ok := byID[ancestorID]
		if !ok {
			continue
		}
		for _, pid := range dedupe(added) {
			if !ancestor.HasProject(pid) {
				plan[ancestorID] = append(plan[ancestorID], pid)
			}
		}
	}
	return plan
}

// FindRemovalConflict returns the first descendant of subject that still maps
// one of the removed project ids, or nil if the removal is safe.
func FindRemovalConflict(users []models.User, subject uuid.UUID, removed []uuid.UUID) *RemovalConflict {
	byID := make(map[uuid.UUID]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	for _, descID := range Descendants(users, subject) {
		desc, ok := byID[descID]
		if !ok {
			continue
		}
		for _, pid := range removed {
			if desc.HasProject(pid) {
				return &RemovalConflict{ProjectID: pid, UserID: descID}
			}
		}
	}
	return nil
}

// PropagationSet returns the project ids to union up the chain after an edit.
// Under an unchanged manager only the additions flow; when the user moved to a
// different manager the full requested set flows, since the new chain has not
// seen the user's existing mappings.
func PropagationSet(oldManager, newManager *uuid.UUID, added, requested []uuid.UUID) []uuid.UUID {
	if sameManager(oldManager, newManager) {
		return added
	}
	return dedupe(requested)
}

func sameManager(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// DiffMappings splits a requested mapped-project set against the current one.
func DiffMappings(current, requested []uuid.UUID) (added, removed []uuid.UUID) {
	cur := make(map[uuid.UUID]bool, len(current))
	for _, id := range current {
		cur[id] = true
	}
	req := make(map[uuid.UUID]bool, len(requested))
	for _, id := range requested {
		req[id] = true
	}
	for _, id := range dedupe(requested) {
		if !cur[id] {
			added = append(added, id)
		}
	}
	for _, id := range dedupe(current) {
		if !req[id] {
			removed = append(removed, id)
		}
	}
	return added, removed
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	var out []uuid.UUID
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
