package hierarchy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneteam-app/backend/internal/models"
)

func user(name string, reportingTo *uuid.UUID) models.User {
	return models.User{
		ID:          uuid.New(),
		Email:       name + "@example.com",
		DisplayName: name,
		Designation: "Engineer",
		ReportingTo: reportingTo,
	}
}

func TestBuildThreeLevels(t *testing.T) {
	ceo := user("ceo", nil)
	mgr := user("mgr", &ceo.ID)
	eng := user("eng", &mgr.ID)

	roots := Build([]models.User{eng, mgr, ceo})
	require.Len(t, roots, 1)

	root := roots[0]
	assert.Equal(t, ceo.ID, root.User.ID)
	assert.Equal(t, 0, root.Depth)
	require.Len(t, root.Children, 1)
	assert.Equal(t, mgr.ID, root.Children[0].User.ID)
	require.Len(t, root.Children[0].Children, 1)
	assert.Equal(t, eng.ID, root.Children[0].Children[0].User.ID)
	assert.Equal(t, 2, root.Children[0].Children[0].Depth)
}

func TestBuildDanglingManagerBecomesRoot(t *testing.T) {
	gone := uuid.New()
	orphan := user("orphan", &gone)
	top := user("top", nil)

	roots := Build([]models.User{orphan, top})
	require.Len(t, roots, 2)

	ids := []uuid.UUID{roots[0].User.ID, roots[1].User.ID}
	assert.Contains(t, ids, orphan.ID)
	assert.Contains(t, ids, top.ID)
	assert.Equal(t, 0, roots[0].Depth)
	assert.Equal(t, 0, roots[1].Depth)
}

func TestBuildMultipleForests(t *testing.T) {
	a := user("a", nil)
	a1 := user("a1", &a.ID)
	b := user("b", nil)

	roots := Build([]models.User{a1, b, a})
	require.Len(t, roots, 2)
	for _, r := range roots {
		if r.User.ID == a.ID {
			require.Len(t, r.Children, 1)
			assert.Equal(t, a1.ID, r.Children[0].User.ID)
		}
	}
}

func TestFlattenLevelsAndManagerNames(t *testing.T) {
	ceo := user("ceo", nil)
	mgr := user("mgr", &ceo.ID)
	eng := user("eng", &mgr.ID)

	rows := Flatten(Build([]models.User{ceo, mgr, eng}))
	require.Len(t, rows, 3)

	assert.Equal(t, "L1", rows[0].Level)
	assert.Equal(t, "ceo", rows[0].Name)
	assert.Equal(t, "N/A", rows[0].ReportingTo)

	assert.Equal(t, "L2", rows[1].Level)
	assert.Equal(t, "ceo", rows[1].ReportingTo)

	assert.Equal(t, "L3", rows[2].Level)
	assert.Equal(t, "mgr", rows[2].ReportingTo)
}

func TestFlattenEmptyDirectory(t *testing.T) {
	assert.Empty(t, Flatten(Build(nil)))
}

func TestWouldCycle(t *testing.T) {
	ceo := user("ceo", nil)
	mgr := user("mgr", &ceo.ID)
	eng := user("eng", &mgr.ID)
	directory := []models.User{ceo, mgr, eng}

	// moving the ceo under their own transitive report closes a cycle
	assert.True(t, WouldCycle(directory, ceo.ID, &eng.ID))
	assert.True(t, WouldCycle(directory, mgr.ID, &eng.ID))

	// self-reference
	assert.True(t, WouldCycle(directory, eng.ID, &eng.ID))

	// legal moves
	assert.False(t, WouldCycle(directory, eng.ID, &ceo.ID))
	assert.False(t, WouldCycle(directory, eng.ID, nil))

	// manager outside the directory terminates the walk
	outside := uuid.New()
	assert.False(t, WouldCycle(directory, eng.ID, &outside))
}
