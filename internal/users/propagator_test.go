package users

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneteam-app/backend/internal/models"
)

// chain builds ceo <- mgr <- eng for the propagation tests.
func chain() (ceo, mgr, eng models.User) {
	ceo = models.User{ID: uuid.New(), DisplayName: "ceo"}
	mgr = models.User{ID: uuid.New(), DisplayName: "mgr", ReportingTo: &ceo.ID}
	eng = models.User{ID: uuid.New(), DisplayName: "eng", ReportingTo: &mgr.ID}
	return ceo, mgr, eng
}

func TestAncestorChainNearestFirst(t *testing.T) {
	ceo, mgr, eng := chain()
	directory := []models.User{ceo, mgr, eng}

	assert.Equal(t, []uuid.UUID{mgr.ID, ceo.ID}, AncestorChain(directory, eng.ID))
	assert.Equal(t, []uuid.UUID{ceo.ID}, AncestorChain(directory, mgr.ID))
	assert.Empty(t, AncestorChain(directory, ceo.ID))
}

func TestAncestorChainStopsAtMissingManager(t *testing.T) {
	gone := uuid.New()
	u := models.User{ID: uuid.New(), ReportingTo: &gone}
	assert.Empty(t, AncestorChain([]models.User{u}, u.ID))
}

func TestAncestorChainSurvivesStoredCycle(t *testing.T) {
	a := models.User{ID: uuid.New()}
	b := models.User{ID: uuid.New(), ReportingTo: &a.ID}
	a.ReportingTo = &b.ID

	chain := AncestorChain([]models.User{a, b}, a.ID)
	assert.Equal(t, []uuid.UUID{b.ID}, chain)
}

func TestDescendants(t *testing.T) {
	ceo, mgr, eng := chain()
	directory := []models.User{ceo, mgr, eng}

	assert.ElementsMatch(t, []uuid.UUID{mgr.ID, eng.ID}, Descendants(directory, ceo.ID))
	assert.Equal(t, []uuid.UUID{eng.ID}, Descendants(directory, mgr.ID))
	assert.Empty(t, Descendants(directory, eng.ID))
}

func TestPlanAdditionsPropagatesUpChain(t *testing.T) {
	ceo, mgr, eng := chain()
	project := uuid.New()
	directory := []models.User{ceo, mgr, eng}

	plan := PlanAdditions(directory, eng.ID, []uuid.UUID{project})
	require.Len(t, plan, 2)
	assert.Equal(t, []uuid.UUID{project}, plan[mgr.ID])
	assert.Equal(t, []uuid.UUID{project}, plan[ceo.ID])
}

func TestPlanAdditionsIdempotent(t *testing.T) {
	ceo, mgr, eng := chain()
	project := uuid.New()
	mgr.MappedProjects = []uuid.UUID{project}
	ceo.MappedProjects = []uuid.UUID{project}
	directory := []models.User{ceo, mgr, eng}

	plan := PlanAdditions(directory, eng.ID, []uuid.UUID{project})
	assert.Empty(t, plan)
}

func TestFindRemovalConflict(t *testing.T) {
	ceo, mgr, eng := chain()
	project := uuid.New()
	eng.MappedProjects = []uuid.UUID{project}
	directory := []models.User{ceo, mgr, eng}

	conflict := FindRemovalConflict(directory, mgr.ID, []uuid.UUID{project})
	require.NotNil(t, conflict)
	assert.Equal(t, project, conflict.ProjectID)
	assert.Equal(t, eng.ID, conflict.UserID)

	// no descendant holds the project
	assert.Nil(t, FindRemovalConflict(directory, eng.ID, []uuid.UUID{project}))
	assert.Nil(t, FindRemovalConflict(directory, mgr.ID, []uuid.UUID{uuid.New()}))
}

func TestPropagationSet(t *testing.T) {
	oldMgr := uuid.New()
	newMgr := uuid.New()
	keep := uuid.New()
	add := uuid.New()

	// same manager: only the additions flow
	assert.Equal(t, []uuid.UUID{add},
		PropagationSet(&oldMgr, &oldMgr, []uuid.UUID{add}, []uuid.UUID{keep, add}))
	assert.Empty(t, PropagationSet(nil, nil, nil, []uuid.UUID{keep}))

	// manager changed: the full requested set flows
	assert.Equal(t, []uuid.UUID{keep, add},
		PropagationSet(&oldMgr, &newMgr, []uuid.UUID{add}, []uuid.UUID{keep, add}))
	assert.Equal(t, []uuid.UUID{keep},
		PropagationSet(nil, &newMgr, nil, []uuid.UUID{keep}))
	assert.Equal(t, []uuid.UUID{keep},
		PropagationSet(&oldMgr, nil, nil, []uuid.UUID{keep}))
}

func TestReparentPropagatesExistingMappings(t *testing.T) {
	project := uuid.New()
	oldMgr := models.User{ID: uuid.New(), DisplayName: "old", MappedProjects: []uuid.UUID{project}}
	newMgr := models.User{ID: uuid.New(), DisplayName: "new"}
	eng := models.User{ID: uuid.New(), DisplayName: "eng", ReportingTo: &oldMgr.ID, MappedProjects: []uuid.UUID{project}}

	// mappings untouched, only the manager changes
	propagate := PropagationSet(eng.ReportingTo, &newMgr.ID, nil, eng.MappedProjects)
	require.Equal(t, []uuid.UUID{project}, propagate)

	eng.ReportingTo = &newMgr.ID
	plan := PlanAdditions([]models.User{oldMgr, newMgr, eng}, eng.ID, propagate)
	require.Len(t, plan, 1)
	assert.Equal(t, []uuid.UUID{project}, plan[newMgr.ID])
}

func TestDiffMappings(t *testing.T) {
	keep := uuid.New()
	drop := uuid.New()
	add := uuid.New()

	added, removed := DiffMappings([]uuid.UUID{keep, drop}, []uuid.UUID{keep, add})
	assert.Equal(t, []uuid.UUID{add}, added)
	assert.Equal(t, []uuid.UUID{drop}, removed)

	added, removed = DiffMappings([]uuid.UUID{keep}, []uuid.UUID{keep})
	assert.Empty(t, added)
	assert.Empty(t, removed)

	// duplicates in the request collapse
	added, removed = DiffMappings(nil, []uuid.UUID{add, add})
	assert.Equal(t, []uuid.UUID{add}, added)
	assert.Empty(t, removed)
}
