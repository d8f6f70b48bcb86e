package escalation

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneteam-app/backend/internal/models"
)

var designations = []models.Designation{
	{Name: "Engineer"},
	{Name: "Manager"},
	{Name: "Director"}, // most senior, stored last
}

func mappedUser(name, designation string, projectID uuid.UUID) models.User {
	return models.User{
		ID:             uuid.New(),
		Email:          name + "@example.com",
		DisplayName:    name,
		Designation:    designation,
		ContactNumber:  "+1-555-0100",
		MappedProjects: []uuid.UUID{projectID},
	}
}

func TestRank(t *testing.T) {
	assert.Equal(t, 0, Rank("Director", designations))
	assert.Equal(t, 1, Rank("Manager", designations))
	assert.Equal(t, 2, Rank("Engineer", designations))
	assert.Equal(t, math.MaxInt, Rank("Intern", designations))
}

func TestBuildMatrixSeniorFirstWithCompression(t *testing.T) {
	project := &models.Project{ID: uuid.New(), Name: "Alpha"}
	dir := mappedUser("dana", "Director", project.ID)
	mgr1 := mappedUser("mia", "Manager", project.ID)
	mgr2 := mappedUser("mo", "Manager", project.ID)
	eng := mappedUser("eve", "Engineer", project.ID)

	rows := BuildMatrix(project, []models.User{eng, mgr1, dir, mgr2}, designations)
	require.Len(t, rows, 4)

	assert.Equal(t, "L1", rows[0].Level)
	assert.Equal(t, "dana", rows[0].User)

	// peers share a level and keep their directory order
	assert.Equal(t, "L2", rows[1].Level)
	assert.Equal(t, "mia", rows[1].User)
	assert.Equal(t, "L2", rows[2].Level)
	assert.Equal(t, "mo", rows[2].User)

	assert.Equal(t, "L3", rows[3].Level)
	assert.Equal(t, "eve", rows[3].User)
}

func TestBuildMatrixCommonContactRow(t *testing.T) {
	project := &models.Project{
		ID:                 uuid.New(),
		Name:               "Alpha",
		CommonContactEmail: "support@example.com",
	}
	mgr := mappedUser("mia", "Manager", project.ID)

	rows := BuildMatrix(project, []models.User{mgr}, designations)
	require.Len(t, rows, 2)

	assert.Equal(t, "L1", rows[0].Level)
	assert.Equal(t, "Common Contact", rows[0].User)
	assert.Equal(t, "L1 Support", rows[0].Designation)
	assert.Equal(t, "support@example.com", rows[0].Email)
	assert.Equal(t, "N/A", rows[0].ContactNumber)

	assert.Equal(t, "L2", rows[1].Level)
	assert.Equal(t, "mia", rows[1].User)
}

func TestBuildMatrixUnknownDesignationSortsLast(t *testing.T) {
	project := &models.Project{ID: uuid.New(), Name: "Alpha"}
	intern := mappedUser("ira", "Intern", project.ID)
	eng := mappedUser("eve", "Engineer", project.ID)

	rows := BuildMatrix(project, []models.User{intern, eng}, designations)
	require.Len(t, rows, 2)
	assert.Equal(t, "eve", rows[0].User)
	assert.Equal(t, "ira", rows[1].User)
}

func TestBuildMatrixFiltersUnmappedUsers(t *testing.T) {
	project := &models.Project{ID: uuid.New(), Name: "Alpha"}
	other := uuid.New()
	in := mappedUser("eve", "Engineer", project.ID)
	out := mappedUser("oz", "Engineer", other)

	rows := BuildMatrix(project, []models.User{in, out}, designations)
	require.Len(t, rows, 1)
	assert.Equal(t, "eve", rows[0].User)
}

func TestBuildMatrixFallsBackToEmailForName(t *testing.T) {
	project := &models.Project{ID: uuid.New(), Name: "Alpha"}
	u := mappedUser("eve", "Engineer", project.ID)
	u.DisplayName = ""
	u.ContactNumber = ""

	rows := BuildMatrix(project, []models.User{u}, designations)
	require.Len(t, rows, 1)
	assert.Equal(t, "eve@example.com", rows[0].User)
	assert.Equal(t, "N/A", rows[0].ContactNumber)
}

func TestBuildMatrixNilProject(t *testing.T) {
	assert.Nil(t, BuildMatrix(nil, []models.User{mappedUser("eve", "Engineer", uuid.New())}, designations))
}
