// Package escalation builds per-project escalation matrices from the user
// directory and the configured designation ordering.
package escalation

import (
	"math"
	"sort"
	"strconv"

	"github.com/oneteam-app/backend/internal/models"
)

// Row is one contact line of an escalation matrix, senior-most first.
type Row struct {
	Level         string `json:"level"`
	User          string `json:"user"`
	Designation   string `json:"designation"`
	Email         string `json:"email"`
	ContactNumber string `json:"contact_number"`
}

const (
	commonContactUser        = "Common Contact"
	commonContactDesignation = "L1 Support"
	notAvailable             = "N/A"
)

// Rank returns the seniority rank of a designation: the configured list is
// stored most-senior last, so the last entry ranks 0. Designations absent from
// the list rank lowest.
func Rank(designation string, table []models.Designation) int {
	for i := len(table) - 1; i >= 0; i-- {
		if table[i].Name == designation {
			return len(table) - 1 - i
		}
	}
	return math.MaxInt
}

// BuildMatrix produces the ordered contact list for a project. Users mapped to
// the project are sorted senior-first by designation rank (stable, so peers
// keep their directory order). When the project defines a common contact a
// synthetic L1 row is prepended and user levels start at L2; otherwise they
// start at L1. Consecutive users sharing a designation share a level label.
// A nil project yields an empty matrix.
func BuildMatrix(project *models.Project, users []models.User, table []models.Designation) []Row {
	if project == nil {
		return nil
	}

	var mapped []models.User
	for _, u := range users {
		if u.HasProject(project.ID) {
			mapped = append(mapped, u)
		}
	}
	sort.SliceStable(mapped, func(i, j int) bool {
		return Rank(mapped[i].Designation, table) < Rank(mapped[j].Designation, table)
	})

	var rows []Row
	level := 1
	if project.HasCommonContact() {
		rows = append(rows, Row{
			Level:         "L1",
			User:          commonContactUser,
			Designation:   commonContactDesignation,
			Email:         orNA(project.CommonContactEmail),
			ContactNumber: orNA(project.CommonContactNumber),
		})
		level = 2
	}

	for i, u := range mapped {
		if i > 0 && u.Designation != mapped[i-1].Designation {
			level++
		}
		name := u.DisplayName
		if name == "" {
			name = u.Email
		}
		rows = append(rows, Row{
			Level:         "L" + strconv.Itoa(level),
			User:          name,
			Designation:   u.Designation,
			Email:         u.Email,
			ContactNumber: orNA(u.ContactNumber),
		})
	}
	return rows
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
