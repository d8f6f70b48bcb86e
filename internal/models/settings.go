package models

// Country is a configured country option for project creation.
type Country struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// Designation is a configured seniority title. Position preserves insertion
// order; the stored list is most-senior last.
type Designation struct {
	Name     string `json:"name"`
	Position int    `json:"-"`
}
