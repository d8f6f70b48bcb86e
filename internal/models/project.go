package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AMCMso is the maintenance contract classification of a project.
type AMCMso string

const (
	AMCMsoNotApplicable AMCMso = "not_applicable"
	AMCMsoAMC           AMCMso = "amc"
	AMCMsoMSO           AMCMso = "mso"
)

// ParseAMCMso validates a contract classification string.
func ParseAMCMso(s string) (AMCMso, bool) {
	switch AMCMso(s) {
	case AMCMsoNotApplicable, AMCMsoAMC, AMCMsoMSO:
		return AMCMso(s), true
	case "":
		return AMCMsoNotApplicable, true
	}
	return "", false
}

// Project is a registry entry. The common contact fields, when set, become the
// synthetic L1 row of the project's escalation matrix.
type Project struct {
	ID                  uuid.UUID `json:"id"`
	Name                string    `json:"name"`
	ProjectCode         string    `json:"project_code"`
	CRMID               string    `json:"crm_id"`
	CustomerName        string    `json:"customer_name"`
	Product             string    `json:"product"`
	CountryCode         string    `json:"country_code"`
	AMCMso              AMCMso    `json:"amc_mso"`
	ContractDetails     string    `json:"contract_details"`
	OwnerID             uuid.UUID `json:"owner_id"`
	CommonContactEmail  string    `json:"common_contact_email"`
	CommonContactNumber string    `json:"common_contact_number"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// HasCommonContact reports whether the project defines a common contact.
func (p *Project) HasCommonContact() bool {
	return p.CommonContactEmail != "" || p.CommonContactNumber != ""
}

// DeriveProjectCode builds the project code from the country code and name,
// e.g. ("IND", "Project Alpha") -> "IND-PROJECT-ALPHA".
func DeriveProjectCode(countryCode, name string) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(strings.TrimSpace(countryCode)))
	b.WriteByte('-')
	lastDash := true
	for _, r := range strings.ToUpper(name) {
		switch {
		case r >= 'A' && r <= 'Z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
