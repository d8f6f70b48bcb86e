package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDeriveProjectCode(t *testing.T) {
	assert.Equal(t, "IND-PROJECT-ALPHA", DeriveProjectCode("IND", "Project Alpha"))
	assert.Equal(t, "USA-ACME-2024", DeriveProjectCode("usa", "Acme 2024"))
	assert.Equal(t, "DEU-A-B", DeriveProjectCode("DEU", "  a -- b  "))
	assert.Equal(t, "FRA", DeriveProjectCode("FRA", ""))
}

func TestParseAMCMso(t *testing.T) {
	got, ok := ParseAMCMso("amc")
	assert.True(t, ok)
	assert.Equal(t, AMCMsoAMC, got)

	got, ok = ParseAMCMso("")
	assert.True(t, ok)
	assert.Equal(t, AMCMsoNotApplicable, got)

	_, ok = ParseAMCMso("warranty")
	assert.False(t, ok)
}

func TestDefaultDisplayName(t *testing.T) {
	assert.Equal(t, "jane.doe", DefaultDisplayName("jane.doe@example.com"))
	assert.Equal(t, "no-at-sign", DefaultDisplayName("no-at-sign"))
	assert.Equal(t, "@leading", DefaultDisplayName("@leading"))
}

func TestUserHasProject(t *testing.T) {
	p := uuid.New()
	u := User{MappedProjects: []uuid.UUID{uuid.New(), p}}
	assert.True(t, u.HasProject(p))
	assert.False(t, u.HasProject(uuid.New()))
}

func TestInviteValid(t *testing.T) {
	now := time.Now()
	live := Invite{ExpiresAt: now.Add(time.Hour)}
	assert.True(t, live.Valid(now))

	expired := Invite{ExpiresAt: now.Add(-time.Minute)}
	assert.False(t, expired.Valid(now))

	used := Invite{Used: true, ExpiresAt: now.Add(time.Hour)}
	assert.False(t, used.Valid(now))
}
