package domain

import (
	"time"

	"github.com/google/uuid"
)

// Generation names the storage generation a user identifier belongs to.
type Generation int

const (
	// GenerationLegacy is the original flat user table with opaque ids.
	GenerationLegacy Generation = iota + 1
	// GenerationCurrent is the UUID-keyed profile model.
	GenerationCurrent
)

// String implements fmt.Stringer.
func (g Generation) String() string {
	switch g {
	case GenerationLegacy:
		return "legacy"
	case GenerationCurrent:
		return "current"
	default:
		return "unknown"
	}
}

// Other returns the opposite generation.
func (g Generation) Other() Generation {
	if g == GenerationCurrent {
		return GenerationLegacy
	}
	return GenerationCurrent
}

// uuidLen is the length of the canonical 8-4-4-4-12 textual UUID form.
const uuidLen = 36

// ClassifyID returns the generation an id's shape points to. Only the
// canonical 36-character UUID form is Current-shaped.
func ClassifyID(id string) Generation {
	if len(id) != uuidLen {
		return GenerationLegacy
	}
	if _, err := uuid.Parse(id); err != nil {
		return GenerationLegacy
	}
	return GenerationCurrent
}

// Identity is a user id tagged with the generation whose profile table
// actually holds it. It is produced once by the identity resolver and passed
// to downstream components, which never sniff id shapes themselves.
type Identity struct {
	ID         string
	Generation Generation
}

// Legacy builds a legacy-generation identity.
func Legacy(id string) Identity { return Identity{ID: id, Generation: GenerationLegacy} }

// Current builds a current-generation identity.
func Current(id string) Identity { return Identity{ID: id, Generation: GenerationCurrent} }

// IsLegacy reports whether the identity resolved against the legacy table.
func (i Identity) IsLegacy() bool { return i.Generation == GenerationLegacy }

// IsCurrent reports whether the identity resolved against the current table.
func (i Identity) IsCurrent() bool { return i.Generation == GenerationCurrent }

// UserProfile is the generation-independent read model of a profile.
type UserProfile struct {
	ID               string
	FirstName        string
	LastName         string
	Email            string
	FarmName         *string
	FarmLatitude     *float64
	FarmLongitude    *float64
	FarmSizeHectares *float64
}

// ProfileFromUser converts a current-schema row.
func ProfileFromUser(u User) UserProfile {
	return UserProfile{
		ID:               u.ID,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Email:            u.Email,
		FarmName:         u.FarmName,
		FarmLatitude:     u.FarmLatitude,
		FarmLongitude:    u.FarmLongitude,
		FarmSizeHectares: u.FarmSizeHectares,
	}
}

// ProfileFromLegacy converts a legacy row. Legacy profiles carry no farm data.
func ProfileFromLegacy(u LegacyUser) UserProfile {
	return UserProfile{
		ID:        u.UserID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}

// ResolvedProfile pairs an Identity with the profile found for it.
type ResolvedProfile struct {
	Identity Identity
	Profile  UserProfile
}

// DateOf truncates t to its calendar day at UTC midnight. All date-keyed
// columns store values produced by DateOf so equality and range predicates
// compare like with like.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
