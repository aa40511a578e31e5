package model

import "time"

// Competency group codes. Every categorised competency belongs to one of
// the three organisational groups.
const (
	GroupCore       = "CORE" // shared baseline competencies
	GroupLeadership = "LEAD" // leadership competencies
	GroupFunctional = "FUNC" // role-specific functional competencies
)

// ValidCompetencyGroup reports whether code is one of the known group
// codes.
func ValidCompetencyGroup(code string) bool {
	switch code {
	case GroupCore, GroupLeadership, GroupFunctional:
		return true
	}
	return false
}

// Competency is a skill tracked by the organisation.
//
// Fields:
//
//	ID         : primary key identifier.
//	Name       : unique competency name.
//	Category   : group code, one of CORE/LEAD/FUNC (nullable).
//	Description: free-form description (nullable).
//	CreatedAt  : timestamp of creation.
//	UpdatedAt  : timestamp of last update.
type Competency struct {
	ID          uint64    // competencies.id
	Name        string    // competencies.name
	Category    *string   // competencies.category (nullable)
	Description *string   // competencies.description (nullable)
	CreatedAt   time.Time // competencies.created_at
	UpdatedAt   time.Time // competencies.updated_at
}
