package model

import "time"

// CareerPath is a target role profile employees can be measured against.
type CareerPath struct {
	ID          uint64    // career_paths.id
	Name        string    // career_paths.name
	Description *string   // career_paths.description (nullable)
	CreatedAt   time.Time // career_paths.created_at
	UpdatedAt   time.Time // career_paths.updated_at
}

// CareerPathCompetency links a career path to a competency with the
// proficiency level the path requires. Explicit association entity: the
// required level belongs to the pair, not to either side.
type CareerPathCompetency struct {
	CareerPathID  uint64 // career_path_competencies.career_path_id
	CompetencyID  uint64 // career_path_competencies.competency_id
	RequiredLevel int    // career_path_competencies.required_level (1..5)
}
