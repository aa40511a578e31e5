package model

// Employee links an account to the organisational structure. The manager
// reference is self-referential so reporting chains can be walked without a
// separate table.
//
// Fields:
//
//	ID        : primary key identifier.
//	UserID    : owning account (unique, one employee per user).
//	Department: organisational unit (nullable).
//	JobTitle  : current position (nullable).
//	ManagerID : employee id of the direct manager (nullable).
type Employee struct {
	ID         uint64  // employees.id
	UserID     uint64  // employees.user_id
	Department *string // employees.department (nullable)
	JobTitle   *string // employees.job_title (nullable)
	ManagerID  *uint64 // employees.manager_id (nullable, references employees.id)
}

// EmployeeCompetency is the explicit association between an employee and a
// competency, carrying the current proficiency level (1..5). It is modelled
// as an entity of its own rather than a transparent link so the level can be
// read and updated directly.
type EmployeeCompetency struct {
	EmployeeID       uint64 // employee_competencies.employee_id
	CompetencyID     uint64 // employee_competencies.competency_id
	ProficiencyLevel int    // employee_competencies.proficiency_level (1..5)
}
