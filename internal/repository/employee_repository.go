package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/talenthub/competency-api/internal/model"
)

// EmployeeRepo persists employee rows and their competency links.
type EmployeeRepo struct{ DB *sql.DB }

func NewEmployeeRepo(db *sql.DB) *EmployeeRepo { return &EmployeeRepo{DB: db} }

// Create inserts an employee and returns its ID.
func (r *EmployeeRepo) Create(ctx context.Context, e model.Employee) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO employees (user_id, department, job_title, manager_id) VALUES (?,?,?,?)",
		e.UserID, e.Department, e.JobTitle, e.ManagerID)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrNameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches an employee by id.
func (r *EmployeeRepo) GetByID(ctx context.Context, id uint64) (model.Employee, error) {
	return r.get(ctx, "SELECT id,user_id,department,job_title,manager_id FROM employees WHERE id=? LIMIT 1", id)
}

// GetByUserID fetches the employee owned by a user account.
func (r *EmployeeRepo) GetByUserID(ctx context.Context, userID uint64) (model.Employee, error) {
	return r.get(ctx, "SELECT id,user_id,department,job_title,manager_id FROM employees WHERE user_id=? LIMIT 1", userID)
}

func (r *EmployeeRepo) get(ctx context.Context, query string, arg any) (model.Employee, error) {
	var e model.Employee
	err := r.DB.QueryRowContext(ctx, query, arg).
		Scan(&e.ID, &e.UserID, &e.Department, &e.JobTitle, &e.ManagerID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Employee{}, ErrNotFound
	}
	return e, err
}

// List returns all employees, ordered by id.
func (r *EmployeeRepo) List(ctx context.Context, offset, limit int) ([]model.Employee, int64, error) {
	var total int64
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM employees").Scan(&total); err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,user_id,department,job_title,manager_id FROM employees ORDER BY id LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Employee
	for rows.Next() {
		var e model.Employee
		if err := rows.Scan(&e.ID, &e.UserID, &e.Department, &e.JobTitle, &e.ManagerID); err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

// Update applies department/job title/manager changes.
func (r *EmployeeRepo) Update(ctx context.Context, e model.Employee) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE employees SET department=?, job_title=?, manager_id=? WHERE id=?",
		e.Department, e.JobTitle, e.ManagerID, e.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, gerr := r.GetByID(ctx, e.ID); gerr != nil {
			return gerr
		}
	}
	return nil
}

// Delete removes an employee row.
func (r *EmployeeRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM employees WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertCompetency attaches a competency to an employee or updates the
// proficiency level of an existing link.
func (r *EmployeeRepo) UpsertCompetency(ctx context.Context, link model.EmployeeCompetency) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO employee_competencies (employee_id, competency_id, proficiency_level) VALUES (?,?,?) "+
			"ON DUPLICATE KEY UPDATE proficiency_level=VALUES(proficiency_level)",
		link.EmployeeID, link.CompetencyID, link.ProficiencyLevel)
	return err
}

// RemoveCompetency detaches a competency from an employee.
func (r *EmployeeRepo) RemoveCompetency(ctx context.Context, employeeID, competencyID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM employee_competencies WHERE employee_id=? AND competency_id=?",
		employeeID, competencyID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Competencies returns the employee's competency links, ordered by
// competency id.
func (r *EmployeeRepo) Competencies(ctx context.Context, employeeID uint64) ([]model.EmployeeCompetency, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT employee_id, competency_id, proficiency_level FROM employee_competencies WHERE employee_id=? ORDER BY competency_id",
		employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []model.EmployeeCompetency
	for rows.Next() {
		var l model.EmployeeCompetency
		if err := rows.Scan(&l.EmployeeID, &l.CompetencyID, &l.ProficiencyLevel); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}
