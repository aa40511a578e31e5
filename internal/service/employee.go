package service

import (
	"context"
	"errors"

	"github.com/talenthub/competency-api/internal/model"
	"github.com/talenthub/competency-api/internal/repository"
)

// EmployeeService manages employee profiles and their competency links.
// Writes require manager or admin; reads are open to any authenticated
// caller.
type EmployeeService struct {
	employees    *repository.EmployeeRepo
	competencies *repository.CompetencyRepo
	users        UserStore
	audit        AuditRecorder
}

func NewEmployeeService(employees *repository.EmployeeRepo, competencies *repository.CompetencyRepo,
	users UserStore, audit AuditRecorder) *EmployeeService {
	return &EmployeeService{employees: employees, competencies: competencies, users: users, audit: audit}
}

// Create links a user account to an employee profile. The user must exist
// and must not already own a profile.
func (s *EmployeeService) Create(ctx context.Context, actorID uint64, e model.Employee, meta Meta) (model.Employee, error) {
	if _, err := s.users.GetByID(ctx, e.UserID); err != nil {
		return model.Employee{}, err
	}
	if e.ManagerID != nil {
		if _, err := s.employees.GetByID(ctx, *e.ManagerID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return model.Employee{}, ErrManagerNotFound
			}
			return model.Employee{}, err
		}
	}
	id, err := s.employees.Create(ctx, e)
	if err != nil {
		return model.Employee{}, err
	}
	e.ID = id
	err = s.audit.Record(ctx, model.ActionEmployeeCreate, &actorID, &Target{Type: "employee", ID: id},
		meta.Details(map[string]any{"user_id": e.UserID}))
	if err != nil {
		return model.Employee{}, err
	}
	return e, nil
}

// Update rewrites department, job title and manager.
func (s *EmployeeService) Update(ctx context.Context, actorID uint64, e model.Employee, meta Meta) (model.Employee, error) {
	if e.ManagerID != nil {
		if *e.ManagerID == e.ID {
			return model.Employee{}, ErrSelfManager
		}
		if _, err := s.employees.GetByID(ctx, *e.ManagerID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return model.Employee{}, ErrManagerNotFound
			}
			return model.Employee{}, err
		}
	}
	if err := s.employees.Update(ctx, e); err != nil {
		return model.Employee{}, err
	}
	err := s.audit.Record(ctx, model.ActionEmployeeUpdate, &actorID, &Target{Type: "employee", ID: e.ID},
		meta.Details(nil))
	if err != nil {
		return model.Employee{}, err
	}
	return s.employees.GetByID(ctx, e.ID)
}

// Delete removes an employee profile. Competency links cascade; the user
// account itself survives.
func (s *EmployeeService) Delete(ctx context.Context, actorID, id uint64, meta Meta) error {
	if err := s.employees.Delete(ctx, id); err != nil {
		return err
	}
	return s.audit.Record(ctx, model.ActionEmployeeDelete, &actorID, &Target{Type: "employee", ID: id},
		meta.Details(nil))
}

// Get fetches a single employee.
func (s *EmployeeService) Get(ctx context.Context, id uint64) (model.Employee, error) {
	return s.employees.GetByID(ctx, id)
}

// GetByUser fetches the employee profile owned by a user account.
func (s *EmployeeService) GetByUser(ctx context.Context, userID uint64) (model.Employee, error) {
	return s.employees.GetByUserID(ctx, userID)
}

// List pages through employees.
func (s *EmployeeService) List(ctx context.Context, offset, limit int) ([]model.Employee, int64, error) {
	return s.employees.List(ctx, offset, limit)
}

// SetCompetency attaches a competency at a proficiency level, or adjusts the
// level of an existing link. The audit action distinguishes add from update.
func (s *EmployeeService) SetCompetency(ctx context.Context, actorID uint64, link model.EmployeeCompetency, meta Meta) error {
	if link.ProficiencyLevel < 1 || link.ProficiencyLevel > 5 {
		return ErrLevelRange
	}
	if _, err := s.employees.GetByID(ctx, link.EmployeeID); err != nil {
		return err
	}
	if _, err := s.competencies.GetByID(ctx, link.CompetencyID); err != nil {
		return err
	}

	existing, err := s.employees.Competencies(ctx, link.EmployeeID)
	if err != nil {
		return err
	}
	action := model.ActionEmployeeCompetencyAdd
	for _, l := range existing {
		if l.CompetencyID == link.CompetencyID {
			action = model.ActionEmployeeCompetencyUpdate
			break
		}
	}

	if err := s.employees.UpsertCompetency(ctx, link); err != nil {
		return err
	}
	return s.audit.Record(ctx, action, &actorID, &Target{Type: "employee", ID: link.EmployeeID},
		meta.Details(map[string]any{"competency_id": link.CompetencyID, "level": link.ProficiencyLevel}))
}

// RemoveCompetency detaches a competency from an employee.
func (s *EmployeeService) RemoveCompetency(ctx context.Context, actorID, employeeID, competencyID uint64, meta Meta) error {
	if err := s.employees.RemoveCompetency(ctx, employeeID, competencyID); err != nil {
		return err
	}
	return s.audit.Record(ctx, model.ActionEmployeeCompetencyRemove, &actorID, &Target{Type: "employee", ID: employeeID},
		meta.Details(map[string]any{"competency_id": competencyID}))
}

// Competencies returns an employee's competency links.
func (s *EmployeeService) Competencies(ctx context.Context, employeeID uint64) ([]model.EmployeeCompetency, error) {
	if _, err := s.employees.GetByID(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.employees.Competencies(ctx, employeeID)
}
