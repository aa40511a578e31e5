package service

import (
	"context"
	"errors"

	"github.com/talenthub/competency-api/internal/model"
	"github.com/talenthub/competency-api/internal/repository"
)

// EmployeeReader is the slice of the employee repository the gap analysis
// needs.
type EmployeeReader interface {
	GetByID(ctx context.Context, id uint64) (model.Employee, error)
	Competencies(ctx context.Context, employeeID uint64) ([]model.EmployeeCompetency, error)
}

// PathReader resolves career paths and their requirements.
type PathReader interface {
	GetByID(ctx context.Context, id uint64) (model.CareerPath, error)
	Requirements(ctx context.Context, careerPathID uint64) ([]model.CareerPathCompetency, error)
}

// CompetencyReader resolves catalog entries by id.
type CompetencyReader interface {
	GetByID(ctx context.Context, id uint64) (model.Competency, error)
}

// GapService compares an employee's competency levels against a career
// path's requirements.
type GapService struct {
	employees    EmployeeReader
	paths        PathReader
	competencies CompetencyReader
	audit        AuditRecorder
}

func NewGapService(employees EmployeeReader, paths PathReader,
	competencies CompetencyReader, audit AuditRecorder) *GapService {
	return &GapService{employees: employees, paths: paths, competencies: competencies, audit: audit}
}

// GapItem is one requirement of the target path scored against the
// employee's current level. Gap is required minus current and goes
// negative when the employee exceeds the requirement.
type GapItem struct {
	CompetencyID   uint64 `json:"competency_id"`
	CompetencyName string `json:"competency_name"`
	RequiredLevel  int    `json:"required_level"`
	CurrentLevel   int    `json:"current_level"`
	Gap            int    `json:"gap"`
}

// readyThreshold is the readiness percentage at which an employee is
// flagged ready for the target role.
const readyThreshold = 80.0

// GapReport is the full analysis for one employee against one path.
type GapReport struct {
	EmployeeID    uint64    `json:"employee_id"`
	CareerPathID  uint64    `json:"career_path_id"`
	CareerPath    string    `json:"career_path"`
	Items         []GapItem `json:"items"`
	MetCount      int       `json:"met_count"`
	AcquiredCount int       `json:"acquired_count"`
	ExceedsCount  int       `json:"exceeds_count"`
	AverageGap    float64   `json:"average_gap"`
	Readiness     float64   `json:"readiness_percent"`
	ReadyForRole  bool      `json:"ready_for_role"`
}

// Analyze builds the gap report. The caller's access is decided first:
// admins see anyone, managers see their direct reports and themselves,
// employees see only themselves. The view is audited like any other
// sensitive read.
func (s *GapService) Analyze(ctx context.Context, actor model.User, employeeID, careerPathID uint64, meta Meta) (GapReport, error) {
	emp, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return GapReport{}, err
	}
	if err := s.authorize(ctx, actor, emp); err != nil {
		return GapReport{}, err
	}

	path, err := s.paths.GetByID(ctx, careerPathID)
	if err != nil {
		return GapReport{}, err
	}
	required, err := s.paths.Requirements(ctx, careerPathID)
	if err != nil {
		return GapReport{}, err
	}
	current, err := s.employees.Competencies(ctx, employeeID)
	if err != nil {
		return GapReport{}, err
	}

	levels := make(map[uint64]int, len(current))
	for _, l := range current {
		levels[l.CompetencyID] = l.ProficiencyLevel
	}

	report := GapReport{
		EmployeeID:   employeeID,
		CareerPathID: careerPathID,
		CareerPath:   path.Name,
		Items:        make([]GapItem, 0, len(required)),
	}
	totalGap := 0
	for _, req := range required {
		comp, cerr := s.competencies.GetByID(ctx, req.CompetencyID)
		if cerr != nil && !errors.Is(cerr, repository.ErrNotFound) {
			return GapReport{}, cerr
		}
		item := GapItem{
			CompetencyID:   req.CompetencyID,
			CompetencyName: comp.Name,
			RequiredLevel:  req.RequiredLevel,
			CurrentLevel:   levels[req.CompetencyID],
			Gap:            req.RequiredLevel - levels[req.CompetencyID],
		}
		totalGap += item.Gap
		if item.Gap <= 0 {
			report.MetCount++
		}
		if item.Gap < 0 {
			report.ExceedsCount++
		}
		if item.CurrentLevel > 0 {
			report.AcquiredCount++
		}
		report.Items = append(report.Items, item)
	}
	if len(report.Items) > 0 {
		report.AverageGap = float64(totalGap) / float64(len(report.Items))
		report.Readiness = float64(report.MetCount) / float64(len(report.Items)) * 100
	} else {
		// A path with no requirements is trivially met.
		report.Readiness = 100
	}
	report.ReadyForRole = report.Readiness >= readyThreshold

	err = s.audit.Record(ctx, model.ActionGapAnalysisView, &actor.ID, &Target{Type: "employee", ID: employeeID},
		meta.Details(map[string]any{"career_path_id": careerPathID}))
	if err != nil {
		return GapReport{}, err
	}
	return report, nil
}

// authorize applies the read policy. Managers are matched through the
// employee's manager link, not just their role.
func (s *GapService) authorize(ctx context.Context, actor model.User, emp model.Employee) error {
	if actor.Role == model.RoleAdmin {
		return nil
	}
	if emp.UserID == actor.ID {
		return nil
	}
	if actor.Role == model.RoleManager && emp.ManagerID != nil {
		mgr, err := s.employees.GetByID(ctx, *emp.ManagerID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrForbidden
			}
			return err
		}
		if mgr.UserID == actor.ID {
			return nil
		}
	}
	return ErrForbidden
}
