package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/talenthub/competency-api/internal/model"
	"github.com/talenthub/competency-api/internal/repository"
)

type stubGapData struct {
	employees    map[uint64]model.Employee
	links        map[uint64][]model.EmployeeCompetency
	paths        map[uint64]model.CareerPath
	requirements map[uint64][]model.CareerPathCompetency
	competencies map[uint64]model.Competency
}

func (s *stubGapData) GetByID(_ context.Context, id uint64) (model.Employee, error) {
	e, ok := s.employees[id]
	if !ok {
		return model.Employee{}, repository.ErrNotFound
	}
	return e, nil
}

func (s *stubGapData) Competencies(_ context.Context, employeeID uint64) ([]model.EmployeeCompetency, error) {
	return s.links[employeeID], nil
}

type stubPathData struct{ d *stubGapData }

func (s stubPathData) GetByID(_ context.Context, id uint64) (model.CareerPath, error) {
	p, ok := s.d.paths[id]
	if !ok {
		return model.CareerPath{}, repository.ErrNotFound
	}
	return p, nil
}

func (s stubPathData) Requirements(_ context.Context, id uint64) ([]model.CareerPathCompetency, error) {
	return s.d.requirements[id], nil
}

type stubCompData struct{ d *stubGapData }

func (s stubCompData) GetByID(_ context.Context, id uint64) (model.Competency, error) {
	c, ok := s.d.competencies[id]
	if !ok {
		return model.Competency{}, repository.ErrNotFound
	}
	return c, nil
}

func newGapFixture() (*stubGapData, *stubAudit, *GapService) {
	managerID := uint64(1)
	d := &stubGapData{
		employees: map[uint64]model.Employee{
			1: {ID: 1, UserID: 10}, // the manager
			2: {ID: 2, UserID: 20, ManagerID: &managerID}, // their report
			3: {ID: 3, UserID: 30},                        // unrelated
		},
		links: map[uint64][]model.EmployeeCompetency{
			2: {
				{EmployeeID: 2, CompetencyID: 100, ProficiencyLevel: 3},
				{EmployeeID: 2, CompetencyID: 101, ProficiencyLevel: 5},
			},
		},
		paths: map[uint64]model.CareerPath{
			7: {ID: 7, Name: "Senior Engineer"},
		},
		requirements: map[uint64][]model.CareerPathCompetency{
			7: {
				{CareerPathID: 7, CompetencyID: 100, RequiredLevel: 4}, // gap 1
				{CareerPathID: 7, CompetencyID: 101, RequiredLevel: 3}, // exceeded, gap -2
				{CareerPathID: 7, CompetencyID: 102, RequiredLevel: 2}, // missing, gap 2
			},
		},
		competencies: map[uint64]model.Competency{
			100: {ID: 100, Name: "Go"},
			101: {ID: 101, Name: "SQL"},
			102: {ID: 102, Name: "Kubernetes"},
		},
	}
	audit := &stubAudit{}
	svc := NewGapService(d, stubPathData{d}, stubCompData{d}, audit)
	return d, audit, svc
}

func TestGapAnalyze(t *testing.T) {
	_, audit, svc := newGapFixture()
	admin := model.User{ID: 99, Role: model.RoleAdmin}

	report, err := svc.Analyze(context.Background(), admin, 2, 7, testMeta())
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if len(report.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(report.Items))
	}

	byComp := map[uint64]GapItem{}
	for _, item := range report.Items {
		byComp[item.CompetencyID] = item
	}
	if got := byComp[100]; got.Gap != 1 || got.CurrentLevel != 3 {
		t.Fatalf("competency 100: %+v, want gap 1 current 3", got)
	}
	if got := byComp[101]; got.Gap != -2 {
		t.Fatalf("competency 101: %+v, want gap -2", got)
	}
	if got := byComp[102]; got.Gap != 2 || got.CurrentLevel != 0 {
		t.Fatalf("competency 102: %+v, want gap 2 current 0", got)
	}
	if report.MetCount != 1 {
		t.Fatalf("met count = %d, want 1", report.MetCount)
	}
	if report.AcquiredCount != 2 || report.ExceedsCount != 1 {
		t.Fatalf("acquired = %d exceeds = %d, want 2 and 1", report.AcquiredCount, report.ExceedsCount)
	}
	if math.Abs(report.AverageGap-1.0/3.0) > 0.01 {
		t.Fatalf("average gap = %f, want one third", report.AverageGap)
	}
	if math.Abs(report.Readiness-100.0/3.0) > 0.01 {
		t.Fatalf("readiness = %f, want one third", report.Readiness)
	}
	if report.ReadyForRole {
		t.Fatal("employee flagged ready at one-third readiness")
	}

	if ev := audit.last(t); ev.action != model.ActionGapAnalysisView {
		t.Fatalf("audit action = %q, want %q", ev.action, model.ActionGapAnalysisView)
	}
}

func TestGapAnalyzeEmptyPath(t *testing.T) {
	d, _, svc := newGapFixture()
	d.requirements[7] = nil
	admin := model.User{ID: 99, Role: model.RoleAdmin}

	report, err := svc.Analyze(context.Background(), admin, 2, 7, testMeta())
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if report.Readiness != 100 {
		t.Fatalf("readiness = %f, want 100 for a path with no requirements", report.Readiness)
	}
	if !report.ReadyForRole {
		t.Fatal("empty path should read as ready")
	}
}

func TestGapAnalyzeAuthorization(t *testing.T) {
	_, _, svc := newGapFixture()

	cases := []struct {
		name    string
		actor   model.User
		empID   uint64
		wantErr error
	}{
		{"admin sees anyone", model.User{ID: 99, Role: model.RoleAdmin}, 2, nil},
		{"employee sees self", model.User{ID: 20, Role: model.RoleEmployee}, 2, nil},
		{"employee cannot see others", model.User{ID: 30, Role: model.RoleEmployee}, 2, ErrForbidden},
		{"manager sees their report", model.User{ID: 10, Role: model.RoleManager}, 2, nil},
		{"manager cannot see non-reports", model.User{ID: 10, Role: model.RoleManager}, 3, ErrForbidden},
		{"manager sees self", model.User{ID: 10, Role: model.RoleManager}, 1, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Analyze(context.Background(), tc.actor, tc.empID, 7, testMeta())
			if tc.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestGapAnalyzeUnknownIDs(t *testing.T) {
	_, _, svc := newGapFixture()
	admin := model.User{ID: 99, Role: model.RoleAdmin}

	if _, err := svc.Analyze(context.Background(), admin, 404, 7, testMeta()); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("unknown employee: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Analyze(context.Background(), admin, 2, 404, testMeta()); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("unknown path: expected ErrNotFound, got %v", err)
	}
}
