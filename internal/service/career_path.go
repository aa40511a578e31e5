package service

import (
	"context"

	"github.com/talenthub/competency-api/internal/model"
	"github.com/talenthub/competency-api/internal/repository"
)

// CareerPathService manages career paths and their required competencies.
type CareerPathService struct {
	paths        *repository.CareerPathRepo
	competencies *repository.CompetencyRepo
	audit        AuditRecorder
}

func NewCareerPathService(paths *repository.CareerPathRepo, competencies *repository.CompetencyRepo,
	audit AuditRecorder) *CareerPathService {
	return &CareerPathService{paths: paths, competencies: competencies, audit: audit}
}

func (s *CareerPathService) Create(ctx context.Context, actorID uint64, p model.CareerPath, meta Meta) (model.CareerPath, error) {
	id, err := s.paths.Create(ctx, p)
	if err != nil {
		return model.CareerPath{}, err
	}
	err = s.audit.Record(ctx, model.ActionCareerPathCreate, &actorID, &Target{Type: "career_path", ID: id},
		meta.Details(map[string]any{"name": p.Name}))
	if err != nil {
		return model.CareerPath{}, err
	}
	return s.paths.GetByID(ctx, id)
}

func (s *CareerPathService) Update(ctx context.Context, actorID uint64, p model.CareerPath, meta Meta) (model.CareerPath, error) {
	if err := s.paths.Update(ctx, p); err != nil {
		return model.CareerPath{}, err
	}
	err := s.audit.Record(ctx, model.ActionCareerPathUpdate, &actorID, &Target{Type: "career_path", ID: p.ID},
		meta.Details(map[string]any{"name": p.Name}))
	if err != nil {
		return model.CareerPath{}, err
	}
	return s.paths.GetByID(ctx, p.ID)
}

func (s *CareerPathService) Delete(ctx context.Context, actorID, id uint64, meta Meta) error {
	if err := s.paths.Delete(ctx, id); err != nil {
		return err
	}
	return s.audit.Record(ctx, model.ActionCareerPathDelete, &actorID, &Target{Type: "career_path", ID: id},
		meta.Details(nil))
}

func (s *CareerPathService) Get(ctx context.Context, id uint64) (model.CareerPath, error) {
	return s.paths.GetByID(ctx, id)
}

func (s *CareerPathService) List(ctx context.Context, offset, limit int) ([]model.CareerPath, int64, error) {
	return s.paths.List(ctx, offset, limit)
}

// SetRequirement links a competency to the path at a required level, or
// adjusts the level of an existing link.
func (s *CareerPathService) SetRequirement(ctx context.Context, actorID uint64, link model.CareerPathCompetency, meta Meta) error {
	if link.RequiredLevel < 1 || link.RequiredLevel > 5 {
		return ErrLevelRange
	}
	if _, err := s.paths.GetByID(ctx, link.CareerPathID); err != nil {
		return err
	}
	if _, err := s.competencies.GetByID(ctx, link.CompetencyID); err != nil {
		return err
	}
	if err := s.paths.UpsertRequirement(ctx, link); err != nil {
		return err
	}
	return s.audit.Record(ctx, model.ActionCareerPathCompetencyAdd, &actorID, &Target{Type: "career_path", ID: link.CareerPathID},
		meta.Details(map[string]any{"competency_id": link.CompetencyID, "level": link.RequiredLevel}))
}

// RemoveRequirement detaches a competency from the path.
func (s *CareerPathService) RemoveRequirement(ctx context.Context, actorID, careerPathID, competencyID uint64, meta Meta) error {
	if err := s.paths.RemoveRequirement(ctx, careerPathID, competencyID); err != nil {
		return err
	}
	return s.audit.Record(ctx, model.ActionCareerPathCompetencyRemove, &actorID, &Target{Type: "career_path", ID: careerPathID},
		meta.Details(map[string]any{"competency_id": competencyID}))
}

// Requirements returns the path's required competencies.
func (s *CareerPathService) Requirements(ctx context.Context, careerPathID uint64) ([]model.CareerPathCompetency, error) {
	if _, err := s.paths.GetByID(ctx, careerPathID); err != nil {
		return nil, err
	}
	return s.paths.Requirements(ctx, careerPathID)
}
