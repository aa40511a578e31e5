package service

import (
	"context"

	"github.com/talenthub/competency-api/internal/model"
	"github.com/talenthub/competency-api/internal/repository"
)

// CompetencyService manages the competency catalog.
type CompetencyService struct {
	competencies *repository.CompetencyRepo
	audit        AuditRecorder
}

func NewCompetencyService(competencies *repository.CompetencyRepo, audit AuditRecorder) *CompetencyService {
	return &CompetencyService{competencies: competencies, audit: audit}
}

func (s *CompetencyService) Create(ctx context.Context, actorID uint64, c model.Competency, meta Meta) (model.Competency, error) {
	if c.Category != nil && !model.ValidCompetencyGroup(*c.Category) {
		return model.Competency{}, ErrInvalidCategory
	}
	id, err := s.competencies.Create(ctx, c)
	if err != nil {
		return model.Competency{}, err
	}
	err = s.audit.Record(ctx, model.ActionCompetencyCreate, &actorID, &Target{Type: "competency", ID: id},
		meta.Details(map[string]any{"name": c.Name}))
	if err != nil {
		return model.Competency{}, err
	}
	return s.competencies.GetByID(ctx, id)
}

func (s *CompetencyService) Update(ctx context.Context, actorID uint64, c model.Competency, meta Meta) (model.Competency, error) {
	if c.Category != nil && !model.ValidCompetencyGroup(*c.Category) {
		return model.Competency{}, ErrInvalidCategory
	}
	if err := s.competencies.Update(ctx, c); err != nil {
		return model.Competency{}, err
	}
	err := s.audit.Record(ctx, model.ActionCompetencyUpdate, &actorID, &Target{Type: "competency", ID: c.ID},
		meta.Details(map[string]any{"name": c.Name}))
	if err != nil {
		return model.Competency{}, err
	}
	return s.competencies.GetByID(ctx, c.ID)
}

// Delete removes a catalog entry. Employee and career-path links cascade at
// the schema level.
func (s *CompetencyService) Delete(ctx context.Context, actorID, id uint64, meta Meta) error {
	if err := s.competencies.Delete(ctx, id); err != nil {
		return err
	}
	return s.audit.Record(ctx, model.ActionCompetencyDelete, &actorID, &Target{Type: "competency", ID: id},
		meta.Details(nil))
}

func (s *CompetencyService) Get(ctx context.Context, id uint64) (model.Competency, error) {
	return s.competencies.GetByID(ctx, id)
}

func (s *CompetencyService) List(ctx context.Context, category string, offset, limit int) ([]model.Competency, int64, error) {
	return s.competencies.List(ctx, category, offset, limit)
}
