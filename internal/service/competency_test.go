package service

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/talenthub/competency-api/internal/model"
	"github.com/talenthub/competency-api/internal/repository"
)

func TestValidCompetencyGroup(t *testing.T) {
	for _, code := range []string{model.GroupCore, model.GroupLeadership, model.GroupFunctional} {
		if !model.ValidCompetencyGroup(code) {
			t.Fatalf("group %q rejected", code)
		}
	}
	for _, code := range []string{"", "core", "OPS", "LEADERSHIP"} {
		if model.ValidCompetencyGroup(code) {
			t.Fatalf("group %q accepted", code)
		}
	}
}

func TestCompetencyCategoryValidation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	svc := NewCompetencyService(repository.NewCompetencyRepo(db), &stubAudit{})

	bad := "OPS"
	if _, err := svc.Create(context.Background(), 1, model.Competency{
		Name: "Incident Response", Category: &bad,
	}, testMeta()); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("Create: expected ErrInvalidCategory, got %v", err)
	}
	if _, err := svc.Update(context.Background(), 1, model.Competency{
		ID: 5, Name: "Incident Response", Category: &bad,
	}, testMeta()); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("Update: expected ErrInvalidCategory, got %v", err)
	}

	// The rejection happens before any statement reaches the database.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected database access: %v", err)
	}
}
