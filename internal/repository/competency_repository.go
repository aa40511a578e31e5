package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/talenthub/competency-api/internal/model"
)

// CompetencyRepo persists competency rows.
type CompetencyRepo struct{ DB *sql.DB }

func NewCompetencyRepo(db *sql.DB) *CompetencyRepo { return &CompetencyRepo{DB: db} }

const competencyColumns = "id,name,category,description,created_at,updated_at"

// Create inserts a competency and returns its ID. The name is unique.
func (r *CompetencyRepo) Create(ctx context.Context, c model.Competency) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO competencies (name, category, description) VALUES (?,?,?)",
		c.Name, c.Category, c.Description)
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

// GetByID fetches a competency by id.
func (r *CompetencyRepo) GetByID(ctx context.Context, id uint64) (model.Competency, error) {
	var c model.Competency
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+competencyColumns+" FROM competencies WHERE id=? LIMIT 1", id).
		Scan(&c.ID, &c.Name, &c.Category, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Competency{}, ErrNotFound
	}
	return c, err
}

// List returns competencies ordered by name, optionally filtered by
// category.
func (r *CompetencyRepo) List(ctx context.Context, category string, offset, limit int) ([]model.Competency, int64, error) {
	cond := ""
	args := []any{}
	if category != "" {
		cond = " WHERE category=?"
		args = append(args, category)
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM competencies"+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+competencyColumns+" FROM competencies"+cond+" ORDER BY name LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Competency
	for rows.Next() {
		var c model.Competency
		if err := rows.Scan(&c.ID, &c.Name, &c.Category, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// Update rewrites the mutable columns.
func (r *CompetencyRepo) Update(ctx context.Context, c model.Competency) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE competencies SET name=?, category=?, description=? WHERE id=?",
		c.Name, c.Category, c.Description, c.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrNameExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, gerr := r.GetByID(ctx, c.ID); gerr != nil {
			return gerr
		}
	}
	return nil
}

// Delete removes a competency row.
func (r *CompetencyRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM competencies WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
