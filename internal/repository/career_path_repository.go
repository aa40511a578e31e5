package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/talenthub/competency-api/internal/model"
)

// CareerPathRepo persists career paths and their required-competency links.
type CareerPathRepo struct{ DB *sql.DB }

func NewCareerPathRepo(db *sql.DB) *CareerPathRepo { return &CareerPathRepo{DB: db} }

// Create inserts a career path and returns its ID.
func (r *CareerPathRepo) Create(ctx context.Context, p model.CareerPath) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO career_paths (name, description) VALUES (?,?)", p.Name, p.Description)
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

// GetByID fetches a career path by id.
func (r *CareerPathRepo) GetByID(ctx context.Context, id uint64) (model.CareerPath, error) {
	var p model.CareerPath
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,description,created_at,updated_at FROM career_paths WHERE id=? LIMIT 1", id).
		Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CareerPath{}, ErrNotFound
	}
	return p, err
}

// List returns career paths ordered by name.
func (r *CareerPathRepo) List(ctx context.Context, offset, limit int) ([]model.CareerPath, int64, error) {
	var total int64
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM career_paths").Scan(&total); err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,description,created_at,updated_at FROM career_paths ORDER BY name LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.CareerPath
	for rows.Next() {
		var p model.CareerPath
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// Update rewrites name and description.
func (r *CareerPathRepo) Update(ctx context.Context, p model.CareerPath) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE career_paths SET name=?, description=? WHERE id=?", p.Name, p.Description, p.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrNameExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, gerr := r.GetByID(ctx, p.ID); gerr != nil {
			return gerr
		}
	}
	return nil
}

// Delete removes a career path row; links cascade at the schema level.
func (r *CareerPathRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM career_paths WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertRequirement links a competency to the path with a required level, or
// updates the level of an existing link.
func (r *CareerPathRepo) UpsertRequirement(ctx context.Context, link model.CareerPathCompetency) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO career_path_competencies (career_path_id, competency_id, required_level) VALUES (?,?,?) "+
			"ON DUPLICATE KEY UPDATE required_level=VALUES(required_level)",
		link.CareerPathID, link.CompetencyID, link.RequiredLevel)
	return err
}

// RemoveRequirement detaches a competency from the path.
func (r *CareerPathRepo) RemoveRequirement(ctx context.Context, careerPathID, competencyID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM career_path_competencies WHERE career_path_id=? AND competency_id=?",
		careerPathID, competencyID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Requirements returns the path's required competencies, ordered by
// competency id.
func (r *CareerPathRepo) Requirements(ctx context.Context, careerPathID uint64) ([]model.CareerPathCompetency, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT career_path_id, competency_id, required_level FROM career_path_competencies WHERE career_path_id=? ORDER BY competency_id",
		careerPathID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []model.CareerPathCompetency
	for rows.Next() {
		var l model.CareerPathCompetency
		if err := rows.Scan(&l.CareerPathID, &l.CompetencyID, &l.RequiredLevel); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}
