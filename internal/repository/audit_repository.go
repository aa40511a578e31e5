package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/talenthub/competency-api/internal/model"
)

// AuditRepo appends and queries immutable audit rows. There is deliberately
// no update or delete method on this type.
type AuditRepo struct{ DB *sql.DB }

func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{DB: db} }

// AuditEntry is an audit row joined with the actor's current email, when the
// account still exists.
type AuditEntry struct {
	model.AuditLog
	UserEmail *string
}

// Insert appends one event. The details map is serialised as JSON; a nil map
// stores an empty object so readers never see NULL details.
func (r *AuditRepo) Insert(ctx context.Context, log *model.AuditLog) error {
	details := log.Details
	if details == nil {
		details = map[string]any{}
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO audit_logs (timestamp, user_id, action, target_type, target_id, details) VALUES (?,?,?,?,?,?)",
		log.Timestamp, log.UserID, log.Action, log.TargetType, log.TargetID, raw)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		log.ID = uint64(id)
	}
	return nil
}

// AuditFilter narrows List results. Nil/zero values mean "no filter".
type AuditFilter struct {
	UserID     *uint64
	Action     string // exact match
	TargetType string // exact match
	Start      *time.Time
	End        *time.Time
	Offset     int
	Limit      int
}

// List returns a page of audit entries, newest first, together with the
// total count matching the filter independent of the page slice.
func (r *AuditRepo) List(ctx context.Context, f AuditFilter) ([]AuditEntry, int64, error) {
	where := make([]string, 0, 5)
	args := make([]any, 0, 6)
	if f.UserID != nil {
		where = append(where, "a.user_id=?")
		args = append(args, *f.UserID)
	}
	if f.Action != "" {
		where = append(where, "a.action=?")
		args = append(args, f.Action)
	}
	if f.TargetType != "" {
		where = append(where, "a.target_type=?")
		args = append(args, f.TargetType)
	}
	if f.Start != nil {
		where = append(where, "a.timestamp>=?")
		args = append(args, *f.Start)
	}
	if f.End != nil {
		where = append(where, "a.timestamp<=?")
		args = append(args, *f.End)
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM audit_logs a"+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	// Secondary key on id keeps ordering stable when timestamps collide.
	rows, err := r.DB.QueryContext(ctx,
		"SELECT a.id, a.timestamp, a.user_id, a.action, a.target_type, a.target_id, a.details, u.email "+
			"FROM audit_logs a LEFT JOIN users u ON u.id = a.user_id"+cond+
			" ORDER BY a.timestamp DESC, a.id DESC LIMIT ? OFFSET ?",
		append(args, limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		e, err := scanAuditEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

// GetByID loads a single audit entry.
func (r *AuditRepo) GetByID(ctx context.Context, id uint64) (AuditEntry, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT a.id, a.timestamp, a.user_id, a.action, a.target_type, a.target_id, a.details, u.email "+
			"FROM audit_logs a LEFT JOIN users u ON u.id = a.user_id WHERE a.id=? LIMIT 1", id)
	e, err := scanAuditEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return AuditEntry{}, ErrNotFound
	}
	return e, err
}

// DistinctActions lists the unique action names recorded so far, sorted.
func (r *AuditRepo) DistinctActions(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT DISTINCT action FROM audit_logs ORDER BY action")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// AuditStats aggregates event counts for the admin summary endpoint.
type AuditStats struct {
	TotalEvents     int64
	AuthEvents      int64
	AdminOperations int64
	FailedLogins    int64
	UniqueUsers     int64
}

// Stats computes aggregate counts, optionally bounded by a time range.
func (r *AuditRepo) Stats(ctx context.Context, start, end *time.Time) (AuditStats, error) {
	cond := ""
	args := []any{}
	if start != nil {
		cond += " AND timestamp>=?"
		args = append(args, *start)
	}
	if end != nil {
		cond += " AND timestamp<=?"
		args = append(args, *end)
	}

	var s AuditStats
	count := func(extra string, extraArgs ...any) (int64, error) {
		var n int64
		err := r.DB.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM audit_logs WHERE 1=1"+cond+extra,
			append(append([]any{}, args...), extraArgs...)...).Scan(&n)
		return n, err
	}

	var err error
	if s.TotalEvents, err = count(""); err != nil {
		return AuditStats{}, err
	}
	if s.AuthEvents, err = count(" AND action LIKE ?", "auth.%"); err != nil {
		return AuditStats{}, err
	}
	if s.AdminOperations, err = count(" AND (action LIKE ? OR action LIKE ? OR action LIKE ?)",
		"user.%", "employee.%", "admin.%"); err != nil {
		return AuditStats{}, err
	}
	if s.FailedLogins, err = count(" AND action=?", model.ActionLoginFailure); err != nil {
		return AuditStats{}, err
	}
	if err = r.DB.QueryRowContext(ctx,
		"SELECT COUNT(DISTINCT user_id) FROM audit_logs WHERE user_id IS NOT NULL"+cond,
		args...).Scan(&s.UniqueUsers); err != nil {
		return AuditStats{}, err
	}
	return s, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanAuditEntry(row rowScanner) (AuditEntry, error) {
	var (
		e   AuditEntry
		raw []byte
	)
	if err := row.Scan(&e.ID, &e.Timestamp, &e.UserID, &e.Action,
		&e.TargetType, &e.TargetID, &raw, &e.UserEmail); err != nil {
		return AuditEntry{}, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &e.Details); err != nil {
			return AuditEntry{}, err
		}
	}
	return e, nil
}
