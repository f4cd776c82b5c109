package problemsets

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, ps ProblemSet) error {
	const query = `
INSERT INTO problem_sets (id, user_id, name, latex_template, original_pdf_key, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.DB.ExecContext(ctx, query,
		ps.ID,
		ps.UserID,
		ps.Name,
		ps.LatexTemplate,
		nullableString(ps.OriginalPDFKey),
		ps.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

func (r *PGRepo) Get(ctx context.Context, userID, id string) (ProblemSet, error) {
	const query = `
SELECT id, user_id, name, latex_template, original_pdf_key, created_at
FROM problem_sets
WHERE id = $1 AND user_id = $2
LIMIT 1`
	var ps ProblemSet
	var pdfKey sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id, userID).Scan(
		&ps.ID,
		&ps.UserID,
		&ps.Name,
		&ps.LatexTemplate,
		&pdfKey,
		&ps.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ProblemSet{}, ErrNotFound
		}
		return ProblemSet{}, err
	}
	ps.OriginalPDFKey = pdfKey.String
	return ps, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]ProblemSet, error) {
	const query = `
SELECT id, user_id, name, latex_template, original_pdf_key, created_at
FROM problem_sets
WHERE user_id = $1
ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProblemSet
	for rows.Next() {
		var ps ProblemSet
		var pdfKey sql.NullString
		if err := rows.Scan(&ps.ID, &ps.UserID, &ps.Name, &ps.LatexTemplate, &pdfKey, &ps.CreatedAt); err != nil {
			return nil, err
		}
		ps.OriginalPDFKey = pdfKey.String
		out = append(out, ps)
	}
	return out, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
