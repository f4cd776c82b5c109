package generatedsets

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, problem_set_id, user_id, provider, difficulty, num_problems,
       problems_pdf_key, solutions_pdf_key, problems_latex, solutions_latex, created_at`

// Create inserts a generated set.
func (r *PGRepo) Create(ctx context.Context, set GeneratedSet) error {
	const query = `
INSERT INTO generated_sets (
    id, problem_set_id, user_id, provider, difficulty, num_problems,
    problems_pdf_key, solutions_pdf_key, problems_latex, solutions_latex, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.DB.ExecContext(ctx, query,
		set.ID,
		set.ProblemSetID,
		set.UserID,
		set.Provider,
		set.Difficulty,
		set.NumProblems,
		set.ProblemsPDFKey,
		set.SolutionsPDFKey,
		set.ProblemsLatex,
		set.SolutionsLatex,
		set.CreatedAt,
	)
	return err
}

// GetByID returns a generated set by ID for a user.
func (r *PGRepo) GetByID(ctx context.Context, userID, id string) (GeneratedSet, error) {
	query := `
SELECT ` + selectColumns + `
FROM generated_sets
WHERE id = $1 AND user_id = $2
LIMIT 1`
	set, err := scanSet(r.DB.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return GeneratedSet{}, ErrNotFound
		}
		return GeneratedSet{}, err
	}
	return set, nil
}

// ListByProblemSet lists a problem set's generated sets ordered newest-first.
func (r *PGRepo) ListByProblemSet(ctx context.Context, userID, problemSetID string) ([]GeneratedSet, error) {
	query := `
SELECT ` + selectColumns + `
FROM generated_sets
WHERE problem_set_id = $1 AND user_id = $2
ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, problemSetID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]GeneratedSet, 0)
	for rows.Next() {
		set, err := scanSet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, set)
	}
	return out, rows.Err()
}

// CountByUser groups the user's generated sets by problem set.
func (r *PGRepo) CountByUser(ctx context.Context, userID string) (map[string]int, error) {
	const query = `
SELECT problem_set_id, COUNT(*)
FROM generated_sets
WHERE user_id = $1
GROUP BY problem_set_id`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSet(row scanner) (GeneratedSet, error) {
	var set GeneratedSet
	err := row.Scan(
		&set.ID,
		&set.ProblemSetID,
		&set.UserID,
		&set.Provider,
		&set.Difficulty,
		&set.NumProblems,
		&set.ProblemsPDFKey,
		&set.SolutionsPDFKey,
		&set.ProblemsLatex,
		&set.SolutionsLatex,
		&set.CreatedAt,
	)
	return set, err
}

var _ Repo = (*PGRepo)(nil)
