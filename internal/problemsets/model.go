package problemsets

import "time"

// ProblemSet is a named LaTeX template owned by a user.
type ProblemSet struct {
	ID             string
	UserID         string
	Name           string
	LatexTemplate  string
	OriginalPDFKey string
	CreatedAt      time.Time
}
