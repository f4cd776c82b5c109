package problemsets

import "time"

// SummaryResponse is the list representation of a problem set.
type SummaryResponse struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	CreatedAt          time.Time `json:"created_at"`
	GeneratedSetsCount int       `json:"generated_sets_count"`
}

// DetailResponse adds the template and upload metadata.
type DetailResponse struct {
	SummaryResponse
	LatexTemplate string `json:"latex_template"`
	FromPDF       bool   `json:"from_pdf"`
}

func toSummary(ps ProblemSet, count int) SummaryResponse {
	return SummaryResponse{
		ID:                 ps.ID,
		Name:               ps.Name,
		CreatedAt:          ps.CreatedAt,
		GeneratedSetsCount: count,
	}
}
