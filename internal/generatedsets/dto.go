package generatedsets

import "time"

// CreatedResponse is returned after a successful generation.
type CreatedResponse struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	ProblemsPath  string    `json:"problems_path"`
	SolutionsPath string    `json:"solutions_path"`
}

// SummaryResponse lists one generated set of a problem set.
type SummaryResponse struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	Provider      string    `json:"provider"`
	Difficulty    string    `json:"difficulty"`
	NumProblems   int       `json:"num_problems"`
	ProblemsPath  string    `json:"problems_path"`
	SolutionsPath string    `json:"solutions_path"`
}

type generateRequest struct {
	Provider    string `json:"provider"`
	Difficulty  string `json:"difficulty"`
	NumProblems *int   `json:"num_problems"`
}

// downloadPath is the API path clients use to fetch an artifact.
func downloadPath(id string, t ArtifactType) string {
	return "/api/generated-sets/" + id + "/download?type=" + string(t)
}

func toCreated(set GeneratedSet) CreatedResponse {
	return CreatedResponse{
		ID:            set.ID,
		CreatedAt:     set.CreatedAt,
		ProblemsPath:  downloadPath(set.ID, TypeProblems),
		SolutionsPath: downloadPath(set.ID, TypeSolutions),
	}
}

func toSummary(set GeneratedSet) SummaryResponse {
	return SummaryResponse{
		ID:            set.ID,
		CreatedAt:     set.CreatedAt,
		Provider:      set.Provider,
		Difficulty:    set.Difficulty,
		NumProblems:   set.NumProblems,
		ProblemsPath:  downloadPath(set.ID, TypeProblems),
		SolutionsPath: downloadPath(set.ID, TypeSolutions),
	}
}
