package generatedsets

import (
	"strings"
	"time"
)

// GeneratedSet is one stored run of the generation pipeline for a problem set.
type GeneratedSet struct {
	ID              string
	ProblemSetID    string
	UserID          string
	Provider        string
	Difficulty      string
	NumProblems     int
	ProblemsPDFKey  string
	SolutionsPDFKey string
	ProblemsLatex   string
	SolutionsLatex  string
	CreatedAt       time.Time
}

// ArtifactType selects one half of a generated set.
type ArtifactType string

const (
	TypeProblems  ArtifactType = "problems"
	TypeSolutions ArtifactType = "solutions"
)

// ParseArtifactType accepts problems or solutions; empty defaults to problems.
func ParseArtifactType(raw string) (ArtifactType, error) {
	switch t := ArtifactType(strings.ToLower(strings.TrimSpace(raw))); t {
	case "":
		return TypeProblems, nil
	case TypeProblems, TypeSolutions:
		return t, nil
	}
	return "", ErrInvalidType
}

func (g GeneratedSet) pdfKey(t ArtifactType) string {
	if t == TypeSolutions {
		return g.SolutionsPDFKey
	}
	return g.ProblemsPDFKey
}

func (g GeneratedSet) source(t ArtifactType) string {
	if t == TypeSolutions {
		return g.SolutionsLatex
	}
	return g.ProblemsLatex
}

func artifactKey(id string, t ArtifactType) string {
	return "generated/" + id + "/" + string(t) + ".pdf"
}
