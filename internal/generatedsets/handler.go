package generatedsets

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mathgen-backend/internal/generation"
	"mathgen-backend/internal/llm"
	"mathgen-backend/internal/problemsets"
	"mathgen-backend/internal/prompts"
	"mathgen-backend/internal/render"
	"mathgen-backend/internal/shared/server/middleware"
	"mathgen-backend/internal/shared/server/respond"
)

// GeneratePath is the route template of the generate endpoint.
const GeneratePath = "/api/problem-sets/:id/generate"

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches generation and download routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/problem-sets/:id/generate", h.generate)
	rg.GET("/problem-sets/:id/generated", h.list)
	rg.GET("/generated-sets/:id/download", h.download)
	rg.GET("/generated-sets/:id/source", h.source)
}

func (h *Handler) generate(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	problemSetID := c.Param("id")
	c.Set(middleware.ProblemSetIDKey, problemSetID)

	if err := h.Svc.CheckProblemSet(c.Request.Context(), userID, problemSetID); err != nil {
		writeGenerateError(c, err)
		return
	}

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		msg := "invalid request body"
		if errors.Is(err, io.EOF) {
			msg = "No data provided"
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", msg, nil)
		return
	}
	if missing := missingFields(req); len(missing) > 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Missing required fields: "+strings.Join(missing, ", "), nil)
		return
	}
	provider, err := llm.ParseName(req.Provider)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", `Invalid provider. Must be "claude" or "gemini"`, nil)
		return
	}
	difficulty, err := prompts.ParseDifficulty(req.Difficulty)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}

	set, err := h.Svc.Generate(c.Request.Context(), userID, problemSetID, GenerateInput{
		Provider:    provider,
		Difficulty:  difficulty,
		NumProblems: *req.NumProblems,
	})
	if err != nil {
		writeGenerateError(c, err)
		return
	}
	c.Set(middleware.GeneratedSetIDKey, set.ID)
	respond.Created(c, toCreated(set))
}

func missingFields(req generateRequest) []string {
	var missing []string
	if strings.TrimSpace(req.Provider) == "" {
		missing = append(missing, "provider")
	}
	if strings.TrimSpace(req.Difficulty) == "" {
		missing = append(missing, "difficulty")
	}
	if req.NumProblems == nil {
		missing = append(missing, "num_problems")
	}
	return missing
}

func writeGenerateError(c *gin.Context, err error) {
	var renderErr *render.RenderError
	switch {
	case errors.Is(err, generation.ErrInvalidRequest):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, problemsets.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Problem set not found", nil)
	case errors.Is(err, llm.ErrNotConfigured):
		respond.Error(c, http.StatusServiceUnavailable, "provider_unavailable", err.Error(), nil)
	case errors.Is(err, render.ErrCompilerNotFound):
		respond.Error(c, http.StatusServiceUnavailable, "renderer_unavailable", "LaTeX compiler is not installed", nil)
	case errors.As(err, &renderErr):
		respond.Error(c, http.StatusUnprocessableEntity, "render_failed", "LaTeX compilation failed", gin.H{"diagnostics": renderErr.Diagnostics})
	case errors.Is(err, render.ErrRenderFailed):
		respond.Error(c, http.StatusUnprocessableEntity, "render_failed", err.Error(), nil)
	case errors.Is(err, llm.ErrProvider):
		respond.Error(c, http.StatusBadGateway, "provider_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to generate problems", nil)
	}
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	problemSetID := c.Param("id")
	c.Set(middleware.ProblemSetIDKey, problemSetID)

	sets, err := h.Svc.List(c.Request.Context(), userID, problemSetID)
	if err != nil {
		if errors.Is(err, problemsets.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "Problem set not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list generated sets", nil)
		return
	}
	resp := make([]SummaryResponse, 0, len(sets))
	for _, set := range sets {
		resp = append(resp, toSummary(set))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) download(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id := c.Param("id")
	c.Set(middleware.GeneratedSetIDKey, id)

	t, ok := artifactType(c)
	if !ok {
		return
	}
	rc, fileName, err := h.Svc.Open(c.Request.Context(), userID, id, t)
	if err != nil {
		writeLookupError(c, err)
		return
	}
	defer rc.Close()
	respond.Attachment(c, "application/pdf", fileName, rc)
}

func (h *Handler) source(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id := c.Param("id")
	c.Set(middleware.GeneratedSetIDKey, id)

	t, ok := artifactType(c)
	if !ok {
		return
	}
	src, fileName, err := h.Svc.Source(c.Request.Context(), userID, id, t)
	if err != nil {
		writeLookupError(c, err)
		return
	}
	respond.Attachment(c, "application/x-tex; charset=utf-8", fileName, strings.NewReader(src))
}

func artifactType(c *gin.Context) (ArtifactType, bool) {
	t, err := ParseArtifactType(c.Query("type"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return "", false
	}
	return t, true
}

func writeLookupError(c *gin.Context, err error) {
	if errors.Is(err, ErrNotFound) {
		respond.Error(c, http.StatusNotFound, "not_found", "Generated set not found", nil)
		return
	}
	respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load generated set", nil)
}
