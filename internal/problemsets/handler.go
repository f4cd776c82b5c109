package problemsets

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mathgen-backend/internal/shared/server/middleware"
	"mathgen-backend/internal/shared/server/respond"
)

const defaultMaxUpload = 16 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUpload
	}
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches problem set routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/problem-sets", h.create)
	rg.GET("/problem-sets", h.list)
	rg.GET("/problem-sets/:id", h.get)
}

func (h *Handler) create(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		h.createFromUpload(c)
		return
	}
	h.createFromJSON(c)
}

func (h *Handler) createFromUpload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "File exceeds upload limit", gin.H{"maxBytes": h.MaxUploadBytes})
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "No file selected", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	ps, err := h.Svc.CreateFromPDF(c.Request.Context(), userID, fileHeader.Filename, c.PostForm("name"), file)
	if err != nil {
		h.writeCreateError(c, err)
		return
	}
	c.Set(middleware.ProblemSetIDKey, ps.ID)
	respond.Created(c, toSummary(ps, 0))
}

func (h *Handler) createFromJSON(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var body map[string]any
	if err := json.NewDecoder(c.Request.Body).Decode(&body); err != nil {
		if isTooLarge(err) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "Request exceeds upload limit", gin.H{"maxBytes": h.MaxUploadBytes})
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	rawName, hasName := body["name"]
	rawTemplate, hasTemplate := body["template"]
	if !hasName || !hasTemplate || rawName == nil || rawTemplate == nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Missing name or template", nil)
		return
	}
	name, nameOK := rawName.(string)
	template, templateOK := rawTemplate.(string)
	if !nameOK || !templateOK {
		respond.Error(c, http.StatusUnprocessableEntity, "validation_error", "Name and template must be strings", nil)
		return
	}

	ps, err := h.Svc.CreateFromTemplate(c.Request.Context(), userID, name, template)
	if err != nil {
		h.writeCreateError(c, err)
		return
	}
	c.Set(middleware.ProblemSetIDKey, ps.ID)
	respond.Created(c, toSummary(ps, 0))
}

func (h *Handler) writeCreateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotPDF):
		respond.Error(c, http.StatusBadRequest, "validation_error", "Only PDF files are allowed", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrDuplicate):
		respond.Error(c, http.StatusConflict, "conflict", "A problem set with this name already exists", nil)
	case errors.Is(err, ErrUnreadable):
		respond.Error(c, http.StatusUnprocessableEntity, "unreadable_pdf", "Could not read problems from the PDF", nil)
	case isTooLarge(err):
		respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "File exceeds upload limit", gin.H{"maxBytes": h.MaxUploadBytes})
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create problem set", nil)
	}
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	sets, err := h.Svc.List(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list problem sets", nil)
		return
	}
	resp := make([]SummaryResponse, 0, len(sets))
	for _, s := range sets {
		resp = append(resp, toSummary(s.ProblemSet, s.GeneratedSetsCount))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id := c.Param("id")
	c.Set(middleware.ProblemSetIDKey, id)

	ps, err := h.Svc.Get(c.Request.Context(), userID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "Problem set not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load problem set", nil)
		return
	}
	count, err := h.Svc.Count(c.Request.Context(), userID, id)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load problem set", nil)
		return
	}
	respond.JSON(c, http.StatusOK, DetailResponse{
		SummaryResponse: toSummary(ps, count),
		LatexTemplate:   ps.LatexTemplate,
		FromPDF:         ps.OriginalPDFKey != "",
	})
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
