package generation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"mathgen-backend/internal/llm"
	"mathgen-backend/internal/prompts"
)

const (
	MinProblems = 1
	MaxProblems = 20
)

// ErrInvalidRequest is returned before any stage runs when a request fails validation.
var ErrInvalidRequest = errors.New("invalid generation request")

// Request describes one problem-set generation.
type Request struct {
	UserID      string             `validate:"required"`
	Template    string             `validate:"required"`
	Provider    llm.Name           `validate:"required,oneof=claude gemini"`
	Difficulty  prompts.Difficulty `validate:"required,oneof=same challenge harder"`
	NumProblems int                `validate:"min=1,max=20"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the request and reports every failing field.
func Validate(req Request) error {
	req.Template = strings.TrimSpace(req.Template)
	err := requestValidator().Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "Provider":
		return `provider must be "claude" or "gemini"`
	case "Difficulty":
		return "difficulty must be one of same, challenge, harder"
	case "NumProblems":
		return fmt.Sprintf("num_problems must be between %d and %d", MinProblems, MaxProblems)
	case "Template":
		return "template is required"
	case "UserID":
		return "user is required"
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}
