package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/finchley-labs/autodj/internal/core/domain"
)

// ErrModelUnavailable indicates a backend rejected the call for quota or
// model-existence reasons rather than a malformed request. The planner
// moves on to the next candidate silently.
var ErrModelUnavailable = errors.New("model unavailable")

// ModelUnavailableError carries the backend status that triggered the skip.
type ModelUnavailableError struct {
	Model  string
	Status int
}

func (e ModelUnavailableError) Error() string {
	return fmt.Sprintf("model %q unavailable (status %d)", e.Model, e.Status)
}

func (e ModelUnavailableError) Is(target error) bool {
	return target == ErrModelUnavailable
}

// DirectiveModel turns a fully rendered prompt into playback directives.
// Implementations must return an error rather than directives with an
// empty query list.
type DirectiveModel interface {
	Name() string
	GenerateDirectives(ctx context.Context, prompt string) (domain.Directives, error)
}
