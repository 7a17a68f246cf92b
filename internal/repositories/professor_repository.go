package repositories

import (
	"context"
	"errors"

	"profadvisor/internal/models"
)

// ErrProfessorNotFound reports a catalog miss; check with errors.Is.
var ErrProfessorNotFound = errors.New("professor not found")

// ProfessorRepository defines the interface for the professor catalog. The
// catalog mirrors the metadata held in the vector index and backs the
// read-side API plus subject lookups for retrieval filtering.
type ProfessorRepository interface {
	Upsert(ctx context.Context, professor *models.Professor) error
	Get(ctx context.Context, id string) (*models.Professor, error)
	List(ctx context.Context, limit, offset int) ([]*models.Professor, int, error)
	Subjects(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}

// CatalogError represents errors from the professor catalog
type CatalogError struct {
	Operation string
	Err       error
	Message   string
}

func (e *CatalogError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Operation + ": " + e.Err.Error()
	}
	return e.Operation + ": unknown error"
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

// NewCatalogError creates a new catalog error
func NewCatalogError(operation string, err error, message string) *CatalogError {
	return &CatalogError{
		Operation: operation,
		Err:       err,
		Message:   message,
	}
}

// IsNotFound reports whether err is a catalog miss
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProfessorNotFound)
}

// ProfessorNotFoundError is returned when a catalog lookup misses
func ProfessorNotFoundError(id string) error {
	return NewCatalogError(
		"get_professor",
		ErrProfessorNotFound,
		"professor not found: "+id,
	)
}
