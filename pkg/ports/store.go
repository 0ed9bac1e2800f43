package ports

import (
	"context"

	"github.com/aretw0/mbtassist/pkg/project"
)

// ProjectStore defines the interface for persisting projects.
type ProjectStore interface {
	// Save persists the document under name, replacing any previous version.
	Save(ctx context.Context, name string, doc *project.Document) error

	// Load retrieves the document saved under name.
	// Returns domain.ErrProjectNotFound if the project does not exist.
	Load(ctx context.Context, name string) (*project.Document, error)

	// Delete removes the project. Deleting an unknown project is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all stored projects, sorted.
	List(ctx context.Context) ([]string, error)
}
