// Package store persists project state so long refinement runs survive
// restarts and finished projects can be reloaded for further editing.
package store

import (
	"errors"

	"github.com/memoryreel/memoryreel/internal/models"
)

// ErrNotFound is returned when no project exists with the given id.
var ErrNotFound = errors.New("project not found")

// ProjectStore persists and retrieves project state snapshots.
type ProjectStore interface {
	// Save writes the full project state, replacing any prior snapshot.
	Save(state *models.ProjectState) error

	// Load retrieves a project by id, or ErrNotFound.
	Load(projectID string) (*models.ProjectState, error)

	// List returns the ids of all stored projects, most recently updated first.
	List() ([]string, error)

	// Delete removes a project. Deleting a missing project is not an error.
	Delete(projectID string) error

	// Close releases the underlying resources.
	Close() error
}
