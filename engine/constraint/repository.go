package constraint

import (
	"context"

	"github.com/masar-hq/masar/engine/core"
)

// Repository defines the interface for date-constraint data access. Lookups
// by item and by project are indexed.
type Repository interface {
	// Create creates a new constraint
	Create(ctx context.Context, c *DateConstraint) error
	// GetByID retrieves a constraint by its ID
	GetByID(ctx context.Context, id core.ID) (*DateConstraint, error)
	// Delete atomically removes a constraint
	Delete(ctx context.Context, id core.ID) error
	// ListByItem retrieves all constraints of one item
	ListByItem(ctx context.Context, itemID core.ID, itemType core.ItemType) ([]*DateConstraint, error)
	// ListByProject retrieves all constraints of a project
	ListByProject(ctx context.Context, projectID core.ID) ([]*DateConstraint, error)
}
