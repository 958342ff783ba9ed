package depgraph

import (
	"context"

	"github.com/masar-hq/masar/engine/core"
)

// Reader is the read surface available inside a checked-create transaction.
type Reader interface {
	// ListSuccessors returns outgoing edges of an item, scoped to the kind
	ListSuccessors(ctx context.Context, itemID core.ID, kind core.ItemType) ([]*Dependency, error)
	// ListPredecessors returns incoming edges of an item, scoped to the kind
	ListPredecessors(ctx context.Context, itemID core.ID, kind core.ItemType) ([]*Dependency, error)
}

// Repository defines the interface for dependency edge data access
type Repository interface {
	Reader
	// GetByID retrieves a dependency by its ID
	GetByID(ctx context.Context, id core.ID) (*Dependency, error)
	// Delete atomically removes a dependency
	Delete(ctx context.Context, id core.ID) error
	// ListByProject returns all edges of a project, scoped to the kind
	ListByProject(ctx context.Context, projectID core.ID, kind core.ItemType) ([]*Dependency, error)
	// CreateChecked inserts the edge inside one transaction that first
	// serialises on (project, endpoint kind) and re-runs verify against the
	// transaction's view of the graph. The insert happens only when verify
	// returns nil.
	CreateChecked(ctx context.Context, dep *Dependency, verify func(ctx context.Context, r Reader) error) error
}
