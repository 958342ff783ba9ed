package org

import (
	"context"
	"time"

	"github.com/masar-hq/masar/engine/core"
)

// Repository defines the interface for organisation data access
type Repository interface {
	// Create creates a new organisation
	Create(ctx context.Context, o *Organization) error
	// GetByID retrieves an organisation by its ID
	GetByID(ctx context.Context, id core.ID) (*Organization, error)
	// Update updates an existing organisation
	Update(ctx context.Context, o *Organization) error
	// Delete deletes an organisation and cascades to all owned entities
	Delete(ctx context.Context, id core.ID) error
	// List retrieves organisations with pagination
	List(ctx context.Context, limit, offset int) ([]*Organization, error)

	// CreateHoliday creates a holiday for an organisation
	CreateHoliday(ctx context.Context, h *Holiday) error
	// DeleteHoliday deletes a holiday by its ID within an organisation
	DeleteHoliday(ctx context.Context, orgID, holidayID core.ID) error
	// ListHolidays retrieves all holidays of an organisation
	ListHolidays(ctx context.Context, orgID core.ID) ([]*Holiday, error)
	// ListHolidaysInRange retrieves holidays of an organisation between two dates inclusive
	ListHolidaysInRange(ctx context.Context, orgID core.ID, from, to time.Time) ([]*Holiday, error)
}
