package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/masar-hq/masar/engine/core"
	"github.com/masar-hq/masar/engine/org"
)

// orgRepository implements org.Repository using PostgreSQL
type orgRepository struct {
	db DBInterface
}

// NewOrgRepository creates a new PostgreSQL organisation repository
func NewOrgRepository(db DBInterface) org.Repository {
	return &orgRepository{db: db}
}

func scanOrg(scannable interface{ Scan(dest ...any) error }) (*org.Organization, error) {
	var o org.Organization
	var workingHours []byte
	err := scannable.Scan(
		&o.ID,
		&o.Name,
		&o.Timezone,
		&o.WorkingDaysOfWeek,
		&workingHours,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, org.ErrOrgNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(workingHours, &o.WorkingHours); err != nil {
		return nil, fmt.Errorf("decode working hours: %w", err)
	}
	return &o, nil
}

// Create creates a new organisation
func (r *orgRepository) Create(ctx context.Context, o *org.Organization) error {
	workingHours, err := json.Marshal(o.WorkingHours)
	if err != nil {
		return fmt.Errorf("encode working hours: %w", err)
	}
	query := `
		INSERT INTO organizations (id, name, timezone, working_days_of_week, working_hours, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.Exec(ctx, query,
		o.ID,
		o.Name,
		o.Timezone,
		o.WorkingDaysOfWeek,
		workingHours,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return nil
}

// GetByID retrieves an organisation by its ID
func (r *orgRepository) GetByID(ctx context.Context, id core.ID) (*org.Organization, error) {
	query := `
		SELECT id, name, timezone, working_days_of_week, working_hours, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`
	o, err := scanOrg(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, org.ErrOrgNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return o, nil
}

// Update updates an existing organisation
func (r *orgRepository) Update(ctx context.Context, o *org.Organization) error {
	workingHours, err := json.Marshal(o.WorkingHours)
	if err != nil {
		return fmt.Errorf("encode working hours: %w", err)
	}
	query := `
		UPDATE organizations
		SET name = $2, timezone = $3, working_days_of_week = $4, working_hours = $5, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	result, err := r.db.Exec(ctx, query, o.ID, o.Name, o.Timezone, o.WorkingDaysOfWeek, workingHours)
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}
	if result.RowsAffected() == 0 {
		return org.ErrOrgNotFound
	}
	return nil
}

// Delete deletes an organisation; owned entities cascade in the schema
func (r *orgRepository) Delete(ctx context.Context, id core.ID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}
	if result.RowsAffected() == 0 {
		return org.ErrOrgNotFound
	}
	return nil
}

// List retrieves organisations with pagination
func (r *orgRepository) List(ctx context.Context, limit, offset int) ([]*org.Organization, error) {
	query := `
		SELECT id, name, timezone, working_days_of_week, working_hours, created_at, updated_at
		FROM organizations
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()
	var orgs []*org.Organization
	for rows.Next() {
		o, err := scanOrg(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, o)
	}
	return orgs, rows.Err()
}

func scanHoliday(scannable interface{ Scan(dest ...any) error }) (*org.Holiday, error) {
	var h org.Holiday
	err := scannable.Scan(&h.ID, &h.OrgID, &h.Date, &h.Description, &h.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, org.ErrHolidayNotFound
		}
		return nil, err
	}
	return &h, nil
}

// CreateHoliday creates a holiday for an organisation
func (r *orgRepository) CreateHoliday(ctx context.Context, h *org.Holiday) error {
	query := `
		INSERT INTO holidays (id, org_id, date, description, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, h.ID, h.OrgID, h.Date, h.Description, h.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return org.ErrHolidayExists
		}
		return fmt.Errorf("failed to create holiday: %w", err)
	}
	return nil
}

// DeleteHoliday deletes a holiday by its ID within an organisation
func (r *orgRepository) DeleteHoliday(ctx context.Context, orgID, holidayID core.ID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM holidays WHERE org_id = $1 AND id = $2`, orgID, holidayID)
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	if result.RowsAffected() == 0 {
		return org.ErrHolidayNotFound
	}
	return nil
}

// ListHolidays retrieves all holidays of an organisation
func (r *orgRepository) ListHolidays(ctx context.Context, orgID core.ID) ([]*org.Holiday, error) {
	query := `
		SELECT id, org_id, date, description, created_at
		FROM holidays
		WHERE org_id = $1
		ORDER BY date
	`
	return r.queryHolidays(ctx, query, orgID)
}

// ListHolidaysInRange retrieves holidays between two dates inclusive
func (r *orgRepository) ListHolidaysInRange(ctx context.Context, orgID core.ID, from, to time.Time) ([]*org.Holiday, error) {
	query := `
		SELECT id, org_id, date, description, created_at
		FROM holidays
		WHERE org_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date
	`
	return r.queryHolidays(ctx, query, orgID, from, to)
}

func (r *orgRepository) queryHolidays(ctx context.Context, query string, args ...any) ([]*org.Holiday, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()
	var holidays []*org.Holiday
	for rows.Next() {
		h, err := scanHoliday(rows)
		if err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}
