package calendar

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/masar-hq/masar/engine/core"
	"github.com/masar-hq/masar/engine/org"
	"github.com/masar-hq/masar/pkg/logger"
)

// patternCacheSize bounds the number of tenant patterns kept resident.
const patternCacheSize = 256

// Service resolves organisation working-time patterns with a process-local
// cache. The cache holds both the parsed configuration and the holiday set;
// org and holiday mutations must call InvalidateOrg.
type Service struct {
	orgs     org.Repository
	patterns *lru.Cache[core.ID, *Pattern]
}

// NewService creates a calendar service backed by the organisation repository
func NewService(orgs org.Repository) *Service {
	cache, err := lru.New[core.ID, *Pattern](patternCacheSize)
	if err != nil {
		// lru.New only fails on a non-positive size
		panic(err)
	}
	return &Service{orgs: orgs, patterns: cache}
}

// ResolvePattern returns the cached pattern for an organisation, loading the
// organisation and its holidays on a miss.
func (s *Service) ResolvePattern(ctx context.Context, orgID core.ID) (*Pattern, error) {
	if p, ok := s.patterns.Get(orgID); ok {
		return p, nil
	}
	o, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("resolve calendar pattern: %w", err)
	}
	holidays, err := s.orgs.ListHolidays(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("resolve calendar holidays: %w", err)
	}
	p, err := NewPattern(o, holidays)
	if err != nil {
		return nil, err
	}
	s.patterns.Add(orgID, p)
	logger.FromContext(ctx).Debug("Calendar pattern cached", "org_id", orgID, "holidays", len(holidays))
	return p, nil
}

// InvalidateOrg evicts the cached pattern for an organisation
func (s *Service) InvalidateOrg(orgID core.ID) {
	s.patterns.Remove(orgID)
}

// ConvertToTimezone returns the instant in the named timezone
func ConvertToTimezone(t time.Time, tz string) (time.Time, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	return t.In(loc), nil
}

// FormatInTimezone formats the instant in the named timezone using the given
// layout
func FormatInTimezone(t time.Time, tz, layout string) (string, error) {
	local, err := ConvertToTimezone(t, tz)
	if err != nil {
		return "", err
	}
	return local.Format(layout), nil
}
