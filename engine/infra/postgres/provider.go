package postgres

import (
	"github.com/masar-hq/masar/engine/activity"
	"github.com/masar-hq/masar/engine/analytics"
	"github.com/masar-hq/masar/engine/auth"
	"github.com/masar-hq/masar/engine/auth/user"
	"github.com/masar-hq/masar/engine/constraint"
	"github.com/masar-hq/masar/engine/depgraph"
	"github.com/masar-hq/masar/engine/org"
	"github.com/masar-hq/masar/engine/project"
	"github.com/masar-hq/masar/engine/task"
)

// Provider bundles the Postgres-backed repositories behind the domain
// interfaces. It is the store contract the engine services consume.
type Provider struct {
	orgs         org.Repository
	users        user.Repository
	refresh      auth.RefreshRepository
	projects     project.Repository
	activities   activity.Repository
	tasks        task.Repository
	dependencies depgraph.Repository
	constraints  constraint.Repository
	analytics    analytics.Repository
}

// NewProvider wires every repository onto the shared query surface.
func NewProvider(db DBInterface) *Provider {
	return &Provider{
		orgs:         NewOrgRepository(db),
		users:        NewUserRepository(db),
		refresh:      NewRefreshRepository(db),
		projects:     NewProjectRepository(db),
		activities:   NewActivityRepository(db),
		tasks:        NewTaskRepository(db),
		dependencies: NewDependencyRepository(db),
		constraints:  NewConstraintRepository(db),
		analytics:    NewAnalyticsRepository(db),
	}
}

func (p *Provider) Orgs() org.Repository                { return p.orgs }
func (p *Provider) Users() user.Repository              { return p.users }
func (p *Provider) RefreshTokens() auth.RefreshRepository { return p.refresh }
func (p *Provider) Projects() project.Repository        { return p.projects }
func (p *Provider) Activities() activity.Repository     { return p.activities }
func (p *Provider) Tasks() task.Repository              { return p.tasks }
func (p *Provider) Dependencies() depgraph.Repository   { return p.dependencies }
func (p *Provider) Constraints() constraint.Repository  { return p.constraints }
func (p *Provider) Analytics() analytics.Repository     { return p.analytics }
