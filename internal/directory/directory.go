package directory

import (
	"strings"

	"github.com/cleared-dev/receivables/internal/model"
)

// Directory provides in-memory lookup over clients and projects.
type Directory struct {
	clients  []model.Client
	byID     map[string]model.Client
	projects map[string]model.Project
}

// New creates a Directory. Later duplicates of an ID replace earlier ones.
func New(clients []model.Client, projects []model.Project) *Directory {
	byID := make(map[string]model.Client, len(clients))
	for _, c := range clients {
		if c.ID == "" {
			continue
		}
		byID[c.ID] = c
	}
	byProject := make(map[string]model.Project, len(projects))
	for _, p := range projects {
		if p.ID == "" {
			continue
		}
		byProject[p.ID] = p
	}
	return &Directory{clients: clients, byID: byID, projects: byProject}
}

// Clients returns all clients.
func (d *Directory) Clients() []model.Client {
	return d.clients
}

// Client returns a client by ID.
func (d *Directory) Client(id string) (model.Client, bool) {
	if d == nil {
		return model.Client{}, false
	}
	c, ok := d.byID[id]
	return c, ok
}

// Project returns a project by ID.
func (d *Directory) Project(id string) (model.Project, bool) {
	if d == nil {
		return model.Project{}, false
	}
	p, ok := d.projects[id]
	return p, ok
}

// ClientName resolves the display name for a relation: a known client's
// name, then the inline name, then the bare identifier, then "-".
func (d *Directory) ClientName(ref model.Ref) string {
	if c, ok := d.Client(ref.ID); ok && c.Name != "" && c.Name != model.NoRef {
		return c.Name
	}
	if name := strings.TrimSpace(ref.Name); name != "" {
		return name
	}
	return ref.Key()
}

// ProjectName resolves the display name for a project relation. Empty when
// the project is unknown and carries no inline name.
func (d *Directory) ProjectName(ref model.Ref) string {
	if p, ok := d.Project(ref.ID); ok && p.Name != "" {
		return p.Name
	}
	return strings.TrimSpace(ref.Name)
}
