package tracker

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository performs all entity mutations as load / modify / save over the
// whole document, so every write starts from the latest persisted state.
type Repository struct {
	store Store
	now   func() time.Time
	newID func() string
}

// RepositoryOption customizes a Repository.
type RepositoryOption func(*Repository)

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) RepositoryOption {
	return func(r *Repository) { r.now = now }
}

// WithIDs overrides the id generator, used by tests.
func WithIDs(newID func() string) RepositoryOption {
	return func(r *Repository) { r.newID = newID }
}

func NewRepository(store Store, opts ...RepositoryOption) *Repository {
	r := &Repository{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadData returns the current document for read-only consumers.
func (r *Repository) LoadData() (Document, error) {
	return r.store.Load()
}

// ClientParams are the caller-supplied fields of a new client.
type ClientParams struct {
	Name    string
	Email   string
	Phone   string
	Address string
	Notes   string
}

// ClientPatch carries the fields of an update; absent fields are left as-is.
type ClientPatch struct {
	Name    Option[string]
	Email   Option[string]
	Phone   Option[string]
	Address Option[string]
	Notes   Option[string]
}

func (r *Repository) AddClient(params ClientParams) (Client, error) {
	doc, err := r.store.Load()
	if err != nil {
		return Client{}, fmt.Errorf("add client: %w", err)
	}
	client := Client{
		ID:        r.newID(),
		Name:      params.Name,
		Email:     params.Email,
		Phone:     params.Phone,
		Address:   params.Address,
		Notes:     params.Notes,
		CreatedAt: r.now(),
	}
	doc.Clients = append(doc.Clients, client)
	if err := r.store.Save(doc); err != nil {
		return Client{}, fmt.Errorf("add client: %w", err)
	}
	return client, nil
}

// UpdateClient merges the patch over the stored client. A nil result with a
// nil error means the id matched nothing; nothing is persisted in that case.
func (r *Repository) UpdateClient(id string, patch ClientPatch) (*Client, error) {
	doc, err := r.store.Load()
	if err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	i := findClient(doc.Clients, id)
	if i < 0 {
		return nil, nil
	}
	c := &doc.Clients[i]
	if v, ok := patch.Name.Get(); ok {
		c.Name = v
	}
	if v, ok := patch.Email.Get(); ok {
		c.Email = v
	}
	if v, ok := patch.Phone.Get(); ok {
		c.Phone = v
	}
	if v, ok := patch.Address.Get(); ok {
		c.Address = v
	}
	if v, ok := patch.Notes.Get(); ok {
		c.Notes = v
	}
	updated := *c
	if err := r.store.Save(doc); err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	return &updated, nil
}

// DeleteClient removes the client, every project owned by it and every time
// entry referencing either the client or one of those projects, in a single
// persisted write. Returns whether a client was actually removed.
func (r *Repository) DeleteClient(id string) (bool, error) {
	doc, err := r.store.Load()
	if err != nil {
		return false, fmt.Errorf("delete client: %w", err)
	}
	i := findClient(doc.Clients, id)
	if i < 0 {
		return false, nil
	}
	doc.Clients = append(doc.Clients[:i], doc.Clients[i+1:]...)

	ownedProjects := map[string]bool{}
	projects := doc.Projects[:0]
	for _, p := range doc.Projects {
		if p.ClientID == id {
			ownedProjects[p.ID] = true
			continue
		}
		projects = append(projects, p)
	}
	doc.Projects = projects

	entries := doc.TimeEntries[:0]
	for _, e := range doc.TimeEntries {
		if e.ClientID.UnwrapOr("") == id || ownedProjects[e.ProjectID.UnwrapOr("")] {
			continue
		}
		entries = append(entries, e)
	}
	doc.TimeEntries = entries

	if err := r.store.Save(doc); err != nil {
		return false, fmt.Errorf("delete client: %w", err)
	}
	return true, nil
}

// ProjectParams are the caller-supplied fields of a new project.
type ProjectParams struct {
	ClientID    string
	Name        string
	Description string
	HourlyRate  float64
}

// ProjectPatch carries the fields of an update; absent fields are left as-is.
type ProjectPatch struct {
	ClientID    Option[string]
	Name        Option[string]
	Description Option[string]
	HourlyRate  Option[float64]
}

func (r *Repository) AddProject(params ProjectParams) (Project, error) {
	doc, err := r.store.Load()
	if err != nil {
		return Project{}, fmt.Errorf("add project: %w", err)
	}
	project := Project{
		ID:          r.newID(),
		ClientID:    params.ClientID,
		Name:        params.Name,
		Description: params.Description,
		HourlyRate:  params.HourlyRate,
		CreatedAt:   r.now(),
	}
	doc.Projects = append(doc.Projects, project)
	if err := r.store.Save(doc); err != nil {
		return Project{}, fmt.Errorf("add project: %w", err)
	}
	return project, nil
}

func (r *Repository) UpdateProject(id string, patch ProjectPatch) (*Project, error) {
	doc, err := r.store.Load()
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	i := findProject(doc.Projects, id)
	if i < 0 {
		return nil, nil
	}
	p := &doc.Projects[i]
	if v, ok := patch.ClientID.Get(); ok {
		p.ClientID = v
	}
	if v, ok := patch.Name.Get(); ok {
		p.Name = v
	}
	if v, ok := patch.Description.Get(); ok {
		p.Description = v
	}
	if v, ok := patch.HourlyRate.Get(); ok {
		p.HourlyRate = v
	}
	updated := *p
	if err := r.store.Save(doc); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return &updated, nil
}

// DeleteProject removes the project and every time entry referencing it.
func (r *Repository) DeleteProject(id string) (bool, error) {
	doc, err := r.store.Load()
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	i := findProject(doc.Projects, id)
	if i < 0 {
		return false, nil
	}
	doc.Projects = append(doc.Projects[:i], doc.Projects[i+1:]...)

	entries := doc.TimeEntries[:0]
	for _, e := range doc.TimeEntries {
		if e.ProjectID.UnwrapOr("") == id {
			continue
		}
		entries = append(entries, e)
	}
	doc.TimeEntries = entries

	if err := r.store.Save(doc); err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	return true, nil
}

// TimeEntryParams are the caller-supplied fields of a manually created entry.
// Entries created this way are closed records; the live timer creates its own
// entries through the Timer engine.
type TimeEntryParams struct {
	ProjectID   Option[string]
	ClientID    Option[string]
	Description string
	StartTime   time.Time
	EndTime     Option[time.Time]
	Duration    int64
}

// TimeEntryPatch covers the manual edits allowed on a closed entry:
// description and client/project reassignment. The reference fields use a
// pointer so "leave untouched" (nil) is distinct from "clear" (&None).
type TimeEntryPatch struct {
	ProjectID   *Option[string]
	ClientID    *Option[string]
	Description Option[string]
}

func (r *Repository) AddTimeEntry(params TimeEntryParams) (TimeEntry, error) {
	doc, err := r.store.Load()
	if err != nil {
		return TimeEntry{}, fmt.Errorf("add time entry: %w", err)
	}
	status := StatusPaused
	if params.EndTime.IsSome() {
		status = StatusStopped
	}
	entry := TimeEntry{
		ID:          r.newID(),
		ProjectID:   params.ProjectID,
		ClientID:    params.ClientID,
		Description: params.Description,
		StartTime:   params.StartTime,
		EndTime:     params.EndTime,
		Duration:    params.Duration,
		Status:      status,
		CreatedAt:   r.now(),
	}
	doc.TimeEntries = append(doc.TimeEntries, entry)
	if err := r.store.Save(doc); err != nil {
		return TimeEntry{}, fmt.Errorf("add time entry: %w", err)
	}
	return entry, nil
}

func (r *Repository) UpdateTimeEntry(id string, patch TimeEntryPatch) (*TimeEntry, error) {
	doc, err := r.store.Load()
	if err != nil {
		return nil, fmt.Errorf("update time entry: %w", err)
	}
	i := findEntry(doc.TimeEntries, id)
	if i < 0 {
		return nil, nil
	}
	e := &doc.TimeEntries[i]
	if patch.ProjectID != nil {
		e.ProjectID = *patch.ProjectID
	}
	if patch.ClientID != nil {
		e.ClientID = *patch.ClientID
	}
	if v, ok := patch.Description.Get(); ok {
		e.Description = v
	}
	updated := *e
	if err := r.store.Save(doc); err != nil {
		return nil, fmt.Errorf("update time entry: %w", err)
	}
	return &updated, nil
}

func (r *Repository) DeleteTimeEntry(id string) (bool, error) {
	doc, err := r.store.Load()
	if err != nil {
		return false, fmt.Errorf("delete time entry: %w", err)
	}
	i := findEntry(doc.TimeEntries, id)
	if i < 0 {
		return false, nil
	}
	doc.TimeEntries = append(doc.TimeEntries[:i], doc.TimeEntries[i+1:]...)
	if err := r.store.Save(doc); err != nil {
		return false, fmt.Errorf("delete time entry: %w", err)
	}
	return true, nil
}

func findClient(clients []Client, id string) int {
	for i := range clients {
		if clients[i].ID == id {
			return i
		}
	}
	return -1
}

func findProject(projects []Project, id string) int {
	for i := range projects {
		if projects[i].ID == id {
			return i
		}
	}
	return -1
}

func findEntry(entries []TimeEntry, id string) int {
	for i := range entries {
		if entries[i].ID == id {
			return i
		}
	}
	return -1
}
