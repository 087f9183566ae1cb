// Package tracker holds the billable-time data model, the document
// repository and the timer engine.
package tracker

import "time"

// Status is the lifecycle state of a time entry.
type Status string

const (
	StatusRunning Status = "running"
	StatusPaused  Status = "paused"
	StatusStopped Status = "stopped"
)

// Client is a billable customer.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Project belongs to a client and carries the hourly rate used for billing.
type Project struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"clientId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	HourlyRate  float64   `json:"hourlyRate"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TimeEntry is one tracked unit of work. Duration only ever holds the
// seconds of closed segments; the open segment is derived from StartTime.
type TimeEntry struct {
	ID          string            `json:"id"`
	ProjectID   Option[string]    `json:"projectId"`
	ClientID    Option[string]    `json:"clientId"`
	Description string            `json:"description"`
	StartTime   time.Time         `json:"startTime"`
	EndTime     Option[time.Time] `json:"endTime"`
	Duration    int64             `json:"duration"`
	Status      Status            `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// IsRunning reports whether the entry is the live timer.
func (e TimeEntry) IsRunning() bool {
	return e.Status == StatusRunning
}

// Elapsed returns the display seconds for the entry: accumulated closed
// segments plus, while running, the open segment up to now. Never persisted.
func (e TimeEntry) Elapsed(now time.Time) int64 {
	if e.Status == StatusRunning {
		return e.Duration + segmentSeconds(e.StartTime, now)
	}
	return e.Duration
}

// segmentSeconds is the whole-second length of a running segment,
// rounded down. Negative spans (clock skew) count as zero.
func segmentSeconds(start, now time.Time) int64 {
	if now.Before(start) {
		return 0
	}
	return int64(now.Sub(start) / time.Second)
}

// Document is the whole persisted aggregate.
type Document struct {
	Clients     []Client    `json:"clients"`
	Projects    []Project   `json:"projects"`
	TimeEntries []TimeEntry `json:"timeEntries"`
}

// NewDocument returns the empty default document.
func NewDocument() Document {
	return Document{
		Clients:     []Client{},
		Projects:    []Project{},
		TimeEntries: []TimeEntry{},
	}
}

// Clone returns a copy whose slices are independent of the receiver.
func (d Document) Clone() Document {
	out := Document{
		Clients:     make([]Client, len(d.Clients)),
		Projects:    make([]Project, len(d.Projects)),
		TimeEntries: make([]TimeEntry, len(d.TimeEntries)),
	}
	copy(out.Clients, d.Clients)
	copy(out.Projects, d.Projects)
	copy(out.TimeEntries, d.TimeEntries)
	return out
}

// Store is the persistence boundary the repository writes through.
// Load yields the empty default document when nothing usable is stored;
// Save is all-or-nothing.
type Store interface {
	Load() (Document, error)
	Save(Document) error
}
