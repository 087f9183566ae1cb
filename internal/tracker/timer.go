package tracker

import (
	"fmt"
	"time"
)

// Timer is the state machine over the single live time entry. Every
// mutation re-asserts the invariant that at most one entry is running,
// which doubles as the recovery path after an abnormal shutdown: a stale
// running entry is closed with its elapsed time counted as worked.
type Timer struct {
	repo *Repository
}

func NewTimer(repo *Repository) *Timer {
	return &Timer{repo: repo}
}

// Start closes whatever is still running, then opens a fresh running entry.
// Callable from any state.
func (t *Timer) Start(projectID, clientID Option[string], description string) (TimeEntry, error) {
	doc, err := t.repo.store.Load()
	if err != nil {
		return TimeEntry{}, fmt.Errorf("start timer: %w", err)
	}
	now := t.repo.now()
	closeRunning(&doc, now, "")

	entry := TimeEntry{
		ID:          t.repo.newID(),
		ProjectID:   projectID,
		ClientID:    clientID,
		Description: description,
		StartTime:   now,
		EndTime:     None[time.Time](),
		Duration:    0,
		Status:      StatusRunning,
		CreatedAt:   now,
	}
	doc.TimeEntries = append(doc.TimeEntries, entry)
	if err := t.repo.store.Save(doc); err != nil {
		return TimeEntry{}, fmt.Errorf("start timer: %w", err)
	}
	return entry, nil
}

// Pause closes the open segment of a running entry without ending it.
// Returns (nil, nil) when the id does not name a running entry.
func (t *Timer) Pause(id string) (*TimeEntry, error) {
	doc, err := t.repo.store.Load()
	if err != nil {
		return nil, fmt.Errorf("pause timer: %w", err)
	}
	i := findEntry(doc.TimeEntries, id)
	if i < 0 || doc.TimeEntries[i].Status != StatusRunning {
		return nil, nil
	}
	now := t.repo.now()
	e := &doc.TimeEntries[i]
	e.Duration += segmentSeconds(e.StartTime, now)
	e.Status = StatusPaused
	updated := *e
	if err := t.repo.store.Save(doc); err != nil {
		return nil, fmt.Errorf("pause timer: %w", err)
	}
	return &updated, nil
}

// Resume reopens a paused entry. Any other running entry is closed first,
// accumulated duration is kept and a new segment starts at now.
// Returns (nil, nil) when the entry is absent, running or stopped.
func (t *Timer) Resume(id string) (*TimeEntry, error) {
	doc, err := t.repo.store.Load()
	if err != nil {
		return nil, fmt.Errorf("resume timer: %w", err)
	}
	i := findEntry(doc.TimeEntries, id)
	if i < 0 || doc.TimeEntries[i].Status != StatusPaused {
		return nil, nil
	}
	now := t.repo.now()
	closeRunning(&doc, now, id)

	e := &doc.TimeEntries[i]
	e.StartTime = now
	e.Status = StatusRunning
	updated := *e
	if err := t.repo.store.Save(doc); err != nil {
		return nil, fmt.Errorf("resume timer: %w", err)
	}
	return &updated, nil
}

// Stop ends a running entry permanently: the open segment is folded into
// Duration and EndTime is set. Returns (nil, nil) when the id does not name
// a running entry.
func (t *Timer) Stop(id string) (*TimeEntry, error) {
	doc, err := t.repo.store.Load()
	if err != nil {
		return nil, fmt.Errorf("stop timer: %w", err)
	}
	i := findEntry(doc.TimeEntries, id)
	if i < 0 || doc.TimeEntries[i].Status != StatusRunning {
		return nil, nil
	}
	now := t.repo.now()
	e := &doc.TimeEntries[i]
	closeEntry(e, now)
	updated := *e
	if err := t.repo.store.Save(doc); err != nil {
		return nil, fmt.Errorf("stop timer: %w", err)
	}
	return &updated, nil
}

// Running returns the live entry, or (nil, nil) when no timer is running.
// Called at startup to rehydrate a timer left running by a previous session.
// If a crash left several entries running, the most recently started one is
// kept live, the rest are closed, and the repair is persisted.
func (t *Timer) Running() (*TimeEntry, error) {
	doc, err := t.repo.store.Load()
	if err != nil {
		return nil, fmt.Errorf("running timer: %w", err)
	}
	var running []int
	for i := range doc.TimeEntries {
		if doc.TimeEntries[i].Status == StatusRunning {
			running = append(running, i)
		}
	}
	switch len(running) {
	case 0:
		return nil, nil
	case 1:
		entry := doc.TimeEntries[running[0]]
		return &entry, nil
	}

	keep := running[0]
	for _, i := range running[1:] {
		if doc.TimeEntries[i].StartTime.After(doc.TimeEntries[keep].StartTime) {
			keep = i
		}
	}
	now := t.repo.now()
	closeRunning(&doc, now, doc.TimeEntries[keep].ID)
	entry := doc.TimeEntries[keep]
	if err := t.repo.store.Save(doc); err != nil {
		return nil, fmt.Errorf("running timer: %w", err)
	}
	return &entry, nil
}

// closeRunning stops every running entry except the one with the given id,
// counting elapsed wall-clock time up to now as legitimately worked.
func closeRunning(doc *Document, now time.Time, except string) {
	for i := range doc.TimeEntries {
		e := &doc.TimeEntries[i]
		if e.Status == StatusRunning && e.ID != except {
			closeEntry(e, now)
		}
	}
}

func closeEntry(e *TimeEntry, now time.Time) {
	e.Duration += segmentSeconds(e.StartTime, now)
	e.EndTime = Some(now)
	e.Status = StatusStopped
}
