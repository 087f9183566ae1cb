package store

import (
	"sync"

	"github.com/JPE-Studio/time-tracker/internal/tracker"
)

// Memory is an in-process store used by tests. LoadErr/SaveErr, when set,
// are returned instead of touching the held document.
type Memory struct {
	mu      sync.Mutex
	doc     tracker.Document
	present bool

	LoadErr error
	SaveErr error

	saves int
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load() (tracker.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return tracker.Document{}, m.LoadErr
	}
	if !m.present {
		return tracker.NewDocument(), nil
	}
	return m.doc.Clone(), nil
}

func (m *Memory) Save(doc tracker.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.doc = doc.Clone()
	m.present = true
	m.saves++
	return nil
}

// SaveCount reports how many saves succeeded, letting tests assert that
// no-op operations persist nothing.
func (m *Memory) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
