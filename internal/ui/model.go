// Package ui is the terminal dashboard. It consumes the tracker core through
// the repository/timer surface and never mutates state from the display tick.
package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/JPE-Studio/time-tracker/internal/config"
	"github.com/JPE-Studio/time-tracker/internal/report"
	"github.com/JPE-Studio/time-tracker/internal/tracker"
)

// MsgTick is sent once per second by main to refresh the elapsed display.
type MsgTick struct{}

type mode int

const (
	modeList mode = iota
	modeStartForm
	modeClientForm
	modeProjectForm
)

var periodKeys = []string{"day", "week", "month", "year"}

type Model struct {
	repo  *tracker.Repository
	timer *tracker.Timer
	cfg   config.Config

	doc      tracker.Document
	selected int
	mode     mode
	status   string
	err      error

	periodIdx int

	// start form state
	description string
	clientIdx   int // index into doc.Clients, -1 = unassigned
	projectIdx  int // index into formProjects(), -1 = unassigned
	focus       int

	// client form state
	clientName  string
	clientEmail string

	// project form state
	projectName      string
	projectRate      string
	projectClientIdx int

	now func() time.Time
}

func NewModel(repo *tracker.Repository, timer *tracker.Timer, cfg config.Config) (*Model, error) {
	m := &Model{
		repo:       repo,
		timer:      timer,
		cfg:        cfg,
		clientIdx:  -1,
		projectIdx: -1,
		now:        time.Now,
	}

	// Rehydrate (and, if needed, repair) a timer left over from a previous
	// session before the first render.
	if _, err := timer.Running(); err != nil {
		return nil, fmt.Errorf("recover running timer: %w", err)
	}
	if err := m.refresh(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) refresh() error {
	doc, err := m.repo.LoadData()
	if err != nil {
		return fmt.Errorf("load data: %w", err)
	}
	m.doc = doc
	if m.selected >= len(m.doc.TimeEntries) {
		m.selected = len(m.doc.TimeEntries) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case MsgTick:
		// Display refresh only; no state is written on the tick.
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		return m, nil
	}
	return m, nil
}

// visibleEntries returns the entries newest-first for the list view.
func (m *Model) visibleEntries() []tracker.TimeEntry {
	entries := make([]tracker.TimeEntry, len(m.doc.TimeEntries))
	copy(entries, m.doc.TimeEntries)
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries
}

func (m *Model) selectedEntry() *tracker.TimeEntry {
	entries := m.visibleEntries()
	if m.selected >= 0 && m.selected < len(entries) {
		e := entries[m.selected]
		return &e
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeStartForm:
		return m.handleStartForm(msg)
	case modeClientForm:
		return m.handleClientForm(msg)
	case modeProjectForm:
		return m.handleProjectForm(msg)
	}
	return m.handleList(msg)
}

func (m *Model) handleList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.doc.TimeEntries)-1 {
			m.selected++
		}
	case "s":
		m.mode = modeStartForm
		m.description = ""
		m.clientIdx = -1
		m.projectIdx = -1
		m.focus = 0
	case "enter":
		m.togglePauseResume()
	case "o":
		m.stopRunning()
	case "d":
		if e := m.selectedEntry(); e != nil {
			if _, err := m.repo.DeleteTimeEntry(e.ID); err != nil {
				m.err = err
				break
			}
			m.err = m.refresh()
		}
	case "c":
		m.mode = modeClientForm
		m.clientName = ""
		m.clientEmail = ""
		m.focus = 0
	case "p":
		if len(m.doc.Clients) == 0 {
			m.status = "add a client first"
			break
		}
		m.mode = modeProjectForm
		m.projectName = ""
		m.projectRate = ""
		m.projectClientIdx = 0
		m.focus = 0
	case "e":
		m.exportCSV()
	case "r":
		m.exportHTML()
	case "tab":
		m.periodIdx = (m.periodIdx + 1) % len(periodKeys)
	}
	return m, nil
}

func (m *Model) togglePauseResume() {
	e := m.selectedEntry()
	if e == nil {
		return
	}
	var err error
	switch e.Status {
	case tracker.StatusRunning:
		_, err = m.timer.Pause(e.ID)
	case tracker.StatusPaused:
		_, err = m.timer.Resume(e.ID)
	default:
		return
	}
	if err != nil {
		m.err = err
		return
	}
	m.err = m.refresh()
}

func (m *Model) stopRunning() {
	for _, e := range m.doc.TimeEntries {
		if e.IsRunning() {
			if _, err := m.timer.Stop(e.ID); err != nil {
				m.err = err
				return
			}
			m.err = m.refresh()
			return
		}
	}
	m.status = "no timer running"
}

func (m *Model) exportCSV() {
	name := fmt.Sprintf("export-%s.csv", m.now().Format("20060102-150405"))
	path := filepath.Join(m.cfg.DataDir, name)
	f, err := os.Create(path)
	if err != nil {
		m.err = err
		return
	}
	defer f.Close()
	if err := report.WriteCSV(f, m.doc); err != nil {
		m.err = err
		return
	}
	m.status = "wrote " + path
}

func (m *Model) exportHTML() {
	period, err := report.ForKey(periodKeys[m.periodIdx], m.now())
	if err != nil {
		m.err = err
		return
	}
	rep := report.Build(m.doc, period)
	name := fmt.Sprintf("report-%s-%s.html", period.Key, m.now().Format("20060102-150405"))
	path := filepath.Join(m.cfg.DataDir, name)
	f, err := os.Create(path)
	if err != nil {
		m.err = err
		return
	}
	defer f.Close()
	if err := report.RenderHTML(f, rep, m.cfg.Currency); err != nil {
		m.err = err
		return
	}
	m.status = "wrote " + path
}

// formProjects lists the projects selectable in the start form: the chosen
// client's projects, or all of them while no client is chosen.
func (m *Model) formProjects() []tracker.Project {
	if m.clientIdx < 0 || m.clientIdx >= len(m.doc.Clients) {
		return m.doc.Projects
	}
	clientID := m.doc.Clients[m.clientIdx].ID
	var out []tracker.Project
	for _, p := range m.doc.Projects {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	return out
}

func (m *Model) handleStartForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.mode = modeList
	case "tab":
		m.focus = (m.focus + 1) % 3
	case "shift+tab":
		m.focus = (m.focus + 2) % 3
	case "left", "right":
		delta := 1
		if msg.String() == "left" {
			delta = -1
		}
		switch m.focus {
		case 1:
			m.clientIdx = cycle(m.clientIdx, len(m.doc.Clients), delta)
			m.projectIdx = -1
		case 2:
			m.projectIdx = cycle(m.projectIdx, len(m.formProjects()), delta)
		}
	case "enter":
		clientID := tracker.None[string]()
		if m.clientIdx >= 0 && m.clientIdx < len(m.doc.Clients) {
			clientID = tracker.Some(m.doc.Clients[m.clientIdx].ID)
		}
		projectID := tracker.None[string]()
		projects := m.formProjects()
		if m.projectIdx >= 0 && m.projectIdx < len(projects) {
			p := projects[m.projectIdx]
			projectID = tracker.Some(p.ID)
			if clientID.IsNone() {
				clientID = tracker.Some(p.ClientID)
			}
		}
		if _, err := m.timer.Start(projectID, clientID, m.description); err != nil {
			m.err = err
		} else {
			m.err = m.refresh()
			m.selected = 0
		}
		m.mode = modeList
	case "backspace":
		if m.focus == 0 && len(m.description) > 0 {
			m.description = m.description[:len(m.description)-1]
		}
	default:
		if m.focus == 0 {
			if runes := []rune(msg.String()); len(runes) == 1 {
				m.description += string(runes[0])
			}
		}
	}
	return m, nil
}

// cycle steps an index through [-1, n) where -1 means "none".
func cycle(idx, n, delta int) int {
	idx += delta
	if idx < -1 {
		idx = n - 1
	}
	if idx >= n {
		idx = -1
	}
	return idx
}

func (m *Model) handleClientForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.mode = modeList
	case "tab":
		m.focus = 1 - m.focus
	case "enter":
		if m.focus == 0 {
			m.focus = 1
			break
		}
		if m.clientName != "" {
			if _, err := m.repo.AddClient(tracker.ClientParams{
				Name:  m.clientName,
				Email: m.clientEmail,
			}); err != nil {
				m.err = err
			} else {
				m.err = m.refresh()
			}
		}
		m.mode = modeList
	case "backspace":
		if m.focus == 0 {
			m.clientName = trimLast(m.clientName)
		} else {
			m.clientEmail = trimLast(m.clientEmail)
		}
	default:
		if runes := []rune(msg.String()); len(runes) == 1 {
			if m.focus == 0 {
				m.clientName += string(runes[0])
			} else {
				m.clientEmail += string(runes[0])
			}
		}
	}
	return m, nil
}

func (m *Model) handleProjectForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.mode = modeList
	case "tab":
		m.focus = (m.focus + 1) % 3
	case "left", "right":
		if m.focus == 2 && len(m.doc.Clients) > 0 {
			delta := 1
			if msg.String() == "left" {
				delta = -1
			}
			m.projectClientIdx = (m.projectClientIdx + delta + len(m.doc.Clients)) % len(m.doc.Clients)
		}
	case "enter":
		if m.focus < 2 {
			m.focus++
			break
		}
		if m.projectName != "" {
			rate := 0.0
			if m.projectRate != "" {
				v, err := strconv.ParseFloat(m.projectRate, 64)
				if err != nil || v < 0 {
					m.status = "invalid hourly rate"
					return m, nil
				}
				rate = v
			}
			if _, err := m.repo.AddProject(tracker.ProjectParams{
				ClientID:   m.doc.Clients[m.projectClientIdx].ID,
				Name:       m.projectName,
				HourlyRate: rate,
			}); err != nil {
				m.err = err
			} else {
				m.err = m.refresh()
			}
		}
		m.mode = modeList
	case "backspace":
		if m.focus == 0 {
			m.projectName = trimLast(m.projectName)
		} else if m.focus == 1 {
			m.projectRate = trimLast(m.projectRate)
		}
	default:
		runes := []rune(msg.String())
		if len(runes) != 1 {
			break
		}
		if m.focus == 0 {
			m.projectName += string(runes[0])
		} else if m.focus == 1 {
			r := runes[0]
			if (r >= '0' && r <= '9') || r == '.' {
				m.projectRate += string(r)
			}
		}
	}
	return m, nil
}

func trimLast(s string) string {
	if len(s) == 0 {
		return s
	}
	return s[:len(s)-1]
}
