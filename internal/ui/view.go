package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/JPE-Studio/time-tracker/internal/report"
	"github.com/JPE-Studio/time-tracker/internal/tracker"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	entryStyle = lipgloss.NewStyle().
			Padding(0, 1)

	entrySelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)

	runningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170"))

	inputInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))
)

func (m *Model) View() string {
	switch m.mode {
	case modeStartForm:
		return m.startFormView()
	case modeClientForm:
		return m.clientFormView()
	case modeProjectForm:
		return m.projectFormView()
	}
	return m.mainView()
}

func (m *Model) clientNameByID(id tracker.Option[string]) string {
	cid, ok := id.Get()
	if !ok {
		return "-"
	}
	for _, c := range m.doc.Clients {
		if c.ID == cid {
			return c.Name
		}
	}
	return "-"
}

func (m *Model) projectNameByID(id tracker.Option[string]) string {
	pid, ok := id.Get()
	if !ok {
		return "-"
	}
	for _, p := range m.doc.Projects {
		if p.ID == pid {
			return p.Name
		}
	}
	return "-"
}

func (m *Model) mainView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Time Tracker"))
	b.WriteString("\n\n")

	b.WriteString(m.timerPanel())
	b.WriteString("\n")

	entries := m.visibleEntries()
	if len(entries) == 0 {
		b.WriteString(dimStyle.Render("No time entries yet. Press 's' to start a timer."))
		b.WriteString("\n")
	}
	for i, e := range entries {
		line := m.entryLine(e)
		if i == m.selected {
			b.WriteString(entrySelectedStyle.Render(line))
		} else {
			b.WriteString(entryStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(dimStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(fmt.Sprintf(
		"s start · enter pause/resume · o stop · d delete · c client · p project · e csv · r report [%s] · tab period · q quit",
		periodKeys[m.periodIdx],
	)))
	return b.String()
}

func (m *Model) timerPanel() string {
	for _, e := range m.doc.TimeEntries {
		if e.IsRunning() {
			desc := e.Description
			if desc == "" {
				desc = "(no description)"
			}
			body := fmt.Sprintf("%s\n%s / %s\n%s",
				desc,
				m.clientNameByID(e.ClientID),
				m.projectNameByID(e.ProjectID),
				runningStyle.Render(report.FormatClock(e.Elapsed(m.now()))),
			)
			return boxStyle.Render(body) + "\n"
		}
	}
	return boxStyle.Render(dimStyle.Render("no timer running")) + "\n"
}

func (m *Model) entryLine(e tracker.TimeEntry) string {
	status := "  "
	switch e.Status {
	case tracker.StatusRunning:
		status = runningStyle.Render("▶ ")
	case tracker.StatusPaused:
		status = pausedStyle.Render("⏸ ")
	}
	desc := e.Description
	if desc == "" {
		desc = "(no description)"
	}
	return fmt.Sprintf("%s%s  %-24.24s  %-14.14s  %s",
		status,
		e.StartTime.Format("Jan 02 15:04"),
		desc,
		m.clientNameByID(e.ClientID),
		report.FormatClock(e.Elapsed(m.now())),
	)
}

func (m *Model) field(label, value string, active bool) string {
	style := inputInactiveStyle
	cursor := ""
	if active {
		style = inputStyle
		cursor = "▌"
	}
	return fmt.Sprintf("%s: %s\n", label, style.Render(value+cursor))
}

func (m *Model) startFormView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Start timer"))
	b.WriteString("\n\n")
	b.WriteString(m.field("Description", m.description, m.focus == 0))

	clientLabel := "(none)"
	if m.clientIdx >= 0 && m.clientIdx < len(m.doc.Clients) {
		clientLabel = m.doc.Clients[m.clientIdx].Name
	}
	b.WriteString(m.pickerField("Client", clientLabel, m.focus == 1))

	projectLabel := "(none)"
	projects := m.formProjects()
	if m.projectIdx >= 0 && m.projectIdx < len(projects) {
		projectLabel = projects[m.projectIdx].Name
	}
	b.WriteString(m.pickerField("Project", projectLabel, m.focus == 2))

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab next field · ←/→ choose · enter start · esc cancel"))
	return b.String()
}

func (m *Model) pickerField(label, value string, active bool) string {
	style := inputInactiveStyle
	if active {
		style = inputStyle
	}
	return fmt.Sprintf("%s: %s\n", label, style.Render("‹ "+value+" ›"))
}

func (m *Model) clientFormView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("New client"))
	b.WriteString("\n\n")
	b.WriteString(m.field("Name", m.clientName, m.focus == 0))
	b.WriteString(m.field("Email", m.clientEmail, m.focus == 1))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab next field · enter save · esc cancel"))
	return b.String()
}

func (m *Model) projectFormView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("New project"))
	b.WriteString("\n\n")
	b.WriteString(m.field("Name", m.projectName, m.focus == 0))
	b.WriteString(m.field("Hourly rate", m.projectRate, m.focus == 1))

	clientLabel := ""
	if len(m.doc.Clients) > 0 {
		clientLabel = m.doc.Clients[m.projectClientIdx].Name
	}
	b.WriteString(m.pickerField("Client", clientLabel, m.focus == 2))

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab next field · ←/→ choose client · enter save · esc cancel"))
	return b.String()
}
