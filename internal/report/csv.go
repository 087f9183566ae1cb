package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/JPE-Studio/time-tracker/internal/tracker"
)

// csvSeparator is semicolon so spreadsheet locales that treat comma as the
// decimal separator import the file cleanly.
const csvSeparator = ";"

var csvHeader = []string{
	"Date", "Client", "Project", "Description",
	"Start", "End", "Hours", "Duration",
}

// WriteCSV emits one row per time entry, most recent date first. Every field
// is quote-wrapped with embedded quotes doubled.
func WriteCSV(w io.Writer, doc tracker.Document) error {
	clients := make(map[string]tracker.Client, len(doc.Clients))
	for _, c := range doc.Clients {
		clients[c.ID] = c
	}
	projects := make(map[string]tracker.Project, len(doc.Projects))
	for _, p := range doc.Projects {
		projects[p.ID] = p
	}

	entries := make([]tracker.TimeEntry, len(doc.TimeEntries))
	copy(entries, doc.TimeEntries)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].StartTime.After(entries[j].StartTime)
	})

	if err := writeCSVRow(w, csvHeader); err != nil {
		return err
	}
	for _, e := range entries {
		var clientName, projectName string
		if id, ok := e.ClientID.Get(); ok {
			clientName = clients[id].Name
		}
		if id, ok := e.ProjectID.Get(); ok {
			projectName = projects[id].Name
		}
		end := ""
		if t, ok := e.EndTime.Get(); ok {
			end = t.Format("15:04:05")
		}
		row := []string{
			e.StartTime.Format("2006-01-02"),
			clientName,
			projectName,
			e.Description,
			e.StartTime.Format("15:04:05"),
			end,
			fmt.Sprintf("%.2f", DecimalHours(e.Duration)),
			FormatHoursMinutes(e.Duration),
		}
		if err := writeCSVRow(w, row); err != nil {
			return err
		}
	}
	return nil
}

func writeCSVRow(w io.Writer, fields []string) error {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteString(csvSeparator)
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}
