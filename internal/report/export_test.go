package report_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JPE-Studio/time-tracker/internal/report"
	"github.com/JPE-Studio/time-tracker/internal/tracker"
)

func TestWriteCSVSortingAndQuoting(t *testing.T) {
	doc := tracker.NewDocument()
	doc.Clients = []tracker.Client{{ID: "c1", Name: `Acme "The Best" Inc`}}
	doc.Projects = []tracker.Project{{ID: "p1", ClientID: "c1", Name: "Website"}}

	older := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 8, 11, 14, 30, 0, 0, time.UTC)
	doc.TimeEntries = []tracker.TimeEntry{
		{
			ID: "e1", ClientID: tracker.Some("c1"), ProjectID: tracker.Some("p1"),
			Description: "semi;colon work",
			StartTime:   older,
			EndTime:     tracker.Some(older.Add(90 * time.Minute)),
			Duration:    5400,
			Status:      tracker.StatusStopped,
		},
		{
			ID: "e2", ClientID: tracker.Some("c1"), ProjectID: tracker.None[string](),
			Description: "",
			StartTime:   newer,
			EndTime:     tracker.Some(newer.Add(30 * time.Minute)),
			Duration:    1800,
			Status:      tracker.StatusStopped,
		},
	}

	var b strings.Builder
	require.NoError(t, report.WriteCSV(&b, doc))

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	require.Len(t, lines, 3, "header plus one row per entry")

	assert.Equal(t, `"Date";"Client";"Project";"Description";"Start";"End";"Hours";"Duration"`, lines[0])

	// More recent date first.
	assert.True(t, strings.HasPrefix(lines[1], `"2026-08-11"`), "got %s", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], `"2026-08-10"`), "got %s", lines[2])

	// Internal quotes doubled, every field wrapped, semicolons preserved
	// inside quoted fields.
	assert.Contains(t, lines[2], `"Acme ""The Best"" Inc"`)
	assert.Contains(t, lines[2], `"semi;colon work"`)
	assert.Contains(t, lines[2], `"1.50"`)
	assert.Contains(t, lines[2], `"1:30"`)
	assert.Contains(t, lines[2], `"09:00:00"`)
	assert.Contains(t, lines[2], `"10:30:00"`)

	// Empty project and description still emit quoted empty fields.
	assert.Contains(t, lines[1], `;"";`)
	assert.Contains(t, lines[1], `"0.50"`)
	assert.Contains(t, lines[1], `"0:30"`)
}

func TestWriteCSVRunningEntryHasNoEnd(t *testing.T) {
	doc := tracker.NewDocument()
	start := time.Date(2026, 8, 11, 9, 0, 0, 0, time.UTC)
	doc.TimeEntries = []tracker.TimeEntry{{
		ID:        "live",
		StartTime: start,
		EndTime:   tracker.None[time.Time](),
		Duration:  0,
		Status:    tracker.StatusRunning,
	}}

	var b strings.Builder
	require.NoError(t, report.WriteCSV(&b, doc))

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], `"09:00:00";"";`)
}

func TestRenderHTML(t *testing.T) {
	doc := billingFixture()
	period := report.Monthly(time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC))
	rep := report.Build(doc, period)

	var b strings.Builder
	require.NoError(t, report.RenderHTML(&b, rep, "$"))
	html := b.String()

	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "August 2026")
	assert.Contains(t, html, "Acme")
	assert.Contains(t, html, "Globex")
	assert.Contains(t, html, "Website")
	assert.Contains(t, html, "$225.00")
	assert.Contains(t, html, "$425.00")
	assert.Contains(t, html, "3:45") // grand total hours
}

func TestRenderHTMLEscapesUserText(t *testing.T) {
	doc := tracker.NewDocument()
	doc.Clients = []tracker.Client{{ID: "c1", Name: `<script>alert("x")</script>`}}
	start := time.Date(2026, 8, 11, 9, 0, 0, 0, time.UTC)
	doc.TimeEntries = []tracker.TimeEntry{{
		ID:        "e1",
		ClientID:  tracker.Some("c1"),
		StartTime: start,
		EndTime:   tracker.Some(start.Add(time.Hour)),
		Duration:  3600,
		Status:    tracker.StatusStopped,
	}}

	rep := report.Build(doc, report.Monthly(start))
	var b strings.Builder
	require.NoError(t, report.RenderHTML(&b, rep, "$"))

	assert.NotContains(t, b.String(), "<script>alert")
}

func TestRenderHTMLEmptyPeriod(t *testing.T) {
	rep := report.Build(tracker.NewDocument(), report.Monthly(time.Now()))

	var b strings.Builder
	require.NoError(t, report.RenderHTML(&b, rep, "$"))
	assert.Contains(t, b.String(), "No billable time")
}
