// Package report derives billing totals and exports from the tracker
// document. Nothing in here mutates state.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/JPE-Studio/time-tracker/internal/tracker"
)

// Period is a half-open calendar window [From, To).
type Period struct {
	Key   string
	Label string
	From  time.Time
	To    time.Time
}

// Daily covers the calendar day of ref.
func Daily(ref time.Time) Period {
	from := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	return Period{
		Key:   "day",
		Label: from.Format("Monday, 02 Jan 2006"),
		From:  from,
		To:    from.AddDate(0, 0, 1),
	}
}

// Weekly covers the Monday-based week of ref.
func Weekly(ref time.Time) Period {
	offset := int(ref.Weekday())
	if offset == 0 {
		offset = 7
	}
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	from := day.AddDate(0, 0, -offset+1)
	to := from.AddDate(0, 0, 7)
	return Period{
		Key:   "week",
		Label: fmt.Sprintf("%s - %s", from.Format("Jan 02"), to.AddDate(0, 0, -1).Format("Jan 02, 2006")),
		From:  from,
		To:    to,
	}
}

// Monthly covers the calendar month of ref.
func Monthly(ref time.Time) Period {
	from := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	return Period{
		Key:   "month",
		Label: from.Format("January 2006"),
		From:  from,
		To:    from.AddDate(0, 1, 0),
	}
}

// Yearly covers the calendar year of ref.
func Yearly(ref time.Time) Period {
	from := time.Date(ref.Year(), 1, 1, 0, 0, 0, 0, ref.Location())
	return Period{
		Key:   "year",
		Label: from.Format("2006"),
		From:  from,
		To:    from.AddDate(1, 0, 0),
	}
}

// ForKey maps a period key (day, week, month, year) to the window containing
// ref.
func ForKey(key string, ref time.Time) (Period, error) {
	switch key {
	case "day":
		return Daily(ref), nil
	case "week":
		return Weekly(ref), nil
	case "month":
		return Monthly(ref), nil
	case "year":
		return Yearly(ref), nil
	default:
		return Period{}, fmt.Errorf("invalid period key: %s", key)
	}
}

// ProjectTotal is the per-project subtotal inside a client group. ProjectID
// is empty for time tracked against the client with no project assigned.
type ProjectTotal struct {
	ProjectID  string
	Name       string
	Seconds    int64
	HourlyRate float64
	Amount     float64
}

// ClientGroup is one client's share of the period.
type ClientGroup struct {
	ClientID string
	Name     string
	Seconds  int64
	Amount   float64
	Projects []ProjectTotal
}

// Report is the aggregation of a document over one period.
type Report struct {
	Period       Period
	Groups       []ClientGroup
	TotalSeconds int64
	TotalAmount  float64
}

// Build aggregates the document's closed entries whose start falls inside
// the period, grouped by client with per-project subtotals. Entries whose
// client id is unset or resolves to nothing are excluded from billing.
// Pure over its inputs; calling it twice yields the same report.
func Build(doc tracker.Document, period Period) Report {
	clients := make(map[string]tracker.Client, len(doc.Clients))
	for _, c := range doc.Clients {
		clients[c.ID] = c
	}
	projects := make(map[string]tracker.Project, len(doc.Projects))
	for _, p := range doc.Projects {
		projects[p.ID] = p
	}

	groups := make(map[string]*ClientGroup)
	var order []string

	for _, e := range doc.TimeEntries {
		if e.IsRunning() {
			continue
		}
		if e.StartTime.Before(period.From) || !e.StartTime.Before(period.To) {
			continue
		}
		clientID, ok := e.ClientID.Get()
		if !ok {
			continue
		}
		client, ok := clients[clientID]
		if !ok {
			continue
		}

		group := groups[clientID]
		if group == nil {
			group = &ClientGroup{ClientID: clientID, Name: client.Name}
			groups[clientID] = group
			order = append(order, clientID)
		}

		projectID := e.ProjectID.UnwrapOr("")
		var pt *ProjectTotal
		for i := range group.Projects {
			if group.Projects[i].ProjectID == projectID {
				pt = &group.Projects[i]
				break
			}
		}
		if pt == nil {
			total := ProjectTotal{ProjectID: projectID, Name: "(no project)"}
			if p, ok := projects[projectID]; ok {
				total.Name = p.Name
				total.HourlyRate = p.HourlyRate
			}
			group.Projects = append(group.Projects, total)
			pt = &group.Projects[len(group.Projects)-1]
		}

		pt.Seconds += e.Duration
		group.Seconds += e.Duration
	}

	rep := Report{Period: period}
	for _, id := range order {
		group := groups[id]
		for i := range group.Projects {
			pt := &group.Projects[i]
			pt.Amount = float64(pt.Seconds) / 3600 * pt.HourlyRate
			group.Amount += pt.Amount
		}
		sort.SliceStable(group.Projects, func(i, j int) bool {
			return group.Projects[i].Seconds > group.Projects[j].Seconds
		})
		rep.TotalSeconds += group.Seconds
		rep.TotalAmount += group.Amount
		rep.Groups = append(rep.Groups, *group)
	}
	sort.SliceStable(rep.Groups, func(i, j int) bool {
		return rep.Groups[i].Seconds > rep.Groups[j].Seconds
	})
	return rep
}

// FormatClock renders seconds as H:MM:SS, or MM:SS under an hour.
func FormatClock(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// FormatHoursMinutes renders seconds as H:MM, the billing duration format.
func FormatHoursMinutes(seconds int64) string {
	return fmt.Sprintf("%d:%02d", seconds/3600, (seconds%3600)/60)
}

// DecimalHours converts seconds to fractional hours.
func DecimalHours(seconds int64) float64 {
	return float64(seconds) / 3600
}
