package report

import (
	"fmt"
	"html/template"
	"io"
)

// RenderHTML writes a self-contained printable report for one period.
func RenderHTML(w io.Writer, rep Report, currency string) error {
	data := htmlReport{
		Title:      "Time Report",
		Label:      rep.Period.Label,
		TotalHours: FormatHoursMinutes(rep.TotalSeconds),
		TotalCost:  formatAmount(currency, rep.TotalAmount),
	}
	for _, g := range rep.Groups {
		hg := htmlGroup{
			Name:  g.Name,
			Hours: FormatHoursMinutes(g.Seconds),
			Cost:  formatAmount(currency, g.Amount),
		}
		for _, p := range g.Projects {
			hg.Projects = append(hg.Projects, htmlProject{
				Name:  p.Name,
				Hours: FormatHoursMinutes(p.Seconds),
				Rate:  formatAmount(currency, p.HourlyRate),
				Cost:  formatAmount(currency, p.Amount),
			})
		}
		data.Groups = append(data.Groups, hg)
	}
	return htmlTemplate.Execute(w, data)
}

func formatAmount(currency string, amount float64) string {
	return fmt.Sprintf("%s%.2f", currency, amount)
}

type htmlProject struct {
	Name  string
	Hours string
	Rate  string
	Cost  string
}

type htmlGroup struct {
	Name     string
	Hours    string
	Cost     string
	Projects []htmlProject
}

type htmlReport struct {
	Title      string
	Label      string
	TotalHours string
	TotalCost  string
	Groups     []htmlGroup
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} - {{.Label}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem auto; max-width: 48rem; color: #222; }
h1 { font-size: 1.4rem; margin-bottom: 0; }
h2 { font-size: 1.1rem; margin: 1.5rem 0 0.5rem; border-bottom: 1px solid #ccc; }
p.period { color: #666; margin-top: 0.25rem; }
table { width: 100%; border-collapse: collapse; }
th, td { text-align: left; padding: 0.3rem 0.5rem; }
th { border-bottom: 1px solid #999; font-weight: 600; }
td.num, th.num { text-align: right; }
tr.subtotal td { border-top: 1px solid #ccc; font-weight: 600; }
p.total { margin-top: 2rem; font-size: 1.1rem; font-weight: 600; text-align: right; }
@media print { body { margin: 0; max-width: none; } }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="period">{{.Label}}</p>
{{range .Groups}}
<h2>{{.Name}}</h2>
<table>
<tr><th>Project</th><th class="num">Hours</th><th class="num">Rate</th><th class="num">Amount</th></tr>
{{range .Projects}}<tr><td>{{.Name}}</td><td class="num">{{.Hours}}</td><td class="num">{{.Rate}}</td><td class="num">{{.Cost}}</td></tr>
{{end}}<tr class="subtotal"><td>Total</td><td class="num">{{.Hours}}</td><td class="num"></td><td class="num">{{.Cost}}</td></tr>
</table>
{{else}}
<p>No billable time in this period.</p>
{{end}}
<p class="total">Grand total: {{.TotalHours}} / {{.TotalCost}}</p>
</body>
</html>
`))
