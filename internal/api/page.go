package api

import (
	"coviddash/internal/chart"
	"coviddash/internal/models"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/valyala/fasttemplate"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const pageCSS = `
.app { width: 100%; margin-left: auto; margin-right: auto; padding: 0; overflow-y: auto; }
.chart { width: 80%; max-width: 100%; margin-left: auto; margin-right: auto; }
body { font-family: sans-serif; }
`

var pageTemplate = fasttemplate.New(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{title}}</title>
<script src="https://cdn.jsdelivr.net/npm/vega@5"></script>
<script src="https://cdn.jsdelivr.net/npm/vega-lite@5"></script>
<script src="https://cdn.jsdelivr.net/npm/vega-embed@6"></script>
<style>{{css}}</style>
</head>
<body>
<div class="app">
<h1>{{title}}</h1>
<p>{{description}}</p>
<h2>{{cases_heading}}</h2>
<div id="cases" class="chart"></div>
<h2>{{deaths_heading}}</h2>
<div id="deaths" class="chart"></div>
</div>
<script>
vegaEmbed("#cases", {{cases_spec}});
vegaEmbed("#deaths", {{deaths_spec}});
</script>
</body>
</html>
`, "{{", "}}")

var printer = message.NewPrinter(language.English)

// RenderPage writes the dashboard HTML with both chart specs embedded.
func RenderPage(w io.Writer, d *models.Dashboard) error {
	casesSpec, err := chart.Line(d.CasesOverTime).JSON()
	if err != nil {
		return fmt.Errorf("cases chart: %w", err)
	}
	deathsSpec, err := chart.Bar(d.TotalDeaths).JSON()
	if err != nil {
		return fmt.Errorf("deaths chart: %w", err)
	}

	countries := strings.Join(d.Countries, ", ")
	_, err = pageTemplate.Execute(w, map[string]interface{}{
		"title":          html.EscapeString(d.Title),
		"css":            pageCSS,
		"description":    html.EscapeString(describe(d)),
		"cases_heading":  html.EscapeString(fmt.Sprintf("COVID-19 Confirmed Cases Over Time (%s)", countries)),
		"deaths_heading": html.EscapeString(fmt.Sprintf("Total COVID-19 Deaths (%s)", countries)),
		"cases_spec":     casesSpec,
		"deaths_spec":    deathsSpec,
	})
	return err
}

// describe summarises the most recent case count per country.
func describe(d *models.Dashboard) string {
	if len(d.CasesOverTime) == 0 {
		return "No data for the selected countries."
	}

	latest := map[string]models.CasePoint{}
	var order []string
	for _, p := range d.CasesOverTime {
		if _, ok := latest[p.Country]; !ok {
			order = append(order, p.Country)
		}
		latest[p.Country] = p
	}

	parts := make([]string, 0, len(order))
	for _, c := range order {
		parts = append(parts, printer.Sprintf("%s %d", c, latest[c].Cases))
	}
	last := d.CasesOverTime[len(d.CasesOverTime)-1].Date
	return fmt.Sprintf("Johns Hopkins CSSE time series, as of %s. Confirmed cases: %s.", last, strings.Join(parts, "; "))
}
