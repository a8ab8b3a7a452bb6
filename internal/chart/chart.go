// Package chart builds Vega-Lite specifications for the dashboard charts.
package chart

import (
	"coviddash/internal/models"

	"github.com/goccy/go-json"
)

const schemaURL = "https://vega.github.io/schema/vega-lite/v5.json"

type Spec struct {
	Schema   string   `json:"$schema"`
	Width    string   `json:"width,omitempty"`
	Data     Data     `json:"data"`
	Mark     Mark     `json:"mark"`
	Encoding Encoding `json:"encoding"`
	Config   *Config  `json:"config,omitempty"`
}

type Data struct {
	Values any `json:"values"`
}

type Mark struct {
	Type string `json:"type"`
}

type Field struct {
	Field string `json:"field"`
	Type  string `json:"type"`
	Title string `json:"title,omitempty"`
}

type Encoding struct {
	X       Field   `json:"x"`
	Y       Field   `json:"y"`
	Color   Field   `json:"color"`
	Tooltip []Field `json:"tooltip"`
}

type Config struct {
	Axis Axis `json:"axis"`
}

type Axis struct {
	LabelAngle int `json:"labelAngle"`
}

var (
	dateField    = Field{Field: "date", Type: "temporal", Title: "Date"}
	casesField   = Field{Field: "cases", Type: "quantitative", Title: "Cases"}
	deathsField  = Field{Field: "deaths", Type: "quantitative", Title: "Deaths"}
	countryField = Field{Field: "country", Type: "nominal", Title: "Country/Region"}
)

// Line plots confirmed cases over time, one colored line per country.
func Line(points []models.CasePoint) *Spec {
	values := make([]models.CasePoint, len(points))
	copy(values, points)
	return &Spec{
		Schema: schemaURL,
		Width:  "container",
		Data:   Data{Values: values},
		Mark:   Mark{Type: "line"},
		Encoding: Encoding{
			X:       dateField,
			Y:       casesField,
			Color:   countryField,
			Tooltip: []Field{dateField, casesField, countryField},
		},
		Config: &Config{Axis: Axis{LabelAngle: -45}},
	}
}

// Bar is a horizontal bar per country.
func Bar(totals []models.DeathTotal) *Spec {
	values := make([]models.DeathTotal, len(totals))
	copy(values, totals)
	return &Spec{
		Schema: schemaURL,
		Width:  "container",
		Data:   Data{Values: values},
		Mark:   Mark{Type: "bar"},
		Encoding: Encoding{
			X:       deathsField,
			Y:       countryField,
			Color:   countryField,
			Tooltip: []Field{countryField, deathsField},
		},
	}
}

func (s *Spec) JSON() ([]byte, error) {
	return json.Marshal(s)
}
