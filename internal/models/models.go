package models

import "time"

// Dashboard is everything the page needs for one render.
type Dashboard struct {
	Title         string       `json:"title"`
	Countries     []string     `json:"countries"`
	CasesOverTime []CasePoint  `json:"cases_over_time"`
	TotalDeaths   []DeathTotal `json:"total_deaths"`
	LoadedAt      time.Time    `json:"loaded_at"`
}

// CasePoint is one (date, country) sum of confirmed cases.
type CasePoint struct {
	Date    string `json:"date"`
	Country string `json:"country"`
	Cases   int64  `json:"cases"`
}

type DeathTotal struct {
	Country string `json:"country"`
	Deaths  int64  `json:"deaths"`
}

type Page[T any] struct {
	Data   []T `json:"data"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type Health struct {
	Status   string     `json:"status"`
	LoadedAt *time.Time `json:"loaded_at,omitempty"`
}
