package engine

import "coviddash/internal/models"

const DashboardTitle = "COVID-19 Data Dashboard"

// Dashboard restricts both tables to countries and aggregates them for display.
// When latest is set, deaths are taken from each country's most recent date
// instead of summed across all dates.
func (ds *Dataset) Dashboard(countries []string, latest bool) *models.Dashboard {
	deaths := ds.Deaths.Filter(countries)
	totals := deaths.SumByCountry()
	if latest {
		totals = deaths.LatestByCountry()
	}
	return &models.Dashboard{
		Title:         DashboardTitle,
		Countries:     countries,
		CasesOverTime: ds.Cases.Filter(countries).SumByDateCountry(),
		TotalDeaths:   totals,
		LoadedAt:      ds.LoadedAt,
	}
}
