package engine

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const wideDeaths = `Province/State,Country/Region,Lat,Long,1/22/20,1/23/20
New York,US,40.0,-100.0,5,6
California,US,36.1,-119.6,7,9
,France,46.2,2.2,3,4
`

func upstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/confirmed.csv", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(wideCases))
	})
	mux.HandleFunc("/deaths.csv", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(wideDeaths))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoaderLoad(t *testing.T) {
	srv := upstream(t)
	fixed := time.Date(2023, 3, 10, 0, 0, 0, 0, time.UTC)

	l := NewLoader(srv.URL+"/confirmed.csv", srv.URL+"/deaths.csv", 5*time.Second)
	l.Now = func() time.Time { return fixed }

	ds, err := l.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if ds.Cases.Len() != 9 {
		t.Errorf("Expected 9 case rows, got %d", ds.Cases.Len())
	}
	if ds.Deaths.Len() != 6 {
		t.Errorf("Expected 6 death rows, got %d", ds.Deaths.Len())
	}
	if ds.Cases.Metric != "cases" || ds.Deaths.Metric != "deaths" {
		t.Errorf("Metrics: %q, %q", ds.Cases.Metric, ds.Deaths.Metric)
	}
	if !ds.LoadedAt.Equal(fixed) {
		t.Errorf("LoadedAt: got %v", ds.LoadedAt)
	}
}

func TestLoaderUpstreamStatus(t *testing.T) {
	srv := upstream(t)
	l := NewLoader(srv.URL+"/confirmed.csv", srv.URL+"/missing.csv", 5*time.Second)

	_, err := l.Load(context.Background())
	if !errors.Is(err, ErrUpstreamStatus) {
		t.Fatalf("Expected ErrUpstreamStatus, got %v", err)
	}
}

func TestLoaderUnreachable(t *testing.T) {
	srv := upstream(t)
	url := srv.URL
	srv.Close()

	l := NewLoader(url+"/confirmed.csv", url+"/deaths.csv", time.Second)
	if _, err := l.Load(context.Background()); err == nil {
		t.Fatal("Expected an error from a closed upstream")
	}
}

func TestDatasetDashboard(t *testing.T) {
	srv := upstream(t)
	ds, err := NewLoader(srv.URL+"/confirmed.csv", srv.URL+"/deaths.csv", 5*time.Second).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	d := ds.Dashboard([]string{"US", "India", "United Kingdom"}, false)
	if d.Title != DashboardTitle {
		t.Errorf("Title: %q", d.Title)
	}
	// Only US is present upstream: 3 dates of cases, 1 death total
	if len(d.CasesOverTime) != 3 {
		t.Fatalf("Expected 3 case points, got %d", len(d.CasesOverTime))
	}
	if d.CasesOverTime[2].Cases != 20 {
		t.Errorf("US on 2020-01-24: got %d", d.CasesOverTime[2].Cases)
	}
	if len(d.TotalDeaths) != 1 || d.TotalDeaths[0].Deaths != 27 {
		t.Errorf("Deaths: got %+v", d.TotalDeaths)
	}

	latest := ds.Dashboard([]string{"US"}, true)
	if latest.TotalDeaths[0].Deaths != 15 {
		t.Errorf("Latest US deaths: got %d", latest.TotalDeaths[0].Deaths)
	}
}
