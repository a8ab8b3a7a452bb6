package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
)

var ErrUpstreamStatus = errors.New("unexpected upstream status")

// Source produces a freshly loaded Dataset.
type Source interface {
	Load(ctx context.Context) (*Dataset, error)
}

// Loader fetches the cases and deaths CSVs over HTTP and melts them.
type Loader struct {
	CasesURL  string
	DeathsURL string
	Client    *http.Client
	Now       func() time.Time
}

func NewLoader(casesURL, deathsURL string, timeout time.Duration) *Loader {
	return &Loader{
		CasesURL:  casesURL,
		DeathsURL: deathsURL,
		Client:    &http.Client{Timeout: timeout},
		Now:       time.Now,
	}
}

func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	start := l.Now()
	log.Info("Loading time series (cases + deaths)...")

	ds := &Dataset{}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ds.Cases, err = l.fetch(ctx, l.CasesURL, "cases")
		return err
	})
	g.Go(func() (err error) {
		ds.Deaths, err = l.fetch(ctx, l.DeathsURL, "deaths")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds.LoadedAt = l.Now()
	log.Infof("Load Complete. Cases rows: %d. Deaths rows: %d. Time: %v",
		ds.Cases.Len(), ds.Deaths.Len(), ds.LoadedAt.Sub(start))
	return ds, nil
}

func (l *Loader) fetch(ctx context.Context, url, metric string) (*Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", metric, err)
	}
	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch %s: %w", metric, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: fetch %s: %d: %w", metric, url, resp.StatusCode, ErrUpstreamStatus)
	}
	return Melt(resp.Body, metric)
}
