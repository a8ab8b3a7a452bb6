package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultCasesURL  = "https://raw.githubusercontent.com/CSSEGISandData/COVID-19/master/csse_covid_19_data/csse_covid_19_time_series/time_series_covid19_confirmed_global.csv"
	DefaultDeathsURL = "https://raw.githubusercontent.com/CSSEGISandData/COVID-19/master/csse_covid_19_data/csse_covid_19_time_series/time_series_covid19_deaths_global.csv"
)

type Config struct {
	Addr      string   `yaml:"addr"`
	CasesURL  string   `yaml:"cases_url"`
	DeathsURL string   `yaml:"deaths_url"`
	Countries []string `yaml:"countries"`

	// Zero keeps the first successful load for the life of the process.
	CacheTTL     time.Duration `yaml:"cache_ttl"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	LogLevel string `yaml:"log_level"`

	// Requests per second per client IP; zero disables the limiter.
	RateLimit float64 `yaml:"rate_limit"`
}

func Default() Config {
	return Config{
		Addr:         ":8080",
		CasesURL:     DefaultCasesURL,
		DeathsURL:    DefaultDeathsURL,
		Countries:    []string{"US", "India", "United Kingdom"},
		CacheTTL:     0,
		FetchTimeout: 60 * time.Second,
		LogLevel:     "info",
		RateLimit:    20,
	}
}

// Load reads a YAML file over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("config: addr is required")
	case c.CasesURL == "" || c.DeathsURL == "":
		return fmt.Errorf("config: cases_url and deaths_url are required")
	case len(c.Countries) == 0:
		return fmt.Errorf("config: countries must not be empty")
	case c.CacheTTL < 0 || c.FetchTimeout < 0:
		return fmt.Errorf("config: durations must not be negative")
	}
	return nil
}
