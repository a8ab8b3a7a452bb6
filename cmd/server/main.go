package main

import (
	"context"
	"coviddash/internal/api"
	"coviddash/internal/config"
	"coviddash/internal/engine"
	"coviddash/internal/logging"
	"fmt"
	"os"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

type flags struct {
	configPath string
	addr       string
	ttl        time.Duration
	countries  []string
	logLevel   string
}

// load merges defaults, the optional config file and any flags the user set.
func (f *flags) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, err
	}
	if cmd.Flags().Changed("addr") {
		cfg.Addr = f.addr
	}
	if cmd.Flags().Changed("ttl") {
		cfg.CacheTTL = f.ttl
	}
	if cmd.Flags().Changed("countries") {
		cfg.Countries = f.countries
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	return cfg, cfg.Validate()
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:          "coviddash",
		Short:        "COVID-19 cases and deaths dashboard",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&f.configPath, "config", "c", "", "YAML config file")
	root.PersistentFlags().StringSliceVar(&f.countries, "countries", nil, "country allow-list (comma separated)")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "info", "debug, info, warn, error or off")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			return runServe(cfg)
		},
	}
	serve.Flags().StringVar(&f.addr, "addr", ":8080", "listen address")
	serve.Flags().DurationVar(&f.ttl, "ttl", 0, "cache lifetime, 0 never expires")

	var out string
	render := &cobra.Command{
		Use:   "render",
		Short: "Fetch the data once and write the dashboard as a static HTML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			return runRender(cmd.Context(), cfg, out)
		},
	}
	render.Flags().StringVarP(&out, "out", "o", "dashboard.html", "output file")

	root.AddCommand(serve, render)
	return root
}

func runServe(cfg config.Config) error {
	lvl, err := logging.Setup(cfg.LogLevel)
	if err != nil {
		return err
	}

	loader := engine.NewLoader(cfg.CasesURL, cfg.DeathsURL, cfg.FetchTimeout)
	cache := engine.NewCache(loader, cfg.CacheTTL)

	e := api.NewServer(cache, api.Options{
		Countries: cfg.Countries,
		RateLimit: cfg.RateLimit,
		LogLevel:  lvl,
	})

	// Warm the cache in the background; requests that arrive first join the same load.
	go func() {
		log.Info("BACKGROUND: Loading data...")
		t0 := time.Now()
		if _, err := cache.Get(context.Background()); err != nil {
			log.Errorf("BACKGROUND: initial load failed: %v", err)
			return
		}
		log.Infof("BACKGROUND: Load complete in %v. API is fully ready.", time.Since(t0))
	}()

	log.Infof("Server ready on %s (data loading in background...)", cfg.Addr)
	return e.Start(cfg.Addr)
}

func runRender(ctx context.Context, cfg config.Config, out string) error {
	if _, err := logging.Setup(cfg.LogLevel); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()

	ds, err := engine.NewLoader(cfg.CasesURL, cfg.DeathsURL, cfg.FetchTimeout).Load(ctx)
	if err != nil {
		return err
	}

	file, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	if err := api.RenderPage(file, ds.Dashboard(cfg.Countries, false)); err != nil {
		file.Close()
		return fmt.Errorf("render %s: %w", out, err)
	}
	if err := file.Close(); err != nil {
		return err
	}
	log.Infof("Wrote %s", out)
	return nil
}
