package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"AdsPilot/internal/ads"
	"AdsPilot/internal/config"
	"AdsPilot/internal/directory"
	"AdsPilot/internal/monitor"
	"AdsPilot/internal/ops"
	"AdsPilot/internal/recorder"
	"AdsPilot/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the monitor loop until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMonitor(false)
	},
}

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single evaluation cycle and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMonitor(true)
	},
}

// app holds the wired collaborators for one process.
type app struct {
	cfg     *config.Config
	store   store.Store
	api     ads.API
	dir     *directory.Directory
	rec     recorder.Recorder
	metrics *ops.Metrics
	cron    *cron.Cron
}

func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	a := &app{
		cfg:   cfg,
		store: store.NewRTDBStore(cfg.Store.BaseURL, cfg.Store.RootPath, cfg.Store.LivePath, cfg.Store.AuthToken, cfg.Proxy),
		cron:  cron.New(),
	}

	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			a.rec = recorder.NewNoopRecorder()
		} else {
			a.rec = sr
		}
	} else {
		a.rec = recorder.NewNoopRecorder()
	}

	if cfg.Directory.CSVURL != "" {
		a.dir = directory.New(cfg.Directory.CSVURL, cfg.Proxy)
		if err := a.dir.Refresh(ctx); err != nil {
			log.Printf("[WARN] initial directory refresh: %v", err)
		}
		_, err := a.cron.AddFunc(cfg.Directory.RefreshCron, func() {
			refreshCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := a.dir.Refresh(refreshCtx); err != nil {
				log.Printf("[WARN] directory refresh: %v", err)
			}
		})
		if err != nil {
			return nil, fmt.Errorf("schedule directory refresh: %w", err)
		}
	} else {
		log.Println("[WARN] no directory csv_url configured, remote actions will not be mirrored")
	}

	if cfg.AdsConfigured() {
		a.api = ads.NewClient(cfg.Ads.BaseURL, ads.Endpoints{
			UserInfo:     cfg.Ads.UserInfoURL,
			Balance:      cfg.Ads.BalanceURL,
			CampaignList: cfg.Ads.CampaignListURL,
			SetBudget:    cfg.Ads.SetBudgetURL,
			Pause:        cfg.Ads.PauseURL,
			Resume:       cfg.Ads.ResumeURL,
		}, cfg.Proxy)
		log.Println("[INFO] ads platform API configured")
	} else {
		log.Println("[INFO] ads platform API not configured, running store-only")
	}

	if cfg.Ops.Addr != "" {
		a.metrics = ops.NewMetrics()
	}

	// Keep local history bounded.
	if _, err := a.cron.AddFunc("@daily", func() {
		if err := a.rec.Trim(time.Now().AddDate(0, 0, -90)); err != nil {
			log.Printf("[WARN] trim recorder: %v", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule recorder trim: %w", err)
	}

	return a, nil
}

func (a *app) close() {
	a.cron.Stop()
	if err := a.rec.Close(); err != nil {
		log.Printf("[WARN] close recorder: %v", err)
	}
}

func (a *app) newMonitor() *monitor.Monitor {
	var creds monitor.CredentialSource
	if a.dir != nil {
		creds = a.dir
	}
	return monitor.New(
		a.store, a.api, creds, a.rec, a.metrics,
		time.Duration(a.cfg.Timing.FetchIntervalSec)*time.Second,
		time.Duration(a.cfg.Timing.SnapshotIntervalSec)*time.Second,
	)
}

func runMonitor(once bool) error {
	log.Printf("[INFO] adspilot %s starting...", version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	m := a.newMonitor()
	if once {
		return m.RunCycle(ctx)
	}

	a.cron.Start()

	if a.cfg.Ops.Addr != "" {
		srv := ops.NewServer(a.cfg.Ops.Addr, a.store, a.metrics, version)
		go func() {
			if err := ops.Run(ctx, srv); err != nil {
				log.Printf("[ERROR] ops server: %v", err)
			}
		}()
	}

	m.Run(ctx)
	log.Println("[INFO] adspilot stopped")
	return nil
}
