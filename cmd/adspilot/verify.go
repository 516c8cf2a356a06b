package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"AdsPilot/internal/ads"
	"AdsPilot/internal/config"
	"AdsPilot/internal/directory"
)

// verifyCmd probes every directory credential against the platform's user
// info endpoint, so stale cookies are caught before they silently disable
// remote mirroring.
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify directory credentials against the ads platform",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if cfg.Directory.CSVURL == "" {
			return fmt.Errorf("directory.csv_url is not configured")
		}
		if !cfg.AdsConfigured() || cfg.Ads.UserInfoURL == "" {
			return fmt.Errorf("ads.user_info_url is required for verification")
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		dir := directory.New(cfg.Directory.CSVURL, cfg.Proxy)
		if err := dir.Refresh(ctx); err != nil {
			return err
		}

		api := ads.NewClient(cfg.Ads.BaseURL, ads.Endpoints{UserInfo: cfg.Ads.UserInfoURL}, cfg.Proxy)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CHANNEL\tSTATUS\tACCOUNT")

		failed := 0
		for _, name := range dir.Names() {
			cred, ok := dir.Credential(name)
			if !ok {
				fmt.Fprintf(w, "%s\tNO COOKIE\t-\n", name)
				failed++
				continue
			}

			callCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			account, err := api.VerifyAuth(callCtx, cred)
			cancel()
			switch {
			case errors.Is(err, ads.ErrNotConfigured):
				return fmt.Errorf("ads.user_info_url is not configured")
			case err != nil:
				fmt.Fprintf(w, "%s\tINVALID\t%v\n", name, err)
				failed++
			default:
				fmt.Fprintf(w, "%s\tOK\t%s\n", name, account)
			}

			if ctx.Err() != nil {
				break
			}
		}
		w.Flush()

		if failed > 0 {
			return fmt.Errorf("%d of %d credentials failed verification", failed, dir.Len())
		}
		fmt.Printf("all %d credentials verified\n", dir.Len())
		return nil
	},
}
