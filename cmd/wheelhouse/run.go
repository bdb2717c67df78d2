package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/wheelhouse"
	"pkt.systems/wheelhouse/internal/appconfig"
)

func newRunCmd() *cobra.Command {
	var cfgPath string
	var headless bool
	var privateWindow bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the browser shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			if headless {
				cfg.Surface.Headless = true
			}
			if privateWindow {
				cfg.Shell.PrivateWindow = true
			}
			logger.Info("shell config loaded",
				"state_dir", cfg.StateDir,
				"downloads_dir", cfg.DownloadsDir,
				"store_network", cfg.Store.Network,
				"store_address", cfg.Store.Address,
				"private_window", cfg.Shell.PrivateWindow,
			)

			shell, err := wheelhouse.New(cfg, wheelhouse.ShellDeps{Logger: logger})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := shell.Stop(stopCtx); err != nil {
					logger.Warn("shell stop failed", "err", err)
				}
			}()
			if err := shell.Start(ctx); err != nil {
				return err
			}
			return shell.Wait()
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().BoolVar(&headless, "headless", false, "run the engine headless")
	cmd.Flags().BoolVar(&privateWindow, "private", false, "start a private window")
	return cmd
}
