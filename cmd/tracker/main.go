package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"go.minekube.com/slpwatch/internal/config"
	"go.minekube.com/slpwatch/internal/logging"
	"go.minekube.com/slpwatch/internal/track"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	cfg := config.DefaultTrackerConfig()

	root := &cobra.Command{
		Use:           "tracker",
		Short:         "Continuously re-poll known servers and render a live dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := v.Unmarshal(&cfg); err != nil {
				return fmt.Errorf("parsing config: %w", err)
			}
			if err := config.ValidateTracker(&cfg); err != nil {
				return err
			}
			if err := logging.Init(cfg.Debug); err != nil {
				return err
			}
			defer zap.L().Sync()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
			go func() {
				<-sig
				zap.S().Info("received shutdown signal")
				cancel()
			}()

			return track.Run(ctx, cfg)
		},
	}
	config.BindTrackerFlags(root, v)
	return root
}
