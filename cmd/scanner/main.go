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
	"go.minekube.com/slpwatch/internal/model"
	"go.minekube.com/slpwatch/internal/scan"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	cfg := config.DefaultScannerConfig()

	root := &cobra.Command{
		Use:           "scanner",
		Short:         "Scan a network range for Minecraft servers and record a snapshot",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := v.Unmarshal(&cfg); err != nil {
				return fmt.Errorf("parsing config: %w", err)
			}
			if err := config.ValidateScanner(&cfg); err != nil {
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

			return scan.Run(ctx, cfg)
		},
	}
	config.BindScannerFlags(root, v)
	root.AddCommand(newExportCmd())
	return root
}

// newExportCmd implements the convert_json tool supplemented from
// original_source/ (SPEC_FULL.md §10): load a snapshot and print its
// human-readable JSON form.
func newExportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <snapshot>",
		Short: "Convert a snapshot file to pretty-printed JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hosts, err := model.Load(args[0])
			if err != nil {
				return fmt.Errorf("loading snapshot: %w", err)
			}
			data, err := hosts.ExportJSON()
			if err != nil {
				return fmt.Errorf("exporting json: %w", err)
			}
			if output == "" {
				_, err = os.Stdout.Write(append(data, '\n'))
				return err
			}
			return os.WriteFile(output, data, 0o644)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}
