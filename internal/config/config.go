// Package config provides the viper-backed configuration for both the
// scanner and tracker CLIs, following cmd/gate/gate.go's
// viper.Unmarshal + Validate pattern.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ScannerConfig is the scanner CLI's configuration (spec.md §6).
type ScannerConfig struct {
	Debug           bool     `mapstructure:"debug"`
	Target          string   `mapstructure:"target"`
	Ports           []string `mapstructure:"ports"`
	Runners         int      `mapstructure:"runners"`
	TimeoutSeconds  int      `mapstructure:"timeout"`
	Output          string   `mapstructure:"output"`
	RandomizePorts  bool     `mapstructure:"randomize-ports"`
	RandomizeHosts  bool     `mapstructure:"randomize-hosts"`
	PingScan        bool     `mapstructure:"ping-scan"`
	PingScanRunners int      `mapstructure:"ping-scan-runners"`
	Nmap            bool     `mapstructure:"nmap"`
	NmapPath        string   `mapstructure:"nmap-path"`
}

// TrackerConfig is the tracker CLI's configuration (spec.md §6).
type TrackerConfig struct {
	Debug     bool   `mapstructure:"debug"`
	StateFile string `mapstructure:"state-file"`
	Runners   int    `mapstructure:"runners"`
}

// DefaultScannerConfig matches spec.md §6's documented defaults.
func DefaultScannerConfig() ScannerConfig {
	return ScannerConfig{
		Ports:           []string{"25565"},
		Runners:         32,
		TimeoutSeconds:  5,
		Output:          "scan_results.pickle",
		PingScanRunners: 16,
		NmapPath:        "nmap",
	}
}

// DefaultTrackerConfig matches spec.md §6's documented defaults.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		StateFile: "save_state.pickle",
		Runners:   16,
	}
}

// BindScannerFlags registers the scanner CLI's flags and binds them
// into v, following gate's cobra+viper wiring style.
func BindScannerFlags(cmd *cobra.Command, v *viper.Viper) {
	d := DefaultScannerConfig()
	flags := cmd.Flags()
	flags.StringP("target", "t", "", "CIDR, single IP, or DNS name to scan (required)")
	flags.StringSliceP("ports", "p", d.Ports, "port or port range specs, e.g. 25565 or 25560-25570")
	flags.IntP("runners", "r", d.Runners, "number of concurrent worker goroutines")
	flags.IntP("timeout", "T", d.TimeoutSeconds, "per-query timeout in seconds")
	flags.StringP("output", "o", d.Output, "path to write the final snapshot to")
	flags.Bool("randomize-ports", false, "randomize port iteration order")
	flags.Bool("randomize-hosts", false, "randomize host iteration order")
	flags.Bool("ping-scan", false, "pre-filter targets with an ICMP ping sweep")
	flags.Int("ping-scan-runners", d.PingScanRunners, "concurrent ping-scan workers")
	flags.Bool("nmap", false, "delegate port discovery to nmap")
	flags.String("nmap-path", d.NmapPath, "path to the nmap binary")
	flags.Bool("debug", false, "enable development-mode logging")

	bindAll(v, flags)
}

// BindTrackerFlags registers the tracker CLI's flags and binds them
// into v.
func BindTrackerFlags(cmd *cobra.Command, v *viper.Viper) {
	d := DefaultTrackerConfig()
	flags := cmd.Flags()
	flags.StringP("state-file", "s", d.StateFile, "path to the snapshot file to load and checkpoint to")
	flags.IntP("runners", "r", d.Runners, "number of concurrent worker goroutines")
	flags.Bool("debug", false, "enable development-mode logging")

	bindAll(v, flags)
}

// envPrefix matches SLPWATCH_<FLAG> environment overrides to viper
// keys, mirroring gate's own viper.AutomaticEnv wiring.
const envPrefix = "SLPWATCH"

func bindAll(v *viper.Viper, flags *pflag.FlagSet) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	flags.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
	})
}

// ValidateScanner enforces spec.md §6's scanner argument constraints.
func ValidateScanner(c *ScannerConfig) error {
	if strings.TrimSpace(c.Target) == "" {
		return fmt.Errorf("config: --target is required")
	}
	if len(c.Ports) == 0 {
		return fmt.Errorf("config: at least one --ports spec is required")
	}
	if c.Runners <= 0 {
		return fmt.Errorf("config: --runners must be positive")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("config: --timeout must be positive")
	}
	if c.Nmap && strings.TrimSpace(c.NmapPath) == "" {
		return fmt.Errorf("config: --nmap-path is required when --nmap is set")
	}
	return nil
}

// ValidateTracker enforces the tracker's argument constraints.
func ValidateTracker(c *TrackerConfig) error {
	if strings.TrimSpace(c.StateFile) == "" {
		return fmt.Errorf("config: --state-file is required")
	}
	if c.Runners <= 0 {
		return fmt.Errorf("config: --runners must be positive")
	}
	return nil
}
