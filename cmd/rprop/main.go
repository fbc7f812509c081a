// Package main provides the rprop CLI: device inspection and a synthetic
// training run.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/born-ml/rprop/internal/backend/cpu"
	"github.com/born-ml/rprop/internal/backend/cuda"
	"github.com/born-ml/rprop/internal/backend/webgpu"
	"github.com/born-ml/rprop/internal/config"
	"github.com/born-ml/rprop/internal/device"
	"github.com/born-ml/rprop/internal/metrics"
	"github.com/born-ml/rprop/internal/train"
)

const version = "v0.1.0"

const usage = `Usage: rprop <command> [flags]

Commands:
  devices    List devices of a platform with free and total memory
  train      Run RPROP or SGD against a synthetic quadratic objective
  version    Show version
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "rprop:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errors.New("missing command")
	}

	switch args[0] {
	case "version":
		fmt.Fprintf(stdout, "rprop %s\n", version)
		return nil
	case "devices", "train":
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}

	cfg, err := parseFlags(args[0], args[1:], stderr)
	if err != nil {
		return err
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: "15:04:05"}).
		Level(cfg.Level()).With().Timestamp().Logger()

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)
	if cfg.MetricsAddr != "" {
		srv := metrics.Serve(cfg.MetricsAddr, reg, logger)
		defer srv.Close()
		logger.Info().Str("addr", cfg.MetricsAddr).Msg("serving metrics")
	}

	platform := newPlatform(cfg)
	if r, ok := platform.(interface{ Release() }); ok {
		defer r.Release()
	}
	mgr := device.NewManager(platform, device.WithLogger(logger), device.WithObserver(collector))

	if args[0] == "devices" {
		return listDevices(mgr, stdout)
	}
	return runTraining(ctx, mgr, cfg, logger, collector, stdout)
}

func parseFlags(cmd string, args []string, stderr io.Writer) (*config.Config, error) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "path to a YAML config file")
	var o config.Overrides
	fs.StringVar(&o.Platform, "platform", "", "device platform: cpu, cuda or webgpu")
	fs.IntVar(&o.Device, "device", -1, "device index")
	fs.StringVar(&o.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	if cmd == "train" {
		fs.StringVar(&o.Optimizer, "optimizer", "", "optimizer: rprop or sgd")
		fs.IntVar(&o.Steps, "steps", 0, "number of optimizer steps")
		fs.IntVar(&o.Size, "size", 0, "number of weights")
		fs.StringVar(&o.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
		fs.StringVar(&o.Checkpoint, "checkpoint", "", "resume from and save to this checkpoint file")
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return nil, err
		}
	}
	cfg.ApplyOverrides(o)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newPlatform(cfg *config.Config) device.Platform {
	switch device.KindOf(cfg.Platform) {
	case device.KindCUDA:
		return cuda.New()
	case device.KindWebGPU:
		return webgpu.NewPlatform(cfg.MemoryBytes)
	default:
		return cpu.New(cfg.MemoryBytes)
	}
}

func listDevices(mgr *device.Manager, out io.Writer) error {
	infos, err := mgr.Devices()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Fprintf(out, "no %s devices\n", mgr.Platform().Name())
		return nil
	}
	for _, info := range infos {
		fmt.Fprintf(out, "%s:%d  free %s  total %s\n",
			mgr.Platform().Name(), info.Index, formatBytes(info.Free), formatBytes(info.Total))
	}
	return nil
}

func runTraining(ctx context.Context, mgr *device.Manager, cfg *config.Config, logger zerolog.Logger,
	collector *metrics.Collector, out io.Writer) error {
	devCtx, err := mgr.SelectDevice(cfg.Device)
	if err != nil {
		return err
	}

	res, err := train.Run(ctx, devCtx, cfg, logger, collector)
	if err != nil {
		return err
	}

	free, err := mgr.FreeMemory(cfg.Device)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %d steps, loss %.6g -> %.6g, free %s\n",
		devCtx, res.Steps, res.InitialLoss, res.FinalLoss, formatBytes(free))
	return nil
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
