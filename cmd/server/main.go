package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/marketloop/backtestd/internal/config"
	"github.com/marketloop/backtestd/internal/engine"
	"github.com/marketloop/backtestd/internal/logger"
	"github.com/marketloop/backtestd/internal/risk"
	"github.com/marketloop/backtestd/internal/server"
	"github.com/marketloop/backtestd/internal/store"
	"github.com/marketloop/backtestd/internal/version"
)

// serveAction loads the configuration, wires the service together and blocks
// until a shutdown signal arrives.
func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Flags override file values.
	if cmd.IsSet("host") {
		cfg.Server.Host = cmd.String("host")
	}

	if cmd.IsSet("port") {
		cfg.Server.Port = int(cmd.Int("port"))
	}

	if cmd.IsSet("store") {
		cfg.Store.Path = cmd.String("store")
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	appLogger, err := logger.NewLoggerWithOptions(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer appLogger.Sync()

	runStore, err := store.NewDuckDBStore(cfg.Store.Path, cfg.Store.HistoryLimit, appLogger)
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}
	defer runStore.Close()

	eng := engine.NewEngine(appLogger, cfg.Engine.MaxCandles, int32(cfg.Engine.DecimalPlaces))
	assessor := risk.NewAssessor(risk.Limits{
		MaxDrawdownPct:       cfg.Risk.MaxDrawdownPct,
		MaxConsecutiveLosses: cfg.Risk.MaxConsecutiveLosses,
	})

	srv := server.New(server.Config{
		Host:              cfg.Server.Host,
		Port:              cfg.Server.Port,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ShutdownTimeout:   cfg.Server.ShutdownTimeout,
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		StreamInterval:    cfg.Risk.StreamInterval,
	}, appLogger, eng, runStore, assessor)

	if err := srv.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	appLogger.Info("backtestd started",
		zap.String("address", srv.Address()),
		zap.String("version", version.Version),
	)

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-sigCtx.Done()

	appLogger.Info("shutting down")

	return srv.Stop()
}

func main() {
	cmd := &cli.Command{
		Name:  "backtestd",
		Usage: "Run the backtesting microservice",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   fmt.Sprintf("Path to the YAML config file (falls back to $%s)", config.EnvConfigPath),
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host, overrides the config file",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port, overrides the config file",
			},
			&cli.StringFlag{
				Name:  "store",
				Usage: "DuckDB path for run history, overrides the config file",
			},
		},
		Action: serveAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
