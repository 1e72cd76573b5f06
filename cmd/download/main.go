package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/marketloop/backtestd/internal/types"
	"github.com/marketloop/backtestd/pkg/marketdata"
)

// downloadAction fetches the requested range from the chosen provider and
// streams it into a DuckDB file the offline backtest runner can read.
func downloadAction(ctx context.Context, cmd *cli.Command) error {
	symbol := cmd.String("symbol")
	timeframe := types.Timeframe(cmd.String("timeframe"))
	start := cmd.Timestamp("from")
	end := cmd.Timestamp("to")
	providerType := marketdata.ProviderType(cmd.String("provider"))
	dbPath := cmd.String("db")

	if _, err := timeframe.Duration(); err != nil {
		return fmt.Errorf("invalid timeframe: %w", err)
	}

	provider, err := marketdata.New(providerType, os.Getenv("POLYGON_API_KEY"))
	if err != nil {
		return fmt.Errorf("failed to create market data provider: %w", err)
	}

	db, err := marketdata.NewDuckDB(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open market data database: %w", err)
	}
	defer db.Close()

	bar := progressbar.NewOptions(int(end.Sub(start).Milliseconds()),
		progressbar.OptionSetDescription(fmt.Sprintf("downloading %s %s from %s", symbol, timeframe, provider.Name())),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)

	written, err := provider.Download(ctx, symbol, timeframe, start, end, db, func(current, _ float64, _ string) {
		_ = bar.Set(int(current))
	})
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)

	log.Printf("Stored %d %s %s candles in %s", written, symbol, timeframe, dbPath)

	if parquetPath := cmd.String("parquet"); parquetPath != "" {
		if err := db.ExportParquet(ctx, symbol, timeframe, parquetPath); err != nil {
			return fmt.Errorf("parquet export failed: %w", err)
		}

		log.Printf("Exported %s to %s", symbol, parquetPath)
	}

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "download",
		Usage: "Download historical candles into a local market data database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "symbol",
				Aliases:  []string{"s"},
				Usage:    "Instrument symbol in the provider's notation (BTCUSDT, AAPL)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "timeframe",
				Aliases: []string{"t"},
				Usage:   "Bar interval (1m, 5m, 15m, 30m, 1h, 4h, 1d, 1w)",
				Value:   string(types.Timeframe15m),
			},
			&cli.TimestampFlag{
				Name:     "from",
				Usage:    "Range start in `YYYY-MM-DD` format (or other RFC3339 compatible)",
				Required: true,
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.TimestampFlag{
				Name:  "to",
				Usage: "Range end in `YYYY-MM-DD` format. Defaults to today.",
				Value: time.Now(),
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("Data provider (%s, %s); polygon reads POLYGON_API_KEY", marketdata.ProviderBinance, marketdata.ProviderPolygon),
				Value:   string(marketdata.ProviderBinance),
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "DuckDB output path",
				Value:   "market_data.duckdb",
			},
			&cli.StringFlag{
				Name:  "parquet",
				Usage: "Also export the downloaded symbol to this Parquet file",
			},
		},
		Action: downloadAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
