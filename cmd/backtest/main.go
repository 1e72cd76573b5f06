package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/marketloop/backtestd/internal/api"
	"github.com/marketloop/backtestd/internal/engine"
	"github.com/marketloop/backtestd/internal/logger"
	"github.com/marketloop/backtestd/internal/strategy"
	"github.com/marketloop/backtestd/internal/types"
	"github.com/marketloop/backtestd/pkg/marketdata"
)

// loadInputFile reads candles from a JSON file holding either a bare candle
// array or a full backtest request object. Request objects carry their own
// symbol, timeframe and strategy parameters; flags still override them.
func loadInputFile(path string) (*api.BacktestRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	var candles types.CandleSeries
	if err := json.Unmarshal(data, &candles); err == nil {
		return &api.BacktestRequest{
			Candles:        candles,
			StrategyParams: strategy.DefaultParams(),
			Symbol:         api.DefaultSymbol,
			Timeframe:      types.Timeframe15m,
		}, nil
	}

	var req api.BacktestRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("input is neither a candle array nor a backtest request: %w", err)
	}

	return &req, nil
}

// loadFromDB reads a stored range out of a market data DuckDB file.
func loadFromDB(ctx context.Context, path, symbol string, timeframe types.Timeframe, from, to time.Time) (types.CandleSeries, error) {
	db, err := marketdata.NewDuckDB(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	candles, err := db.ReadCandles(ctx, symbol, timeframe, from, to)
	if err != nil {
		return nil, err
	}

	if len(candles) == 0 {
		return nil, fmt.Errorf("no candles stored for %s %s in %s", symbol, timeframe, path)
	}

	return candles, nil
}

// overrideParams applies explicitly set strategy flags over the base
// parameter set.
func overrideParams(cmd *cli.Command, params strategy.Params) strategy.Params {
	if cmd.IsSet("strategy") {
		params.StrategyType = cmd.String("strategy")
	}

	if cmd.IsSet("fast-window") {
		params.FastWindow = int(cmd.Int("fast-window"))
	}

	if cmd.IsSet("slow-window") {
		params.SlowWindow = int(cmd.Int("slow-window"))
	}

	if cmd.IsSet("rsi-window") {
		params.RSIWindow = int(cmd.Int("rsi-window"))
	}

	if cmd.IsSet("rsi-oversold") {
		params.RSIOversold = cmd.Float("rsi-oversold")
	}

	if cmd.IsSet("rsi-overbought") {
		params.RSIOverbought = cmd.Float("rsi-overbought")
	}

	if cmd.IsSet("stop-loss") {
		params.StopLossPct = cmd.Float("stop-loss")
	}

	if cmd.IsSet("take-profit") {
		params.TakeProfitPct = cmd.Float("take-profit")
	}

	if cmd.IsSet("capital") {
		params.InitialCapital = cmd.Float("capital")
	}

	if cmd.IsSet("commission") {
		params.CommissionPct = cmd.Float("commission")
	}

	return params
}

// backtestAction runs one offline backtest and writes the summary as YAML to
// --output or stdout.
func backtestAction(ctx context.Context, cmd *cli.Command) error {
	inputPath := cmd.String("input")
	dbPath := cmd.String("db")

	if (inputPath == "") == (dbPath == "") {
		return fmt.Errorf("exactly one of --input or --db is required")
	}

	var req *api.BacktestRequest

	if inputPath != "" {
		loaded, err := loadInputFile(inputPath)
		if err != nil {
			return err
		}

		req = loaded
	} else {
		symbol := cmd.String("symbol")
		timeframe := types.Timeframe(cmd.String("timeframe"))

		candles, err := loadFromDB(ctx, dbPath, symbol, timeframe, cmd.Timestamp("from"), cmd.Timestamp("to"))
		if err != nil {
			return err
		}

		req = &api.BacktestRequest{
			Candles:        candles,
			StrategyParams: strategy.DefaultParams(),
			Symbol:         symbol,
			Timeframe:      timeframe,
		}
	}

	if cmd.IsSet("symbol") {
		req.Symbol = cmd.String("symbol")
	}

	if cmd.IsSet("timeframe") {
		req.Timeframe = types.Timeframe(cmd.String("timeframe"))
	}

	params := overrideParams(cmd, req.StrategyParams)

	appLogger, err := logger.NewLoggerWithOptions("warn", "console")
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer appLogger.Sync()

	// YAML goes to stdout, so the bar renders on stderr.
	bar := progressbar.NewOptions(len(req.Candles),
		progressbar.OptionSetDescription(fmt.Sprintf("simulating %s", req.Symbol)),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
	)

	result, err := engine.NewEngine(appLogger, 0, 0).Run(ctx, engine.RunInput{
		Symbol:    req.Symbol,
		Timeframe: req.Timeframe,
		Candles:   req.Candles,
		Params:    params,
		OnBar: func(current, _ int) {
			_ = bar.Set(current)
		},
	})
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)

	if outputPath := cmd.String("output"); outputPath != "" {
		if err := types.WriteSummary(outputPath, result.Summary); err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "Summary written to %s\n", outputPath)

		return nil
	}

	data, err := yaml.Marshal(result.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	fmt.Print(string(data))

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Run a backtest offline against a candle file or market data database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "JSON file with a candle array or a full backtest request",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "DuckDB market data file to read candles from",
			},
			&cli.StringFlag{
				Name:  "symbol",
				Usage: "Symbol to load from --db",
				Value: api.DefaultSymbol,
			},
			&cli.StringFlag{
				Name:  "timeframe",
				Usage: "Bar interval of the series (1m, 5m, 15m, 30m, 1h, 4h, 1d, 1w)",
				Value: string(types.Timeframe15m),
			},
			&cli.TimestampFlag{
				Name:  "from",
				Usage: "Range start in `YYYY-MM-DD` format, only with --db",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.TimestampFlag{
				Name:  "to",
				Usage: "Range end in `YYYY-MM-DD` format, only with --db",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.StringFlag{
				Name:  "strategy",
				Usage: fmt.Sprintf("Strategy type (%s, %s)", strategy.StrategyTypeMACrossover, strategy.StrategyTypeRSI),
			},
			&cli.IntFlag{Name: "fast-window", Usage: "Fast moving-average window in bars"},
			&cli.IntFlag{Name: "slow-window", Usage: "Slow moving-average window in bars"},
			&cli.IntFlag{Name: "rsi-window", Usage: "RSI lookback in bars"},
			&cli.FloatFlag{Name: "rsi-oversold", Usage: "RSI long entry threshold"},
			&cli.FloatFlag{Name: "rsi-overbought", Usage: "RSI long exit threshold"},
			&cli.FloatFlag{Name: "stop-loss", Usage: "Stop distance as a fraction of the entry price"},
			&cli.FloatFlag{Name: "take-profit", Usage: "Target distance as a fraction of the entry price"},
			&cli.FloatFlag{Name: "capital", Usage: "Starting capital in quote currency"},
			&cli.FloatFlag{Name: "commission", Usage: "Fee fraction charged on each fill"},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the YAML summary to this file instead of stdout",
			},
		},
		Action: backtestAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
