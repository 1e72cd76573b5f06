package types

import (
	"fmt"
	"os"

	"github.com/moznion/go-optional"
	"gopkg.in/yaml.v3"
)

// Summary is the aggregate performance report of one backtest run.
//
// Win and loss counts are taken over every trade the run produced, with an
// open position marked to market against the final close. Trades with exactly
// zero pnl count as neither, so TotalTrades is WinningTrades + LosingTrades.
type Summary struct {
	// TotalReturn is the absolute equity change in account currency.
	TotalReturn float64 `json:"total_return"`
	// TotalReturnPct is the equity change relative to initial capital.
	TotalReturnPct float64 `json:"total_return_pct"`
	// SharpeRatio is annualized from per-bar equity returns.
	SharpeRatio float64 `json:"sharpe_ratio"`
	// MaxDrawdown is the largest peak-to-trough equity drop, as a positive amount.
	MaxDrawdown float64 `json:"max_drawdown"`
	// MaxDrawdownPct is the drop relative to its peak, as a positive percentage.
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
	// WinRate is winning trades over counted trades, in percent.
	WinRate float64 `json:"win_rate"`
	// ProfitFactor is gross profit over gross loss; None when the run has no
	// losing trades, which serializes as null.
	ProfitFactor  optional.Option[float64] `json:"profit_factor"`
	TotalTrades   int                      `json:"total_trades"`
	WinningTrades int                      `json:"winning_trades"`
	LosingTrades  int                      `json:"losing_trades"`
	AvgWin        float64                  `json:"avg_win"`
	AvgLoss       float64                  `json:"avg_loss"`
	LargestWin    float64                  `json:"largest_win"`
	LargestLoss   float64                  `json:"largest_loss"`
	// ExecutionTime is the engine wall time in seconds.
	ExecutionTime float64 `json:"execution_time"`
}

// yamlSummary mirrors Summary with a pointer profit factor so an undefined
// value serializes as null in YAML output as well.
type yamlSummary struct {
	TotalReturn    float64  `yaml:"total_return"`
	TotalReturnPct float64  `yaml:"total_return_pct"`
	SharpeRatio    float64  `yaml:"sharpe_ratio"`
	MaxDrawdown    float64  `yaml:"max_drawdown"`
	MaxDrawdownPct float64  `yaml:"max_drawdown_pct"`
	WinRate        float64  `yaml:"win_rate"`
	ProfitFactor   *float64 `yaml:"profit_factor"`
	TotalTrades    int      `yaml:"total_trades"`
	WinningTrades  int      `yaml:"winning_trades"`
	LosingTrades   int      `yaml:"losing_trades"`
	AvgWin         float64  `yaml:"avg_win"`
	AvgLoss        float64  `yaml:"avg_loss"`
	LargestWin     float64  `yaml:"largest_win"`
	LargestLoss    float64  `yaml:"largest_loss"`
	ExecutionTime  float64  `yaml:"execution_time"`
}

// MarshalYAML implements yaml.Marshaler.
func (s Summary) MarshalYAML() (interface{}, error) {
	out := yamlSummary{
		TotalReturn:    s.TotalReturn,
		TotalReturnPct: s.TotalReturnPct,
		SharpeRatio:    s.SharpeRatio,
		MaxDrawdown:    s.MaxDrawdown,
		MaxDrawdownPct: s.MaxDrawdownPct,
		WinRate:        s.WinRate,
		TotalTrades:    s.TotalTrades,
		WinningTrades:  s.WinningTrades,
		LosingTrades:   s.LosingTrades,
		AvgWin:         s.AvgWin,
		AvgLoss:        s.AvgLoss,
		LargestWin:     s.LargestWin,
		LargestLoss:    s.LargestLoss,
		ExecutionTime:  s.ExecutionTime,
	}

	if s.ProfitFactor.IsSome() {
		pf := s.ProfitFactor.Unwrap()
		out.ProfitFactor = &pf
	}

	return out, nil
}

// WriteSummary writes the summary to a YAML file.
func WriteSummary(path string, summary Summary) error {
	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write summary to file: %w", err)
	}

	return nil
}
