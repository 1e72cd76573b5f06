// Package risk evaluates stored backtest runs against configured drawdown
// and losing-streak limits. An assessment is a point-in-time snapshot; the
// server recomputes it per request or per stream tick.
package risk

import (
	"fmt"
	"time"

	"github.com/marketloop/backtestd/internal/types"
)

// Level classifies an assessment against the configured limits.
type Level string

const (
	LevelNormal   Level = "normal"
	LevelElevated Level = "elevated"
	LevelCritical Level = "critical"
)

// elevatedFraction is the share of a limit at which a metric turns elevated.
const elevatedFraction = 0.75

// Limits are the configured risk thresholds. A zero value disables the
// corresponding check.
type Limits struct {
	MaxDrawdownPct       float64
	MaxConsecutiveLosses int
}

// Breach names a limit the current metrics have reached.
type Breach struct {
	Limit   string `json:"limit"`
	Message string `json:"message"`
}

// Assessment is the risk picture of one stored run.
type Assessment struct {
	PortfolioID        string    `json:"portfolio_id"`
	GeneratedAt        time.Time `json:"generated_at"`
	Equity             float64   `json:"equity"`
	PeakEquity         float64   `json:"peak_equity"`
	CurrentDrawdownPct float64   `json:"current_drawdown_pct"`
	MaxDrawdownPct     float64   `json:"max_drawdown_pct"`
	ConsecutiveLosses  int       `json:"consecutive_losses"`
	ExposurePct        float64   `json:"exposure_pct"`
	OpenPosition       bool      `json:"open_position"`
	Level              Level     `json:"level"`
	Breaches           []Breach  `json:"breaches"`
}

// Assessor computes assessments with a fixed set of limits.
type Assessor struct {
	limits Limits
}

// NewAssessor creates an Assessor enforcing the given limits.
func NewAssessor(limits Limits) *Assessor {
	return &Assessor{limits: limits}
}

// Assess derives the current risk metrics from a stored run. The level is
// driven by the current drawdown and the tail loss streak: critical once a
// metric is at or above its limit, elevated at 75% of it. The historical
// max drawdown is reported but does not trigger by itself.
func (a *Assessor) Assess(run *types.BacktestRun) Assessment {
	peak := run.InitialCapital
	maxDrawdownPct := 0.0
	current := run.FinalEquity
	for _, point := range run.Equity {
		if point.Value > peak {
			peak = point.Value
		}
		if peak > 0 {
			drawdown := (peak - point.Value) / peak * 100
			if drawdown > maxDrawdownPct {
				maxDrawdownPct = drawdown
			}
		}
		current = point.Value
	}

	currentDrawdownPct := 0.0
	if peak > 0 && current < peak {
		currentDrawdownPct = (peak - current) / peak * 100
	}

	losses := tailLossStreak(run.Trades)
	level, breaches := a.classify(currentDrawdownPct, losses)

	return Assessment{
		PortfolioID:        run.ID,
		GeneratedAt:        time.Now().UTC(),
		Equity:             current,
		PeakEquity:         peak,
		CurrentDrawdownPct: currentDrawdownPct,
		MaxDrawdownPct:     maxDrawdownPct,
		ConsecutiveLosses:  losses,
		ExposurePct:        exposurePct(run.Trades, run.Equity),
		OpenPosition:       openPosition(run.Trades),
		Level:              level,
		Breaches:           breaches,
	}
}

func (a *Assessor) classify(currentDrawdownPct float64, consecutiveLosses int) (Level, []Breach) {
	breaches := []Breach{}
	elevated := false

	if a.limits.MaxDrawdownPct > 0 {
		switch {
		case currentDrawdownPct >= a.limits.MaxDrawdownPct:
			breaches = append(breaches, Breach{
				Limit: "max_drawdown_pct",
				Message: fmt.Sprintf("current drawdown %.2f%% is at or above the %.2f%% limit",
					currentDrawdownPct, a.limits.MaxDrawdownPct),
			})
		case currentDrawdownPct >= a.limits.MaxDrawdownPct*elevatedFraction:
			elevated = true
		}
	}

	if a.limits.MaxConsecutiveLosses > 0 {
		limit := float64(a.limits.MaxConsecutiveLosses)
		switch {
		case float64(consecutiveLosses) >= limit:
			breaches = append(breaches, Breach{
				Limit: "max_consecutive_losses",
				Message: fmt.Sprintf("%d consecutive losing trades is at or above the limit of %d",
					consecutiveLosses, a.limits.MaxConsecutiveLosses),
			})
		case float64(consecutiveLosses) >= limit*elevatedFraction:
			elevated = true
		}
	}

	switch {
	case len(breaches) > 0:
		return LevelCritical, breaches
	case elevated:
		return LevelElevated, breaches
	default:
		return LevelNormal, breaches
	}
}

// tailLossStreak counts the losing closed trades at the end of the trade
// list. An open trade does not resolve the streak either way, so it is
// skipped rather than breaking it.
func tailLossStreak(trades []types.Trade) int {
	streak := 0
	for i := len(trades) - 1; i >= 0; i-- {
		trade := trades[i]
		if trade.Status == types.TradeStatusOpen {
			continue
		}
		if trade.PnL < 0 {
			streak++
			continue
		}
		break
	}
	return streak
}

// exposurePct is the share of bars during which a position was held, in
// percent. A bar counts when its timestamp falls inside any trade's
// entry/exit window; open trades extend to the end of the curve.
func exposurePct(trades []types.Trade, equity []types.EquityPoint) float64 {
	if len(equity) == 0 || len(trades) == 0 {
		return 0
	}
	held := 0
	for _, point := range equity {
		if heldAt(trades, point.Timestamp) {
			held++
		}
	}
	return float64(held) / float64(len(equity)) * 100
}

func heldAt(trades []types.Trade, at time.Time) bool {
	for _, trade := range trades {
		if trade.EntryTime.After(at) {
			continue
		}
		if trade.ExitTime.IsNone() || !trade.ExitTime.Unwrap().Before(at) {
			return true
		}
	}
	return false
}

func openPosition(trades []types.Trade) bool {
	if len(trades) == 0 {
		return false
	}
	return trades[len(trades)-1].Status == types.TradeStatusOpen
}
