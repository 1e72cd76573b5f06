package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type SignalTestSuite struct {
	suite.Suite
}

func TestSignalSuite(t *testing.T) {
	suite.Run(t, new(SignalTestSuite))
}

func (suite *SignalTestSuite) TestSignalTypeConstants() {
	suite.Equal(SignalType("entry_long"), SignalTypeEntryLong)
	suite.Equal(SignalType("exit_long"), SignalTypeExitLong)
	suite.Equal(SignalType("no_action"), SignalTypeNoAction)
}

func (suite *SignalTestSuite) TestIndicatorTypeConstants() {
	suite.Equal(IndicatorType("sma"), IndicatorTypeSMA)
	suite.Equal(IndicatorType("rsi"), IndicatorTypeRSI)
}

func (suite *SignalTestSuite) TestSignalStruct() {
	now := time.Now()
	signal := Signal{
		Time:      now,
		Type:      SignalTypeEntryLong,
		Symbol:    "BTC/USDT",
		Reason:    "fast ma above slow ma",
		Indicator: IndicatorTypeSMA,
	}

	suite.Equal(now, signal.Time)
	suite.Equal(SignalTypeEntryLong, signal.Type)
	suite.Equal("BTC/USDT", signal.Symbol)
	suite.Equal(IndicatorTypeSMA, signal.Indicator)
}
