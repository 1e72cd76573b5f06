package types

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type StatisticsTestSuite struct {
	suite.Suite
	tempDir string
}

func TestStatisticsSuite(t *testing.T) {
	suite.Run(t, new(StatisticsTestSuite))
}

func (suite *StatisticsTestSuite) SetupTest() {
	tempDir, err := os.MkdirTemp("", "statistics_test")
	suite.NoError(err)
	suite.tempDir = tempDir
}

func (suite *StatisticsTestSuite) TearDownTest() {
	os.RemoveAll(suite.tempDir)
}

func (suite *StatisticsTestSuite) TestProfitFactorJSON() {
	summary := Summary{
		TotalReturn:  100,
		ProfitFactor: optional.Some(1.8),
	}

	data, err := json.Marshal(summary)
	suite.NoError(err)
	suite.Contains(string(data), `"profit_factor":1.8`)
}

func (suite *StatisticsTestSuite) TestProfitFactorNullJSON() {
	summary := Summary{
		TotalReturn:  100,
		ProfitFactor: optional.None[float64](),
	}

	data, err := json.Marshal(summary)
	suite.NoError(err)
	suite.Contains(string(data), `"profit_factor":null`)
}

func (suite *StatisticsTestSuite) TestWriteSummary() {
	summary := Summary{
		TotalReturn:    150.5,
		TotalReturnPct: 1.505,
		SharpeRatio:    0.92,
		MaxDrawdown:    210.0,
		MaxDrawdownPct: 2.1,
		WinRate:        60.0,
		ProfitFactor:   optional.Some(2.0),
		TotalTrades:    10,
		WinningTrades:  6,
		LosingTrades:   4,
		AvgWin:         50.0,
		AvgLoss:        -30.0,
		LargestWin:     120.0,
		LargestLoss:    -80.0,
		ExecutionTime:  0.004,
	}

	filePath := filepath.Join(suite.tempDir, "summary.yaml")
	suite.NoError(WriteSummary(filePath, summary))

	data, err := os.ReadFile(filePath)
	suite.NoError(err)

	var decoded yamlSummary
	suite.NoError(yaml.Unmarshal(data, &decoded))
	suite.Equal(150.5, decoded.TotalReturn)
	suite.Equal(60.0, decoded.WinRate)
	suite.NotNil(decoded.ProfitFactor)
	suite.Equal(2.0, *decoded.ProfitFactor)
	suite.Equal(10, decoded.TotalTrades)
}

func (suite *StatisticsTestSuite) TestWriteSummaryNullProfitFactor() {
	summary := Summary{ProfitFactor: optional.None[float64]()}

	filePath := filepath.Join(suite.tempDir, "summary.yaml")
	suite.NoError(WriteSummary(filePath, summary))

	data, err := os.ReadFile(filePath)
	suite.NoError(err)
	suite.Contains(string(data), "profit_factor: null")
}

func (suite *StatisticsTestSuite) TestWriteSummaryBadPath() {
	err := WriteSummary(filepath.Join(suite.tempDir, "missing", "summary.yaml"), Summary{})
	suite.Error(err)
	suite.Contains(err.Error(), "failed to write summary")
}
