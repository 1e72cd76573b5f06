package marketdata

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/marketloop/backtestd/internal/types"
)

type DuckDBTestSuite struct {
	suite.Suite
	db *DuckDB
}

func TestDuckDBSuite(t *testing.T) {
	suite.Run(t, new(DuckDBTestSuite))
}

func (suite *DuckDBTestSuite) SetupTest() {
	db, err := NewDuckDB(":memory:")
	suite.Require().NoError(err)
	suite.db = db
}

func (suite *DuckDBTestSuite) TearDownTest() {
	suite.Require().NoError(suite.db.Close())
}

var storeBase = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func storedCandle(bar int, closePrice float64) types.Candle {
	ts := storeBase.Add(time.Duration(bar) * 15 * time.Minute)

	return types.Candle{
		Timestamp: ts,
		Open:      closePrice - 1,
		High:      closePrice + 1,
		Low:       closePrice - 2,
		Close:     closePrice,
		Volume:    10,
	}
}

func (suite *DuckDBTestSuite) TestWriteAndReadRoundTrip() {
	ctx := context.Background()
	in := types.CandleSeries{storedCandle(0, 100), storedCandle(1, 101), storedCandle(2, 102)}

	suite.Require().NoError(suite.db.WriteCandles(ctx, "BTCUSDT", types.Timeframe15m, in))

	out, err := suite.db.ReadCandles(ctx, "BTCUSDT", types.Timeframe15m, time.Time{}, time.Time{})
	suite.Require().NoError(err)
	suite.Require().Len(out, 3)

	for i, c := range out {
		suite.Equal(in[i].Timestamp.UnixMilli(), c.Timestamp.UnixMilli())
		suite.Equal(in[i].Open, c.Open)
		suite.Equal(in[i].High, c.High)
		suite.Equal(in[i].Low, c.Low)
		suite.Equal(in[i].Close, c.Close)
		suite.Equal(in[i].Volume, c.Volume)
	}
}

func (suite *DuckDBTestSuite) TestWriteReplacesExistingBar() {
	ctx := context.Background()

	suite.Require().NoError(suite.db.WriteCandles(ctx, "BTCUSDT", types.Timeframe15m, types.CandleSeries{storedCandle(0, 100)}))
	suite.Require().NoError(suite.db.WriteCandles(ctx, "BTCUSDT", types.Timeframe15m, types.CandleSeries{storedCandle(0, 105)}))

	out, err := suite.db.ReadCandles(ctx, "BTCUSDT", types.Timeframe15m, time.Time{}, time.Time{})
	suite.Require().NoError(err)
	suite.Require().Len(out, 1)
	suite.Equal(105.0, out[0].Close)
}

func (suite *DuckDBTestSuite) TestReadRangeBounds() {
	ctx := context.Background()
	in := types.CandleSeries{
		storedCandle(0, 100), storedCandle(1, 101), storedCandle(2, 102),
		storedCandle(3, 103), storedCandle(4, 104),
	}

	suite.Require().NoError(suite.db.WriteCandles(ctx, "BTCUSDT", types.Timeframe15m, in))

	mid, err := suite.db.ReadCandles(ctx, "BTCUSDT", types.Timeframe15m, in[1].Timestamp, in[3].Timestamp)
	suite.Require().NoError(err)
	suite.Require().Len(mid, 3)
	suite.Equal(101.0, mid[0].Close)
	suite.Equal(103.0, mid[2].Close)

	tail, err := suite.db.ReadCandles(ctx, "BTCUSDT", types.Timeframe15m, in[3].Timestamp, time.Time{})
	suite.Require().NoError(err)
	suite.Require().Len(tail, 2)

	head, err := suite.db.ReadCandles(ctx, "BTCUSDT", types.Timeframe15m, time.Time{}, in[1].Timestamp)
	suite.Require().NoError(err)
	suite.Require().Len(head, 2)
	suite.Equal(100.0, head[0].Close)
}

func (suite *DuckDBTestSuite) TestTimeframesIsolated() {
	ctx := context.Background()

	suite.Require().NoError(suite.db.WriteCandles(ctx, "BTCUSDT", types.Timeframe15m, types.CandleSeries{storedCandle(0, 100)}))
	suite.Require().NoError(suite.db.WriteCandles(ctx, "BTCUSDT", types.Timeframe1h, types.CandleSeries{storedCandle(0, 200)}))

	out, err := suite.db.ReadCandles(ctx, "BTCUSDT", types.Timeframe15m, time.Time{}, time.Time{})
	suite.Require().NoError(err)
	suite.Require().Len(out, 1)
	suite.Equal(100.0, out[0].Close)
}

func (suite *DuckDBTestSuite) TestSymbolsIsolated() {
	ctx := context.Background()

	suite.Require().NoError(suite.db.WriteCandles(ctx, "BTCUSDT", types.Timeframe15m, types.CandleSeries{storedCandle(0, 100)}))
	suite.Require().NoError(suite.db.WriteCandles(ctx, "ETHUSDT", types.Timeframe15m, types.CandleSeries{storedCandle(0, 200)}))

	out, err := suite.db.ReadCandles(ctx, "ETHUSDT", types.Timeframe15m, time.Time{}, time.Time{})
	suite.Require().NoError(err)
	suite.Require().Len(out, 1)
	suite.Equal(200.0, out[0].Close)
}

func (suite *DuckDBTestSuite) TestReadEmptyReturnsEmptySeries() {
	out, err := suite.db.ReadCandles(context.Background(), "BTCUSDT", types.Timeframe15m, time.Time{}, time.Time{})
	suite.Require().NoError(err)
	suite.NotNil(out)
	suite.Empty(out)
}

func (suite *DuckDBTestSuite) TestWriteEmptyBatchIsNoop() {
	ctx := context.Background()

	suite.Require().NoError(suite.db.WriteCandles(ctx, "BTCUSDT", types.Timeframe15m, types.CandleSeries{}))

	out, err := suite.db.ReadCandles(ctx, "BTCUSDT", types.Timeframe15m, time.Time{}, time.Time{})
	suite.Require().NoError(err)
	suite.Empty(out)
}

func (suite *DuckDBTestSuite) TestWriteUnsortedReadsSorted() {
	ctx := context.Background()
	in := types.CandleSeries{storedCandle(2, 102), storedCandle(0, 100), storedCandle(1, 101)}

	suite.Require().NoError(suite.db.WriteCandles(ctx, "BTCUSDT", types.Timeframe15m, in))

	out, err := suite.db.ReadCandles(ctx, "BTCUSDT", types.Timeframe15m, time.Time{}, time.Time{})
	suite.Require().NoError(err)
	suite.Require().Len(out, 3)
	suite.Equal(100.0, out[0].Close)
	suite.Equal(101.0, out[1].Close)
	suite.Equal(102.0, out[2].Close)
}

func (suite *DuckDBTestSuite) TestExportParquet() {
	ctx := context.Background()
	in := types.CandleSeries{storedCandle(0, 100), storedCandle(1, 101)}

	suite.Require().NoError(suite.db.WriteCandles(ctx, "BTCUSDT", types.Timeframe15m, in))

	path := filepath.Join(suite.T().TempDir(), "btcusdt_15m.parquet")
	suite.Require().NoError(suite.db.ExportParquet(ctx, "BTCUSDT", types.Timeframe15m, path))
	suite.FileExists(path)
}
