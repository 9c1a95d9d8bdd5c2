package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderv1 "github.com/xikronz/XKRexhange/internal/domain/order/v1"
	pricev1 "github.com/xikronz/XKRexhange/internal/domain/price/v1"
	"github.com/xikronz/XKRexhange/internal/usecase/router"
	"github.com/xikronz/XKRexhange/internal/usecase/wallet"
	"github.com/xikronz/XKRexhange/pkg/logger"
)

func testEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	if opts.Log == nil {
		log, err := logger.NewLogger(logger.WithLoggingLevel(logger.ErrorLevel))
		require.NoError(t, err)
		opts.Log = log
	}
	e, err := New(opts)
	require.NoError(t, err)
	return e
}

// Test 1: listing creates the asset and its book as one routable unit
func TestEngine_List(t *testing.T) {
	e := testEngine(t, Options{})

	asset, book, err := e.List("Tesla Inc", "tsla", decimal.RequireFromString("0.01"))
	require.NoError(t, err)
	assert.Equal(t, "TSLA", asset.Ticker())
	assert.Same(t, asset, book.Asset())

	resolved, err := e.Book("TSLA")
	require.NoError(t, err)
	assert.Same(t, book, resolved)

	_, _, err = e.List("Tesla Again", "TSLA", decimal.RequireFromString("0.01"))
	assert.ErrorIs(t, err, router.ErrDuplicateAsset)
}

// Test 2: orders submitted through the engine match end to end and settle
func TestEngine_SubmitAndSettle(t *testing.T) {
	log, err := logger.NewLogger(logger.WithLoggingLevel(logger.ErrorLevel))
	require.NoError(t, err)
	w := wallet.New(log)
	e := testEngine(t, Options{Settler: w, Log: log})

	asset, book, err := e.List("Tesla Inc", "TSLA", decimal.RequireFromString("0.01"))
	require.NoError(t, err)

	e.Start()
	defer e.Stop()

	sell, err := orderv1.NewLimit(e.Allocator(), 1, orderv1.SideSell, 100, asset, pricev1.MustParse("100.00"))
	require.NoError(t, err)
	require.NoError(t, e.Submit("TSLA", sell))

	buy, err := orderv1.NewMarket(e.Allocator(), 2, orderv1.SideBuy, 40, asset)
	require.NoError(t, err)
	require.NoError(t, e.Submit("TSLA", buy))

	// settlement runs after the trade is recorded, so wait on the wallet
	require.Eventually(t, func() bool {
		return w.Holdings(2, asset.ID()) == 40
	}, 5*time.Second, 10*time.Millisecond)

	require.Len(t, book.TradeHistory(), 1)
	assert.True(t, w.CashBalance(1).Equal(decimal.RequireFromString("4000")))

	err = e.Submit("AAPL", buy)
	assert.ErrorIs(t, err, router.ErrUnknownAsset)
}

// Test 3: assets listed while running start matching immediately
func TestEngine_ListWhileRunning(t *testing.T) {
	e := testEngine(t, Options{})
	e.Start()
	defer e.Stop()

	asset, book, err := e.List("Apple Inc", "AAPL", decimal.RequireFromString("0.01"))
	require.NoError(t, err)
	require.True(t, book.IsRunning())

	o, err := orderv1.NewLimit(e.Allocator(), 1, orderv1.SideBuy, 10, asset, pricev1.MustParse("150.00"))
	require.NoError(t, err)
	require.NoError(t, e.Submit("AAPL", o))

	require.Eventually(t, func() bool {
		return book.BidCount() == 1
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, []string{"AAPL"}, e.Tickers())
}

// Test 4: start and stop are idempotent
func TestEngine_LifecycleIdempotent(t *testing.T) {
	e := testEngine(t, Options{})
	_, book, err := e.List("Tesla Inc", "TSLA", decimal.RequireFromString("0.01"))
	require.NoError(t, err)

	e.Start()
	e.Start()
	assert.True(t, book.IsRunning())

	e.Stop()
	e.Stop()
	assert.False(t, book.IsRunning())
}
