package tradev1

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	assetv1 "github.com/xikronz/XKRexhange/internal/domain/asset/v1"
	identityv1 "github.com/xikronz/XKRexhange/internal/domain/identity/v1"
	orderv1 "github.com/xikronz/XKRexhange/internal/domain/order/v1"
	pricev1 "github.com/xikronz/XKRexhange/internal/domain/price/v1"
)

// Test 1: trade fields derive from the matched pair
func TestNew_Derivation(t *testing.T) {
	ids := identityv1.NewAllocator()
	asset, err := assetv1.New(ids, "Tesla Inc", "TSLA", decimal.RequireFromString("0.01"))
	require.NoError(t, err)

	price := pricev1.MustParse("100.00")
	buy, err := orderv1.NewLimit(ids, 1001, orderv1.SideBuy, 50, asset, price)
	require.NoError(t, err)
	sell, err := orderv1.NewLimit(ids, 1002, orderv1.SideSell, 50, asset, price)
	require.NoError(t, err)

	trade := New(ids.Next(identityv1.KindTrade), buy, sell, price, 50)

	assert.Equal(t, buy.ID(), trade.BuyOrderID())
	assert.Equal(t, sell.ID(), trade.SellOrderID())
	assert.Equal(t, int64(1001), trade.BuyerID())
	assert.Equal(t, int64(1002), trade.SellerID())
	assert.Equal(t, asset.ID(), trade.AssetID())
	assert.Equal(t, "TSLA", trade.Ticker())
	assert.Equal(t, int64(50), trade.Quantity())
	assert.True(t, trade.Price().Equal(price))
	assert.False(t, trade.WasMarketOrder())
	assert.False(t, trade.ExecutedAt().IsZero())
}

// Test 2: total value is exact decimal price x quantity
func TestNew_TotalValue(t *testing.T) {
	ids := identityv1.NewAllocator()
	asset, err := assetv1.New(ids, "Tesla Inc", "TSLA", decimal.RequireFromString("0.01"))
	require.NoError(t, err)

	price := pricev1.MustParse("100.10")
	buy, err := orderv1.NewLimit(ids, 1, orderv1.SideBuy, 3, asset, price)
	require.NoError(t, err)
	sell, err := orderv1.NewLimit(ids, 2, orderv1.SideSell, 3, asset, price)
	require.NoError(t, err)

	trade := New(1, buy, sell, price, 3)
	assert.True(t, trade.TotalValue().Equal(decimal.RequireFromString("300.30")))
}

// Test 3: market flag set when either side was a market order
func TestNew_MarketFlag(t *testing.T) {
	ids := identityv1.NewAllocator()
	asset, err := assetv1.New(ids, "Tesla Inc", "TSLA", decimal.RequireFromString("0.01"))
	require.NoError(t, err)

	price := pricev1.MustParse("100.00")
	buy, err := orderv1.NewMarket(ids, 1, orderv1.SideBuy, 10, asset)
	require.NoError(t, err)
	sell, err := orderv1.NewLimit(ids, 2, orderv1.SideSell, 10, asset, price)
	require.NoError(t, err)

	trade := New(1, buy, sell, price, 10)
	assert.True(t, trade.WasMarketOrder())
	assert.Equal(t, orderv1.TypeMarket, trade.BuyOrderType())
	assert.Equal(t, orderv1.TypeLimit, trade.SellOrderType())
}
