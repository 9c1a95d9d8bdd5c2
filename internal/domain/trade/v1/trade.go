package tradev1

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	orderv1 "github.com/xikronz/XKRexhange/internal/domain/order/v1"
	pricev1 "github.com/xikronz/XKRexhange/internal/domain/price/v1"
)

// CompletedTrade is the immutable audit record of one execution. It is
// created exactly once per match and never mutated.
type CompletedTrade struct {
	id         int64
	executedAt time.Time

	buyOrderID  int64
	sellOrderID int64
	buyerID     int64
	sellerID    int64

	assetID  int64
	ticker   string
	quantity int64
	price    pricev1.Price
	total    decimal.Decimal

	buyType        orderv1.Type
	sellType       orderv1.Type
	wasMarketOrder bool
}

// New builds a trade record from a matched buy/sell pair. The total value is
// price times quantity in exact decimal arithmetic; the market-order flag is
// set when either side was a market order.
func New(id int64, buy, sell *orderv1.Order, price pricev1.Price, quantity int64) *CompletedTrade {
	return &CompletedTrade{
		id:             id,
		executedAt:     time.Now().UTC(),
		buyOrderID:     buy.ID(),
		sellOrderID:    sell.ID(),
		buyerID:        buy.ClientID(),
		sellerID:       sell.ClientID(),
		assetID:        buy.AssetID(),
		ticker:         buy.Ticker(),
		quantity:       quantity,
		price:          price,
		total:          price.Value().Mul(decimal.NewFromInt(quantity)),
		buyType:        buy.Type(),
		sellType:       sell.Type(),
		wasMarketOrder: buy.Type() == orderv1.TypeMarket || sell.Type() == orderv1.TypeMarket,
	}
}

// ID returns the trade identifier.
func (t *CompletedTrade) ID() int64 { return t.id }

// ExecutedAt returns the execution timestamp.
func (t *CompletedTrade) ExecutedAt() time.Time { return t.executedAt }

// BuyOrderID returns the id of the matched buy order.
func (t *CompletedTrade) BuyOrderID() int64 { return t.buyOrderID }

// SellOrderID returns the id of the matched sell order.
func (t *CompletedTrade) SellOrderID() int64 { return t.sellOrderID }

// BuyerID returns the buying client's id.
func (t *CompletedTrade) BuyerID() int64 { return t.buyerID }

// SellerID returns the selling client's id.
func (t *CompletedTrade) SellerID() int64 { return t.sellerID }

// AssetID returns the traded asset's id.
func (t *CompletedTrade) AssetID() int64 { return t.assetID }

// Ticker returns the traded asset's ticker.
func (t *CompletedTrade) Ticker() string { return t.ticker }

// Quantity returns the executed quantity.
func (t *CompletedTrade) Quantity() int64 { return t.quantity }

// Price returns the execution price, always the passive order's price.
func (t *CompletedTrade) Price() pricev1.Price { return t.price }

// TotalValue returns price multiplied by quantity.
func (t *CompletedTrade) TotalValue() decimal.Decimal { return t.total }

// BuyOrderType returns the kind of the buy order.
func (t *CompletedTrade) BuyOrderType() orderv1.Type { return t.buyType }

// SellOrderType returns the kind of the sell order.
func (t *CompletedTrade) SellOrderType() orderv1.Type { return t.sellType }

// WasMarketOrder reports whether either side was a market order.
func (t *CompletedTrade) WasMarketOrder() bool { return t.wasMarketOrder }

func (t *CompletedTrade) String() string {
	return fmt.Sprintf("CompletedTrade{id=%d %s qty=%d price=%s total=%s}",
		t.id, t.ticker, t.quantity, t.price, t.total)
}
