package settlementv1

import (
	"context"

	pricev1 "github.com/xikronz/XKRexhange/internal/domain/price/v1"
)

// Instruction carries everything the settlement collaborator needs to move
// cash and holdings for one completed trade.
type Instruction struct {
	BuyerID     int64
	SellerID    int64
	AssetID     int64
	Quantity    int64
	Price       pricev1.Price
	BuyOrderID  int64
	SellOrderID int64
}

// Settler settles completed trades. Invoked once per trade; the matching core
// does not roll back a trade when settlement fails, that is a downstream
// concern.
type Settler interface {
	Settle(ctx context.Context, instruction Instruction) error
}
