package publisherv1

import (
	"context"

	orderv1 "github.com/xikronz/XKRexhange/internal/domain/order/v1"
	tradev1 "github.com/xikronz/XKRexhange/internal/domain/trade/v1"
)

// TradePublisher is the notification collaborator: one execution report per
// trade and one order update per terminal order-state change.
type TradePublisher interface {
	PublishExecution(ctx context.Context, trade *tradev1.CompletedTrade) error
	PublishOrderUpdate(ctx context.Context, order *orderv1.Order) error
}
