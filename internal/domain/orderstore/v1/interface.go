package orderstorev1

import (
	"context"

	orderv1 "github.com/xikronz/XKRexhange/internal/domain/order/v1"
	tradev1 "github.com/xikronz/XKRexhange/internal/domain/trade/v1"
)

// Store is the persistence collaborator of the matching core. All calls are
// fire-and-forget from the book's point of view: the core logs failures and
// never waits on, retries, or rolls back because of them.
type Store interface {
	// RecordNewOrder persists an order when it is first accepted.
	RecordNewOrder(ctx context.Context, order *orderv1.Order) error
	// RecordFill persists an order's fill progress after a state change.
	RecordFill(ctx context.Context, orderID int64, filledQuantity int64, status orderv1.Status) error
	// RecordTrade persists one completed trade for the audit trail.
	RecordTrade(ctx context.Context, trade *tradev1.CompletedTrade) error
}
