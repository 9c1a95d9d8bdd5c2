package publisherv1

import (
	"time"

	orderv1 "github.com/xikronz/XKRexhange/internal/domain/order/v1"
	tradev1 "github.com/xikronz/XKRexhange/internal/domain/trade/v1"
)

// ExecutionReportPayload is the wire shape of one execution report.
type ExecutionReportPayload struct {
	EventID     string    `json:"eventID"`
	TradeID     int64     `json:"tradeID"`
	Ticker      string    `json:"ticker"`
	BuyOrderID  int64     `json:"buyOrderID"`
	SellOrderID int64     `json:"sellOrderID"`
	BuyerID     int64     `json:"buyerID"`
	SellerID    int64     `json:"sellerID"`
	Quantity    int64     `json:"quantity"`
	Price       string    `json:"price"`
	TotalValue  string    `json:"totalValue"`
	MarketOrder bool      `json:"marketOrder"`
	ExecutedAt  time.Time `json:"executedAt"`
}

// OrderUpdatePayload is the wire shape of one order state change.
type OrderUpdatePayload struct {
	EventID        string `json:"eventID"`
	OrderID        int64  `json:"orderID"`
	ClientID       int64  `json:"clientID"`
	Ticker         string `json:"ticker"`
	Side           string `json:"side"`
	Type           string `json:"type"`
	FilledQuantity int64  `json:"filledQuantity"`
	Remaining      int64  `json:"remaining"`
	Status         string `json:"status"`
}

// NewExecutionReportPayload maps a completed trade onto its wire shape.
func NewExecutionReportPayload(eventID string, trade *tradev1.CompletedTrade) ExecutionReportPayload {
	return ExecutionReportPayload{
		EventID:     eventID,
		TradeID:     trade.ID(),
		Ticker:      trade.Ticker(),
		BuyOrderID:  trade.BuyOrderID(),
		SellOrderID: trade.SellOrderID(),
		BuyerID:     trade.BuyerID(),
		SellerID:    trade.SellerID(),
		Quantity:    trade.Quantity(),
		Price:       trade.Price().String(),
		TotalValue:  trade.TotalValue().String(),
		MarketOrder: trade.WasMarketOrder(),
		ExecutedAt:  trade.ExecutedAt(),
	}
}

// NewOrderUpdatePayload maps an order's current state onto its wire shape.
func NewOrderUpdatePayload(eventID string, order *orderv1.Order) OrderUpdatePayload {
	return OrderUpdatePayload{
		EventID:        eventID,
		OrderID:        order.ID(),
		ClientID:       order.ClientID(),
		Ticker:         order.Ticker(),
		Side:           order.Side().String(),
		Type:           order.Type().String(),
		FilledQuantity: order.FilledQuantity(),
		Remaining:      order.Remaining(),
		Status:         order.Status().String(),
	}
}
