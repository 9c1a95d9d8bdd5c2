package orderv1

import (
	"errors"
	"fmt"
	"sync/atomic"

	assetv1 "github.com/xikronz/XKRexhange/internal/domain/asset/v1"
	identityv1 "github.com/xikronz/XKRexhange/internal/domain/identity/v1"
	pricev1 "github.com/xikronz/XKRexhange/internal/domain/price/v1"
)

var (
	// ErrInvalidOrderShape is returned by a factory when the requested order
	// is missing a required price, carries a forbidden one, or has a
	// non-positive quantity.
	ErrInvalidOrderShape = errors.New("invalid order shape")
	// ErrInvalidFill is returned when a fill exceeds the remaining quantity.
	ErrInvalidFill = errors.New("invalid fill")
)

// Type is the closed set of order kinds. The matching worker dispatches on it
// exhaustively; adding a kind means extending that switch.
type Type int

const (
	// TypeMarket executes immediately against available liquidity.
	TypeMarket Type = iota
	// TypeLimit executes at its limit price or better, resting otherwise.
	TypeLimit
	// TypeStop becomes a market order once its trigger price trades.
	TypeStop
	// TypeStopLimit becomes a limit order once its trigger price trades.
	TypeStopLimit
)

func (t Type) String() string {
	switch t {
	case TypeMarket:
		return "MARKET"
	case TypeLimit:
		return "LIMIT"
	case TypeStop:
		return "STOP"
	case TypeStopLimit:
		return "STOP_LIMIT"
	default:
		return "UNKNOWN"
	}
}

// Side indicates whether an order buys or sells.
type Side int

const (
	// SideBuy bids for the asset.
	SideBuy Side = iota
	// SideSell offers the asset.
	SideSell
)

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

func (s Side) String() string {
	if s == SideBuy {
		return "BUY"
	}
	return "SELL"
}

// Status is the fill-state machine of an order. The core drives
// OPEN -> PARTIALLY_FILLED -> FILLED; the terminal CANCELLED and REJECTED
// states exist for outer layers that manage order lifecycle beyond matching.
type Status int32

const (
	// StatusOpen means no quantity has been executed yet.
	StatusOpen Status = iota
	// StatusPartiallyFilled means some, but not all, quantity has executed.
	StatusPartiallyFilled
	// StatusFilled means the full quantity has executed. Terminal.
	StatusFilled
	// StatusCancelled is a terminal state applied by outer layers.
	StatusCancelled
	// StatusRejected is a terminal state applied by outer layers.
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "OPEN"
	case StatusPartiallyFilled:
		return "PARTIALLY_FILLED"
	case StatusFilled:
		return "FILLED"
	case StatusCancelled:
		return "CANCELLED"
	case StatusRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// Order is one trade intent. Identity, side, kind, quantity and prices are
// fixed at construction; remaining quantity and status mutate as the matching
// worker fills the order. The mutable state is stored atomically so readers
// on other goroutines never observe torn values.
type Order struct {
	id       int64
	clientID int64
	typ      Type
	side     Side
	quantity int64
	assetID  int64
	ticker   string

	limitPrice   *pricev1.Price
	triggerPrice *pricev1.Price

	remaining atomic.Int64
	status    atomic.Int32
}

func newOrder(ids *identityv1.Allocator, clientID int64, typ Type, side Side, quantity int64, asset *assetv1.Asset, limit, trigger *pricev1.Price) *Order {
	o := &Order{
		id:           ids.Next(identityv1.KindOrder),
		clientID:     clientID,
		typ:          typ,
		side:         side,
		quantity:     quantity,
		assetID:      asset.ID(),
		ticker:       asset.Ticker(),
		limitPrice:   limit,
		triggerPrice: trigger,
	}
	o.remaining.Store(quantity)
	o.status.Store(int32(StatusOpen))
	return o
}

func validateQuantity(quantity int64) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity %d is not positive", ErrInvalidOrderShape, quantity)
	}
	return nil
}

// NewMarket creates a MARKET order. Market orders carry no prices.
func NewMarket(ids *identityv1.Allocator, clientID int64, side Side, quantity int64, asset *assetv1.Asset) (*Order, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	return newOrder(ids, clientID, TypeMarket, side, quantity, asset, nil, nil), nil
}

// NewLimit creates a LIMIT order with a required limit price.
func NewLimit(ids *identityv1.Allocator, clientID int64, side Side, quantity int64, asset *assetv1.Asset, limit pricev1.Price) (*Order, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	return newOrder(ids, clientID, TypeLimit, side, quantity, asset, &limit, nil), nil
}

// NewStop creates a STOP order with a required trigger price and no limit
// price; it converts to a market order when triggered.
func NewStop(ids *identityv1.Allocator, clientID int64, side Side, quantity int64, asset *assetv1.Asset, trigger pricev1.Price) (*Order, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	return newOrder(ids, clientID, TypeStop, side, quantity, asset, nil, &trigger), nil
}

// NewStopLimit creates a STOP_LIMIT order requiring both a trigger price and
// the limit price it converts to once triggered.
func NewStopLimit(ids *identityv1.Allocator, clientID int64, side Side, quantity int64, asset *assetv1.Asset, limit, trigger pricev1.Price) (*Order, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	return newOrder(ids, clientID, TypeStopLimit, side, quantity, asset, &limit, &trigger), nil
}

// ID returns the order identifier, which also encodes arrival order for FIFO
// tie-breaks.
func (o *Order) ID() int64 {
	return o.id
}

// ClientID returns the submitting client's identifier.
func (o *Order) ClientID() int64 {
	return o.clientID
}

// Type returns the order kind.
func (o *Order) Type() Type {
	return o.typ
}

// Side returns the order side.
func (o *Order) Side() Side {
	return o.side
}

// IsBid reports whether the order buys.
func (o *Order) IsBid() bool {
	return o.side == SideBuy
}

// Quantity returns the original quantity.
func (o *Order) Quantity() int64 {
	return o.quantity
}

// AssetID returns the identifier of the asset the order trades.
func (o *Order) AssetID() int64 {
	return o.assetID
}

// Ticker returns the ticker of the asset the order trades.
func (o *Order) Ticker() string {
	return o.ticker
}

// LimitPrice returns the limit price when the kind carries one.
func (o *Order) LimitPrice() (pricev1.Price, bool) {
	if o.limitPrice == nil {
		return pricev1.Price{}, false
	}
	return *o.limitPrice, true
}

// StopPrice returns the trigger price for STOP and STOP_LIMIT orders.
func (o *Order) StopPrice() (pricev1.Price, bool) {
	if o.typ != TypeStop && o.typ != TypeStopLimit {
		return pricev1.Price{}, false
	}
	return *o.triggerPrice, true
}

// Remaining returns the unfilled quantity.
func (o *Order) Remaining() int64 {
	return o.remaining.Load()
}

// FilledQuantity returns how much of the original quantity has executed.
func (o *Order) FilledQuantity() int64 {
	return o.quantity - o.remaining.Load()
}

// Status returns the current fill state.
func (o *Order) Status() Status {
	return Status(o.status.Load())
}

// IsFilled reports whether the order has fully executed.
func (o *Order) IsFilled() bool {
	return o.Status() == StatusFilled
}

// Fill reduces the remaining quantity by qty, moving the order to
// PARTIALLY_FILLED, or FILLED when remaining reaches zero. A fill larger than
// the remaining quantity is an ErrInvalidFill; the remaining quantity is
// never clamped silently.
func (o *Order) Fill(qty int64) error {
	if qty <= 0 {
		return fmt.Errorf("%w: fill quantity %d is not positive", ErrInvalidFill, qty)
	}
	rem := o.remaining.Load()
	if qty > rem {
		return fmt.Errorf("%w: fill %d exceeds remaining %d on order %d", ErrInvalidFill, qty, rem, o.id)
	}

	rem -= qty
	o.remaining.Store(rem)
	if rem == 0 {
		o.status.Store(int32(StatusFilled))
	} else {
		o.status.Store(int32(StatusPartiallyFilled))
	}
	return nil
}

// Before reports whether o arrived before other, by identifier.
func (o *Order) Before(other *Order) bool {
	return o.id < other.id
}

func (o *Order) String() string {
	limit := "-"
	if p, ok := o.LimitPrice(); ok {
		limit = p.String()
	}
	trigger := "-"
	if p, ok := o.StopPrice(); ok {
		trigger = p.String()
	}
	return fmt.Sprintf("Order{id=%d client=%d %s %s %d/%d %s limit=%s trigger=%s}",
		o.id, o.clientID, o.typ, o.side, o.Remaining(), o.quantity, o.ticker, limit, trigger)
}
