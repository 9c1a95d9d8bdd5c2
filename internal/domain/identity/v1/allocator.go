package identityv1

import "sync/atomic"

// Kind partitions the identifier space so that two entities of different
// kinds may share a numeric value without colliding.
type Kind int

const (
	// KindAsset identifies listed assets.
	KindAsset Kind = iota
	// KindOrderBook identifies order books.
	KindOrderBook
	// KindOrder identifies orders.
	KindOrder
	// KindTrade identifies completed trades.
	KindTrade

	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindAsset:
		return "asset"
	case KindOrderBook:
		return "orderbook"
	case KindOrder:
		return "order"
	case KindTrade:
		return "trade"
	default:
		return "unknown"
	}
}

// Allocator issues monotonically increasing identifiers, unique per Kind for
// the lifetime of the allocator instance. It is safe for concurrent use and
// never blocks.
type Allocator struct {
	counters [kindCount]atomic.Int64
}

// NewAllocator creates an allocator whose counters start at zero, so the
// first identifier of every kind is 1.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Next returns the next identifier for the given kind.
func (a *Allocator) Next(kind Kind) int64 {
	return a.counters[kind].Add(1)
}
