package orderbook

import (
	"github.com/google/btree"

	orderv1 "github.com/xikronz/XKRexhange/internal/domain/order/v1"
	pricev1 "github.com/xikronz/XKRexhange/internal/domain/price/v1"
)

// priceLevel is one price on a ladder with its resting orders in FIFO
// arrival order. Empty levels never persist on the ladder.
type priceLevel struct {
	price  pricev1.Price
	orders []*orderv1.Order
}

// totalQuantity sums the remaining quantity resting at this level.
func (l *priceLevel) totalQuantity() int64 {
	var total int64
	for _, o := range l.orders {
		total += o.Remaining()
	}
	return total
}

// ladder is one side of the book: a B-tree of price levels ordered so that
// Min() is the nearest-touch level. Bids order by descending price, asks by
// ascending price.
type ladder struct {
	tree       *btree.BTreeG[*priceLevel]
	orderCount int
}

const ladderDegree = 32

func newLadder(side orderv1.Side) *ladder {
	var less btree.LessFunc[*priceLevel]
	if side == orderv1.SideBuy {
		less = func(a, b *priceLevel) bool { return a.price.GreaterThan(b.price) }
	} else {
		less = func(a, b *priceLevel) bool { return a.price.LessThan(b.price) }
	}
	return &ladder{
		tree: btree.NewG(ladderDegree, less),
	}
}

// best returns the nearest-touch level, if any.
func (l *ladder) best() (*priceLevel, bool) {
	return l.tree.Min()
}

// add appends an order to the FIFO at the given price, creating the level if
// it does not exist yet.
func (l *ladder) add(price pricev1.Price, order *orderv1.Order) {
	lvl, ok := l.tree.Get(&priceLevel{price: price})
	if !ok {
		lvl = &priceLevel{price: price}
		l.tree.ReplaceOrInsert(lvl)
	}
	lvl.orders = append(lvl.orders, order)
	l.orderCount++
}

// remove deletes an order from its level, dropping the level when it empties.
func (l *ladder) remove(lvl *priceLevel, order *orderv1.Order) {
	for i, o := range lvl.orders {
		if o == order {
			lvl.orders = append(lvl.orders[:i], lvl.orders[i+1:]...)
			l.orderCount--
			break
		}
	}
	if len(lvl.orders) == 0 {
		l.tree.Delete(lvl)
	}
}

// firstEligible walks levels best-first and returns the earliest resting
// order that does not belong to clientID at a level accepted by crosses.
// A nil crosses accepts every level (market sweep). Because levels are
// ordered best-first, the walk stops at the first level crosses rejects.
// Same-client orders are skipped in place; scanning continues behind them.
func (l *ladder) firstEligible(clientID int64, crosses func(pricev1.Price) bool) (*priceLevel, *orderv1.Order) {
	var (
		foundLvl   *priceLevel
		foundOrder *orderv1.Order
	)
	l.tree.Ascend(func(lvl *priceLevel) bool {
		if crosses != nil && !crosses(lvl.price) {
			return false
		}
		for _, o := range lvl.orders {
			if o.ClientID() != clientID {
				foundLvl = lvl
				foundOrder = o
				return false
			}
		}
		return true
	})
	return foundLvl, foundOrder
}

// size returns the number of resting orders on this side.
func (l *ladder) size() int {
	return l.orderCount
}

// levels returns a best-first snapshot of the side's levels. Orders slices
// are copied so callers never alias live book state.
func (l *ladder) levels() []priceLevel {
	out := make([]priceLevel, 0, l.tree.Len())
	l.tree.Ascend(func(lvl *priceLevel) bool {
		out = append(out, priceLevel{
			price:  lvl.price,
			orders: append([]*orderv1.Order(nil), lvl.orders...),
		})
		return true
	})
	return out
}
