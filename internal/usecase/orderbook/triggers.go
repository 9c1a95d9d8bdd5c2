package orderbook

import (
	"github.com/google/btree"

	orderv1 "github.com/xikronz/XKRexhange/internal/domain/order/v1"
	pricev1 "github.com/xikronz/XKRexhange/internal/domain/price/v1"
)

// triggerQueue holds dormant stop and stop-limit orders for one side, ordered
// so that Min() is the order whose trigger is reached first as the last-trade
// price moves: buy stops by ascending trigger (armed as the price rises), sell
// stops by descending trigger (armed as it falls). Equal triggers break ties
// by arrival id, earliest first.
type triggerQueue struct {
	tree *btree.BTreeG[*orderv1.Order]
}

func newTriggerQueue(side orderv1.Side) *triggerQueue {
	less := func(a, b *orderv1.Order) bool {
		ap, _ := a.StopPrice()
		bp, _ := b.StopPrice()
		switch ap.Cmp(bp) {
		case -1:
			return side == orderv1.SideBuy
		case 1:
			return side == orderv1.SideSell
		default:
			return a.Before(b)
		}
	}
	return &triggerQueue{tree: btree.NewG(ladderDegree, less)}
}

// push parks a dormant order on the queue.
func (t *triggerQueue) push(o *orderv1.Order) {
	t.tree.ReplaceOrInsert(o)
}

// head returns the order whose trigger will be reached first, if any.
func (t *triggerQueue) head() (*orderv1.Order, bool) {
	return t.tree.Min()
}

// size returns the number of dormant orders parked on this queue.
func (t *triggerQueue) size() int {
	return t.tree.Len()
}

// popTriggered removes and returns every head whose trigger fires at the
// given last-trade price. Because heads are ordered by trigger proximity the
// scan stops at the first dormant head.
func (t *triggerQueue) popTriggered(last pricev1.Price, side orderv1.Side) []*orderv1.Order {
	var fired []*orderv1.Order
	for {
		o, ok := t.head()
		if !ok {
			break
		}
		trigger, _ := o.StopPrice()
		if side == orderv1.SideBuy && trigger.GreaterThan(last) {
			break
		}
		if side == orderv1.SideSell && trigger.LessThan(last) {
			break
		}
		t.tree.DeleteMin()
		fired = append(fired, o)
	}
	return fired
}
