package orderbook

import (
	"sync"

	orderv1 "github.com/xikronz/XKRexhange/internal/domain/order/v1"
)

// orderQueue is the sequencing queue feeding the matching worker: an
// unbounded FIFO whose push never blocks the submitter. Unbounded matters
// because the worker itself pushes converted stop orders back onto the tail;
// a bounded queue could deadlock the worker against its own backlog.
type orderQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []*orderv1.Order
	closed bool
}

func newOrderQueue() *orderQueue {
	q := &orderQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push appends an order to the tail. It reports false when the queue is
// closed, in which case the order is not enqueued.
func (q *orderQueue) push(o *orderv1.Order) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.items = append(q.items, o)
	q.cond.Signal()
	return true
}

// pop blocks until an order is available or the queue is closed. Close wins
// over backlog: a closed queue returns false immediately, without draining.
func (q *orderQueue) pop() (*orderv1.Order, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.closed {
		return nil, false
	}
	o := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return o, true
}

// close marks the queue closed and wakes any blocked pop. Idempotent.
func (q *orderQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.cond.Broadcast()
}

// reopen clears the closed flag and drops any abandoned backlog so a stopped
// book can be started again with a clean queue.
func (q *orderQueue) reopen() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = false
	q.items = nil
}

// size returns the number of orders waiting to be processed.
func (q *orderQueue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
