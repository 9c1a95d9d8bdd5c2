package orderbook

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	assetv1 "github.com/xikronz/XKRexhange/internal/domain/asset/v1"
	identityv1 "github.com/xikronz/XKRexhange/internal/domain/identity/v1"
	orderv1 "github.com/xikronz/XKRexhange/internal/domain/order/v1"
	orderstorev1 "github.com/xikronz/XKRexhange/internal/domain/orderstore/v1"
	pricev1 "github.com/xikronz/XKRexhange/internal/domain/price/v1"
	publisherv1 "github.com/xikronz/XKRexhange/internal/domain/publisher/v1"
	settlementv1 "github.com/xikronz/XKRexhange/internal/domain/settlement/v1"
	tradev1 "github.com/xikronz/XKRexhange/internal/domain/trade/v1"
	"github.com/xikronz/XKRexhange/pkg/logger"
	"github.com/xikronz/XKRexhange/pkg/util"
)

const (
	stateStopped int32 = iota
	stateRunning
)

// Quote is a snapshot of one side's best level: the touch price and a copy of
// the FIFO resting there, earliest first.
type Quote struct {
	Price  pricev1.Price
	Orders []*orderv1.Order
}

// Option configures optional collaborators on a Book.
type Option func(*Book)

// WithStore attaches the persistence collaborator.
func WithStore(store orderstorev1.Store) Option {
	return func(b *Book) { b.store = store }
}

// WithSettler attaches the settlement collaborator.
func WithSettler(settler settlementv1.Settler) Option {
	return func(b *Book) { b.settler = settler }
}

// WithPublisher attaches the notification collaborator.
func WithPublisher(publisher publisherv1.TradePublisher) Option {
	return func(b *Book) { b.publisher = publisher }
}

// Book is the matching core for one asset. A single worker goroutine drains
// the sequencing queue and applies price-time priority matching; nothing else
// mutates book state. Read accessors snapshot state under a read lock, so
// observers never block the worker for long and never alias live structures.
type Book struct {
	id    int64
	asset *assetv1.Asset
	ids   *identityv1.Allocator
	log   logger.Interface

	store     orderstorev1.Store
	settler   settlementv1.Settler
	publisher publisherv1.TradePublisher

	queue       *orderQueue
	lifecycleMu sync.Mutex
	state       atomic.Int32
	workerDone  chan struct{}

	mu            sync.RWMutex
	bids          *ladder
	asks          *ladder
	stopBids      *triggerQueue
	stopAsks      *triggerQueue
	stopLimitBids *triggerQueue
	stopLimitAsks *triggerQueue
	lastTrade     *pricev1.Price
	history       []*tradev1.CompletedTrade
}

// NewBook creates a stopped book for the given asset. Collaborators are
// optional; a book without them matches exactly the same, it just has no
// side effects beyond its own state.
func NewBook(asset *assetv1.Asset, ids *identityv1.Allocator, log logger.Interface, opts ...Option) *Book {
	b := &Book{
		id:            ids.Next(identityv1.KindOrderBook),
		asset:         asset,
		ids:           ids,
		log:           log,
		queue:         newOrderQueue(),
		bids:          newLadder(orderv1.SideBuy),
		asks:          newLadder(orderv1.SideSell),
		stopBids:      newTriggerQueue(orderv1.SideBuy),
		stopAsks:      newTriggerQueue(orderv1.SideSell),
		stopLimitBids: newTriggerQueue(orderv1.SideBuy),
		stopLimitAsks: newTriggerQueue(orderv1.SideSell),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ID returns the book identifier.
func (b *Book) ID() int64 {
	return b.id
}

// Asset returns the asset this book matches.
func (b *Book) Asset() *assetv1.Asset {
	return b.asset
}

// Start launches the matching worker. Calling Start on a running book is a
// no-op; a stopped book starts again with an empty sequencing queue.
func (b *Book) Start() {
	b.lifecycleMu.Lock()
	defer b.lifecycleMu.Unlock()
	if !b.state.CompareAndSwap(stateStopped, stateRunning) {
		return
	}
	b.queue.reopen()
	b.workerDone = make(chan struct{})
	go b.run()
	b.log.Info("order book started",
		logger.NewField("book_id", b.id),
		logger.NewField("ticker", b.asset.Ticker()),
	)
}

// Stop shuts the worker down and waits for it to exit. The worker abandons
// any queued backlog rather than flushing it. Calling Stop on a stopped book
// is a no-op.
func (b *Book) Stop() {
	b.lifecycleMu.Lock()
	defer b.lifecycleMu.Unlock()
	if !b.state.CompareAndSwap(stateRunning, stateStopped) {
		return
	}
	b.queue.close()
	<-b.workerDone
	b.log.Info("order book stopped",
		logger.NewField("book_id", b.id),
		logger.NewField("ticker", b.asset.Ticker()),
	)
}

// IsRunning reports whether the matching worker is live.
func (b *Book) IsRunning() bool {
	return b.state.Load() == stateRunning
}

// Submit enqueues an order for matching. It never blocks; orders are
// processed strictly in arrival sequence by the single worker. Orders
// submitted to a stopped book are dropped with a warning.
func (b *Book) Submit(order *orderv1.Order) {
	if order == nil {
		return
	}
	if order.AssetID() != b.asset.ID() {
		b.log.Warn("order rejected, wrong asset for this book",
			logger.NewField("book_id", b.id),
			logger.NewField("ticker", b.asset.Ticker()),
			logger.NewField("order", order.String()),
		)
		return
	}
	if !b.queue.push(order) {
		b.log.Warn("order dropped, book is stopped",
			logger.NewField("book_id", b.id),
			logger.NewField("order", order.String()),
		)
	}
}

// PendingOrders returns the number of orders waiting in the sequencing queue.
func (b *Book) PendingOrders() int {
	return b.queue.size()
}

func (b *Book) run() {
	defer close(b.workerDone)
	for {
		o, ok := b.queue.pop()
		if !ok {
			return
		}
		b.process(o)
	}
}

// effects collects what one processing cycle did so collaborator calls can
// run after the book lock is released.
type effects struct {
	trades  []*tradev1.CompletedTrade
	touched []*orderv1.Order
}

func (e *effects) touch(o *orderv1.Order) {
	for _, t := range e.touched {
		if t == o {
			return
		}
	}
	e.touched = append(e.touched, o)
}

// process applies one order to the book. Each cycle gets a fresh request id
// so every log line and collaborator call of the cycle correlates. A panic
// while matching is contained here so one malformed order never takes the
// worker down.
func (b *Book) process(o *orderv1.Order) {
	ctx := util.WithRequestID(context.Background(), "")
	defer func() {
		if r := recover(); r != nil {
			b.log.ErrorContext(ctx, fmt.Errorf("matching panic recovered: %v", r),
				logger.NewField("book_id", b.id),
				logger.NewField("order", o.String()),
			)
		}
	}()

	b.recordNewOrder(ctx, o)

	var fx effects
	b.mu.Lock()
	switch o.Type() {
	case orderv1.TypeMarket:
		b.matchMarket(o, &fx)
	case orderv1.TypeLimit:
		b.matchLimit(o, &fx)
	case orderv1.TypeStop:
		b.parkStop(o)
	case orderv1.TypeStopLimit:
		b.parkStopLimit(o)
	default:
		b.log.Warn("unknown order type, order ignored",
			logger.NewField("book_id", b.id),
			logger.NewField("order", o.String()),
		)
	}
	b.evaluateTriggers()
	b.mu.Unlock()

	b.emit(ctx, &fx)
}

// matchMarket sweeps the opposite side best-first until the order fills or
// eligible liquidity runs out. Unfilled remainder is discarded, market orders
// never rest.
func (b *Book) matchMarket(o *orderv1.Order, fx *effects) {
	opposite := b.oppositeLadder(o.Side())
	for o.Remaining() > 0 {
		lvl, passive := opposite.firstEligible(o.ClientID(), nil)
		if passive == nil {
			break
		}
		b.executeTrade(o, passive, lvl, opposite, fx)
	}
}

// matchLimit matches against crossing levels of the opposite side, then posts
// any remainder at the limit price.
func (b *Book) matchLimit(o *orderv1.Order, fx *effects) {
	limit, ok := o.LimitPrice()
	if !ok {
		b.log.Warn("limit order without limit price, order ignored",
			logger.NewField("book_id", b.id),
			logger.NewField("order", o.String()),
		)
		return
	}

	var crosses func(pricev1.Price) bool
	if o.Side() == orderv1.SideBuy {
		crosses = func(p pricev1.Price) bool { return p.Cmp(limit) <= 0 }
	} else {
		crosses = func(p pricev1.Price) bool { return p.Cmp(limit) >= 0 }
	}

	opposite := b.oppositeLadder(o.Side())
	for o.Remaining() > 0 {
		lvl, passive := opposite.firstEligible(o.ClientID(), crosses)
		if passive == nil {
			break
		}
		b.executeTrade(o, passive, lvl, opposite, fx)
	}

	if o.Remaining() > 0 {
		b.sameLadder(o.Side()).add(limit, o)
	}
}

// parkStop queues a stop order until its trigger price trades.
func (b *Book) parkStop(o *orderv1.Order) {
	if o.Side() == orderv1.SideBuy {
		b.stopBids.push(o)
	} else {
		b.stopAsks.push(o)
	}
}

// parkStopLimit queues a stop-limit order until its trigger price trades.
func (b *Book) parkStopLimit(o *orderv1.Order) {
	if o.Side() == orderv1.SideBuy {
		b.stopLimitBids.push(o)
	} else {
		b.stopLimitAsks.push(o)
	}
}

// executeTrade crosses the aggressor with one passive order at the passive
// order's level price, records the trade, and removes the passive order when
// it fills completely.
func (b *Book) executeTrade(aggressor, passive *orderv1.Order, lvl *priceLevel, side *ladder, fx *effects) {
	qty := aggressor.Remaining()
	if r := passive.Remaining(); r < qty {
		qty = r
	}
	price := lvl.price

	if err := aggressor.Fill(qty); err != nil {
		b.log.Error(err, logger.NewField("book_id", b.id), logger.NewField("order", aggressor.String()))
		return
	}
	if err := passive.Fill(qty); err != nil {
		b.log.Error(err, logger.NewField("book_id", b.id), logger.NewField("order", passive.String()))
		return
	}

	buy, sell := aggressor, passive
	if aggressor.Side() == orderv1.SideSell {
		buy, sell = passive, aggressor
	}

	trade := tradev1.New(b.ids.Next(identityv1.KindTrade), buy, sell, price, qty)
	b.history = append(b.history, trade)
	last := price
	b.lastTrade = &last

	if passive.IsFilled() {
		side.remove(lvl, passive)
	}

	fx.trades = append(fx.trades, trade)
	fx.touch(aggressor)
	fx.touch(passive)
}

// evaluateTriggers converts every dormant order whose trigger the last-trade
// price has reached and feeds the conversions back through the sequencing
// queue, so they match in strict arrival order behind whatever is already
// queued. Conversions get fresh identifiers; the dormant originals leave the
// trigger queues for good.
func (b *Book) evaluateTriggers() {
	if b.lastTrade == nil {
		return
	}
	last := *b.lastTrade

	for _, o := range b.stopBids.popTriggered(last, orderv1.SideBuy) {
		b.resubmitAsMarket(o)
	}
	for _, o := range b.stopAsks.popTriggered(last, orderv1.SideSell) {
		b.resubmitAsMarket(o)
	}
	for _, o := range b.stopLimitBids.popTriggered(last, orderv1.SideBuy) {
		b.resubmitAsLimit(o)
	}
	for _, o := range b.stopLimitAsks.popTriggered(last, orderv1.SideSell) {
		b.resubmitAsLimit(o)
	}
}

func (b *Book) resubmitAsMarket(o *orderv1.Order) {
	converted, err := orderv1.NewMarket(b.ids, o.ClientID(), o.Side(), o.Remaining(), b.asset)
	if err != nil {
		b.log.Error(err, logger.NewField("book_id", b.id), logger.NewField("order", o.String()))
		return
	}
	b.enqueueConversion(o, converted)
}

func (b *Book) resubmitAsLimit(o *orderv1.Order) {
	limit, ok := o.LimitPrice()
	if !ok {
		b.log.Warn("stop-limit order without limit price, conversion dropped",
			logger.NewField("book_id", b.id),
			logger.NewField("order", o.String()),
		)
		return
	}
	converted, err := orderv1.NewLimit(b.ids, o.ClientID(), o.Side(), o.Remaining(), b.asset, limit)
	if err != nil {
		b.log.Error(err, logger.NewField("book_id", b.id), logger.NewField("order", o.String()))
		return
	}
	b.enqueueConversion(o, converted)
}

func (b *Book) enqueueConversion(original, converted *orderv1.Order) {
	if !b.queue.push(converted) {
		b.log.Warn("triggered order dropped, book is stopped",
			logger.NewField("book_id", b.id),
			logger.NewField("order", converted.String()),
		)
		return
	}
	b.log.Info("stop order triggered",
		logger.NewField("book_id", b.id),
		logger.NewField("original_order_id", original.ID()),
		logger.NewField("converted_order_id", converted.ID()),
		logger.NewField("type", converted.Type().String()),
	)
}

// recordNewOrder persists order acceptance. Failures are logged and ignored,
// persistence never gates matching.
func (b *Book) recordNewOrder(ctx context.Context, o *orderv1.Order) {
	if b.store == nil {
		return
	}
	if err := b.store.RecordNewOrder(ctx, o); err != nil {
		b.log.ErrorContext(ctx, err, logger.NewField("book_id", b.id), logger.NewField("order_id", o.ID()))
	}
}

// emit pushes the cycle's side effects to the collaborators, outside the book
// lock. Every call is fire-and-forget: errors are logged, nothing is retried
// or rolled back.
func (b *Book) emit(ctx context.Context, fx *effects) {
	for _, o := range fx.touched {
		if b.store != nil {
			if err := b.store.RecordFill(ctx, o.ID(), o.FilledQuantity(), o.Status()); err != nil {
				b.log.ErrorContext(ctx, err, logger.NewField("book_id", b.id), logger.NewField("order_id", o.ID()))
			}
		}
	}

	for _, t := range fx.trades {
		if b.settler != nil {
			instruction := settlementv1.Instruction{
				BuyerID:     t.BuyerID(),
				SellerID:    t.SellerID(),
				AssetID:     t.AssetID(),
				Quantity:    t.Quantity(),
				Price:       t.Price(),
				BuyOrderID:  t.BuyOrderID(),
				SellOrderID: t.SellOrderID(),
			}
			if err := b.settler.Settle(ctx, instruction); err != nil {
				b.log.ErrorContext(ctx, err, logger.NewField("book_id", b.id), logger.NewField("trade_id", t.ID()))
			}
		}
		if b.store != nil {
			if err := b.store.RecordTrade(ctx, t); err != nil {
				b.log.ErrorContext(ctx, err, logger.NewField("book_id", b.id), logger.NewField("trade_id", t.ID()))
			}
		}
		if b.publisher != nil {
			if err := b.publisher.PublishExecution(ctx, t); err != nil {
				b.log.ErrorContext(ctx, err, logger.NewField("book_id", b.id), logger.NewField("trade_id", t.ID()))
			}
		}
	}

	if b.publisher != nil {
		for _, o := range fx.touched {
			if !o.IsFilled() {
				continue
			}
			if err := b.publisher.PublishOrderUpdate(ctx, o); err != nil {
				b.log.ErrorContext(ctx, err, logger.NewField("book_id", b.id), logger.NewField("order_id", o.ID()))
			}
		}
	}
}

func (b *Book) oppositeLadder(side orderv1.Side) *ladder {
	if side == orderv1.SideBuy {
		return b.asks
	}
	return b.bids
}

func (b *Book) sameLadder(side orderv1.Side) *ladder {
	if side == orderv1.SideBuy {
		return b.bids
	}
	return b.asks
}

// BestBid returns the highest bid level. ok is false on an empty side; the
// zero Quote carries no meaning then.
func (b *Book) BestBid() (Quote, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return quoteOf(b.bids)
}

// BestAsk returns the lowest ask level. ok is false on an empty side.
func (b *Book) BestAsk() (Quote, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return quoteOf(b.asks)
}

func quoteOf(l *ladder) (Quote, bool) {
	lvl, ok := l.best()
	if !ok {
		return Quote{}, false
	}
	return Quote{
		Price:  lvl.price,
		Orders: append([]*orderv1.Order(nil), lvl.orders...),
	}, true
}

// LastTradePrice returns the most recent execution price. ok is false until
// the first trade.
func (b *Book) LastTradePrice() (pricev1.Price, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.lastTrade == nil {
		return pricev1.Price{}, false
	}
	return *b.lastTrade, true
}

// TradeHistory returns a copy of every trade this book has executed, in
// execution order.
func (b *Book) TradeHistory() []*tradev1.CompletedTrade {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]*tradev1.CompletedTrade(nil), b.history...)
}

// BidCount returns the number of orders resting on the bid side.
func (b *Book) BidCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.bids.size()
}

// AskCount returns the number of orders resting on the ask side.
func (b *Book) AskCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.asks.size()
}

// StopOrderCount returns the number of dormant stop and stop-limit orders.
func (b *Book) StopOrderCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.stopBids.size() + b.stopAsks.size() + b.stopLimitBids.size() + b.stopLimitAsks.size()
}

// BidLevels returns a best-first snapshot of the bid side.
func (b *Book) BidLevels() []Quote {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return quotesOf(b.bids)
}

// AskLevels returns a best-first snapshot of the ask side.
func (b *Book) AskLevels() []Quote {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return quotesOf(b.asks)
}

func quotesOf(l *ladder) []Quote {
	levels := l.levels()
	out := make([]Quote, 0, len(levels))
	for _, lvl := range levels {
		out = append(out, Quote{Price: lvl.price, Orders: lvl.orders})
	}
	return out
}
