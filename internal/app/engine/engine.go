package engine

import (
	"sync"

	"github.com/shopspring/decimal"

	assetv1 "github.com/xikronz/XKRexhange/internal/domain/asset/v1"
	identityv1 "github.com/xikronz/XKRexhange/internal/domain/identity/v1"
	orderv1 "github.com/xikronz/XKRexhange/internal/domain/order/v1"
	"github.com/xikronz/XKRexhange/internal/usecase/orderbook"
	"github.com/xikronz/XKRexhange/internal/usecase/router"
	"github.com/xikronz/XKRexhange/pkg/logger"
)

// Engine is the top of the matching stack: it owns the identifier allocator,
// lists assets by creating the asset and its book as one unit, and routes
// incoming orders to the right book.
type Engine struct {
	ids    *identityv1.Allocator
	router *router.Router
	opts   Options
	log    logger.Interface

	mu      sync.Mutex
	running bool
}

// New creates an engine with no listed assets.
func New(opts Options) (*Engine, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	return &Engine{
		ids:    identityv1.NewAllocator(),
		router: router.New(opts.Log),
		opts:   opts,
		log:    opts.Log,
	}, nil
}

// List creates an asset and its order book as one unit and registers the pair
// for routing. The book starts immediately when the engine is running.
func (e *Engine) List(name, ticker string, tick decimal.Decimal) (*assetv1.Asset, *orderbook.Book, error) {
	asset, err := assetv1.New(e.ids, name, ticker, tick)
	if err != nil {
		return nil, nil, err
	}

	book := orderbook.NewBook(asset, e.ids, e.log, e.bookOptions()...)
	if err := e.router.Register(book); err != nil {
		return nil, nil, err
	}

	e.mu.Lock()
	if e.running {
		book.Start()
	}
	e.mu.Unlock()

	e.log.Info("asset listed",
		logger.NewField("ticker", asset.Ticker()),
		logger.NewField("asset_id", asset.ID()),
		logger.NewField("book_id", book.ID()),
	)
	return asset, book, nil
}

func (e *Engine) bookOptions() []orderbook.Option {
	var opts []orderbook.Option
	if e.opts.Store != nil {
		opts = append(opts, orderbook.WithStore(e.opts.Store))
	}
	if e.opts.Settler != nil {
		opts = append(opts, orderbook.WithSettler(e.opts.Settler))
	}
	if e.opts.Publisher != nil {
		opts = append(opts, orderbook.WithPublisher(e.opts.Publisher))
	}
	return opts
}

// Submit routes an order to the book trading the given ticker.
func (e *Engine) Submit(ticker string, order *orderv1.Order) error {
	return e.router.Route(ticker, order)
}

// Book returns the book trading the given ticker.
func (e *Engine) Book(ticker string) (*orderbook.Book, error) {
	return e.router.Resolve(ticker)
}

// Allocator exposes the engine's identifier allocator so callers can build
// orders against listed assets.
func (e *Engine) Allocator() *identityv1.Allocator {
	return e.ids
}

// Tickers lists every listed ticker.
func (e *Engine) Tickers() []string {
	return e.router.Tickers()
}

// Start launches the matching worker of every listed book. Idempotent.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return
	}
	e.running = true
	for _, book := range e.router.Books() {
		book.Start()
	}
	e.log.Info("engine started", logger.NewField("assets", len(e.router.Books())))
}

// Stop shuts every book's worker down and waits for them. Idempotent.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return
	}
	e.running = false
	for _, book := range e.router.Books() {
		book.Stop()
	}
	e.log.Info("engine stopped")
}
