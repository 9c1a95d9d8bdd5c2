package router

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	orderv1 "github.com/xikronz/XKRexhange/internal/domain/order/v1"
	"github.com/xikronz/XKRexhange/internal/usecase/orderbook"
	"github.com/xikronz/XKRexhange/pkg/logger"
)

var (
	// ErrUnknownAsset is returned when no book is registered for a ticker.
	ErrUnknownAsset = errors.New("unknown asset")
	// ErrDuplicateAsset is returned when a ticker is registered twice.
	ErrDuplicateAsset = errors.New("asset already registered")
)

// Router maps tickers to their order books and forwards incoming orders to
// the right one. Lookups are case-insensitive on the ticker.
type Router struct {
	mu    sync.RWMutex
	books map[string]*orderbook.Book
	log   logger.Interface
}

// New creates an empty router.
func New(log logger.Interface) *Router {
	return &Router{
		books: make(map[string]*orderbook.Book),
		log:   log,
	}
}

// Register adds a book under its asset's ticker.
func (r *Router) Register(book *orderbook.Book) error {
	ticker := strings.ToUpper(book.Asset().Ticker())

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.books[ticker]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateAsset, ticker)
	}
	r.books[ticker] = book

	r.log.Info("asset registered",
		logger.NewField("ticker", ticker),
		logger.NewField("book_id", book.ID()),
	)
	return nil
}

// Route submits an order to the book trading the given ticker.
func (r *Router) Route(ticker string, order *orderv1.Order) error {
	book, err := r.Resolve(ticker)
	if err != nil {
		return err
	}
	book.Submit(order)
	return nil
}

// Resolve returns the book registered for a ticker.
func (r *Router) Resolve(ticker string) (*orderbook.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	book, ok := r.books[strings.ToUpper(ticker)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAsset, ticker)
	}
	return book, nil
}

// Tickers lists every registered ticker, sorted.
func (r *Router) Tickers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tickers := make([]string, 0, len(r.books))
	for ticker := range r.books {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)
	return tickers
}

// Books returns every registered book.
func (r *Router) Books() []*orderbook.Book {
	r.mu.RLock()
	defer r.mu.RUnlock()
	books := make([]*orderbook.Book, 0, len(r.books))
	for _, book := range r.books {
		books = append(books, book)
	}
	return books
}
