package assetv1

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	identityv1 "github.com/xikronz/XKRexhange/internal/domain/identity/v1"
)

var (
	// ErrInvalidTicker is returned when a listing has an empty ticker.
	ErrInvalidTicker = errors.New("ticker must not be empty")
	// ErrInvalidTickSize is returned when a listing has a non-positive tick size.
	ErrInvalidTickSize = errors.New("tick size must be positive")
)

// Asset is the identity and trading metadata of one listed instrument.
// All fields are fixed at listing time.
type Asset struct {
	id     int64
	name   string
	ticker string
	tick   decimal.Decimal
}

// New creates a listed asset. The ticker is normalized to upper case; tick is
// the minimum price increment for the asset's book.
func New(ids *identityv1.Allocator, name, ticker string, tick decimal.Decimal) (*Asset, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, ErrInvalidTicker
	}
	if tick.Sign() <= 0 {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidTickSize, tick)
	}

	return &Asset{
		id:     ids.Next(identityv1.KindAsset),
		name:   name,
		ticker: ticker,
		tick:   tick,
	}, nil
}

// ID returns the asset identifier.
func (a *Asset) ID() int64 {
	return a.id
}

// Name returns the display name.
func (a *Asset) Name() string {
	return a.name
}

// Ticker returns the exchange-unique ticker symbol.
func (a *Asset) Ticker() string {
	return a.ticker
}

// Tick returns the minimum price increment.
func (a *Asset) Tick() decimal.Decimal {
	return a.tick
}

func (a *Asset) String() string {
	return fmt.Sprintf("%s (%s)", a.ticker, a.name)
}
