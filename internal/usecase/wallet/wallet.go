package wallet

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	settlementv1 "github.com/xikronz/XKRexhange/internal/domain/settlement/v1"
	"github.com/xikronz/XKRexhange/pkg/logger"
)

// account holds one client's cash and per-asset holdings.
type account struct {
	cash     decimal.Decimal
	holdings map[int64]int64
}

// Wallet is an in-memory settlement collaborator: it moves cash from buyer to
// seller and the asset the other way, once per trade. Balances may go
// negative; margin checks belong to an admission layer in front of the book,
// not to settlement, which must never reject a completed trade.
type Wallet struct {
	mu       sync.Mutex
	accounts map[int64]*account
	log      logger.Interface
}

var _ settlementv1.Settler = (*Wallet)(nil)

// New creates an empty wallet.
func New(log logger.Interface) *Wallet {
	return &Wallet{
		accounts: make(map[int64]*account),
		log:      log,
	}
}

func (w *Wallet) account(clientID int64) *account {
	acct, ok := w.accounts[clientID]
	if !ok {
		acct = &account{holdings: make(map[int64]int64)}
		w.accounts[clientID] = acct
	}
	return acct
}

// Deposit credits cash to a client.
func (w *Wallet) Deposit(clientID int64, amount decimal.Decimal) {
	w.mu.Lock()
	defer w.mu.Unlock()
	acct := w.account(clientID)
	acct.cash = acct.cash.Add(amount)
}

// Grant credits asset holdings to a client.
func (w *Wallet) Grant(clientID int64, assetID int64, quantity int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.account(clientID).holdings[assetID] += quantity
}

// Settle applies one trade: cash moves buyer to seller, the asset moves
// seller to buyer.
func (w *Wallet) Settle(_ context.Context, instruction settlementv1.Instruction) error {
	total := instruction.Price.Value().Mul(decimal.NewFromInt(instruction.Quantity))

	w.mu.Lock()
	defer w.mu.Unlock()

	buyer := w.account(instruction.BuyerID)
	seller := w.account(instruction.SellerID)

	buyer.cash = buyer.cash.Sub(total)
	seller.cash = seller.cash.Add(total)
	buyer.holdings[instruction.AssetID] += instruction.Quantity
	seller.holdings[instruction.AssetID] -= instruction.Quantity

	if buyer.cash.IsNegative() {
		w.log.Warn("buyer cash balance went negative",
			logger.NewField("client_id", instruction.BuyerID),
			logger.NewField("balance", buyer.cash.String()),
		)
	}
	if seller.holdings[instruction.AssetID] < 0 {
		w.log.Warn("seller holdings went negative",
			logger.NewField("client_id", instruction.SellerID),
			logger.NewField("asset_id", instruction.AssetID),
			logger.NewField("holdings", seller.holdings[instruction.AssetID]),
		)
	}
	return nil
}

// CanAfford reports whether a client's cash covers the given amount. An
// admission layer calls this before submitting a buy; settlement itself
// never does.
func (w *Wallet) CanAfford(clientID int64, amount decimal.Decimal) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.account(clientID).cash.GreaterThanOrEqual(amount)
}

// HasHoldings reports whether a client holds at least quantity of an asset.
func (w *Wallet) HasHoldings(clientID int64, assetID int64, quantity int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.account(clientID).holdings[assetID] >= quantity
}

// CashBalance returns a client's cash balance.
func (w *Wallet) CashBalance(clientID int64) decimal.Decimal {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.account(clientID).cash
}

// Holdings returns a client's position in one asset.
func (w *Wallet) Holdings(clientID int64, assetID int64) int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.account(clientID).holdings[assetID]
}
