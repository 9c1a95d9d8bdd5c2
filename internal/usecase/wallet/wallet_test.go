package wallet

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pricev1 "github.com/xikronz/XKRexhange/internal/domain/price/v1"
	settlementv1 "github.com/xikronz/XKRexhange/internal/domain/settlement/v1"
	"github.com/xikronz/XKRexhange/pkg/logger"
)

func testWallet(t *testing.T) *Wallet {
	t.Helper()
	log, err := logger.NewLogger(logger.WithLoggingLevel(logger.ErrorLevel))
	require.NoError(t, err)
	return New(log)
}

// Test 1: settlement moves cash and holdings in opposite directions
func TestWallet_Settle(t *testing.T) {
	w := testWallet(t)
	w.Deposit(1, decimal.RequireFromString("1000.00"))
	w.Grant(2, 5, 100)

	err := w.Settle(context.Background(), settlementv1.Instruction{
		BuyerID:  1,
		SellerID: 2,
		AssetID:  5,
		Quantity: 3,
		Price:    pricev1.MustParse("100.10"),
	})
	require.NoError(t, err)

	assert.True(t, w.CashBalance(1).Equal(decimal.RequireFromString("699.70")))
	assert.True(t, w.CashBalance(2).Equal(decimal.RequireFromString("300.30")))
	assert.Equal(t, int64(3), w.Holdings(1, 5))
	assert.Equal(t, int64(97), w.Holdings(2, 5))
}

// Test 2: sufficiency checks reflect balances without mutating them
func TestWallet_SufficiencyChecks(t *testing.T) {
	w := testWallet(t)
	w.Deposit(1, decimal.RequireFromString("500.00"))
	w.Grant(2, 5, 10)

	assert.True(t, w.CanAfford(1, decimal.RequireFromString("500.00")))
	assert.False(t, w.CanAfford(1, decimal.RequireFromString("500.01")))
	assert.True(t, w.HasHoldings(2, 5, 10))
	assert.False(t, w.HasHoldings(2, 5, 11))
	assert.False(t, w.HasHoldings(3, 5, 1))
}

// Test 3: settlement never rejects, balances may go negative
func TestWallet_NegativeBalances(t *testing.T) {
	w := testWallet(t)

	err := w.Settle(context.Background(), settlementv1.Instruction{
		BuyerID:  1,
		SellerID: 2,
		AssetID:  5,
		Quantity: 10,
		Price:    pricev1.MustParse("50.00"),
	})
	require.NoError(t, err)

	assert.True(t, w.CashBalance(1).IsNegative())
	assert.Equal(t, int64(-10), w.Holdings(2, 5))
}
