package orderbook

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderv1 "github.com/xikronz/XKRexhange/internal/domain/order/v1"
	settlementv1 "github.com/xikronz/XKRexhange/internal/domain/settlement/v1"
	tradev1 "github.com/xikronz/XKRexhange/internal/domain/trade/v1"
	"github.com/xikronz/XKRexhange/pkg/util"
)

type storeFake struct {
	mu         sync.Mutex
	newOrders  []int64
	fills      map[int64]orderv1.Status
	trades     []int64
	requestIDs []string
	fail       bool
}

func newStoreFake() *storeFake {
	return &storeFake{fills: make(map[int64]orderv1.Status)}
}

func (s *storeFake) RecordNewOrder(ctx context.Context, order *orderv1.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("store down")
	}
	s.newOrders = append(s.newOrders, order.ID())
	s.requestIDs = append(s.requestIDs, util.GetRequestID(ctx))
	return nil
}

func (s *storeFake) RecordFill(_ context.Context, orderID int64, _ int64, status orderv1.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("store down")
	}
	s.fills[orderID] = status
	return nil
}

func (s *storeFake) RecordTrade(_ context.Context, trade *tradev1.CompletedTrade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("store down")
	}
	s.trades = append(s.trades, trade.ID())
	return nil
}

type publisherFake struct {
	mu         sync.Mutex
	executions []int64
	updates    []int64
}

func (p *publisherFake) PublishExecution(_ context.Context, trade *tradev1.CompletedTrade) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.executions = append(p.executions, trade.ID())
	return nil
}

func (p *publisherFake) PublishOrderUpdate(_ context.Context, order *orderv1.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, order.ID())
	return nil
}

type settlerFake struct {
	mu           sync.Mutex
	instructions []settlementv1.Instruction
}

func (s *settlerFake) Settle(_ context.Context, instruction settlementv1.Instruction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instructions = append(s.instructions, instruction)
	return nil
}

// Test 1: a match fans out to persistence, settlement and notification
func TestBook_CollaboratorFanout(t *testing.T) {
	store := newStoreFake()
	pub := &publisherFake{}
	settler := &settlerFake{}

	b, ids := newTestBook(t, WithStore(store), WithSettler(settler), WithPublisher(pub))

	sell := mustLimit(t, b, ids, 1, orderv1.SideSell, 100, "100.00")
	b.process(sell)
	buy := mustMarket(t, b, ids, 2, orderv1.SideBuy, 100)
	b.process(buy)

	assert.Equal(t, []int64{sell.ID(), buy.ID()}, store.newOrders)
	assert.Equal(t, orderv1.StatusFilled, store.fills[sell.ID()])
	assert.Equal(t, orderv1.StatusFilled, store.fills[buy.ID()])
	require.Len(t, store.trades, 1)

	require.Len(t, settler.instructions, 1)
	instruction := settler.instructions[0]
	assert.Equal(t, int64(2), instruction.BuyerID)
	assert.Equal(t, int64(1), instruction.SellerID)
	assert.Equal(t, int64(100), instruction.Quantity)
	assert.Equal(t, buy.ID(), instruction.BuyOrderID)
	assert.Equal(t, sell.ID(), instruction.SellOrderID)

	assert.Equal(t, store.trades, pub.executions)
	// one terminal update per fully filled order
	assert.ElementsMatch(t, []int64{sell.ID(), buy.ID()}, pub.updates)

	// each processing cycle carries its own request id
	require.Len(t, store.requestIDs, 2)
	assert.NotEmpty(t, store.requestIDs[0])
	assert.NotEmpty(t, store.requestIDs[1])
	assert.NotEqual(t, store.requestIDs[0], store.requestIDs[1])
}

// Test 2: collaborator failures never affect matching
func TestBook_CollaboratorFailureIgnored(t *testing.T) {
	store := newStoreFake()
	store.fail = true

	b, ids := newTestBook(t, WithStore(store))

	b.process(mustLimit(t, b, ids, 1, orderv1.SideSell, 100, "100.00"))
	b.process(mustMarket(t, b, ids, 2, orderv1.SideBuy, 40))

	require.Len(t, b.TradeHistory(), 1)
	assert.Equal(t, int64(40), b.TradeHistory()[0].Quantity())
	assert.Empty(t, store.trades)
}
