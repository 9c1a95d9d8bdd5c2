package orderstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/cockroachdb/pebble"
	pkgerrors "github.com/pkg/errors"

	orderv1 "github.com/xikronz/XKRexhange/internal/domain/order/v1"
	orderstorev1 "github.com/xikronz/XKRexhange/internal/domain/orderstore/v1"
	tradev1 "github.com/xikronz/XKRexhange/internal/domain/trade/v1"
	"github.com/xikronz/XKRexhange/pkg/logger"
)

// key prefixes. Identifiers are encoded big-endian behind the prefix so a
// prefix scan walks records in id order.
const (
	prefixOrder byte = 'o'
	prefixFill  byte = 'f'
	prefixTrade byte = 't'
)

// Store persists orders, fills and trades in an embedded pebble database.
// Writes are synced so an accepted record survives a crash.
type Store struct {
	db  *pebble.DB
	log logger.Interface
}

var _ orderstorev1.Store = (*Store)(nil)

// OrderRecord is the stored shape of an accepted order.
type OrderRecord struct {
	OrderID      int64     `json:"orderID"`
	ClientID     int64     `json:"clientID"`
	AssetID      int64     `json:"assetID"`
	Ticker       string    `json:"ticker"`
	Type         string    `json:"type"`
	Side         string    `json:"side"`
	Quantity     int64     `json:"quantity"`
	LimitPrice   string    `json:"limitPrice,omitempty"`
	TriggerPrice string    `json:"triggerPrice,omitempty"`
	AcceptedAt   time.Time `json:"acceptedAt"`
}

// FillRecord is the stored shape of an order's latest fill state. Each new
// fill overwrites the previous record for the order.
type FillRecord struct {
	OrderID        int64     `json:"orderID"`
	FilledQuantity int64     `json:"filledQuantity"`
	Status         string    `json:"status"`
	RecordedAt     time.Time `json:"recordedAt"`
}

// TradeRecord is the stored shape of one completed trade.
type TradeRecord struct {
	TradeID     int64     `json:"tradeID"`
	Ticker      string    `json:"ticker"`
	BuyOrderID  int64     `json:"buyOrderID"`
	SellOrderID int64     `json:"sellOrderID"`
	BuyerID     int64     `json:"buyerID"`
	SellerID    int64     `json:"sellerID"`
	Quantity    int64     `json:"quantity"`
	Price       string    `json:"price"`
	TotalValue  string    `json:"totalValue"`
	ExecutedAt  time.Time `json:"executedAt"`
}

// Open opens (or creates) the store at dir.
func Open(dir string, log logger.Interface) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "open order store")
	}
	log.Info("order store opened", logger.NewField("dir", dir))
	return &Store{db: db, log: log}, nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return pkgerrors.Wrap(s.db.Close(), "close order store")
}

func makeKey(prefix byte, id int64) []byte {
	key := make([]byte, 9)
	key[0] = prefix
	binary.BigEndian.PutUint64(key[1:], uint64(id))
	return key
}

func (s *Store) put(prefix byte, id int64, record any) error {
	value, err := json.Marshal(record)
	if err != nil {
		return pkgerrors.Wrap(err, "marshal record")
	}
	if err := s.db.Set(makeKey(prefix, id), value, pebble.Sync); err != nil {
		return pkgerrors.Wrap(err, "write record")
	}
	return nil
}

func (s *Store) get(prefix byte, id int64, record any) error {
	value, closer, err := s.db.Get(makeKey(prefix, id))
	if err != nil {
		return pkgerrors.Wrapf(err, "read record %d", id)
	}
	defer closer.Close()
	return pkgerrors.Wrap(json.Unmarshal(value, record), "unmarshal record")
}

// RecordNewOrder persists an order when the book accepts it.
func (s *Store) RecordNewOrder(_ context.Context, order *orderv1.Order) error {
	record := OrderRecord{
		OrderID:    order.ID(),
		ClientID:   order.ClientID(),
		AssetID:    order.AssetID(),
		Ticker:     order.Ticker(),
		Type:       order.Type().String(),
		Side:       order.Side().String(),
		Quantity:   order.Quantity(),
		AcceptedAt: time.Now().UTC(),
	}
	if p, ok := order.LimitPrice(); ok {
		record.LimitPrice = p.String()
	}
	if p, ok := order.StopPrice(); ok {
		record.TriggerPrice = p.String()
	}
	return s.put(prefixOrder, order.ID(), record)
}

// RecordFill persists an order's fill progress, overwriting earlier states.
func (s *Store) RecordFill(_ context.Context, orderID int64, filledQuantity int64, status orderv1.Status) error {
	return s.put(prefixFill, orderID, FillRecord{
		OrderID:        orderID,
		FilledQuantity: filledQuantity,
		Status:         status.String(),
		RecordedAt:     time.Now().UTC(),
	})
}

// RecordTrade persists one completed trade.
func (s *Store) RecordTrade(_ context.Context, trade *tradev1.CompletedTrade) error {
	return s.put(prefixTrade, trade.ID(), TradeRecord{
		TradeID:     trade.ID(),
		Ticker:      trade.Ticker(),
		BuyOrderID:  trade.BuyOrderID(),
		SellOrderID: trade.SellOrderID(),
		BuyerID:     trade.BuyerID(),
		SellerID:    trade.SellerID(),
		Quantity:    trade.Quantity(),
		Price:       trade.Price().String(),
		TotalValue:  trade.TotalValue().String(),
		ExecutedAt:  trade.ExecutedAt(),
	})
}

// GetOrder reads back an accepted order by id.
func (s *Store) GetOrder(id int64) (OrderRecord, error) {
	var record OrderRecord
	err := s.get(prefixOrder, id, &record)
	return record, err
}

// GetFill reads back the latest fill state of an order.
func (s *Store) GetFill(orderID int64) (FillRecord, error) {
	var record FillRecord
	err := s.get(prefixFill, orderID, &record)
	return record, err
}

// GetTrade reads back one trade by id.
func (s *Store) GetTrade(id int64) (TradeRecord, error) {
	var record TradeRecord
	err := s.get(prefixTrade, id, &record)
	return record, err
}

// Trades scans every stored trade in id order.
func (s *Store) Trades() ([]TradeRecord, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte{prefixTrade},
		UpperBound: []byte{prefixTrade + 1},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "open trade iterator")
	}
	defer iter.Close()

	var records []TradeRecord
	for iter.First(); iter.Valid(); iter.Next() {
		var record TradeRecord
		if err := json.Unmarshal(iter.Value(), &record); err != nil {
			return nil, pkgerrors.Wrap(err, "unmarshal trade record")
		}
		records = append(records, record)
	}
	if err := iter.Error(); err != nil {
		return nil, pkgerrors.Wrap(err, "scan trades")
	}
	return records, nil
}
