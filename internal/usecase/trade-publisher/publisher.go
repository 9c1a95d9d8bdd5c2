package tradepublisher

import (
	"context"
	"encoding/json"

	"github.com/oklog/ulid/v2"
	"github.com/segmentio/kafka-go"

	orderv1 "github.com/xikronz/XKRexhange/internal/domain/order/v1"
	publisherv1 "github.com/xikronz/XKRexhange/internal/domain/publisher/v1"
	tradev1 "github.com/xikronz/XKRexhange/internal/domain/trade/v1"
	"github.com/xikronz/XKRexhange/pkg/errors"
	"github.com/xikronz/XKRexhange/pkg/logger"
)

// Publisher emits execution reports and order updates to a kafka topic.
// Messages are keyed by ticker so all events for one asset stay in order on
// one partition. Event ids are ULIDs, sortable by emission time.
type Publisher struct {
	writer *kafka.Writer
	log    logger.Interface
}

var _ publisherv1.TradePublisher = (*Publisher)(nil)

// New creates a publisher writing to the given brokers and topic.
func New(brokers []string, topic string, log logger.Interface) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
		log: log,
	}
}

// Close flushes pending messages and closes the writer.
func (p *Publisher) Close() error {
	if err := p.writer.Close(); err != nil {
		return errors.NewTracer("failed to close trade publisher").Wrap(err)
	}
	return nil
}

func (p *Publisher) publish(ctx context.Context, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return errors.NewTracer("failed to marshal event payload").Wrap(err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
	if err != nil {
		return errors.NewTracer("failed to publish event").Wrap(err)
	}
	return nil
}

// PublishExecution emits one execution report per completed trade.
func (p *Publisher) PublishExecution(ctx context.Context, trade *tradev1.CompletedTrade) error {
	eventID := ulid.Make().String()
	payload := publisherv1.NewExecutionReportPayload(eventID, trade)
	if err := p.publish(ctx, trade.Ticker(), payload); err != nil {
		return err
	}
	p.log.DebugContext(ctx, "execution report published",
		logger.NewField("event_id", eventID),
		logger.NewField("trade_id", trade.ID()),
	)
	return nil
}

// PublishOrderUpdate emits one report per terminal order-state change.
func (p *Publisher) PublishOrderUpdate(ctx context.Context, order *orderv1.Order) error {
	eventID := ulid.Make().String()
	payload := publisherv1.NewOrderUpdatePayload(eventID, order)
	if err := p.publish(ctx, order.Ticker(), payload); err != nil {
		return err
	}
	p.log.DebugContext(ctx, "order update published",
		logger.NewField("event_id", eventID),
		logger.NewField("order_id", order.ID()),
	)
	return nil
}
