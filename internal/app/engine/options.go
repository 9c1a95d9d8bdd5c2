package engine

import (
	orderstorev1 "github.com/xikronz/XKRexhange/internal/domain/orderstore/v1"
	publisherv1 "github.com/xikronz/XKRexhange/internal/domain/publisher/v1"
	settlementv1 "github.com/xikronz/XKRexhange/internal/domain/settlement/v1"
	"github.com/xikronz/XKRexhange/pkg/logger"
)

// Options wires the engine's collaborators. Every field is optional; a zero
// Options yields an engine that matches orders with no side effects and logs
// at the default level.
type Options struct {
	Store     orderstorev1.Store
	Settler   settlementv1.Settler
	Publisher publisherv1.TradePublisher
	Log       logger.Interface
}

func (o Options) withDefaults() (Options, error) {
	if o.Log == nil {
		log, err := logger.NewLogger()
		if err != nil {
			return o, err
		}
		o.Log = log
	}
	return o, nil
}
