package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	"github.com/xikronz/XKRexhange/internal/app/engine"
	"github.com/xikronz/XKRexhange/internal/usecase/orderstore"
	tradepublisher "github.com/xikronz/XKRexhange/internal/usecase/trade-publisher"
	"github.com/xikronz/XKRexhange/internal/usecase/wallet"
	"github.com/xikronz/XKRexhange/pkg/config"
	"github.com/xikronz/XKRexhange/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.NewLogger(logger.WithLoggingLevel(logger.Level(cfg.LogLevel)))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := orderstore.Open(cfg.OrderStore.Dir, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error(err)
		}
	}()

	publisher := tradepublisher.New(cfg.TradePublisher.Brokers, cfg.TradePublisher.Topic, log)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error(err)
		}
	}()

	eng, err := engine.New(engine.Options{
		Store:     store,
		Settler:   wallet.New(log),
		Publisher: publisher,
		Log:       log,
	})
	if err != nil {
		return fmt.Errorf("init engine: %w", err)
	}

	tick, err := decimal.NewFromString(cfg.Listing.Tick)
	if err != nil {
		return fmt.Errorf("parse tick size %q: %w", cfg.Listing.Tick, err)
	}
	if _, _, err := eng.List(cfg.Listing.Name, cfg.Listing.Ticker, tick); err != nil {
		return fmt.Errorf("list asset %s: %w", cfg.Listing.Ticker, err)
	}

	eng.Start()
	<-ctx.Done()
	log.Info("shutdown signal received")
	eng.Stop()
	return nil
}
