package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the runtime configuration for the matching engine process.
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Listing        ListingConfig
	TradePublisher TradePublisherConfig
	OrderStore     OrderStoreConfig
}

// ListingConfig describes the asset listed at startup.
type ListingConfig struct {
	Name   string `env:"ASSET_NAME" envDefault:"Tesla Inc"`
	Ticker string `env:"ASSET_TICKER" envDefault:"TSLA"`
	Tick   string `env:"ASSET_TICK" envDefault:"0.01"`
}

// TradePublisherConfig configures the Kafka execution report publisher.
type TradePublisherConfig struct {
	Brokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	Topic   string   `env:"KAFKA_TRADES_TOPIC" envDefault:"trades"`
}

// OrderStoreConfig configures the embedded order/trade store.
type OrderStoreConfig struct {
	Dir string `env:"ORDER_STORE_DIR" envDefault:"data/orders"`
}

// Load reads configuration from the environment, loading a .env file first
// when one is present.
func Load() (*Config, error) {
	// missing .env is fine, the environment may be set directly
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
