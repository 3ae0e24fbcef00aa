// Package config provides configuration loading and validation.
// All values are read once at startup and immutable thereafter; validation
// failures are fatal and halt the process before the monitor starts.
package config

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/fd1az/dex-monitor/internal/apperror"
)

// Venue identifiers for the two legs of the round trip.
const (
	VenueUniswapV3   = "UNISWAP_V3"
	VenueSushiswapV3 = "SUSHISWAP_V3"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig              `mapstructure:"app"`
	Ethereum  EthereumConfig         `mapstructure:"ethereum"`
	Venues    map[string]VenueConfig `mapstructure:"venues"`
	Gas       GasConfig              `mapstructure:"gas"`
	Oracle    OracleConfig           `mapstructure:"oracle"`
	Monitor   MonitorConfig          `mapstructure:"monitor"`
	Database  DatabaseConfig         `mapstructure:"database"`
	Server    ServerConfig           `mapstructure:"server"`
	Telemetry TelemetryConfig        `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// EthereumConfig holds RPC node configuration.
type EthereumConfig struct {
	HTTPURL string `mapstructure:"http_url"`
	ChainID uint64 `mapstructure:"chain_id"`
}

// VenueConfig holds per-venue contract addresses.
type VenueConfig struct {
	QuoterAddress string `mapstructure:"quoter_address"`
	RouterAddress string `mapstructure:"router_address"`
}

// QuoterAddressHex returns the quoter address as common.Address.
func (c *VenueConfig) QuoterAddressHex() common.Address {
	return common.HexToAddress(c.QuoterAddress)
}

// RouterAddressHex returns the router address as common.Address.
func (c *VenueConfig) RouterAddressHex() common.Address {
	return common.HexToAddress(c.RouterAddress)
}

// GasConfig holds gas price adjustment parameters.
type GasConfig struct {
	PriceMultiplier float64       `mapstructure:"price_multiplier"`
	MaxPriceGwei    float64       `mapstructure:"max_price_gwei"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
}

// PriceMultiplierDecimal returns the multiplier as decimal.Decimal.
func (c *GasConfig) PriceMultiplierDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.PriceMultiplier)
}

// MaxPriceGweiDecimal returns the gas price cap as decimal.Decimal.
func (c *GasConfig) MaxPriceGweiDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MaxPriceGwei)
}

// Price oracle sources.
const (
	OracleSourceStatic  = "static"
	OracleSourceBinance = "binance"
)

// OracleConfig holds the native-asset fiat price source. A static price is
// the default; the binance source fetches a live ticker and falls back to
// the static price when the feed is unavailable.
type OracleConfig struct {
	Source         string        `mapstructure:"source"`
	NativePriceUSD float64       `mapstructure:"native_price_usd"`
	Symbol         string        `mapstructure:"symbol"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
}

// PairConfig is one watched token pair with its probe amount in display units.
type PairConfig struct {
	TokenIn  string `mapstructure:"token_in"`
	TokenOut string `mapstructure:"token_out"`
	AmountIn string `mapstructure:"amount_in"`
}

// MonitorConfig holds the evaluation loop parameters.
type MonitorConfig struct {
	Interval     time.Duration `mapstructure:"interval"`
	CycleTimeout time.Duration `mapstructure:"cycle_timeout"`
	// MinProfitThreshold is scaled by /100 before comparison: a value of 30
	// flags opportunities whose ROI exceeds 0.3%.
	MinProfitThreshold float64      `mapstructure:"min_profit_threshold"`
	BuyVenue           string       `mapstructure:"buy_venue"`
	SellVenue          string       `mapstructure:"sell_venue"`
	Pairs              []PairConfig `mapstructure:"pairs"`
}

// MinProfitThresholdDecimal returns the threshold as decimal.Decimal.
func (c *MonitorConfig) MinProfitThresholdDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinProfitThreshold)
}

// DatabaseConfig holds PostgreSQL connection settings. An empty DSN selects
// the in-memory store (no persistence across restarts).
type DatabaseConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int    `mapstructure:"max_conns"`
}

// ServerConfig holds the HTTP API settings. A RateLimitPerMinute of zero
// disables request throttling.
type ServerConfig struct {
	Port               int      `mapstructure:"port"`
	CORSOrigins        []string `mapstructure:"cors_origins"`
	RateLimitPerMinute int      `mapstructure:"rate_limit_per_minute"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	ServiceName  string `mapstructure:"service_name"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	ZipkinURL    string `mapstructure:"zipkin_url"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("DEXMON")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// No config file is fine, env vars and defaults apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("app.name", "DEXMON_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "DEXMON_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "DEXMON_LOG_LEVEL", "LOG_LEVEL")

	v.BindEnv("ethereum.http_url", "DEXMON_ETH_HTTP_URL", "MAINNET_RPC_URL")
	v.BindEnv("ethereum.chain_id", "DEXMON_ETH_CHAIN_ID", "ETH_CHAIN_ID")

	v.BindEnv("gas.price_multiplier", "DEXMON_GAS_PRICE_MULTIPLIER", "GAS_PRICE_MULTIPLIER")
	v.BindEnv("gas.max_price_gwei", "DEXMON_MAX_GAS_PRICE_GWEI", "MAX_GAS_PRICE_GWEI")

	v.BindEnv("oracle.native_price_usd", "DEXMON_NATIVE_PRICE_USD")

	v.BindEnv("monitor.min_profit_threshold", "DEXMON_MIN_PROFIT_THRESHOLD", "MIN_PROFIT_THRESHOLD")

	v.BindEnv("database.dsn", "DEXMON_DATABASE_DSN", "DATABASE_URL")

	v.BindEnv("server.port", "DEXMON_SERVER_PORT", "PORT")

	v.BindEnv("telemetry.enabled", "DEXMON_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "DEXMON_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "DEXMON_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	v.BindEnv("telemetry.zipkin_url", "DEXMON_ZIPKIN_URL", "ZIPKIN_URL")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "dex-monitor")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("ethereum.chain_id", 1)

	// Uniswap V3 and SushiSwap V3 on Ethereum Mainnet.
	v.SetDefault("venues."+VenueUniswapV3+".quoter_address", "0x61fFE014bA17989E743c5F6cB21bF9697530B21e")
	v.SetDefault("venues."+VenueUniswapV3+".router_address", "0xE592427A0AEce92De3Edee1F18E0157C05861564")
	v.SetDefault("venues."+VenueSushiswapV3+".quoter_address", "0x64e8802FE490fa7cc61d3463958199161Bb608A7")
	v.SetDefault("venues."+VenueSushiswapV3+".router_address", "0x1b02dA8Cb0d097eB8D57A175b88c7D8b47997506")

	v.SetDefault("gas.price_multiplier", 1.2)
	v.SetDefault("gas.max_price_gwei", 100)
	v.SetDefault("gas.cache_ttl", "12s")

	v.SetDefault("oracle.source", OracleSourceStatic)
	v.SetDefault("oracle.native_price_usd", 4000)
	v.SetDefault("oracle.symbol", "ETHUSDT")
	v.SetDefault("oracle.cache_ttl", "30s")

	v.SetDefault("monitor.interval", "30s")
	v.SetDefault("monitor.cycle_timeout", "20s")
	v.SetDefault("monitor.min_profit_threshold", 30)
	v.SetDefault("monitor.buy_venue", VenueUniswapV3)
	v.SetDefault("monitor.sell_venue", VenueSushiswapV3)
	v.SetDefault("monitor.pairs", []map[string]any{{
		"token_in":  "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", // WETH
		"token_out": "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", // USDC
		"amount_in": "1",
	}})

	v.SetDefault("database.max_conns", 8)

	v.SetDefault("server.port", 3000)
	v.SetDefault("server.rate_limit_per_minute", 300)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "dex-monitor")
}

func configError(format string, args ...any) error {
	return apperror.New(apperror.CodeConfigurationError,
		apperror.WithContext(fmt.Sprintf(format, args...)))
}

// Validate validates the configuration. Any error here is fatal.
func (c *Config) Validate() error {
	if c.Ethereum.HTTPURL == "" {
		return configError("ethereum.http_url is required")
	}

	for name, venue := range c.Venues {
		if !common.IsHexAddress(venue.QuoterAddress) {
			return configError("invalid quoter_address for venue %s: %s", name, venue.QuoterAddress)
		}
		if !common.IsHexAddress(venue.RouterAddress) {
			return configError("invalid router_address for venue %s: %s", name, venue.RouterAddress)
		}
	}

	if _, ok := c.Venues[c.Monitor.BuyVenue]; !ok {
		return configError("monitor.buy_venue %q is not a configured venue", c.Monitor.BuyVenue)
	}
	if _, ok := c.Venues[c.Monitor.SellVenue]; !ok {
		return configError("monitor.sell_venue %q is not a configured venue", c.Monitor.SellVenue)
	}

	// The multiplier is a safety margin on the node's suggestion; below 1 it
	// would underestimate, and below 0.01 it truncates to a zero price.
	if c.Gas.PriceMultiplier < 1 {
		return configError("gas.price_multiplier must be at least 1, got %v", c.Gas.PriceMultiplier)
	}
	if c.Gas.MaxPriceGwei <= 0 {
		return configError("gas.max_price_gwei must be positive, got %v", c.Gas.MaxPriceGwei)
	}

	if c.Oracle.Source != OracleSourceStatic && c.Oracle.Source != OracleSourceBinance {
		return configError("oracle.source must be %q or %q, got %q",
			OracleSourceStatic, OracleSourceBinance, c.Oracle.Source)
	}
	if c.Oracle.NativePriceUSD <= 0 {
		return configError("oracle.native_price_usd must be positive, got %v", c.Oracle.NativePriceUSD)
	}

	if c.Monitor.Interval <= 0 {
		return configError("monitor.interval must be positive, got %v", c.Monitor.Interval)
	}
	if c.Monitor.CycleTimeout <= 0 || c.Monitor.CycleTimeout >= c.Monitor.Interval {
		return configError("monitor.cycle_timeout must be positive and below monitor.interval, got %v", c.Monitor.CycleTimeout)
	}
	if c.Monitor.MinProfitThreshold < 0 {
		return configError("monitor.min_profit_threshold must be non-negative, got %v", c.Monitor.MinProfitThreshold)
	}

	if len(c.Monitor.Pairs) == 0 {
		return configError("monitor.pairs cannot be empty")
	}
	for i, pair := range c.Monitor.Pairs {
		if !common.IsHexAddress(pair.TokenIn) {
			return configError("invalid token_in for pair %d: %s", i, pair.TokenIn)
		}
		if !common.IsHexAddress(pair.TokenOut) {
			return configError("invalid token_out for pair %d: %s", i, pair.TokenOut)
		}
		amt, err := decimal.NewFromString(pair.AmountIn)
		if err != nil || !amt.IsPositive() {
			return configError("amount_in for pair %d must be a positive decimal, got %q", i, pair.AmountIn)
		}
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return configError("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Server.RateLimitPerMinute < 0 {
		return configError("server.rate_limit_per_minute must be non-negative, got %d", c.Server.RateLimitPerMinute)
	}

	return nil
}
