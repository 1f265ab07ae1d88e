package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/bimakw/wallet-ranker/internal/domain/scoring"
	"github.com/bimakw/wallet-ranker/internal/retry"
)

// Config holds all configuration for the application
type Config struct {
	// Block explorer (transaction source) configuration
	Explorer ExplorerConfig

	// NFT marketplace (holdings source) configuration
	Marketplace MarketplaceConfig

	// JSON-RPC node configuration
	Ethereum EthereumConfig

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// API server configuration
	API APIConfig

	// Scoring configuration
	Scoring ScoringConfig

	// Recalculation worker configuration
	Worker WorkerConfig

	// Logging configuration
	Log LogConfig
}

// ExplorerConfig holds block explorer API settings
type ExplorerConfig struct {
	BaseURL        string        `envconfig:"EXPLORER_BASE_URL" default:"https://api.etherscan.io/v2/api"`
	APIKey         string        `envconfig:"EXPLORER_API_KEY" default:""`
	ChainID        int64         `envconfig:"EXPLORER_CHAIN_ID" default:"143"`
	PageSize       int           `envconfig:"EXPLORER_PAGE_SIZE" default:"10000"`
	RequestTimeout time.Duration `envconfig:"EXPLORER_REQUEST_TIMEOUT" default:"30s"`
	RateLimitRPS   float64       `envconfig:"EXPLORER_RATE_LIMIT_RPS" default:"3"`
	MaxAttempts    int           `envconfig:"EXPLORER_MAX_ATTEMPTS" default:"5"`
	InitialDelay   time.Duration `envconfig:"EXPLORER_INITIAL_DELAY" default:"1s"`
	MaxDelay       time.Duration `envconfig:"EXPLORER_MAX_DELAY" default:"30s"`
}

// MarketplaceConfig holds NFT marketplace API settings
type MarketplaceConfig struct {
	BaseURL        string        `envconfig:"MARKETPLACE_BASE_URL" default:"https://api-mainnet.magiceden.dev"`
	APIKey         string        `envconfig:"MARKETPLACE_API_KEY" default:""`
	Chain          string        `envconfig:"MARKETPLACE_CHAIN" default:"monad"`
	RequestTimeout time.Duration `envconfig:"MARKETPLACE_REQUEST_TIMEOUT" default:"20s"`
	RateLimitRPS   float64       `envconfig:"MARKETPLACE_RATE_LIMIT_RPS" default:"2"`
	MaxAttempts    int           `envconfig:"MARKETPLACE_MAX_ATTEMPTS" default:"5"`
	InitialDelay   time.Duration `envconfig:"MARKETPLACE_INITIAL_DELAY" default:"1s"`
	MaxDelay       time.Duration `envconfig:"MARKETPLACE_MAX_DELAY" default:"30s"`
}

// EthereumConfig holds JSON-RPC node settings. An empty RPCURL disables
// chain head pinning.
type EthereumConfig struct {
	RPCURL         string        `envconfig:"ETH_RPC_URL" default:""`
	ChainID        int64         `envconfig:"ETH_CHAIN_ID" default:"143"`
	RequestTimeout time.Duration `envconfig:"ETH_REQUEST_TIMEOUT" default:"10s"`
	MaxRetries     int           `envconfig:"ETH_MAX_RETRIES" default:"3"`
	RetryDelay     time.Duration `envconfig:"ETH_RETRY_DELAY" default:"1s"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"ranker"`
	Password        string        `envconfig:"DB_PASSWORD" default:"ranker"`
	Name            string        `envconfig:"DB_NAME" default:"wallet_ranker"`
	SSLMode         string        `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
	MigrateOnStart  bool          `envconfig:"DB_MIGRATE_ON_START" default:"true"`
	ConnectAttempts int           `envconfig:"DB_CONNECT_ATTEMPTS" default:"5"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// APIConfig holds API server settings
type APIConfig struct {
	Host            string        `envconfig:"API_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"API_PORT" default:"8081"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    int           `envconfig:"API_RATE_LIMIT_RPS" default:"100"`
	CacheTTL        time.Duration `envconfig:"API_CACHE_TTL" default:"30s"`
	AdminToken      string        `envconfig:"API_ADMIN_TOKEN" default:""`
	DefaultPageSize int           `envconfig:"API_DEFAULT_PAGE_SIZE" default:"50"`
	MaxPageSize     int           `envconfig:"API_MAX_PAGE_SIZE" default:"100"`
}

// ScoringConfig holds the scoring policy: launch epoch, weight table and
// NFT sanitizer thresholds
type ScoringConfig struct {
	Epoch            time.Time     `envconfig:"SCORING_EPOCH" default:"2025-02-19T00:00:00Z"`
	WeightsVersion   string        `envconfig:"SCORING_WEIGHTS_VERSION" default:"v2"`
	PopulationTTL    time.Duration `envconfig:"SCORING_POPULATION_TTL" default:"15s"`
	WeightVolume     float64       `envconfig:"SCORING_WEIGHT_VOLUME" default:"0.25"`
	WeightGas        float64       `envconfig:"SCORING_WEIGHT_GAS" default:"0.20"`
	WeightTxCount    float64       `envconfig:"SCORING_WEIGHT_TRANSACTIONS" default:"0.15"`
	WeightNFT        float64       `envconfig:"SCORING_WEIGHT_NFT" default:"0.15"`
	WeightDaysActive float64       `envconfig:"SCORING_WEIGHT_DAYS_ACTIVE" default:"0.10"`
	WeightStreak     float64       `envconfig:"SCORING_WEIGHT_STREAK" default:"0.10"`
	WeightDay1Bonus  float64       `envconfig:"SCORING_WEIGHT_DAY1_BONUS" default:"0.05"`

	Sanitizer SanitizerConfig
}

// SanitizerConfig holds the NFT valuation heuristics
type SanitizerConfig struct {
	MinFloorPrice           float64 `envconfig:"NFT_MIN_FLOOR_PRICE" default:"0.01"`
	MaxHoldingNonFungible   int64   `envconfig:"NFT_MAX_HOLDING_NON_FUNGIBLE" default:"100"`
	MaxHoldingFungible      int64   `envconfig:"NFT_MAX_HOLDING_FUNGIBLE" default:"1000"`
	MinVolume7d             float64 `envconfig:"NFT_MIN_VOLUME_7D" default:"1"`
	MaxHoldingToSupplyRatio float64 `envconfig:"NFT_MAX_HOLDING_TO_SUPPLY_RATIO" default:"0.5"`
	MinCollectionSize       int64   `envconfig:"NFT_MIN_COLLECTION_SIZE" default:"100"`
	MaxCollectionValue      float64 `envconfig:"NFT_MAX_COLLECTION_VALUE" default:"10000"`
	MaxWalletValue          float64 `envconfig:"NFT_MAX_WALLET_VALUE" default:"50000"`
}

// WorkerConfig holds recalculation worker settings
type WorkerConfig struct {
	MetricsPort           int           `envconfig:"WORKER_METRICS_PORT" default:"8080"`
	RecalculationInterval time.Duration `envconfig:"WORKER_RECALCULATION_INTERVAL" default:"1h"`
	RunOnStart            bool          `envconfig:"WORKER_RUN_ON_START" default:"true"`
	ScoreConcurrency      int           `envconfig:"WORKER_SCORE_CONCURRENCY" default:"8"`
	WriteConcurrency      int           `envconfig:"WORKER_WRITE_CONCURRENCY" default:"4"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
	File   string `envconfig:"LOG_FILE" default:""`
}

// Load loads configuration from an optional .env file and environment variables
func Load() (*Config, error) {
	// .env is optional; real environment variables take precedence
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Scoring.Weights().Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring weights: %w", err)
	}

	return &cfg, nil
}

// Weights returns the built-in table named by WeightsVersion, or a custom table
// assembled from the individual SCORING_WEIGHT_* values for any other version
func (c ScoringConfig) Weights() scoring.Weights {
	if w, ok := scoring.WeightsByVersion(c.WeightsVersion); ok {
		return w
	}
	return scoring.Weights{
		Version:      c.WeightsVersion,
		Volume:       c.WeightVolume,
		Gas:          c.WeightGas,
		Transactions: c.WeightTxCount,
		NFT:          c.WeightNFT,
		DaysActive:   c.WeightDaysActive,
		Streak:       c.WeightStreak,
		Day1Bonus:    c.WeightDay1Bonus,
	}
}

// Thresholds returns the configured NFT sanitizer thresholds
func (c ScoringConfig) Thresholds() scoring.SanitizerThresholds {
	s := c.Sanitizer
	return scoring.SanitizerThresholds{
		MinFloorPrice:           s.MinFloorPrice,
		MaxHoldingNonFungible:   s.MaxHoldingNonFungible,
		MaxHoldingFungible:      s.MaxHoldingFungible,
		MinVolume7d:             s.MinVolume7d,
		MaxHoldingToSupplyRatio: s.MaxHoldingToSupplyRatio,
		MinCollectionSize:       s.MinCollectionSize,
		MaxCollectionValue:      s.MaxCollectionValue,
		MaxWalletValue:          s.MaxWalletValue,
	}
}

// Backoff returns the retry policy for explorer requests
func (c ExplorerConfig) Backoff() *retry.Config {
	return &retry.Config{
		MaxAttempts:  c.MaxAttempts,
		InitialDelay: c.InitialDelay,
		MaxDelay:     c.MaxDelay,
		Multiplier:   2.0,
	}
}

// Backoff returns the retry policy for marketplace requests
func (c MarketplaceConfig) Backoff() *retry.Config {
	return &retry.Config{
		MaxAttempts:  c.MaxAttempts,
		InitialDelay: c.InitialDelay,
		MaxDelay:     c.MaxDelay,
		Multiplier:   2.0,
	}
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// URL returns the PostgreSQL connection URL used by the migrator
func (c *DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}
