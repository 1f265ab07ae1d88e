package ethereum

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-ranker/internal/config"
	"github.com/bimakw/wallet-ranker/internal/retry"
)

// Client wraps the JSON-RPC client used to pin the chain head
type Client struct {
	client  *ethclient.Client
	config  config.EthereumConfig
	logger  *zap.Logger
	chainID *big.Int
	retry   *retry.Config
}

// NewClient dials the node and verifies the chain ID
func NewClient(cfg config.EthereumConfig, logger *zap.Logger) (*Client, error) {
	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC node: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}

	if chainID.Int64() != cfg.ChainID {
		client.Close()
		return nil, fmt.Errorf("chain ID mismatch: expected %d, got %d", cfg.ChainID, chainID.Int64())
	}

	logger.Info("Connected to RPC node",
		zap.String("rpc_url", cfg.RPCURL),
		zap.Int64("chain_id", chainID.Int64()),
	)

	return &Client{
		client:  client,
		config:  cfg,
		logger:  logger,
		chainID: chainID,
		retry: &retry.Config{
			MaxAttempts:  cfg.MaxRetries + 1,
			InitialDelay: cfg.RetryDelay,
			MaxDelay:     cfg.RetryDelay * 8,
			Multiplier:   2.0,
		},
	}, nil
}

// Close closes the RPC connection
func (c *Client) Close() {
	c.client.Close()
}

// LatestBlockNumber returns the chain head
func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	var blockNumber uint64

	err := retry.Do(ctx, c.retry, c.logger, "eth_blockNumber", func(ctx context.Context, attempt int) error {
		reqCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
		defer cancel()

		n, err := c.client.BlockNumber(reqCtx)
		if err != nil {
			return err
		}
		blockNumber = n
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block number: %w", err)
	}

	return blockNumber, nil
}

// ChainID returns the chain ID
func (c *Client) ChainID() *big.Int {
	return c.chainID
}

// HealthCheck verifies the node answers
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.client.BlockNumber(ctx)
	return err
}
