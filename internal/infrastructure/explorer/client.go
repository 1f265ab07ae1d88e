package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-ranker/internal/config"
	"github.com/bimakw/wallet-ranker/internal/domain/entities"
	"github.com/bimakw/wallet-ranker/internal/domain/repositories"
	"github.com/bimakw/wallet-ranker/internal/infrastructure/httpclient"
	"github.com/bimakw/wallet-ranker/internal/infrastructure/metrics"
	"github.com/bimakw/wallet-ranker/internal/retry"
)

// Ensure Client implements TransactionSource
var _ repositories.TransactionSource = (*Client)(nil)

// DefaultEndBlock is used when the chain head is unknown
const DefaultEndBlock uint64 = 99999999

const sourceName = "explorer"

var (
	// ErrRateLimited is returned when the explorer reports its rate limit
	ErrRateLimited = errors.New("explorer rate limit reached")
	// ErrInvalidRequest is returned for requests the explorer rejects outright
	ErrInvalidRequest = errors.New("explorer rejected request")
)

// ChainHead provides the latest block number
type ChainHead interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type rawTransaction struct {
	BlockNumber string `json:"blockNumber"`
	TimeStamp   string `json:"timeStamp"`
	Hash        string `json:"hash"`
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"`
	Gas         string `json:"gas"`
	GasPrice    string `json:"gasPrice"`
	GasUsed     string `json:"gasUsed"`
}

// Client fetches account transactions from an Etherscan-compatible explorer
type Client struct {
	http   *httpclient.Client
	cfg    config.ExplorerConfig
	head   ChainHead
	retry  *retry.Config
	logger *zap.Logger
}

// NewClient creates a new explorer client. head may be nil.
func NewClient(cfg config.ExplorerConfig, head ChainHead, logger *zap.Logger) *Client {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10000
	}
	return &Client{
		http: httpclient.New(httpclient.Config{
			Timeout:       cfg.RequestTimeout,
			RatePerSecond: cfg.RateLimitRPS,
		}, logger),
		cfg:    cfg,
		head:   head,
		retry:  cfg.Backoff(),
		logger: logger,
	}
}

// FetchTransactions returns every transaction of an address in ascending block order.
// Pages are requested by block cursor; the next page starts at the last block seen and
// duplicates are dropped by hash.
func (c *Client) FetchTransactions(ctx context.Context, address string) ([]entities.Transaction, error) {
	address = strings.ToLower(address)
	endBlock := c.endBlock(ctx)

	var (
		all        []entities.Transaction
		seen       = make(map[string]struct{})
		startBlock uint64
	)

	for {
		page, err := c.fetchPage(ctx, address, startBlock, endBlock)
		if err != nil {
			return nil, err
		}

		for _, tx := range page {
			if _, dup := seen[tx.Hash]; dup {
				continue
			}
			seen[tx.Hash] = struct{}{}
			all = append(all, tx)
		}

		if len(page) < c.cfg.PageSize {
			break
		}

		next := page[len(page)-1].BlockNumber
		if next <= startBlock {
			next = startBlock + 1
		}
		if next > endBlock {
			break
		}
		startBlock = next

		c.logger.Debug("Fetching next transaction page",
			zap.String("address", address),
			zap.Uint64("start_block", startBlock),
			zap.Int("fetched", len(all)),
		)
	}

	return all, nil
}

func (c *Client) endBlock(ctx context.Context) uint64 {
	if c.head == nil {
		return DefaultEndBlock
	}
	head, err := c.head.LatestBlockNumber(ctx)
	if err != nil {
		c.logger.Warn("Failed to get chain head, using default end block", zap.Error(err))
		return DefaultEndBlock
	}
	return head
}

func (c *Client) fetchPage(ctx context.Context, address string, startBlock, endBlock uint64) ([]entities.Transaction, error) {
	params := map[string]string{
		"module":     "account",
		"action":     "txlist",
		"address":    address,
		"startblock": strconv.FormatUint(startBlock, 10),
		"endblock":   strconv.FormatUint(endBlock, 10),
		"page":       "1",
		"offset":     strconv.Itoa(c.cfg.PageSize),
		"sort":       "asc",
	}
	if c.cfg.ChainID != 0 {
		params["chainid"] = strconv.FormatInt(c.cfg.ChainID, 10)
	}
	if c.cfg.APIKey != "" {
		params["apikey"] = c.cfg.APIKey
	}

	var txs []entities.Transaction
	err := retry.Do(ctx, c.retry, c.logger, "explorer txlist", func(ctx context.Context, attempt int) error {
		var env envelope
		if err := c.http.GetJSON(ctx, c.cfg.BaseURL, params, &env); err != nil {
			metrics.UpstreamRequests.WithLabelValues(sourceName, "error").Inc()
			var statusErr *httpclient.StatusError
			if errors.As(err, &statusErr) && !statusErr.Temporary() {
				return retry.Permanent(err)
			}
			return err
		}

		page, err := c.decode(env)
		if err != nil {
			outcome := "error"
			if retry.IsPermanent(err) {
				outcome = "rejected"
			}
			metrics.UpstreamRequests.WithLabelValues(sourceName, outcome).Inc()
			return err
		}
		metrics.UpstreamRequests.WithLabelValues(sourceName, "ok").Inc()
		txs = page
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions for %s: %w", address, err)
	}

	return txs, nil
}

// decode interprets the explorer envelope. An explicit "no data" response is an
// empty page, not an error.
func (c *Client) decode(env envelope) ([]entities.Transaction, error) {
	var message string
	if len(env.Result) > 0 && env.Result[0] == '"' {
		_ = sonic.Unmarshal(env.Result, &message)
	}

	if env.Status != "1" {
		if isNoData(env.Message) || isNoData(message) {
			return nil, nil
		}
		detail := strings.ToLower(env.Message + " " + message)
		switch {
		case strings.Contains(detail, "rate limit"):
			return nil, ErrRateLimited
		case strings.Contains(detail, "invalid"):
			return nil, retry.Permanent(fmt.Errorf("%w: %s", ErrInvalidRequest, strings.TrimSpace(env.Message+" "+message)))
		default:
			return nil, fmt.Errorf("explorer error: %s %s", env.Message, message)
		}
	}

	if message != "" || len(env.Result) == 0 {
		return nil, nil
	}

	var raw []rawTransaction
	if err := sonic.Unmarshal(env.Result, &raw); err != nil {
		return nil, retry.Permanent(fmt.Errorf("failed to decode transactions: %w", err))
	}

	txs := make([]entities.Transaction, 0, len(raw))
	for _, r := range raw {
		tx, err := r.toEntity()
		if err != nil {
			c.logger.Debug("Dropping malformed transaction", zap.String("hash", r.Hash), zap.Error(err))
			continue
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func (r rawTransaction) toEntity() (entities.Transaction, error) {
	block, err := strconv.ParseUint(r.BlockNumber, 10, 64)
	if err != nil {
		return entities.Transaction{}, fmt.Errorf("invalid block number %q", r.BlockNumber)
	}
	ts, err := strconv.ParseInt(r.TimeStamp, 10, 64)
	if err != nil {
		return entities.Transaction{}, fmt.Errorf("invalid timestamp %q", r.TimeStamp)
	}
	return entities.Transaction{
		Hash:        strings.ToLower(r.Hash),
		From:        strings.ToLower(r.From),
		To:          strings.ToLower(r.To),
		Value:       r.Value,
		Gas:         r.Gas,
		GasUsed:     r.GasUsed,
		GasPrice:    r.GasPrice,
		Timestamp:   ts,
		BlockNumber: block,
	}, nil
}

func isNoData(s string) bool {
	s = strings.ToLower(s)
	return strings.Contains(s, "no transactions found") || strings.Contains(s, "no records found")
}
