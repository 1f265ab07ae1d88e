package marketplace

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/bimakw/wallet-ranker/internal/config"
	"github.com/bimakw/wallet-ranker/internal/domain/entities"
	"github.com/bimakw/wallet-ranker/internal/domain/repositories"
	"github.com/bimakw/wallet-ranker/internal/infrastructure/httpclient"
	"github.com/bimakw/wallet-ranker/internal/infrastructure/metrics"
	"github.com/bimakw/wallet-ranker/internal/retry"
)

// Ensure Client implements NFTSource
var _ repositories.NFTSource = (*Client)(nil)

const sourceName = "marketplace"

type collectionsResponse struct {
	Collections []collection `json:"collections"`
}

type collection struct {
	Name           string   `json:"name"`
	TokenStandard  string   `json:"tokenStandard"`
	CollectionSize int64    `json:"collectionSize"`
	FloorPrice7d   float64  `json:"floorPrice7d"`
	Volume7d       *float64 `json:"volume7d"`
	HoldingCount   int64    `json:"holdingCount"`
}

// Client fetches NFT holdings snapshots from the marketplace API
type Client struct {
	http   *httpclient.Client
	cfg    config.MarketplaceConfig
	retry  *retry.Config
	logger *zap.Logger
}

// NewClient creates a new marketplace client
func NewClient(cfg config.MarketplaceConfig, logger *zap.Logger) *Client {
	headers := map[string]string{}
	if cfg.APIKey != "" {
		headers["Authorization"] = "Bearer " + cfg.APIKey
	}
	return &Client{
		http: httpclient.New(httpclient.Config{
			Timeout:       cfg.RequestTimeout,
			RatePerSecond: cfg.RateLimitRPS,
			Headers:       headers,
		}, logger),
		cfg:    cfg,
		retry:  cfg.Backoff(),
		logger: logger,
	}
}

// FetchCollections returns the wallet's NFT holdings grouped by collection.
// A wallet unknown to the marketplace holds nothing.
func (c *Client) FetchCollections(ctx context.Context, address string) ([]entities.NFTCollection, error) {
	address = strings.ToLower(address)
	endpoint := fmt.Sprintf("%s/v1/wallets/%s/collections", strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(address))

	query := map[string]string{}
	if c.cfg.Chain != "" {
		query["chain"] = c.cfg.Chain
	}

	var resp collectionsResponse
	err := retry.Do(ctx, c.retry, c.logger, "marketplace collections", func(ctx context.Context, attempt int) error {
		resp = collectionsResponse{}
		if err := c.http.GetJSON(ctx, endpoint, query, &resp); err != nil {
			var statusErr *httpclient.StatusError
			if errors.As(err, &statusErr) {
				if statusErr.StatusCode == http.StatusNotFound {
					metrics.UpstreamRequests.WithLabelValues(sourceName, "ok").Inc()
					return nil
				}
				if !statusErr.Temporary() {
					metrics.UpstreamRequests.WithLabelValues(sourceName, "error").Inc()
					return retry.Permanent(err)
				}
			}
			metrics.UpstreamRequests.WithLabelValues(sourceName, "error").Inc()
			return err
		}
		metrics.UpstreamRequests.WithLabelValues(sourceName, "ok").Inc()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch NFT holdings for %s: %w", address, err)
	}

	collections := make([]entities.NFTCollection, len(resp.Collections))
	for i, col := range resp.Collections {
		collections[i] = entities.NFTCollection{
			Name:           col.Name,
			TokenStandard:  entities.TokenStandard(strings.ToUpper(col.TokenStandard)),
			CollectionSize: col.CollectionSize,
			FloorPrice7d:   col.FloorPrice7d,
			Volume7d:       col.Volume7d,
			HoldingCount:   col.HoldingCount,
		}
	}

	c.logger.Debug("Fetched NFT holdings",
		zap.String("address", address),
		zap.Int("collections", len(collections)),
	)

	return collections, nil
}
