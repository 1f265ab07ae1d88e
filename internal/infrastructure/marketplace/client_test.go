package marketplace

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-ranker/internal/config"
	"github.com/bimakw/wallet-ranker/internal/domain/entities"
)

const testAddress = "0x742d35cc6634c0532925a3b844bc454e4438f44e"

func testConfig(baseURL string) config.MarketplaceConfig {
	return config.MarketplaceConfig{
		BaseURL:        baseURL,
		APIKey:         "secret",
		Chain:          "monad",
		RequestTimeout: 5 * time.Second,
		MaxAttempts:    3,
		InitialDelay:   time.Millisecond,
		MaxDelay:       5 * time.Millisecond,
	}
}

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/v1/wallets/{address}/collections", handler)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestFetchCollections(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testAddress, chi.URLParam(r, "address"))
		assert.Equal(t, "monad", r.URL.Query().Get("chain"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"collections":[
			{"name":"Monkeys","tokenStandard":"erc721","collectionSize":5000,"floorPrice7d":1.25,"volume7d":340.5,"holdingCount":2},
			{"name":"Badges","tokenStandard":"ERC1155","collectionSize":0,"floorPrice7d":0.05,"volume7d":null,"holdingCount":40}
		]}`)
	})

	c := NewClient(testConfig(srv.URL), zap.NewNop())
	got, err := c.FetchCollections(context.Background(), testAddress)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, entities.TokenStandardERC721, got[0].TokenStandard)
	assert.Equal(t, int64(5000), got[0].CollectionSize)
	require.NotNil(t, got[0].Volume7d)
	assert.Equal(t, 340.5, *got[0].Volume7d)
	assert.Nil(t, got[1].Volume7d)
	assert.True(t, got[1].TokenStandard.IsFungible())
}

func TestFetchCollections_UnknownWallet(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"error":"not found"}`)
	})

	c := NewClient(testConfig(srv.URL), zap.NewNop())
	got, err := c.FetchCollections(context.Background(), testAddress)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFetchCollections_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			writeJSON(w, http.StatusTooManyRequests, `{}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"collections":[]}`)
	})

	c := NewClient(testConfig(srv.URL), zap.NewNop())
	got, err := c.FetchCollections(context.Background(), testAddress)

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchCollections_ClientErrorIsPermanent(t *testing.T) {
	var calls int32
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusUnauthorized, `{}`)
	})

	c := NewClient(testConfig(srv.URL), zap.NewNop())
	_, err := c.FetchCollections(context.Background(), testAddress)

	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchCollections_Cancelled(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"collections":[]}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(testConfig(srv.URL), zap.NewNop())
	_, err := c.FetchCollections(ctx, testAddress)

	assert.True(t, errors.Is(err, context.Canceled))
}
