package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WalletRefreshes counts stats refreshes by outcome
	WalletRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranker_wallet_refreshes_total",
			Help: "Total number of wallet stats refreshes",
		},
		[]string{"outcome"},
	)

	// UpstreamRequests counts upstream API calls by source and outcome
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranker_upstream_requests_total",
			Help: "Total number of upstream API requests",
		},
		[]string{"source", "outcome"},
	)

	// SanitizerRejections counts NFT collections zeroed by the sanitizer
	SanitizerRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranker_nft_sanitizer_rejections_total",
			Help: "Total number of NFT collections rejected by the valuation sanitizer",
		},
		[]string{"reason"},
	)

	// SanitizerCapped counts wallets whose NFT bag value hit the ceiling
	SanitizerCapped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ranker_nft_wallet_ceiling_applied_total",
			Help: "Total number of wallets whose NFT value was capped",
		},
	)

	// LeaderboardQueries counts leaderboard queries by cache result
	LeaderboardQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranker_leaderboard_queries_total",
			Help: "Total number of leaderboard queries",
		},
		[]string{"cache"},
	)

	// RecalculationRuns counts full recalculation runs by outcome
	RecalculationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranker_recalculation_runs_total",
			Help: "Total number of ranking recalculation runs",
		},
		[]string{"outcome"},
	)

	// RecalculationDuration observes full recalculation run time
	RecalculationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ranker_recalculation_duration_seconds",
			Help:    "Time taken to recalculate all rankings",
			Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	// RecalculationWallets records the outcome of the last run per wallet state
	RecalculationWallets = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ranker_recalculation_wallets",
			Help: "Number of wallets updated or failed in the last recalculation",
		},
		[]string{"state"},
	)

	// PopulationSize is the number of stored wallets seen by the last scoring pass
	PopulationSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ranker_population_size",
			Help: "Number of wallets in the scoring population",
		},
	)
)
