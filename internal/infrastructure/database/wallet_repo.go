package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/bimakw/wallet-ranker/internal/domain/entities"
	"github.com/bimakw/wallet-ranker/internal/domain/repositories"
)

// Ensure WalletRepo implements WalletRepository
var _ repositories.WalletRepository = (*WalletRepo)(nil)

// sortColumns whitelists ORDER BY columns by sort field
var sortColumns = map[entities.SortField]string{
	entities.SortByTotalScore:    "total_score",
	entities.SortByTxCount:       "tx_count",
	entities.SortByGasSpent:      "gas_spent_mon",
	entities.SortByTotalVolume:   "total_volume",
	entities.SortByNFTBagValue:   "nft_bag_value",
	entities.SortByDay1User:      "is_day1_user",
	entities.SortByLongestStreak: "longest_streak",
	entities.SortByDaysActive:    "days_active",
}

const walletColumns = `
	id, address,
	tx_count, gas_spent_mon, total_volume, nft_bag_value, is_day1_user, longest_streak, days_active,
	volume_score, gas_score, transaction_score, nft_score, days_active_score, streak_score, day1_bonus_score,
	total_score, rank, created_at, updated_at`

// WalletRepo implements WalletRepository using PostgreSQL
type WalletRepo struct {
	db *sqlx.DB
}

// NewWalletRepo creates a new wallet repository
func NewWalletRepo(db *sqlx.DB) *WalletRepo {
	return &WalletRepo{db: db}
}

// GetByAddress retrieves a wallet by its address
func (r *WalletRepo) GetByAddress(ctx context.Context, address string) (*entities.WalletRecord, error) {
	var wallet entities.WalletRecord
	query := `SELECT ` + walletColumns + `, history FROM wallets WHERE address = $1`

	if err := r.db.GetContext(ctx, &wallet, query, strings.ToLower(address)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return &wallet, nil
}

// Upsert creates or overwrites a wallet
func (r *WalletRepo) Upsert(ctx context.Context, w *entities.WalletRecord) error {
	query := `
		INSERT INTO wallets (
			address,
			tx_count, gas_spent_mon, total_volume, nft_bag_value, is_day1_user, longest_streak, days_active,
			volume_score, gas_score, transaction_score, nft_score, days_active_score, streak_score, day1_bonus_score,
			total_score, history
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (address) DO UPDATE SET
			tx_count = EXCLUDED.tx_count,
			gas_spent_mon = EXCLUDED.gas_spent_mon,
			total_volume = EXCLUDED.total_volume,
			nft_bag_value = EXCLUDED.nft_bag_value,
			is_day1_user = EXCLUDED.is_day1_user,
			longest_streak = EXCLUDED.longest_streak,
			days_active = EXCLUDED.days_active,
			volume_score = EXCLUDED.volume_score,
			gas_score = EXCLUDED.gas_score,
			transaction_score = EXCLUDED.transaction_score,
			nft_score = EXCLUDED.nft_score,
			days_active_score = EXCLUDED.days_active_score,
			streak_score = EXCLUDED.streak_score,
			day1_bonus_score = EXCLUDED.day1_bonus_score,
			total_score = EXCLUDED.total_score,
			history = EXCLUDED.history,
			updated_at = NOW()
		RETURNING id, rank, created_at, updated_at
	`

	w.Address = strings.ToLower(w.Address)
	row := r.db.QueryRowxContext(ctx, query,
		w.Address,
		w.TxCount,
		w.GasSpentMON,
		w.TotalVolume,
		w.NFTBagValue,
		w.IsDay1User,
		w.LongestStreak,
		w.DaysActive,
		w.VolumeScore,
		w.GasScore,
		w.TransactionScore,
		w.NFTScore,
		w.DaysActiveScore,
		w.StreakScore,
		w.Day1BonusScore,
		w.TotalScore,
		w.History,
	)
	if err := row.Scan(&w.ID, &w.Rank, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return fmt.Errorf("failed to upsert wallet: %w", err)
	}

	return nil
}

// ListAll retrieves every wallet in storage order
func (r *WalletRepo) ListAll(ctx context.Context) ([]entities.WalletRecord, error) {
	var wallets []entities.WalletRecord
	query := `SELECT ` + walletColumns + ` FROM wallets ORDER BY id`

	if err := r.db.SelectContext(ctx, &wallets, query); err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}

	return wallets, nil
}

// UpdateScores overwrites the scores and rank of one wallet
func (r *WalletRepo) UpdateScores(ctx context.Context, u entities.ScoreUpdate) error {
	query := `
		UPDATE wallets SET
			volume_score = $2,
			gas_score = $3,
			transaction_score = $4,
			nft_score = $5,
			days_active_score = $6,
			streak_score = $7,
			day1_bonus_score = $8,
			total_score = $9,
			rank = $10,
			updated_at = NOW()
		WHERE address = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		strings.ToLower(u.Address),
		u.Scores.VolumeScore,
		u.Scores.GasScore,
		u.Scores.TransactionScore,
		u.Scores.NFTScore,
		u.Scores.DaysActiveScore,
		u.Scores.StreakScore,
		u.Scores.Day1BonusScore,
		u.TotalScore,
		u.Rank,
	)
	if err != nil {
		return fmt.Errorf("failed to update wallet scores: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update wallet scores: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to update wallet scores: wallet %s not found", u.Address)
	}

	return nil
}

// QueryLeaderboard returns one page of the filtered, sorted wallet set
func (r *WalletRepo) QueryLeaderboard(ctx context.Context, q entities.LeaderboardQuery) ([]entities.WalletRecord, int64, error) {
	countQuery, countArgs := buildLeaderboardQuery(q, true)

	var total int64
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count leaderboard: %w", err)
	}

	if int64(q.Offset()) >= total {
		return []entities.WalletRecord{}, total, nil
	}

	query, args := buildLeaderboardQuery(q, false)

	wallets := []entities.WalletRecord{}
	if err := r.db.SelectContext(ctx, &wallets, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to query leaderboard: %w", err)
	}

	return wallets, total, nil
}

// Count returns the total number of wallets
func (r *WalletRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM wallets`); err != nil {
		return 0, fmt.Errorf("failed to count wallets: %w", err)
	}
	return count, nil
}

// buildLeaderboardQuery builds the page or count query for a normalized leaderboard query
func buildLeaderboardQuery(q entities.LeaderboardQuery, countOnly bool) (string, []interface{}) {
	var args []interface{}
	argIdx := 1

	whereClause := ""
	if q.Search != "" {
		whereClause = fmt.Sprintf(`WHERE address ILIKE '%%' || $%d || '%%'`, argIdx)
		args = append(args, escapeLike(strings.ToLower(q.Search)))
		argIdx++
	}

	if countOnly {
		return fmt.Sprintf("SELECT COUNT(*) FROM wallets %s", whereClause), args
	}

	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = sortColumns[entities.SortByTotalScore]
	}
	direction := "DESC"
	if q.SortOrder == entities.SortAsc {
		direction = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM wallets
		%s
		ORDER BY %s %s, id ASC
		LIMIT $%d OFFSET $%d
	`, walletColumns, whereClause, column, direction, argIdx, argIdx+1)

	args = append(args, q.PageSize, q.Offset())

	return query, args
}

// escapeLike escapes LIKE metacharacters with the default backslash escape
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
