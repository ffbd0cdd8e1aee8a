package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"PriceGate/internal/domain/models"
	domrepo "PriceGate/internal/domain/repository"
	applogger "PriceGate/pkg/logger"
	pkgpg "PriceGate/pkg/postgres"
)

// PGCandleStore implements CandleStore backed by TimescaleDB. Only closed
// 1m candles live here; coarser timeframes are derived in memory.
type PGCandleStore struct {
	client       *pkgpg.Client
	queryTimeout time.Duration
	l            *applogger.Logger
}

func NewPGCandleStore(client *pkgpg.Client, queryTimeout time.Duration) *PGCandleStore {
	return &PGCandleStore{client: client, queryTimeout: queryTimeout}
}

// SetLogger injects a structured logger.
func (s *PGCandleStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *PGCandleStore) GetCoinID(ctx context.Context, symbol string) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var id int64
	err := s.client.Pool().QueryRow(ctx,
		`SELECT id FROM coins WHERE symbol = $1`, symbol,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: %s", models.ErrSymbolNotFound, symbol)
		}
		if s.l != nil {
			s.l.Error("postgres coin id query error",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return 0, fmt.Errorf("get coin id: %w", err)
	}
	return id, nil
}

func (s *PGCandleStore) GetRecent1m(ctx context.Context, coinID int64, limit int) ([]models.Candle, error) {
	start := time.Now()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	const q = `
        SELECT EXTRACT(EPOCH FROM timestamp)::bigint AS time,
               open, high, low, close, volume
        FROM candle_data_1m
        WHERE coin_id = $1
        ORDER BY timestamp DESC
        LIMIT $2
    `
	rows, err := s.client.Pool().Query(ctx, q, coinID, limit)
	if err != nil {
		if s.l != nil {
			s.l.Error("postgres recent_1m query error",
				applogger.Int64("coin_id", coinID),
				applogger.Int("limit", limit),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get recent 1m candles: %w", err)
	}
	defer rows.Close()

	tmp := make([]models.Candle, 0, limit)
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.OpenTime, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		c.CloseTime = c.OpenTime + 59
		tmp = append(tmp, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	// reverse to ASC
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	if s.l != nil {
		s.l.Debug("postgres recent_1m ok",
			applogger.Int64("coin_id", coinID),
			applogger.Int("limit", limit),
			applogger.Int("rows", len(tmp)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return tmp, nil
}

func (s *PGCandleStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

func (s *PGCandleStore) Close() error {
	s.client.Close()
	return nil
}

func (s *PGCandleStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

var _ domrepo.CandleStore = (*PGCandleStore)(nil)
