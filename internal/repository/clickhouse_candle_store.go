package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"PriceGate/internal/domain/models"
	domrepo "PriceGate/internal/domain/repository"
	pkgch "PriceGate/pkg/clickhouse"
	applogger "PriceGate/pkg/logger"
)

// CHCandleStore implements CandleStore backed by ClickHouse, selected with
// store.driver=clickhouse. Schema mirrors the Timescale layout: a coins
// dimension table and a candles_1m fact table.
type CHCandleStore struct {
	client *pkgch.Client
	db     *sql.DB
	l      *applogger.Logger
}

func NewCHCandleStore(ch *pkgch.Client) *CHCandleStore {
	return &CHCandleStore{client: ch, db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHCandleStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHCandleStore) GetCoinID(ctx context.Context, symbol string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM coins WHERE symbol = ? LIMIT 1`, symbol,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: %s", models.ErrSymbolNotFound, symbol)
		}
		if s.l != nil {
			s.l.Error("clickhouse coin id query error",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return 0, fmt.Errorf("get coin id: %w", err)
	}
	return id, nil
}

func (s *CHCandleStore) GetRecent1m(ctx context.Context, coinID int64, limit int) ([]models.Candle, error) {
	start := time.Now()
	const q = `
        SELECT toUnixTimestamp(timestamp) AS time,
               open, high, low, close, volume
        FROM candles_1m
        WHERE coin_id = ?
        ORDER BY timestamp DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, q, coinID, limit)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse recent_1m query error",
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
		s.l.Debug("clickhouse recent_1m ok",
			applogger.Int64("coin_id", coinID),
			applogger.Int("limit", limit),
			applogger.Int("rows", len(tmp)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return tmp, nil
}

func (s *CHCandleStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHCandleStore) Close() error {
	return s.client.Close()
}

var _ domrepo.CandleStore = (*CHCandleStore)(nil)
