package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/yulin9901/stock-analyzer/internal/domain"
)

// TradeArchiveStore provides read access to trades for archival.
type TradeArchiveStore interface {
	// ListBefore returns all trades executed strictly before the cutoff.
	ListBefore(ctx context.Context, before time.Time) ([]domain.Trade, error)
}

// PnLArchiveStore provides read access to daily P&L rows for archival.
type PnLArchiveStore interface {
	// ListBefore returns all daily summaries dated strictly before the cutoff.
	ListBefore(ctx context.Context, before time.Time) ([]domain.DailyPnL, error)
}

// Archiver serializes old trading records to JSONL and uploads them to blob
// storage, partitioned by the year-month of the cutoff.
//
// Deleting the archived rows from the primary store is intentionally NOT
// done here; that is a separate step taken after the archive is verified.
type Archiver struct {
	writer domain.BlobWriter
	trades TradeArchiveStore
	pnl    PnLArchiveStore
	logger *slog.Logger
}

// NewArchiver creates an Archiver over the given writer and stores.
func NewArchiver(writer domain.BlobWriter, trades TradeArchiveStore, pnl PnLArchiveStore, logger *slog.Logger) *Archiver {
	return &Archiver{
		writer: writer,
		trades: trades,
		pnl:    pnl,
		logger: logger.With(slog.String("component", "archiver")),
	}
}

// ArchiveTrades uploads all trades executed before the cutoff to
// archive/trades/YYYY-MM.jsonl and returns the number of records written.
func (a *Archiver) ArchiveTrades(ctx context.Context, before time.Time) (int64, error) {
	trades, err := a.trades.ListBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive trades query: %w", err)
	}
	if len(trades) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(trades)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive trades marshal: %w", err)
	}

	path := archivePath("trades", before)
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive trades upload: %w", err)
	}

	a.logger.InfoContext(ctx, "archived trades",
		slog.String("path", path),
		slog.Int("count", len(trades)),
		slog.Time("before", before),
	)
	return int64(len(trades)), nil
}

// ArchiveDailyPnL uploads all daily summaries dated before the cutoff to
// archive/daily_pnl/YYYY-MM.jsonl and returns the number of records written.
func (a *Archiver) ArchiveDailyPnL(ctx context.Context, before time.Time) (int64, error) {
	rows, err := a.pnl.ListBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive daily pnl query: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(rows)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive daily pnl marshal: %w", err)
	}

	path := archivePath("daily_pnl", before)
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive daily pnl upload: %w", err)
	}

	a.logger.InfoContext(ctx, "archived daily pnl",
		slog.String("path", path),
		slog.Int("count", len(rows)),
		slog.Time("before", before),
	)
	return int64(len(rows)), nil
}

// archivePath builds the object key for an archive file, e.g.
// archive/trades/2026-07.jsonl.
func archivePath(kind string, before time.Time) string {
	return fmt.Sprintf("archive/%s/%s.jsonl", kind, before.Format("2006-01"))
}

// marshalJSONL serialises records as newline-delimited JSON.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}
