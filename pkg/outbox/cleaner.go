package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// Cleaner prunes delivered outbox rows past their retention and,
// when a dead retention is configured, dead-lettered rows past
// theirs. One Cleaner watches one table.
type Cleaner struct {
	pool       *pgxpool.Pool
	table      pgx.Identifier
	opts       CleanerOptions
	tableLabel string
}

func NewCleaner(pool *pgxpool.Pool, table pgx.Identifier, opts CleanerOptions) (*Cleaner, error) {
	if pool == nil {
		return nil, invalidConfig("pool is required")
	}
	if len(table) == 0 {
		return nil, invalidConfig("table is required")
	}
	opts.setDefaults()
	if opts.DeadRetention > 0 && opts.DeadAttemptsThreshold <= 0 {
		return nil, invalidConfig("dead retention requires DeadAttemptsThreshold > 0")
	}
	return &Cleaner{
		pool:       pool,
		table:      table,
		opts:       opts,
		tableLabel: TableLabel(table),
	}, nil
}

// Run prunes on a ticker until ctx is cancelled. A failed tick is
// logged and the next tick tries again.
func (c *Cleaner) Run(ctx context.Context) error {
	if ctx == nil {
		return invalidConfig("ctx is required")
	}
	if !c.opts.Enabled {
		return nil
	}

	ticker := time.NewTicker(c.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if err := c.cleanOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			c.opts.Logger.WithError(err).WithField("table", c.tableLabel).Warn("outbox: cleaner tick failed")
		}
	}
}

// Both prunes run in one transaction so a partial tick leaves
// nothing half-removed.
func (c *Cleaner) cleanOnce(ctx context.Context) error {
	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	published, err := c.prunePublished(ctx, tx)
	if err != nil {
		return err
	}

	dead, err := c.pruneDead(ctx, tx)
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	if published > 0 || dead > 0 {
		c.opts.Logger.WithFields(logrus.Fields{
			"table":     c.tableLabel,
			"published": published,
			"dead":      dead,
		}).Debug("outbox: cleaner pruned rows")
	}
	return nil
}

func (c *Cleaner) prunePublished(ctx context.Context, tx pgx.Tx) (int64, error) {
	cutoff := time.Now().Add(-c.opts.Retention)
	q := fmt.Sprintf(`DELETE FROM %s WHERE published_at IS NOT NULL AND published_at < $1`, c.table.Sanitize())
	tag, err := tx.Exec(ctx, q, cutoff)
	if err != nil {
		return 0, fmt.Errorf("outbox cleaner delete published: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (c *Cleaner) pruneDead(ctx context.Context, tx pgx.Tx) (int64, error) {
	if c.opts.DeadRetention <= 0 {
		return 0, nil
	}
	cutoff := time.Now().Add(-c.opts.DeadRetention)
	q := fmt.Sprintf(
		`DELETE FROM %s
		  WHERE published_at IS NULL
		    AND attempts >= $1
		    AND created_at < $2`,
		c.table.Sanitize(),
	)
	tag, err := tx.Exec(ctx, q, c.opts.DeadAttemptsThreshold, cutoff)
	if err != nil {
		return 0, fmt.Errorf("outbox cleaner delete dead: %w", err)
	}
	return tag.RowsAffected(), nil
}
