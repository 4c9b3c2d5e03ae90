package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DailyCounter is the Postgres-backed daily send quota. One row exists per
// UTC calendar date; the check-and-increment happens in a single statement
// so concurrent callers can never both take the last slot.
type DailyCounter struct {
	pool *pgxpool.Pool
}

func NewDailyCounter(pool *pgxpool.Pool) *DailyCounter {
	return &DailyCounter{pool: pool}
}

// ReserveSlot atomically increments the counter for the day when it is
// below limit. The conditional upsert is one statement: two racing callers
// serialize on the row and exactly one wins the final slot.
func (c *DailyCounter) ReserveSlot(ctx context.Context, day time.Time, limit int) (bool, int, error) {
	var count int
	err := c.pool.QueryRow(ctx, `
		INSERT INTO daily_email_counts (date, count)
		VALUES ($1, 1)
		ON CONFLICT (date) DO UPDATE
			SET count = daily_email_counts.count + 1
			WHERE daily_email_counts.count < $2
		RETURNING count
	`, day, limit).Scan(&count)
	if err != nil {
		// No row returned means the conditional update did not fire, the
		// cap is already reached.
		if errors.Is(err, pgx.ErrNoRows) {
			current, countErr := c.SentCount(ctx, day)
			if countErr != nil {
				return false, 0, countErr
			}
			return false, current, nil
		}
		return false, 0, err
	}
	if limit <= 0 {
		// A non-positive limit admits nothing; undo the insert of the
		// first row of the day.
		if err := c.ReleaseSlot(ctx, day); err != nil {
			return false, 0, err
		}
		return false, 0, nil
	}
	return true, count, nil
}

// ReleaseSlot decrements the day's counter, never below zero.
func (c *DailyCounter) ReleaseSlot(ctx context.Context, day time.Time) error {
	_, err := c.pool.Exec(ctx, `
		UPDATE daily_email_counts
		SET count = GREATEST(count - 1, 0)
		WHERE date = $1
	`, day)
	return err
}

// SentCount reports the counter for the day; a missing row is zero.
func (c *DailyCounter) SentCount(ctx context.Context, day time.Time) (int, error) {
	var count int
	err := c.pool.QueryRow(ctx, `
		SELECT count FROM daily_email_counts WHERE date = $1
	`, day).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}
