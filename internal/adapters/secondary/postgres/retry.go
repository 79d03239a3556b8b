package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"
)

const maxStorageRetries = 4

// withRetry runs op with bounded exponential backoff. Only transient
// storage failures (connection loss, timeouts) are retried; domain errors
// and constraint violations surface immediately. When retries exhaust the
// last error is returned as-is and mutation atomicity is preserved by the
// enclosing transaction.
func withRetry(ctx context.Context, op func() error) error {
	bo := backoff.WithContext(
		backoff.WithMaxRetries(newExponentialBackOff(), maxStorageRetries), ctx)
	attempt := 0
	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return backoff.Permanent(err)
		}
		attempt++
		log.WithError(err).WithField("attempt", attempt).Warn("retrying storage operation")
		return err
	}, bo)
}

func newExponentialBackOff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxInterval = 2 * time.Second
	bo.MaxElapsedTime = 15 * time.Second
	return bo
}

func isRetryable(err error) bool {
	if pgconn.Timeout(err) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08: connection exceptions. Class 40: transaction rollback
		// (serialization failure, deadlock).
		return len(pgErr.Code) >= 2 && (pgErr.Code[:2] == "08" || pgErr.Code[:2] == "40")
	}
	return false
}
