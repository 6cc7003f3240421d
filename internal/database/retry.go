package database

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const (
	connectAttempts = 5
	pingTimeout     = 5 * time.Second
	retryBaseDelay  = 500 * time.Millisecond
)

// pingWithRetry calls ping until it succeeds, the attempts run out or ctx is
// done. The delay doubles after every failed attempt so containers started
// together with the server get time to accept connections.
func pingWithRetry(ctx context.Context, log zerolog.Logger, target string, ping func(context.Context) error) error {
	delay := retryBaseDelay
	var err error

	for attempt := 1; attempt <= connectAttempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err = ping(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		if attempt == connectAttempts {
			break
		}

		log.Warn().Err(err).
			Str("target", target).
			Int("attempt", attempt).
			Dur("retry_in", delay).
			Msg("Connection not ready, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
