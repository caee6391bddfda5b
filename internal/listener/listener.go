package listener

import (
	"context"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"

	"vitals-monitor/internal/storage"
)

const debounce = 200 * time.Millisecond

// notificationWaiter is the part of *pgx.Conn the loop needs.
type notificationWaiter interface {
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
}

// ListenAndRefresh LISTENs on channel and calls refresh whenever the rule
// tables change. The first notification refreshes at once; any that follow
// within debounce are folded into one trailing refresh at the end of the
// window. It returns when ctx is cancelled.
func ListenAndRefresh(ctx context.Context, st *storage.Store, refresh func(context.Context) error, channel string, baseBackoff time.Duration) {
	conn, err := st.PgxPool().Acquire(ctx)
	if err != nil {
		log.Error().Err(err).Msg("acquire conn for listen")
		return
	}
	defer conn.Release()

	if channel == "" {
		channel = st.ListenChannel()
	}
	if _, err = conn.Exec(ctx, "LISTEN "+channel); err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("listen")
		return
	}
	log.Info().Str("channel", channel).Msg("listening for rule changes")

	wait(ctx, conn.Conn(), refresh, baseBackoff)
	log.Info().Msg("listener stopped")
}

func wait(ctx context.Context, conn notificationWaiter, refresh func(context.Context) error, baseBackoff time.Duration) {
	var (
		lastRefresh time.Time
		pending     bool
	)
	for ctx.Err() == nil {
		waitCtx, cancelWait := ctx, context.CancelFunc(func() {})
		if pending {
			waitCtx, cancelWait = context.WithDeadline(ctx, lastRefresh.Add(debounce))
		}
		ntf, err := conn.WaitForNotification(waitCtx)
		windowClosed := pending && waitCtx.Err() != nil
		cancelWait()

		switch {
		case ctx.Err() != nil:
			return
		case windowClosed:
			log.Info().Msg("rules changed during debounce; reloading")
		case err != nil:
			backoff := jitter(baseBackoff)
			log.Error().Err(err).Dur("retry_in", backoff).Msg("notify wait error")
			sleep(ctx, backoff)
			continue
		case time.Since(lastRefresh) < debounce:
			pending = true
			continue
		default:
			log.Info().Str("channel", ntf.Channel).Msg("rules changed; reloading")
		}

		pending = false
		lastRefresh = time.Now()
		if err := refresh(ctx); err != nil {
			log.Error().Err(err).Msg("reload rules error")
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func jitter(base time.Duration) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	factor := 0.5 + rand.Float64() // 0.5x-1.5x
	return time.Duration(float64(base) * factor)
}
