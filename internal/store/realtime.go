// internal/store/realtime.go
package store

import (
	"context"
	"time"

	"fleet-backoffice/internal/common/logger"
	"fleet-backoffice/internal/common/metrics"

	"github.com/lib/pq"
)

const (
	listenerMinReconnect = 10 * time.Second
	listenerMaxReconnect = time.Minute
	listenerPingInterval = 90 * time.Second
)

// Listener subscribes to the database change channel. Row triggers NOTIFY
// on every mutation; the payload is ignored, any event means the cached
// snapshot is stale and consumers should re-fetch.
type Listener struct {
	pq      *pq.Listener
	channel string
	events  chan struct{}
	logger  logger.Logger
}

func NewListener(dsn, channel string, log logger.Logger) *Listener {
	l := &Listener{
		channel: channel,
		events:  make(chan struct{}, 1),
		logger:  log.WithFields(map[string]interface{}{"component": "listener", "channel": channel}),
	}

	l.pq = pq.NewListener(dsn, listenerMinReconnect, listenerMaxReconnect, func(event pq.ListenerEventType, err error) {
		if err != nil {
			l.logger.Warn("listener connection event", map[string]interface{}{
				"event": int(event),
				"error": err.Error(),
			})
		}
	})

	return l
}

// Start subscribes and pumps notifications until ctx is cancelled.
func (l *Listener) Start(ctx context.Context) error {
	if err := l.pq.Listen(l.channel); err != nil {
		return err
	}

	go l.run(ctx)
	return nil
}

// Events signals at-least-once per change burst. The channel is coalesced;
// a slow consumer sees one pending signal, not a backlog.
func (l *Listener) Events() <-chan struct{} {
	return l.events
}

func (l *Listener) Close() error {
	return l.pq.Close()
}

func (l *Listener) run(ctx context.Context) {
	ticker := time.NewTicker(listenerPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case notification := <-l.pq.Notify:
			// A nil notification marks a reconnect; events may have been
			// missed, so treat it as a change too.
			metrics.ChangeEventsTotal.Inc()
			if notification != nil {
				l.logger.Debug("change notification", map[string]interface{}{
					"payload": notification.Extra,
				})
			}
			select {
			case l.events <- struct{}{}:
			default:
			}
		case <-ticker.C:
			if err := l.pq.Ping(); err != nil {
				l.logger.Warn("listener ping failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}
}
