package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"skinscan-backend/internal/models"
)

// ScanChangesChannel is the NOTIFY channel fed by the skin_scans trigger.
const ScanChangesChannel = "skin_scans_changes"

// Publisher receives decoded change events.
type Publisher interface {
	Publish(event models.ChangeEvent)
}

// ChangeFeed turns Postgres notifications on ScanChangesChannel into
// change events.
type ChangeFeed struct {
	listener  *pq.Listener
	publisher Publisher
	logger    *slog.Logger
}

func NewChangeFeed(dbURL string, publisher Publisher, logger *slog.Logger) (*ChangeFeed, error) {
	if logger == nil {
		logger = slog.Default()
	}
	listener := pq.NewListener(dbURL, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn("change feed listener event", "event", int(ev), "error", err)
		}
	})
	if err := listener.Listen(ScanChangesChannel); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", ScanChangesChannel, err)
	}

	return &ChangeFeed{listener: listener, publisher: publisher, logger: logger}, nil
}

// Run forwards notifications until ctx is done.
func (f *ChangeFeed) Run(ctx context.Context) {
	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case n := <-f.listener.Notify:
			// nil after a reconnect; notifications may have been missed.
			if n == nil {
				f.logger.Info("change feed reconnected")
				continue
			}
			event, err := DecodeChangeEvent([]byte(n.Extra))
			if err != nil {
				f.logger.Warn("dropping malformed change notification", "error", err)
				continue
			}
			f.publisher.Publish(event)
		case <-ping.C:
			if err := f.listener.Ping(); err != nil {
				f.logger.Warn("change feed ping failed", "error", err)
			}
		}
	}
}

func (f *ChangeFeed) Close() error {
	return f.listener.Close()
}

func DecodeChangeEvent(payload []byte) (models.ChangeEvent, error) {
	var event models.ChangeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return event, fmt.Errorf("failed to decode change event: %w", err)
	}
	switch event.Type {
	case models.ChangeInsert, models.ChangeUpdate, models.ChangeDelete:
	default:
		return event, fmt.Errorf("unknown change type %q", event.Type)
	}
	if event.UserID == "" {
		return event, fmt.Errorf("change event without user_id")
	}
	return event, nil
}
