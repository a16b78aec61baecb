package services

import (
	"context"
	"log/slog"

	"skinscan-backend/internal/models"
)

type ScanLister interface {
	ListScans(ctx context.Context, userID string) ([]models.Scan, error)
}

// HistoryService serves a user's scans and keeps watchers up to date.
type HistoryService struct {
	scans  ScanLister
	broker *Broker
	logger *slog.Logger
}

func NewHistoryService(scans ScanLister, broker *Broker, logger *slog.Logger) *HistoryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryService{scans: scans, broker: broker, logger: logger}
}

// List returns the user's scans ordered by created_at descending.
func (h *HistoryService) List(ctx context.Context, userID string) ([]models.Scan, error) {
	return h.scans.ListScans(ctx, userID)
}

// Watch renders the current list, then re-renders the full list after every
// change event for userID until ctx is done or render fails.
func (h *HistoryService) Watch(ctx context.Context, userID string, render func([]models.Scan) error) error {
	sub := h.broker.Subscribe(userID)
	defer h.broker.Unsubscribe(sub)

	if err := h.refresh(ctx, userID, render); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-sub.C:
			if err := h.handleChange(ctx, event, render); err != nil {
				return err
			}
		}
	}
}

// handleChange treats INSERT, UPDATE and DELETE alike: a full re-query.
func (h *HistoryService) handleChange(ctx context.Context, event models.ChangeEvent, render func([]models.Scan) error) error {
	h.logger.Debug("scan change", "type", string(event.Type), "scan_id", event.ScanID.String(), "user_id", event.UserID)
	return h.refresh(ctx, event.UserID, render)
}

func (h *HistoryService) refresh(ctx context.Context, userID string, render func([]models.Scan) error) error {
	scans, err := h.scans.ListScans(ctx, userID)
	if err != nil {
		// Keep the watcher alive; the next event retries the query.
		h.logger.Error("error loading scans", "user_id", userID, "error", err)
		return nil
	}
	return render(scans)
}
