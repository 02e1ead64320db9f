package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"finlearn/internal/cache"
	"finlearn/internal/domain"
	"finlearn/internal/logger"
	"finlearn/internal/util"

	"go.uber.org/zap"
)

const notificationRetention = 7 * 24 * time.Hour

// NotificationService keeps a per-user inbox in a cache hash. Field names are
// ULIDs so the inbox drains in creation order.
type NotificationService interface {
	Push(ctx context.Context, userID string, kind domain.NotificationKind, message string) error
	// Drain returns every pending notification, oldest first, and removes them.
	Drain(ctx context.Context, userID string) ([]domain.Notification, error)
}

type notificationService struct {
	cache domain.Cache
	now   func() time.Time
}

func NewNotificationService(c domain.Cache) NotificationService {
	return &notificationService{cache: c, now: time.Now}
}

func (s *notificationService) Push(ctx context.Context, userID string, kind domain.NotificationKind, message string) error {
	n := domain.Notification{
		ID:        util.NewULID(),
		Kind:      kind,
		Message:   message,
		CreatedAt: s.now().UTC(),
	}
	data, err := json.Marshal(n)
	if err != nil {
		return domain.NewInternalError("failed to marshal notification", err)
	}
	key := cache.NotificationInboxKey(userID)
	if err := s.cache.HSet(ctx, key, n.ID, string(data)); err != nil {
		return domain.NewInternalError("failed to store notification", err)
	}
	if err := s.cache.Expire(ctx, key, notificationRetention); err != nil {
		logger.Get().Warn("Failed to set inbox expiry", zap.String("userID", userID), zap.Error(err))
	}
	return nil
}

func (s *notificationService) Drain(ctx context.Context, userID string) ([]domain.Notification, error) {
	key := cache.NotificationInboxKey(userID)
	entries, err := s.cache.HGetAll(ctx, key)
	if err != nil {
		return nil, domain.NewInternalError("failed to read notifications", err)
	}

	out := make([]domain.Notification, 0, len(entries))
	fields := make([]string, 0, len(entries))
	for field, raw := range entries {
		fields = append(fields, field)
		var n domain.Notification
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			logger.Get().Warn("Discarding malformed notification", zap.String("userID", userID), zap.String("id", field))
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	if err := s.cache.HDel(ctx, key, fields...); err != nil {
		return nil, domain.NewInternalError("failed to clear notifications", err)
	}
	return out, nil
}
