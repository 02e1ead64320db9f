package service

import (
	"context"
	"time"

	"finlearn/internal/logger"
	"finlearn/internal/session"

	"go.uber.org/zap"
)

// ListenForSignOut drops a user's cached progress and avatar URL when the
// user signs out. Close the returned subscription on shutdown.
func ListenForSignOut(hub *session.Hub, progress ProgressService, avatars AvatarService) (*session.Subscription, error) {
	return hub.Handle("cache-invalidation", func(ev session.Event) {
		switch ev.Type {
		case session.SignedIn:
			logger.Get().Debug("User session started", zap.String("userID", ev.UserID))
		case session.SignedOut:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if progress != nil {
				progress.InvalidateUser(ctx, ev.UserID)
			}
			if avatars != nil {
				avatars.Invalidate(ctx, ev.UserID)
			}
		}
	})
}
