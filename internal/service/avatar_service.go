package service

import (
	"context"
	"errors"
	"io"
	"strconv"
	"time"

	"finlearn/internal/cache"
	"finlearn/internal/domain"
	"finlearn/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// AvatarService stores avatar images and serves their public URL through a
// read-through cache keyed by user id.
type AvatarService interface {
	// GetAvatarURL returns an empty string when the user has no avatar.
	GetAvatarURL(ctx context.Context, userID string) (string, error)
	Upload(ctx context.Context, userID, contentType string, size int64, body io.Reader) (string, error)
	Delete(ctx context.Context, userID string) error
	Invalidate(ctx context.Context, userID string)
}

type avatarService struct {
	profiles domain.ProfileRepository
	storage  domain.ObjectStorage
	cache    domain.Cache
	ttl      time.Duration
	group    singleflight.Group
	now      func() time.Time
}

func NewAvatarService(profiles domain.ProfileRepository, storage domain.ObjectStorage, c domain.Cache, ttl time.Duration) AvatarService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &avatarService{
		profiles: profiles,
		storage:  storage,
		cache:    c,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *avatarService) GetAvatarURL(ctx context.Context, userID string) (string, error) {
	key := cache.AvatarURLKey(userID)
	if s.cache != nil {
		url, err := s.cache.Get(ctx, key)
		if err == nil {
			return url, nil
		}
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("Avatar cache read failed", zap.String("userID", userID), zap.Error(err))
		}
	}

	v, err, _ := s.group.Do(userID, func() (interface{}, error) {
		profile, err := s.profiles.GetProfile(ctx, userID)
		if err != nil {
			return "", domain.NewPersistenceError("Failed to load profile", err)
		}
		url := ""
		if profile != nil && profile.AvatarPath != nil {
			url = s.versionedURL(*profile.AvatarPath, profile.AvatarUpdatedAt)
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, key, url, s.ttl); err != nil {
				logger.Get().Warn("Failed to cache avatar url", zap.String("userID", userID), zap.Error(err))
			}
		}
		return url, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *avatarService) Upload(ctx context.Context, userID, contentType string, size int64, body io.Reader) (string, error) {
	ext, ok := domain.AvatarExtension(contentType)
	if !ok {
		return "", domain.ValidationErrors{domain.NewInvalidFormatError("file", contentType)}
	}
	if size <= 0 || size > domain.MaxAvatarBytes {
		return "", domain.ValidationErrors{domain.NewOutOfRangeError("file", size, 1, domain.MaxAvatarBytes)}
	}

	path := domain.AvatarPath(userID, ext)
	if err := s.storage.Upload(ctx, path, contentType, io.LimitReader(body, domain.MaxAvatarBytes)); err != nil {
		return "", domain.NewStorageError("Failed to upload avatar", err)
	}

	// Only one extension is kept per user.
	for _, other := range []string{"jpg", "png"} {
		if other == ext {
			continue
		}
		if err := s.storage.Remove(ctx, domain.AvatarPath(userID, other)); err != nil {
			logger.Get().Debug("No stale avatar removed", zap.String("userID", userID), zap.Error(err))
		}
	}

	// The stored version and the returned URL share one timestamp.
	at := s.now().UTC()
	if err := s.profiles.SetAvatarPath(ctx, userID, &path, at); err != nil {
		return "", domain.NewPersistenceError("Failed to save avatar", err)
	}
	s.Invalidate(ctx, userID)
	logger.Get().Info("Avatar uploaded", zap.String("userID", userID), zap.String("path", path))
	return s.versionedURL(path, at), nil
}

func (s *avatarService) Delete(ctx context.Context, userID string) error {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return domain.NewPersistenceError("Failed to load profile", err)
	}
	if profile == nil || profile.AvatarPath == nil {
		s.Invalidate(ctx, userID)
		return nil
	}
	if err := s.storage.Remove(ctx, *profile.AvatarPath); err != nil {
		return domain.NewStorageError("Failed to delete avatar", err)
	}
	if err := s.profiles.SetAvatarPath(ctx, userID, nil, s.now().UTC()); err != nil {
		return domain.NewPersistenceError("Failed to clear avatar", err)
	}
	s.Invalidate(ctx, userID)
	return nil
}

func (s *avatarService) Invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.AvatarURLKey(userID)); err != nil {
		logger.Get().Warn("Failed to invalidate avatar cache", zap.String("userID", userID), zap.Error(err))
	}
}

// versionedURL appends the write time so clients refetch a replaced image
// stored under the same key.
func (s *avatarService) versionedURL(path string, version time.Time) string {
	return s.storage.PublicURL(path) + "?v=" + strconv.FormatInt(version.Unix(), 10)
}
