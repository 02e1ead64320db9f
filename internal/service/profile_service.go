package service

import (
	"context"
	"sync"
	"time"

	"finlearn/internal/domain"
	"finlearn/internal/dto"
	"finlearn/internal/logger"

	"go.uber.org/zap"
)

const (
	profileUpdatedMessage      = "Profile updated successfully"
	profileUpdateFailedMessage = "Your profile changes could not be saved. Please try again."
)

// ProfileService reads and optimistically updates the caller's profile.
type ProfileService interface {
	GetProfile(ctx context.Context, userID, fallbackEmail string) (*dto.ProfileResponse, error)
	// UpdateProfile validates the change and returns the updated profile at
	// once. The write happens in the background and its outcome reaches the
	// user as a profile_updated or profile_update_failed notification.
	UpdateProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	GetNotifications(ctx context.Context, userID string) ([]domain.Notification, error)
	GetPreferences(ctx context.Context, userID string) (*domain.Preferences, error)
	// UpdatePreferences changes language and notifications and keeps every
	// other stored key, theme included.
	UpdatePreferences(ctx context.Context, userID string, req dto.UpdatePreferencesRequest) (*domain.Preferences, error)
	// Shutdown waits for pending background writes or until ctx is done.
	Shutdown(ctx context.Context) error
}

type profileService struct {
	profiles      domain.ProfileRepository
	avatars       AvatarService
	notifications NotificationService
	writeTimeout  time.Duration
	now           func() time.Time

	// mu orders pending.Add against Shutdown's Wait.
	mu       sync.Mutex
	pending  sync.WaitGroup
	stopping bool
}

func NewProfileService(profiles domain.ProfileRepository, avatars AvatarService, notifications NotificationService, writeTimeout time.Duration) ProfileService {
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &profileService{
		profiles:      profiles,
		avatars:       avatars,
		notifications: notifications,
		writeTimeout:  writeTimeout,
		now:           time.Now,
	}
}

func (s *profileService) GetProfile(ctx context.Context, userID, fallbackEmail string) (*dto.ProfileResponse, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, domain.NewPersistenceError("Failed to load profile", err)
	}
	if profile == nil {
		profile = &domain.Profile{ID: userID, Email: fallbackEmail}
	}

	resp := toProfileResponse(profile)
	if s.avatars != nil {
		url, err := s.avatars.GetAvatarURL(ctx, userID)
		if err != nil {
			logger.Get().Warn("Failed to resolve avatar url", zap.String("userID", userID), zap.Error(err))
		}
		resp.AvatarURL = url
	}
	return &resp, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	update := domain.ProfileUpdate{FullName: req.FullName, Email: req.Email}.Normalize()
	if err := update.Validate(); err != nil {
		return nil, err
	}

	current, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, domain.NewPersistenceError("Failed to load profile", err)
	}
	if current == nil {
		current = &domain.Profile{ID: userID}
	}
	next := current.Apply(update, s.now().UTC())

	if !s.startBackgroundWrite() {
		if err := s.write(&next); err != nil {
			return nil, domain.NewPersistenceError("Failed to save profile", err)
		}
	} else {
		go func() {
			defer s.pending.Done()
			if err := s.write(&next); err != nil {
				s.notifyFailure(userID, err)
				return
			}
			s.notify(userID, domain.NotificationProfileUpdated, profileUpdatedMessage)
		}()
	}

	resp := toProfileResponse(&next)
	if s.avatars != nil {
		resp.AvatarURL, _ = s.avatars.GetAvatarURL(ctx, userID)
	}
	return &resp, nil
}

// startBackgroundWrite registers a pending write unless Shutdown has begun.
func (s *profileService) startBackgroundWrite() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopping {
		return false
	}
	s.pending.Add(1)
	return true
}

// write runs detached from the request context, which ends with the response.
func (s *profileService) write(p *domain.Profile) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()
	return s.profiles.UpsertProfile(ctx, p)
}

func (s *profileService) notifyFailure(userID string, cause error) {
	logger.Get().Error("Deferred profile write failed", zap.String("userID", userID), zap.Error(cause))
	s.notify(userID, domain.NotificationProfileUpdateFailed, profileUpdateFailedMessage)
}

func (s *profileService) notify(userID string, kind domain.NotificationKind, message string) {
	if s.notifications == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()
	if err := s.notifications.Push(ctx, userID, kind, message); err != nil {
		logger.Get().Error("Failed to push profile notification",
			zap.String("userID", userID), zap.String("kind", string(kind)), zap.Error(err))
	}
}

func (s *profileService) GetNotifications(ctx context.Context, userID string) ([]domain.Notification, error) {
	if s.notifications == nil {
		return []domain.Notification{}, nil
	}
	return s.notifications.Drain(ctx, userID)
}

func (s *profileService) GetPreferences(ctx context.Context, userID string) (*domain.Preferences, error) {
	prefs, err := s.profiles.GetPreferences(ctx, userID)
	if err != nil {
		return nil, domain.NewPersistenceError("Failed to load preferences", err)
	}
	return &prefs, nil
}

func (s *profileService) UpdatePreferences(ctx context.Context, userID string, req dto.UpdatePreferencesRequest) (*domain.Preferences, error) {
	if req.Notifications == nil {
		return nil, domain.ValidationErrors{domain.NewMissingFieldError("notifications")}
	}
	update := domain.PreferencesUpdate{Language: req.Language, Notifications: *req.Notifications}
	prefs, err := s.profiles.MergePreferences(ctx, userID, update, s.now().UTC())
	if err != nil {
		return nil, domain.NewPersistenceError("Failed to update preferences", err)
	}
	logger.Get().Info("Preferences updated", zap.String("userID", userID), zap.String("language", prefs.Language))
	return &prefs, nil
}

func (s *profileService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.stopping = true
	s.mu.Unlock()
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func toProfileResponse(p *domain.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{
		ID:        p.ID,
		FullName:  p.FullName,
		Email:     p.Email,
		UpdatedAt: p.UpdatedAt,
	}
}
