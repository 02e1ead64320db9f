package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"finlearn/internal/domain"
	"finlearn/internal/repository/models"
	"finlearn/internal/util"

	"github.com/jmoiron/sqlx"
)

// ProfileDatabaseAdapter implements domain.ProfileRepository on PostgreSQL.
type ProfileDatabaseAdapter struct {
	db *sqlx.DB
}

func NewProfileDatabaseAdapter(db *sqlx.DB) domain.ProfileRepository {
	return &ProfileDatabaseAdapter{db: db}
}

func (a *ProfileDatabaseAdapter) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	var row models.Profile
	query := `SELECT id, full_name, email, avatar_path, avatar_updated_at, updated_at FROM profiles WHERE id = $1`
	if err := GetExecutor(ctx, a.db).GetContext(ctx, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile %s: %w", userID, err)
	}
	return &domain.Profile{
		ID:              row.ID,
		FullName:        row.FullName,
		Email:           row.Email,
		AvatarPath:      util.NullStringToPtr(row.AvatarPath),
		AvatarUpdatedAt: row.AvatarUpdatedAt.Time,
		UpdatedAt:       row.UpdatedAt,
	}, nil
}

// UpsertProfile writes name and email; the avatar path is owned by SetAvatarPath.
func (a *ProfileDatabaseAdapter) UpsertProfile(ctx context.Context, p *domain.Profile) error {
	if p == nil {
		return fmt.Errorf("cannot save nil profile")
	}
	row := models.Profile{
		ID:        p.ID,
		FullName:  p.FullName,
		Email:     p.Email,
		UpdatedAt: p.UpdatedAt,
	}
	query := `INSERT INTO profiles (id, full_name, email, updated_at)
	VALUES (:id, :full_name, :email, :updated_at)
	ON CONFLICT (id) DO UPDATE SET
		full_name  = EXCLUDED.full_name,
		email      = EXCLUDED.email,
		updated_at = EXCLUDED.updated_at`
	if _, err := GetExecutor(ctx, a.db).NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("failed to save profile %s: %w", p.ID, err)
	}
	return nil
}

// SetAvatarPath stores or clears the avatar object key, creating the profile
// row when the user has none yet. Clearing also clears the avatar version.
func (a *ProfileDatabaseAdapter) SetAvatarPath(ctx context.Context, userID string, path *string, at time.Time) error {
	query := `INSERT INTO profiles (id, avatar_path, avatar_updated_at, updated_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (id) DO UPDATE SET
		avatar_path       = EXCLUDED.avatar_path,
		avatar_updated_at = EXCLUDED.avatar_updated_at,
		updated_at        = EXCLUDED.updated_at`
	version := sql.NullTime{Time: at, Valid: path != nil}
	if _, err := GetExecutor(ctx, a.db).ExecContext(ctx, query, userID, util.StringPtrToNullString(path), version, at); err != nil {
		return fmt.Errorf("failed to set avatar path for %s: %w", userID, err)
	}
	return nil
}

func (a *ProfileDatabaseAdapter) GetPreferences(ctx context.Context, userID string) (domain.Preferences, error) {
	var raw []byte
	query := `SELECT preferences FROM profiles WHERE id = $1`
	if err := GetExecutor(ctx, a.db).QueryRowxContext(ctx, query, userID).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DefaultPreferences(), nil
		}
		return domain.Preferences{}, fmt.Errorf("failed to get preferences for %s: %w", userID, err)
	}
	prefs, err := domain.DecodePreferences(raw)
	if err != nil {
		return domain.Preferences{}, fmt.Errorf("stored preferences for %s are not valid JSON: %w", userID, err)
	}
	return prefs, nil
}

// MergePreferences relies on jsonb || so keys absent from update, such as
// theme, keep their stored value.
func (a *ProfileDatabaseAdapter) MergePreferences(ctx context.Context, userID string, update domain.PreferencesUpdate, at time.Time) (domain.Preferences, error) {
	patch, err := json.Marshal(update)
	if err != nil {
		return domain.Preferences{}, fmt.Errorf("failed to encode preferences: %w", err)
	}
	query := `INSERT INTO profiles (id, preferences, updated_at)
	VALUES ($1, $2::jsonb, $3)
	ON CONFLICT (id) DO UPDATE SET
		preferences = COALESCE(profiles.preferences, '{}'::jsonb) || EXCLUDED.preferences,
		updated_at  = EXCLUDED.updated_at
	RETURNING preferences`
	var raw []byte
	if err := GetExecutor(ctx, a.db).QueryRowxContext(ctx, query, userID, string(patch), at).Scan(&raw); err != nil {
		return domain.Preferences{}, fmt.Errorf("failed to save preferences for %s: %w", userID, err)
	}
	prefs, err := domain.DecodePreferences(raw)
	if err != nil {
		return domain.Preferences{}, fmt.Errorf("merged preferences for %s are not valid JSON: %w", userID, err)
	}
	return prefs, nil
}
