package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"finlearn/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileDatabaseAdapter_GetProfile(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewProfileDatabaseAdapter(db)
	cols := []string{"id", "full_name", "email", "avatar_path", "avatar_updated_at", "updated_at"}
	query := regexp.QuoteMeta(`FROM profiles WHERE id = $1`)
	avatarAt := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(query).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("u1", "Ada", "ada@example.com", "u1.png", avatarAt, time.Now()))
	p, err := repo.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, p.AvatarPath)
	assert.Equal(t, "u1.png", *p.AvatarPath)
	assert.Equal(t, avatarAt, p.AvatarUpdatedAt)

	mock.ExpectQuery(query).WithArgs("u2").WillReturnRows(sqlmock.NewRows(cols))
	p, err = repo.GetProfile(context.Background(), "u2")
	assert.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileDatabaseAdapter_UpsertProfile(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewProfileDatabaseAdapter(db)
	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO profiles (id, full_name, email, updated_at)`)).
		WithArgs("u1", "Ada", "ada@example.com", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpsertProfile(context.Background(), &domain.Profile{ID: "u1", FullName: "Ada", Email: "ada@example.com", UpdatedAt: now})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileDatabaseAdapter_SetAvatarPath(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewProfileDatabaseAdapter(db)
	query := regexp.QuoteMeta(`avatar_updated_at = EXCLUDED.avatar_updated_at`)
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	path := "u1.jpg"
	mock.ExpectExec(query).WithArgs("u1", "u1.jpg", at, at).WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.SetAvatarPath(context.Background(), "u1", &path, at))

	mock.ExpectExec(query).WithArgs("u1", nil, nil, at).WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.SetAvatarPath(context.Background(), "u1", nil, at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileDatabaseAdapter_GetPreferences(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewProfileDatabaseAdapter(db)
	query := regexp.QuoteMeta(`SELECT preferences FROM profiles WHERE id = $1`)

	tests := []struct {
		name string
		rows *sqlmock.Rows
		want domain.Preferences
	}{
		{
			name: "no profile row",
			rows: sqlmock.NewRows([]string{"preferences"}),
			want: domain.DefaultPreferences(),
		},
		{
			name: "null document",
			rows: sqlmock.NewRows([]string{"preferences"}).AddRow(nil),
			want: domain.DefaultPreferences(),
		},
		{
			name: "partial document keeps defaults for missing keys",
			rows: sqlmock.NewRows([]string{"preferences"}).AddRow([]byte(`{"language":"fr"}`)),
			want: domain.Preferences{Theme: "dark", Language: "fr", Notifications: true},
		},
		{
			name: "full document",
			rows: sqlmock.NewRows([]string{"preferences"}).AddRow([]byte(`{"theme":"light","language":"de","notifications":false}`)),
			want: domain.Preferences{Theme: "light", Language: "de", Notifications: false},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock.ExpectQuery(query).WithArgs("u1").WillReturnRows(tt.rows)
			got, err := repo.GetPreferences(context.Background(), "u1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileDatabaseAdapter_MergePreferences(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewProfileDatabaseAdapter(db)
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`COALESCE(profiles.preferences, '{}'::jsonb) || EXCLUDED.preferences`)).
		WithArgs("u1", `{"language":"es","notifications":false}`, at).
		WillReturnRows(sqlmock.NewRows([]string{"preferences"}).
			AddRow([]byte(`{"theme":"light","language":"es","notifications":false}`)))

	got, err := repo.MergePreferences(context.Background(), "u1",
		domain.PreferencesUpdate{Language: "es", Notifications: false}, at)
	require.NoError(t, err)
	assert.Equal(t, domain.Preferences{Theme: "light", Language: "es", Notifications: false}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
