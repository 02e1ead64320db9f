package repository

import (
	"context"
	"fmt"
	"time"

	"finlearn/internal/domain"
	"finlearn/internal/repository/models"
	"finlearn/internal/util"

	"github.com/jmoiron/sqlx"
)

// ContentDatabaseAdapter implements domain.ContentWriter for the seed tool.
type ContentDatabaseAdapter struct {
	db *sqlx.DB
}

func NewContentDatabaseAdapter(db *sqlx.DB) domain.ContentWriter {
	return &ContentDatabaseAdapter{db: db}
}

func (a *ContentDatabaseAdapter) SaveCourse(ctx context.Context, c *domain.Course) (string, error) {
	row := models.Course{
		ID:          c.ID,
		Slug:        c.Slug,
		Name:        c.Name,
		Description: c.Description,
		Icon:        c.Icon,
		Color:       c.Color,
		Difficulty:  c.Difficulty,
		Duration:    c.Duration,
		StagesCount: c.StagesCount,
		CreatedAt:   c.CreatedAt,
	}
	if row.ID == "" {
		row.ID = util.NewUUID()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	query := `INSERT INTO courses (` + courseColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (slug) DO UPDATE SET
		name = EXCLUDED.name,
		description = EXCLUDED.description,
		icon = EXCLUDED.icon,
		color = EXCLUDED.color,
		difficulty = EXCLUDED.difficulty,
		duration = EXCLUDED.duration,
		stages_count = EXCLUDED.stages_count
	RETURNING id`

	var id string
	err := GetExecutor(ctx, a.db).QueryRowxContext(ctx, query,
		row.ID, row.Slug, row.Name, row.Description, row.Icon, row.Color,
		row.Difficulty, row.Duration, row.StagesCount, row.CreatedAt,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to save course %q: %w", c.Slug, err)
	}
	return id, nil
}

func (a *ContentDatabaseAdapter) SaveStage(ctx context.Context, s *domain.LearningStage) (string, error) {
	id := s.ID
	if id == "" {
		id = util.NewUUID()
	}
	var videoURL, readingTime, difficulty *string
	if s.VideoURL != "" {
		videoURL = &s.VideoURL
	}
	if s.ReadingTime != "" {
		readingTime = &s.ReadingTime
	}
	if s.Difficulty != "" {
		difficulty = &s.Difficulty
	}
	var videoDuration *int
	if s.VideoDuration > 0 {
		videoDuration = &s.VideoDuration
	}
	query := `INSERT INTO learning_stages (` + stageColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (course_id, order_index) DO UPDATE SET
		name = EXCLUDED.name,
		content = EXCLUDED.content,
		video_url = EXCLUDED.video_url,
		video_duration = EXCLUDED.video_duration,
		reading_time = EXCLUDED.reading_time,
		difficulty = EXCLUDED.difficulty,
		tags = EXCLUDED.tags,
		is_active = EXCLUDED.is_active
	RETURNING id`

	var stored string
	err := GetExecutor(ctx, a.db).QueryRowxContext(ctx, query,
		id, s.CourseID, s.OrderIndex, s.Name, s.Content,
		util.StringPtrToNullString(videoURL),
		util.IntPtrToNullInt32(videoDuration),
		util.StringPtrToNullString(readingTime),
		util.StringPtrToNullString(difficulty),
		models.StringSlice(s.Tags),
		s.IsActive,
	).Scan(&stored)
	if err != nil {
		return "", fmt.Errorf("failed to save stage %d of course %s: %w", s.OrderIndex, s.CourseID, err)
	}
	return stored, nil
}

// SaveQuiz validates the quiz before writing it.
func (a *ContentDatabaseAdapter) SaveQuiz(ctx context.Context, q *domain.Quiz) (string, error) {
	if err := q.Validate(); err != nil {
		return "", fmt.Errorf("refusing to save invalid quiz %q: %w", q.Title, err)
	}
	row := toModelQuiz(q)
	if row.ID == "" {
		row.ID = util.NewUUID()
	}
	query := `INSERT INTO quizzes (` + quizColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (course_id, order_index) DO UPDATE SET
		name = EXCLUDED.name,
		description = EXCLUDED.description,
		questions = EXCLUDED.questions,
		time_limit = EXCLUDED.time_limit,
		passing_score = EXCLUDED.passing_score
	RETURNING id`

	var stored string
	err := GetExecutor(ctx, a.db).QueryRowxContext(ctx, query,
		row.ID, row.CourseID, row.OrderIndex, row.Name, row.Description,
		row.Questions, row.TimeLimit, row.PassingScore,
	).Scan(&stored)
	if err != nil {
		return "", fmt.Errorf("failed to save quiz %d of course %s: %w", q.OrderIndex, q.CourseID, err)
	}
	return stored, nil
}
