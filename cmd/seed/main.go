package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"finlearn/cmd/seed/internal/seedmodels"
	"finlearn/internal/config"
	"finlearn/internal/database"
	"finlearn/internal/domain"
	"finlearn/internal/logger"
	"finlearn/internal/repository"
	"finlearn/internal/validation"

	"go.uber.org/zap"
)

const defaultSeedFile = "database/seed/courses.json"

func main() {
	seedFile := flag.String("file", defaultSeedFile, "path to the course seed JSON")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	db, err := database.NewPostgresDB(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	raw, err := os.ReadFile(*seedFile)
	if err != nil {
		log.Fatal("Failed to read seed file", zap.String("path", *seedFile), zap.Error(err))
	}
	var courses []seedmodels.SeedCourse
	if err := json.Unmarshal(raw, &courses); err != nil {
		log.Fatal("Failed to unmarshal seed data", zap.Error(err))
	}
	log.Info("Loaded seed data", zap.Int("courses", len(courses)))

	writer := repository.NewContentDatabaseAdapter(db)
	tx := repository.NewTransactionManagerAdapter(db)
	v := validation.NewValidator()

	failed := 0
	for _, sc := range courses {
		err := tx.WithTransaction(ctx, func(ctx context.Context) error {
			return seedCourse(ctx, writer, v, sc)
		})
		if err != nil {
			failed++
			log.Error("Seeding course failed, transaction rolled back", zap.String("slug", sc.Slug), zap.Error(err))
			continue
		}
		log.Info("Seeded course", zap.String("slug", sc.Slug),
			zap.Int("stages", len(sc.Stages)), zap.Int("quizzes", len(sc.Quizzes)))
	}
	if failed > 0 {
		log.Fatal("Seeding finished with failures", zap.Int("failed", failed))
	}
	log.Info("Seeding completed")
}

func seedCourse(ctx context.Context, w domain.ContentWriter, v *validation.Validator, sc seedmodels.SeedCourse) error {
	if errs := v.ValidateSlug(sc.Slug); len(errs) > 0 {
		return errs
	}
	courseID, err := w.SaveCourse(ctx, &domain.Course{
		Slug:        sc.Slug,
		Name:        sc.Name,
		Description: sc.Description,
		Icon:        sc.Icon,
		Color:       sc.Color,
		Difficulty:  sc.Difficulty,
		Duration:    sc.Duration,
		StagesCount: len(sc.Stages),
	})
	if err != nil {
		return err
	}

	for _, st := range sc.Stages {
		if _, err := w.SaveStage(ctx, &domain.LearningStage{
			CourseID:      courseID,
			OrderIndex:    st.OrderIndex,
			Name:          st.Name,
			Content:       st.Content,
			VideoURL:      st.VideoURL,
			VideoDuration: st.VideoDuration,
			ReadingTime:   st.ReadingTime,
			Difficulty:    st.Difficulty,
			Tags:          st.Tags,
			IsActive:      true,
		}); err != nil {
			return err
		}
	}

	for _, sq := range sc.Quizzes {
		quiz := &domain.Quiz{
			CourseID:     courseID,
			OrderIndex:   sq.OrderIndex,
			Title:        sq.Name,
			Description:  sq.Description,
			Questions:    sq.Questions,
			TimeLimit:    sq.TimeLimit,
			PassingScore: sq.PassingScore,
		}
		if quiz.PassingScore == 0 {
			quiz.PassingScore = domain.DefaultPassingScore
		}
		if err := quiz.Validate(); err != nil {
			return fmt.Errorf("quiz %d of %s: %w", sq.OrderIndex, sc.Slug, err)
		}
		if _, err := w.SaveQuiz(ctx, quiz); err != nil {
			return err
		}
	}
	return nil
}
