package dto

import (
	"time"

	"finlearn/internal/domain"
)

// CourseResponse represents a course in the API response
// @Description Course information
type CourseResponse struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
	Difficulty  string    `json:"difficulty"`
	Duration    string    `json:"duration"`
	StagesCount int       `json:"stages_count"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewCourseResponse(c *domain.Course) CourseResponse {
	return CourseResponse{
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
}

// StageResponse represents a learning stage with the caller's completion state
// @Description Learning stage information
type StageResponse struct {
	ID              string             `json:"id"`
	OrderIndex      int                `json:"order_index"`
	Name            string             `json:"name"`
	Content         string             `json:"content,omitempty"`
	VideoURL        string             `json:"video_url,omitempty"`
	VideoDuration   int                `json:"video_duration,omitempty"`
	ReadingTime     string             `json:"reading_time,omitempty"`
	Difficulty      string             `json:"difficulty,omitempty"`
	Tags            []string           `json:"tags"`
	IsActive        bool               `json:"is_active"`
	LessonCompleted bool               `json:"lesson_completed"`
	QuizCompleted   bool               `json:"quiz_completed"`
	Status          domain.StageStatus `json:"status"`
}

// NewStageResponse maps a stage; withContent controls whether the lesson body is included.
func NewStageResponse(s *domain.LearningStage, lessonDone, quizDone, withContent bool) StageResponse {
	resp := StageResponse{
		ID:              s.ID,
		OrderIndex:      s.OrderIndex,
		Name:            s.Name,
		VideoURL:        s.VideoURL,
		VideoDuration:   s.VideoDuration,
		ReadingTime:     s.ReadingTime,
		Difficulty:      s.Difficulty,
		Tags:            s.Tags,
		IsActive:        s.IsActive,
		LessonCompleted: lessonDone,
		QuizCompleted:   quizDone,
		Status:          domain.StatusOf(lessonDone, quizDone),
	}
	if withContent {
		resp.Content = s.Content
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	return resp
}

// OptionView is an answer option without its correctness flag.
type OptionView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuestionView is a question as shown to a learner.
type QuestionView struct {
	ID       string              `json:"id"`
	Type     domain.QuestionType `json:"type"`
	Question string              `json:"question"`
	Options  []OptionView        `json:"options"`
}

// QuizResponse represents a quiz in the API response
// @Description Quiz without answer keys
type QuizResponse struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	OrderIndex   int            `json:"order_index"`
	TimeLimit    int            `json:"time_limit"`
	PassingScore int            `json:"passing_score"`
	Questions    []QuestionView `json:"questions"`
}

// NewQuizResponse strips isCorrect from every option.
func NewQuizResponse(q *domain.Quiz) QuizResponse {
	questions := make([]QuestionView, 0, len(q.Questions))
	for _, question := range q.Questions {
		opts := make([]OptionView, 0, len(question.Options))
		for _, o := range question.Options {
			opts = append(opts, OptionView{ID: o.ID, Text: o.Text})
		}
		questions = append(questions, QuestionView{
			ID:       question.ID,
			Type:     question.Type,
			Question: question.Prompt,
			Options:  opts,
		})
	}
	return QuizResponse{
		ID:           q.ID,
		Title:        q.Title,
		Description:  q.Description,
		OrderIndex:   q.OrderIndex,
		TimeLimit:    q.EffectiveTimeLimit(),
		PassingScore: q.PassingScore,
		Questions:    questions,
	}
}
