package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	QuestionTypeSingleChoice   QuestionType = "single_choice"
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
)

const (
	// DefaultTimeLimitMinutes applies when a quiz row carries no time limit.
	DefaultTimeLimitMinutes = 15
	// DefaultPassingScore applies when a quiz row carries no passing score.
	DefaultPassingScore = 70
)

// Option is one selectable answer of a question.
type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// Question is a single quiz item. Options are immutable once the quiz is published.
type Question struct {
	ID      string       `json:"id"`
	Type    QuestionType `json:"type"`
	Prompt  string       `json:"question"`
	Options []Option     `json:"options,omitempty"`
}

// Quiz is an ordered set of questions attached to a course stage by order index.
type Quiz struct {
	ID           string
	CourseID     string
	OrderIndex   int
	Title        string
	Description  string
	Questions    []Question
	TimeLimit    *int // minutes
	PassingScore int  // percentage
}

// Validate checks the structural invariants a quiz must satisfy before it is served.
func (q *Quiz) Validate() error {
	var errs ValidationErrors
	if q.Title == "" {
		errs = append(errs, NewMissingFieldError("title"))
	}
	if len(q.Questions) == 0 {
		errs = append(errs, NewValidationError("quiz must contain at least one question"))
	}
	if q.PassingScore < 0 || q.PassingScore > 100 {
		errs = append(errs, NewOutOfRangeError("passing_score", q.PassingScore, 0, 100))
	}
	if q.TimeLimit != nil && *q.TimeLimit < 0 {
		errs = append(errs, NewInvalidFormatError("time_limit", *q.TimeLimit))
	}

	seen := make(map[string]struct{}, len(q.Questions))
	for i, question := range q.Questions {
		if question.ID == "" {
			errs = append(errs, NewMissingFieldError(fmt.Sprintf("questions[%d].id", i)))
			continue
		}
		if _, dup := seen[question.ID]; dup {
			errs = append(errs, NewValidationError(fmt.Sprintf("duplicate question id %q", question.ID)))
		}
		seen[question.ID] = struct{}{}
		if err := question.Validate(); err != nil {
			errs = append(errs, NewValidationError(err.Error()))
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Validate checks option identity and the correct-option count for the question type.
func (q Question) Validate() error {
	if len(q.Options) == 0 {
		return fmt.Errorf("question %s has no options", q.ID)
	}
	ids := make(map[string]struct{}, len(q.Options))
	correct := 0
	for _, opt := range q.Options {
		if _, dup := ids[opt.ID]; dup {
			return fmt.Errorf("question %s has duplicate option id %q", q.ID, opt.ID)
		}
		ids[opt.ID] = struct{}{}
		if opt.IsCorrect {
			correct++
		}
	}
	switch q.Type {
	case QuestionTypeSingleChoice:
		if correct != 1 {
			return fmt.Errorf("single choice question %s must have exactly one correct option, has %d", q.ID, correct)
		}
	case QuestionTypeMultipleChoice:
	default:
		return fmt.Errorf("question %s has unsupported type %q", q.ID, q.Type)
	}
	return nil
}

// EffectiveTimeLimit returns the quiz time limit in minutes, falling back to the default.
func (q *Quiz) EffectiveTimeLimit() int {
	if q.TimeLimit == nil {
		return DefaultTimeLimitMinutes
	}
	return *q.TimeLimit
}

// Answer is the submitted response to one question: either a single option id
// or a set of option ids. On the wire a JSON string is a single answer and a
// JSON array is a multiple answer.
type Answer struct {
	optionID  string
	optionIDs []string
	multiple  bool
}

// SingleAnswer builds a scalar answer.
func SingleAnswer(optionID string) Answer {
	return Answer{optionID: optionID}
}

// MultipleAnswer builds a collection answer.
func MultipleAnswer(optionIDs ...string) Answer {
	ids := make([]string, len(optionIDs))
	copy(ids, optionIDs)
	return Answer{optionIDs: ids, multiple: true}
}

func (a Answer) IsMultiple() bool { return a.multiple }

func (a Answer) OptionID() string { return a.optionID }

func (a Answer) OptionIDs() []string { return a.optionIDs }

// UnmarshalJSON accepts either a string or an array of strings.
func (a *Answer) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var ids []string
		if err := json.Unmarshal(trimmed, &ids); err != nil {
			return fmt.Errorf("answer must be a string or an array of strings: %w", err)
		}
		*a = MultipleAnswer(ids...)
		return nil
	}
	var id string
	if err := json.Unmarshal(trimmed, &id); err != nil {
		return fmt.Errorf("answer must be a string or an array of strings: %w", err)
	}
	*a = SingleAnswer(id)
	return nil
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.multiple {
		ids := a.optionIDs
		if ids == nil {
			ids = []string{}
		}
		return json.Marshal(ids)
	}
	return json.Marshal(a.optionID)
}

// Answers maps question id to the submitted answer. It lives only for the
// duration of one quiz run and is never persisted.
type Answers map[string]Answer

// ValidateAnswer decides whether answer is correct for question. It never
// fails: malformed or mismatched input is simply incorrect.
func ValidateAnswer(question Question, answer Answer) bool {
	switch question.Type {
	case QuestionTypeSingleChoice:
		if answer.multiple {
			return false
		}
		for _, opt := range question.Options {
			if opt.ID == answer.optionID {
				return opt.IsCorrect
			}
		}
		return false

	case QuestionTypeMultipleChoice:
		if !answer.multiple || len(question.Options) == 0 {
			return false
		}
		selected := make(map[string]struct{}, len(answer.optionIDs))
		for _, id := range answer.optionIDs {
			selected[id] = struct{}{}
		}
		correct := make(map[string]struct{})
		for _, opt := range question.Options {
			if opt.IsCorrect {
				correct[opt.ID] = struct{}{}
			}
		}
		if len(selected) != len(correct) {
			return false
		}
		for id := range selected {
			if _, ok := correct[id]; !ok {
				return false
			}
		}
		return true

	default:
		return false
	}
}

// CalculateScore returns the percentage of questions answered correctly.
// Unanswered questions count as incorrect.
func CalculateScore(quiz *Quiz, answers Answers) int {
	return ScoreQuiz(quiz, answers).Score
}

// IsPassed reports whether score meets the passing threshold; equality passes.
func IsPassed(score, passingScore int) bool {
	return score >= passingScore
}

// QuestionResult is the per-question outcome of a scored quiz.
type QuestionResult struct {
	QuestionID string `json:"question_id"`
	Answered   bool   `json:"answered"`
	Correct    bool   `json:"correct"`
}

// QuizResult is the full outcome of scoring one quiz run.
type QuizResult struct {
	Score          int              `json:"score"`
	CorrectCount   int              `json:"correct_count"`
	TotalQuestions int              `json:"total_questions"`
	Passed         bool             `json:"passed"`
	Questions      []QuestionResult `json:"questions"`
}

// ScoreQuiz runs the validator over every question of quiz.
func ScoreQuiz(quiz *Quiz, answers Answers) QuizResult {
	if quiz == nil {
		return QuizResult{Questions: []QuestionResult{}}
	}
	result := QuizResult{
		TotalQuestions: len(quiz.Questions),
		Questions:      make([]QuestionResult, 0, len(quiz.Questions)),
	}
	for _, question := range quiz.Questions {
		qr := QuestionResult{QuestionID: question.ID}
		if answer, ok := answers[question.ID]; ok {
			qr.Answered = true
			qr.Correct = ValidateAnswer(question, answer)
		}
		if qr.Correct {
			result.CorrectCount++
		}
		result.Questions = append(result.Questions, qr)
	}
	result.Score = Percent(result.CorrectCount, result.TotalQuestions)
	result.Passed = IsPassed(result.Score, quiz.PassingScore)
	return result
}

// QuizProgress is the in-quiz progress bar value while the user is on
// question currentIndex (zero based). It reaches 100 only on the last question.
func QuizProgress(currentIndex, totalQuestions int) int {
	return Percent(currentIndex, totalQuestions-1)
}
