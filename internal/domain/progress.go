package domain

// StageStatus is the three-state view of one stage used by the course map.
type StageStatus string

const (
	StageNotStarted StageStatus = "not_started"
	StageLessonDone StageStatus = "lesson_done"
	StageCompleted  StageStatus = "completed"
)

// StageProgress is the per-stage breakdown row.
type StageProgress struct {
	StageOrderIndex int         `json:"stage_order_index"`
	StageCompleted  bool        `json:"stage_completed"`
	QuizCompleted   bool        `json:"quiz_completed"`
	Status          StageStatus `json:"status"`
}

// CourseProgress is derived on demand and never persisted.
type CourseProgress struct {
	CourseID         string          `json:"course_id"`
	Progress         int             `json:"progress"`
	CompletedStages  int             `json:"completed_stages"`
	TotalStages      int             `json:"total_stages"`
	CompletedQuizzes int             `json:"completed_quizzes"`
	TotalQuizzes     int             `json:"total_quizzes"`
	CompletedCount   int             `json:"completed_count"`
	StageProgress    []StageProgress `json:"stage_progress"`
}

// IsCompleted reports whether every stage and quiz of the course is done.
func (p CourseProgress) IsCompleted() bool {
	return p.Progress >= 100
}

// CourseProgressInput carries the four reads the aggregator joins.
// Completed*Orders hold the order index of each completion record.
type CourseProgressInput struct {
	CourseID             string
	TotalStages          int
	TotalQuizzes         int
	CompletedStageOrders []int
	CompletedQuizOrders  []int
}

// StatusOf maps the two completion flags onto the three-state contract. A quiz
// recorded without its lesson is a legacy anomaly and reads as not started.
func StatusOf(stageCompleted, quizCompleted bool) StageStatus {
	switch {
	case stageCompleted && quizCompleted:
		return StageCompleted
	case stageCompleted:
		return StageLessonDone
	default:
		return StageNotStarted
	}
}

// AggregateCourseProgress combines completion records into course-level figures.
func AggregateCourseProgress(in CourseProgressInput) CourseProgress {
	completedStages := len(in.CompletedStageOrders)
	completedQuizzes := len(in.CompletedQuizOrders)

	stageSet := make(map[int]struct{}, completedStages)
	for _, idx := range in.CompletedStageOrders {
		stageSet[idx] = struct{}{}
	}
	quizSet := make(map[int]struct{}, completedQuizzes)
	for _, idx := range in.CompletedQuizOrders {
		quizSet[idx] = struct{}{}
	}

	breakdown := make([]StageProgress, 0, in.TotalStages)
	for i := 1; i <= in.TotalStages; i++ {
		_, stageDone := stageSet[i]
		_, quizDone := quizSet[i]
		breakdown = append(breakdown, StageProgress{
			StageOrderIndex: i,
			StageCompleted:  stageDone,
			QuizCompleted:   quizDone,
			Status:          StatusOf(stageDone, quizDone),
		})
	}

	return CourseProgress{
		CourseID:         in.CourseID,
		Progress:         Percent(completedStages+completedQuizzes, in.TotalStages+in.TotalQuizzes),
		CompletedStages:  completedStages,
		TotalStages:      in.TotalStages,
		CompletedQuizzes: completedQuizzes,
		TotalQuizzes:     in.TotalQuizzes,
		CompletedCount:   min(completedStages, completedQuizzes),
		StageProgress:    breakdown,
	}
}

// CourseCounts is one course's row in the dashboard batch.
type CourseCounts struct {
	CourseID         string
	CompletedStages  int
	TotalStages      int
	CompletedQuizzes int
	TotalQuizzes     int
}

// CourseProgressSummary is the dashboard view of one course, without breakdown.
type CourseProgressSummary struct {
	CourseID         string `json:"course_id"`
	Progress         int    `json:"progress"`
	CompletedStages  int    `json:"completed_stages"`
	TotalStages      int    `json:"total_stages"`
	CompletedQuizzes int    `json:"completed_quizzes"`
	TotalQuizzes     int    `json:"total_quizzes"`
	CompletedCount   int    `json:"completed_count"`
	Completed        bool   `json:"completed"`
}

// AggregateAll applies the per-course formula to every course in one pass.
// courseIDs fixes the output order; courses missing from counts report zeros.
func AggregateAll(courseIDs []string, counts map[string]CourseCounts) []CourseProgressSummary {
	out := make([]CourseProgressSummary, 0, len(courseIDs))
	for _, id := range courseIDs {
		c := counts[id]
		progress := Percent(c.CompletedStages+c.CompletedQuizzes, c.TotalStages+c.TotalQuizzes)
		out = append(out, CourseProgressSummary{
			CourseID:         id,
			Progress:         progress,
			CompletedStages:  c.CompletedStages,
			TotalStages:      c.TotalStages,
			CompletedQuizzes: c.CompletedQuizzes,
			TotalQuizzes:     c.TotalQuizzes,
			CompletedCount:   min(c.CompletedStages, c.CompletedQuizzes),
			Completed:        progress >= 100,
		})
	}
	return out
}

// UserStats is the account-level summary shown on the profile page.
type UserStats struct {
	TotalCourses     int `json:"total_courses"`
	CompletedCourses int `json:"completed_courses"`
	TotalStages      int `json:"total_stages"`
	CompletedStages  int `json:"completed_stages"`
	TotalQuizzes     int `json:"total_quizzes"`
	CompletedQuizzes int `json:"completed_quizzes"`
	AverageScore     int `json:"average_score"`
}

// ComputeUserStats folds the dashboard batch and the user's latest quiz scores
// into account totals.
func ComputeUserStats(courses []CourseProgressSummary, latestScores []int) UserStats {
	stats := UserStats{TotalCourses: len(courses)}
	for _, c := range courses {
		stats.TotalStages += c.TotalStages
		stats.CompletedStages += c.CompletedStages
		stats.TotalQuizzes += c.TotalQuizzes
		stats.CompletedQuizzes += c.CompletedQuizzes
		if c.Completed {
			stats.CompletedCourses++
		}
	}
	sum := 0
	for _, s := range latestScores {
		sum += s
	}
	stats.AverageScore = roundDiv(sum, len(latestScores))
	return stats
}
