package models

import (
	"database/sql"
	"time"
)

// Quiz is the persisted quiz header attached to a QUIZ resource.
type Quiz struct {
	ID                  string       `db:"id"`
	ResourceID          string       `db:"resource_id"`
	PassingScorePercent float64      `db:"passing_score_percentage"`
	TimeLimitMinutes    int          `db:"time_limit_minutes"`
	CreatedAt           time.Time    `db:"created_at"`
	UpdatedAt           time.Time    `db:"updated_at"`
	DeletedAt           sql.NullTime `db:"deleted_at"`
}

// Question is one persisted prompt of a quiz.
type Question struct {
	ID            string         `db:"id"`
	QuizID        string         `db:"quiz_id"`
	Text          string         `db:"text"`
	ImageURL      sql.NullString `db:"image_url"`
	MarksPositive float64        `db:"marks_positive"`
	MarksNegative float64        `db:"marks_negative"`
	SortOrder     int            `db:"sort_order"`
}

// Option is one persisted answer choice. IS_CORRECT is NUMBER(1).
type Option struct {
	ID         string `db:"id"`
	QuestionID string `db:"question_id"`
	Text       string `db:"text"`
	IsCorrect  int    `db:"is_correct"`
}

// QuizAttempt is one persisted scored submission.
type QuizAttempt struct {
	ID          string       `db:"id"`
	UserID      string       `db:"user_id"`
	QuizID      string       `db:"quiz_id"`
	TotalScore  float64      `db:"total_score"`
	IsCompleted int          `db:"is_completed"`
	Passed      int          `db:"passed"`
	StartedAt   time.Time    `db:"started_at"`
	EndedAt     sql.NullTime `db:"ended_at"`
	CreatedAt   time.Time    `db:"created_at"`
}

// AttemptResponse is one persisted (question, selected option) pair.
type AttemptResponse struct {
	ID               string         `db:"id"`
	AttemptID        string         `db:"attempt_id"`
	QuestionID       string         `db:"question_id"`
	SelectedOptionID sql.NullString `db:"selected_option_id"`
}

// StudentProgress marks a (user, resource) pair completed.
type StudentProgress struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	ResourceID   string    `db:"resource_id"`
	IsCompleted  int       `db:"is_completed"`
	LastAccessed time.Time `db:"last_accessed"`
}
