package domain

import (
	"time"
)

// Quiz is the assessment attached to a QUIZ resource. Questions are kept
// in display order.
type Quiz struct {
	ID                  string
	ResourceID          string
	PassingScorePercent float64
	TimeLimitMinutes    int
	Questions           []*Question
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Validate validates the quiz
func (q *Quiz) Validate() error {
	if q.ResourceID == "" {
		return NewValidationError("resource ID is required")
	}
	if q.PassingScorePercent < 0 || q.PassingScorePercent > 100 {
		return NewValidationError("passing_score_percentage must be between 0 and 100")
	}
	for _, question := range q.Questions {
		if err := question.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// MaxPossibleScore is the sum of all questions' positive marks. Negative
// marks never raise the ceiling.
func (q *Quiz) MaxPossibleScore() float64 {
	var max float64
	for _, question := range q.Questions {
		max += question.MarksPositive
	}
	return max
}

// QuestionByID returns the question with the given id, or nil.
func (q *Quiz) QuestionByID(id string) *Question {
	for _, question := range q.Questions {
		if question.ID == id {
			return question
		}
	}
	return nil
}

// Question is one prompt in a quiz. A wrong selection deducts
// MarksNegative; an unanswered question contributes zero.
type Question struct {
	ID            string
	QuizID        string
	Text          string
	ImageURL      string
	MarksPositive float64
	MarksNegative float64
	Order         int
	Options       []*Option
}

// Validate validates the question
func (q *Question) Validate() error {
	if q.Text == "" {
		return NewValidationError("question text is required")
	}
	if q.MarksPositive < 0 {
		return NewValidationError("marks_positive must not be negative")
	}
	if q.MarksNegative < 0 {
		return NewValidationError("marks_negative must not be negative")
	}
	return nil
}

// OptionByID returns the option with the given id, or nil.
func (q *Question) OptionByID(id string) *Option {
	for _, option := range q.Options {
		if option.ID == id {
			return option
		}
	}
	return nil
}

// Option is one answer choice. IsCorrect is never exposed on a
// student-facing read; redaction happens at the serialization boundary.
type Option struct {
	ID         string
	QuestionID string
	Text       string
	IsCorrect  bool
}

// Attempt is one scored submission of a student's answers to a quiz.
// It is immutable once scored.
type Attempt struct {
	ID          string
	UserID      string
	QuizID      string
	TotalScore  float64
	IsCompleted bool
	Passed      bool
	Responses   []*AttemptResponse
	StartedAt   time.Time
	EndedAt     time.Time
	CreatedAt   time.Time
}

// AttemptResponse records one (question, selected option) pair of an
// attempt. SelectedOptionID is empty when the question was left blank.
type AttemptResponse struct {
	ID               string
	AttemptID        string
	QuestionID       string
	SelectedOptionID string
}

// StudentProgress marks a (user, resource) pair as completed, updated
// when a quiz attempt finishes.
type StudentProgress struct {
	ID           string
	UserID       string
	ResourceID   string
	IsCompleted  bool
	LastAccessed time.Time
}
