package dto

import "time"

// StudentOption is an answer choice as served to students. The type
// carries no correctness field, so nothing to strip at serialization.
type StudentOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// StudentQuestion is a question as served to students.
type StudentQuestion struct {
	ID            string          `json:"id"`
	Text          string          `json:"text"`
	ImageURL      string          `json:"image_url,omitempty"`
	MarksPositive float64         `json:"marks_positive"`
	MarksNegative float64         `json:"marks_negative"`
	Order         int             `json:"order"`
	Options       []StudentOption `json:"options"`
}

// StudentQuizResponse is the redacted quiz payload for the serving path.
// @Description Quiz payload with correctness flags stripped
type StudentQuizResponse struct {
	ID                  string            `json:"id"`
	ResourceID          string            `json:"resource_id"`
	PassingScorePercent float64           `json:"passing_score_percentage"`
	TimeLimitMinutes    int               `json:"time_limit_minutes"`
	Questions           []StudentQuestion `json:"questions"`
}

// ManagerOption carries the correctness flag; only privileged reads see it.
type ManagerOption struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

type ManagerQuestion struct {
	ID            string          `json:"id"`
	Text          string          `json:"text"`
	ImageURL      string          `json:"image_url,omitempty"`
	MarksPositive float64         `json:"marks_positive"`
	MarksNegative float64         `json:"marks_negative"`
	Order         int             `json:"order"`
	Options       []ManagerOption `json:"options"`
}

// ManagerQuizResponse is the unredacted quiz payload for content managers.
type ManagerQuizResponse struct {
	ID                  string            `json:"id"`
	ResourceID          string            `json:"resource_id"`
	PassingScorePercent float64           `json:"passing_score_percentage"`
	TimeLimitMinutes    int               `json:"time_limit_minutes"`
	Questions           []ManagerQuestion `json:"questions"`
}

// CreateQuizRequest builds a quiz with nested questions and options in
// one call. The resource must exist and be of type QUIZ.
type CreateQuizRequest struct {
	ResourceID          string                  `json:"resource_id"`
	PassingScorePercent float64                 `json:"passing_score_percentage"`
	TimeLimitMinutes    int                     `json:"time_limit_minutes"`
	Questions           []CreateQuestionRequest `json:"questions"`
}

type CreateQuestionRequest struct {
	Text          string                `json:"text"`
	ImageURL      string                `json:"image_url,omitempty"`
	MarksPositive float64               `json:"marks_positive"`
	MarksNegative float64               `json:"marks_negative"`
	Order         int                   `json:"order"`
	Options       []CreateOptionRequest `json:"options"`
}

type CreateOptionRequest struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// AnswerSelection is one (question, option) pair of a submission. An
// empty option id records the question as seen but unanswered.
type AnswerSelection struct {
	QuestionID string `json:"question_id"`
	OptionID   string `json:"option_id,omitempty"`
}

// SubmitAttemptRequest is a full quiz submission.
// @Description Quiz submission payload
type SubmitAttemptRequest struct {
	Answers []AnswerSelection `json:"answers"`
}

// AttemptResponse is the outcome of a scored submission.
// @Description Scored attempt outcome
type AttemptResponse struct {
	AttemptID   string    `json:"attempt_id"`
	QuizID      string    `json:"quiz_id"`
	TotalScore  float64   `json:"total_score"`
	IsCompleted bool      `json:"is_completed"`
	Passed      bool      `json:"passed"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// ErrorResponse represents an error in the API response
type ErrorResponse struct {
	Error string `json:"error"`
}
