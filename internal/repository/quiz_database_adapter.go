package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"qubitgyan/internal/domain"
	"qubitgyan/internal/repository/models"
	"qubitgyan/internal/util"

	"github.com/jmoiron/sqlx"
)

// QuizDatabaseAdapter implements domain.QuizRepository using sqlx.DB
type QuizDatabaseAdapter struct {
	db *sqlx.DB
}

// NewQuizDatabaseAdapter creates a new instance of QuizDatabaseAdapter
func NewQuizDatabaseAdapter(db *sqlx.DB) domain.QuizRepository {
	return &QuizDatabaseAdapter{db: db}
}

const selectQuizColumns = `
	id "id",
	resource_id "resource_id",
	passing_score_percentage "passing_score_percentage",
	time_limit_minutes "time_limit_minutes",
	created_at "created_at",
	updated_at "updated_at",
	deleted_at "deleted_at"`

// GetQuizByID implements domain.QuizRepository
func (a *QuizDatabaseAdapter) GetQuizByID(ctx context.Context, id string) (*domain.Quiz, error) {
	var modelQuiz models.Quiz
	query := `SELECT ` + selectQuizColumns + `
	FROM quizzes
	WHERE id = :1
	AND deleted_at IS NULL`

	executor := GetExecutor(ctx, a.db)
	err := executor.GetContext(ctx, &modelQuiz, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz by ID %s: %w", id, err)
	}
	return a.loadQuizBody(ctx, &modelQuiz)
}

// GetQuizByResourceID implements domain.QuizRepository
func (a *QuizDatabaseAdapter) GetQuizByResourceID(ctx context.Context, resourceID string) (*domain.Quiz, error) {
	var modelQuiz models.Quiz
	query := `SELECT ` + selectQuizColumns + `
	FROM quizzes
	WHERE resource_id = :1
	AND deleted_at IS NULL`

	executor := GetExecutor(ctx, a.db)
	err := executor.GetContext(ctx, &modelQuiz, query, resourceID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz by resource ID %s: %w", resourceID, err)
	}
	return a.loadQuizBody(ctx, &modelQuiz)
}

// loadQuizBody attaches the nested questions and options to a quiz row.
func (a *QuizDatabaseAdapter) loadQuizBody(ctx context.Context, modelQuiz *models.Quiz) (*domain.Quiz, error) {
	executor := GetExecutor(ctx, a.db)

	var modelQuestions []models.Question
	questionQuery := `SELECT
		id "id",
		quiz_id "quiz_id",
		text "text",
		image_url "image_url",
		marks_positive "marks_positive",
		marks_negative "marks_negative",
		sort_order "sort_order"
	FROM questions
	WHERE quiz_id = :1
	ORDER BY sort_order, id`
	if err := executor.SelectContext(ctx, &modelQuestions, questionQuery, modelQuiz.ID); err != nil {
		return nil, fmt.Errorf("failed to load questions of quiz %s: %w", modelQuiz.ID, err)
	}

	quiz := &domain.Quiz{
		ID:                  modelQuiz.ID,
		ResourceID:          modelQuiz.ResourceID,
		PassingScorePercent: modelQuiz.PassingScorePercent,
		TimeLimitMinutes:    modelQuiz.TimeLimitMinutes,
		CreatedAt:           modelQuiz.CreatedAt,
		UpdatedAt:           modelQuiz.UpdatedAt,
	}

	optionQuery := `SELECT
		id "id",
		question_id "question_id",
		text "text",
		is_correct "is_correct"
	FROM options
	WHERE question_id = :1
	ORDER BY id`

	for i := range modelQuestions {
		mq := &modelQuestions[i]

		var modelOptions []models.Option
		if err := executor.SelectContext(ctx, &modelOptions, optionQuery, mq.ID); err != nil {
			return nil, fmt.Errorf("failed to load options of question %s: %w", mq.ID, err)
		}

		question := &domain.Question{
			ID:            mq.ID,
			QuizID:        mq.QuizID,
			Text:          mq.Text,
			ImageURL:      mq.ImageURL.String,
			MarksPositive: mq.MarksPositive,
			MarksNegative: mq.MarksNegative,
			Order:         mq.SortOrder,
		}
		for _, mo := range modelOptions {
			question.Options = append(question.Options, &domain.Option{
				ID:         mo.ID,
				QuestionID: mo.QuestionID,
				Text:       mo.Text,
				IsCorrect:  mo.IsCorrect == 1,
			})
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	return quiz, nil
}

// CreateQuiz implements domain.QuizRepository. The caller is expected to
// wrap this in a transaction so the nested inserts are atomic.
func (a *QuizDatabaseAdapter) CreateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	if quiz == nil {
		return fmt.Errorf("cannot save nil quiz")
	}
	if quiz.ID == "" {
		quiz.ID = util.NewULID()
	}
	now := time.Now()

	executor := GetExecutor(ctx, a.db)
	quizQuery := `INSERT INTO quizzes (
		id, resource_id, passing_score_percentage, time_limit_minutes, created_at, updated_at
	) VALUES (
		:1, :2, :3, :4, :5, :6
	)`
	if _, err := executor.ExecContext(ctx, quizQuery,
		quiz.ID,
		quiz.ResourceID,
		quiz.PassingScorePercent,
		quiz.TimeLimitMinutes,
		now,
		now,
	); err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}

	questionQuery := `INSERT INTO questions (
		id, quiz_id, text, image_url, marks_positive, marks_negative, sort_order
	) VALUES (
		:1, :2, :3, :4, :5, :6, :7
	)`
	optionQuery := `INSERT INTO options (
		id, question_id, text, is_correct
	) VALUES (
		:1, :2, :3, :4
	)`

	for _, question := range quiz.Questions {
		if question.ID == "" {
			question.ID = util.NewULID()
		}
		question.QuizID = quiz.ID
		if _, err := executor.ExecContext(ctx, questionQuery,
			question.ID,
			question.QuizID,
			question.Text,
			util.StringToNullString(question.ImageURL),
			question.MarksPositive,
			question.MarksNegative,
			question.Order,
		); err != nil {
			return fmt.Errorf("failed to create question: %w", err)
		}

		for _, option := range question.Options {
			if option.ID == "" {
				option.ID = util.NewULID()
			}
			option.QuestionID = question.ID
			isCorrect := 0
			if option.IsCorrect {
				isCorrect = 1
			}
			if _, err := executor.ExecContext(ctx, optionQuery,
				option.ID,
				option.QuestionID,
				option.Text,
				isCorrect,
			); err != nil {
				return fmt.Errorf("failed to create option: %w", err)
			}
		}
	}
	return nil
}

// GetAttemptCount implements domain.QuizRepository
func (a *QuizDatabaseAdapter) GetAttemptCount(ctx context.Context, userID, quizID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM quiz_attempts
	WHERE user_id = :1
	AND quiz_id = :2`

	executor := GetExecutor(ctx, a.db)
	if err := executor.GetContext(ctx, &count, query, userID, quizID); err != nil {
		return 0, fmt.Errorf("failed to count attempts for user %s quiz %s: %w", userID, quizID, err)
	}
	return count, nil
}

// CreateAttempt implements domain.QuizRepository. The caller wraps this
// in a transaction together with the admission count check.
func (a *QuizDatabaseAdapter) CreateAttempt(ctx context.Context, attempt *domain.Attempt) error {
	if attempt == nil {
		return fmt.Errorf("cannot save nil attempt")
	}
	if attempt.ID == "" {
		attempt.ID = util.NewULID()
	}
	now := time.Now()
	if attempt.StartedAt.IsZero() {
		attempt.StartedAt = now
	}
	if attempt.EndedAt.IsZero() {
		attempt.EndedAt = now
	}
	attempt.CreatedAt = now

	isCompleted := 0
	if attempt.IsCompleted {
		isCompleted = 1
	}
	passed := 0
	if attempt.Passed {
		passed = 1
	}

	executor := GetExecutor(ctx, a.db)
	attemptQuery := `INSERT INTO quiz_attempts (
		id, user_id, quiz_id, total_score, is_completed, passed, started_at, ended_at, created_at
	) VALUES (
		:1, :2, :3, :4, :5, :6, :7, :8, :9
	)`
	if _, err := executor.ExecContext(ctx, attemptQuery,
		attempt.ID,
		attempt.UserID,
		attempt.QuizID,
		attempt.TotalScore,
		isCompleted,
		passed,
		attempt.StartedAt,
		util.TimeToNullTime(attempt.EndedAt),
		attempt.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to create quiz attempt: %w", err)
	}

	responseQuery := `INSERT INTO attempt_responses (
		id, attempt_id, question_id, selected_option_id
	) VALUES (
		:1, :2, :3, :4
	)`
	for _, response := range attempt.Responses {
		if response.ID == "" {
			response.ID = util.NewULID()
		}
		response.AttemptID = attempt.ID
		if _, err := executor.ExecContext(ctx, responseQuery,
			response.ID,
			response.AttemptID,
			response.QuestionID,
			util.StringToNullString(response.SelectedOptionID),
		); err != nil {
			return fmt.Errorf("failed to create attempt response: %w", err)
		}
	}
	return nil
}

// ListAttemptsByUser implements domain.QuizRepository
func (a *QuizDatabaseAdapter) ListAttemptsByUser(ctx context.Context, userID string) ([]*domain.Attempt, error) {
	var modelAttempts []models.QuizAttempt
	query := `SELECT
		id "id",
		user_id "user_id",
		quiz_id "quiz_id",
		total_score "total_score",
		is_completed "is_completed",
		passed "passed",
		started_at "started_at",
		ended_at "ended_at",
		created_at "created_at"
	FROM quiz_attempts
	WHERE user_id = :1
	ORDER BY started_at DESC`

	executor := GetExecutor(ctx, a.db)
	if err := executor.SelectContext(ctx, &modelAttempts, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list attempts of user %s: %w", userID, err)
	}

	attempts := make([]*domain.Attempt, 0, len(modelAttempts))
	for _, m := range modelAttempts {
		attempts = append(attempts, &domain.Attempt{
			ID:          m.ID,
			UserID:      m.UserID,
			QuizID:      m.QuizID,
			TotalScore:  m.TotalScore,
			IsCompleted: m.IsCompleted == 1,
			Passed:      m.Passed == 1,
			StartedAt:   m.StartedAt,
			EndedAt:     m.EndedAt.Time,
			CreatedAt:   m.CreatedAt,
		})
	}
	return attempts, nil
}

// UpsertProgress implements domain.QuizRepository using Oracle MERGE so
// the (user, resource) pair stays unique.
func (a *QuizDatabaseAdapter) UpsertProgress(ctx context.Context, progress *domain.StudentProgress) error {
	if progress == nil {
		return fmt.Errorf("cannot save nil progress")
	}
	if progress.ID == "" {
		progress.ID = util.NewULID()
	}
	isCompleted := 0
	if progress.IsCompleted {
		isCompleted = 1
	}

	query := `MERGE INTO student_progress sp
	USING (SELECT :1 user_id, :2 resource_id FROM dual) src
	ON (sp.user_id = src.user_id AND sp.resource_id = src.resource_id)
	WHEN MATCHED THEN
		UPDATE SET sp.is_completed = :3, sp.last_accessed = :4
	WHEN NOT MATCHED THEN
		INSERT (id, user_id, resource_id, is_completed, last_accessed)
		VALUES (:5, :1, :2, :3, :4)`

	executor := GetExecutor(ctx, a.db)
	_, err := executor.ExecContext(ctx, query,
		progress.UserID,
		progress.ResourceID,
		isCompleted,
		time.Now(),
		progress.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert student progress: %w", err)
	}
	return nil
}
