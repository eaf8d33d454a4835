package service

import (
	"context"
	"fmt"
	"time"

	"qubitgyan/internal/domain"
	"qubitgyan/internal/dto"
	"qubitgyan/internal/logger"

	"go.uber.org/zap"
)

// QuizService serves quizzes, grades submissions and enforces the
// per-user attempt limit.
type QuizService interface {
	// GetQuizForStudent returns the redacted quiz payload.
	GetQuizForStudent(ctx context.Context, quizID string) (*dto.StudentQuizResponse, error)

	// GetQuizByResourceForStudent resolves the quiz attached to a
	// resource and returns the redacted payload.
	GetQuizByResourceForStudent(ctx context.Context, resourceID string) (*dto.StudentQuizResponse, error)

	// GetQuizForManager returns the quiz with correctness flags intact.
	GetQuizForManager(ctx context.Context, quizID string) (*dto.ManagerQuizResponse, error)

	// CreateQuiz persists a quiz with its nested questions and options.
	CreateQuiz(ctx context.Context, req dto.CreateQuizRequest) (*dto.ManagerQuizResponse, error)

	// SubmitAttempt grades a submission, persists the attempt and
	// records progress. Rejected once the attempt limit is reached.
	SubmitAttempt(ctx context.Context, userID, quizID string, req dto.SubmitAttemptRequest) (*dto.AttemptResponse, error)

	// GetMyAttempts returns the caller's attempt history, newest first.
	GetMyAttempts(ctx context.Context, userID string) ([]*dto.AttemptResponse, error)
}

type quizService struct {
	quizRepo     domain.QuizRepository
	resourceRepo domain.ResourceRepository
	txManager    domain.TransactionManager
	scorer       *ScoringEngine
	limiter      *AttemptLimiter
	attemptLimit int
}

func NewQuizService(
	quizRepo domain.QuizRepository,
	resourceRepo domain.ResourceRepository,
	txManager domain.TransactionManager,
	attemptLimit int,
) QuizService {
	return &quizService{
		quizRepo:     quizRepo,
		resourceRepo: resourceRepo,
		txManager:    txManager,
		scorer:       NewScoringEngine(),
		limiter:      NewAttemptLimiter(),
		attemptLimit: attemptLimit,
	}
}

func (s *quizService) GetQuizForStudent(ctx context.Context, quizID string) (*dto.StudentQuizResponse, error) {
	quiz, err := s.loadQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return RedactQuiz(quiz), nil
}

func (s *quizService) GetQuizByResourceForStudent(ctx context.Context, resourceID string) (*dto.StudentQuizResponse, error) {
	quiz, err := s.quizRepo.GetQuizByResourceID(ctx, resourceID)
	if err != nil {
		return nil, domain.NewStoreUnavailableError("failed to look up quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("no quiz attached to resource %s", resourceID))
	}
	return RedactQuiz(quiz), nil
}

func (s *quizService) GetQuizForManager(ctx context.Context, quizID string) (*dto.ManagerQuizResponse, error) {
	quiz, err := s.loadQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return ManagerQuizView(quiz), nil
}

// CreateQuiz validates the target resource, then writes the quiz with
// its questions and options in one transaction. A resource carries at
// most one quiz.
func (s *quizService) CreateQuiz(ctx context.Context, req dto.CreateQuizRequest) (*dto.ManagerQuizResponse, error) {
	quiz := quizFromRequest(req)
	if err := quiz.Validate(); err != nil {
		return nil, err
	}

	resource, err := s.resourceRepo.GetResource(ctx, req.ResourceID)
	if err != nil {
		return nil, domain.NewStoreUnavailableError("failed to look up resource", err)
	}
	if resource == nil {
		return nil, domain.NewResourceNotFoundError(req.ResourceID)
	}
	if resource.ResourceType != domain.ResourceTypeQuiz {
		return nil, domain.NewValidationError("resource is not of type QUIZ")
	}
	existing, err := s.quizRepo.GetQuizByResourceID(ctx, req.ResourceID)
	if err != nil {
		return nil, domain.NewStoreUnavailableError("failed to look up quiz", err)
	}
	if existing != nil {
		return nil, domain.NewValidationError("resource already has a quiz")
	}

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		return s.quizRepo.CreateQuiz(ctx, quiz)
	})
	if err != nil {
		return nil, domain.NewStoreUnavailableError("failed to create quiz", err)
	}
	logger.Get().Info("quiz created",
		zap.String("quiz_id", quiz.ID),
		zap.String("resource_id", quiz.ResourceID),
		zap.Int("questions", len(quiz.Questions)),
	)
	return ManagerQuizView(quiz), nil
}

// SubmitAttempt grades and persists a submission. The count check and
// the insert run inside one transaction, serialized per (user, quiz) so
// concurrent submissions cannot both observe a free slot.
func (s *quizService) SubmitAttempt(ctx context.Context, userID, quizID string, req dto.SubmitAttemptRequest) (*dto.AttemptResponse, error) {
	quiz, err := s.loadQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	result, err := s.scorer.Score(quiz, req.Answers)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	attempt := &domain.Attempt{
		UserID:      userID,
		QuizID:      quizID,
		TotalScore:  result.Total,
		IsCompleted: true,
		Passed:      result.Passed,
		Responses:   result.Responses,
		StartedAt:   now,
		EndedAt:     now,
	}

	err = s.limiter.Do(userID, quizID, func() error {
		return s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
			count, err := s.quizRepo.GetAttemptCount(ctx, userID, quizID)
			if err != nil {
				return domain.NewStoreUnavailableError("failed to count attempts", err)
			}
			if count >= s.attemptLimit {
				return domain.NewLimitExceededError(fmt.Sprintf("attempt limit of %d reached for this quiz", s.attemptLimit))
			}
			if err := s.quizRepo.CreateAttempt(ctx, attempt); err != nil {
				return domain.NewStoreUnavailableError("failed to record attempt", err)
			}
			return s.quizRepo.UpsertProgress(ctx, &domain.StudentProgress{
				UserID:       userID,
				ResourceID:   quiz.ResourceID,
				IsCompleted:  true,
				LastAccessed: now,
			})
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Info("attempt recorded",
		zap.String("user_id", userID),
		zap.String("quiz_id", quizID),
		zap.Float64("total_score", result.Total),
		zap.Bool("passed", result.Passed),
	)
	return attemptToResponse(attempt), nil
}

func (s *quizService) GetMyAttempts(ctx context.Context, userID string) ([]*dto.AttemptResponse, error) {
	attempts, err := s.quizRepo.ListAttemptsByUser(ctx, userID)
	if err != nil {
		return nil, domain.NewStoreUnavailableError("failed to list attempts", err)
	}
	responses := make([]*dto.AttemptResponse, 0, len(attempts))
	for _, attempt := range attempts {
		responses = append(responses, attemptToResponse(attempt))
	}
	return responses, nil
}

func (s *quizService) loadQuiz(ctx context.Context, quizID string) (*domain.Quiz, error) {
	quiz, err := s.quizRepo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, domain.NewStoreUnavailableError("failed to look up quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}
	return quiz, nil
}

func quizFromRequest(req dto.CreateQuizRequest) *domain.Quiz {
	quiz := &domain.Quiz{
		ResourceID:          req.ResourceID,
		PassingScorePercent: req.PassingScorePercent,
		TimeLimitMinutes:    req.TimeLimitMinutes,
	}
	for _, qr := range req.Questions {
		question := &domain.Question{
			Text:          qr.Text,
			ImageURL:      qr.ImageURL,
			MarksPositive: qr.MarksPositive,
			MarksNegative: qr.MarksNegative,
			Order:         qr.Order,
		}
		for _, or := range qr.Options {
			question.Options = append(question.Options, &domain.Option{
				Text:      or.Text,
				IsCorrect: or.IsCorrect,
			})
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	return quiz
}

func attemptToResponse(attempt *domain.Attempt) *dto.AttemptResponse {
	return &dto.AttemptResponse{
		AttemptID:   attempt.ID,
		QuizID:      attempt.QuizID,
		TotalScore:  attempt.TotalScore,
		IsCompleted: attempt.IsCompleted,
		Passed:      attempt.Passed,
		SubmittedAt: attempt.EndedAt,
	}
}
