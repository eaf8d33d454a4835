package service

import (
	"qubitgyan/internal/domain"
	"qubitgyan/internal/dto"
)

// RedactQuiz maps a quiz onto its student-facing shape. Correctness
// flags never reach this type, so a serializer cannot leak them.
func RedactQuiz(quiz *domain.Quiz) *dto.StudentQuizResponse {
	questions := make([]dto.StudentQuestion, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		options := make([]dto.StudentOption, 0, len(q.Options))
		for _, o := range q.Options {
			options = append(options, dto.StudentOption{
				ID:   o.ID,
				Text: o.Text,
			})
		}
		questions = append(questions, dto.StudentQuestion{
			ID:            q.ID,
			Text:          q.Text,
			ImageURL:      q.ImageURL,
			MarksPositive: q.MarksPositive,
			MarksNegative: q.MarksNegative,
			Order:         q.Order,
			Options:       options,
		})
	}
	return &dto.StudentQuizResponse{
		ID:                  quiz.ID,
		ResourceID:          quiz.ResourceID,
		PassingScorePercent: quiz.PassingScorePercent,
		TimeLimitMinutes:    quiz.TimeLimitMinutes,
		Questions:           questions,
	}
}

// ManagerQuizView maps a quiz onto the privileged shape, correctness
// included.
func ManagerQuizView(quiz *domain.Quiz) *dto.ManagerQuizResponse {
	questions := make([]dto.ManagerQuestion, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		options := make([]dto.ManagerOption, 0, len(q.Options))
		for _, o := range q.Options {
			options = append(options, dto.ManagerOption{
				ID:        o.ID,
				Text:      o.Text,
				IsCorrect: o.IsCorrect,
			})
		}
		questions = append(questions, dto.ManagerQuestion{
			ID:            q.ID,
			Text:          q.Text,
			ImageURL:      q.ImageURL,
			MarksPositive: q.MarksPositive,
			MarksNegative: q.MarksNegative,
			Order:         q.Order,
			Options:       options,
		})
	}
	return &dto.ManagerQuizResponse{
		ID:                  quiz.ID,
		ResourceID:          quiz.ResourceID,
		PassingScorePercent: quiz.PassingScorePercent,
		TimeLimitMinutes:    quiz.TimeLimitMinutes,
		Questions:           questions,
	}
}
