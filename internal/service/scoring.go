package service

import (
	"fmt"

	"qubitgyan/internal/domain"
	"qubitgyan/internal/dto"
)

// ScoreResult is the outcome of grading one submission.
type ScoreResult struct {
	Total       float64
	MaxPossible float64
	Passed      bool
	Responses   []*domain.AttemptResponse
}

// ScoringEngine grades submissions against a quiz. Grading is pure:
// no stored state is consulted beyond the quiz itself.
type ScoringEngine struct{}

func NewScoringEngine() *ScoringEngine {
	return &ScoringEngine{}
}

// Score grades the answers against the quiz. A correct selection earns
// the question's positive marks, a wrong one deducts its negative marks,
// and a blank selection contributes zero but is still recorded. Any
// answer referencing a question outside the quiz, or an option outside
// its question, rejects the whole submission. A question answered more
// than once is graded on its first occurrence only. Totals are never
// clamped; heavy negative marking can push them below zero.
func (e *ScoringEngine) Score(quiz *domain.Quiz, answers []dto.AnswerSelection) (*ScoreResult, error) {
	for _, answer := range answers {
		question := quiz.QuestionByID(answer.QuestionID)
		if question == nil {
			return nil, domain.NewValidationError(fmt.Sprintf("question %s does not belong to this quiz", answer.QuestionID))
		}
		if answer.OptionID != "" && question.OptionByID(answer.OptionID) == nil {
			return nil, domain.NewValidationError(fmt.Sprintf("option %s does not belong to question %s", answer.OptionID, answer.QuestionID))
		}
	}

	var total float64
	graded := make(map[string]bool, len(answers))
	responses := make([]*domain.AttemptResponse, 0, len(answers))
	for _, answer := range answers {
		if graded[answer.QuestionID] {
			continue
		}
		graded[answer.QuestionID] = true

		responses = append(responses, &domain.AttemptResponse{
			QuestionID:       answer.QuestionID,
			SelectedOptionID: answer.OptionID,
		})
		if answer.OptionID == "" {
			continue
		}
		question := quiz.QuestionByID(answer.QuestionID)
		if question.OptionByID(answer.OptionID).IsCorrect {
			total += question.MarksPositive
		} else {
			total -= question.MarksNegative
		}
	}

	maxPossible := quiz.MaxPossibleScore()
	return &ScoreResult{
		Total:       total,
		MaxPossible: maxPossible,
		Passed:      passed(total, maxPossible, quiz.PassingScorePercent),
		Responses:   responses,
	}, nil
}

// passed applies the percentage threshold. A quiz with no positive marks
// has no meaningful percentage, so it passes only when the threshold
// itself demands nothing.
func passed(total, maxPossible, passingPercent float64) bool {
	if maxPossible <= 0 {
		return passingPercent <= 0
	}
	return total/maxPossible*100 >= passingPercent
}
