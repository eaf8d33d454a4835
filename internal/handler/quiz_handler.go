package handler

import (
	"qubitgyan/internal/domain"
	"qubitgyan/internal/dto"
	"qubitgyan/internal/middleware"
	"qubitgyan/internal/service"

	"github.com/gofiber/fiber/v2"
)

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	service service.QuizService
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(service service.QuizService) *QuizHandler {
	return &QuizHandler{service: service}
}

// GetQuiz godoc
// @Summary Get a quiz for taking
// @Description Returns the quiz without correctness flags
// @Tags quiz
// @Produce json
// @Param id path string true "Quiz ID"
// @Success 200 {object} dto.StudentQuizResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /quizzes/{id} [get]
func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	resp, err := h.service.GetQuizForStudent(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetQuizByResource godoc
// @Summary Get the quiz attached to a resource
// @Description Returns the resource's quiz without correctness flags
// @Tags quiz
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} dto.StudentQuizResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /resources/{id}/quiz [get]
func (h *QuizHandler) GetQuizByResource(c *fiber.Ctx) error {
	resp, err := h.service.GetQuizByResourceForStudent(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetQuizForManager godoc
// @Summary Get a quiz with answers
// @Description Returns the quiz including correctness flags. Manager role required.
// @Tags quiz
// @Produce json
// @Param id path string true "Quiz ID"
// @Success 200 {object} dto.ManagerQuizResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /manage/quizzes/{id} [get]
func (h *QuizHandler) GetQuizForManager(c *fiber.Ctx) error {
	resp, err := h.service.GetQuizForManager(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// CreateQuiz godoc
// @Summary Create a quiz
// @Description Creates a quiz with nested questions and options on a QUIZ resource. Manager role required.
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.CreateQuizRequest true "Quiz details"
// @Success 201 {object} dto.ManagerQuizResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /manage/quizzes [post]
func (h *QuizHandler) CreateQuiz(c *fiber.Ctx) error {
	var req dto.CreateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}
	resp, err := h.service.CreateQuiz(c.Context(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// SubmitAttempt godoc
// @Summary Submit quiz answers
// @Description Grades the submission and records the attempt. Rejected once the attempt limit is reached.
// @Tags quiz
// @Accept json
// @Produce json
// @Param id path string true "Quiz ID"
// @Param request body dto.SubmitAttemptRequest true "Answers"
// @Success 201 {object} dto.AttemptResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /quizzes/{id}/attempts [post]
func (h *QuizHandler) SubmitAttempt(c *fiber.Ctx) error {
	userID, ok := c.Locals(middleware.UserIDKey).(string)
	if !ok || userID == "" {
		return domain.NewError(domain.CodeUnauthorized, "user identity missing", nil)
	}

	var req dto.SubmitAttemptRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}
	resp, err := h.service.SubmitAttempt(c.Context(), userID, c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}
