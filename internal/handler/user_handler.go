package handler

import (
	"qubitgyan/internal/domain"
	"qubitgyan/internal/middleware"
	"qubitgyan/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles requests scoped to the authenticated user
type UserHandler struct {
	service service.QuizService
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(service service.QuizService) *UserHandler {
	return &UserHandler{service: service}
}

// GetMyAttempts godoc
// @Summary Get my attempt history
// @Description Returns the caller's quiz attempts, newest first
// @Tags user
// @Produce json
// @Success 200 {array} dto.AttemptResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /users/me/attempts [get]
func (h *UserHandler) GetMyAttempts(c *fiber.Ctx) error {
	userID, ok := c.Locals(middleware.UserIDKey).(string)
	if !ok || userID == "" {
		return domain.NewError(domain.CodeUnauthorized, "user identity missing", nil)
	}
	resp, err := h.service.GetMyAttempts(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
