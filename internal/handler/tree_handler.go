package handler

import (
	"qubitgyan/internal/domain"
	"qubitgyan/internal/dto"
	"qubitgyan/internal/service"

	"github.com/gofiber/fiber/v2"
)

// TreeHandler handles curriculum tree HTTP requests
type TreeHandler struct {
	service service.TreeService
}

// NewTreeHandler creates a new TreeHandler instance
func NewTreeHandler(service service.TreeService) *TreeHandler {
	return &TreeHandler{service: service}
}

// GetTree godoc
// @Summary Get the curriculum tree
// @Description Returns the projected curriculum forest, optionally bounded by depth, filtered by root name or flattened
// @Tags tree
// @Accept json
// @Produce json
// @Param depth query string false "Projection depth: 1, 2, 3 or full"
// @Param search query string false "Case-insensitive substring match on root names"
// @Param all query bool false "Flat listing of every node"
// @Success 200 {object} dto.TreeResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /tree [get]
func (h *TreeHandler) GetTree(c *fiber.Ctx) error {
	req := dto.TreeRequest{
		DepthBucket: c.Query("depth"),
		Search:      c.Query("search"),
		Flatten:     c.QueryBool("all"),
	}
	resp, err := h.service.GetTree(c.Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// CreateNode godoc
// @Summary Create a curriculum node
// @Tags tree
// @Accept json
// @Produce json
// @Param request body dto.CreateNodeRequest true "Node details"
// @Success 201 {object} dto.NodeResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /tree/nodes [post]
func (h *TreeHandler) CreateNode(c *fiber.Ctx) error {
	var req dto.CreateNodeRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}
	resp, err := h.service.CreateNode(c.Context(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// UpdateNode godoc
// @Summary Update a curriculum node
// @Tags tree
// @Accept json
// @Produce json
// @Param id path string true "Node ID"
// @Param request body dto.UpdateNodeRequest true "Node details"
// @Success 200 {object} dto.NodeResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /tree/nodes/{id} [put]
func (h *TreeHandler) UpdateNode(c *fiber.Ctx) error {
	var req dto.UpdateNodeRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}
	resp, err := h.service.UpdateNode(c.Context(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// SetNodeParent godoc
// @Summary Move a node under a new parent
// @Description Reassigns a node's parent. Rejected when the assignment would create a cycle.
// @Tags tree
// @Accept json
// @Produce json
// @Param id path string true "Node ID"
// @Param request body dto.SetParentRequest true "New parent"
// @Success 204
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /tree/nodes/{id}/parent [put]
func (h *TreeHandler) SetNodeParent(c *fiber.Ctx) error {
	var req dto.SetParentRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}
	if err := h.service.SetNodeParent(c.Context(), c.Params("id"), req); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ReorderNodes godoc
// @Summary Reorder sibling nodes
// @Tags tree
// @Accept json
// @Produce json
// @Param request body dto.ReorderRequest true "New sibling orders"
// @Success 204
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /tree/nodes/reorder [put]
func (h *TreeHandler) ReorderNodes(c *fiber.Ctx) error {
	var req dto.ReorderRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}
	if err := h.service.ReorderNodes(c.Context(), req); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteNode godoc
// @Summary Delete a curriculum node
// @Description Deletes a node. Rejected while the node still has children or attached resources.
// @Tags tree
// @Produce json
// @Param id path string true "Node ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /tree/nodes/{id} [delete]
func (h *TreeHandler) DeleteNode(c *fiber.Ctx) error {
	if err := h.service.DeleteNode(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListResources godoc
// @Summary List resources attached to a node
// @Tags resources
// @Produce json
// @Param id path string true "Node ID"
// @Param type query string false "Resource type filter: PDF, VIDEO, QUIZ, EXERCISE"
// @Param context query string false "Program context name filter"
// @Success 200 {array} dto.ResourceResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /tree/nodes/{id}/resources [get]
func (h *TreeHandler) ListResources(c *fiber.Ctx) error {
	filter := domain.ResourceFilter{
		ResourceType: domain.ResourceType(c.Query("type")),
		ContextName:  c.Query("context"),
	}
	resp, err := h.service.ListResources(c.Context(), c.Params("id"), filter)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetResource godoc
// @Summary Get a resource
// @Tags resources
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} dto.ResourceResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /resources/{id} [get]
func (h *TreeHandler) GetResource(c *fiber.Ctx) error {
	resp, err := h.service.GetResource(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// CreateResource godoc
// @Summary Attach a resource to a node
// @Tags resources
// @Accept json
// @Produce json
// @Param request body dto.CreateResourceRequest true "Resource details"
// @Success 201 {object} dto.ResourceResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /resources [post]
func (h *TreeHandler) CreateResource(c *fiber.Ctx) error {
	var req dto.CreateResourceRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}
	resp, err := h.service.CreateResource(c.Context(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// UpdateResource godoc
// @Summary Update a resource
// @Tags resources
// @Accept json
// @Produce json
// @Param id path string true "Resource ID"
// @Param request body dto.UpdateResourceRequest true "Resource details"
// @Success 200 {object} dto.ResourceResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /resources/{id} [put]
func (h *TreeHandler) UpdateResource(c *fiber.Ctx) error {
	var req dto.UpdateResourceRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}
	resp, err := h.service.UpdateResource(c.Context(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// DeleteResource godoc
// @Summary Delete a resource
// @Tags resources
// @Produce json
// @Param id path string true "Resource ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /resources/{id} [delete]
func (h *TreeHandler) DeleteResource(c *fiber.Ctx) error {
	if err := h.service.DeleteResource(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListContexts godoc
// @Summary List program context tags
// @Tags contexts
// @Produce json
// @Success 200 {array} dto.ContextResponse
// @Router /contexts [get]
func (h *TreeHandler) ListContexts(c *fiber.Ctx) error {
	resp, err := h.service.ListContexts(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// CreateContext godoc
// @Summary Create a program context tag
// @Tags contexts
// @Accept json
// @Produce json
// @Param request body dto.CreateContextRequest true "Context details"
// @Success 201 {object} dto.ContextResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /contexts [post]
func (h *TreeHandler) CreateContext(c *fiber.Ctx) error {
	var req dto.CreateContextRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}
	resp, err := h.service.CreateContext(c.Context(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}
