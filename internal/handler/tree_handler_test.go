package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"qubitgyan/internal/domain"
	"qubitgyan/internal/dto"
	"qubitgyan/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTreeService is a mock implementation of service.TreeService
type MockTreeService struct {
	mock.Mock
}

func (m *MockTreeService) GetTree(ctx context.Context, req dto.TreeRequest) (*dto.TreeResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TreeResponse), args.Error(1)
}

func (m *MockTreeService) CreateNode(ctx context.Context, req dto.CreateNodeRequest) (*dto.NodeResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.NodeResponse), args.Error(1)
}

func (m *MockTreeService) UpdateNode(ctx context.Context, id string, req dto.UpdateNodeRequest) (*dto.NodeResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.NodeResponse), args.Error(1)
}

func (m *MockTreeService) SetNodeParent(ctx context.Context, id string, req dto.SetParentRequest) error {
	args := m.Called(ctx, id, req)
	return args.Error(0)
}

func (m *MockTreeService) ReorderNodes(ctx context.Context, req dto.ReorderRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockTreeService) DeleteNode(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTreeService) ListResources(ctx context.Context, nodeID string, filter domain.ResourceFilter) ([]*dto.ResourceResponse, error) {
	args := m.Called(ctx, nodeID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dto.ResourceResponse), args.Error(1)
}

func (m *MockTreeService) GetResource(ctx context.Context, id string) (*dto.ResourceResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ResourceResponse), args.Error(1)
}

func (m *MockTreeService) CreateResource(ctx context.Context, req dto.CreateResourceRequest) (*dto.ResourceResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ResourceResponse), args.Error(1)
}

func (m *MockTreeService) UpdateResource(ctx context.Context, id string, req dto.UpdateResourceRequest) (*dto.ResourceResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ResourceResponse), args.Error(1)
}

func (m *MockTreeService) DeleteResource(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTreeService) ListContexts(ctx context.Context) ([]*dto.ContextResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dto.ContextResponse), args.Error(1)
}

func (m *MockTreeService) CreateContext(ctx context.Context, req dto.CreateContextRequest) (*dto.ContextResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ContextResponse), args.Error(1)
}

func TestGetTreeHandler(t *testing.T) {
	t.Run("passes query parameters through", func(t *testing.T) {
		svc := new(MockTreeService)
		svc.On("GetTree", mock.Anything, dto.TreeRequest{DepthBucket: "2", Search: "math", Flatten: false}).
			Return(&dto.TreeResponse{Nodes: []*dto.NodeResponse{{ID: "n1", Name: "Mathematics"}}}, nil)
		app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
		app.Get("/tree", NewTreeHandler(svc).GetTree)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/tree?depth=2&search=math", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var tree dto.TreeResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&tree))
		require.Len(t, tree.Nodes, 1)
		assert.Equal(t, "n1", tree.Nodes[0].ID)
		svc.AssertExpectations(t)
	})

	t.Run("parses the flat listing flag", func(t *testing.T) {
		svc := new(MockTreeService)
		svc.On("GetTree", mock.Anything, dto.TreeRequest{Flatten: true}).
			Return(&dto.TreeResponse{Nodes: []*dto.NodeResponse{}}, nil)
		app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
		app.Get("/tree", NewTreeHandler(svc).GetTree)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/tree?all=true", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		svc.AssertExpectations(t)
	})

	t.Run("maps a validation failure to 400", func(t *testing.T) {
		svc := new(MockTreeService)
		svc.On("GetTree", mock.Anything, mock.Anything).
			Return(nil, domain.NewValidationError("invalid depth"))
		app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
		app.Get("/tree", NewTreeHandler(svc).GetTree)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/tree?depth=bogus", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("maps a store outage to 503", func(t *testing.T) {
		svc := new(MockTreeService)
		svc.On("GetTree", mock.Anything, mock.Anything).
			Return(nil, domain.NewStoreUnavailableError("failed to list nodes", assert.AnError))
		app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
		app.Get("/tree", NewTreeHandler(svc).GetTree)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/tree", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestDeleteNodeHandler(t *testing.T) {
	t.Run("maps a blocked deletion to 409", func(t *testing.T) {
		svc := new(MockTreeService)
		svc.On("DeleteNode", mock.Anything, "n1").
			Return(domain.NewLimitExceededError("node still has child nodes"))
		app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
		app.Delete("/tree/nodes/:id", NewTreeHandler(svc).DeleteNode)

		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/tree/nodes/n1", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("returns 204 on success", func(t *testing.T) {
		svc := new(MockTreeService)
		svc.On("DeleteNode", mock.Anything, "n1").Return(nil)
		app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
		app.Delete("/tree/nodes/:id", NewTreeHandler(svc).DeleteNode)

		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/tree/nodes/n1", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
}
