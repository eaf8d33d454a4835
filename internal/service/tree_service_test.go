package service

import (
	"context"
	"testing"
	"time"

	"qubitgyan/internal/domain"
	"qubitgyan/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTreeServiceForTest(nodeRepo *MockNodeRepository, resourceRepo *MockResourceRepository) (TreeService, *fakeCache) {
	store := newFakeCache()
	tc := NewTreeCache(store, time.Minute, time.Second)
	return NewTreeService(nodeRepo, resourceRepo, tc), store
}

func TestGetTree(t *testing.T) {
	ctx := context.Background()
	flatNodes := []*domain.Node{
		node("root", "Mathematics", "", 1),
		node("child", "Algebra", "root", 1),
	}

	t.Run("caches unfiltered reads per bucket", func(t *testing.T) {
		nodeRepo := new(MockNodeRepository)
		resourceRepo := new(MockResourceRepository)
		nodeRepo.On("ListActiveNodes", mock.Anything).Return(flatNodes, nil).Once()
		resourceRepo.On("CountResourcesByNode", mock.Anything).Return(map[string]int{"child": 2}, nil).Once()
		svc, store := newTreeServiceForTest(nodeRepo, resourceRepo)

		first, err := svc.GetTree(ctx, dto.TreeRequest{DepthBucket: "full"})
		require.NoError(t, err)
		second, err := svc.GetTree(ctx, dto.TreeRequest{DepthBucket: "full"})
		require.NoError(t, err)

		require.Len(t, first.Nodes, 1)
		assert.Equal(t, "root", first.Nodes[0].ID)
		assert.Equal(t, 2, first.Nodes[0].Children[0].ResourceCount)
		assert.Equal(t, first.Nodes[0].ID, second.Nodes[0].ID)
		assert.Equal(t, 1, store.size())
		// Once() proves the second read came from the cache
		nodeRepo.AssertExpectations(t)
	})

	t.Run("search bypasses the cache", func(t *testing.T) {
		nodeRepo := new(MockNodeRepository)
		resourceRepo := new(MockResourceRepository)
		nodeRepo.On("ListActiveNodes", mock.Anything).Return(flatNodes, nil).Twice()
		resourceRepo.On("CountResourcesByNode", mock.Anything).Return(map[string]int{}, nil).Twice()
		svc, store := newTreeServiceForTest(nodeRepo, resourceRepo)

		for i := 0; i < 2; i++ {
			resp, err := svc.GetTree(ctx, dto.TreeRequest{Search: "math"})
			require.NoError(t, err)
			require.Len(t, resp.Nodes, 1)
			assert.Equal(t, "root", resp.Nodes[0].ID)
		}

		assert.Equal(t, 0, store.size())
		nodeRepo.AssertExpectations(t)
	})

	t.Run("flatten bypasses the cache and flattens", func(t *testing.T) {
		nodeRepo := new(MockNodeRepository)
		resourceRepo := new(MockResourceRepository)
		nodeRepo.On("ListActiveNodes", mock.Anything).Return(flatNodes, nil)
		resourceRepo.On("CountResourcesByNode", mock.Anything).Return(map[string]int{}, nil)
		svc, store := newTreeServiceForTest(nodeRepo, resourceRepo)

		resp, err := svc.GetTree(ctx, dto.TreeRequest{Flatten: true})

		require.NoError(t, err)
		require.Len(t, resp.Nodes, 2)
		assert.Empty(t, resp.Nodes[0].Children)
		assert.Equal(t, 0, store.size())
	})

	t.Run("invalid depth is rejected", func(t *testing.T) {
		svc, _ := newTreeServiceForTest(new(MockNodeRepository), new(MockResourceRepository))

		_, err := svc.GetTree(ctx, dto.TreeRequest{DepthBucket: "zero"})

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeValidation, domainErr.Code)
	})

	t.Run("store failure surfaces as unavailable", func(t *testing.T) {
		nodeRepo := new(MockNodeRepository)
		nodeRepo.On("ListActiveNodes", mock.Anything).Return(nil, assert.AnError)
		svc, _ := newTreeServiceForTest(nodeRepo, new(MockResourceRepository))

		_, err := svc.GetTree(ctx, dto.TreeRequest{})

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeStoreUnavailable, domainErr.Code)
	})
}

func TestCreateNodeInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	nodeRepo := new(MockNodeRepository)
	resourceRepo := new(MockResourceRepository)
	nodeRepo.On("ListActiveNodes", mock.Anything).Return([]*domain.Node{node("root", "Maths", "", 1)}, nil)
	resourceRepo.On("CountResourcesByNode", mock.Anything).Return(map[string]int{}, nil)
	nodeRepo.On("CreateNode", ctx, mock.AnythingOfType("*domain.Node")).Return(nil)
	svc, store := newTreeServiceForTest(nodeRepo, resourceRepo)

	_, err := svc.GetTree(ctx, dto.TreeRequest{})
	require.NoError(t, err)
	require.Equal(t, 1, store.size())

	resp, err := svc.CreateNode(ctx, dto.CreateNodeRequest{Name: "Physics", NodeType: "DOMAIN"})

	require.NoError(t, err)
	assert.Equal(t, "Physics", resp.Name)
	assert.Equal(t, 0, store.size())
}

func TestCreateNodeValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects an unknown node type", func(t *testing.T) {
		svc, _ := newTreeServiceForTest(new(MockNodeRepository), new(MockResourceRepository))

		_, err := svc.CreateNode(ctx, dto.CreateNodeRequest{Name: "X", NodeType: "CHAPTER"})

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeValidation, domainErr.Code)
	})

	t.Run("rejects a missing parent", func(t *testing.T) {
		nodeRepo := new(MockNodeRepository)
		nodeRepo.On("GetNode", ctx, "ghost").Return(nil, nil)
		svc, _ := newTreeServiceForTest(nodeRepo, new(MockResourceRepository))

		_, err := svc.CreateNode(ctx, dto.CreateNodeRequest{Name: "X", NodeType: "TOPIC", ParentID: "ghost"})

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeNodeNotFound, domainErr.Code)
	})
}

func TestSetNodeParent(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects self-parenting", func(t *testing.T) {
		nodeRepo := new(MockNodeRepository)
		nodeRepo.On("GetNode", ctx, "a").Return(node("a", "A", "", 1), nil)
		svc, _ := newTreeServiceForTest(nodeRepo, new(MockResourceRepository))

		err := svc.SetNodeParent(ctx, "a", dto.SetParentRequest{ParentID: "a"})

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeValidation, domainErr.Code)
	})

	t.Run("rejects a cycle through a descendant", func(t *testing.T) {
		// a -> b -> c; moving a under c would close a cycle
		nodeRepo := new(MockNodeRepository)
		nodeRepo.On("GetNode", ctx, "a").Return(node("a", "A", "", 1), nil)
		nodeRepo.On("GetNode", ctx, "c").Return(node("c", "C", "b", 1), nil)
		nodeRepo.On("GetNode", ctx, "b").Return(node("b", "B", "a", 1), nil)
		svc, _ := newTreeServiceForTest(nodeRepo, new(MockResourceRepository))

		err := svc.SetNodeParent(ctx, "a", dto.SetParentRequest{ParentID: "c"})

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeValidation, domainErr.Code)
		nodeRepo.AssertNotCalled(t, "SetNodeParent", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("terminates on a pre-existing cycle in the store", func(t *testing.T) {
		// b -> c -> b is already corrupted; moving x under b must fail
		// instead of walking the chain forever
		nodeRepo := new(MockNodeRepository)
		nodeRepo.On("GetNode", ctx, "x").Return(node("x", "X", "", 1), nil)
		nodeRepo.On("GetNode", ctx, "b").Return(node("b", "B", "c", 1), nil)
		nodeRepo.On("GetNode", ctx, "c").Return(node("c", "C", "b", 1), nil)
		svc, _ := newTreeServiceForTest(nodeRepo, new(MockResourceRepository))

		err := svc.SetNodeParent(ctx, "x", dto.SetParentRequest{ParentID: "b"})

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeValidation, domainErr.Code)
		nodeRepo.AssertNotCalled(t, "SetNodeParent", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("moves under an unrelated parent", func(t *testing.T) {
		nodeRepo := new(MockNodeRepository)
		nodeRepo.On("GetNode", ctx, "a").Return(node("a", "A", "", 1), nil)
		nodeRepo.On("GetNode", ctx, "p").Return(node("p", "P", "", 2), nil)
		nodeRepo.On("SetNodeParent", ctx, "a", "p").Return(nil)
		svc, store := newTreeServiceForTest(nodeRepo, new(MockResourceRepository))

		err := svc.SetNodeParent(ctx, "a", dto.SetParentRequest{ParentID: "p"})

		require.NoError(t, err)
		assert.Equal(t, 4, store.dels)
		nodeRepo.AssertExpectations(t)
	})

	t.Run("empty parent makes the node a root", func(t *testing.T) {
		nodeRepo := new(MockNodeRepository)
		nodeRepo.On("GetNode", ctx, "a").Return(node("a", "A", "p", 1), nil)
		nodeRepo.On("SetNodeParent", ctx, "a", "").Return(nil)
		svc, _ := newTreeServiceForTest(nodeRepo, new(MockResourceRepository))

		require.NoError(t, svc.SetNodeParent(ctx, "a", dto.SetParentRequest{}))
		nodeRepo.AssertExpectations(t)
	})
}

func TestReorderNodes(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects the batch when any node is unknown", func(t *testing.T) {
		nodeRepo := new(MockNodeRepository)
		nodeRepo.On("GetNode", ctx, "a").Return(node("a", "A", "", 1), nil)
		nodeRepo.On("GetNode", ctx, "ghost").Return(nil, nil)
		svc, _ := newTreeServiceForTest(nodeRepo, new(MockResourceRepository))

		err := svc.ReorderNodes(ctx, dto.ReorderRequest{Orders: []dto.NodeOrderEntry{
			{NodeID: "a", Order: 1},
			{NodeID: "ghost", Order: 2},
		}})

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeNodeNotFound, domainErr.Code)
		nodeRepo.AssertNotCalled(t, "ReorderNodes", mock.Anything, mock.Anything)
	})

	t.Run("applies a valid batch", func(t *testing.T) {
		nodeRepo := new(MockNodeRepository)
		nodeRepo.On("GetNode", ctx, "a").Return(node("a", "A", "", 1), nil)
		nodeRepo.On("GetNode", ctx, "b").Return(node("b", "B", "", 2), nil)
		nodeRepo.On("ReorderNodes", ctx, []domain.NodeOrder{
			{NodeID: "a", Order: 2},
			{NodeID: "b", Order: 1},
		}).Return(nil)
		svc, _ := newTreeServiceForTest(nodeRepo, new(MockResourceRepository))

		err := svc.ReorderNodes(ctx, dto.ReorderRequest{Orders: []dto.NodeOrderEntry{
			{NodeID: "a", Order: 2},
			{NodeID: "b", Order: 1},
		}})

		require.NoError(t, err)
		nodeRepo.AssertExpectations(t)
	})
}

func TestDeleteNode(t *testing.T) {
	ctx := context.Background()

	t.Run("blocked while children exist", func(t *testing.T) {
		nodeRepo := new(MockNodeRepository)
		nodeRepo.On("GetNode", ctx, "a").Return(node("a", "A", "", 1), nil)
		nodeRepo.On("CountChildren", ctx, "a").Return(2, nil)
		svc, _ := newTreeServiceForTest(nodeRepo, new(MockResourceRepository))

		err := svc.DeleteNode(ctx, "a")

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeLimitExceeded, domainErr.Code)
		nodeRepo.AssertNotCalled(t, "DeleteNode", mock.Anything, mock.Anything)
	})

	t.Run("blocked while resources are attached", func(t *testing.T) {
		nodeRepo := new(MockNodeRepository)
		resourceRepo := new(MockResourceRepository)
		nodeRepo.On("GetNode", ctx, "a").Return(node("a", "A", "", 1), nil)
		nodeRepo.On("CountChildren", ctx, "a").Return(0, nil)
		resourceRepo.On("ListResourcesFor", ctx, "a", domain.ResourceFilter{}).Return([]*domain.Resource{
			{ID: "r1", Title: "Notes", ResourceType: domain.ResourceTypePDF, NodeID: "a"},
		}, nil)
		svc, _ := newTreeServiceForTest(nodeRepo, resourceRepo)

		err := svc.DeleteNode(ctx, "a")

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeLimitExceeded, domainErr.Code)
	})

	t.Run("deletes an empty leaf", func(t *testing.T) {
		nodeRepo := new(MockNodeRepository)
		resourceRepo := new(MockResourceRepository)
		nodeRepo.On("GetNode", ctx, "a").Return(node("a", "A", "", 1), nil)
		nodeRepo.On("CountChildren", ctx, "a").Return(0, nil)
		resourceRepo.On("ListResourcesFor", ctx, "a", domain.ResourceFilter{}).Return([]*domain.Resource{}, nil)
		nodeRepo.On("DeleteNode", ctx, "a").Return(nil)
		svc, _ := newTreeServiceForTest(nodeRepo, resourceRepo)

		require.NoError(t, svc.DeleteNode(ctx, "a"))
		nodeRepo.AssertExpectations(t)
	})
}

func TestResourceOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("preview link is derived for drive PDFs", func(t *testing.T) {
		resourceRepo := new(MockResourceRepository)
		resourceRepo.On("GetResource", ctx, "r1").Return(&domain.Resource{
			ID:            "r1",
			Title:         "Mechanics Notes",
			ResourceType:  domain.ResourceTypePDF,
			NodeID:        "n1",
			GoogleDriveID: "abc123",
		}, nil)
		svc, _ := newTreeServiceForTest(new(MockNodeRepository), resourceRepo)

		resp, err := svc.GetResource(ctx, "r1")

		require.NoError(t, err)
		assert.Equal(t, "https://drive.google.com/file/d/abc123/preview", resp.PreviewLink)
	})

	t.Run("list rejects an invalid type filter", func(t *testing.T) {
		svc, _ := newTreeServiceForTest(new(MockNodeRepository), new(MockResourceRepository))

		_, err := svc.ListResources(ctx, "n1", domain.ResourceFilter{ResourceType: "SLIDES"})

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeValidation, domainErr.Code)
	})

	t.Run("create requires an existing node", func(t *testing.T) {
		nodeRepo := new(MockNodeRepository)
		nodeRepo.On("GetNode", ctx, "ghost").Return(nil, nil)
		svc, _ := newTreeServiceForTest(nodeRepo, new(MockResourceRepository))

		_, err := svc.CreateResource(ctx, dto.CreateResourceRequest{
			Title:        "Notes",
			ResourceType: "PDF",
			NodeID:       "ghost",
		})

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeNodeNotFound, domainErr.Code)
	})
}
