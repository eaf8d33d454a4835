package service

import (
	"context"

	"qubitgyan/internal/domain"
	"qubitgyan/internal/dto"
	"qubitgyan/internal/logger"
	"qubitgyan/internal/util"

	"go.uber.org/zap"
)

// TreeService serves projections of the curriculum tree and applies
// structural mutations. Reads go through the bucket cache unless the
// request carries a filter dimension the bucket keys do not encode.
type TreeService interface {
	GetTree(ctx context.Context, req dto.TreeRequest) (*dto.TreeResponse, error)

	CreateNode(ctx context.Context, req dto.CreateNodeRequest) (*dto.NodeResponse, error)
	UpdateNode(ctx context.Context, id string, req dto.UpdateNodeRequest) (*dto.NodeResponse, error)
	SetNodeParent(ctx context.Context, id string, req dto.SetParentRequest) error
	ReorderNodes(ctx context.Context, req dto.ReorderRequest) error
	DeleteNode(ctx context.Context, id string) error

	ListResources(ctx context.Context, nodeID string, filter domain.ResourceFilter) ([]*dto.ResourceResponse, error)
	GetResource(ctx context.Context, id string) (*dto.ResourceResponse, error)
	CreateResource(ctx context.Context, req dto.CreateResourceRequest) (*dto.ResourceResponse, error)
	UpdateResource(ctx context.Context, id string, req dto.UpdateResourceRequest) (*dto.ResourceResponse, error)
	DeleteResource(ctx context.Context, id string) error

	ListContexts(ctx context.Context) ([]*dto.ContextResponse, error)
	CreateContext(ctx context.Context, req dto.CreateContextRequest) (*dto.ContextResponse, error)
}

type treeService struct {
	nodeRepo     domain.NodeRepository
	resourceRepo domain.ResourceRepository
	treeCache    *TreeCache
}

func NewTreeService(nodeRepo domain.NodeRepository, resourceRepo domain.ResourceRepository, treeCache *TreeCache) TreeService {
	return &treeService{
		nodeRepo:     nodeRepo,
		resourceRepo: resourceRepo,
		treeCache:    treeCache,
	}
}

// GetTree serves the projected forest. Unfiltered reads are cached per
// depth bucket; search and flatten vary per request, so those compute
// directly rather than pollute the bucket keys.
func (s *treeService) GetTree(ctx context.Context, req dto.TreeRequest) (*dto.TreeResponse, error) {
	bucket, maxDepth, err := NormalizeBucket(req.DepthBucket)
	if err != nil {
		return nil, err
	}

	if req.Search != "" || req.Flatten {
		nodes, err := s.computeProjection(ctx, maxDepth, req.Search, req.Flatten)
		if err != nil {
			return nil, err
		}
		return &dto.TreeResponse{Nodes: nodes}, nil
	}

	nodes, err := s.treeCache.GetOrCompute(ctx, bucket, func(ctx context.Context) ([]*dto.NodeResponse, error) {
		return s.computeProjection(ctx, maxDepth, "", false)
	})
	if err != nil {
		return nil, err
	}
	return &dto.TreeResponse{Nodes: nodes}, nil
}

func (s *treeService) computeProjection(ctx context.Context, maxDepth int, search string, flatten bool) ([]*dto.NodeResponse, error) {
	flat, err := s.nodeRepo.ListActiveNodes(ctx)
	if err != nil {
		return nil, domain.NewStoreUnavailableError("failed to list nodes", err)
	}
	counts, err := s.resourceRepo.CountResourcesByNode(ctx)
	if err != nil {
		return nil, domain.NewStoreUnavailableError("failed to count resources", err)
	}

	roots := BuildForest(flat, counts)
	roots = FilterRoots(roots, search)
	if flatten {
		return FlattenForest(roots), nil
	}
	return ProjectForest(roots, maxDepth), nil
}

func (s *treeService) CreateNode(ctx context.Context, req dto.CreateNodeRequest) (*dto.NodeResponse, error) {
	node := domain.NewNode(req.Name, domain.NodeType(req.NodeType), req.ParentID, req.Order)
	if err := node.Validate(); err != nil {
		return nil, err
	}
	if req.ParentID != "" {
		parent, err := s.nodeRepo.GetNode(ctx, req.ParentID)
		if err != nil {
			return nil, domain.NewStoreUnavailableError("failed to look up parent", err)
		}
		if parent == nil {
			return nil, domain.NewNodeNotFoundError(req.ParentID)
		}
	}
	if err := s.nodeRepo.CreateNode(ctx, node); err != nil {
		return nil, domain.NewStoreUnavailableError("failed to create node", err)
	}
	if err := s.treeCache.Invalidate(ctx); err != nil {
		return nil, err
	}
	return nodeToResponse(node), nil
}

func (s *treeService) UpdateNode(ctx context.Context, id string, req dto.UpdateNodeRequest) (*dto.NodeResponse, error) {
	node, err := s.nodeRepo.GetNode(ctx, id)
	if err != nil {
		return nil, domain.NewStoreUnavailableError("failed to look up node", err)
	}
	if node == nil {
		return nil, domain.NewNodeNotFoundError(id)
	}

	node.Name = req.Name
	node.NodeType = domain.NodeType(req.NodeType)
	node.Order = req.Order
	if req.IsActive != nil {
		node.IsActive = *req.IsActive
	}
	if err := node.Validate(); err != nil {
		return nil, err
	}
	if err := s.nodeRepo.UpdateNode(ctx, node); err != nil {
		return nil, domain.NewStoreUnavailableError("failed to update node", err)
	}
	if err := s.treeCache.Invalidate(ctx); err != nil {
		return nil, err
	}
	return nodeToResponse(node), nil
}

// SetNodeParent reassigns a node's parent after walking the proposed
// ancestor chain to reject any assignment that would close a cycle,
// including self-parenting.
func (s *treeService) SetNodeParent(ctx context.Context, id string, req dto.SetParentRequest) error {
	node, err := s.nodeRepo.GetNode(ctx, id)
	if err != nil {
		return domain.NewStoreUnavailableError("failed to look up node", err)
	}
	if node == nil {
		return domain.NewNodeNotFoundError(id)
	}

	if req.ParentID != "" {
		if req.ParentID == id {
			return domain.NewValidationError("a node cannot be its own parent")
		}
		parent, err := s.nodeRepo.GetNode(ctx, req.ParentID)
		if err != nil {
			return domain.NewStoreUnavailableError("failed to look up parent", err)
		}
		if parent == nil {
			return domain.NewNodeNotFoundError(req.ParentID)
		}

		// Walk upward from the proposed parent. Hitting the node being
		// moved means the assignment would close a cycle. Visited ids
		// stop the walk if the store already holds a corrupted chain.
		visited := map[string]bool{parent.ID: true}
		ancestor := parent
		for ancestor.ParentID != "" {
			if ancestor.ParentID == id {
				return domain.NewValidationError("parent assignment would create a cycle")
			}
			if visited[ancestor.ParentID] {
				return domain.NewValidationError("parent chain already contains a cycle")
			}
			visited[ancestor.ParentID] = true
			ancestor, err = s.nodeRepo.GetNode(ctx, ancestor.ParentID)
			if err != nil {
				return domain.NewStoreUnavailableError("failed to walk ancestors", err)
			}
			if ancestor == nil {
				// Broken chain in the store; nothing above can loop back.
				break
			}
		}
	}

	if err := s.nodeRepo.SetNodeParent(ctx, id, req.ParentID); err != nil {
		return domain.NewStoreUnavailableError("failed to set parent", err)
	}
	return s.treeCache.Invalidate(ctx)
}

// ReorderNodes validates every referenced node before any order is
// written so a partially applied batch never reaches the store.
func (s *treeService) ReorderNodes(ctx context.Context, req dto.ReorderRequest) error {
	if len(req.Orders) == 0 {
		return domain.NewValidationError("orders must not be empty")
	}
	orders := make([]domain.NodeOrder, 0, len(req.Orders))
	for _, entry := range req.Orders {
		if entry.Order < 0 {
			return domain.NewValidationError("order must not be negative")
		}
		node, err := s.nodeRepo.GetNode(ctx, entry.NodeID)
		if err != nil {
			return domain.NewStoreUnavailableError("failed to look up node", err)
		}
		if node == nil {
			return domain.NewNodeNotFoundError(entry.NodeID)
		}
		orders = append(orders, domain.NodeOrder{NodeID: entry.NodeID, Order: entry.Order})
	}
	if err := s.nodeRepo.ReorderNodes(ctx, orders); err != nil {
		return domain.NewStoreUnavailableError("failed to reorder nodes", err)
	}
	return s.treeCache.Invalidate(ctx)
}

// DeleteNode refuses to delete a node that still has children or
// attached resources. Deletion is never cascaded.
func (s *treeService) DeleteNode(ctx context.Context, id string) error {
	node, err := s.nodeRepo.GetNode(ctx, id)
	if err != nil {
		return domain.NewStoreUnavailableError("failed to look up node", err)
	}
	if node == nil {
		return domain.NewNodeNotFoundError(id)
	}

	children, err := s.nodeRepo.CountChildren(ctx, id)
	if err != nil {
		return domain.NewStoreUnavailableError("failed to count children", err)
	}
	if children > 0 {
		return domain.NewLimitExceededError("node still has child nodes")
	}
	resources, err := s.resourceRepo.ListResourcesFor(ctx, id, domain.ResourceFilter{})
	if err != nil {
		return domain.NewStoreUnavailableError("failed to list resources", err)
	}
	if len(resources) > 0 {
		return domain.NewLimitExceededError("node still has attached resources")
	}

	if err := s.nodeRepo.DeleteNode(ctx, id); err != nil {
		return domain.NewStoreUnavailableError("failed to delete node", err)
	}
	logger.Get().Info("node deleted", zap.String("node_id", id))
	return s.treeCache.Invalidate(ctx)
}

func (s *treeService) ListResources(ctx context.Context, nodeID string, filter domain.ResourceFilter) ([]*dto.ResourceResponse, error) {
	if filter.ResourceType != "" && !domain.ValidResourceType(filter.ResourceType) {
		return nil, domain.NewValidationError("resource_type must be one of PDF, VIDEO, QUIZ, EXERCISE")
	}
	node, err := s.nodeRepo.GetNode(ctx, nodeID)
	if err != nil {
		return nil, domain.NewStoreUnavailableError("failed to look up node", err)
	}
	if node == nil {
		return nil, domain.NewNodeNotFoundError(nodeID)
	}
	resources, err := s.resourceRepo.ListResourcesFor(ctx, nodeID, filter)
	if err != nil {
		return nil, domain.NewStoreUnavailableError("failed to list resources", err)
	}
	responses := make([]*dto.ResourceResponse, 0, len(resources))
	for _, r := range resources {
		responses = append(responses, resourceToResponse(r))
	}
	return responses, nil
}

func (s *treeService) GetResource(ctx context.Context, id string) (*dto.ResourceResponse, error) {
	resource, err := s.resourceRepo.GetResource(ctx, id)
	if err != nil {
		return nil, domain.NewStoreUnavailableError("failed to look up resource", err)
	}
	if resource == nil {
		return nil, domain.NewResourceNotFoundError(id)
	}
	return resourceToResponse(resource), nil
}

func (s *treeService) CreateResource(ctx context.Context, req dto.CreateResourceRequest) (*dto.ResourceResponse, error) {
	resource := domain.NewResource(req.Title, domain.ResourceType(req.ResourceType), req.NodeID, req.Order)
	resource.GoogleDriveID = req.GoogleDriveID
	resource.ExternalURL = req.ExternalURL
	resource.ContentText = req.ContentText
	resource.ContextIDs = req.ContextIDs
	if err := resource.Validate(); err != nil {
		return nil, err
	}
	node, err := s.nodeRepo.GetNode(ctx, req.NodeID)
	if err != nil {
		return nil, domain.NewStoreUnavailableError("failed to look up node", err)
	}
	if node == nil {
		return nil, domain.NewNodeNotFoundError(req.NodeID)
	}
	if err := s.resourceRepo.CreateResource(ctx, resource); err != nil {
		return nil, domain.NewStoreUnavailableError("failed to create resource", err)
	}
	if err := s.treeCache.Invalidate(ctx); err != nil {
		return nil, err
	}
	return resourceToResponse(resource), nil
}

func (s *treeService) UpdateResource(ctx context.Context, id string, req dto.UpdateResourceRequest) (*dto.ResourceResponse, error) {
	resource, err := s.resourceRepo.GetResource(ctx, id)
	if err != nil {
		return nil, domain.NewStoreUnavailableError("failed to look up resource", err)
	}
	if resource == nil {
		return nil, domain.NewResourceNotFoundError(id)
	}

	resource.Title = req.Title
	resource.ResourceType = domain.ResourceType(req.ResourceType)
	resource.Order = req.Order
	resource.GoogleDriveID = req.GoogleDriveID
	resource.ExternalURL = req.ExternalURL
	resource.ContentText = req.ContentText
	resource.ContextIDs = req.ContextIDs
	if err := resource.Validate(); err != nil {
		return nil, err
	}
	if err := s.resourceRepo.UpdateResource(ctx, resource); err != nil {
		return nil, domain.NewStoreUnavailableError("failed to update resource", err)
	}
	if err := s.treeCache.Invalidate(ctx); err != nil {
		return nil, err
	}
	return resourceToResponse(resource), nil
}

func (s *treeService) DeleteResource(ctx context.Context, id string) error {
	resource, err := s.resourceRepo.GetResource(ctx, id)
	if err != nil {
		return domain.NewStoreUnavailableError("failed to look up resource", err)
	}
	if resource == nil {
		return domain.NewResourceNotFoundError(id)
	}
	if err := s.resourceRepo.DeleteResource(ctx, id); err != nil {
		return domain.NewStoreUnavailableError("failed to delete resource", err)
	}
	return s.treeCache.Invalidate(ctx)
}

func (s *treeService) ListContexts(ctx context.Context) ([]*dto.ContextResponse, error) {
	contexts, err := s.resourceRepo.ListContexts(ctx)
	if err != nil {
		return nil, domain.NewStoreUnavailableError("failed to list contexts", err)
	}
	responses := make([]*dto.ContextResponse, 0, len(contexts))
	for _, pc := range contexts {
		responses = append(responses, &dto.ContextResponse{
			ID:          pc.ID,
			Name:        pc.Name,
			Description: pc.Description,
		})
	}
	return responses, nil
}

func (s *treeService) CreateContext(ctx context.Context, req dto.CreateContextRequest) (*dto.ContextResponse, error) {
	pc := &domain.ProgramContext{
		ID:          util.NewULID(),
		Name:        req.Name,
		Description: req.Description,
	}
	if err := pc.Validate(); err != nil {
		return nil, err
	}
	if err := s.resourceRepo.CreateContext(ctx, pc); err != nil {
		return nil, domain.NewStoreUnavailableError("failed to create context", err)
	}
	return &dto.ContextResponse{ID: pc.ID, Name: pc.Name, Description: pc.Description}, nil
}

func nodeToResponse(node *domain.Node) *dto.NodeResponse {
	return &dto.NodeResponse{
		ID:       node.ID,
		Name:     node.Name,
		NodeType: string(node.NodeType),
		ParentID: node.ParentID,
		Order:    node.Order,
		IsActive: node.IsActive,
		Children: []*dto.NodeResponse{},
	}
}

func resourceToResponse(r *domain.Resource) *dto.ResourceResponse {
	return &dto.ResourceResponse{
		ID:            r.ID,
		Title:         r.Title,
		ResourceType:  string(r.ResourceType),
		NodeID:        r.NodeID,
		Order:         r.Order,
		GoogleDriveID: r.GoogleDriveID,
		ExternalURL:   r.ExternalURL,
		ContentText:   r.ContentText,
		ContextIDs:    r.ContextIDs,
		PreviewLink:   r.PreviewLink(),
	}
}
