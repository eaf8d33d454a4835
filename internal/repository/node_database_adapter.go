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

// NodeDatabaseAdapter implements domain.NodeRepository using sqlx.DB
type NodeDatabaseAdapter struct {
	db *sqlx.DB
}

// NewNodeDatabaseAdapter creates a new instance of NodeDatabaseAdapter
func NewNodeDatabaseAdapter(db *sqlx.DB) domain.NodeRepository {
	return &NodeDatabaseAdapter{db: db}
}

func toDomainNode(m *models.KnowledgeNode) *domain.Node {
	if m == nil {
		return nil
	}
	return &domain.Node{
		ID:        m.ID,
		Name:      m.Name,
		NodeType:  domain.NodeType(m.NodeType),
		ParentID:  m.ParentID.String,
		Order:     m.SortOrder,
		IsActive:  m.IsActive == 1,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func fromDomainNode(n *domain.Node) *models.KnowledgeNode {
	if n == nil {
		return nil
	}
	isActive := 0
	if n.IsActive {
		isActive = 1
	}
	return &models.KnowledgeNode{
		ID:        n.ID,
		Name:      n.Name,
		NodeType:  string(n.NodeType),
		ParentID:  util.StringToNullString(n.ParentID),
		SortOrder: n.Order,
		IsActive:  isActive,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

const selectNodeColumns = `
	id "id",
	name "name",
	node_type "node_type",
	parent_id "parent_id",
	sort_order "sort_order",
	is_active "is_active",
	created_at "created_at",
	updated_at "updated_at",
	deleted_at "deleted_at"`

// ListActiveNodes implements domain.NodeRepository
func (a *NodeDatabaseAdapter) ListActiveNodes(ctx context.Context) ([]*domain.Node, error) {
	var modelNodes []models.KnowledgeNode
	query := `SELECT ` + selectNodeColumns + `
	FROM knowledge_nodes
	WHERE is_active = 1
	AND deleted_at IS NULL
	ORDER BY sort_order, id`

	executor := GetExecutor(ctx, a.db)
	if err := executor.SelectContext(ctx, &modelNodes, query); err != nil {
		return nil, fmt.Errorf("failed to list active nodes: %w", err)
	}

	nodes := make([]*domain.Node, 0, len(modelNodes))
	for i := range modelNodes {
		nodes = append(nodes, toDomainNode(&modelNodes[i]))
	}
	return nodes, nil
}

// GetNode implements domain.NodeRepository
func (a *NodeDatabaseAdapter) GetNode(ctx context.Context, id string) (*domain.Node, error) {
	var modelNode models.KnowledgeNode
	query := `SELECT ` + selectNodeColumns + `
	FROM knowledge_nodes
	WHERE id = :1
	AND deleted_at IS NULL`

	executor := GetExecutor(ctx, a.db)
	err := executor.GetContext(ctx, &modelNode, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get node by ID %s: %w", id, err)
	}
	return toDomainNode(&modelNode), nil
}

// CreateNode implements domain.NodeRepository
func (a *NodeDatabaseAdapter) CreateNode(ctx context.Context, node *domain.Node) error {
	modelNode := fromDomainNode(node)
	if modelNode == nil {
		return fmt.Errorf("cannot save nil node")
	}
	if modelNode.ID == "" {
		modelNode.ID = util.NewULID()
		node.ID = modelNode.ID
	}
	now := time.Now()
	modelNode.CreatedAt = now
	modelNode.UpdatedAt = now

	query := `INSERT INTO knowledge_nodes (
		id, name, node_type, parent_id, sort_order, is_active, created_at, updated_at
	) VALUES (
		:1, :2, :3, :4, :5, :6, :7, :8
	)`

	executor := GetExecutor(ctx, a.db)
	_, err := executor.ExecContext(ctx, query,
		modelNode.ID,
		modelNode.Name,
		modelNode.NodeType,
		modelNode.ParentID,
		modelNode.SortOrder,
		modelNode.IsActive,
		modelNode.CreatedAt,
		modelNode.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create node: %w", err)
	}
	return nil
}

// UpdateNode implements domain.NodeRepository
func (a *NodeDatabaseAdapter) UpdateNode(ctx context.Context, node *domain.Node) error {
	modelNode := fromDomainNode(node)
	if modelNode == nil || modelNode.ID == "" {
		return fmt.Errorf("cannot update node without ID")
	}

	query := `UPDATE knowledge_nodes SET
		name = :1,
		node_type = :2,
		sort_order = :3,
		is_active = :4,
		updated_at = :5
	WHERE id = :6
	AND deleted_at IS NULL`

	executor := GetExecutor(ctx, a.db)
	_, err := executor.ExecContext(ctx, query,
		modelNode.Name,
		modelNode.NodeType,
		modelNode.SortOrder,
		modelNode.IsActive,
		time.Now(),
		modelNode.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update node %s: %w", modelNode.ID, err)
	}
	return nil
}

// SetNodeParent implements domain.NodeRepository
func (a *NodeDatabaseAdapter) SetNodeParent(ctx context.Context, id, parentID string) error {
	query := `UPDATE knowledge_nodes SET
		parent_id = :1,
		updated_at = :2
	WHERE id = :3
	AND deleted_at IS NULL`

	executor := GetExecutor(ctx, a.db)
	_, err := executor.ExecContext(ctx, query, util.StringToNullString(parentID), time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set parent of node %s: %w", id, err)
	}
	return nil
}

// ReorderNodes implements domain.NodeRepository
func (a *NodeDatabaseAdapter) ReorderNodes(ctx context.Context, orders []domain.NodeOrder) error {
	query := `UPDATE knowledge_nodes SET
		sort_order = :1,
		updated_at = :2
	WHERE id = :3
	AND deleted_at IS NULL`

	executor := GetExecutor(ctx, a.db)
	now := time.Now()
	for _, o := range orders {
		if _, err := executor.ExecContext(ctx, query, o.Order, now, o.NodeID); err != nil {
			return fmt.Errorf("failed to reorder node %s: %w", o.NodeID, err)
		}
	}
	return nil
}

// DeleteNode implements domain.NodeRepository. Rows are soft-deleted.
func (a *NodeDatabaseAdapter) DeleteNode(ctx context.Context, id string) error {
	query := `UPDATE knowledge_nodes SET
		deleted_at = :1,
		updated_at = :1
	WHERE id = :2
	AND deleted_at IS NULL`

	executor := GetExecutor(ctx, a.db)
	_, err := executor.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete node %s: %w", id, err)
	}
	return nil
}

// CountChildren implements domain.NodeRepository
func (a *NodeDatabaseAdapter) CountChildren(ctx context.Context, id string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM knowledge_nodes
	WHERE parent_id = :1
	AND deleted_at IS NULL`

	executor := GetExecutor(ctx, a.db)
	if err := executor.GetContext(ctx, &count, query, id); err != nil {
		return 0, fmt.Errorf("failed to count children of node %s: %w", id, err)
	}
	return count, nil
}
