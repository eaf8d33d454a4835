package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"qubitgyan/internal/domain"
	"qubitgyan/internal/repository/models"
	"qubitgyan/internal/util"

	"github.com/jmoiron/sqlx"
)

// ResourceDatabaseAdapter implements domain.ResourceRepository using sqlx.DB
type ResourceDatabaseAdapter struct {
	db *sqlx.DB
}

// NewResourceDatabaseAdapter creates a new instance of ResourceDatabaseAdapter
func NewResourceDatabaseAdapter(db *sqlx.DB) domain.ResourceRepository {
	return &ResourceDatabaseAdapter{db: db}
}

func toDomainResource(m *models.Resource, contextIDs []string) *domain.Resource {
	if m == nil {
		return nil
	}
	return &domain.Resource{
		ID:            m.ID,
		Title:         m.Title,
		ResourceType:  domain.ResourceType(m.ResourceType),
		NodeID:        m.NodeID,
		Order:         m.SortOrder,
		GoogleDriveID: m.GoogleDriveID.String,
		ExternalURL:   m.ExternalURL.String,
		ContentText:   m.ContentText.String,
		ContextIDs:    contextIDs,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

const selectResourceColumns = `
	r.id "id",
	r.title "title",
	r.resource_type "resource_type",
	r.node_id "node_id",
	r.sort_order "sort_order",
	r.google_drive_id "google_drive_id",
	r.external_url "external_url",
	r.content_text "content_text",
	r.created_at "created_at",
	r.updated_at "updated_at",
	r.deleted_at "deleted_at"`

// ListResourcesFor implements domain.ResourceRepository
func (a *ResourceDatabaseAdapter) ListResourcesFor(ctx context.Context, nodeID string, filter domain.ResourceFilter) ([]*domain.Resource, error) {
	query := `SELECT ` + selectResourceColumns + `
	FROM resources r
	WHERE r.node_id = :1
	AND r.deleted_at IS NULL`
	args := []interface{}{nodeID}

	if filter.ResourceType != "" {
		query += fmt.Sprintf(" AND r.resource_type = :%d", len(args)+1)
		args = append(args, string(filter.ResourceType))
	}
	if filter.ContextName != "" {
		// Context filter matches tag names case-insensitively, like the
		// resource search the clients rely on.
		query += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM resource_contexts rc
			JOIN program_contexts pc ON pc.id = rc.context_id
			WHERE rc.resource_id = r.id
			AND INSTR(LOWER(pc.name), LOWER(:%d)) > 0
		)`, len(args)+1)
		args = append(args, filter.ContextName)
	}
	query += " ORDER BY r.sort_order, r.id"

	var modelResources []models.Resource
	executor := GetExecutor(ctx, a.db)
	if err := executor.SelectContext(ctx, &modelResources, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list resources for node %s: %w", nodeID, err)
	}

	resources := make([]*domain.Resource, 0, len(modelResources))
	for i := range modelResources {
		contextIDs, err := a.listContextIDs(ctx, modelResources[i].ID)
		if err != nil {
			return nil, err
		}
		resources = append(resources, toDomainResource(&modelResources[i], contextIDs))
	}
	return resources, nil
}

// CountResourcesByNode implements domain.ResourceRepository
func (a *ResourceDatabaseAdapter) CountResourcesByNode(ctx context.Context) (map[string]int, error) {
	var rows []models.NodeResourceCount
	query := `SELECT node_id "node_id", COUNT(*) "cnt"
	FROM resources
	WHERE deleted_at IS NULL
	GROUP BY node_id`

	executor := GetExecutor(ctx, a.db)
	if err := executor.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to count resources by node: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.NodeID] = row.Cnt
	}
	return counts, nil
}

// GetResource implements domain.ResourceRepository
func (a *ResourceDatabaseAdapter) GetResource(ctx context.Context, id string) (*domain.Resource, error) {
	var modelResource models.Resource
	query := `SELECT ` + selectResourceColumns + `
	FROM resources r
	WHERE r.id = :1
	AND r.deleted_at IS NULL`

	executor := GetExecutor(ctx, a.db)
	err := executor.GetContext(ctx, &modelResource, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get resource by ID %s: %w", id, err)
	}

	contextIDs, err := a.listContextIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDomainResource(&modelResource, contextIDs), nil
}

// CreateResource implements domain.ResourceRepository
func (a *ResourceDatabaseAdapter) CreateResource(ctx context.Context, resource *domain.Resource) error {
	if resource == nil {
		return fmt.Errorf("cannot save nil resource")
	}
	if resource.ID == "" {
		resource.ID = util.NewULID()
	}
	now := time.Now()

	query := `INSERT INTO resources (
		id, title, resource_type, node_id, sort_order,
		google_drive_id, external_url, content_text, created_at, updated_at
	) VALUES (
		:1, :2, :3, :4, :5, :6, :7, :8, :9, :10
	)`

	executor := GetExecutor(ctx, a.db)
	_, err := executor.ExecContext(ctx, query,
		resource.ID,
		resource.Title,
		string(resource.ResourceType),
		resource.NodeID,
		resource.Order,
		util.StringToNullString(resource.GoogleDriveID),
		util.StringToNullString(resource.ExternalURL),
		util.StringToNullString(resource.ContentText),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	return a.replaceContexts(ctx, resource.ID, resource.ContextIDs)
}

// UpdateResource implements domain.ResourceRepository
func (a *ResourceDatabaseAdapter) UpdateResource(ctx context.Context, resource *domain.Resource) error {
	if resource == nil || resource.ID == "" {
		return fmt.Errorf("cannot update resource without ID")
	}

	query := `UPDATE resources SET
		title = :1,
		resource_type = :2,
		sort_order = :3,
		google_drive_id = :4,
		external_url = :5,
		content_text = :6,
		updated_at = :7
	WHERE id = :8
	AND deleted_at IS NULL`

	executor := GetExecutor(ctx, a.db)
	_, err := executor.ExecContext(ctx, query,
		resource.Title,
		string(resource.ResourceType),
		resource.Order,
		util.StringToNullString(resource.GoogleDriveID),
		util.StringToNullString(resource.ExternalURL),
		util.StringToNullString(resource.ContentText),
		time.Now(),
		resource.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update resource %s: %w", resource.ID, err)
	}

	return a.replaceContexts(ctx, resource.ID, resource.ContextIDs)
}

// DeleteResource implements domain.ResourceRepository. Rows are soft-deleted.
func (a *ResourceDatabaseAdapter) DeleteResource(ctx context.Context, id string) error {
	query := `UPDATE resources SET
		deleted_at = :1,
		updated_at = :1
	WHERE id = :2
	AND deleted_at IS NULL`

	executor := GetExecutor(ctx, a.db)
	if _, err := executor.ExecContext(ctx, query, time.Now(), id); err != nil {
		return fmt.Errorf("failed to delete resource %s: %w", id, err)
	}
	return nil
}

// ListContexts implements domain.ResourceRepository
func (a *ResourceDatabaseAdapter) ListContexts(ctx context.Context) ([]*domain.ProgramContext, error) {
	var modelContexts []models.ProgramContext
	query := `SELECT
		id "id",
		name "name",
		description "description",
		created_at "created_at"
	FROM program_contexts
	ORDER BY name`

	executor := GetExecutor(ctx, a.db)
	if err := executor.SelectContext(ctx, &modelContexts, query); err != nil {
		return nil, fmt.Errorf("failed to list program contexts: %w", err)
	}

	contexts := make([]*domain.ProgramContext, 0, len(modelContexts))
	for _, m := range modelContexts {
		contexts = append(contexts, &domain.ProgramContext{
			ID:          m.ID,
			Name:        m.Name,
			Description: m.Description.String,
			CreatedAt:   m.CreatedAt,
		})
	}
	return contexts, nil
}

// CreateContext implements domain.ResourceRepository
func (a *ResourceDatabaseAdapter) CreateContext(ctx context.Context, pc *domain.ProgramContext) error {
	if pc == nil {
		return fmt.Errorf("cannot save nil program context")
	}
	if pc.ID == "" {
		pc.ID = util.NewULID()
	}

	query := `INSERT INTO program_contexts (id, name, description, created_at)
	VALUES (:1, :2, :3, :4)`

	executor := GetExecutor(ctx, a.db)
	_, err := executor.ExecContext(ctx, query,
		pc.ID,
		pc.Name,
		util.StringToNullString(pc.Description),
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to create program context: %w", err)
	}
	return nil
}

func (a *ResourceDatabaseAdapter) listContextIDs(ctx context.Context, resourceID string) ([]string, error) {
	var ids []string
	query := `SELECT context_id "context_id"
	FROM resource_contexts
	WHERE resource_id = :1
	ORDER BY context_id`

	executor := GetExecutor(ctx, a.db)
	if err := executor.SelectContext(ctx, &ids, query, resourceID); err != nil {
		return nil, fmt.Errorf("failed to list contexts of resource %s: %w", resourceID, err)
	}
	return ids, nil
}

func (a *ResourceDatabaseAdapter) replaceContexts(ctx context.Context, resourceID string, contextIDs []string) error {
	executor := GetExecutor(ctx, a.db)

	if _, err := executor.ExecContext(ctx,
		`DELETE FROM resource_contexts WHERE resource_id = :1`, resourceID); err != nil {
		return fmt.Errorf("failed to clear contexts of resource %s: %w", resourceID, err)
	}

	for _, contextID := range contextIDs {
		if strings.TrimSpace(contextID) == "" {
			continue
		}
		if _, err := executor.ExecContext(ctx,
			`INSERT INTO resource_contexts (resource_id, context_id) VALUES (:1, :2)`,
			resourceID, contextID); err != nil {
			return fmt.Errorf("failed to tag resource %s with context %s: %w", resourceID, contextID, err)
		}
	}
	return nil
}
