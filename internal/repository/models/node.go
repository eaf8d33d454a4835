package models

import (
	"database/sql"
	"time"
)

// KnowledgeNode is the persisted form of a curriculum node. Oracle has no
// boolean type, so IS_ACTIVE is NUMBER(1); ORDER is a reserved word, so
// the column is SORT_ORDER.
type KnowledgeNode struct {
	ID        string         `db:"id"`
	Name      string         `db:"name"`
	NodeType  string         `db:"node_type"`
	ParentID  sql.NullString `db:"parent_id"`
	SortOrder int            `db:"sort_order"`
	IsActive  int            `db:"is_active"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
	DeletedAt sql.NullTime   `db:"deleted_at"`
}

// Resource is the persisted form of a node's attached content.
type Resource struct {
	ID            string         `db:"id"`
	Title         string         `db:"title"`
	ResourceType  string         `db:"resource_type"`
	NodeID        string         `db:"node_id"`
	SortOrder     int            `db:"sort_order"`
	GoogleDriveID sql.NullString `db:"google_drive_id"`
	ExternalURL   sql.NullString `db:"external_url"`
	ContentText   sql.NullString `db:"content_text"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
	DeletedAt     sql.NullTime   `db:"deleted_at"`
}

// ProgramContext is a content tag ("Class 11", "Olympiad").
type ProgramContext struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	CreatedAt   time.Time      `db:"created_at"`
}

// ResourceContext is the join row between resources and program contexts.
type ResourceContext struct {
	ResourceID string `db:"resource_id"`
	ContextID  string `db:"context_id"`
}

// NodeResourceCount is the projection row of the per-node resource count
// aggregate.
type NodeResourceCount struct {
	NodeID string `db:"node_id"`
	Cnt    int    `db:"cnt"`
}
