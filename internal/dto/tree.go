package dto

// TreeRequest carries the query parameters of a tree projection read.
// DepthBucket is "1", "2", "3" or "full" (unspecified means full).
type TreeRequest struct {
	DepthBucket string
	Search      string
	Flatten     bool
}

// NodeResponse is one projected node. Children is always present, empty
// at the depth cutoff; ResourceCount and ItemsCount are computed from
// the underlying data even when children are omitted.
// @Description Projected curriculum node
type NodeResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	NodeType      string          `json:"node_type"`
	ParentID      string          `json:"parent_id,omitempty"`
	Order         int             `json:"order"`
	IsActive      bool            `json:"is_active"`
	ResourceCount int             `json:"resource_count"`
	ItemsCount    int             `json:"items_count"`
	Children      []*NodeResponse `json:"children"`
}

// TreeResponse is a forest of projected nodes.
type TreeResponse struct {
	Nodes []*NodeResponse `json:"nodes"`
}

// CreateNodeRequest creates a curriculum node.
type CreateNodeRequest struct {
	Name     string `json:"name"`
	NodeType string `json:"node_type"`
	ParentID string `json:"parent_id,omitempty"`
	Order    int    `json:"order"`
}

// UpdateNodeRequest updates a node's own fields; parent changes go
// through SetParentRequest so the cycle check cannot be bypassed.
type UpdateNodeRequest struct {
	Name     string `json:"name"`
	NodeType string `json:"node_type"`
	Order    int    `json:"order"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// SetParentRequest reassigns a node's parent. Empty means make it a root.
type SetParentRequest struct {
	ParentID string `json:"parent_id"`
}

// ReorderRequest applies new sibling orders to a set of nodes.
type ReorderRequest struct {
	Orders []NodeOrderEntry `json:"orders"`
}

type NodeOrderEntry struct {
	NodeID string `json:"node_id"`
	Order  int    `json:"order"`
}

// CreateResourceRequest attaches a resource to a node.
type CreateResourceRequest struct {
	Title         string   `json:"title"`
	ResourceType  string   `json:"resource_type"`
	NodeID        string   `json:"node_id"`
	Order         int      `json:"order"`
	GoogleDriveID string   `json:"google_drive_id,omitempty"`
	ExternalURL   string   `json:"external_url,omitempty"`
	ContentText   string   `json:"content_text,omitempty"`
	ContextIDs    []string `json:"context_ids,omitempty"`
}

// UpdateResourceRequest updates a resource's own fields.
type UpdateResourceRequest struct {
	Title         string   `json:"title"`
	ResourceType  string   `json:"resource_type"`
	Order         int      `json:"order"`
	GoogleDriveID string   `json:"google_drive_id,omitempty"`
	ExternalURL   string   `json:"external_url,omitempty"`
	ContentText   string   `json:"content_text,omitempty"`
	ContextIDs    []string `json:"context_ids,omitempty"`
}

// ResourceResponse is a resource as served to clients. PreviewLink is
// derived, never stored.
type ResourceResponse struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	ResourceType  string   `json:"resource_type"`
	NodeID        string   `json:"node_id"`
	Order         int      `json:"order"`
	GoogleDriveID string   `json:"google_drive_id,omitempty"`
	ExternalURL   string   `json:"external_url,omitempty"`
	ContentText   string   `json:"content_text,omitempty"`
	ContextIDs    []string `json:"context_ids,omitempty"`
	PreviewLink   string   `json:"preview_link,omitempty"`
}

// ContextResponse is a program context tag.
type ContextResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CreateContextRequest creates a program context tag.
type CreateContextRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
