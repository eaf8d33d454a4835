package domain

import (
	"time"
)

// NodeType classifies a curriculum node. The hierarchy is shallow by
// construction: DOMAIN > SUBJECT > SECTION > TOPIC.
type NodeType string

const (
	NodeTypeDomain  NodeType = "DOMAIN"
	NodeTypeSubject NodeType = "SUBJECT"
	NodeTypeSection NodeType = "SECTION"
	NodeTypeTopic   NodeType = "TOPIC"
)

// ValidNodeType reports whether t is one of the four node types.
func ValidNodeType(t NodeType) bool {
	switch t {
	case NodeTypeDomain, NodeTypeSubject, NodeTypeSection, NodeTypeTopic:
		return true
	}
	return false
}

// Node is one element of the curriculum hierarchy. ParentID is a lookup
// key, not an owning reference; the store owns all nodes and a node with
// an empty ParentID is a root.
type Node struct {
	ID        string
	Name      string
	NodeType  NodeType
	ParentID  string // empty for roots
	Order     int    // sibling order, not required unique
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewNode creates a new Node instance
func NewNode(name string, nodeType NodeType, parentID string, order int) *Node {
	now := time.Now()
	return &Node{
		Name:      name,
		NodeType:  nodeType,
		ParentID:  parentID,
		Order:     order,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate validates the node
func (n *Node) Validate() error {
	if n.Name == "" {
		return NewValidationError("name is required")
	}
	if !ValidNodeType(n.NodeType) {
		return NewValidationError("node_type must be one of DOMAIN, SUBJECT, SECTION, TOPIC")
	}
	if n.Order < 0 {
		return NewValidationError("order must not be negative")
	}
	return nil
}

// ResourceType classifies a resource attached to a node.
type ResourceType string

const (
	ResourceTypePDF      ResourceType = "PDF"
	ResourceTypeVideo    ResourceType = "VIDEO"
	ResourceTypeQuiz     ResourceType = "QUIZ"
	ResourceTypeExercise ResourceType = "EXERCISE"
)

// ValidResourceType reports whether t is one of the four resource types.
func ValidResourceType(t ResourceType) bool {
	switch t {
	case ResourceTypePDF, ResourceTypeVideo, ResourceTypeQuiz, ResourceTypeExercise:
		return true
	}
	return false
}

// Resource is a piece of content attached to a node. NodeID is an owning
// reference: the node must exist while the resource does.
type Resource struct {
	ID            string
	Title         string
	ResourceType  ResourceType
	NodeID        string
	Order         int
	GoogleDriveID string
	ExternalURL   string
	ContentText   string
	ContextIDs    []string // program context tags
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewResource creates a new Resource instance
func NewResource(title string, resourceType ResourceType, nodeID string, order int) *Resource {
	now := time.Now()
	return &Resource{
		Title:        title,
		ResourceType: resourceType,
		NodeID:       nodeID,
		Order:        order,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate validates the resource
func (r *Resource) Validate() error {
	if r.Title == "" {
		return NewValidationError("title is required")
	}
	if !ValidResourceType(r.ResourceType) {
		return NewValidationError("resource_type must be one of PDF, VIDEO, QUIZ, EXERCISE")
	}
	if r.NodeID == "" {
		return NewValidationError("node ID is required")
	}
	return nil
}

// PreviewLink derives a viewable link for the client. PDFs stored on
// drive get a preview URL; videos link out directly.
func (r *Resource) PreviewLink() string {
	if r.ResourceType == ResourceTypePDF && r.GoogleDriveID != "" {
		return "https://drive.google.com/file/d/" + r.GoogleDriveID + "/preview"
	}
	if r.ResourceType == ResourceTypeVideo && r.ExternalURL != "" {
		return r.ExternalURL
	}
	return ""
}

// ProgramContext is a tag like "Class 11" or "Olympiad" used to filter
// content for different goals.
type ProgramContext struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// Validate validates the program context
func (p *ProgramContext) Validate() error {
	if p.Name == "" {
		return NewValidationError("name is required")
	}
	return nil
}
