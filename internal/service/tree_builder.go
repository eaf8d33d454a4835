package service

import (
	"sort"
	"strings"

	"qubitgyan/internal/domain"
	"qubitgyan/internal/dto"
	"qubitgyan/internal/logger"

	"go.uber.org/zap"
)

// TreeNode is one node of the in-memory forest built from the flat store
// rows. Children are ordered by sibling order, then id.
type TreeNode struct {
	Node          *domain.Node
	ResourceCount int
	Children      []*TreeNode
}

// BuildForest reconstructs the forest from a flat node list using an
// id-indexed map, never live back-references. An orphan (parent id that
// resolves to no node) is treated as a root and logged as an anomaly.
// Acyclicity is enforced at write time; a cycle that still shows up here
// means the affected nodes are unreachable from any root, and the whole
// cycle component is excluded from the forest instead of looping.
func BuildForest(nodes []*domain.Node, resourceCounts map[string]int) []*TreeNode {
	index := make(map[string]*TreeNode, len(nodes))
	for _, n := range nodes {
		index[n.ID] = &TreeNode{
			Node:          n,
			ResourceCount: resourceCounts[n.ID],
		}
	}

	var roots []*TreeNode
	for _, n := range nodes {
		tn := index[n.ID]
		if n.ParentID == "" {
			roots = append(roots, tn)
			continue
		}
		parent, ok := index[n.ParentID]
		if !ok {
			logger.Get().Warn("node references a missing parent, treating as root",
				zap.String("node_id", n.ID),
				zap.String("parent_id", n.ParentID),
			)
			roots = append(roots, tn)
			continue
		}
		parent.Children = append(parent.Children, tn)
	}

	// Everything reachable from a root is cycle-free: each node has one
	// parent, so a cycle forms a component no root can reach.
	reachable := make(map[string]bool, len(index))
	var mark func(tn *TreeNode)
	mark = func(tn *TreeNode) {
		if reachable[tn.Node.ID] {
			return
		}
		reachable[tn.Node.ID] = true
		for _, child := range tn.Children {
			mark(child)
		}
	}
	for _, root := range roots {
		mark(root)
	}
	if len(reachable) != len(index) {
		for id := range index {
			if !reachable[id] {
				logger.Get().Warn("node is part of a parent cycle, excluded from forest",
					zap.String("node_id", id),
				)
			}
		}
	}

	sortForest(roots)
	return roots
}

func sortForest(nodes []*TreeNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Node.Order != nodes[j].Node.Order {
			return nodes[i].Node.Order < nodes[j].Node.Order
		}
		return nodes[i].Node.ID < nodes[j].Node.ID
	})
	for _, n := range nodes {
		sortForest(n.Children)
	}
}

// FilterRoots restricts the root set to nodes whose name contains the
// search text, case-insensitively. Matching happens before projection,
// so a matched root keeps its full subtree.
func FilterRoots(roots []*TreeNode, search string) []*TreeNode {
	if search == "" {
		return roots
	}
	needle := strings.ToLower(search)
	var filtered []*TreeNode
	for _, root := range roots {
		if strings.Contains(strings.ToLower(root.Node.Name), needle) {
			filtered = append(filtered, root)
		}
	}
	return filtered
}

// DepthFull projects without a depth bound.
const DepthFull = 0

// ProjectForest renders each root down to maxDepth levels (root = level 1;
// DepthFull means unbounded). At the cutoff, children are omitted but
// resource_count and items_count still reflect the underlying data.
func ProjectForest(roots []*TreeNode, maxDepth int) []*dto.NodeResponse {
	projected := make([]*dto.NodeResponse, 0, len(roots))
	for _, root := range roots {
		projected = append(projected, projectNode(root, 1, maxDepth))
	}
	return projected
}

func projectNode(tn *TreeNode, level, maxDepth int) *dto.NodeResponse {
	resp := &dto.NodeResponse{
		ID:            tn.Node.ID,
		Name:          tn.Node.Name,
		NodeType:      string(tn.Node.NodeType),
		ParentID:      tn.Node.ParentID,
		Order:         tn.Node.Order,
		IsActive:      tn.Node.IsActive,
		ResourceCount: tn.ResourceCount,
		ItemsCount:    len(tn.Children),
		Children:      []*dto.NodeResponse{},
	}
	if maxDepth != DepthFull && level >= maxDepth {
		return resp
	}
	for _, child := range tn.Children {
		resp.Children = append(resp.Children, projectNode(child, level+1, maxDepth))
	}
	return resp
}

// FlattenForest projects every node of the forest as its own top-level
// entry with no nesting, for flat listings.
func FlattenForest(roots []*TreeNode) []*dto.NodeResponse {
	var flat []*dto.NodeResponse
	var walk func(tn *TreeNode)
	walk = func(tn *TreeNode) {
		flat = append(flat, projectNode(tn, 1, 1))
		for _, child := range tn.Children {
			walk(child)
		}
	}
	for _, root := range roots {
		walk(root)
	}
	return flat
}
