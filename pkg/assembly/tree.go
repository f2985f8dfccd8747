// Package assembly reconstructs the rooted assembly hierarchy from a BOM
// document's flat record list and provides the search filter over it.
package assembly

import (
	"strconv"
	"strings"

	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/model"
)

// Node is one node of the reconstructed hierarchy: a part record plus its
// children in first-seen source order and a back-reference for ancestor
// walks.
type Node struct {
	Record   *model.PartRecord
	Children []*Node
	Parent   *Node
	Depth    int
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Tree is the result of building a hierarchy from a flat record list.
type Tree struct {
	Root *Node
	// Dropped counts input records unreachable from the chosen root.
	// Zero for well-formed input; non-zero signals a malformed document
	// that was recovered per the duplicate-root policy.
	Dropped int

	byID map[int]*Node
}

// Build reconstructs the hierarchy from a flat record list.
//
// Exactly one record is expected to be parentless; if zero, the returned
// tree has a nil root and every record counts as dropped, and if several,
// the first one in source order wins (preferring records flagged is_root)
// and records unreachable from it are dropped. Both are recoveries for
// malformed documents, not errors: callers surface Dropped as a warning.
func Build(records []model.PartRecord) *Tree {
	t := &Tree{byID: make(map[int]*Node, len(records))}
	if len(records) == 0 {
		return t
	}

	present := make(map[int]bool, len(records))
	for i := range records {
		present[records[i].ID] = true
	}

	// Index children by parent id in source order; collect root candidates.
	// A record whose parent id does not exist in the document is parentless
	// for our purposes (the reference is dangling).
	childrenOf := make(map[int][]*model.PartRecord)
	var root *model.PartRecord
	for i := range records {
		rec := &records[i]
		if !rec.HasParent() || !present[rec.Parent()] {
			if root == nil {
				root = rec
			} else if rec.IsRoot && !root.IsRoot {
				// An explicit is_root record beats an earlier orphan.
				root = rec
			}
			continue
		}
		childrenOf[rec.Parent()] = append(childrenOf[rec.Parent()], rec)
	}
	if root == nil {
		t.Dropped = len(records)
		return t
	}

	// Attach descendants with an explicit worklist rather than recursion:
	// assemblies from the extractor can nest arbitrarily deep. The visited
	// set guards against duplicate ids reappearing in the record list.
	t.Root = &Node{Record: root}
	t.byID[root.ID] = t.Root
	visited := map[int]bool{root.ID: true}

	stack := []*Node{t.Root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, rec := range childrenOf[node.Record.ID] {
			if visited[rec.ID] {
				continue
			}
			visited[rec.ID] = true
			child := &Node{Record: rec, Parent: node, Depth: node.Depth + 1}
			node.Children = append(node.Children, child)
			t.byID[rec.ID] = child
		}
		// Push in reverse so the first-seen child is expanded first.
		for i := len(node.Children) - 1; i >= 0; i-- {
			stack = append(stack, node.Children[i])
		}
	}

	t.Dropped = len(records) - len(t.byID)
	return t
}

// NodeByID returns the node for a record id, or nil.
func (t *Tree) NodeByID(id int) *Node {
	if t == nil {
		return nil
	}
	return t.byID[id]
}

// Len returns the number of nodes reachable from the root.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byID)
}

// Walk visits every node depth-first in child order, root first.
// Returning false from fn stops the walk.
func (t *Tree) Walk(fn func(*Node) bool) {
	if t == nil || t.Root == nil {
		return
	}
	stack := []*Node{t.Root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(node) {
			return
		}
		for i := len(node.Children) - 1; i >= 0; i-- {
			stack = append(stack, node.Children[i])
		}
	}
}

// Records returns every reachable record in depth-first order. This is the
// tree's natural traversal order, which the identity resolver relies on for
// its documented first-match tie-break.
func (t *Tree) Records() []*model.PartRecord {
	if t == nil {
		return nil
	}
	out := make([]*model.PartRecord, 0, len(t.byID))
	t.Walk(func(n *Node) bool {
		out = append(out, n.Record)
		return true
	})
	return out
}

// PathToRoot returns the chain from the root down to the node with the
// given id, inclusive. Nil when the id is not in the tree.
func (t *Tree) PathToRoot(id int) []*Node {
	node := t.NodeByID(id)
	if node == nil {
		return nil
	}
	var path []*Node
	for n := node; n != nil; n = n.Parent {
		path = append(path, n)
	}
	// Reverse to root-first order.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// AncestorIDs returns the ids of every strict ancestor of the node with the
// given id, nearest parent first. Empty for the root or unknown ids.
func (t *Tree) AncestorIDs(id int) []int {
	node := t.NodeByID(id)
	if node == nil {
		return nil
	}
	var ids []int
	for n := node.Parent; n != nil; n = n.Parent {
		ids = append(ids, n.Record.ID)
	}
	return ids
}

// Stats summarizes an assembly node's subtree the way the extractor's
// structure analysis does: direct children plus descendant part and
// sub-assembly counts.
type Stats struct {
	DirectChildren int
	Parts          int
	Assemblies     int
}

// SubtreeStats computes Stats for the node with the given id.
func (t *Tree) SubtreeStats(id int) Stats {
	node := t.NodeByID(id)
	if node == nil {
		return Stats{}
	}
	s := Stats{DirectChildren: len(node.Children)}
	stack := append([]*Node(nil), node.Children...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.Record.IsAssembly {
			s.Assemblies++
		} else {
			s.Parts++
		}
		stack = append(stack, n.Children...)
	}
	return s
}

// matchesQuery reports whether a record matches the lowercased query over
// reference_name, name, and the decimal id.
func matchesQuery(rec *model.PartRecord, query string) bool {
	if strings.Contains(strings.ToLower(rec.ReferenceName), query) {
		return true
	}
	if strings.Contains(strings.ToLower(rec.Name), query) {
		return true
	}
	return strings.Contains(strconv.Itoa(rec.ID), query)
}

// Filter prunes the tree to nodes matching the case-insensitive substring
// query, keeping the full ancestor chain of every match. The receiver is
// not modified. An empty query returns the receiver unchanged; a query with
// no matches returns nil.
func (t *Tree) Filter(query string) *Tree {
	if t == nil || t.Root == nil {
		return t
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return t
	}

	var clone func(n *Node, parent *Node, depth int) *Node
	clone = func(n *Node, parent *Node, depth int) *Node {
		matched := matchesQuery(n.Record, query)
		out := &Node{Record: n.Record, Parent: parent, Depth: depth}
		for _, child := range n.Children {
			if kept := clone(child, out, depth+1); kept != nil {
				out.Children = append(out.Children, kept)
			}
		}
		if !matched && len(out.Children) == 0 {
			return nil
		}
		return out
	}

	root := clone(t.Root, nil, 0)
	if root == nil {
		return nil
	}
	filtered := &Tree{Root: root, byID: make(map[int]*Node)}
	filtered.Walk(func(n *Node) bool {
		filtered.byID[n.Record.ID] = n
		return true
	})
	return filtered
}
