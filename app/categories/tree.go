package categories

import (
	"sort"

	"github.com/google/uuid"

	"github.com/nazmulhossain17/niyenin-sub000/models"
)

// forest is an in-memory adjacency map of the whole category set. Roots are
// grouped under uuid.Nil.
type forest struct {
	byID     map[uuid.UUID]*models.Category
	children map[uuid.UUID][]uuid.UUID
}

func newForest(categories []models.Category) *forest {
	f := &forest{
		byID:     make(map[uuid.UUID]*models.Category, len(categories)),
		children: make(map[uuid.UUID][]uuid.UUID),
	}
	for i := range categories {
		c := &categories[i]
		f.byID[c.ID] = c
		f.children[parentKey(c.ParentID)] = append(f.children[parentKey(c.ParentID)], c.ID)
	}
	return f
}

func parentKey(parentID *uuid.UUID) uuid.UUID {
	if parentID == nil {
		return uuid.Nil
	}
	return *parentID
}

// setParent moves id under parentID (nil for root) in the map only.
func (f *forest) setParent(id uuid.UUID, parentID *uuid.UUID) {
	c, ok := f.byID[id]
	if !ok {
		return
	}

	old := parentKey(c.ParentID)
	siblings := f.children[old]
	for i, sibling := range siblings {
		if sibling == id {
			f.children[old] = append(siblings[:i:i], siblings[i+1:]...)
			break
		}
	}

	if parentID != nil {
		p := *parentID
		c.ParentID = &p
	} else {
		c.ParentID = nil
	}
	f.children[parentKey(c.ParentID)] = append(f.children[parentKey(c.ParentID)], id)
}

// remove drops id from the map. Its children keep pointing at it.
func (f *forest) remove(id uuid.UUID) {
	c, ok := f.byID[id]
	if !ok {
		return
	}
	key := parentKey(c.ParentID)
	siblings := f.children[key]
	for i, sibling := range siblings {
		if sibling == id {
			f.children[key] = append(siblings[:i:i], siblings[i+1:]...)
			break
		}
	}
	delete(f.byID, id)
}

// descendants returns every category below id in breadth-first order.
func (f *forest) descendants(id uuid.UUID) []uuid.UUID {
	var out []uuid.UUID
	visited := map[uuid.UUID]bool{id: true}
	queue := append([]uuid.UUID(nil), f.children[id]...)

	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if visited[next] {
			continue
		}
		visited[next] = true
		out = append(out, next)
		queue = append(queue, f.children[next]...)
	}
	return out
}

// isDescendant reports whether candidate sits anywhere below ancestor.
func (f *forest) isDescendant(ancestor, candidate uuid.UUID) bool {
	for _, id := range f.descendants(ancestor) {
		if id == candidate {
			return true
		}
	}
	return false
}

// createsCycle reports whether making parentID the parent of id would close a loop.
func (f *forest) createsCycle(id uuid.UUID, parentID *uuid.UUID) bool {
	if parentID == nil {
		return false
	}
	return *parentID == id || f.isDescendant(id, *parentID)
}

// depth counts the ancestors of id. An ancestor chain that comes back on
// itself is a loop.
func (f *forest) depth(id uuid.UUID) (int, error) {
	seen := map[uuid.UUID]bool{}
	depth := 0
	for c := f.byID[id]; c != nil && c.ParentID != nil; c = f.byID[*c.ParentID] {
		if seen[c.ID] {
			return 0, models.ErrCircularReference
		}
		seen[c.ID] = true
		depth++
	}
	return depth, nil
}

// staleLevels re-derives the level of each root and of everything below it,
// and returns those that differ from the stored level. Categories outside
// these subtrees are not looked at.
func (f *forest) staleLevels(roots ...uuid.UUID) (map[uuid.UUID]int, error) {
	stale := make(map[uuid.UUID]int)
	for _, root := range roots {
		if _, ok := f.byID[root]; !ok {
			continue
		}
		start, err := f.depth(root)
		if err != nil {
			return nil, err
		}

		frontier := []uuid.UUID{root}
		for level := start; len(frontier) > 0; level++ {
			var next []uuid.UUID
			for _, id := range frontier {
				c, ok := f.byID[id]
				if !ok {
					continue
				}
				if c.Level != level {
					stale[id] = level
					c.Level = level
				}
				next = append(next, f.children[id]...)
			}
			frontier = next
		}
	}
	return stale, nil
}

// deletionOrder lists the subtree of id children first, ending with id itself.
func (f *forest) deletionOrder(id uuid.UUID) []uuid.UUID {
	order := f.descendants(id)
	out := make([]uuid.UUID, 0, len(order)+1)
	for i := len(order) - 1; i >= 0; i-- {
		out = append(out, order[i])
	}
	return append(out, id)
}

// BuildTree nests categories under their parents starting from the roots.
// Categories whose parent is missing from the input are left out.
func BuildTree(categories []models.Category) []*TreeNode {
	nodes := make(map[uuid.UUID]*TreeNode, len(categories))
	for i := range categories {
		nodes[categories[i].ID] = &TreeNode{
			CategoryResponse: *ToCategoryResponse(&categories[i]),
			Children:         []*TreeNode{},
		}
	}

	roots := []*TreeNode{}
	for i := range categories {
		c := &categories[i]
		node := nodes[c.ID]
		if c.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*c.ParentID]; ok && parent != node {
			parent.Children = append(parent.Children, node)
		}
	}

	sortNodes(roots)
	return roots
}

func sortNodes(nodes []*TreeNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].SortOrder != nodes[j].SortOrder {
			return nodes[i].SortOrder < nodes[j].SortOrder
		}
		return nodes[i].Name < nodes[j].Name
	})
	for _, n := range nodes {
		sortNodes(n.Children)
	}
}

// FlattenTree returns the nodes of a tree in depth-first order.
func FlattenTree(nodes []*TreeNode) []CategoryResponse {
	var out []CategoryResponse
	for _, n := range nodes {
		out = append(out, n.CategoryResponse)
		out = append(out, FlattenTree(n.Children)...)
	}
	return out
}

// CountNodes returns the number of nodes in a tree.
func CountNodes(nodes []*TreeNode) int {
	count := 0
	for _, n := range nodes {
		count += 1 + CountNodes(n.Children)
	}
	return count
}
