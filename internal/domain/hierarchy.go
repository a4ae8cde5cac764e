package domain

import "fmt"

// ParentName returns the raw same-type parent reference, or "".
func (i *Item) ParentName() string { return i.parent }

// Parent resolves the structural parent through the owning collection.
// Returns nil at the root or when the reference is dangling.
func (i *Item) Parent() AnyItem {
	if i.parent == "" || i.reg == nil {
		return nil
	}
	return i.reg.Get(i.itemType, i.parent)
}

// SetParent assigns the structural parent by name. The parent must exist
// in the same collection, may not be the item itself, and may not close a
// cycle. On success the item's depth becomes parent depth + 1.
func (i *Item) SetParent(parent string) error {
	if parent == "" {
		i.invalidate("parent")
		i.parent = ""
		i.depth = 0
		return nil
	}
	if parent == i.name {
		return fmt.Errorf("%s %q: self parentage is not allowed", i.itemType, i.name)
	}
	if i.reg == nil {
		return fmt.Errorf("%s %q is not attached to a registry", i.itemType, i.name)
	}
	found := i.reg.Get(i.itemType, parent)
	if found == nil {
		return fmt.Errorf("%s %q not found, inheritance not possible: %w", i.itemType, parent, ErrNotFound)
	}
	for cur := found; cur != nil; cur = cur.Base().Parent() {
		if cur.Base().uid == i.uid {
			return fmt.Errorf("%s %q: setting parent %q would create a cycle", i.itemType, i.name, parent)
		}
	}
	i.invalidate("parent")
	i.parent = parent
	i.depth = found.Base().depth + 1
	return nil
}

// ConceptualParent climbs the same-type parent chain to its root, then
// follows the static inheritance table to the first differently-typed
// ancestor (a profile's distro, a system's profile or image).
func (i *Item) ConceptualParent() AnyItem {
	cur := i.self
	if cur == nil {
		return nil
	}
	for {
		next := cur.Base().Parent()
		if next == nil {
			break
		}
		cur = next
	}
	for _, up := range logicalInheritance[cur.Type()].Up {
		ref := rawRefName(cur, up.Attr)
		if ref == "" || ref == Inherit {
			continue
		}
		if found := i.reg.Get(up.Type, ref); found != nil {
			return found
		}
	}
	return nil
}

// LogicalParent is the item attributes inherit from: the structural
// parent when set, the conceptual parent otherwise. Nil at the top of the
// tree, where settings take over.
func (i *Item) LogicalParent() AnyItem {
	if p := i.Parent(); p != nil {
		return p
	}
	return i.ConceptualParent()
}

// Children returns the same-type items whose parent reference names this
// item.
func (i *Item) Children() []AnyItem {
	if i.reg == nil {
		return nil
	}
	col := i.reg.Items(i.itemType)
	if col == nil {
		return nil
	}
	var out []AnyItem
	for _, it := range col.All() {
		if it.Base().parent == i.name {
			out = append(out, it)
		}
	}
	return out
}

// TreeWalk returns all structural descendants in depth-first pre-order.
// Termination relies on the no-cycle invariant enforced by SetParent.
func (i *Item) TreeWalk() []AnyItem {
	var out []AnyItem
	for _, child := range i.Children() {
		out = append(out, child)
		out = append(out, child.Base().TreeWalk()...)
	}
	return out
}

// Descendants computes the blast radius of this item: every item whose
// resolved state depends on it, directly or transitively. That is the
// structural subtree plus, for each node in it, the items of other types
// that reference the node through the static dependency table, and their
// dependents in turn. The traversal uses an explicit worklist and a
// visited set keyed by uid, so membership is deduplicated and unexpected
// cycles cannot recurse.
func (i *Item) Descendants() []AnyItem {
	if i.self == nil || i.reg == nil {
		return nil
	}
	seen := map[string]bool{i.uid: true}
	var out []AnyItem
	stack := []AnyItem{i.self}
	visit := func(it AnyItem) {
		id := it.Base().uid
		if seen[id] {
			return
		}
		seen[id] = true
		out = append(out, it)
		stack = append(stack, it)
	}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range cur.Base().Children() {
			visit(child)
		}
		for _, dep := range typeDependencies[cur.Type()] {
			for _, it := range i.reg.FindByAttr(dep.Type, dep.Attr, cur.Base().name) {
				visit(it)
			}
		}
	}
	return out
}

// GrabTree climbs the logical-parent chain and returns every node from
// this item up to the root. Blend appends the settings on top.
func (i *Item) GrabTree() []AnyItem {
	if i.self == nil {
		return nil
	}
	out := []AnyItem{i.self}
	for p := i.LogicalParent(); p != nil; p = p.Base().LogicalParent() {
		out = append(out, p)
	}
	return out
}

// rawRefName reads the raw string value of a reference attribute through
// the schema, without resolving inheritance.
func rawRefName(it AnyItem, attr string) string {
	a := schemaFor(it.Type())[attr]
	if a == nil {
		return ""
	}
	v, err := a.Get(it, false)
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
