package domain

// ItemType identifies a collection of items. Every concrete item belongs
// to exactly one type and its name is unique within that type.
type ItemType string

const (
	TypeDistro    ItemType = "distro"
	TypeProfile   ItemType = "profile"
	TypeSystem    ItemType = "system"
	TypeImage     ItemType = "image"
	TypeMenu      ItemType = "menu"
	TypeRepo      ItemType = "repo"
	TypeMgmtClass ItemType = "mgmtclass"
	TypePackage   ItemType = "package"
	TypeFile      ItemType = "file"
)

// ItemTypes lists every collection type in topological load order:
// referenced types come before the types that reference them.
var ItemTypes = []ItemType{
	TypePackage, TypeFile, TypeMgmtClass, TypeRepo,
	TypeDistro, TypeMenu, TypeImage, TypeProfile, TypeSystem,
}

// Dependent is one edge of the static cross-type dependency table: items
// of type Type reference the owning type through attribute Attr.
type Dependent struct {
	Type ItemType
	Attr string
}

// typeDependencies maps an item type to the (dependent type, attribute)
// pairs that reference it. It drives descendant computation, cache
// invalidation, and ancestor hydration, and must match the attribute
// schemas: every Attr named here is a key in the dependent type's schema.
var typeDependencies = map[ItemType][]Dependent{
	TypePackage: {
		{TypeMgmtClass, "packages"},
	},
	TypeFile: {
		{TypeMgmtClass, "files"},
		{TypeImage, "file"},
	},
	TypeMgmtClass: {
		{TypeDistro, "mgmt_classes"},
		{TypeProfile, "mgmt_classes"},
		{TypeSystem, "mgmt_classes"},
	},
	TypeRepo: {
		{TypeProfile, "repos"},
	},
	TypeDistro: {
		{TypeProfile, "distro"},
	},
	TypeMenu: {
		{TypeMenu, "parent"},
		{TypeImage, "menu"},
		{TypeProfile, "menu"},
	},
	TypeProfile: {
		{TypeProfile, "parent"},
		{TypeSystem, "profile"},
	},
	TypeImage: {
		{TypeSystem, "image"},
	},
	TypeSystem: {},
}

// inheritanceEdges describes the conceptual hierarchy of an item type:
// Up edges lead to the differently-typed item an attribute chain inherits
// from, Down edges to the types that inherit from it.
type inheritanceEdges struct {
	Up   []Dependent
	Down []Dependent
}

// logicalInheritance is the static conceptual-parent table. The Up
// attribute names the field on the *current* type that references the
// previous level (a system's "profile" field points at a profile).
var logicalInheritance = map[ItemType]inheritanceEdges{
	TypeDistro: {
		Down: []Dependent{{TypeProfile, "distro"}},
	},
	TypeProfile: {
		Up:   []Dependent{{TypeDistro, "distro"}},
		Down: []Dependent{{TypeSystem, "profile"}},
	},
	TypeImage: {
		Down: []Dependent{{TypeSystem, "image"}},
	},
	TypeSystem: {
		Up: []Dependent{{TypeImage, "image"}, {TypeProfile, "profile"}},
	},
}
