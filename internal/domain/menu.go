package domain

// Menu is a node in the nested boot menu tree. Menus nest through the
// plain parent attribute and profiles and images hang off them.
type Menu struct {
	Item

	displayName string
}

// NewMenu constructs an empty, unregistered menu.
func NewMenu(reg *Registry) *Menu {
	m := &Menu{Item: newItem(reg, TypeMenu)}
	m.self = m
	m.initialized = true
	return m
}

// NewMenuFromDict constructs a menu seeded from an attribute mapping.
func NewMenuFromDict(reg *Registry, data map[string]any) (*Menu, error) {
	m := NewMenu(reg)
	if err := FromDict(m, data); err != nil {
		return nil, err
	}
	return m, nil
}

// DisplayName is the label shown in the rendered boot menu, defaulting
// to the item name when empty.
func (m *Menu) DisplayName() string {
	if m.displayName == "" {
		return m.name
	}
	return m.displayName
}

func (m *Menu) SetDisplayName(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	m.invalidate("display_name")
	m.displayName = s
	return nil
}

var menuSchema = mergeSchema(map[string]*Attribute{
	"display_name": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*Menu).displayName, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Menu).SetDisplayName(v) },
	},
})
