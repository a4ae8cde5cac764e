package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when an item is addressed by a name that is not
// registered in its collection.
var ErrNotFound = errors.New("item not found")

// ErrNameImmutable is returned by Apply when an update tries to change
// the name attribute. Renames go through Collection.Rename so the
// collection index stays consistent with the item.
var ErrNameImmutable = errors.New("name cannot be changed through an update; use rename")

// UnknownKeysError reports the set of keys rejected by FromDict. Every
// recognized key has already been applied when this error is returned.
type UnknownKeysError struct {
	Keys []string
}

func (e *UnknownKeysError) Error() string {
	return fmt.Sprintf("the following keys could not be set: %s", strings.Join(e.Keys, ", "))
}

// ResolutionError reports an attribute that could not be resolved to a
// concrete value through the parent chain or settings. This is a
// schema/settings consistency failure, not a normal lookup miss.
type ResolutionError struct {
	ItemType ItemType
	ItemName string
	Attr     string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s %q inherits attribute %q, but neither its parent nor settings provide it",
		e.ItemType, e.ItemName, e.Attr)
}

func resolutionErr(i *Item, attr string) error {
	return &ResolutionError{ItemType: i.itemType, ItemName: i.name, Attr: attr}
}
