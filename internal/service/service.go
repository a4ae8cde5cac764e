// Package service provides the item lifecycle operations the daemon and
// future administrative surfaces call: create, update, rename, delete
// with persistence, plus whole-collection import and export.
package service

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/ycedres/cobbler/internal/codec"
	"github.com/ycedres/cobbler/internal/domain"
	"github.com/ycedres/cobbler/internal/manager"
)

// ItemService ties registry mutations to the backing store and to the
// DHCP manager.
type ItemService struct {
	reg    *domain.Registry
	dhcp   *manager.DHCP
	logger zerolog.Logger
}

// NewItemService creates the service over a registry.
func NewItemService(reg *domain.Registry, logger zerolog.Logger) *ItemService {
	return &ItemService{
		reg:    reg,
		logger: logger.With().Str("component", "items").Logger(),
	}
}

// WithDHCP attaches a DHCP manager; system changes then trigger an
// incremental sync.
func (s *ItemService) WithDHCP(dhcp *manager.DHCP) *ItemService {
	s.dhcp = dhcp
	return s
}

// Registry exposes the underlying registry for read paths.
func (s *ItemService) Registry() *domain.Registry { return s.reg }

// Get returns the named item.
func (s *ItemService) Get(t domain.ItemType, name string) (domain.AnyItem, error) {
	it := s.reg.Get(t, name)
	if it == nil {
		return nil, fmt.Errorf("%s %q: %w", t, name, domain.ErrNotFound)
	}
	return it, nil
}

// List returns all items of a type sorted by name.
func (s *ItemService) List(t domain.ItemType) []domain.AnyItem {
	col := s.reg.Items(t)
	if col == nil {
		return nil
	}
	return col.All()
}

// Create builds an item of the given type from an attribute mapping,
// registers it, and persists it.
func (s *ItemService) Create(ctx context.Context, t domain.ItemType, data map[string]any) (domain.AnyItem, error) {
	it, err := domain.NewItemOfType(t, s.reg)
	if err != nil {
		return nil, err
	}
	if err := domain.FromDict(it, data); err != nil {
		return nil, err
	}
	if err := s.reg.Add(it); err != nil {
		return nil, err
	}
	if err := s.reg.SaveItem(ctx, it); err != nil {
		return nil, err
	}
	s.logger.Info().Str("type", string(t)).Str("name", it.Base().Name()).Msg("item created")
	return it, s.maybeSync(ctx, it)
}

// Update applies an attribute mapping onto a registered item and
// persists the result.
func (s *ItemService) Update(ctx context.Context, t domain.ItemType, name string, updates map[string]any) error {
	it, err := s.Get(t, name)
	if err != nil {
		return err
	}
	if err := domain.Apply(it, updates); err != nil {
		return err
	}
	if err := s.reg.SaveItem(ctx, it); err != nil {
		return err
	}
	s.logger.Info().Str("type", string(t)).Str("name", name).Msg("item updated")
	return s.maybeSync(ctx, it)
}

// Rename moves an item to a new name in its collection and in the
// store.
func (s *ItemService) Rename(ctx context.Context, t domain.ItemType, oldName, newName string) error {
	it, err := s.Get(t, oldName)
	if err != nil {
		return err
	}
	if err := s.reg.Items(t).Rename(it, newName); err != nil {
		return err
	}
	if store := s.reg.Store(); store != nil {
		if err := store.Delete(ctx, string(t), oldName); err != nil {
			return fmt.Errorf("drop old document: %w", err)
		}
	}
	if err := s.reg.SaveItem(ctx, it); err != nil {
		return err
	}
	// children re-pointed at the new name must be persisted too
	for _, child := range it.Base().Children() {
		if err := s.reg.SaveItem(ctx, child); err != nil {
			return err
		}
	}
	s.logger.Info().Str("type", string(t)).Str("from", oldName).Str("to", newName).Msg("item renamed")
	return nil
}

// Delete removes an item. With recursive set its dependents go too,
// otherwise the removal is refused while dependents exist.
func (s *ItemService) Delete(ctx context.Context, t domain.ItemType, name string, recursive bool) error {
	if err := s.reg.Remove(ctx, t, name, recursive); err != nil {
		return err
	}
	s.logger.Info().Str("type", string(t)).Str("name", name).Bool("recursive", recursive).Msg("item removed")
	return nil
}

// Export serializes every registered item through the exporter.
func (s *ItemService) Export(w io.Writer, exporter codec.Exporter) error {
	var docs []codec.Document
	for _, t := range domain.ItemTypes {
		for _, it := range s.reg.Items(t).All() {
			doc, err := domain.Serialize(it)
			if err != nil {
				return err
			}
			docs = append(docs, codec.Document{
				Collection: string(t),
				Name:       it.Base().Name(),
				Attrs:      doc,
			})
		}
	}
	return exporter.Export(docs, w)
}

// Import reads a dump and registers every document, referenced types
// first so existence checks pass.
func (s *ItemService) Import(ctx context.Context, r io.Reader, importer codec.Importer) error {
	docs, err := importer.Parse(r)
	if err != nil {
		return err
	}

	byCollection := map[string][]codec.Document{}
	for _, d := range docs {
		byCollection[d.Collection] = append(byCollection[d.Collection], d)
	}

	for _, t := range domain.ItemTypes {
		for _, d := range byCollection[string(t)] {
			if _, err := s.Create(ctx, t, d.Attrs); err != nil {
				return fmt.Errorf("import %s %q: %w", d.Collection, d.Name, err)
			}
		}
		delete(byCollection, string(t))
	}
	for collection := range byCollection {
		return fmt.Errorf("unknown collection %q in dump", collection)
	}
	return nil
}

// SaveAll persists every registered item.
func (s *ItemService) SaveAll(ctx context.Context) error {
	for _, t := range domain.ItemTypes {
		for _, it := range s.reg.Items(t).All() {
			if !it.Base().InMemory() {
				continue
			}
			if err := s.reg.SaveItem(ctx, it); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *ItemService) maybeSync(ctx context.Context, it domain.AnyItem) error {
	if s.dhcp == nil {
		return nil
	}
	system, ok := it.(*domain.System)
	if !ok {
		return nil
	}
	if err := s.dhcp.SyncSingle(ctx, system); err != nil {
		return fmt.Errorf("dhcp sync for system %q: %w", system.Name(), err)
	}
	return nil
}
