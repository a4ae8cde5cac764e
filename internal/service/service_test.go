package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ycedres/cobbler/internal/codec"
	"github.com/ycedres/cobbler/internal/config"
	"github.com/ycedres/cobbler/internal/domain"
	"github.com/ycedres/cobbler/internal/repository"
)

// memStore is an in-memory repository.Store for tests.
type memStore struct {
	docs map[string]map[string]map[string]any
}

var _ repository.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{docs: map[string]map[string]map[string]any{}}
}

func (m *memStore) Load(_ context.Context, collection, name string) (map[string]any, error) {
	doc, ok := m.docs[collection][name]
	if !ok {
		return nil, fmt.Errorf("%s %q: %w", collection, name, repository.ErrNoDocument)
	}
	return doc, nil
}

func (m *memStore) Save(_ context.Context, collection, name string, doc map[string]any) error {
	if m.docs[collection] == nil {
		m.docs[collection] = map[string]map[string]any{}
	}
	m.docs[collection][name] = doc
	return nil
}

func (m *memStore) Delete(_ context.Context, collection, name string) error {
	delete(m.docs[collection], name)
	return nil
}

func (m *memStore) Names(_ context.Context, collection string) ([]string, error) {
	var names []string
	for name := range m.docs[collection] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *memStore) Close() error { return nil }

func newTestService() (*ItemService, *memStore) {
	store := newMemStore()
	reg := domain.NewRegistry(config.DefaultSettings(), store, zerolog.Nop())
	return NewItemService(reg, zerolog.Nop()), store
}

func mustCreate(t *testing.T, svc *ItemService, typ domain.ItemType, data map[string]any) domain.AnyItem {
	t.Helper()
	it, err := svc.Create(context.Background(), typ, data)
	if err != nil {
		t.Fatalf("create %s: %v", typ, err)
	}
	return it
}

func distroDoc(name string) map[string]any {
	return map[string]any{
		"name":   name,
		"kernel": "/boot/vmlinuz",
		"initrd": "/boot/initrd.img",
	}
}

func TestCreate(t *testing.T) {
	t.Run("persists the document", func(t *testing.T) {
		svc, store := newTestService()
		mustCreate(t, svc, domain.TypeDistro, distroDoc("fc42"))
		doc, ok := store.docs["distro"]["fc42"]
		if !ok {
			t.Fatal("document not persisted")
		}
		if doc["kernel"] != "/boot/vmlinuz" {
			t.Errorf("persisted kernel = %v", doc["kernel"])
		}
	})

	t.Run("unknown keys abort before registration", func(t *testing.T) {
		svc, store := newTestService()
		_, err := svc.Create(context.Background(), domain.TypeDistro, map[string]any{
			"name": "fc42", "kernel": "/boot/vmlinuz", "warranty": "void",
		})
		var uk *domain.UnknownKeysError
		if !errors.As(err, &uk) {
			t.Fatalf("error = %v, want *UnknownKeysError", err)
		}
		if _, ok := store.docs["distro"]["fc42"]; ok {
			t.Error("rejected item reached the store")
		}
	})

	t.Run("invalid item is not registered", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.Create(context.Background(), domain.TypeProfile, map[string]any{"name": "orphan"})
		if err == nil {
			t.Fatal("profile without a distro accepted")
		}
		if _, err := svc.Get(domain.TypeProfile, "orphan"); !errors.Is(err, domain.ErrNotFound) {
			t.Error("rejected profile is registered")
		}
	})
}

func TestGet(t *testing.T) {
	svc, _ := newTestService()
	mustCreate(t, svc, domain.TypeDistro, distroDoc("fc42"))
	if _, err := svc.Get(domain.TypeDistro, "fc42"); err != nil {
		t.Errorf("Get() = %v", err)
	}
	if _, err := svc.Get(domain.TypeDistro, "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get(ghost) = %v, want ErrNotFound", err)
	}
}

func TestUpdate(t *testing.T) {
	svc, store := newTestService()
	mustCreate(t, svc, domain.TypeDistro, distroDoc("fc42"))
	err := svc.Update(context.Background(), domain.TypeDistro, "fc42", map[string]any{
		"comment": "updated tree",
	})
	if err != nil {
		t.Fatal(err)
	}
	if store.docs["distro"]["fc42"]["comment"] != "updated tree" {
		t.Error("update not persisted")
	}
	err = svc.Update(context.Background(), domain.TypeDistro, "ghost", map[string]any{"comment": "x"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Update(ghost) = %v, want ErrNotFound", err)
	}
}

func TestRename(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	mustCreate(t, svc, domain.TypeDistro, distroDoc("fc42"))
	mustCreate(t, svc, domain.TypeProfile, map[string]any{"name": "base", "distro": "fc42"})
	mustCreate(t, svc, domain.TypeProfile, map[string]any{"name": "sub", "distro": "fc42", "parent": "base"})

	if err := svc.Rename(ctx, domain.TypeProfile, "base", "edge"); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.docs["profile"]["base"]; ok {
		t.Error("old document survived the rename")
	}
	if _, ok := store.docs["profile"]["edge"]; !ok {
		t.Error("new document missing")
	}
	if got := store.docs["profile"]["sub"]["parent"]; got != "edge" {
		t.Errorf("child parent = %v, want edge", got)
	}
}

func TestDelete(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	mustCreate(t, svc, domain.TypeDistro, distroDoc("fc42"))
	mustCreate(t, svc, domain.TypeProfile, map[string]any{"name": "web", "distro": "fc42"})

	if err := svc.Delete(ctx, domain.TypeDistro, "fc42", false); err == nil {
		t.Fatal("deletion succeeded despite a dependent profile")
	}
	if err := svc.Delete(ctx, domain.TypeDistro, "fc42", true); err != nil {
		t.Fatal(err)
	}
	if len(store.docs["distro"]) != 0 || len(store.docs["profile"]) != 0 {
		t.Errorf("documents survived recursive delete: %v", store.docs)
	}
}

func TestExportImport(t *testing.T) {
	src, _ := newTestService()
	mustCreate(t, src, domain.TypeDistro, distroDoc("fc42"))
	mustCreate(t, src, domain.TypeProfile, map[string]any{"name": "web", "distro": "fc42"})
	mustCreate(t, src, domain.TypeSystem, map[string]any{"name": "node1", "profile": "web"})

	var buf bytes.Buffer
	if err := src.Export(&buf, codec.NewJSONCodec()); err != nil {
		t.Fatal(err)
	}

	dst, store := newTestService()
	if err := dst.Import(context.Background(), &buf, codec.NewJSONCodec()); err != nil {
		t.Fatal(err)
	}
	for typ, name := range map[domain.ItemType]string{
		domain.TypeDistro: "fc42", domain.TypeProfile: "web", domain.TypeSystem: "node1",
	} {
		if _, err := dst.Get(typ, name); err != nil {
			t.Errorf("%s %q missing after import: %v", typ, name, err)
		}
		if _, ok := store.docs[string(typ)][name]; !ok {
			t.Errorf("%s %q not persisted by import", typ, name)
		}
	}
}

func TestImportUnknownCollection(t *testing.T) {
	svc, _ := newTestService()
	err := svc.Import(context.Background(), strings.NewReader(`{"widget": {"x": {"name": "x"}}}`), codec.NewJSONCodec())
	if err == nil || !strings.Contains(err.Error(), "widget") {
		t.Errorf("error = %v, want unknown collection widget", err)
	}
}

func TestList(t *testing.T) {
	svc, _ := newTestService()
	mustCreate(t, svc, domain.TypeDistro, distroDoc("zeta"))
	mustCreate(t, svc, domain.TypeDistro, distroDoc("alpha"))
	got := svc.List(domain.TypeDistro)
	if len(got) != 2 || got[0].Base().Name() != "alpha" || got[1].Base().Name() != "zeta" {
		t.Errorf("List() order wrong: %v", got)
	}
}
