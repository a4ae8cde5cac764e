package domain

import "fmt"

// Repo is a package repository mirror that profiles can attach to
// installed machines.
type Repo struct {
	Item

	mirror          string
	mirrorLocally   bool
	keepUpdated     bool
	breed           string
	arch            string
	rpmList         []string
	createrepoFlags string
	environment     map[string]any

	proxy Value[string]
}

// NewRepo constructs an empty, unregistered repo.
func NewRepo(reg *Registry) *Repo {
	r := &Repo{
		Item:        newItem(reg, TypeRepo),
		keepUpdated: true,
		rpmList:     []string{},
		environment: map[string]any{},
		proxy:       Inherited[string](),
	}
	r.self = r
	r.initialized = true
	return r
}

// NewRepoFromDict constructs a repo seeded from an attribute mapping.
func NewRepoFromDict(reg *Registry, data map[string]any) (*Repo, error) {
	r := NewRepo(reg)
	if err := FromDict(r, data); err != nil {
		return nil, err
	}
	return r, nil
}

// Mirror returns the upstream URL or rsync location.
func (r *Repo) Mirror() string { return r.mirror }

func (r *Repo) SetMirror(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	r.invalidate("mirror")
	r.mirror = s
	return nil
}

// MirrorLocally reports whether the content is copied to this server
// instead of referenced in place.
func (r *Repo) MirrorLocally() bool { return r.mirrorLocally }

func (r *Repo) SetMirrorLocally(v any) error {
	b, err := inputBool(v)
	if err != nil {
		return fmt.Errorf("invalid mirror_locally: %w", err)
	}
	r.invalidate("mirror_locally")
	r.mirrorLocally = b
	return nil
}

// KeepUpdated reports whether periodic sync refreshes this repo.
func (r *Repo) KeepUpdated() bool { return r.keepUpdated }

func (r *Repo) SetKeepUpdated(v any) error {
	b, err := inputBool(v)
	if err != nil {
		return fmt.Errorf("invalid keep_updated: %w", err)
	}
	r.invalidate("keep_updated")
	r.keepUpdated = b
	return nil
}

// Breed returns the repository format (yum, apt, rsync, wget).
func (r *Repo) Breed() string { return r.breed }

func (r *Repo) SetBreed(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	r.invalidate("breed")
	r.breed = s
	return nil
}

// RepoArch returns the package architecture of the mirror.
func (r *Repo) RepoArch() string { return r.arch }

func (r *Repo) SetRepoArch(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	r.invalidate("arch")
	r.arch = s
	return nil
}

// RPMList returns the subset of packages to mirror, empty for all.
func (r *Repo) RPMList() []string {
	out := make([]string, len(r.rpmList))
	copy(out, r.rpmList)
	return out
}

func (r *Repo) SetRPMList(v any) error {
	list, err := inputStringOrList(v)
	if err != nil {
		return fmt.Errorf("invalid rpm_list: %w", err)
	}
	r.invalidate("rpm_list")
	r.rpmList = list
	return nil
}

// CreaterepoFlags returns extra flags handed to createrepo runs.
func (r *Repo) CreaterepoFlags() string { return r.createrepoFlags }

func (r *Repo) SetCreaterepoFlags(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	r.invalidate("createrepo_flags")
	r.createrepoFlags = s
	return nil
}

// Environment returns extra environment variables exported around repo
// sync commands.
func (r *Repo) Environment() map[string]any { return copyMap(r.environment) }

func (r *Repo) SetEnvironment(v any) error {
	m, err := inputStringOrMap(v, false)
	if err != nil {
		return fmt.Errorf("invalid environment: %w", err)
	}
	r.invalidate("environment")
	r.environment = m
	return nil
}

// Proxy returns the proxy used to reach the upstream mirror, falling
// back to the settings proxy field. The historical attribute name
// carries the proxy_url_ prefix.
func (r *Repo) Proxy() (string, error) {
	return resolveScalar(&r.Item, "proxy_url_ext", r.proxy,
		func(AnyItem) (string, bool, error) { return "", false, nil },
		inputString)
}

func (r *Repo) SetProxy(v any) error {
	return r.setStringAttr(&r.proxy, "proxy", v)
}

// CheckValid extends the base validation: a repo must have a mirror.
func (r *Repo) CheckValid() error {
	if err := r.Item.CheckValid(); err != nil {
		return err
	}
	if r.mirror == "" {
		return fmt.Errorf("repo %q: a mirror is required", r.name)
	}
	return nil
}

var repoSchema = mergeSchema(map[string]*Attribute{
	"mirror": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*Repo).mirror, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Repo).SetMirror(v) },
	},
	"mirror_locally": {
		Kind: KindBool,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*Repo).mirrorLocally, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Repo).SetMirrorLocally(v) },
	},
	"keep_updated": {
		Kind: KindBool,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*Repo).keepUpdated, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Repo).SetKeepUpdated(v) },
	},
	"breed": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*Repo).breed, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Repo).SetBreed(v) },
	},
	"arch": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*Repo).arch, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Repo).SetRepoArch(v) },
	},
	"rpm_list": {
		Kind: KindList,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*Repo).RPMList(), nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Repo).SetRPMList(v) },
	},
	"createrepo_flags": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*Repo).createrepoFlags, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Repo).SetCreaterepoFlags(v) },
	},
	"environment": {
		Kind: KindDict,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*Repo).Environment(), nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Repo).SetEnvironment(v) },
	},
	"proxy": {
		Kind:        KindString,
		Inheritable: true,
		Get: func(it AnyItem, resolved bool) (any, error) {
			if resolved {
				return it.(*Repo).Proxy()
			}
			return rawString(it.(*Repo).proxy), nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Repo).SetProxy(v) },
	},
})
