package domain

import (
	"fmt"
	"path"
)

// Distro is an installable operating system tree: kernel, initrd, and the
// metadata the boot configuration needs. Distros sit at the top of the
// profile inheritance chain.
type Distro struct {
	Item

	arch             Arch
	breed            string
	osVersion        string
	kernel           string
	initrd           string
	remoteBootKernel string
	remoteBootInitrd string
	bootLoaders      Value[[]string]
}

// NewDistro constructs an empty, unregistered distro.
func NewDistro(reg *Registry) *Distro {
	d := &Distro{
		Item:        newItem(reg, TypeDistro),
		arch:        ArchX8664,
		bootLoaders: Inherited[[]string](),
	}
	d.self = d
	d.initialized = true
	return d
}

// NewDistroFromDict constructs a distro seeded from an attribute mapping.
func NewDistroFromDict(reg *Registry, data map[string]any) (*Distro, error) {
	d := NewDistro(reg)
	if err := FromDict(d, data); err != nil {
		return nil, err
	}
	return d, nil
}

// Arch returns the CPU architecture of the tree.
func (d *Distro) Arch() Arch { return d.arch }

func (d *Distro) SetArch(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	a, err := ParseArch(s)
	if err != nil {
		return err
	}
	d.invalidate("arch")
	d.arch = a
	return nil
}

// Breed is the OS family of the tree (redhat, debian, suse, ...).
func (d *Distro) Breed() string { return d.breed }

func (d *Distro) SetBreed(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	d.invalidate("breed")
	d.breed = s
	return nil
}

// OSVersion is the version token within the breed (e.g. "esxi70").
func (d *Distro) OSVersion() string { return d.osVersion }

func (d *Distro) SetOSVersion(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	d.invalidate("os_version")
	d.osVersion = s
	return nil
}

// Kernel is the local path of the kernel image.
func (d *Distro) Kernel() string { return d.kernel }

func (d *Distro) SetKernel(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	d.invalidate("kernel")
	d.kernel = s
	return nil
}

// Initrd is the local path of the initial ramdisk.
func (d *Distro) Initrd() string { return d.initrd }

func (d *Distro) SetInitrd(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	d.invalidate("initrd")
	d.initrd = s
	return nil
}

// RemoteBootKernel is a http(s) URL fetched at boot time instead of the
// local kernel, when set.
func (d *Distro) RemoteBootKernel() string { return d.remoteBootKernel }

func (d *Distro) SetRemoteBootKernel(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	d.invalidate("remote_boot_kernel")
	d.remoteBootKernel = s
	return nil
}

// RemoteBootInitrd is the remote counterpart of Initrd.
func (d *Distro) RemoteBootInitrd() string { return d.remoteBootInitrd }

func (d *Distro) SetRemoteBootInitrd(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	d.invalidate("remote_boot_initrd")
	d.remoteBootInitrd = s
	return nil
}

// RemoteGrubKernel is the GRUB-reachable rendering of RemoteBootKernel.
// Derived, never persisted.
func (d *Distro) RemoteGrubKernel() string {
	return grubPath(d.remoteBootKernel)
}

// RemoteGrubInitrd is the GRUB-reachable rendering of RemoteBootInitrd.
func (d *Distro) RemoteGrubInitrd() string {
	return grubPath(d.remoteBootInitrd)
}

func grubPath(remote string) string {
	if remote == "" {
		return ""
	}
	return path.Join("grub", path.Base(remote))
}

// BootLoaders returns the resolved list of boot loaders the distro can be
// booted with. Falls back to the settings boot_loaders field.
func (d *Distro) BootLoaders() ([]string, error) {
	return resolveScalar(&d.Item, "boot_loaders", d.bootLoaders,
		func(p AnyItem) ([]string, bool, error) {
			if pd, ok := p.(*Distro); ok {
				v, err := pd.BootLoaders()
				return v, true, err
			}
			return nil, false, nil
		}, inputStringOrList)
}

func (d *Distro) SetBootLoaders(v any) error {
	return d.setListAttr(&d.bootLoaders, "boot_loaders", v)
}

var distroSchema = mergeSchema(map[string]*Attribute{
	"arch": {
		Kind: KindEnum,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*Distro).arch.String(), nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Distro).SetArch(v) },
	},
	"breed": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*Distro).breed, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Distro).SetBreed(v) },
	},
	"os_version": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*Distro).osVersion, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Distro).SetOSVersion(v) },
	},
	"kernel": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*Distro).kernel, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Distro).SetKernel(v) },
	},
	"initrd": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*Distro).initrd, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Distro).SetInitrd(v) },
	},
	"remote_boot_kernel": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*Distro).remoteBootKernel, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Distro).SetRemoteBootKernel(v) },
	},
	"remote_boot_initrd": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*Distro).remoteBootInitrd, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Distro).SetRemoteBootInitrd(v) },
	},
	// Derived views of the remote boot paths; exposed for API
	// compatibility, stripped again before persistence.
	"remote_grub_kernel": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*Distro).RemoteGrubKernel(), nil
		},
	},
	"remote_grub_initrd": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*Distro).RemoteGrubInitrd(), nil
		},
	},
	"boot_loaders": {
		Kind:        KindList,
		Inheritable: true,
		Get: func(it AnyItem, resolved bool) (any, error) {
			if resolved {
				return it.(*Distro).BootLoaders()
			}
			return rawList(it.(*Distro).bootLoaders), nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Distro).SetBootLoaders(v) },
	},
})

// CheckValid extends the base validation with the distro essentials.
func (d *Distro) CheckValid() error {
	if err := d.Item.CheckValid(); err != nil {
		return err
	}
	if d.kernel == "" && d.remoteBootKernel == "" {
		return fmt.Errorf("distro %q: kernel or remote boot kernel is required", d.name)
	}
	return nil
}
