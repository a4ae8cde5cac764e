package domain

import "fmt"

// ImageType says how an image file is consumed at deploy time.
type ImageType string

const (
	ImageDirect    ImageType = "direct"
	ImageISO       ImageType = "iso"
	ImageMemdisk   ImageType = "memdisk"
	ImageVirtClone ImageType = "virt-clone"
)

// ParseImageType converts a raw string into an ImageType.
func ParseImageType(s string) (ImageType, error) {
	switch ImageType(s) {
	case ImageDirect, ImageISO, ImageMemdisk, ImageVirtClone:
		return ImageType(s), nil
	}
	return "", fmt.Errorf("unknown image type %q", s)
}

func (t ImageType) String() string { return string(t) }

// Image is a pre-built OS payload deployed without a distro, either a
// bootable medium or a virtual machine template.
type Image struct {
	Item

	file      string
	arch      Arch
	breed     string
	osVersion string
	imageType ImageType
	menu      string

	bootLoaders Value[[]string]
	virtType    Value[VirtType]
	virtBridge  Value[string]
}

// NewImage constructs an empty, unregistered image.
func NewImage(reg *Registry) *Image {
	i := &Image{
		Item:        newItem(reg, TypeImage),
		arch:        ArchX8664,
		imageType:   ImageDirect,
		bootLoaders: Inherited[[]string](),
		virtType:    Inherited[VirtType](),
		virtBridge:  Inherited[string](),
	}
	i.self = i
	i.initialized = true
	return i
}

// NewImageFromDict constructs an image seeded from an attribute mapping.
func NewImageFromDict(reg *Registry, data map[string]any) (*Image, error) {
	i := NewImage(reg)
	if err := FromDict(i, data); err != nil {
		return nil, err
	}
	return i, nil
}

// File returns the path or URI of the image payload.
func (i *Image) File() string { return i.file }

func (i *Image) SetFile(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	i.invalidate("file")
	i.file = s
	return nil
}

// Arch returns the target architecture.
func (i *Image) Arch() Arch { return i.arch }

func (i *Image) SetArch(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	a, err := ParseArch(s)
	if err != nil {
		return err
	}
	i.invalidate("arch")
	i.arch = a
	return nil
}

// Breed returns the OS family of the payload.
func (i *Image) Breed() string { return i.breed }

func (i *Image) SetBreed(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	i.invalidate("breed")
	i.breed = s
	return nil
}

// OSVersion returns the OS version of the payload.
func (i *Image) OSVersion() string { return i.osVersion }

func (i *Image) SetOSVersion(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	i.invalidate("os_version")
	i.osVersion = s
	return nil
}

// ImageType returns how the payload is consumed.
func (i *Image) ImageType() ImageType { return i.imageType }

func (i *Image) SetImageType(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	if s == "" {
		s = string(ImageDirect)
	}
	t, err := ParseImageType(s)
	if err != nil {
		return err
	}
	i.invalidate("image_type")
	i.imageType = t
	return nil
}

// MenuName returns the boot menu this image is listed under.
func (i *Image) MenuName() string { return i.menu }

func (i *Image) SetMenu(v any) error {
	s, err := inputString(v)
	if err != nil {
		return err
	}
	i.invalidate("menu")
	i.menu = s
	return nil
}

// BootLoaders returns the resolved list of boot loaders, falling back to
// the settings boot_loaders field.
func (i *Image) BootLoaders() ([]string, error) {
	return resolveScalar(&i.Item, "boot_loaders", i.bootLoaders,
		func(AnyItem) ([]string, bool, error) { return nil, false, nil },
		inputStringOrList)
}

func (i *Image) SetBootLoaders(v any) error {
	return i.setListAttr(&i.bootLoaders, "boot_loaders", v)
}

// VirtType returns the resolved virtualization backend.
func (i *Image) VirtType() (VirtType, error) {
	return resolveScalar(&i.Item, "virt_type", i.virtType, virtTypeOf, convertVirtType)
}

func (i *Image) SetVirtType(v any) error {
	return i.setVirtTypeAttr(&i.virtType, v)
}

// VirtBridge returns the resolved bridge guests attach to.
func (i *Image) VirtBridge() (string, error) {
	return resolveScalar(&i.Item, "virt_bridge", i.virtBridge, virtBridgeOf, inputString)
}

func (i *Image) SetVirtBridge(v any) error {
	return i.setStringAttr(&i.virtBridge, "virt_bridge", v)
}

// CheckValid extends the base validation: an image must name its payload.
func (i *Image) CheckValid() error {
	if err := i.Item.CheckValid(); err != nil {
		return err
	}
	if i.file == "" {
		return fmt.Errorf("image %q: a file is required", i.name)
	}
	return nil
}

var imageSchema = mergeSchema(map[string]*Attribute{
	"file": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*Image).file, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Image).SetFile(v) },
	},
	"arch": {
		Kind: KindEnum,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*Image).arch.String(), nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Image).SetArch(v) },
	},
	"breed": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*Image).breed, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Image).SetBreed(v) },
	},
	"os_version": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*Image).osVersion, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Image).SetOSVersion(v) },
	},
	"image_type": {
		Kind: KindEnum,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*Image).imageType.String(), nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Image).SetImageType(v) },
	},
	"menu": {
		Kind: KindString,
		Get: func(it AnyItem, _ bool) (any, error) {
			return it.(*Image).menu, nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Image).SetMenu(v) },
	},
	"boot_loaders": {
		Kind:        KindList,
		Inheritable: true,
		Get: func(it AnyItem, resolved bool) (any, error) {
			if resolved {
				return it.(*Image).BootLoaders()
			}
			return rawList(it.(*Image).bootLoaders), nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Image).SetBootLoaders(v) },
	},
	"virt_type": {
		Kind:        KindEnum,
		Inheritable: true,
		Get: func(it AnyItem, resolved bool) (any, error) {
			if resolved {
				vt, err := it.(*Image).VirtType()
				return vt.String(), err
			}
			return rawVirtType(it.(*Image).virtType), nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Image).SetVirtType(v) },
	},
	"virt_bridge": {
		Kind:        KindString,
		Inheritable: true,
		Get: func(it AnyItem, resolved bool) (any, error) {
			if resolved {
				return it.(*Image).VirtBridge()
			}
			return rawString(it.(*Image).virtBridge), nil
		},
		Set: func(it AnyItem, v any) error { return it.(*Image).SetVirtBridge(v) },
	},
})
