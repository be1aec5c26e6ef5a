package resource

import (
	"fmt"
)

// CreateFunc constructs a typed resource from its raw bytes. ctx exposes
// Get/Release back into the owning Factory so a create_fn may pull in
// dependent resources (spec.md §4.A: "Recursive Get calls from within a
// create_fn are allowed").
type CreateFunc func(ctx *LoadContext, buf []byte) (any, error)

// DestroyFunc releases everything a CreateFunc acquired. It may itself call
// ctx.Release on dependent resources.
type DestroyFunc func(ctx *LoadContext, resource any) error

// RecreateFunc rebuilds resource in place from freshly-read bytes, so
// existing pointers/handles held by clients remain valid across a hot
// reload (spec.md §4.A "ReloadResource"). Optional; a loader that does not
// support hot-reload leaves this nil.
type RecreateFunc func(ctx *LoadContext, resource any, buf []byte) error

// Loader binds the three lifecycle callbacks for one resource extension,
// plus an opaque Context value stored with the registration; the factory
// does not pass Context to the callbacks (spec.md §4.A "A registry of
// typed loaders keyed by a 4-byte extension string").
type Loader struct {
	Extension string
	Create    CreateFunc
	Destroy   DestroyFunc
	Recreate  RecreateFunc
	Context   any
}

func validateExtension(ext string) error {
	if len(ext) == 0 {
		return fmt.Errorf("%w: extension must be non-empty", ErrInvalid)
	}
	if ext[0] == '.' {
		return fmt.Errorf("%w: extension must not begin with '.'", ErrInvalid)
	}
	return nil
}

// RegisterLoader binds a typed loader to an extension (spec.md §4.A;
// "Extensions may not begin with '.'. Re-registration is rejected.").
func (f *Factory) RegisterLoader(l Loader) error {
	if err := validateExtension(l.Extension); err != nil {
		return err
	}
	if l.Create == nil || l.Destroy == nil {
		return fmt.Errorf("%w: loader must supply Create and Destroy", ErrInvalid)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.loaders[l.Extension]; exists {
		return fmt.Errorf("%w: extension %q", ErrAlreadyExists, l.Extension)
	}
	f.loaders[l.Extension] = l
	return nil
}

func extensionOf(path string) string {
	dot := -1
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			dot = i
			break
		}
		if path[i] == '/' {
			break
		}
	}
	if dot < 0 || dot == len(path)-1 {
		return ""
	}
	return path[dot+1:]
}
