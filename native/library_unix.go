//go:build darwin || linux

package native

import (
	"fmt"

	"github.com/ebitengine/purego"
)

// Library is a kernel loaded from a shared object with purego (no cgo).
type Library struct {
	handle uintptr
	path   string

	computeTargets func(*Float3, int32, *Float3, int32, *int32)
	return42       func() int32
	myAdd          func(int32, int32) int32
	returnMyStruct func() *Float3
	deleteMyStruct func(*Float3)
}

var _ Kernel = (*Library)(nil)

// Open loads the shared library at path and binds every kernel export.
// Any missing library or symbol fails fast with ErrUnavailable.
func Open(path string) (*Library, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no library path configured", ErrUnavailable)
	}

	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("%w: loading %s: %v", ErrUnavailable, path, err)
	}

	lib := &Library{handle: handle, path: path}
	bindings := []struct {
		fptr any
		name string
	}{
		{&lib.computeTargets, symComputeTargets},
		{&lib.return42, symReturn42},
		{&lib.myAdd, symMyAdd},
		{&lib.returnMyStruct, symReturnMyStruct},
		{&lib.deleteMyStruct, symDeleteMyStruct},
	}

	// Dlsym first: RegisterLibFunc panics on a missing symbol
	for _, b := range bindings {
		sym, err := purego.Dlsym(handle, b.name)
		if err != nil {
			purego.Dlclose(handle)
			return nil, fmt.Errorf("%w: resolving %s in %s: %v", ErrUnavailable, b.name, path, err)
		}
		purego.RegisterFunc(b.fptr, sym)
	}

	return lib, nil
}

// Path returns the file the library was loaded from.
func (l *Library) Path() string { return l.path }

// ComputeTargets implements Kernel.
func (l *Library) ComputeTargets(sources *Float3, sourceCount int32, targets *Float3, targetCount int32, out *int32) {
	l.computeTargets(sources, sourceCount, targets, targetCount, out)
}

// Return42 implements Kernel.
func (l *Library) Return42() int32 { return l.return42() }

// Add implements Kernel.
func (l *Library) Add(a, b int32) int32 { return l.myAdd(a, b) }

// NewProbe implements Kernel.
func (l *Library) NewProbe() *Float3 { return l.returnMyStruct() }

// DeleteProbe implements Kernel.
func (l *Library) DeleteProbe(p *Float3) { l.deleteMyStruct(p) }

// Close unloads the library. The Library must not be used afterwards.
func (l *Library) Close() error {
	if l.handle == 0 {
		return nil
	}
	err := purego.Dlclose(l.handle)
	l.handle = 0
	if err != nil {
		return fmt.Errorf("unloading %s: %w", l.path, err)
	}
	return nil
}
