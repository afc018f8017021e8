//go:build !(darwin || linux)

package native

import "fmt"

// Library is unavailable on this platform; Open always fails.
type Library struct{}

var _ Kernel = (*Library)(nil)

// Open always returns ErrUnavailable on platforms without dlopen support.
func Open(path string) (*Library, error) {
	return nil, fmt.Errorf("%w: dynamic loading not supported on this platform", ErrUnavailable)
}

// Path returns the file the library was loaded from.
func (l *Library) Path() string { return "" }

// ComputeTargets implements Kernel.
func (l *Library) ComputeTargets(*Float3, int32, *Float3, int32, *int32) {}

// Return42 implements Kernel.
func (l *Library) Return42() int32 { return 0 }

// Add implements Kernel.
func (l *Library) Add(a, b int32) int32 { return 0 }

// NewProbe implements Kernel.
func (l *Library) NewProbe() *Float3 { return nil }

// DeleteProbe implements Kernel.
func (l *Library) DeleteProbe(*Float3) {}

// Close unloads the library. The Library must not be used afterwards.
func (l *Library) Close() error { return nil }
