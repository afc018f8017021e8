// Package native reaches an external nearest-target kernel through its C ABI.
//
// The kernel exports:
//
//	void    compute_targets(float3* src, int32_t n, float3* dst, int32_t m, int32_t* out);
//	int32_t return42(void);
//	int32_t my_add(int32_t a, int32_t b);
//	float3* returnMyStruct(void);
//	void    deleteMyStruct(float3* elt);
//
// All buffers handed to compute_targets are allocated and owned by this
// package; the kernel only reads src/dst and writes out during the call.
// returnMyStruct allocates on the kernel side and must be released with
// deleteMyStruct exactly once.
package native

import "errors"

// Float3 mirrors the kernel's `struct float3 { float x, y, z; }` (12 bytes, no padding).
type Float3 struct {
	X, Y, Z float32
}

// Kernel is the raw foreign contract.
// Pointers are only valid for the duration of the call.
type Kernel interface {
	ComputeTargets(sources *Float3, sourceCount int32, targets *Float3, targetCount int32, out *int32)
	Return42() int32
	Add(a, b int32) int32
	NewProbe() *Float3
	DeleteProbe(p *Float3)
}

var (
	// ErrUnavailable is returned when the library or one of its symbols cannot be loaded.
	ErrUnavailable = errors.New("native: kernel unavailable")
	// ErrKernelResult is returned when the kernel writes an index outside the candidate range.
	ErrKernelResult = errors.New("native: kernel result out of range")
	// ErrNullProbe is returned when returnMyStruct yields a null pointer.
	ErrNullProbe = errors.New("native: kernel returned null probe")
	// ErrSelfTest is returned when a diagnostic export answers incorrectly.
	ErrSelfTest = errors.New("native: self-test failed")
)

// Exported symbol names.
const (
	symComputeTargets = "compute_targets"
	symReturn42       = "return42"
	symMyAdd          = "my_add"
	symReturnMyStruct = "returnMyStruct"
	symDeleteMyStruct = "deleteMyStruct"
)
