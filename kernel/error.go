// Package kernel provides the base error type shared by all kernel
// subsystems as well as the multi-core boot entrypoints.
package kernel

// Error describes a kernel error. All kernel errors must be defined as
// global variables that are pointers to the Error structure. This
// requirement is necessary as dereferencing the pointer when comparing or
// printing errors triggers a memory allocation which is not always safe
// inside the kernel.
type Error struct {
	// The module where the error occurred.
	Module string

	// The error message.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}
