// Package abi is the logical C-ABI surface generated code calls into at
// runtime: allocation, strings, arrays, panics, and the async task
// primitives. Grounded on
// original_source/crates/aria-runtime/src/ffi.rs and
// .../runtime_ffi/{array,string}.rs — this package ports their `#[no_mangle]
// extern "C"` functions into plain exported Go functions operating on
// unsafe.Pointer, the closest idiomatic Go has to a raw C pointer, since
// the teacher pack has no cgo usage anywhere to imitate (see DESIGN.md).
// These are the exclusive bridge between emitted code and the runtime;
// adding a new symbol here is an ABI version bump.
package abi

import "unsafe"

// AriaAlloc returns a fresh, zeroed region of size bytes, or nil if size
// is zero. Unlike the Rust original's raw malloc call, this allocation is
// ordinary Go-managed memory: the returned unsafe.Pointer keeps the
// backing array alive for as long as it is reachable, so there is no
// separate free function in this ABI.
func AriaAlloc(size uint64) unsafe.Pointer {
	if size == 0 {
		return nil
	}
	buf := make([]byte, size)
	return unsafe.Pointer(&buf[0])
}

// bytesFrom views a raw region as a byte slice for copying, mirroring the
// original's slice::from_raw_parts calls at each FFI boundary.
func bytesFrom(p unsafe.Pointer, n uint64) []byte {
	if p == nil || n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(p), n)
}
