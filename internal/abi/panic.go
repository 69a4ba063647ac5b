package abi

import (
	"fmt"
	"os"
	"unsafe"
)

// PanicHook is invoked by AriaPanic after formatting the message; it
// defaults to printing to stderr and exiting with status 1, matching
// the original's "prints message and terminates the process" contract.
// Tests override it to observe the message without killing the process.
var PanicHook = func(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}

// AriaPanic prints the len bytes at ptr as the panic message and
// terminates the process via PanicHook. Contract violations (a failed
// require/ensures clause, an out-of-memory array push) all funnel through
// this single entry point.
func AriaPanic(ptr unsafe.Pointer, length uint64) {
	msg := string(bytesFrom(ptr, length))
	PanicHook(msg)
}
