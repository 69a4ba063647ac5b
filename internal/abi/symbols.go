package abi

import "github.com/ariacc/ariac/internal/builtins"

// BuiltinSymbol maps a surface builtin's registry name (internal/builtins)
// to the C-ABI linkage symbol a code generator should emit a call to
// instead, for the handful of builtins this package backs directly.
// Builtins with no entry here (arithmetic, comparisons on primitive
// numeric types) are expected to lower to inline instructions rather than
// a runtime call.
var BuiltinSymbol = map[string]string{
	"concat_String": "AriaStringConcat",
	"eq_String":     "AriaStringEq",
	"ne_String":     "AriaStringEq", // negated by the caller; same entry point
	"_str_len":      "AriaStringLen",
}

func init() {
	for name := range BuiltinSymbol {
		if !builtins.IsBuiltin(name) {
			panic("abi: BuiltinSymbol references unregistered builtin " + name)
		}
	}
}

// ResolveCallee returns the ABI linkage symbol for a builtin callee name,
// or name itself unchanged when it isn't one of the runtime-backed
// builtins above.
func ResolveCallee(name string) string {
	if sym, ok := BuiltinSymbol[name]; ok {
		return sym
	}
	return name
}
