// Package builtins holds metadata for the primitive operations the
// elaborator wires into every module's global environment and that
// internal/abi backs with a concrete C-ABI symbol. It is a plain data
// table with no dependency on any evaluator: Aria has no interpreter, so
// a builtin's only other life is as a codegen call target.
package builtins

// BuiltinMeta holds metadata about a builtin function.
type BuiltinMeta struct {
	Name    string
	NumArgs int
	IsPure  bool
}

// Registry holds all registered builtin function metadata.
var Registry = make(map[string]*BuiltinMeta)

func init() {
	registerArithmeticMeta()
	registerComparisonMeta()
	registerConversionMeta()
	registerStringMeta()
	registerBooleanMeta()
	registerStringPrimitiveMeta()
}

// GetBuiltinNames returns all registered builtin names.
func GetBuiltinNames() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	return names
}

// IsBuiltin checks if a name is a registered builtin.
func IsBuiltin(name string) bool {
	_, ok := Registry[name]
	return ok
}

// registerArithmeticMeta registers metadata for arithmetic builtins.
func registerArithmeticMeta() {
	Registry["add_Int"] = &BuiltinMeta{Name: "add_Int", NumArgs: 2, IsPure: true}
	Registry["sub_Int"] = &BuiltinMeta{Name: "sub_Int", NumArgs: 2, IsPure: true}
	Registry["mul_Int"] = &BuiltinMeta{Name: "mul_Int", NumArgs: 2, IsPure: true}
	Registry["div_Int"] = &BuiltinMeta{Name: "div_Int", NumArgs: 2, IsPure: true}
	Registry["mod_Int"] = &BuiltinMeta{Name: "mod_Int", NumArgs: 2, IsPure: true}
	Registry["neg_Int"] = &BuiltinMeta{Name: "neg_Int", NumArgs: 1, IsPure: true}

	Registry["add_Float"] = &BuiltinMeta{Name: "add_Float", NumArgs: 2, IsPure: true}
	Registry["sub_Float"] = &BuiltinMeta{Name: "sub_Float", NumArgs: 2, IsPure: true}
	Registry["mul_Float"] = &BuiltinMeta{Name: "mul_Float", NumArgs: 2, IsPure: true}
	Registry["div_Float"] = &BuiltinMeta{Name: "div_Float", NumArgs: 2, IsPure: true}
	Registry["mod_Float"] = &BuiltinMeta{Name: "mod_Float", NumArgs: 2, IsPure: true}
	Registry["neg_Float"] = &BuiltinMeta{Name: "neg_Float", NumArgs: 1, IsPure: true}
}

// registerComparisonMeta registers metadata for comparison builtins.
func registerComparisonMeta() {
	Registry["eq_Int"] = &BuiltinMeta{Name: "eq_Int", NumArgs: 2, IsPure: true}
	Registry["ne_Int"] = &BuiltinMeta{Name: "ne_Int", NumArgs: 2, IsPure: true}
	Registry["lt_Int"] = &BuiltinMeta{Name: "lt_Int", NumArgs: 2, IsPure: true}
	Registry["le_Int"] = &BuiltinMeta{Name: "le_Int", NumArgs: 2, IsPure: true}
	Registry["gt_Int"] = &BuiltinMeta{Name: "gt_Int", NumArgs: 2, IsPure: true}
	Registry["ge_Int"] = &BuiltinMeta{Name: "ge_Int", NumArgs: 2, IsPure: true}

	Registry["eq_Float"] = &BuiltinMeta{Name: "eq_Float", NumArgs: 2, IsPure: true}
	Registry["ne_Float"] = &BuiltinMeta{Name: "ne_Float", NumArgs: 2, IsPure: true}
	Registry["lt_Float"] = &BuiltinMeta{Name: "lt_Float", NumArgs: 2, IsPure: true}
	Registry["le_Float"] = &BuiltinMeta{Name: "le_Float", NumArgs: 2, IsPure: true}
	Registry["gt_Float"] = &BuiltinMeta{Name: "gt_Float", NumArgs: 2, IsPure: true}
	Registry["ge_Float"] = &BuiltinMeta{Name: "ge_Float", NumArgs: 2, IsPure: true}
}

// registerConversionMeta registers metadata for numeric conversion builtins.
func registerConversionMeta() {
	Registry["intToFloat"] = &BuiltinMeta{Name: "intToFloat", NumArgs: 1, IsPure: true}
	Registry["floatToInt"] = &BuiltinMeta{Name: "floatToInt", NumArgs: 1, IsPure: true}
}

// registerStringMeta registers metadata for string operation builtins.
func registerStringMeta() {
	Registry["concat_String"] = &BuiltinMeta{Name: "concat_String", NumArgs: 2, IsPure: true}
	Registry["eq_String"] = &BuiltinMeta{Name: "eq_String", NumArgs: 2, IsPure: true}
	Registry["ne_String"] = &BuiltinMeta{Name: "ne_String", NumArgs: 2, IsPure: true}
	Registry["lt_String"] = &BuiltinMeta{Name: "lt_String", NumArgs: 2, IsPure: true}
	Registry["le_String"] = &BuiltinMeta{Name: "le_String", NumArgs: 2, IsPure: true}
	Registry["gt_String"] = &BuiltinMeta{Name: "gt_String", NumArgs: 2, IsPure: true}
	Registry["ge_String"] = &BuiltinMeta{Name: "ge_String", NumArgs: 2, IsPure: true}
}

// registerBooleanMeta registers metadata for boolean operation builtins.
func registerBooleanMeta() {
	Registry["and_Bool"] = &BuiltinMeta{Name: "and_Bool", NumArgs: 2, IsPure: true}
	Registry["or_Bool"] = &BuiltinMeta{Name: "or_Bool", NumArgs: 2, IsPure: true}
	Registry["not_Bool"] = &BuiltinMeta{Name: "not_Bool", NumArgs: 1, IsPure: true}
	Registry["eq_Bool"] = &BuiltinMeta{Name: "eq_Bool", NumArgs: 2, IsPure: true}
	Registry["ne_Bool"] = &BuiltinMeta{Name: "ne_Bool", NumArgs: 2, IsPure: true}
}

// registerStringPrimitiveMeta registers metadata for low-level string
// operation builtins, the ones internal/abi backs with a runtime call.
func registerStringPrimitiveMeta() {
	Registry["_str_len"] = &BuiltinMeta{Name: "_str_len", NumArgs: 1, IsPure: true}
	Registry["_str_slice"] = &BuiltinMeta{Name: "_str_slice", NumArgs: 3, IsPure: true}
	Registry["_str_compare"] = &BuiltinMeta{Name: "_str_compare", NumArgs: 2, IsPure: true}
	Registry["_str_eq"] = &BuiltinMeta{Name: "_str_eq", NumArgs: 2, IsPure: true}
	Registry["_str_find"] = &BuiltinMeta{Name: "_str_find", NumArgs: 2, IsPure: true}
	Registry["_str_upper"] = &BuiltinMeta{Name: "_str_upper", NumArgs: 1, IsPure: true}
	Registry["_str_lower"] = &BuiltinMeta{Name: "_str_lower", NumArgs: 1, IsPure: true}
	Registry["_str_trim"] = &BuiltinMeta{Name: "_str_trim", NumArgs: 1, IsPure: true}
}
