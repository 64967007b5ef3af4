package compiler

// builtins maps a surface symbol to its runtime descriptor in support.h.
// A free symbol that is not in this table is an unknown primitive.
var builtins = map[string]string{
	"+":          "sup_builtin_add",
	"-":          "sup_builtin_subtract",
	"=":          "sup_builtin_equals",
	"<":          "sup_builtin_less_than",
	"or":         "sup_builtin_bitwise_or",
	"and":        "sup_builtin_bitwise_and",
	"prog-arg":   "sup_builtin_program_argument",
	"str-to-num": "sup_builtin_string_to_number",
	"num-to-str": "sup_builtin_number_to_string",
	"put-str":    "sup_builtin_put_string",
}

// IsBuiltin reports whether name is a built-in surface symbol.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}
