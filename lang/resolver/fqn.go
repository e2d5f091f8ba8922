package resolver

import (
	"strings"

	"github.com/gaultier/kotlinc-lite/lang/types"
)

// fastPathFQN maps a handful of bare type names the grammar accepts
// directly (without any import) to their fully qualified, dotted-form
// names — the fast path spec §4.6 mentions ahead of a full type-table
// search.
var fastPathFQN = map[string]string{
	"Any":     "kotlin.Any",
	"Unit":    "kotlin.Unit",
	"Boolean": "kotlin.Boolean",
	"Byte":    "kotlin.Byte",
	"Char":    "kotlin.Char",
	"Short":   "kotlin.Short",
	"Int":     "kotlin.Int",
	"Float":   "kotlin.Float",
	"Long":    "kotlin.Long",
	"Double":  "kotlin.Double",
	"String":  "kotlin.String",
}

// resolveTypeName resolves a source-level type name (as written after a
// ':', e.g. "Int" or "String") to a Type index: fixed fast-path table for
// primitives, then the in-memory type table, then the classpath (spec
// §4.6's "Fully-qualified name resolution").
func (r *Resolver) resolveTypeName(name string) (types.Index, error) {
	if dotted, ok := fastPathFQN[name]; ok {
		return r.resolveDottedFQN(dotted)
	}
	return r.resolveDottedFQN(name)
}

// resolveDottedFQN turns a dotted name into a slash-form fqn and resolves
// it: fast-path kotlin.* primitives, then whatever the type table already
// has, then the classpath loader.
func (r *Resolver) resolveDottedFQN(dotted string) (types.Index, error) {
	switch dotted {
	case "kotlin.Any":
		return r.Types.WellKnown(types.Any), nil
	case "kotlin.Unit":
		return r.Types.WellKnown(types.Unit), nil
	case "kotlin.Boolean":
		return r.Types.WellKnown(types.Boolean), nil
	case "kotlin.Byte":
		return r.Types.WellKnown(types.Byte), nil
	case "kotlin.Char":
		return r.Types.WellKnown(types.Char), nil
	case "kotlin.Short":
		return r.Types.WellKnown(types.Short), nil
	case "kotlin.Int":
		return r.Types.WellKnown(types.Int), nil
	case "kotlin.Float":
		return r.Types.WellKnown(types.Float), nil
	case "kotlin.Long":
		return r.Types.WellKnown(types.Long), nil
	case "kotlin.Double":
		return r.Types.WellKnown(types.Double), nil
	case "kotlin.String":
		return r.Types.WellKnown(types.String), nil
	}

	fqn := strings.ReplaceAll(dotted, ".", "/")
	if i, ok := r.Types.LookupInstance(fqn); ok {
		return i, nil
	}
	if r.Loader == nil {
		return 0, errUnresolvedType(dotted)
	}
	return r.Loader.Resolve(fqn)
}

func errUnresolvedType(name string) error {
	return &unresolvedTypeError{name}
}

type unresolvedTypeError struct{ name string }

func (e *unresolvedTypeError) Error() string {
	return "unresolved type: " + e.name
}
