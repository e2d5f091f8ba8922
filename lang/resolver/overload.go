package resolver

import (
	"fmt"
	"strings"

	"github.com/gaultier/kotlinc-lite/lang/types"
)

// defaultImportedPackages are always in scope for unqualified calls (spec
// §4.6), in slash form to match types.Type.PackageName.
var defaultImportedPackages = []string{
	"kotlin",
	"kotlin/annotation",
	"kotlin/collections",
	"kotlin/comparisons",
	"kotlin/io",
	"kotlin/ranges",
	"kotlin/sequences",
	"kotlin/text",
	"java/lang",
	"kotlin/jvm",
}

// importedPackages returns the default set plus the current file's own
// package (spec §4.6: "plus the current source package").
func importedPackages(currentPackage string) map[string]bool {
	set := make(map[string]bool, len(defaultImportedPackages)+1)
	for _, p := range defaultImportedPackages {
		set[p] = true
	}
	set[currentPackage] = true // "" is the default package
	return set
}

// candidates collects every Method (or, if wantConstructor, Constructor)
// type in tbl whose simple name matches name, is static (for Method), and
// whose owning package is imported (spec §4.6 step 1).
func candidates(tbl *types.Table, name string, wantConstructor bool, imported map[string]bool) []types.Index {
	var out []types.Index
	wantKind := types.Method
	if wantConstructor {
		wantKind = types.Constructor
	}
	for i := 11; i < len(tbl.Types); i++ {
		idx := types.Index(i)
		t := tbl.Get(idx)
		if t.Kind != wantKind || t.Method == nil {
			continue
		}
		if t.Method.Name != name {
			continue
		}
		if !wantConstructor && !t.Method.IsStatic {
			// instance methods are resolved by receiver type (see
			// resolveMemberCall), not through the unqualified overload path.
			continue
		}
		owner := tbl.Get(t.Method.ThisClassType)
		if !imported[owner.PackageName] {
			continue
		}
		out = append(out, idx)
	}
	return out
}

// filterByArgs drops candidates whose arity doesn't match or whose
// parameters aren't each a supertype of the corresponding argument (spec
// §4.6 step 2: "no varargs/defaults").
func filterByArgs(tbl *types.Table, cands []types.Index, argTypes []int) []types.Index {
	var out []types.Index
	for _, c := range cands {
		m := tbl.Get(c).Method
		if len(m.ArgumentTypes) != len(argTypes) {
			continue
		}
		ok := true
		for i, param := range m.ArgumentTypes {
			if !tbl.IsSubtype(types.Index(argTypes[i]), param) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, c)
		}
	}
	return out
}

// mostSpecific eliminates dominated candidates pairwise (spec §4.6 step 3)
// until one survives, zero survive (pre-filter set already reported by the
// caller), or more than one remains — the ambiguous case, which this
// resolver reports as a diagnostic rather than asserting unreachable (spec
// §9 flags the source's tie-break as incomplete; this is the decision
// recorded in DESIGN.md).
func mostSpecific(tbl *types.Table, cands []types.Index) (winner types.Index, ambiguous []types.Index) {
	if len(cands) == 1 {
		return cands[0], nil
	}
	dominated := make(map[types.Index]bool)
	for _, a := range cands {
		for _, b := range cands {
			if a == b || dominated[a] {
				continue
			}
			if moreApplicable(tbl, b, a) && !moreApplicable(tbl, a, b) {
				dominated[a] = true
			}
		}
	}
	var survivors []types.Index
	for _, c := range cands {
		if !dominated[c] {
			survivors = append(survivors, c)
		}
	}
	if len(survivors) == 1 {
		return survivors[0], nil
	}
	return 0, survivors
}

// moreApplicable reports whether every parameter of a is a subtype of the
// corresponding parameter of b (spec §4.6 step 3's definition of "more
// applicable than").
func moreApplicable(tbl *types.Table, a, b types.Index) bool {
	ma, mb := tbl.Get(a).Method, tbl.Get(b).Method
	if len(ma.ArgumentTypes) != len(mb.ArgumentTypes) {
		return false
	}
	for i := range ma.ArgumentTypes {
		if !tbl.IsSubtype(ma.ArgumentTypes[i], mb.ArgumentTypes[i]) {
			return false
		}
	}
	return true
}

// describeCandidates renders a candidate set for a diagnostic (spec §4.6:
// "report the pre-filter set in the diagnostic to aid the user").
func describeCandidates(tbl *types.Table, cands []types.Index) string {
	names := make([]string, len(cands))
	for i, c := range cands {
		m := tbl.Get(c).Method
		owner := tbl.Name(m.ThisClassType)
		args := make([]string, len(m.ArgumentTypes))
		for j, a := range m.ArgumentTypes {
			args[j] = tbl.Name(a)
		}
		names[i] = fmt.Sprintf("%s.%s(%s)", owner, m.Name, strings.Join(args, ", "))
	}
	return strings.Join(names, ", ")
}
