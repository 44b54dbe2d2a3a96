package normalize

import "strings"

// carIdxPrefix is the per-car-array variable prefix; these are already
// materialized into competitors and are never echoed into extras, per
// spec.md §4.3.
const carIdxPrefix = "CarIdx"

// buildExtras iterates every sample variable g did not read while
// building the Frame's sections and emits it under "<source>/<name>",
// skipping per-car arrays. Because g.used is populated as a side
// effect of every section builder, this is automatically in lockstep
// with what the sections actually consumed — there is no separate
// mapped-name list to drift out of sync.
func buildExtras(g *getter, source string) map[string]any {
	var out map[string]any
	for name, v := range g.sample {
		if g.used[name] {
			continue
		}
		if strings.HasPrefix(name, carIdxPrefix) {
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[source+"/"+name] = v.JSON()
	}
	return out
}
