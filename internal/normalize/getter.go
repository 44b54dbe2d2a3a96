// Package normalize maps a decoded IBT sample (or a live adapter's
// already-decoded snapshot) onto the fixed telemetry.Frame domain model,
// per spec.md §4.3. Grounded on chendo/OpenSimTelemetry's
// ost-adapters/src/iracing.rs convert_sample, which reads named
// variables through small typed getters and leaves a field absent when
// the source variable is missing — the same leniency this package
// applies, expressed with Go's optional-pointer idiom instead of Rust's
// Option<T>.
package normalize

import (
	"github.com/racetelem/ibtstream/internal/ibt"
	"github.com/racetelem/ibtstream/internal/unit"
)

// getter wraps a decoded sample and tracks every variable name it was
// asked for. Once a Frame has been built, the remaining untouched
// sample entries become extras — this is what keeps the "mapped set"
// in exact lockstep with what the sections actually read (spec.md
// §4.3): there is no separately maintained name list to fall out of
// sync.
type getter struct {
	sample ibt.Sample
	used   map[string]bool
}

func newGetter(s ibt.Sample) *getter {
	return &getter{sample: s, used: make(map[string]bool, len(s))}
}

func (g *getter) value(name string) (ibt.Value, bool) {
	g.used[name] = true
	v, ok := g.sample[name]
	return v, ok
}

func (g *getter) f64(name string) (float64, bool) {
	v, ok := g.value(name)
	if !ok {
		return 0, false
	}
	return v.Float64()
}

func (g *getter) i32(name string) (int32, bool) {
	v, ok := g.value(name)
	if !ok {
		return 0, false
	}
	return v.Int32()
}

func (g *getter) boolean(name string) (bool, bool) {
	v, ok := g.value(name)
	if !ok {
		return false, false
	}
	return v.Bool()
}

func (g *getter) bits(name string) (uint32, bool) {
	v, ok := g.value(name)
	if !ok {
		return 0, false
	}
	return v.Bitfield()
}

func (g *getter) str(name string) (string, bool) {
	v, ok := g.value(name)
	if !ok {
		return "", false
	}
	return v.String(), true
}

// optUnit reads name and casts it to unit T, any of the package's
// float64 newtypes. Returns nil when the variable is absent.
func optUnit[T ~float64](g *getter, name string) *T {
	v, ok := g.f64(name)
	if !ok {
		return nil
	}
	r := T(v)
	return &r
}

func optPercentage(g *getter, name string) *unit.Percentage {
	v, ok := g.f64(name)
	if !ok {
		return nil
	}
	p := unit.NewPercentage(v)
	return &p
}

func optInt(g *getter, name string) *int {
	v, ok := g.i32(name)
	if !ok {
		return nil
	}
	r := int(v)
	return &r
}

func optInt8(g *getter, name string) *int8 {
	v, ok := g.i32(name)
	if !ok {
		return nil
	}
	r := int8(v)
	return &r
}

func optBool(g *getter, name string) *bool {
	v, ok := g.boolean(name)
	if !ok {
		return nil
	}
	return &v
}

func optString(g *getter, name string) *string {
	v, ok := g.str(name)
	if !ok || v == "" {
		return nil
	}
	return &v
}
