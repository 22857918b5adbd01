// Package derived computes composite metrics from already-decoded
// entities. The engine never touches the wire: inputs are scaled
// EntityValues, outputs are EntityValues tagged as computed.
package derived

import (
	"time"

	"github.com/openashp/aerona3-bridge/internal/state"
)

// Inputs is the resolved input set for one evaluation.
type Inputs map[string]float64

// Spec is one derived metric: a formula over a fixed input set with a
// validity predicate guarding physically impossible inputs.
type Spec struct {
	Output string
	Name   string
	Unit   string
	Inputs []string

	Valid   func(Inputs) bool
	Compute func(Inputs) float64
}

// Engine recomputes outputs synchronously whenever an input updates.
type Engine struct {
	store   *state.Store
	specs   []Spec
	byInput map[string][]int
}

// NewEngine registers every output entity on the store and indexes
// specs by input.
func NewEngine(store *state.Store, specs []Spec) *Engine {
	e := &Engine{
		store:   store,
		specs:   specs,
		byInput: make(map[string][]int),
	}
	for i, sp := range specs {
		store.Register(state.EntityValue{
			ID:       sp.Output,
			Name:     sp.Name,
			Unit:     sp.Unit,
			Computed: true,
		})
		for _, in := range sp.Inputs {
			e.byInput[in] = append(e.byInput[in], i)
		}
	}
	return e
}

// Outputs lists the output entity IDs in spec order.
func (e *Engine) Outputs() []string {
	out := make([]string, len(e.specs))
	for i, sp := range e.specs {
		out[i] = sp.Output
	}
	return out
}

// Recompute re-evaluates every spec depending on one of the changed
// entities. An output whose inputs are unavailable, or whose validity
// predicate fails, is marked Unavailable instead of publishing a
// nonsensical value. Returns the outputs that were touched.
func (e *Engine) Recompute(changed []string, now time.Time) []string {
	dirty := make(map[int]bool)
	for _, id := range changed {
		for _, i := range e.byInput[id] {
			dirty[i] = true
		}
	}
	if len(dirty) == 0 {
		return nil
	}

	snap := e.store.View()
	var touched []string

	for i := range e.specs {
		if !dirty[i] {
			continue
		}
		sp := &e.specs[i]

		in := make(Inputs, len(sp.Inputs))
		ok := true
		for _, id := range sp.Inputs {
			ev, found := snap[id]
			if !found || ev.Availability != state.Available {
				ok = false
				break
			}
			in[id] = ev.Value
		}

		if !ok || (sp.Valid != nil && !sp.Valid(in)) {
			e.store.SetInvalid(sp.Output)
		} else {
			e.store.SetComputed(sp.Output, sp.Compute(in), now)
		}
		touched = append(touched, sp.Output)
	}
	return touched
}
