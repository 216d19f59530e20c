package validation

import (
	"sort"

	"github.com/dshills/gsnviz/pkg/model"
)

// Options configures a validation run.
type Options struct {
	// Excluded lists module names whose cross-module findings are
	// suppressed (the -x flag).
	Excluded []string

	// WarnDialectic enables the V11 presence warning for dialectic
	// elements.
	WarnDialectic bool
}

// Validator holds one validation run's inputs. It never mutates the
// model.
type Validator struct {
	model *model.Model
	opts  Options
}

// Validate runs every V- and C-check over the model and returns the
// findings sorted by (module, code, text). Running it twice on the same
// model yields the same messages.
func Validate(m *model.Model, opts Options) []Message {
	m.ResolveTypes()
	v := &Validator{model: m, opts: opts}

	var msgs []Message
	for _, name := range m.ModuleOrder {
		msgs = append(msgs, v.checkModule(m.Modules[name])...)
	}
	msgs = append(msgs, v.filterExcluded(v.checkCross())...)
	Sort(msgs)
	return msgs
}

// filterExcluded drops cross-module findings attributed to an excluded
// module.
func (v *Validator) filterExcluded(msgs []Message) []Message {
	if len(v.opts.Excluded) == 0 {
		return msgs
	}
	excluded := make(map[string]bool, len(v.opts.Excluded))
	for _, name := range v.opts.Excluded {
		excluded[name] = true
	}
	kept := msgs[:0]
	for _, m := range msgs {
		if !excluded[m.Module] {
			kept = append(kept, m)
		}
	}
	return kept
}

// sortedKeys returns the keys of a string-keyed map in sorted order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
