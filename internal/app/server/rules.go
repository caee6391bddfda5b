package app

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"

	"vitals-monitor/internal/cache"
	"vitals-monitor/internal/engine"
	"vitals-monitor/internal/observability"
	"vitals-monitor/internal/vitals"
)

const (
	sourcePostgres = "postgres"
	sourceFile     = "file"
)

// RuleSource supplies custom rule definitions.
type RuleSource interface {
	LoadRuleDefs(ctx context.Context) ([]vitals.Def, error)
}

// ruleRegistry merges the custom rules of every source into the monitor.
//
// Sources are ranked: when two sources define the same name, only the
// higher-ranked source's rules are installed. A custom rule replaces every
// rule of the same name, built-in ones included; a built-in rule comes back
// once no source overrides it.
type ruleRegistry struct {
	mon   *engine.Locked
	order []string

	mu        sync.Mutex // serialises Apply
	bySource  map[string][]vitals.Def
	installed []string

	// view is the published per-source definitions for readers.
	view cache.Snapshot[map[string][]vitals.Def]
}

// newRuleRegistry ranks sources from highest to lowest.
func newRuleRegistry(mon *engine.Locked, order ...string) *ruleRegistry {
	reg := &ruleRegistry{
		mon:      mon,
		order:    order,
		bySource: map[string][]vitals.Def{},
	}
	reg.view.Store(reg.bySource)
	return reg
}

// Refresh loads definitions from src and applies them as source.
func (r *ruleRegistry) Refresh(ctx context.Context, source string, src RuleSource) error {
	defs, err := src.LoadRuleDefs(ctx)
	if err != nil {
		observability.ObserveReload(source, err)
		return fmt.Errorf("load %s rules: %w", source, err)
	}
	return r.Apply(source, defs)
}

// Apply replaces source's definitions with defs and reinstalls the merged
// custom rule set. Invalid definitions leave the monitor untouched.
func (r *ruleRegistry) Apply(source string, defs []vitals.Def) error {
	if !slices.Contains(r.order, source) {
		return fmt.Errorf("unknown rule source %q", source)
	}
	if _, err := vitals.Build(defs); err != nil {
		observability.ObserveReload(source, err)
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := maps.Clone(r.bySource)
	if len(defs) == 0 {
		delete(next, source)
	} else {
		next[source] = slices.Clone(defs)
	}
	rules, names := r.merge(next)

	overridden := make(map[string]struct{}, len(names))
	for _, name := range names {
		overridden[name] = struct{}{}
	}
	prev := r.installed

	r.mon.With(func(m *engine.Monitor) {
		for _, name := range prev {
			m.RemoveRule(name)
		}
		for _, name := range names {
			m.RemoveRule(name)
		}
		for _, rule := range rules {
			m.AddRule(rule)
		}
		for _, name := range prev {
			if _, ok := overridden[name]; !ok {
				m.RestoreBuiltin(name)
			}
		}
	})

	r.bySource = next
	r.installed = names
	r.view.Store(next)

	observability.ObserveReload(source, nil)
	log.Info().Str("source", source).Strs("rules", names).Msg("custom rules applied")
	return nil
}

// merge walks the sources by rank. It returns the rules to install and the
// distinct names they cover.
func (r *ruleRegistry) merge(bySource map[string][]vitals.Def) ([]vitals.Rule, []string) {
	owner := map[string]string{}
	var (
		rules []vitals.Rule
		names []string
	)
	for _, source := range r.order {
		built, _ := vitals.Build(bySource[source])
		for _, rule := range built {
			switch o, ok := owner[rule.Name()]; {
			case !ok:
				owner[rule.Name()] = source
				names = append(names, rule.Name())
			case o != source:
				log.Warn().Str("rule", rule.Name()).Str("source", source).Str("winner", o).
					Msg("custom rule shadowed by higher-ranked source")
				continue
			}
			rules = append(rules, rule)
		}
	}
	return rules, names
}

// CustomRules returns the definitions currently held per source. The result
// is shared and must not be modified.
func (r *ruleRegistry) CustomRules() map[string][]vitals.Def {
	defs, _ := r.view.Load()
	return defs
}
