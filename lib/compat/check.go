package compat

import (
	"fmt"

	"github.com/samber/lo"

	"skema/lib/schema"
)

// Check compares two schema trees under a policy. It never returns an error
// and never panics outward: malformed or unexpected input surfaces as an
// incompatible result with a descriptive issue, because a compatibility
// check must never crash the registration flow that called it.
func Check(old, new schema.Node, policy Policy) Result {
	var issues, warnings []string
	switch {
	// The null rules hold under every policy, before any direction swap.
	case policy == None:
		warnings = []string{"no compatibility checking performed"}
	case old == nil && new == nil:
		// Nothing to compare.
	case old == nil:
		warnings = []string{"no prior schema, accepting new schema"}
	case new == nil:
		issues = []string{"cannot replace existing schema with null"}
	default:
		switch policy {
		case Forward:
			issues, warnings = direction(new, old)
		case Full:
			bi, bw := direction(old, new)
			fi, fw := direction(new, old)
			issues = append(prefixed("backward: ", bi), prefixed("forward: ", fi)...)
			warnings = append(prefixed("backward: ", bw), prefixed("forward: ", fw)...)
		default:
			issues, warnings = direction(old, new)
		}
	}
	res := Result{
		Compatible: len(issues) == 0,
		Issues:     issues,
		Warnings:   warnings,
		Policy:     policy,
	}
	observe(res)
	return res
}

func prefixed(prefix string, msgs []string) []string {
	return lo.Map(msgs, func(m string, _ int) string { return prefix + m })
}

// direction runs one backward-direction comparison: may readers of `new`
// still read data written with `old`. Both arguments are non-nil here.
func direction(old, new schema.Node) (issues, warnings []string) {
	c := &collector{}
	defer func() {
		if r := recover(); r != nil {
			c.issue("internal error during compatibility check: %v", r)
		}
		issues, warnings = c.issues, c.warnings
	}()
	compareNodes(old, new, "", c)
	return
}

type collector struct {
	issues   []string
	warnings []string
}

func (c *collector) issue(format string, args ...interface{}) {
	c.issues = append(c.issues, fmt.Sprintf(format, args...))
}

func (c *collector) warn(format string, args ...interface{}) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

func loc(path string) string {
	if path == "" {
		return "root"
	}
	return path
}

// unwrap strips the [null, T] union pattern, returning the inner type and
// whether the node was nullable.
func unwrap(n schema.Node) (schema.Node, bool) {
	if u, ok := n.(schema.Union); ok {
		if inner, ok := u.Nullable(); ok {
			return inner, true
		}
	}
	return n, false
}

func compareNodes(old, new schema.Node, path string, c *collector) {
	old, oldNullable := unwrap(old)
	new, newNullable := unwrap(new)

	// Nullability changes are never breaking on their own.
	if oldNullable != newNullable {
		if newNullable {
			c.warn("nullability widened from non-nullable to nullable at %s", loc(path))
		} else {
			c.warn("nullability narrowed from nullable to non-nullable at %s", loc(path))
		}
	}

	if old.Kind() != new.Kind() {
		c.issue("type changed from %s to %s at %s", old.Kind(), new.Kind(), loc(path))
		return
	}

	switch o := old.(type) {
	case schema.Record:
		compareRecords(o, new.(schema.Record), path, c)
	case schema.Array:
		compareNodes(o.Elem, new.(schema.Array).Elem, path, c)
	case schema.Map:
		// Keys are always strings in the target model; only values evolve.
		compareNodes(o.Value, new.(schema.Map).Value, path, c)
	case schema.Union:
		compareUnions(o, new.(schema.Union), path, c)
	default:
		// Primitives, enums and fixeds compare by kind alone. Enum symbol
		// sets are deliberately not inspected.
	}
}

func compareRecords(old, new schema.Record, path string, c *collector) {
	newNames := lo.Map(new.Fields, func(f schema.Field, _ int) string { return f.Name })
	removed := lo.Filter(old.Fields, func(f schema.Field, _ int) bool {
		return !lo.Contains(newNames, f.Name)
	})
	if len(removed) > 0 {
		names := lo.Map(removed, func(f schema.Field, _ int) string { return f.Name })
		c.issue("fields removed at %s: %v", loc(path), names)
	}

	for _, of := range old.Fields {
		nf, ok := new.Field(of.Name)
		if !ok {
			continue
		}
		fpath := of.Name
		if path != "" {
			fpath = path + "." + of.Name
		}
		// Nested incompatibilities propagate up verbatim.
		compareNodes(of.Type, nf.Type, fpath, c)
	}

	for _, nf := range new.Fields {
		if _, ok := old.Field(nf.Name); ok {
			continue
		}
		if nf.HasDefault() {
			c.warn("new field '%s' added with default at %s", nf.Name, loc(path))
		} else {
			c.issue("new field '%s' has no default value at %s", nf.Name, loc(path))
		}
	}
}

func compareUnions(old, new schema.Union, path string, c *collector) {
	newSigs := lo.Map(new, func(m schema.Node, _ int) string { return schema.Signature(m) })
	oldSigs := lo.Map(old, func(m schema.Node, _ int) string { return schema.Signature(m) })
	for _, sig := range oldSigs {
		if !lo.Contains(newSigs, sig) {
			c.issue("union member removed: %s at %s", sig, loc(path))
		}
	}
	for _, sig := range newSigs {
		if !lo.Contains(oldSigs, sig) {
			c.warn("union member added: %s at %s", sig, loc(path))
		}
	}
}
