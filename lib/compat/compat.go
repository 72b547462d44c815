// Package compat decides whether a new version of a source schema may
// replace an older one under a configurable compatibility policy.
package compat

import (
	"fmt"
	"strings"
)

// Policy selects which direction(s) of schema evolution are checked.
type Policy uint8

const (
	// Backward: data written with the old schema stays readable by the new.
	Backward Policy = iota
	// Forward: data written with the new schema stays readable by the old.
	Forward
	// Full: both directions must hold.
	Full
	// None: accept everything.
	None
)

func (p Policy) String() string {
	switch p {
	case Backward:
		return "BACKWARD"
	case Forward:
		return "FORWARD"
	case Full:
		return "FULL"
	case None:
		return "NONE"
	default:
		return fmt.Sprintf("policy(%d)", uint8(p))
	}
}

// ParsePolicy parses a policy name, case-insensitively.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BACKWARD":
		return Backward, nil
	case "FORWARD":
		return Forward, nil
	case "FULL":
		return Full, nil
	case "NONE":
		return None, nil
	default:
		return Backward, fmt.Errorf("unknown compatibility policy %q", s)
	}
}

// Result is the verdict of one compatibility check. Issues are breaking
// facts; warnings are informational. An incompatible result is a normal
// return value, never an error.
type Result struct {
	Compatible bool
	Issues     []string
	Warnings   []string
	Policy     Policy
}

func (r Result) String() string {
	verdict := "compatible"
	if !r.Compatible {
		verdict = "incompatible"
	}
	return fmt.Sprintf("%s under %s (issues: %d, warnings: %d)", verdict, r.Policy, len(r.Issues), len(r.Warnings))
}
